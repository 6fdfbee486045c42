package observability

import (
	"context"
	"time"

	"go-wishlist-app/internal/core/ports"
)

// InstrumentedGateway records the latency of every remote wishlist call.
type InstrumentedGateway struct {
	inner ports.WishlistGateway
}

func NewInstrumentedGateway(inner ports.WishlistGateway) *InstrumentedGateway {
	return &InstrumentedGateway{inner: inner}
}

func (g *InstrumentedGateway) ItemIDs(ctx context.Context, userID string) ([]string, error) {
	start := time.Now()
	ids, err := g.inner.ItemIDs(ctx, userID)
	observeGateway("item_ids", start, err)
	return ids, err
}

func (g *InstrumentedGateway) Insert(ctx context.Context, userID, itemID string) error {
	start := time.Now()
	err := g.inner.Insert(ctx, userID, itemID)
	observeGateway("insert", start, err)
	return err
}

func (g *InstrumentedGateway) Delete(ctx context.Context, userID, itemID string) error {
	start := time.Now()
	err := g.inner.Delete(ctx, userID, itemID)
	observeGateway("delete", start, err)
	return err
}

func observeGateway(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	gatewayLatency.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}
