package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/ports"
	"go-wishlist-app/internal/observability"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for the circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the counts while closed. 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrCircuitOpen is returned without calling the remote store while the breaker is open.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Breaker guards a wishlist gateway with a circuit breaker so a failing
// remote store is reported at once instead of after every timeout.
type Breaker struct {
	inner   ports.WishlistGateway
	breaker *gobreaker.CircuitBreaker[[]string]
}

var _ ports.WishlistGateway = (*Breaker)(nil)

func NewBreaker(inner ports.WishlistGateway, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			observability.SetBreakerState(name, stateValue(to))
		},
		// A caller giving up or naming an unknown outfit says nothing about
		// the remote store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, catalog.ErrNotFound)
		},
	}

	observability.SetBreakerState(cfg.Name, 0)

	return &Breaker{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]string](settings),
	}
}

func stateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (b *Breaker) ItemIDs(ctx context.Context, userID string) ([]string, error) {
	return b.breaker.Execute(func() ([]string, error) {
		return b.inner.ItemIDs(ctx, userID)
	})
}

func (b *Breaker) Insert(ctx context.Context, userID, itemID string) error {
	_, err := b.breaker.Execute(func() ([]string, error) {
		return nil, b.inner.Insert(ctx, userID, itemID)
	})
	return err
}

func (b *Breaker) Delete(ctx context.Context, userID, itemID string) error {
	_, err := b.breaker.Execute(func() ([]string, error) {
		return nil, b.inner.Delete(ctx, userID, itemID)
	})
	return err
}

// State returns the current state of the circuit breaker.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}
