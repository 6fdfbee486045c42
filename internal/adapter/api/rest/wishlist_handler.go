package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-wishlist-app/internal/core/ports"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 25 * time.Second
)

type WishlistHandler struct {
	service ports.WishlistService
	logger  *slog.Logger
}

func NewWishlistHandler(service ports.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: service, logger: logger}
}

func (h *WishlistHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "wishlist request failed", "path", r.URL.Path, "error", err)
	}
	respondError(w, h.logger, status, err)
}

// List handles GET /wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, wishlistResponse{ItemIDs: ids})
}

// Items handles GET /wishlist/items
func (h *WishlistHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	streamNDJSON(w, h.logger, items)
}

// Contains handles GET /wishlist/{id}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	member, err := h.service.IsMember(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, membershipResponse{ItemID: id, Member: member})
}

// Add handles PUT /wishlist/{id}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Add(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, membershipResponse{ItemID: id, Member: true})
}

// Remove handles DELETE /wishlist/{id}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /wishlist/refresh
func (h *WishlistHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.List(w, r)
}

// Events handles GET /wishlist/events as a server-sent event stream.
// The first event carries the current members; every later event is a
// wishlist.Change. The stream ends when the client leaves or the user
// signs out; sign-out is preceded by a "cleared" event from the store.
func (h *WishlistHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, err := h.service.Subscribe(ctx, eventBuffer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sub.Close()

	ids, err := h.service.List(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "members", wishlistResponse{ItemIDs: ids}); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "event stream cannot flush", "error", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-sub.C():
			if !ok {
				return
			}
			if err := writeEvent(w, string(change.Kind), change); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
