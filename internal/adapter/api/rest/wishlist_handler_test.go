package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWishlistHandler_List(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc, discardLogger())
	svc.On("List", mock.Anything).Return([]string{"a", "b"}, nil)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/wishlist", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body wishlistResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.ItemIDs)
}

func TestWishlistHandler_Items(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc, discardLogger())
	svc.On("ListItems", mock.Anything).Return(deck(2), nil)

	w := httptest.NewRecorder()
	h.Items(w, httptest.NewRequest(http.MethodGet, "/wishlist/items", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeNDJSON(t, w.Body.String()), 2)
}

func TestWishlistHandler_Contains(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc, discardLogger())
	svc.On("IsMember", mock.Anything, "outfit-1").Return(true, nil)

	req := httptest.NewRequest(http.MethodGet, "/wishlist/outfit-1", nil)
	req.SetPathValue("id", "outfit-1")
	w := httptest.NewRecorder()
	h.Contains(w, req)

	var body membershipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, membershipResponse{ItemID: "outfit-1", Member: true}, body)
}

func TestWishlistHandler_Mutations(t *testing.T) {
	tests := []struct {
		name   string
		method string
		err    error
		want   int
	}{
		{"add ok", http.MethodPut, nil, http.StatusOK},
		{"remove ok", http.MethodDelete, nil, http.StatusNoContent},
		{"add signed out", http.MethodPut, wishlist.ErrUnauthenticated, http.StatusUnauthorized},
		{"add rolled back", http.MethodPut, fmt.Errorf("%w: add outfit-1: timeout", wishlist.ErrRemoteFailure), http.StatusBadGateway},
		{"remove rolled back", http.MethodDelete, fmt.Errorf("%w: remove outfit-1", wishlist.ErrRemoteFailure), http.StatusBadGateway},
		{"remove gave up waiting", http.MethodDelete, fmt.Errorf("%w on outfit-1: %w", wishlist.ErrPendingChange, context.DeadlineExceeded), http.StatusConflict},
		{"add unknown outfit", http.MethodPut, fmt.Errorf("add outfit-1: %w", catalog.ErrNotFound), http.StatusNotFound},
		{"add invalid id", http.MethodPut, fmt.Errorf("%w: id is too long", wishlist.ErrInvalidItem), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWishlistService)
			h := NewWishlistHandler(svc, discardLogger())

			req := httptest.NewRequest(tt.method, "/wishlist/outfit-1", nil)
			req.SetPathValue("id", "outfit-1")
			w := httptest.NewRecorder()

			if tt.method == http.MethodPut {
				svc.On("Add", mock.Anything, "outfit-1").Return(tt.err)
				h.Add(w, req)
			} else {
				svc.On("Remove", mock.Anything, "outfit-1").Return(tt.err)
				h.Remove(w, req)
			}

			assert.Equal(t, tt.want, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestWishlistHandler_Refresh(t *testing.T) {
	t.Run("returns the reloaded ids", func(t *testing.T) {
		svc := new(MockWishlistService)
		h := NewWishlistHandler(svc, discardLogger())
		svc.On("Refresh", mock.Anything).Return(nil)
		svc.On("List", mock.Anything).Return([]string{"z"}, nil)

		w := httptest.NewRecorder()
		h.Refresh(w, httptest.NewRequest(http.MethodPost, "/wishlist/refresh", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"item_ids":["z"]}`, w.Body.String())
	})

	t.Run("remote failure", func(t *testing.T) {
		svc := new(MockWishlistService)
		h := NewWishlistHandler(svc, discardLogger())
		svc.On("Refresh", mock.Anything).Return(fmt.Errorf("%w: load", wishlist.ErrRemoteFailure))

		w := httptest.NewRecorder()
		h.Refresh(w, httptest.NewRequest(http.MethodPost, "/wishlist/refresh", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestWishlistHandler_Events(t *testing.T) {
	t.Run("streams members then changes until closed", func(t *testing.T) {
		svc := new(MockWishlistService)
		h := NewWishlistHandler(svc, discardLogger())

		sub := newFakeSubscription(
			wishlist.Change{Kind: wishlist.ChangeAdded, ItemID: "b", Member: true},
			wishlist.Change{Kind: wishlist.ChangeRolledBack, ItemID: "b", Member: false},
		)
		svc.On("Subscribe", mock.Anything, eventBuffer).Return(sub, nil)
		svc.On("List", mock.Anything).Return([]string{"a"}, nil)

		w := httptest.NewRecorder()
		h.Events(w, httptest.NewRequest(http.MethodGet, "/wishlist/events", nil))

		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.True(t, sub.closed)

		body := w.Body.String()
		frames := strings.Split(strings.TrimSpace(body), "\n\n")
		require.Len(t, frames, 3)
		assert.Equal(t, "event: members\ndata: {\"item_ids\":[\"a\"]}", frames[0])
		assert.Equal(t, "event: added\ndata: {\"kind\":\"added\",\"item_id\":\"b\",\"member\":true}", frames[1])
		assert.True(t, strings.HasPrefix(frames[2], "event: rolled_back\n"))
	})

	t.Run("client leaves", func(t *testing.T) {
		svc := new(MockWishlistService)
		h := NewWishlistHandler(svc, discardLogger())

		open := &fakeSubscription{ch: make(chan wishlist.Change)}
		svc.On("Subscribe", mock.Anything, eventBuffer).Return(open, nil)
		svc.On("List", mock.Anything).Return([]string{}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := httptest.NewRecorder()
		h.Events(w, httptest.NewRequest(http.MethodGet, "/wishlist/events", nil).WithContext(ctx))

		assert.True(t, open.closed)
		assert.Contains(t, w.Body.String(), "event: members")
	})

	t.Run("signed out", func(t *testing.T) {
		svc := new(MockWishlistService)
		h := NewWishlistHandler(svc, discardLogger())
		svc.On("Subscribe", mock.Anything, eventBuffer).Return(nil, wishlist.ErrUnauthenticated)

		w := httptest.NewRecorder()
		h.Events(w, httptest.NewRequest(http.MethodGet, "/wishlist/events", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
