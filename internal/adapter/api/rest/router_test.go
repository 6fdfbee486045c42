package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-wishlist-app/internal/core/domain/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewRouter(t *testing.T) {
	authn := new(MockAuthService)
	wish := new(MockWishlistService)
	cat := new(MockCatalogService)
	logger := discardLogger()

	router := NewRouter(
		NewHandler(cat, logger),
		NewAuthHandler(authn, logger),
		NewWishlistHandler(wish, logger),
		authn,
		logger,
		RequestID,
	)

	authn.On("Authenticate", mock.Anything, "good").Return(auth.Session{ID: "s", UserID: "u"}, nil)
	wish.On("List", mock.Anything).Return([]string{"a"}, nil)
	wish.On("IsMember", mock.Anything, "a").Return(true, nil)

	t.Run("health is public", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("wishlist requires a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wishlist", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wishlist with token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wishlist", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"item_ids":["a"]}`, w.Body.String())
	})

	t.Run("item path routes to membership", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wishlist/a", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.JSONEq(t, `{"item_id":"a","member":true}`, w.Body.String())
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/catalog", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
