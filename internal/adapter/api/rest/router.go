package rest

import (
	"log/slog"
	"net/http"
)

// NewRouter initializes the HTTP router and registers routes.
func NewRouter(h *Handler, authH *AuthHandler, wishH *WishlistHandler, authenticator Authenticator, logger *slog.Logger, mws ...Middleware) http.Handler {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("POST /signup", authH.SignUp)
	mux.HandleFunc("POST /login", authH.Login)
	mux.HandleFunc("GET /catalog", h.List)
	mux.HandleFunc("GET /catalog/{id}", h.Get)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Protected
	protected := AuthMiddleware(authenticator, logger)

	mux.Handle("POST /logout", protected(http.HandlerFunc(authH.Logout)))
	mux.Handle("POST /catalog", protected(http.HandlerFunc(h.Create)))

	mux.Handle("GET /wishlist", protected(http.HandlerFunc(wishH.List)))
	mux.Handle("GET /wishlist/items", protected(http.HandlerFunc(wishH.Items)))
	mux.Handle("GET /wishlist/events", protected(http.HandlerFunc(wishH.Events)))
	mux.Handle("POST /wishlist/refresh", protected(http.HandlerFunc(wishH.Refresh)))
	mux.Handle("GET /wishlist/{id}", protected(http.HandlerFunc(wishH.Contains)))
	mux.Handle("PUT /wishlist/{id}", protected(http.HandlerFunc(wishH.Add)))
	mux.Handle("DELETE /wishlist/{id}", protected(http.HandlerFunc(wishH.Remove)))

	return Chain(mux, mws...)
}
