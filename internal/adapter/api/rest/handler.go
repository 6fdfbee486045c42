package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/domain/wishlist"
	"go-wishlist-app/internal/core/ports"
)

// Handler serves the catalog.
type Handler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

func NewHandler(service ports.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /catalog?gender=..&category=..&color=..&price=min-max
// and streams the filtered deck as NDJSON.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sel, err := catalog.ParseSelection(r.URL.Query())
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.service.List(r.Context(), sel)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list catalog", "error", err)
		respondError(w, h.logger, statusFor(err), err)
		return
	}

	start, end := NewPagination(r).Window(len(items))
	streamNDJSON(w, h.logger, items[start:end])
}

// Get handles GET /catalog/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, h.logger, http.StatusBadRequest, errors.New("missing id"))
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			h.logger.ErrorContext(r.Context(), "failed to find item", "id", id, "error", err)
		}
		respondError(w, h.logger, statusFor(err), err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, item)
}

// Create handles POST /catalog
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	item, err := req.toItem()
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.service.Create(r.Context(), item); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "failed to create item", "error", err)
		}
		respondError(w, h.logger, status, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, item)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, wishlist.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, wishlist.ErrRemoteFailure):
		return http.StatusBadGateway
	case errors.Is(err, wishlist.ErrInvalidItem),
		errors.Is(err, catalog.ErrValidation),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrAlreadyExists),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, wishlist.ErrPendingChange):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, code int, err error) {
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, logger, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

// streamNDJSON writes one JSON document per line.
func streamNDJSON[T any](w http.ResponseWriter, logger *slog.Logger, items []T) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			logger.Error("encode error", "err", err)
			return
		}
	}
}
