// Package handler provides the HTTP handlers of the reference storefront API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shopsync/internal/devstore"
	"shopsync/internal/middleware"
	"shopsync/internal/model"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store  *devstore.Store
	logger *slog.Logger
}

// New creates a new Handler backed by store.
func New(store *devstore.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns. Collection routes require a
// bearer token; the token selects the shopper.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	auth := middleware.BearerAuth

	mux.Handle("GET /cart", auth(h.collection(model.KindCart, h.handleList)))
	mux.Handle("POST /cart", auth(h.collection(model.KindCart, h.handleAdd)))
	mux.Handle("PUT /cart/{productId}", auth(http.HandlerFunc(h.handleSetQuantity)))
	mux.Handle("DELETE /cart/{productId}", auth(h.collection(model.KindCart, h.handleRemove)))
	mux.Handle("DELETE /cart", auth(h.collection(model.KindCart, h.handleClear)))
	mux.Handle("POST /cart/sync", auth(h.collection(model.KindCart, h.handleSync)))

	mux.Handle("GET /wishlist", auth(h.collection(model.KindWishlist, h.handleList)))
	mux.Handle("POST /wishlist", auth(h.collection(model.KindWishlist, h.handleAdd)))
	mux.Handle("DELETE /wishlist/{productId}", auth(h.collection(model.KindWishlist, h.handleRemove)))
	mux.Handle("DELETE /wishlist", auth(h.collection(model.KindWishlist, h.handleClear)))
	mux.Handle("POST /wishlist/sync", auth(h.collection(model.KindWishlist, h.handleSync)))

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if !errors.As(err, &apiErr) {
		// Wrap unexpected errors
		apiErr = model.NewInternalError(err)
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	// Limit request body size to prevent DoS
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
