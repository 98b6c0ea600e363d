package handler

import (
	"log/slog"
	"net/http"

	"shopsync/internal/adapter"
	"shopsync/internal/middleware"
	"shopsync/internal/model"
	"shopsync/internal/negotiation"
)

// collectionFunc handles a request for one collection kind and shopper.
type collectionFunc func(w http.ResponseWriter, r *http.Request, kind model.Kind, token string)

// collection binds kind and the authenticated token to fn.
func (h *Handler) collection(kind model.Kind, fn collectionFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, kind, middleware.TokenFromContext(r.Context()))
	})
}

// clientAttr describes the negotiated client for logs.
func clientAttr(r *http.Request) slog.Attr {
	nc := negotiation.GetNegotiatedContext(r.Context())
	switch {
	case nc == nil:
		return slog.String("client", "unknown")
	case nc.Legacy:
		return slog.String("client", "legacy")
	default:
		return slog.String("client", nc.Client.Name+"/"+nc.Client.Version)
	}
}

// itemsResponse is the body of every successful collection response.
type itemsResponse struct {
	Items []model.Item `json:"items"`
}

type addRequest struct {
	ProductID model.ProductID `json:"productId"`
	Quantity  int             `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartSyncRequest struct {
	Items []adapter.SyncEntry `json:"items"`
}

type wishlistSyncRequest struct {
	Items []model.ProductID `json:"items"`
}

// handleList returns the collection.
// GET /cart, GET /wishlist
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, kind model.Kind, token string) {
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: h.store.Items(token, kind)})
}

// handleAdd adds a product; cart quantities accumulate and default to one.
// POST /cart {productId, quantity}, POST /wishlist {productId}
func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request, kind model.Kind, token string) {
	var req addRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if kind.HasQuantity() && req.Quantity == 0 {
		req.Quantity = 1
	}

	items, err := h.store.Add(token, kind, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "item added",
		slog.String("resource", string(kind)),
		slog.String("product_id", string(req.ProductID)),
		slog.Int("quantity", req.Quantity),
		clientAttr(r),
	)
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

// handleSetQuantity sets a cart line's quantity.
// PUT /cart/{productId} {quantity}
func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	productID := model.ProductID(r.PathValue("productId"))

	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	items, err := h.store.SetQuantity(token, productID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

// handleRemove deletes a product. Removing an absent product succeeds.
// DELETE /cart/{productId}, DELETE /wishlist/{productId}
func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request, kind model.Kind, token string) {
	productID := model.ProductID(r.PathValue("productId"))
	if productID == "" {
		h.writeError(w, model.NewValidationError("productId", "required"))
		return
	}
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: h.store.Remove(token, kind, productID)})
}

// handleClear empties the collection.
// DELETE /cart, DELETE /wishlist
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request, kind model.Kind, token string) {
	h.store.Clear(token, kind)
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: []model.Item{}})
}

// handleSync upserts a batch of products.
// POST /cart/sync {items:[{productId,quantity}]}, POST /wishlist/sync {items:[productId]}
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request, kind model.Kind, token string) {
	var entries []adapter.SyncEntry
	if kind.HasQuantity() {
		var req cartSyncRequest
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, err)
			return
		}
		entries = req.Items
	} else {
		var req wishlistSyncRequest
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, err)
			return
		}
		for _, id := range req.Items {
			entries = append(entries, adapter.SyncEntry{ProductID: id})
		}
	}

	items, err := h.store.Sync(token, kind, entries)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "collection synced",
		slog.String("resource", string(kind)),
		slog.Int("entries", len(entries)),
		clientAttr(r),
	)
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}
