// Package adapter defines the interface to the authoritative, server-side
// collections. Implementations translate these calls to a storefront API.
package adapter

import (
	"context"

	"shopsync/internal/model"
)

// Adapter abstracts one remote collection (cart or wishlist).
// Every method performs at most one request and authenticates with token.
//
// Errors are *model.APIError values; callers decide whether to surface them.
// No method retries.
type Adapter interface {
	// Kind reports which collection this adapter serves.
	Kind() model.Kind

	// FetchAll returns the current remote collection.
	FetchAll(ctx context.Context, token string) ([]model.Item, error)

	// Add adds a product. For the cart, quantity is added to any existing line.
	// For the wishlist, quantity is ignored.
	Add(ctx context.Context, token string, productID model.ProductID, quantity int) error

	// Remove deletes a product from the collection.
	Remove(ctx context.Context, token string, productID model.ProductID) error

	// UpdateQuantity sets the quantity of a cart line.
	// Wishlists return a model.ErrUnsupported error without a request.
	UpdateQuantity(ctx context.Context, token string, productID model.ProductID, quantity int) error

	// Clear empties the collection.
	Clear(ctx context.Context, token string) error

	// SyncBatch upserts the given entries in one request. Each listed
	// product ends with the sent quantity; unlisted items are untouched.
	SyncBatch(ctx context.Context, token string, entries []SyncEntry) error
}

// SyncEntry is one product pushed during reconciliation.
// Quantity is ignored for wishlists.
type SyncEntry struct {
	ProductID model.ProductID `json:"productId"`
	Quantity  int             `json:"quantity,omitempty"`
}

// Config holds the connection settings shared by adapter implementations.
type Config struct {
	BaseURL string
	APIKey  string
}
