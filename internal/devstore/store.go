// Package devstore is an in-memory storefront backend serving per-shopper
// carts and wishlists. It backs cmd/devapi and integration tests.
package devstore

import (
	"sync"

	"shopsync/internal/adapter"
	"shopsync/internal/model"
)

// Store holds one cart and one wishlist per bearer token.
// Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	catalog *Catalog
	owners  map[string]*owner
}

// owner is one shopper's collections, in insertion order.
type owner struct {
	cart     []model.Item
	wishlist []model.Item
}

func (o *owner) collection(kind model.Kind) *[]model.Item {
	if kind == model.KindWishlist {
		return &o.wishlist
	}
	return &o.cart
}

// New creates an empty store. A nil catalog accepts any product id.
func New(catalog *Catalog) *Store {
	return &Store{
		catalog: catalog,
		owners:  make(map[string]*owner),
	}
}

func (s *Store) ownerLocked(token string) *owner {
	o, ok := s.owners[token]
	if !ok {
		o = &owner{}
		s.owners[token] = o
	}
	return o
}

// Items returns a copy of token's collection.
func (s *Store) Items(token string, kind model.Kind) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := *s.ownerLocked(token).collection(kind)
	return append([]model.Item{}, items...)
}

// Add adds productID. Cart quantities accumulate; adding a product already on
// the wishlist changes nothing.
func (s *Store) Add(token string, kind model.Kind, productID model.ProductID, quantity int) ([]model.Item, error) {
	item, err := s.newItem(kind, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.ownerLocked(token).collection(kind)
	if idx := model.FindItem(*coll, productID); idx >= 0 {
		if kind.HasQuantity() {
			(*coll)[idx].Quantity += item.Quantity
		}
	} else {
		*coll = append(*coll, item)
	}
	return append([]model.Item{}, *coll...), nil
}

// SetQuantity sets a cart line's quantity.
func (s *Store) SetQuantity(token string, productID model.ProductID, quantity int) ([]model.Item, error) {
	if quantity < 1 {
		return nil, model.NewValidationError("quantity", "must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.ownerLocked(token).collection(model.KindCart)
	idx := model.FindItem(*coll, productID)
	if idx < 0 {
		return nil, model.NewNotFoundError("cart item")
	}
	(*coll)[idx].Quantity = quantity
	return append([]model.Item{}, *coll...), nil
}

// Remove deletes productID. Removing an absent product succeeds.
func (s *Store) Remove(token string, kind model.Kind, productID model.ProductID) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.ownerLocked(token).collection(kind)
	kept := (*coll)[:0]
	for _, it := range *coll {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	*coll = kept
	return append([]model.Item{}, *coll...)
}

// Clear empties token's collection.
func (s *Store) Clear(token string, kind model.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.ownerLocked(token).collection(kind) = nil
}

// Sync upserts entries: each listed product ends with the sent quantity and
// unlisted items are untouched. Entries are validated before any is applied.
func (s *Store) Sync(token string, kind model.Kind, entries []adapter.SyncEntry) ([]model.Item, error) {
	items := make([]model.Item, 0, len(entries))
	for _, e := range entries {
		item, err := s.newItem(kind, e.ProductID, e.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.ownerLocked(token).collection(kind)
	for _, item := range items {
		if idx := model.FindItem(*coll, item.ProductID); idx >= 0 {
			(*coll)[idx].Quantity = item.Quantity
			continue
		}
		*coll = append(*coll, item)
	}
	return append([]model.Item{}, *coll...), nil
}

// newItem validates input and builds an item enriched from the catalog.
func (s *Store) newItem(kind model.Kind, productID model.ProductID, quantity int) (model.Item, error) {
	if !kind.Valid() {
		return model.Item{}, model.NewNotFoundError("collection")
	}
	item := model.Item{ProductID: productID, Quantity: quantity}.Normalize(kind)
	if err := item.Validate(kind); err != nil {
		return model.Item{}, err
	}

	if s.catalog.Len() > 0 {
		p, ok := s.catalog.Lookup(item.ProductID)
		if !ok {
			return model.Item{}, model.NewValidationError("productId", "unknown product "+string(item.ProductID))
		}
		item = p.enrich(item)
	}
	return item, nil
}
