package collection

import (
	"context"

	"shopsync/internal/adapter"
	"shopsync/internal/guest"
	"shopsync/internal/model"
)

// Wishlist is the saved-for-later view. Entries carry no quantity.
type Wishlist struct {
	*view
}

// NewWishlist creates a wishlist view over store and remote.
func NewWishlist(store *guest.Store, remote adapter.Adapter, opts Options) *Wishlist {
	return &Wishlist{view: newView(model.KindWishlist, store, remote, opts)}
}

// Add saves item. Adding a product already on the guest wishlist is a no-op.
func (w *Wishlist) Add(ctx context.Context, item model.Item) error {
	return w.add(ctx, item, func(*model.Item, model.Item) {})
}

// Toggle removes item if its product is on the wishlist and adds it
// otherwise. It reports whether the item is on the wishlist afterwards.
// The membership check and the mutation happen under one lock, so concurrent
// toggles of the same product alternate instead of both adding.
func (w *Wishlist) Toggle(ctx context.Context, item model.Item) (bool, error) {
	item = item.Normalize(w.kind)
	if err := item.Validate(w.kind); err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.toggleLocked(ctx, item), nil
}

func (w *Wishlist) toggleLocked(ctx context.Context, item model.Item) bool {
	if !w.loaded {
		w.reloadLocked(ctx)
	}
	if model.FindItem(w.items, item.ProductID) >= 0 {
		w.removeLocked(ctx, item.ProductID)
	} else {
		w.addLocked(ctx, item, func(*model.Item, model.Item) {})
	}
	w.reloadLocked(ctx)
	return model.FindItem(w.items, item.ProductID) >= 0
}
