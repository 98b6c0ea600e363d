package collection

import (
	"context"

	"shopsync/internal/adapter"
	"shopsync/internal/guest"
	"shopsync/internal/model"
)

// Cart is the shopping cart view.
type Cart struct {
	*view
}

// NewCart creates a cart view over store and remote.
func NewCart(store *guest.Store, remote adapter.Adapter, opts Options) *Cart {
	return &Cart{view: newView(model.KindCart, store, remote, opts)}
}

// Add puts item in the cart. A zero quantity means one. Adding a product that
// is already in the guest cart raises its quantity.
func (c *Cart) Add(ctx context.Context, item model.Item) error {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return c.add(ctx, item, func(existing *model.Item, added model.Item) {
		existing.Quantity += added.Quantity
	})
}

// UpdateQuantity sets the quantity of productID. Quantities below one are
// rejected without touching either store. The quantity applies to the product
// as a whole: a guest cart holding several variant lines of productID keeps
// the first line at quantity and drops the rest.
func (c *Cart) UpdateQuantity(ctx context.Context, productID model.ProductID, quantity int) error {
	if productID == "" {
		return model.NewValidationError("productId", "required")
	}
	if quantity < 1 {
		return model.NewValidationError("quantity", "must be at least 1")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.LoggedIn() {
		if err := c.remote.UpdateQuantity(ctx, c.session.Token, productID, quantity); err != nil {
			c.fail(ctx, OpUpdateQuantity, err)
		}
		c.reloadLocked(ctx)
		return nil
	}

	items := c.guest.Load(ctx)
	idx := model.FindItem(items, productID)
	if idx < 0 {
		c.reloadLocked(ctx)
		return model.NewNotFoundError("cart item")
	}
	items[idx].Quantity = quantity
	kept := items[:idx+1]
	for _, it := range items[idx+1:] {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.saveGuest(ctx, OpUpdateQuantity, kept)
	c.reloadLocked(ctx)
	return nil
}

// Total is Σ price × quantity over the loaded items, in minor units.
func (c *Cart) Total() model.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total model.Money
	for _, it := range c.items {
		total += it.LineTotal()
	}
	return total
}

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}
