// Package model defines the item records shared by the guest store, the remote
// client, and the collection views.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which collection an item belongs to.
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// HasQuantity reports whether items of this kind carry a quantity.
// Wishlist entries are product-only.
func (k Kind) HasQuantity() bool {
	return k == KindCart
}

// Valid reports whether k is a known collection kind.
func (k Kind) Valid() bool {
	return k == KindCart || k == KindWishlist
}

// ProductID is the canonical product identifier.
// The storefront API sends numeric ids as JSON numbers; both forms are accepted.
type ProductID string

// UnmarshalJSON accepts a JSON string or number.
func (p *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*p = ProductID(n.String())
	return nil
}

// MarshalJSON encodes numeric ids as JSON numbers and everything else as strings.
func (p ProductID) MarshalJSON() ([]byte, error) {
	if p.IsNumeric() {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// IsNumeric reports whether the id is a canonical non-negative integer.
// Ids with leading zeros such as "007" are not numeric and stay strings.
func (p ProductID) IsNumeric() bool {
	if p == "" {
		return false
	}
	n, err := strconv.ParseUint(string(p), 10, 64)
	return err == nil && strconv.FormatUint(n, 10) == string(p)
}

func (p ProductID) String() string {
	return string(p)
}

// Item is a cart line or wishlist entry.
// Variant, Color and Size are explicit optional attributes; only Variant
// participates in identity.
type Item struct {
	ID            string    `json:"id"`
	ProductID     ProductID `json:"productId"`
	Price         Money     `json:"price"`
	OriginalPrice Money     `json:"originalPrice,omitempty"`
	Image         string    `json:"image,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	Slug          string    `json:"slug,omitempty"`

	Variant string `json:"variant,omitempty"`
	Color   string `json:"color,omitempty"`
	Size    string `json:"size,omitempty"`
}

// ItemKey builds the identity used to match items across stores.
// Uses ProductID alone if no variant, or ProductID:Variant if variant present.
func ItemKey(productID ProductID, variant string) string {
	if variant == "" {
		return string(productID)
	}
	return string(productID) + ":" + variant
}

// Key returns the item's identity derived from its product and variant.
func (it Item) Key() string {
	return ItemKey(it.ProductID, it.Variant)
}

// Normalize fills the derived fields and clamps kind-specific ones.
// Wishlist entries never carry a quantity.
func (it Item) Normalize(kind Kind) Item {
	it.ProductID = ProductID(strings.TrimSpace(string(it.ProductID)))
	it.ID = it.Key()
	if !kind.HasQuantity() {
		it.Quantity = 0
	}
	return it
}

// Validate checks the record at a store boundary.
func (it Item) Validate(kind Kind) error {
	if strings.TrimSpace(string(it.ProductID)) == "" {
		return NewValidationError("productId", "required")
	}
	if kind.HasQuantity() && it.Quantity < 1 {
		return NewValidationError("quantity", "must be at least 1")
	}
	if it.Price < 0 || it.OriginalPrice < 0 {
		return NewValidationError("price", "must not be negative")
	}
	return nil
}

// LineTotal returns price × quantity in minor units.
// Wishlist entries count once.
func (it Item) LineTotal() Money {
	qty := it.Quantity
	if qty < 1 {
		qty = 1
	}
	return it.Price * Money(qty)
}

// FindItem returns the index of the first item with the given product id, or -1.
func FindItem(items []Item, productID ProductID) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
