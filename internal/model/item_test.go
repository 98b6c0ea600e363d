package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestProductIDJSON(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`{"productId": 7, "price": 12.5, "quantity": 2}`), &item); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if item.ProductID != "7" {
		t.Errorf("ProductID = %q, want 7", item.ProductID)
	}
	if item.Price != 1250 {
		t.Errorf("Price = %d, want 1250", item.Price)
	}

	if err := json.Unmarshal([]byte(`{"productId": "sku-12"}`), &item); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if item.ProductID != "sku-12" {
		t.Errorf("ProductID = %q, want sku-12", item.ProductID)
	}

	numeric, _ := json.Marshal(ProductID("42"))
	if string(numeric) != "42" {
		t.Errorf("Marshal numeric = %s, want 42", numeric)
	}
	text, _ := json.Marshal(ProductID("sku-12"))
	if string(text) != `"sku-12"` {
		t.Errorf("Marshal text = %s, want \"sku-12\"", text)
	}

	padded, err := json.Marshal(Item{ProductID: "007", Quantity: 2})
	if err != nil {
		t.Fatalf("Marshal padded id error: %v", err)
	}
	var back Item
	if err := json.Unmarshal(padded, &back); err != nil {
		t.Fatalf("Unmarshal padded id error: %v", err)
	}
	if back.ProductID != "007" {
		t.Errorf("round-tripped ProductID = %q, want 007", back.ProductID)
	}
}

func TestProductIDIsNumeric(t *testing.T) {
	tests := []struct {
		id   ProductID
		want bool
	}{
		{"0", true},
		{"42", true},
		{"007", false},
		{"00", false},
		{"-1", false},
		{"+7", false},
		{"sku-12", false},
		{"99999999999999999999", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.id.IsNumeric(); got != tt.want {
			t.Errorf("ProductID(%q).IsNumeric() = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestItemNormalize(t *testing.T) {
	it := Item{ProductID: " 9 ", Variant: "red", Quantity: 3}

	cart := it.Normalize(KindCart)
	if cart.ID != "9:red" {
		t.Errorf("ID = %q, want 9:red", cart.ID)
	}
	if cart.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", cart.Quantity)
	}

	wish := it.Normalize(KindWishlist)
	if wish.Quantity != 0 {
		t.Errorf("wishlist Quantity = %d, want 0", wish.Quantity)
	}
	if wish.ID != "9:red" {
		t.Errorf("wishlist ID = %q, want 9:red", wish.ID)
	}
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		kind    Kind
		wantErr bool
	}{
		{"valid cart line", Item{ProductID: "1", Quantity: 1}, KindCart, false},
		{"missing product", Item{Quantity: 1}, KindCart, true},
		{"zero quantity cart", Item{ProductID: "1"}, KindCart, true},
		{"zero quantity wishlist", Item{ProductID: "1"}, KindWishlist, false},
		{"negative price", Item{ProductID: "1", Quantity: 1, Price: -1}, KindCart, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error should wrap ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	if got := (Item{Price: 250, Quantity: 3}).LineTotal(); got != 750 {
		t.Errorf("LineTotal() = %d, want 750", got)
	}
	if got := (Item{Price: 250}).LineTotal(); got != 250 {
		t.Errorf("LineTotal() without quantity = %d, want 250", got)
	}
}

func TestFindItem(t *testing.T) {
	items := []Item{{ProductID: "1"}, {ProductID: "2"}}
	if got := FindItem(items, "2"); got != 1 {
		t.Errorf("FindItem(2) = %d, want 1", got)
	}
	if got := FindItem(items, "3"); got != -1 {
		t.Errorf("FindItem(3) = %d, want -1", got)
	}
}
