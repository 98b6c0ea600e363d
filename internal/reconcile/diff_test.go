package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"shopsync/internal/model"
)

func TestDiffItems_EmptyToItems(t *testing.T) {
	desired := []model.Item{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}

	diff := DiffItems(nil, desired)

	if len(diff.ToAdd) != 2 {
		t.Errorf("ToAdd = %d, want 2", len(diff.ToAdd))
	}
	if len(diff.ToRemove) != 0 {
		t.Errorf("ToRemove = %d, want 0", len(diff.ToRemove))
	}
	if len(diff.ToUpdate) != 0 {
		t.Errorf("ToUpdate = %d, want 0", len(diff.ToUpdate))
	}
}

func TestDiffItems_ItemsToEmpty(t *testing.T) {
	current := []model.Item{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}

	diff := DiffItems(current, nil)

	want := []ItemToRemove{{ProductID: "prod-1"}, {ProductID: "prod-2"}}
	if d := cmp.Diff(want, diff.ToRemove); d != "" {
		t.Errorf("ToRemove mismatch (-want +got):\n%s", d)
	}
	if len(diff.ToAdd) != 0 || len(diff.ToUpdate) != 0 {
		t.Errorf("unexpected adds/updates: %+v", diff)
	}
}

func TestDiffItems_MixedOperations(t *testing.T) {
	current := []model.Item{
		{ProductID: "keep", Quantity: 1},
		{ProductID: "bump", Quantity: 1},
		{ProductID: "drop", Quantity: 4},
	}
	desired := []model.Item{
		{ProductID: "new", Quantity: 3},
		{ProductID: "keep", Quantity: 1},
		{ProductID: "bump", Quantity: 5},
	}

	got := DiffItems(current, desired)
	want := &ItemDiff{
		ToAdd:    []ItemToAdd{{ProductID: "new", Quantity: 3}},
		ToRemove: []ItemToRemove{{ProductID: "drop"}},
		ToUpdate: []ItemToUpdate{{ProductID: "bump", OldQuantity: 1, NewQuantity: 5}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffItems_WithVariants(t *testing.T) {
	// Same product, different variants are distinct items
	current := []model.Item{{ProductID: "shirt", Variant: "red", Quantity: 1}}
	desired := []model.Item{
		{ProductID: "shirt", Variant: "red", Quantity: 1},
		{ProductID: "shirt", Variant: "blue", Quantity: 2},
	}

	diff := DiffItems(current, desired)

	if len(diff.ToAdd) != 1 || diff.ToAdd[0].Variant != "blue" {
		t.Errorf("ToAdd = %+v, want the blue variant", diff.ToAdd)
	}
	if len(diff.ToUpdate) != 0 || len(diff.ToRemove) != 0 {
		t.Errorf("unexpected updates/removes: %+v", diff)
	}
}

func TestItemDiff_IsEmpty(t *testing.T) {
	items := []model.Item{{ProductID: "a", Quantity: 1}}
	if !DiffItems(items, items).IsEmpty() {
		t.Error("identical collections should produce an empty diff")
	}
	if DiffItems(nil, items).IsEmpty() {
		t.Error("adding an item should not produce an empty diff")
	}
}

func TestDiffIDs(t *testing.T) {
	tests := []struct {
		name       string
		current    []model.ProductID
		desired    []model.ProductID
		wantAdd    []model.ProductID
		wantRemove []model.ProductID
	}{
		{"empty to ids", nil, []model.ProductID{"2", "1"}, []model.ProductID{"1", "2"}, nil},
		{"ids to empty", []model.ProductID{"1"}, nil, nil, []model.ProductID{"1"}},
		{"partial overlap", []model.ProductID{"1", "2"}, []model.ProductID{"2", "3"}, []model.ProductID{"3"}, []model.ProductID{"1"}},
		{"duplicates", []model.ProductID{"1"}, []model.ProductID{"1", "1"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffIDs(tt.current, tt.desired)
			if d := cmp.Diff(tt.wantAdd, diff.ToAdd); d != "" {
				t.Errorf("ToAdd mismatch (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantRemove, diff.ToRemove); d != "" {
				t.Errorf("ToRemove mismatch (-want +got):\n%s", d)
			}
			if diff.IsEmpty() != (len(tt.wantAdd) == 0 && len(tt.wantRemove) == 0) {
				t.Errorf("IsEmpty() = %v", diff.IsEmpty())
			}
		})
	}
}
