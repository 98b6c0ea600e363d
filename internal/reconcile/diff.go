// Package reconcile merges a guest collection into the remote collection on
// login, and computes the change sets used to describe that merge.
package reconcile

import (
	"sort"

	"shopsync/internal/model"
)

// ItemDiff describes how a desired collection differs from the current one.
// Entries are sorted by item key.
type ItemDiff struct {
	ToAdd    []ItemToAdd    // Items in desired but not current
	ToRemove []ItemToRemove // Items in current but not desired
	ToUpdate []ItemToUpdate // Items in both with different quantities
}

// ItemToAdd specifies a new item.
type ItemToAdd struct {
	ProductID model.ProductID
	Variant   string
	Quantity  int
}

// ItemToRemove specifies an item missing from the desired state.
type ItemToRemove struct {
	ProductID model.ProductID
	Variant   string
}

// ItemToUpdate specifies a quantity change for an existing item.
type ItemToUpdate struct {
	ProductID   model.ProductID
	Variant     string
	OldQuantity int
	NewQuantity int
}

// IsEmpty returns true if no changes are needed.
func (d *ItemDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0 && len(d.ToUpdate) == 0
}

// DiffItems computes the delta between current and desired items.
// Matching is by item key (product id plus variant).
//
// Algorithm:
//  1. Build lookup maps for O(1) access
//  2. For each desired item: if exists in current with different qty → update; if not exists → add
//  3. For each current item: if not in desired → remove
func DiffItems(current, desired []model.Item) *ItemDiff {
	diff := &ItemDiff{}

	currentByKey := make(map[string]model.Item, len(current))
	for _, item := range current {
		currentByKey[item.Key()] = item
	}

	desiredByKey := make(map[string]model.Item, len(desired))
	for _, item := range desired {
		desiredByKey[item.Key()] = item
	}

	for _, key := range sortedKeys(desiredByKey) {
		want := desiredByKey[key]
		if have, exists := currentByKey[key]; exists {
			if have.Quantity != want.Quantity {
				diff.ToUpdate = append(diff.ToUpdate, ItemToUpdate{
					ProductID:   want.ProductID,
					Variant:     want.Variant,
					OldQuantity: have.Quantity,
					NewQuantity: want.Quantity,
				})
			}
			continue
		}
		diff.ToAdd = append(diff.ToAdd, ItemToAdd{
			ProductID: want.ProductID,
			Variant:   want.Variant,
			Quantity:  want.Quantity,
		})
	}

	for _, key := range sortedKeys(currentByKey) {
		if _, exists := desiredByKey[key]; !exists {
			have := currentByKey[key]
			diff.ToRemove = append(diff.ToRemove, ItemToRemove{
				ProductID: have.ProductID,
				Variant:   have.Variant,
			})
		}
	}

	return diff
}

// IDDiff describes set membership changes between two id sets.
type IDDiff struct {
	ToAdd    []model.ProductID // Ids in desired but not current
	ToRemove []model.ProductID // Ids in current but not desired
}

// IsEmpty returns true if the sets are equal.
func (d *IDDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// DiffIDs computes the set difference between current and desired ids.
func DiffIDs(current, desired []model.ProductID) *IDDiff {
	diff := &IDDiff{}

	currentSet := make(map[model.ProductID]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}

	desiredSet := make(map[model.ProductID]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	for id := range desiredSet {
		if !currentSet[id] {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for id := range currentSet {
		if !desiredSet[id] {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}

	sort.Slice(diff.ToAdd, func(i, j int) bool { return diff.ToAdd[i] < diff.ToAdd[j] })
	sort.Slice(diff.ToRemove, func(i, j int) bool { return diff.ToRemove[i] < diff.ToRemove[j] })
	return diff
}

func sortedKeys(m map[string]model.Item) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
