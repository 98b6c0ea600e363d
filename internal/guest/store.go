package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"shopsync/internal/model"
)

// KeyPrefix namespaces every slot key written by shopsync.
const KeyPrefix = "shopsync."

// Store is the guest collection for one resource, serialized as a JSON array
// of items under a fixed slot key.
type Store struct {
	kind   model.Kind
	key    string
	slot   Slot
	logger *slog.Logger
}

// NewStore creates the guest store for kind on slot.
func NewStore(kind model.Kind, slot Slot, logger *slog.Logger) *Store {
	return &Store{
		kind:   kind,
		key:    KeyPrefix + string(kind),
		slot:   slot,
		logger: logger.With("resource", string(kind), "store", "guest"),
	}
}

// Key returns the slot key holding this collection.
func (s *Store) Key() string {
	return s.key
}

// Kind returns the resource this store holds.
func (s *Store) Kind() model.Kind {
	return s.kind
}

// Load returns the stored items. Missing or unreadable data yields an empty
// collection; invalid records are dropped individually. Load never fails.
func (s *Store) Load(ctx context.Context) []model.Item {
	data, found, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("guest store read failed", "key", s.key, "error", err)
		return []model.Item{}
	}
	if !found || len(data) == 0 {
		return []model.Item{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("guest store data corrupt, ignoring", "key", s.key, "error", err)
		return []model.Item{}
	}

	items := make([]model.Item, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, rec := range raw {
		var it model.Item
		if err := json.Unmarshal(rec, &it); err != nil {
			s.logger.Warn("dropping unreadable guest record", "key", s.key, "index", i, "error", err)
			continue
		}
		it = it.Normalize(s.kind)
		if err := it.Validate(s.kind); err != nil {
			s.logger.Warn("dropping invalid guest record", "key", s.key, "index", i, "error", err)
			continue
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items
}

// Save replaces the stored collection. Every item is normalized and
// validated first; nothing is written if any item is invalid.
func (s *Store) Save(ctx context.Context, items []model.Item) error {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		it = it.Normalize(s.kind)
		if err := it.Validate(s.kind); err != nil {
			return err
		}
		out = append(out, it)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode guest %s: %w", s.kind, err)
	}
	if err := s.slot.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save guest %s: %w", s.kind, err)
	}
	return nil
}

// Clear removes the stored collection.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.slot.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear guest %s: %w", s.kind, err)
	}
	return nil
}
