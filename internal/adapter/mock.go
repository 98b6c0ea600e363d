package adapter

import (
	"context"

	"shopsync/internal/model"
)

// Mock implements Adapter for testing.
// Each method can be configured via function fields; unset mutations succeed
// and an unset FetchAll returns an empty collection.
type Mock struct {
	KindValue model.Kind

	FetchAllFunc       func(ctx context.Context, token string) ([]model.Item, error)
	AddFunc            func(ctx context.Context, token string, productID model.ProductID, quantity int) error
	RemoveFunc         func(ctx context.Context, token string, productID model.ProductID) error
	UpdateQuantityFunc func(ctx context.Context, token string, productID model.ProductID, quantity int) error
	ClearFunc          func(ctx context.Context, token string) error
	SyncBatchFunc      func(ctx context.Context, token string, entries []SyncEntry) error
}

// Kind returns KindValue, defaulting to the cart.
func (m *Mock) Kind() model.Kind {
	if m.KindValue == "" {
		return model.KindCart
	}
	return m.KindValue
}

// FetchAll calls the configured FetchAllFunc or returns an empty collection.
func (m *Mock) FetchAll(ctx context.Context, token string) ([]model.Item, error) {
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx, token)
	}
	return []model.Item{}, nil
}

func (m *Mock) Add(ctx context.Context, token string, productID model.ProductID, quantity int) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, token, productID, quantity)
	}
	return nil
}

func (m *Mock) Remove(ctx context.Context, token string, productID model.ProductID) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, token, productID)
	}
	return nil
}

// UpdateQuantity calls the configured func; an unconfigured wishlist mock
// reports the operation as unsupported like the real client.
func (m *Mock) UpdateQuantity(ctx context.Context, token string, productID model.ProductID, quantity int) error {
	if m.UpdateQuantityFunc != nil {
		return m.UpdateQuantityFunc(ctx, token, productID, quantity)
	}
	if !m.Kind().HasQuantity() {
		return model.NewUnsupportedError(m.Kind(), "quantity updates")
	}
	return nil
}

func (m *Mock) Clear(ctx context.Context, token string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, token)
	}
	return nil
}

func (m *Mock) SyncBatch(ctx context.Context, token string, entries []SyncEntry) error {
	if m.SyncBatchFunc != nil {
		return m.SyncBatchFunc(ctx, token, entries)
	}
	return nil
}

// Verify Mock implements Adapter interface at compile time.
var _ Adapter = (*Mock)(nil)
