package collection

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"shopsync/internal/adapter"
	"shopsync/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRemote is an in-memory remote collection with the storefront API's
// semantics: POST increments, PUT sets, sync upserts.
type memRemote struct {
	mu    sync.Mutex
	kind  model.Kind
	items map[model.ProductID]model.Item
	calls int

	// fail, when set, is returned by every call.
	fail error
}

func newMemRemote(kind model.Kind, initial ...model.Item) *memRemote {
	r := &memRemote{kind: kind, items: map[model.ProductID]model.Item{}}
	for _, it := range initial {
		r.items[it.ProductID] = it.Normalize(kind)
	}
	return r
}

func (r *memRemote) Kind() model.Kind { return r.kind }

func (r *memRemote) FetchAll(ctx context.Context, token string) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *memRemote) Add(ctx context.Context, token string, id model.ProductID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	it, ok := r.items[id]
	if !ok {
		it = model.Item{ProductID: id}.Normalize(r.kind)
	}
	if r.kind.HasQuantity() {
		it.Quantity += qty
	}
	r.items[id] = it
	return nil
}

func (r *memRemote) Remove(ctx context.Context, token string, id model.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	delete(r.items, id)
	return nil
}

func (r *memRemote) UpdateQuantity(ctx context.Context, token string, id model.ProductID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	it, ok := r.items[id]
	if !ok {
		return model.NewNotFoundError("cart item")
	}
	it.Quantity = qty
	r.items[id] = it
	return nil
}

func (r *memRemote) Clear(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	r.items = map[model.ProductID]model.Item{}
	return nil
}

func (r *memRemote) SyncBatch(ctx context.Context, token string, entries []adapter.SyncEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	for _, e := range entries {
		it, ok := r.items[e.ProductID]
		if !ok {
			it = model.Item{ProductID: e.ProductID}.Normalize(r.kind)
		}
		if r.kind.HasQuantity() {
			it.Quantity = e.Quantity
		}
		r.items[e.ProductID] = it
	}
	return nil
}

func (r *memRemote) setFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *memRemote) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *memRemote) quantities() map[model.ProductID]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.ProductID]int, len(r.items))
	for id, it := range r.items {
		out[id] = it.Quantity
	}
	return out
}

// failures collects reported failures.
type failures struct {
	mu  sync.Mutex
	got []Failure
}

func (f *failures) Report(_ context.Context, fl Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, fl)
}

func (f *failures) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ops []string
	for _, fl := range f.got {
		ops = append(ops, fl.Op)
	}
	return ops
}

var _ adapter.Adapter = (*memRemote)(nil)
