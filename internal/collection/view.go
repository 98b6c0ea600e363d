// Package collection provides the cart and wishlist views. A view hides
// whether the shopper is signed in: reads and writes go to the guest store
// without a session and to the remote store with one.
package collection

import (
	"context"
	"log/slog"
	"sync"

	"shopsync/internal/adapter"
	"shopsync/internal/guest"
	"shopsync/internal/model"
	"shopsync/internal/reconcile"
	"shopsync/internal/session"
)

// Syncer runs the guest → remote merge on login.
// *reconcile.Reconciler implements it.
type Syncer interface {
	Run(ctx context.Context, token string) (reconcile.Result, error)
}

// Options configures a view.
type Options struct {
	// Syncer runs on every login transition. Nil disables reconciliation.
	Syncer Syncer
	// Reporter receives absorbed failures. Defaults to a no-op; failures are
	// logged either way.
	Reporter Reporter
	Logger   *slog.Logger
	// Session is the initial session. Views start unloaded.
	Session session.Session
}

// view holds the state shared by Cart and Wishlist.
// mu is held across dispatch and reload, so mutations on one resource are
// serialized.
type view struct {
	mu       sync.Mutex
	kind     model.Kind
	guest    *guest.Store
	remote   adapter.Adapter
	syncer   Syncer
	reporter Reporter
	logger   *slog.Logger

	session session.Session
	items   []model.Item
	loaded  bool
}

func newView(kind model.Kind, store *guest.Store, remote adapter.Adapter, opts Options) *view {
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &view{
		kind:     kind,
		guest:    store,
		remote:   remote,
		syncer:   opts.Syncer,
		reporter: opts.Reporter,
		logger:   opts.Logger.With("resource", string(kind), "component", "view"),
		session:  opts.Session,
		items:    []model.Item{},
	}
}

// Items returns a copy of the last loaded items.
func (v *view) Items() []model.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Item(nil), v.items...)
}

// IsLoaded reports whether at least one load has completed.
func (v *view) IsLoaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// IsLoggedIn reports whether the view currently targets the remote store.
func (v *view) IsLoggedIn() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.LoggedIn()
}

// Contains reports whether any loaded item has productID.
func (v *view) Contains(productID model.ProductID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return model.FindItem(v.items, productID) >= 0
}

// Reload replaces the items with the active store's contents.
func (v *view) Reload(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloadLocked(ctx)
}

// SetSession switches the active store. Entering an authenticated session
// from a guest one runs the syncer first. The view is reloaded afterwards.
// Sync failures are reported, not returned; the guest items stay put and are
// retried on the next login transition.
func (v *view) SetSession(ctx context.Context, next session.Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.session
	v.session = next

	if session.IsLogin(prev, next) && v.syncer != nil {
		if _, err := v.syncer.Run(ctx, next.Token); err != nil {
			v.fail(ctx, OpSync, err)
		}
	}

	v.reloadLocked(ctx)
	return ctx.Err()
}

// Remove deletes every line of productID from the active store.
func (v *view) Remove(ctx context.Context, productID model.ProductID) error {
	if productID == "" {
		return model.NewValidationError("productId", "required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.removeLocked(ctx, productID)
	v.reloadLocked(ctx)
	return nil
}

// Clear empties the active store.
func (v *view) Clear(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.session.LoggedIn() {
		if err := v.remote.Clear(ctx, v.session.Token); err != nil {
			v.fail(ctx, OpClear, err)
		}
	} else if err := v.guest.Clear(ctx); err != nil {
		v.fail(ctx, OpClear, err)
	}

	v.reloadLocked(ctx)
	return nil
}

// add validates item and writes it to the active store. mergeGuest decides
// what a guest add does when the key is already present.
func (v *view) add(ctx context.Context, item model.Item, mergeGuest func(existing *model.Item, added model.Item)) error {
	item = item.Normalize(v.kind)
	if err := item.Validate(v.kind); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.addLocked(ctx, item, mergeGuest)
	v.reloadLocked(ctx)
	return nil
}

// addLocked writes a validated item to the active store. Callers hold mu.
func (v *view) addLocked(ctx context.Context, item model.Item, mergeGuest func(existing *model.Item, added model.Item)) {
	if v.session.LoggedIn() {
		if err := v.remote.Add(ctx, v.session.Token, item.ProductID, item.Quantity); err != nil {
			v.fail(ctx, OpAdd, err)
		}
		return
	}

	items := v.guest.Load(ctx)
	found := false
	for i := range items {
		if items[i].Key() == item.Key() {
			mergeGuest(&items[i], item)
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
	}
	v.saveGuest(ctx, OpAdd, items)
}

// removeLocked deletes every line of productID from the active store.
// Callers hold mu.
func (v *view) removeLocked(ctx context.Context, productID model.ProductID) {
	if v.session.LoggedIn() {
		if err := v.remote.Remove(ctx, v.session.Token, productID); err != nil {
			v.fail(ctx, OpRemove, err)
		}
		return
	}

	items := v.guest.Load(ctx)
	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	v.saveGuest(ctx, OpRemove, kept)
}

// reloadLocked reads the active store. On failure the previous items are
// kept and the view stays in its prior loaded state.
func (v *view) reloadLocked(ctx context.Context) {
	if !v.session.LoggedIn() {
		v.items = v.guest.Load(ctx)
		v.loaded = true
		return
	}

	items, err := v.remote.FetchAll(ctx, v.session.Token)
	if err != nil {
		v.fail(ctx, OpLoad, err)
		return
	}
	v.items = items
	v.loaded = true
}

func (v *view) saveGuest(ctx context.Context, op string, items []model.Item) {
	if err := v.guest.Save(ctx, items); err != nil {
		v.fail(ctx, op, err)
	}
}

func (v *view) fail(ctx context.Context, op string, err error) {
	v.logger.Error("collection operation failed",
		"op", op,
		"logged_in", v.session.LoggedIn(),
		"error", err,
	)
	v.reporter.Report(ctx, Failure{Resource: v.kind, Op: op, Err: err})
}

// Verify views are session listeners at compile time.
var (
	_ session.Listener = (*Cart)(nil)
	_ session.Listener = (*Wishlist)(nil)
)
