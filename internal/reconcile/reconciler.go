package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shopsync/internal/adapter"
	"shopsync/internal/guest"
	"shopsync/internal/model"
)

// Reconciler pushes the guest collection of one resource to the remote store.
// It is run once per unauthenticated → authenticated transition.
type Reconciler struct {
	guest  *guest.Store
	remote adapter.Adapter
	policy MergePolicy
	logger *slog.Logger

	mu sync.Mutex
	// uncleared holds per-product quantities already pushed to the remote
	// store whose guest copy could not be cleared. Wishlist entries count as 1.
	uncleared map[model.ProductID]int
}

// Result summarizes one Run.
type Result struct {
	// Synced is the number of entries sent in the sync batch.
	Synced int
	// Merged is false when the remote fetch failed and guest quantities were sent as is.
	Merged bool
}

// New creates a reconciler. An empty policy selects DefaultPolicy.
func New(store *guest.Store, remote adapter.Adapter, policy MergePolicy, logger *slog.Logger) *Reconciler {
	if policy == "" {
		policy = DefaultPolicy
	}
	return &Reconciler{
		guest:  store,
		remote: remote,
		policy: policy,
		logger: logger.With("resource", string(remote.Kind()), "component", "reconciler"),
	}
}

// Policy returns the merge policy in effect.
func (r *Reconciler) Policy() MergePolicy {
	return r.policy
}

// Run syncs the guest collection to the remote store and clears it.
//
// The guest store is cleared only after SyncBatch succeeds; on any sync
// failure it is left intact so the items can be retried on the next login.
// An empty guest store makes Run a no-op, so running twice in a row only
// syncs once.
//
// If SyncBatch succeeds but the clear fails, the synced quantities are
// remembered and subtracted from the guest store on the next Run, so a retry
// only pushes what was added since. That memory lives in the Reconciler; a
// new process that finds the stale guest store syncs it again.
func (r *Reconciler) Run(ctx context.Context, token string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.guest.Load(ctx)
	if len(stored) == 0 {
		r.uncleared = nil
		return Result{}, nil
	}

	guestItems := r.pending(stored)
	if len(guestItems) == 0 {
		if err := r.guest.Clear(ctx); err != nil {
			return Result{}, fmt.Errorf("clear guest %s after sync: %w", r.remote.Kind(), err)
		}
		r.uncleared = nil
		return Result{}, nil
	}

	kind := r.remote.Kind()
	result := Result{Merged: true}

	remoteItems, err := r.remote.FetchAll(ctx, token)
	if err != nil {
		r.logger.Warn("remote fetch before sync failed, sending guest quantities unmerged", "error", err)
		remoteItems = nil
		result.Merged = false
	}

	entries := r.plan(kind, guestItems, remoteItems)
	r.logPlan(kind, guestItems, remoteItems, entries)

	if err := r.remote.SyncBatch(ctx, token, entries); err != nil {
		return Result{}, fmt.Errorf("sync guest %s: %w", kind, err)
	}
	result.Synced = len(entries)

	if err := r.guest.Clear(ctx); err != nil {
		r.uncleared = unitsByProduct(stored)
		return result, fmt.Errorf("clear guest %s after sync: %w", kind, err)
	}
	r.uncleared = nil

	r.logger.Info("guest collection synced",
		"entries", result.Synced,
		"policy", string(r.policy),
		"merged", result.Merged,
	)
	return result, nil
}

// pending returns the guest items not yet pushed by an earlier Run whose
// clear failed. Callers hold mu.
func (r *Reconciler) pending(stored []model.Item) []model.Item {
	if len(r.uncleared) == 0 {
		return stored
	}

	left := make(map[model.ProductID]int, len(r.uncleared))
	for id, n := range r.uncleared {
		left[id] = n
	}
	out := make([]model.Item, 0, len(stored))
	for _, it := range stored {
		units := max(it.Quantity, 1)
		done := min(units, left[it.ProductID])
		left[it.ProductID] -= done
		if done == units {
			continue
		}
		if it.Quantity > 0 {
			it.Quantity -= done
		}
		out = append(out, it)
	}
	return out
}

func unitsByProduct(items []model.Item) map[model.ProductID]int {
	out := make(map[model.ProductID]int, len(items))
	for _, it := range items {
		out[it.ProductID] += max(it.Quantity, 1)
	}
	return out
}

// plan builds one sync entry per guest product, in guest order.
// The remote API is keyed by product, so variant lines of one product are
// combined.
func (r *Reconciler) plan(kind model.Kind, guestItems, remoteItems []model.Item) []adapter.SyncEntry {
	remoteQty := make(map[model.ProductID]int, len(remoteItems))
	for _, it := range remoteItems {
		remoteQty[it.ProductID] += max(it.Quantity, 1)
	}

	guestQty := make(map[model.ProductID]int, len(guestItems))
	var order []model.ProductID
	for _, it := range guestItems {
		if _, seen := guestQty[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		guestQty[it.ProductID] += it.Quantity
	}

	entries := make([]adapter.SyncEntry, 0, len(order))
	for _, id := range order {
		entry := adapter.SyncEntry{ProductID: id}
		if kind.HasQuantity() {
			rq, inRemote := remoteQty[id]
			entry.Quantity = r.policy.Merge(guestQty[id], rq, inRemote)
		}
		entries = append(entries, entry)
	}
	return entries
}

// logPlan describes the change set at debug level.
func (r *Reconciler) logPlan(kind model.Kind, guestItems, remoteItems []model.Item, entries []adapter.SyncEntry) {
	if !r.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	if !kind.HasQuantity() {
		current := make([]model.ProductID, 0, len(remoteItems))
		for _, it := range remoteItems {
			current = append(current, it.ProductID)
		}
		desired := make([]model.ProductID, 0, len(guestItems))
		for _, it := range guestItems {
			desired = append(desired, it.ProductID)
		}
		diff := DiffIDs(current, desired)
		r.logger.Debug("wishlist sync plan", "entries", len(entries), "new", diff.ToAdd)
		return
	}

	desired := make([]model.Item, 0, len(entries))
	for _, e := range entries {
		desired = append(desired, model.Item{ProductID: e.ProductID, Quantity: e.Quantity})
	}
	diff := DiffItems(remoteItems, desired)
	r.logger.Debug("cart sync plan",
		"add", len(diff.ToAdd),
		"update", len(diff.ToUpdate),
		"untouched", len(diff.ToRemove),
	)
}
