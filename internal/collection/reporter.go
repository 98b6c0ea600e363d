package collection

import (
	"context"
	"fmt"

	"shopsync/internal/model"
)

// Operation names used in Failure.Op.
const (
	OpLoad           = "load"
	OpAdd            = "add"
	OpRemove         = "remove"
	OpUpdateQuantity = "update_quantity"
	OpClear          = "clear"
	OpSync           = "sync"
)

// Failure describes a storage or transport error that a view absorbed.
// The view keeps its last known items when one occurs.
type Failure struct {
	Resource model.Kind
	Op       string
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Resource, f.Op, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Reporter receives failures that views do not return to callers.
// Implementations must be safe for concurrent use.
type Reporter interface {
	Report(ctx context.Context, f Failure)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, f Failure)

func (fn ReporterFunc) Report(ctx context.Context, f Failure) {
	fn(ctx, f)
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, Failure) {}
