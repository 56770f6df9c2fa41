// Package dispatch runs independent tasks with bounded parallelism,
// preserving input order in the returned results.
package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result holds one task's outcome: either a value or the error that
// produced it.
type Result[R any] struct {
	Value R
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[R]) OK() bool {
	return r.Err == nil
}

// Map executes fn over items with at most limit concurrent workers. The
// returned slice matches the input order; a failing task records its error
// in its own slot and never aborts sibling tasks. Dispatching stops early
// only when ctx is canceled.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		if ctx.Err() != nil {
			results[i] = Result[R]{Err: ctx.Err()}
			continue
		}
		i, item := i, item
		g.Go(func() error {
			v, err := fn(gctx, item)
			// Each task writes only its own slot; no lock needed.
			results[i] = Result[R]{Value: v, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
