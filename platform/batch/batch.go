// Package batch runs independent writes in parallel and reports a result per
// item. A failed item never cancels the others and nothing is rolled back.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds the number of writes in flight.
const DefaultLimit = 5

// Result is the outcome of one item.
type Result struct {
	Key   string `json:"key"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Outcome is the full per-item report of a batch.
type Outcome struct {
	Results   []Result `json:"results"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
}

// Partial reports whether at least one item failed.
func (o Outcome) Partial() bool {
	return o.Failed > 0
}

// Run calls fn for every item with at most limit calls in flight. Results
// keep the order of items. keyOf names each item in its Result.
func Run[T any](ctx context.Context, limit int, items []T, keyOf func(T) string, fn func(context.Context, T) error) Outcome {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]Result, len(items))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			res := Result{Key: keyOf(item), OK: true}
			if err := fn(ctx, item); err != nil {
				res.OK = false
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := Outcome{Results: results}
	for _, r := range results {
		if r.OK {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return out
}
