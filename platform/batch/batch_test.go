package batch

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
)

func TestRunReportsEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	out := Run(context.Background(), 3, items, strconv.Itoa, func(ctx context.Context, n int) error {
		if n%3 == 0 {
			return errors.New("boom")
		}
		return nil
	})

	if len(out.Results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(out.Results))
	}
	for i, r := range out.Results {
		if r.Key != strconv.Itoa(items[i]) {
			t.Fatalf("result %d out of order: %s", i, r.Key)
		}
		wantOK := items[i]%3 != 0
		if r.OK != wantOK {
			t.Fatalf("item %d ok = %v", items[i], r.OK)
		}
		if !r.OK && r.Error != "boom" {
			t.Fatalf("expected error text, got %q", r.Error)
		}
	}
	if out.Succeeded != 5 || out.Failed != 2 || !out.Partial() {
		t.Fatalf("unexpected counts %+v", out)
	}
}

func TestRunRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 20)

	Run(context.Background(), 2, items, func(int) string { return "" }, func(ctx context.Context, _ int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})

	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds limit", peak.Load())
	}
}

func TestRunEmpty(t *testing.T) {
	out := Run(context.Background(), 0, []string{}, func(s string) string { return s }, func(context.Context, string) error { return nil })
	if out.Partial() || len(out.Results) != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
}
