package forkjoin_test

// Stress tests for the completion protocol. Run with -race: the
// properties below fail loudly if two reporters ever drive the same
// merge or a result is read before its writer's report is visible.

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/baxromumarov/forkjoin"
)

func TestStressCombineExactlyOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}

	pool := forkjoin.NewPool(context.Background(), 8)
	defer pool.Close()

	for round := 0; round < 50; round++ {
		var combines atomic.Int64
		var stats forkjoin.TreeStats

		got, err := forkjoin.Invoke(context.Background(), pool,
			forkjoin.Source[int64](forkjoin.FromRange(0, 512)),
			func(ctx context.Context, frag forkjoin.Source[int64]) (int64, error) {
				var s int64
				frag.ForEach(func(v int64) bool {
					s += v
					return true
				})
				return s, nil
			},
			func(left, right int64) (int64, error) {
				combines.Add(1)
				return left + right, nil
			},
			forkjoin.WithTargetSize(1), // maximize contention: one element per leaf
			forkjoin.WithOnDone(func(st forkjoin.TreeStats) { stats = st }),
		)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if got != 512*511/2 {
			t.Fatalf("round %d: expected %d, got %d", round, 512*511/2, got)
		}
		// 512 single-element leaves form 511 internal nodes.
		if n := combines.Load(); n != 511 {
			t.Fatalf("round %d: combine ran %d times, want 511", round, n)
		}
		if stats.Merges != stats.Splits || stats.Leaves != stats.Splits+1 {
			t.Fatalf("round %d: inconsistent tree counters %+v", round, stats)
		}
	}
}

func TestStressOrderedConcat(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}

	items := make([]string, 200)
	var want strings.Builder
	for i := range items {
		items[i] = strconv.Itoa(i) + ","
		want.WriteString(items[i])
	}

	pool := forkjoin.NewPool(context.Background(), 8)
	defer pool.Close()

	for round := 0; round < 100; round++ {
		got, err := forkjoin.Invoke(context.Background(), pool,
			forkjoin.Source[string](forkjoin.FromSlice(items)),
			func(ctx context.Context, frag forkjoin.Source[string]) (string, error) {
				var b strings.Builder
				frag.ForEach(func(s string) bool {
					b.WriteString(s)
					return true
				})
				return b.String(), nil
			},
			func(left, right string) (string, error) {
				return left + right, nil
			},
			forkjoin.WithTargetSize(1),
		)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if got != want.String() {
			t.Fatalf("round %d: result out of encounter order:\n got %q\nwant %q", round, got, want.String())
		}
	}
}

func TestStressConcurrentFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}

	pool := forkjoin.NewPool(context.Background(), 8)
	defer pool.Close()

	for round := 0; round < 50; round++ {
		got, err := forkjoin.Invoke(context.Background(), pool,
			forkjoin.Source[int64](forkjoin.FromRange(0, 256)),
			func(ctx context.Context, frag forkjoin.Source[int64]) (int64, error) {
				// Every leaf fails; exactly one failure must win and
				// the join must still unblock.
				return 0, strconv.ErrRange
			},
			func(left, right int64) (int64, error) {
				return left + right, nil
			},
			forkjoin.WithTargetSize(1),
		)
		if err == nil {
			t.Fatalf("round %d: expected failure", round)
		}
		if got != 0 {
			t.Fatalf("round %d: expected zero result on failure, got %d", round, got)
		}
	}
}
