package forkjoin_test

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/baxromumarov/forkjoin"
)

func sizeName(n int64) string {
	return fmt.Sprintf("n=%d", n)
}

// BenchmarkSumRange measures decomposition overhead against a plain
// sequential loop over the same range.
func BenchmarkSumRange(b *testing.B) {
	pool := forkjoin.NewPool(context.Background(), runtime.NumCPU())
	defer pool.Close()

	for _, n := range []int64{1_000, 100_000, 10_000_000} {
		b.Run(sizeName(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = forkjoin.Invoke(context.Background(), pool,
					forkjoin.Source[int64](forkjoin.FromRange(0, n)),
					func(ctx context.Context, frag forkjoin.Source[int64]) (int64, error) {
						var s int64
						frag.ForEach(func(v int64) bool {
							s += v
							return true
						})
						return s, nil
					},
					func(left, right int64) (int64, error) {
						return left + right, nil
					},
				)
			}
		})
	}
}

func BenchmarkSumRangeSequential(b *testing.B) {
	for _, n := range []int64{1_000, 100_000, 10_000_000} {
		b.Run(sizeName(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var s int64
				for v := int64(0); v < n; v++ {
					s += v
				}
				_ = s
			}
		})
	}
}

// BenchmarkTinyLeaves maximizes tree overhead: one element per leaf.
func BenchmarkTinyLeaves(b *testing.B) {
	pool := forkjoin.NewPool(context.Background(), runtime.NumCPU())
	defer pool.Close()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = forkjoin.Invoke(context.Background(), pool,
			forkjoin.Source[int64](forkjoin.FromRange(0, 1024)),
			func(ctx context.Context, frag forkjoin.Source[int64]) (int64, error) {
				var s int64
				frag.ForEach(func(v int64) bool {
					s += v
					return true
				})
				return s, nil
			},
			func(left, right int64) (int64, error) {
				return left + right, nil
			},
			forkjoin.WithTargetSize(1),
		)
	}
}

func BenchmarkAnyShortCircuit(b *testing.B) {
	pool := forkjoin.NewPool(context.Background(), runtime.NumCPU())
	defer pool.Close()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = forkjoin.Any(context.Background(), pool,
			forkjoin.Source[int64](forkjoin.FromRange(0, 1_000_000)),
			func(v int64) bool { return v == 10 },
		)
	}
}
