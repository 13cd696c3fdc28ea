package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/baxromumarov/forkjoin"
)

func main() {
	ctx := context.Background()
	pool := forkjoin.NewPool(ctx, runtime.NumCPU())
	defer pool.Close()

	now := time.Now()
	sum, err := forkjoin.Invoke(ctx, pool, forkjoin.FromRange(1, 1_000_001),
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
		forkjoin.WithOnDone(func(st forkjoin.TreeStats) {
			fmt.Printf("tree: %d splits, %d leaves, %d merges, depth %d\n",
				st.Splits, st.Leaves, st.Merges, st.MaxDepth)
		}),
	)
	if err != nil {
		fmt.Println("sum failed:", err)
		return
	}
	fmt.Printf("sum(1..1e6) = %d in %v\n", sum, time.Since(now))

	now = time.Now()
	found, err := forkjoin.Any(ctx, pool, forkjoin.FromRange(0, 10_000_000),
		func(v int64) bool { return v == 9_999_999 },
	)
	if err != nil {
		fmt.Println("search failed:", err)
		return
	}
	fmt.Printf("found=%v in %v\n", found, time.Since(now))
}
