// Package forkjoin provides a generic recursive work-decomposition engine
// for Go.
//
// One large, lazily-splittable unit of work is decomposed into a balanced
// binary tree of tasks that execute in parallel on a shared worker pool.
// Partial results are merged back up the tree in a single deterministic
// left-to-right pass, so non-commutative combiners (ordered concatenation,
// for example) always observe results in encounter order regardless of
// which worker finishes first.
//
// # Sources
//
// Work is described by a [Source], a cursor over a sequence that can
// report a size estimate and optionally partition itself into two
// disjoint, order-preserving fragments:
//
//   - [FromSlice]: a slice-backed source that splits at the midpoint.
//   - [FromRange]: an integer range source.
//   - [FromFunc]: an inherently sequential source that never splits.
//   - [FromChan]: a channel-backed source that never splits.
//
// Splitting is advisory: a source that reports a large size but refuses
// to split is simply processed as a single leaf.
//
// # Running a computation
//
// [Invoke] runs a computation to completion and blocks for the result:
//
//	sum, err := forkjoin.Invoke(ctx, pool, forkjoin.FromRange(1, 1001),
//	    func(ctx context.Context, frag forkjoin.Source[int64]) (int64, error) {
//	        var s int64
//	        frag.ForEach(func(v int64) bool { s += v; return true })
//	        return s, nil
//	    },
//	    func(left, right int64) (int64, error) { return left + right, nil },
//	)
//
// [Start] is the asynchronous form, returning a [Future] whose Wait
// blocks until the root result is published.
//
// The caller supplies two opaque operations: a leaf function applied to
// unsplit fragments, and a combine function merging two child results.
// Combine runs exactly once per internal tree node, always with
// (left result, right result) argument order.
//
// # Decomposition
//
// The target leaf size is max(1, estimate/(4*parallelism)), computed once
// at the root and copied to every descendant. Over-partitioning by
// roughly four tasks per worker lets idle workers absorb load imbalance
// from uneven leaves. Each task that splits forks its prefix half to the
// pool and continues iterating on the suffix half in place, so the call
// stack stays flat no matter how deep the tree grows.
//
// # Completion
//
// Each internal node carries a pending-completion count. The last child
// to report drives the parent's merge and propagates completion upward;
// the sibling that reported first returns without side effects. The
// decrement-and-check is a single atomic step, so the merge can never
// run twice.
//
// # Worker Pool
//
// [Pool] is a reusable fixed-size worker pool. Tasks are submitted via
// [Pool.Submit] (blocking) or [Pool.TrySubmit] (non-blocking). The engine
// forks subtrees with TrySubmit and falls back to running them in place
// when the queue is full, so a saturated pool degrades to sequential
// execution instead of deadlocking. Call [Pool.Close] to drain the queue.
// Pass a nil pool to [Invoke] or [Start] to run on a transient pool
// sized to the configured parallelism.
//
// # Short-circuiting
//
// [WithCanCompute] registers a predicate polled by every task before it
// does any work. When the predicate reports stop, the task skips
// splitting and leaf work and completes immediately with whatever result
// it already holds. Cancellation is cooperative, never preemptive:
// already-running leaves are not interrupted. [Any] and [All] are
// ready-made short-circuiting reductions built on this hook.
//
// # Errors and panics
//
// A failing leaf or combine fails the whole computation: the first error
// wins, the computation context is cancelled so remaining tasks drain
// cooperatively, and the root join surfaces the failure wrapped in a
// [*NodeError] identifying the originating node's tree path. Partial
// results from sibling subtrees are discarded, never merged. Panics in
// caller-supplied functions are captured with their stack as
// [*PanicError] values and treated as the failure cause, so a buggy leaf
// cannot kill a pool worker.
//
// # Observability
//
// [WithOnDone] registers a hook receiving final [TreeStats] (splits,
// leaves, merges, max depth). [WithPoolMetrics] registers a periodic
// [PoolStats] snapshot callback on the pool.
package forkjoin
