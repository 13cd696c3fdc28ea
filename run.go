package forkjoin

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// LeafFunc computes the result of an unsplit fragment. It is supplied by
// the caller and may be invoked concurrently on disjoint fragments.
type LeafFunc[E, R any] func(ctx context.Context, frag Source[E]) (R, error)

// CombineFunc merges the results of a left and right subtree. Argument
// order is always (left, right) in encounter order; the function is not
// assumed to be commutative.
type CombineFunc[R any] func(left, right R) (R, error)

// operation is the shared, immutable-after-construction state of one
// computation. Every node holds a non-owning reference.
type operation[E, R any] struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	pool   *Pool
	cfg    config

	leaf    LeafFunc[E, R]
	combine CombineFunc[R]

	errOnce  sync.Once
	firstErr atomicError

	stats treeCounters

	pubOnce sync.Once
	out     outcome[R]
	done    chan struct{}
}

type outcome[R any] struct {
	val R
	err error
}

// atomicError holds the first failure for concurrent access by failing
// nodes and the publishing root.
type atomicError struct {
	v atomic.Value
}

func (a *atomicError) Store(err error) {
	a.v.Store(err)
}

func (a *atomicError) Load() error {
	if err, ok := a.v.Load().(error); ok {
		return err
	}
	return nil
}

type treeCounters struct {
	splits   atomic.Int64
	leaves   atomic.Int64
	merges   atomic.Int64
	maxDepth atomic.Int64
}

// Future is the handle to a computation started with [Start].
type Future[R any] struct {
	done <-chan struct{}
	out  *outcome[R]
}

// Wait blocks until the root result is published, then returns it or the
// computation's failure. Wait is idempotent; subsequent calls return the
// same result.
func (f *Future[R]) Wait() (R, error) {
	<-f.done
	return f.out.val, f.out.err
}

// Done returns a channel that is closed when the computation completes.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Invoke decomposes src into a tree of tasks on pool, applies leaf to
// every unsplit fragment, merges partial results with combine in
// encounter order, and blocks until the root result is available.
//
// A nil pool runs the computation on a transient pool sized to the
// configured parallelism, closed when the computation completes.
//
// Invoke panics if src, leaf, or combine is nil.
func Invoke[E, R any](
	ctx context.Context,
	pool *Pool,
	src Source[E],
	leaf LeafFunc[E, R],
	combine CombineFunc[R],
	opts ...Option,
) (R, error) {
	return Start(ctx, pool, src, leaf, combine, opts...).Wait()
}

// Start begins the computation asynchronously and returns a [Future] for
// its result. See [Invoke] for the semantics.
func Start[E, R any](
	ctx context.Context,
	pool *Pool,
	src Source[E],
	leaf LeafFunc[E, R],
	combine CombineFunc[R],
	opts ...Option,
) *Future[R] {
	if src == nil {
		panic("forkjoin: Start requires non-nil source")
	}
	if leaf == nil {
		panic("forkjoin: Start requires non-nil leaf function")
	}
	if combine == nil {
		panic("forkjoin: Start requires non-nil combine function")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	parallelism := cfg.parallelism
	if parallelism == 0 {
		if pool != nil {
			parallelism = pool.Workers()
		} else {
			parallelism = runtime.NumCPU()
		}
	}

	ownPool := pool == nil
	if ownPool {
		pool = NewPool(ctx, parallelism)
	}

	opCtx, cancel := context.WithCancelCause(ctx)
	op := &operation[E, R]{
		ctx:     opCtx,
		cancel:  cancel,
		pool:    pool,
		cfg:     cfg,
		leaf:    leaf,
		combine: combine,
		done:    make(chan struct{}),
	}

	if ownPool {
		go func() {
			<-op.done
			_ = pool.Close()
		}()
	}

	targetSize := cfg.targetSize
	if targetSize == 0 {
		est := src.EstimateSize()
		if est < 0 {
			est = 0
		}
		targetSize = suggestTargetSize(est, parallelism)
	}

	root := newRoot(op, src, targetSize)
	if err := pool.Submit(func() error {
		root.compute()
		return nil
	}); err != nil {
		op.fail(err)
		var zero R
		op.publish(zero)
	}

	return &Future[R]{done: op.done, out: &op.out}
}

// runnable reports whether a node may still do work: the computation
// context is live and the caller's short-circuit predicate, if any,
// has not signalled stop. Polled at the top of every compute iteration.
func (op *operation[E, R]) runnable() bool {
	if op.ctx.Err() != nil {
		return false
	}
	return op.cfg.canCompute == nil || op.cfg.canCompute()
}

// fork schedules a child subtree for asynchronous execution. When the
// pool queue is full the subtree runs in place instead: slower, but it
// can never deadlock a worker on its own queue.
func (op *operation[E, R]) fork(n *node[E, R]) {
	if !op.pool.TrySubmit(func() error {
		n.compute()
		return nil
	}) {
		n.compute()
	}
}

// fail records the computation's first failure and cancels the
// computation context with it. Later failures are dropped: by then every
// remaining node is already draining.
func (op *operation[E, R]) fail(err error) {
	op.errOnce.Do(func() {
		op.firstErr.Store(err)
		op.cancel(err)
	})
}

func (op *operation[E, R]) failed() bool {
	return op.firstErr.Load() != nil
}

// execLeaf runs the caller's leaf function with panic recovery. A panic
// is captured with its stack and returned as a [*PanicError].
func (op *operation[E, R]) execLeaf(frag Source[E]) (res R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return op.leaf(op.ctx, frag)
}

// execCombine runs the caller's combine function with panic recovery.
func (op *operation[E, R]) execCombine(left, right R) (res R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return op.combine(left, right)
}

func (op *operation[E, R]) noteSplit(childDepth int) {
	op.stats.splits.Add(1)
	d := int64(childDepth)
	for {
		cur := op.stats.maxDepth.Load()
		if d <= cur || op.stats.maxDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

func (op *operation[E, R]) snapshot() TreeStats {
	return TreeStats{
		Splits:   op.stats.splits.Load(),
		Leaves:   op.stats.leaves.Load(),
		Merges:   op.stats.merges.Load(),
		MaxDepth: op.stats.maxDepth.Load(),
	}
}

// publish finalizes the computation exactly once: it resolves the final
// error, fires the completion hook, and unblocks everything waiting on
// the join.
func (op *operation[E, R]) publish(res R) {
	op.pubOnce.Do(func() {
		err := op.firstErr.Load()
		if err == nil && op.ctx.Err() != nil {
			// No task failed, but the caller's context was cancelled
			// externally; surface that instead of a partial result.
			err = context.Cause(op.ctx)
		}
		if err != nil {
			var zero R
			res = zero
		}
		op.out = outcome[R]{val: res, err: err}
		op.cancel(nil)
		if op.cfg.onDone != nil {
			op.cfg.onDone(op.snapshot())
		}
		close(op.done)
	})
}
