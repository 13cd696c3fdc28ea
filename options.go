package forkjoin

// TreeStats is a snapshot of a computation's decomposition counters,
// passed to the [WithOnDone] hook when the root result is published.
type TreeStats struct {
	Splits   int64 // internal nodes created
	Leaves   int64 // leaf functions executed
	Merges   int64 // combine functions executed
	MaxDepth int64 // deepest node below the root
}

type config struct {
	parallelism int
	targetSize  int64
	canCompute  func() bool
	onDone      func(TreeStats)
}

// Option configures a computation started with [Invoke] or [Start].
type Option func(*config)

func defaultConfig() config {
	return config{}
}

// WithParallelism sets the parallelism hint consumed by the sizing
// heuristic, and the worker count of the transient pool when no pool is
// supplied. The default is the pool's worker count, or [runtime.NumCPU]
// for a transient pool.
//
// Panics if n <= 0.
func WithParallelism(n int) Option {
	if n <= 0 {
		panic("forkjoin: WithParallelism requires n > 0")
	}
	return func(c *config) {
		c.parallelism = n
	}
}

// WithTargetSize overrides the computed target leaf size. Fragments at
// or below this size are processed as leaves without further splitting.
//
// Panics if size <= 0.
func WithTargetSize(size int64) Option {
	if size <= 0 {
		panic("forkjoin: WithTargetSize requires size > 0")
	}
	return func(c *config) {
		c.targetSize = size
	}
}

// WithCanCompute registers a short-circuit predicate polled by every
// task before it splits or runs its leaf. When the predicate returns
// false the task skips its work and completes immediately with whatever
// result it already holds. The predicate is read cooperatively; a stale
// "keep going" for one extra task is acceptable, so an atomic flag is
// sufficient on the caller's side.
//
// Panics if fn is nil.
func WithCanCompute(fn func() bool) Option {
	if fn == nil {
		panic("forkjoin: WithCanCompute requires non-nil predicate")
	}
	return func(c *config) {
		c.canCompute = fn
	}
}

// WithOnDone registers a hook invoked once, with the final [TreeStats],
// when the computation completes. The hook runs before the join
// unblocks, on whichever worker publishes the root result.
//
// Panics if fn is nil.
func WithOnDone(fn func(TreeStats)) Option {
	if fn == nil {
		panic("forkjoin: WithOnDone requires non-nil callback")
	}
	return func(c *config) {
		c.onDone = fn
	}
}
