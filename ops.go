package forkjoin

import (
	"context"
	"sync/atomic"
)

// ReduceSlice decomposes items into chunks, applies leaf to each chunk
// in parallel, and merges the partial results with combine in slice
// order. It is a convenience wrapper around [Invoke] with a
// [SliceSource].
//
//	total, err := forkjoin.ReduceSlice(ctx, pool, nums,
//	    func(ctx context.Context, chunk []int) (int, error) { return sum(chunk), nil },
//	    func(left, right int) (int, error) { return left + right, nil },
//	)
func ReduceSlice[T, R any](
	ctx context.Context,
	pool *Pool,
	items []T,
	leaf func(ctx context.Context, chunk []T) (R, error),
	combine CombineFunc[R],
	opts ...Option,
) (R, error) {
	return Invoke(ctx, pool, Source[T](FromSlice(items)),
		func(ctx context.Context, frag Source[T]) (R, error) {
			return leaf(ctx, chunkOf(frag))
		},
		combine, opts...)
}

// chunkOf extracts the remaining elements of a fragment as a slice.
// Slice-backed fragments alias their backing array; other sources are
// drained into a fresh slice.
func chunkOf[T any](frag Source[T]) []T {
	if ss, ok := frag.(*SliceSource[T]); ok {
		return ss.Items()
	}
	out := make([]T, 0, max(frag.EstimateSize(), 0))
	frag.ForEach(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// MapReduce maps every element of src through mapFn and folds the
// mapped values with merge, in encounter order, starting from identity.
// merge must satisfy merge(identity, x) == x for the result to be
// well-defined on empty fragments.
func MapReduce[E, M any](
	ctx context.Context,
	pool *Pool,
	src Source[E],
	identity M,
	mapFn func(E) M,
	merge func(M, M) M,
	opts ...Option,
) (M, error) {
	return Invoke(ctx, pool, src,
		func(ctx context.Context, frag Source[E]) (M, error) {
			acc := identity
			frag.ForEach(func(e E) bool {
				acc = merge(acc, mapFn(e))
				return true
			})
			return acc, nil
		},
		func(left, right M) (M, error) {
			return merge(left, right), nil
		},
		opts...)
}

// Any reports whether pred holds for at least one element of src. The
// computation short-circuits: once a match is found, tasks that have
// not started yet skip their work, and running leaves stop at the next
// element. Already-forked subtrees are not interrupted mid-element.
//
// Any installs its own short-circuit predicate; a [WithCanCompute]
// option passed here is overridden.
func Any[E any](
	ctx context.Context,
	pool *Pool,
	src Source[E],
	pred func(E) bool,
	opts ...Option,
) (bool, error) {
	var found atomic.Bool
	opts = append(opts, WithCanCompute(func() bool {
		return !found.Load()
	}))

	_, err := Invoke(ctx, pool, src,
		func(ctx context.Context, frag Source[E]) (bool, error) {
			hit := false
			frag.ForEach(func(e E) bool {
				if found.Load() {
					return false
				}
				if pred(e) {
					hit = true
					found.Store(true)
					return false
				}
				return true
			})
			return hit, nil
		},
		func(left, right bool) (bool, error) {
			return left || right, nil
		},
		opts...)
	if err != nil {
		return false, err
	}
	return found.Load(), nil
}

// All reports whether pred holds for every element of src. The
// computation short-circuits on the first violation, with the same
// cooperative semantics as [Any].
//
// All installs its own short-circuit predicate; a [WithCanCompute]
// option passed here is overridden.
func All[E any](
	ctx context.Context,
	pool *Pool,
	src Source[E],
	pred func(E) bool,
	opts ...Option,
) (bool, error) {
	var violated atomic.Bool
	opts = append(opts, WithCanCompute(func() bool {
		return !violated.Load()
	}))

	_, err := Invoke(ctx, pool, src,
		func(ctx context.Context, frag Source[E]) (bool, error) {
			ok := true
			frag.ForEach(func(e E) bool {
				if violated.Load() {
					return false
				}
				if !pred(e) {
					ok = false
					violated.Store(true)
					return false
				}
				return true
			})
			return ok, nil
		},
		func(left, right bool) (bool, error) {
			return left && right, nil
		},
		opts...)
	if err != nil {
		return false, err
	}
	return !violated.Load(), nil
}
