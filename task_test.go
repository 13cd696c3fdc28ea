package forkjoin

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOp(t *testing.T, combine CombineFunc[string]) *operation[int, string] {
	t.Helper()
	ctx, cancel := context.WithCancelCause(context.Background())
	t.Cleanup(func() { cancel(nil) })
	return &operation[int, string]{
		ctx:    ctx,
		cancel: cancel,
		leaf: func(ctx context.Context, frag Source[int]) (string, error) {
			return "", nil
		},
		combine: combine,
		done:    make(chan struct{}),
	}
}

// buildPair wires a root with a completed leaf pair, mirroring what the
// decomposition driver does before forking.
func buildPair(op *operation[int, string], leftRes, rightRes string) (root, left, right *node[int, string]) {
	root = newRoot(op, Source[int](FromSlice([]int{1, 2})), 1)
	left = root.makeChild(FromSlice([]int{1}))
	right = root.makeChild(FromSlice([]int{2}))
	root.left, root.right = left, right
	root.pending.Store(1)
	left.result, left.hasResult = leftRes, true
	right.result, right.hasResult = rightRes, true
	return root, left, right
}

func TestTreeQueries(t *testing.T) {
	op := newTestOp(t, func(l, r string) (string, error) { return l + r, nil })

	root := newRoot(op, Source[int](FromSlice([]int{1, 2, 3, 4})), 1)
	l := root.makeChild(FromSlice([]int{1, 2}))
	r := root.makeChild(FromSlice([]int{3, 4}))
	root.left, root.right = l, r
	ll := l.makeChild(FromSlice([]int{1}))
	lr := l.makeChild(FromSlice([]int{2}))
	l.left, l.right = ll, lr

	assert.True(t, root.isRoot())
	assert.False(t, l.isRoot())

	assert.False(t, root.isLeaf())
	assert.False(t, l.isLeaf())
	assert.True(t, r.isLeaf())
	assert.True(t, ll.isLeaf())

	// Leftmost: only left-child steps from the root.
	assert.True(t, root.isLeftmost())
	assert.True(t, l.isLeftmost())
	assert.True(t, ll.isLeftmost())
	assert.False(t, lr.isLeftmost())
	assert.False(t, r.isLeftmost())

	// Target size and configuration propagate by copy.
	assert.Equal(t, root.targetSize, ll.targetSize)
	assert.Same(t, op, ll.op)
	assert.Equal(t, 2, ll.depth)

	assert.Equal(t, "root", root.path())
	assert.Equal(t, "root/left/right", lr.path())
	assert.Equal(t, "root/right", r.path())
}

func TestCombineOrderIndependentOfReportOrder(t *testing.T) {
	reportOrders := []struct {
		name  string
		first func(left, right *node[int, string])
	}{
		{"left reports first", func(l, r *node[int, string]) { l.tryComplete(); r.tryComplete() }},
		{"right reports first", func(l, r *node[int, string]) { r.tryComplete(); l.tryComplete() }},
	}

	for _, tt := range reportOrders {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			op := newTestOp(t, func(l, r string) (string, error) {
				got = l + r
				return got, nil
			})
			root, l, r := buildPair(op, "a", "b")

			tt.first(l, r)

			<-op.done
			assert.Equal(t, "ab", got, "combine arguments must be (left, right) in encounter order")
			assert.Equal(t, "ab", root.result)
		})
	}
}

func TestCompletionFiresExactlyOnce(t *testing.T) {
	for i := 0; i < 200; i++ {
		var combines int
		op := newTestOp(t, func(l, r string) (string, error) {
			combines++
			return l + r, nil
		})
		_, l, r := buildPair(op, "x", "y")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); l.tryComplete() }()
		go func() { defer wg.Done(); r.tryComplete() }()
		wg.Wait()

		<-op.done
		require.Equal(t, 1, combines, "exactly one reporter must drive the merge")
	}
}

func TestCompletionClearsTransientFields(t *testing.T) {
	op := newTestOp(t, func(l, r string) (string, error) { return l + r, nil })
	root, l, r := buildPair(op, "a", "b")

	l.tryComplete()
	r.tryComplete()
	<-op.done

	assert.Nil(t, root.src, "completed node must drop its source fragment")
	assert.Nil(t, root.left)
	assert.Nil(t, root.right)
	assert.Equal(t, "ab", root.result, "only the result survives completion")
}

// stuckSource violates the split contract: it claims to split but
// reports non-decreasing sizes afterwards.
type stuckSource struct {
	est int64
}

func (s *stuckSource) EstimateSize() int64    { return s.est }
func (s *stuckSource) TrySplit() Source[int]  { return &stuckSource{est: s.est} }
func (s *stuckSource) ForEach(func(int) bool) {}

func TestSplitContractViolationFailsFast(t *testing.T) {
	op := newTestOp(t, func(l, r string) (string, error) { return l + r, nil })
	root := newRoot(op, Source[int](&stuckSource{est: 100}), 1)

	assert.Panics(t, func() { root.compute() },
		"a source reporting non-decreasing sizes after split must trip the assertion")
}

func TestPathRendering(t *testing.T) {
	op := newTestOp(t, func(l, r string) (string, error) { return l + r, nil })
	n := newRoot(op, Source[int](FromSlice(make([]int, 8))), 1)
	for i := 0; i < 3; i++ {
		l := n.makeChild(FromSlice([]int{i}))
		r := n.makeChild(FromSlice([]int{i}))
		n.left, n.right = l, r
		n = r
	}
	assert.Equal(t, "root/right/right/right", n.path())
}
