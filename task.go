package forkjoin

import (
	"strings"
	"sync/atomic"
)

// node is one element of the decomposition tree. It is created either as
// the root (owning the full source) or as one of a child pair (owning a
// disjoint fragment split off the parent's source).
//
// Every mutable field is exclusively owned by the execution context
// driving the node, except pending, which both children decrement
// through an atomic step, and the result slot of a completed child,
// which is published to the merging sibling via that same step.
type node[E, R any] struct {
	op     *operation[E, R]
	parent *node[E, R]

	// Child links. Both nil, or both non-nil; never exactly one.
	// Cleared when the node completes.
	left, right *node[E, R]

	// The fragment of the source owned by the subtree rooted here.
	// Present only while unresolved; cleared on completion.
	src Source[E]

	// Target leaf size, copied unchanged from the root.
	targetSize int64

	depth int

	// Outstanding child reports before this node's own completion
	// fires. Leaves hold 0; internal nodes hold 1.
	pending atomic.Int32

	// Local result slot, write-once. hasResult distinguishes a real
	// result from the zero value left by a short-circuited or failed
	// subtree.
	result    R
	hasResult bool
}

func newRoot[E, R any](op *operation[E, R], src Source[E], targetSize int64) *node[E, R] {
	return &node[E, R]{op: op, src: src, targetSize: targetSize}
}

func (n *node[E, R]) makeChild(src Source[E]) *node[E, R] {
	return &node[E, R]{
		op:         n.op,
		parent:     n,
		src:        src,
		targetSize: n.targetSize,
		depth:      n.depth + 1,
	}
}

// compute is the sole entry point, invoked once per node when it becomes
// eligible to run. It decides split-vs-leaf, forks the prefix child to
// the pool, and continues iterating on the suffix child in place. The
// suffix spine is walked with a loop rather than recursion so the stack
// stays bounded even for deeply right-unbalanced trees.
func (n *node[E, R]) compute() {
	t := n
	for t.op.runnable() {
		est := t.src.EstimateSize()
		if !suggestSplit(est, t.targetSize) {
			t.runLeaf()
			return
		}
		prefix := t.src.TrySplit()
		if prefix == nil {
			// Splitting is advisory. A source that refuses to split is
			// processed as a leaf over its full remaining content.
			t.runLeaf()
			return
		}
		if prefix.EstimateSize() >= est && t.src.EstimateSize() >= est {
			panic("forkjoin: source reported non-decreasing sizes after a successful split")
		}
		left := t.makeChild(prefix)
		right := t.makeChild(t.src)
		t.left, t.right = left, right
		t.pending.Store(1)
		t.op.noteSplit(right.depth)
		t.op.fork(left)
		t = right
	}
	// Short-circuited: complete with whatever result is already set.
	t.tryComplete()
}

// runLeaf applies the caller-supplied leaf function to this node's
// fragment, records the outcome, and reports completion.
func (t *node[E, R]) runLeaf() {
	res, err := t.op.execLeaf(t.src)
	if err != nil {
		t.op.fail(&NodeError{Path: t.path(), Stage: StageLeaf, Err: err})
	} else {
		t.result = res
		t.hasResult = true
	}
	t.op.stats.leaves.Add(1)
	t.tryComplete()
}

// tryComplete implements the counting-completion protocol. A reporter
// that observes a pending count of zero fires the node's own completion
// and moves up to the parent; otherwise it decrements the count once and
// stops, leaving the final report to the sibling. The CAS makes the
// decrement-and-check a single atomic step, so exactly one of two
// concurrently reporting children performs the merge.
func (n *node[E, R]) tryComplete() {
	t := n
	for {
		c := t.pending.Load()
		if c == 0 {
			t.onCompletion()
			p := t.parent
			if p == nil {
				t.op.publish(t.result)
				return
			}
			t = p
			continue
		}
		if t.pending.CompareAndSwap(c, c-1) {
			return
		}
	}
}

// onCompletion merges child results for internal nodes and clears the
// transient fields. A completed node retains only its result, bounding
// the memory held by a large, mostly-finished tree.
func (t *node[E, R]) onCompletion() {
	if l, r := t.left, t.right; l != nil {
		switch {
		case t.op.failed():
			// Discard partial work; the failure already cancelled the
			// computation and will surface at the root join.
		case l.hasResult && r.hasResult:
			res, err := t.op.execCombine(l.result, r.result)
			if err != nil {
				t.op.fail(&NodeError{Path: t.path(), Stage: StageCombine, Err: err})
				break
			}
			t.result = res
			t.hasResult = true
			t.op.stats.merges.Add(1)
		case l.hasResult:
			// The sibling short-circuited without a result; pass the
			// one real result through unchanged.
			t.result = l.result
			t.hasResult = true
		case r.hasResult:
			t.result = r.result
			t.hasResult = true
		}
	}
	t.src = nil
	t.left, t.right = nil, nil
}

// isLeaf reports whether this node has no children. Only meaningful
// after compute has decided split-vs-leaf for the node.
func (t *node[E, R]) isLeaf() bool {
	return t.left == nil
}

// isRoot reports whether this node has no parent.
func (t *node[E, R]) isRoot() bool {
	return t.parent == nil
}

// isLeftmost reports whether the path from the root to this node never
// takes a right-child step. The first leaf in encounter order is the
// unique leftmost node with no children.
func (t *node[E, R]) isLeftmost() bool {
	for cur := t; cur != nil; cur = cur.parent {
		if p := cur.parent; p != nil && p.left != cur {
			return false
		}
	}
	return true
}

// path renders the node's tree position for error attribution, e.g.
// "root/left/right". Valid only while the node's ancestors are still
// unresolved, which always holds at failure time.
func (t *node[E, R]) path() string {
	if t.parent == nil {
		return "root"
	}
	var segs []string
	for cur := t; cur.parent != nil; cur = cur.parent {
		if cur.parent.left == cur {
			segs = append(segs, "left")
		} else {
			segs = append(segs, "right")
		}
	}
	var b strings.Builder
	b.WriteString("root")
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}
