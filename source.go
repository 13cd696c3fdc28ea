package forkjoin

// Source is a cursor over a sequence of elements that can report a size
// estimate and optionally partition itself into two disjoint,
// order-preserving fragments.
//
// Implementations need not be safe for concurrent use: the engine hands
// each fragment to exactly one task, and a task never touches its source
// after splitting it away.
type Source[E any] interface {
	// EstimateSize returns an upper-bound-ish estimate of the remaining
	// element count. It need not be exact; negative values are treated
	// as zero.
	EstimateSize() int64

	// TrySplit attempts to remove and return a disjoint prefix fragment,
	// mutating the receiver to represent only the remainder. It returns
	// nil if the source cannot be split further. The returned fragment
	// must always be the prefix: combine order depends on it.
	TrySplit() Source[E]

	// ForEach applies fn to each remaining element in order, stopping
	// early if fn returns false.
	ForEach(fn func(E) bool)
}

// SliceSource is a [Source] backed by a slice. It splits at the midpoint,
// handing off the first half as the prefix fragment.
type SliceSource[E any] struct {
	items []E
}

// FromSlice creates a [SliceSource] over items. The source aliases the
// slice; the caller must not mutate it while the computation runs.
func FromSlice[E any](items []E) *SliceSource[E] {
	return &SliceSource[E]{items: items}
}

// EstimateSize returns the exact number of remaining elements.
func (s *SliceSource[E]) EstimateSize() int64 {
	return int64(len(s.items))
}

// TrySplit splits off the first half of the remaining elements.
// Returns nil when fewer than two elements remain.
func (s *SliceSource[E]) TrySplit() Source[E] {
	if len(s.items) < 2 {
		return nil
	}
	mid := len(s.items) / 2
	prefix := &SliceSource[E]{items: s.items[:mid:mid]}
	s.items = s.items[mid:]
	return prefix
}

// ForEach applies fn to each remaining element in order.
func (s *SliceSource[E]) ForEach(fn func(E) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

// Items returns the remaining elements. The returned slice aliases the
// source's backing array.
func (s *SliceSource[E]) Items() []E {
	return s.items
}

// RangeSource is a [Source] over the half-open integer interval [lo, hi).
type RangeSource struct {
	lo, hi int64
}

// FromRange creates a [RangeSource] over [lo, hi).
// An empty or inverted range yields no elements.
func FromRange(lo, hi int64) *RangeSource {
	if hi < lo {
		hi = lo
	}
	return &RangeSource{lo: lo, hi: hi}
}

// EstimateSize returns the exact number of remaining integers.
func (s *RangeSource) EstimateSize() int64 {
	return s.hi - s.lo
}

// TrySplit splits off the lower half of the interval.
// Returns nil when fewer than two integers remain.
func (s *RangeSource) TrySplit() Source[int64] {
	if s.hi-s.lo < 2 {
		return nil
	}
	mid := s.lo + (s.hi-s.lo)/2
	prefix := &RangeSource{lo: s.lo, hi: mid}
	s.lo = mid
	return prefix
}

// ForEach applies fn to each remaining integer in ascending order.
func (s *RangeSource) ForEach(fn func(int64) bool) {
	for v := s.lo; v < s.hi; v++ {
		if !fn(v) {
			return
		}
	}
}

// FuncSource is an inherently sequential [Source] drawing elements from
// an iterator function. It never splits, so the whole source is always
// processed as a single leaf regardless of its size hint.
type FuncSource[E any] struct {
	next func() (E, bool)
	hint int64
}

// FromFunc creates a [FuncSource] from an iterator. next returns the
// next element and true, or the zero value and false when exhausted.
// sizeHint is advisory; negative hints are treated as zero.
func FromFunc[E any](sizeHint int64, next func() (E, bool)) *FuncSource[E] {
	if next == nil {
		panic("forkjoin: FromFunc requires non-nil iterator")
	}
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &FuncSource[E]{next: next, hint: sizeHint}
}

// EstimateSize returns the size hint supplied at construction.
func (s *FuncSource[E]) EstimateSize() int64 {
	return s.hint
}

// TrySplit always returns nil: iterator-backed sources are sequential.
func (s *FuncSource[E]) TrySplit() Source[E] {
	return nil
}

// ForEach drains the iterator, applying fn to each element in order.
func (s *FuncSource[E]) ForEach(fn func(E) bool) {
	for {
		v, ok := s.next()
		if !ok {
			return
		}
		if !fn(v) {
			return
		}
	}
}

// ChanSource is a [Source] drawing elements from a channel. Like
// [FuncSource] it never splits.
type ChanSource[E any] struct {
	ch   <-chan E
	hint int64
}

// FromChan creates a [ChanSource] over ch. The source is exhausted when
// ch is closed. sizeHint is advisory; negative hints are treated as zero.
func FromChan[E any](sizeHint int64, ch <-chan E) *ChanSource[E] {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &ChanSource[E]{ch: ch, hint: sizeHint}
}

// EstimateSize returns the size hint supplied at construction.
func (s *ChanSource[E]) EstimateSize() int64 {
	return s.hint
}

// TrySplit always returns nil: channel-backed sources are sequential.
func (s *ChanSource[E]) TrySplit() Source[E] {
	return nil
}

// ForEach receives from the channel until it is closed, applying fn to
// each element in arrival order.
func (s *ChanSource[E]) ForEach(fn func(E) bool) {
	for v := range s.ch {
		if !fn(v) {
			return
		}
	}
}
