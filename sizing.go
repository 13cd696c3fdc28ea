package forkjoin

// leafFactor is the over-partitioning factor for parallel decomposition.
// Targeting roughly four leaf tasks per worker lets idle workers help
// out when leaves are uneven or some workers are otherwise busy.
const leafFactor = 4

// suggestTargetSize returns the target leaf granularity for a
// computation, based on the root source's initial size estimate and the
// ambient parallelism. Malformed inputs are normalized: the result is
// never smaller than 1.
func suggestTargetSize(sizeEstimate int64, parallelism int) int64 {
	if parallelism < 1 {
		parallelism = 1
	}
	est := sizeEstimate / (leafFactor * int64(parallelism))
	if est < 1 {
		return 1
	}
	return est
}

// suggestSplit reports whether splitting is worthwhile for a task with
// the given remaining size estimate. No other signal (queue depth, steal
// counts) is consulted; the heuristic is deliberately simple.
func suggestSplit(remaining, targetSize int64) bool {
	return remaining > targetSize
}
