package forkjoin

import (
	"errors"
	"fmt"
)

// Stage identifies which caller-supplied operation of a node failed.
type Stage int

const (
	// StageLeaf marks a failure in the leaf function.
	StageLeaf Stage = iota

	// StageCombine marks a failure in the combine function.
	StageCombine
)

func (s Stage) String() string {
	switch s {
	case StageLeaf:
		return "leaf"
	case StageCombine:
		return "combine"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// NodeError wraps an error together with the tree position of the node
// that produced it. Every leaf or combine failure surfaced by a join is
// wrapped in a NodeError so callers can attribute it.
type NodeError struct {
	// Path is the node's position, e.g. "root/left/right".
	Path string

	// Stage is the operation that failed.
	Stage Stage

	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", e.Stage, e.Path, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// IsNodeError reports whether err (or any error in its chain) is a
// [*NodeError].
func IsNodeError(err error) bool {
	if err == nil {
		return false
	}
	var ne *NodeError
	return errors.As(err, &ne)
}

// PathOf extracts the tree path from the first [*NodeError] in err's
// chain. Returns false if none is found.
func PathOf(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Path, true
	}
	return "", false
}

// CauseOf unwraps the first [*NodeError] in err's chain and returns its
// underlying cause. If err is not a NodeError, it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Err
	}

	return err
}

// AllNodeErrors recursively collects every [*NodeError] from err's
// chain, including errors wrapped via [errors.Join]. Returns nil if none
// are found.
func AllNodeErrors(err error) []*NodeError {
	if err == nil {
		return nil
	}

	var out []*NodeError
	collectNodeErrors(err, &out)
	return out
}

func collectNodeErrors(err error, out *[]*NodeError) {
	switch e := err.(type) {
	case *NodeError:
		*out = append(*out, e)

	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectNodeErrors(sub, out)
		}

	case interface{ Unwrap() error }:
		collectNodeErrors(e.Unwrap(), out)
	}
}
