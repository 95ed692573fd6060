// Package mcerr defines the stage-tagged error taxonomy shared across the
// decomposition and scheduling packages.
//
// Error policy:
//   - Only sentinel variables are exposed for branching; callers MUST use
//     errors.Is(err, ErrX) rather than string matching.
//   - Sentinels are never wrapped with formatted strings at definition site;
//     call Wrap to attach stage and segment context with %w.
package mcerr

import (
	"errors"
	"fmt"
)

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageTopology   Stage = "topology"
	StageDecompose  Stage = "decomposition"
	StagePartition  Stage = "partition"
	StageScheduling Stage = "scheduling"
	StageKernel     Stage = "kernel"
	StageConfig     Stage = "config"
)

// Graph integrity sentinels.
var (
	ErrCycle              = errors.New("mcerr: cycle detected in downstream graph")
	ErrDanglingDownstream = errors.New("mcerr: downstream segment not present in graph")
	ErrDuplicateSegment   = errors.New("mcerr: duplicate segment id")
)

// Parameter schema sentinels.
var (
	ErrMissingColumn = errors.New("mcerr: missing parameter column")
	ErrBadDType      = errors.New("mcerr: parameter column has wrong type")
)

// Kernel failure sentinel.
var ErrKernelFailed = errors.New("mcerr: kernel invocation failed")

// Partition precondition sentinels (normalized, not fatal — see Normalize*).
var (
	ErrTargetSizeInvalid = errors.New("mcerr: target subnetwork size must be >= 1 after normalization")
	ErrThetaInvalid      = errors.New("mcerr: cluster threshold must be in (0, 1] after normalization")
)

// Error is a stage-tagged failure, optionally naming the offending segment.
type Error struct {
	Stage     Stage
	SegmentID int64 // zero value means "not applicable"
	HasSeg    bool
	Err       error
}

func (e *Error) Error() string {
	if e.HasSeg {
		return fmt.Sprintf("%s: segment %d: %v", e.Stage, e.SegmentID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with a stage, producing an *Error. Returns nil if err is nil.
func Wrap(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}

// WrapSegment tags err with a stage and an offending segment id.
func WrapSegment(stage Stage, seg int64, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, SegmentID: seg, HasSeg: true, Err: err}
}
