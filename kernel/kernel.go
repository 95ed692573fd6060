// Package kernel defines the external reach-compute kernel contract. The
// numerical routing scheme itself is out of scope; this package only fixes
// the call shape and provides a deterministic stand-in used by tests and by
// the scheduler's own test suite.
package kernel

import (
	"context"

	"github.com/rivergraph/mc-router/reach"
	"github.com/rivergraph/mc-router/segment"
)

// Boundary is a pre-computed time series for an off-network upstream
// segment, together with the row it occupies in the unit's sorted segment
// vector.
type Boundary struct {
	PositionIndex int
	Results       [][3]float32 // [nts][3]: flow, velocity, depth
}

// Input is everything a single work unit hands to the kernel. SegmentIDs is
// sorted ascending; Params, Qlat, and Q0 are row-aligned with it.
type Input struct {
	Nts            int
	Reaches        []reach.Reach
	Upstreams      map[segment.ID][]segment.ID
	SegmentIDs     []segment.ID
	ParamColumns   []string
	Params         []segment.Params
	Qlat           [][]float32 // [Nseg][nts]
	Q0             [][3]float32
	BoundaryInputs map[segment.ID]Boundary
}

// Output is the kernel's result: segment IDs in the same sorted order they
// were received, and a per-segment, per-timestep (flow, velocity, depth)
// tensor.
type Output struct {
	SegmentIDs []segment.ID
	FVD        [][][3]float32 // [Nseg][nts][3]
}

// Compute is the external kernel contract. Implementations must return
// SegmentIDs in the same order as Input.SegmentIDs.
type Compute func(ctx context.Context, in Input) (Output, error)

// Identity is a deterministic stand-in kernel: it echoes the input segment
// vector and returns an all-zero flow/velocity/depth tensor. It never
// errors. Used in tests where the scheduler's wiring, not the hydraulics,
// is under test.
func Identity(_ context.Context, in Input) (Output, error) {
	fvd := make([][][3]float32, len(in.SegmentIDs))
	for i := range fvd {
		fvd[i] = make([][3]float32, in.Nts)
	}
	ids := make([]segment.ID, len(in.SegmentIDs))
	copy(ids, in.SegmentIDs)
	return Output{SegmentIDs: ids, FVD: fvd}, nil
}
