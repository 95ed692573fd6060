// Package assemble concatenates per-unit kernel results into the final
// segment-indexed time series table.
package assemble

import (
	"sort"

	"github.com/rivergraph/mc-router/kernel"
	"github.com/rivergraph/mc-router/segment"
)

// Table is the final result: SegmentIDs sorted ascending, FVD row-aligned
// with it, each row holding nts timesteps of (flow, velocity, depth).
type Table struct {
	SegmentIDs []segment.ID
	FVD        [][][3]float32
}

// Concat merges the given per-unit kernel outputs into one table sorted
// ascending by SegmentID. Callers must ensure no SegmentID appears in more
// than one output (spec invariant 1: every segment belongs to exactly one
// unit's native result).
func Concat(outputs []kernel.Output) Table {
	type row struct {
		id  segment.ID
		fvd [][3]float32
	}
	var rows []row
	for _, out := range outputs {
		for i, id := range out.SegmentIDs {
			rows = append(rows, row{id: id, fvd: out.FVD[i]})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	t := Table{
		SegmentIDs: make([]segment.ID, len(rows)),
		FVD:        make([][][3]float32, len(rows)),
	}
	for i, r := range rows {
		t.SegmentIDs[i] = r.id
		t.FVD[i] = r.fvd
	}
	return t
}
