package assemble

import (
	"testing"

	"github.com/rivergraph/mc-router/kernel"
	"github.com/rivergraph/mc-router/segment"
	"github.com/stretchr/testify/require"
)

func TestConcat_SortsAscendingAcrossUnits(t *testing.T) {
	outputs := []kernel.Output{
		{
			SegmentIDs: []segment.ID{5, 2},
			FVD: [][][3]float32{
				{{1, 1, 1}},
				{{2, 2, 2}},
			},
		},
		{
			SegmentIDs: []segment.ID{3},
			FVD: [][][3]float32{
				{{3, 3, 3}},
			},
		},
	}
	table := Concat(outputs)
	require.Equal(t, []segment.ID{2, 3, 5}, table.SegmentIDs)
	require.Equal(t, [3]float32{2, 2, 2}, table.FVD[0][0])
	require.Equal(t, [3]float32{3, 3, 3}, table.FVD[1][0])
	require.Equal(t, [3]float32{1, 1, 1}, table.FVD[2][0])
}

// Invariant 5: output SegmentID set equals input SegmentID set.
func TestConcat_SegmentIDSetMatchesInput(t *testing.T) {
	input := []segment.ID{1, 2, 3, 4}
	outputs := []kernel.Output{
		{SegmentIDs: []segment.ID{1, 2}, FVD: [][][3]float32{{{0, 0, 0}}, {{0, 0, 0}}}},
		{SegmentIDs: []segment.ID{3, 4}, FVD: [][][3]float32{{{0, 0, 0}}, {{0, 0, 0}}}},
	}
	table := Concat(outputs)
	require.ElementsMatch(t, input, table.SegmentIDs)
}

func TestConcat_Empty(t *testing.T) {
	table := Concat(nil)
	require.Empty(t, table.SegmentIDs)
}
