package kernel

import (
	"context"
	"testing"

	"github.com/rivergraph/mc-router/segment"
	"github.com/stretchr/testify/require"
)

func TestIdentity_EchoesSegmentIDsInOrder(t *testing.T) {
	in := Input{
		Nts:        3,
		SegmentIDs: []segment.ID{5, 8, 12},
		Params:     make([]segment.Params, 3),
	}
	out, err := Identity(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in.SegmentIDs, out.SegmentIDs)
}

func TestIdentity_ShapeMatchesSegmentsAndTimesteps(t *testing.T) {
	in := Input{
		Nts:        4,
		SegmentIDs: []segment.ID{1, 2},
	}
	out, err := Identity(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.FVD, 2)
	for _, row := range out.FVD {
		require.Len(t, row, 4)
		for _, cell := range row {
			require.Equal(t, [3]float32{0, 0, 0}, cell)
		}
	}
}

func TestIdentity_EmptyInput(t *testing.T) {
	out, err := Identity(context.Background(), Input{})
	require.NoError(t, err)
	require.Empty(t, out.SegmentIDs)
	require.Empty(t, out.FVD)
}
