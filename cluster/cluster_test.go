package cluster

import (
	"testing"

	"github.com/rivergraph/mc-router/mcerr"
	"github.com/rivergraph/mc-router/reach"
	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/subnet"
	"github.com/rivergraph/mc-router/topology"
	"github.com/stretchr/testify/require"
)

func seg(ids ...segment.ID) map[segment.ID]struct{} {
	m := make(map[segment.ID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// S4 — four same-order subnetworks sized [3,3,2,2], T=5, theta=0.65 ->
// threshold 3.25, so [3,3] seals (size 6 >= 3.25, more remain) and [2,2]
// is the terminal flush.
func TestPack_S4(t *testing.T) {
	subs := []subnet.Subnetwork{
		{Tailwater: 10, Segments: seg(10, 11, 12), Order: 0},
		{Tailwater: 20, Segments: seg(20, 21, 22), Order: 0},
		{Tailwater: 30, Segments: seg(30, 31), Order: 0},
		{Tailwater: 40, Segments: seg(40, 41), Order: 0},
	}
	reaches := []reach.Reach{
		{12, 11, 10},
		{22, 21, 20},
		{31, 30},
		{41, 40},
	}
	rev := topology.Reverse{12: {100}}

	clusters := Pack(subs, reaches, rev, 5, 0.65)
	require.Len(t, clusters, 2)

	require.Equal(t, []segment.ID{10, 20}, clusters[0].Tailwaters)
	require.Len(t, clusters[0].Segments, 6)
	require.Len(t, clusters[0].Reaches, 2)
	require.Contains(t, clusters[0].UpstreamBoundary, segment.ID(100))

	require.Equal(t, []segment.ID{30, 40}, clusters[1].Tailwaters)
	require.Len(t, clusters[1].Segments, 4)
	require.Len(t, clusters[1].Reaches, 2)
}

// Clusters never cross order boundaries, even if later orders would also
// satisfy the threshold on their own.
func TestPack_NeverCrossesOrderBoundary(t *testing.T) {
	subs := []subnet.Subnetwork{
		{Tailwater: 1, Segments: seg(1), Order: 0},
		{Tailwater: 2, Segments: seg(2), Order: 1},
		{Tailwater: 3, Segments: seg(3), Order: 1},
	}
	clusters := Pack(subs, nil, topology.Reverse{}, 10, 0.65)
	require.Len(t, clusters, 2)

	orders := map[int]bool{}
	for _, c := range clusters {
		orders[c.Order] = true
	}
	require.Len(t, orders, 2)
	for _, c := range clusters {
		for _, tw := range c.Tailwaters {
			_ = tw
		}
	}
}

// Boundary behavior: theta outside (0,1] normalizes to the design default.
func TestNormalizeTheta(t *testing.T) {
	v, err := NormalizeTheta(0)
	require.Equal(t, DefaultTheta, v)
	require.ErrorIs(t, err, mcerr.ErrThetaInvalid)

	v, err = NormalizeTheta(-0.2)
	require.Equal(t, DefaultTheta, v)
	require.ErrorIs(t, err, mcerr.ErrThetaInvalid)

	v, err = NormalizeTheta(1.5)
	require.Equal(t, DefaultTheta, v)
	require.ErrorIs(t, err, mcerr.ErrThetaInvalid)

	v, err = NormalizeTheta(0.5)
	require.Equal(t, 0.5, v)
	require.NoError(t, err)

	v, err = NormalizeTheta(1.0)
	require.Equal(t, 1.0, v)
	require.NoError(t, err)
}

// A single subnetwork per order is always flushed alone regardless of T.
func TestPack_SingleSubnetworkFlushed(t *testing.T) {
	subs := []subnet.Subnetwork{
		{Tailwater: 1, Segments: seg(1, 2, 3), Order: 0},
	}
	clusters := Pack(subs, nil, topology.Reverse{}, 100, 0.65)
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0].Segments, 3)
}
