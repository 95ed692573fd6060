package subnet

import (
	"testing"

	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/topology"
	"github.com/stretchr/testify/require"
)

func network(t *testing.T, recs []segment.Record) (*segment.Store, topology.Reverse, topology.Network) {
	t.Helper()
	s, err := segment.NewStore(recs)
	require.NoError(t, err)
	rev := topology.Build(s)
	nets := topology.Partition(s, rev)
	require.Len(t, nets, 1)
	return s, rev, nets[0]
}

func chainRecords(n int) []segment.Record {
	recs := make([]segment.Record, 0, n)
	for i := segment.ID(1); i <= segment.ID(n); i++ {
		down := i - 1
		if i == 1 {
			down = 0
		}
		recs = append(recs, segment.Record{ID: i, Downstream: down})
	}
	return recs
}

// Boundary behavior 8: single chain, T >= N -> one subnetwork.
func TestPartition_ChainTargetAtLeastN(t *testing.T) {
	_, rev, net := network(t, chainRecords(10))
	subs := Partition(rev, net, 10)
	require.Len(t, subs, 1)
	require.Len(t, subs[0].Segments, 10)
	require.Equal(t, 0, subs[0].Order)
}

// Boundary behavior 10: T=1 -> one subnetwork per reach.
func TestPartition_TargetOneMatchesReaches(t *testing.T) {
	recs := []segment.Record{
		{ID: 1, Downstream: 3},
		{ID: 2, Downstream: 3},
		{ID: 3, Downstream: 4},
		{ID: 4, Downstream: 5},
		{ID: 5, Downstream: 0},
	}
	_, rev, net := network(t, recs)
	subs := Partition(rev, net, 1)

	// reaches here: [5,4,3], [1], [2] -> three subnetworks of equal shape
	require.Len(t, subs, 3)
	sizes := map[int]int{}
	for _, s := range subs {
		sizes[len(s.Segments)]++
	}
	require.Equal(t, 1, sizes[3]) // the [5,4,3] linear run
	require.Equal(t, 2, sizes[1])
}

// Boundary behavior 10: T >= total segments -> one subnetwork per network.
func TestPartition_TargetAtLeastTotal(t *testing.T) {
	recs := []segment.Record{
		{ID: 1, Downstream: 3},
		{ID: 2, Downstream: 3},
		{ID: 3, Downstream: 0},
	}
	_, rev, net := network(t, recs)
	subs := Partition(rev, net, 100)
	require.Len(t, subs, 1)
	require.Len(t, subs[0].Segments, 3)
}

// Invariant: every segment belongs to exactly one subnetwork.
func TestPartition_EverySegmentInExactlyOneSubnetwork(t *testing.T) {
	recs := []segment.Record{
		{ID: 1, Downstream: 3},
		{ID: 2, Downstream: 3},
		{ID: 3, Downstream: 4},
		{ID: 4, Downstream: 0},
	}
	s, rev, net := network(t, recs)
	subs := Partition(rev, net, 2)

	count := map[segment.ID]int{}
	for _, sn := range subs {
		for id := range sn.Segments {
			count[id]++
		}
	}
	for _, id := range s.IDs() {
		require.Equal(t, 1, count[id])
	}
}

// Invariant: for subnetwork S of order k, a segment's downstream outside S
// lies in a subnetwork of order k-1.
func TestPartition_OrderMonotonicity(t *testing.T) {
	recs := []segment.Record{
		{ID: 1, Downstream: 3},
		{ID: 2, Downstream: 3},
		{ID: 3, Downstream: 4},
		{ID: 4, Downstream: 5},
		{ID: 5, Downstream: 0},
	}
	s, rev, net := network(t, recs)
	subs := Partition(rev, net, 2)

	owner := map[segment.ID]*Subnetwork{}
	for i := range subs {
		for id := range subs[i].Segments {
			owner[id] = &subs[i]
		}
	}
	for _, id := range s.IDs() {
		down, ok := s.Downstream(id)
		if !ok || down == segment.Outlet {
			continue
		}
		if _, inSameNet := owner[id].Segments[down]; inSameNet {
			continue
		}
		require.Equal(t, owner[id].Order-1, owner[down].Order,
			"segment %d (order %d) exits to %d which must be order-1", id, owner[id].Order, down)
	}
}
