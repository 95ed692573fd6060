// Package topology derives the reverse graph from a segment.Store and
// partitions it into independent networks.
package topology

import (
	"sort"

	"github.com/rivergraph/mc-router/segment"
)

// Reverse maps each segment to its upstream neighbors (segment -> upstreams
// of segment). Complexity O(N) in the number of segments.
type Reverse map[segment.ID][]segment.ID

// Build constructs the reverse graph from a Store. Read-only after return.
func Build(store *segment.Store) Reverse {
	rev := make(Reverse, store.Len())
	store.Each(func(id, downstream segment.ID) {
		if downstream == segment.Outlet {
			return
		}
		rev[downstream] = append(rev[downstream], id)
	})
	for d := range rev {
		sort.Slice(rev[d], func(i, j int) bool { return rev[d][i] < rev[d][j] })
	}
	return rev
}

// Network is an Independent Network: a tailwater plus every segment
// reachable upstream of it through the reverse graph.
type Network struct {
	Tailwater segment.ID
	Members   map[segment.ID]struct{}
}

// Tailwaters returns every segment whose downstream is the sentinel Outlet,
// sorted ascending. A Store holds no dangling downstreams, so these are all
// of its outlets.
func Tailwaters(store *segment.Store) []segment.ID {
	var tws []segment.ID
	store.Each(func(id, downstream segment.ID) {
		if downstream == segment.Outlet {
			tws = append(tws, id)
		}
	})
	sort.Slice(tws, func(i, j int) bool { return tws[i] < tws[j] })
	return tws
}

// Partition computes the reachable-upstream closure of every tailwater in
// store, one Network per tailwater. Closures are pairwise disjoint and their
// union is the full segment set.
//
// Traversal is breadth-first over rev, mirroring the queue/visited-map shape
// of a generic graph BFS, restricted here to a plain adjacency map since the
// reverse graph is read-only for the lifetime of a run.
func Partition(store *segment.Store, rev Reverse) []Network {
	tws := Tailwaters(store)
	networks := make([]Network, 0, len(tws))

	for _, tw := range tws {
		members := map[segment.ID]struct{}{tw: {}}
		queue := []segment.ID{tw}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, up := range rev[cur] {
				if _, seen := members[up]; seen {
					continue
				}
				members[up] = struct{}{}
				queue = append(queue, up)
			}
		}
		networks = append(networks, Network{Tailwater: tw, Members: members})
	}

	return networks
}
