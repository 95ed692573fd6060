// Package subnet groups the reaches of an independent network into
// order-ranked subnetworks sized near a target segment count.
package subnet

import (
	"sort"

	"github.com/rivergraph/mc-router/mcerr"
	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/topology"
)

// Subnetwork is a connected subset of one independent network, with its own
// internal tailwater and an assigned order.
type Subnetwork struct {
	Tailwater segment.ID
	Segments  map[segment.ID]struct{}
	Order     int
}

// NormalizeTargetSize applies the partition precondition: a target below 1
// means no batching, normalized to 1 so a subnetwork closes at the first
// junction or source it meets. The returned error is non-nil only to report
// that normalization occurred; it wraps ErrTargetSizeInvalid and is safe for
// a caller to log and discard rather than treat as fatal.
func NormalizeTargetSize(target int) (int, error) {
	if target < 1 {
		return 1, mcerr.Wrap(mcerr.StagePartition, mcerr.ErrTargetSizeInvalid)
	}
	return target, nil
}

// Partition walks net upstream from its tailwater, accumulating segments
// into the current subnetwork across linear runs and through junctions that
// haven't yet reached targetSize. A subnetwork only closes at a junction or
// source boundary once its size reaches targetSize (or it runs out of
// upstreams entirely), at which point each of that boundary's upstreams
// seeds a new subnetwork one order higher. This means a
// junction-free reach never splits mid-chain regardless of targetSize
// (boundary behavior 8), and targetSize=1 always closes at the first
// junction/source it meets, i.e. subnetwork boundaries coincide with reach
// boundaries (boundary behavior 10).
func Partition(rev topology.Reverse, net topology.Network, targetSize int) []Subnetwork {
	targetSize, _ = NormalizeTargetSize(targetSize)

	type pending struct {
		start segment.ID
		order int
	}
	queue := []pending{{net.Tailwater, 0}}

	var subnets []Subnetwork
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		segs := map[segment.ID]struct{}{}
		frontier := []segment.ID{p.start}

		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			if _, already := segs[cur]; already {
				continue
			}
			segs[cur] = struct{}{}

			ups := upstreamsIn(rev, net, cur)
			switch {
			case len(ups) == 1:
				// linear run: no decision point, keep growing this subnetwork
				frontier = append(frontier, ups[0])
			case len(ups) == 0 || len(segs) >= targetSize:
				// source, or junction at/above target: close here
				for _, u := range ups {
					queue = append(queue, pending{u, p.order + 1})
				}
			default:
				// junction below target: absorb every branch into this subnetwork
				frontier = append(frontier, ups...)
			}
		}

		subnets = append(subnets, Subnetwork{Tailwater: p.start, Segments: segs, Order: p.order})
	}

	sort.SliceStable(subnets, func(i, j int) bool {
		if subnets[i].Order != subnets[j].Order {
			return subnets[i].Order > subnets[j].Order
		}
		return subnets[i].Tailwater < subnets[j].Tailwater
	})

	return subnets
}

func upstreamsIn(rev topology.Reverse, net topology.Network, seg segment.ID) []segment.ID {
	all := rev[seg]
	ups := make([]segment.ID, 0, len(all))
	for _, u := range all {
		if _, ok := net.Members[u]; ok {
			ups = append(ups, u)
		}
	}
	sort.Slice(ups, func(i, j int) bool { return ups[i] < ups[j] })
	return ups
}
