// Package cluster packs same-order subnetworks into coarser work units once
// their accumulated size crosses a threshold fraction of the target size.
package cluster

import (
	"sort"

	"github.com/rivergraph/mc-router/mcerr"
	"github.com/rivergraph/mc-router/reach"
	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/subnet"
	"github.com/rivergraph/mc-router/topology"
)

// DefaultTheta is the design default packing threshold fraction.
const DefaultTheta = 0.65

// Cluster is an unordered grouping of same-order subnetworks executed as one
// work unit.
type Cluster struct {
	Order            int
	Tailwaters       []segment.ID
	Segments         map[segment.ID]struct{}
	UpstreamBoundary map[segment.ID]struct{}
	Reaches          []reach.Reach
}

// NormalizeTheta applies the packing-threshold precondition: theta must lie
// in (0, 1], falling back to DefaultTheta otherwise. The returned error is
// non-nil only to report that the fallback was applied; it wraps
// ErrThetaInvalid and is safe for a caller to log and discard rather than
// treat as fatal.
func NormalizeTheta(theta float64) (float64, error) {
	if theta <= 0 || theta > 1 {
		return DefaultTheta, mcerr.Wrap(mcerr.StagePartition, mcerr.ErrThetaInvalid)
	}
	return theta, nil
}

// Pack groups subnetworks sharing an order into clusters, sealing a cluster
// once its segment count reaches theta*targetSize and more subnetworks of
// that order remain. The last subnetwork of an order is always flushed into
// the current cluster regardless of size, and clusters never span orders.
func Pack(subs []subnet.Subnetwork, reaches []reach.Reach, rev topology.Reverse, targetSize int, theta float64) []Cluster {
	targetSize, _ = subnet.NormalizeTargetSize(targetSize)
	normalizedTheta, _ := NormalizeTheta(theta)
	threshold := normalizedTheta * float64(targetSize)

	byOrder := map[int][]subnet.Subnetwork{}
	var orders []int
	for _, s := range subs {
		if _, seen := byOrder[s.Order]; !seen {
			orders = append(orders, s.Order)
		}
		byOrder[s.Order] = append(byOrder[s.Order], s)
	}
	sort.Ints(orders)

	var clusters []Cluster
	for _, order := range orders {
		group := byOrder[order]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Tailwater < group[j].Tailwater })

		cur := newCluster(order)
		for i, s := range group {
			cur.absorb(s, reaches)

			last := i == len(group)-1
			atThreshold := float64(len(cur.Segments)) >= threshold
			if last || (atThreshold && !last) {
				cur.fillBoundary(rev)
				clusters = append(clusters, *cur)
				cur = newCluster(order)
			}
		}
	}
	return clusters
}

func newCluster(order int) *Cluster {
	return &Cluster{
		Order:            order,
		Segments:         map[segment.ID]struct{}{},
		UpstreamBoundary: map[segment.ID]struct{}{},
	}
}

func (c *Cluster) absorb(s subnet.Subnetwork, reaches []reach.Reach) {
	c.Tailwaters = append(c.Tailwaters, s.Tailwater)
	for id := range s.Segments {
		c.Segments[id] = struct{}{}
	}
	c.Reaches = append(c.Reaches, reachesWithin(reaches, s)...)
}

func (c *Cluster) fillBoundary(rev topology.Reverse) {
	for id := range c.Segments {
		for _, u := range rev[id] {
			if _, inside := c.Segments[u]; !inside {
				c.UpstreamBoundary[u] = struct{}{}
			}
		}
	}
}

// reachesWithin returns the reaches fully contained in s's segment set.
func reachesWithin(reaches []reach.Reach, s subnet.Subnetwork) []reach.Reach {
	var out []reach.Reach
	for _, r := range reaches {
		contained := true
		for _, id := range r {
			if _, ok := s.Segments[id]; !ok {
				contained = false
				break
			}
		}
		if contained {
			out = append(out, r)
		}
	}
	return out
}
