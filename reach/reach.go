// Package reach decomposes an independent network into linear reaches via a
// junction-split depth-first traversal.
package reach

import (
	"context"
	"sort"

	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/topology"
)

// Reach is an ordered chain of segments listed tailwater-first: the first
// element is the downstream-most segment, and each following element is the
// single upstream of the one before it. The last element is either a
// junction (>= 2 upstreams) or a source (no upstreams).
type Reach []segment.ID

// Tailwater is the downstream-most (first) segment of the reach.
func (r Reach) Tailwater() segment.ID { return r[0] }

// Options configures Decompose.
type Options struct {
	// Ctx is optional. If non-nil, decomposition aborts when ctx.Done() is
	// signaled — the walk can be long on a continental-scale network even
	// though individual kernel invocations never suspend.
	Ctx context.Context
}

// Decompose walks net.Tailwater upstream through rev and returns reaches in
// depth-first order: a junction's reach appears before the reaches of its
// upstream branches, which follow smallest SegmentID first.
func Decompose(net topology.Network, rev topology.Reverse, opts *Options) ([]Reach, error) {
	ctx := context.Background()
	if opts != nil && opts.Ctx != nil {
		ctx = opts.Ctx
	}

	var reaches []Reach
	var walk func(start segment.ID) error
	walk = func(start segment.ID) error {
		buf := Reach{}
		cur := start
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			buf = append(buf, cur)
			ups := upstreamsIn(rev, net, cur)

			switch len(ups) {
			case 0:
				reaches = append(reaches, buf)
				return nil
			case 1:
				cur = ups[0]
			default:
				reaches = append(reaches, buf)
				for _, u := range ups {
					if err := walk(u); err != nil {
						return err
					}
				}
				return nil
			}
		}
	}

	if err := walk(net.Tailwater); err != nil {
		return nil, err
	}
	return reaches, nil
}

// upstreamsIn returns the upstreams of seg that belong to net, sorted
// ascending so the smallest SegmentID is visited first.
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
