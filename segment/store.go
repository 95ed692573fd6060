// Package segment holds the Graph Store: the segment -> downstream mapping
// and the per-segment parameter table. A Store is immutable after NewStore
// returns, so it requires no internal locking to share across goroutines —
// concurrent readers of an unmutated value are race-free by construction.
package segment

import (
	"sort"

	"github.com/rivergraph/mc-router/mcerr"
)

// ID is the opaque, network-wide-unique segment identifier.
type ID = int64

// Outlet is the sentinel downstream value denoting "no downstream / terminal".
const Outlet ID = 0

// ParamColumns is the fixed, ordered parameter attribute schema.
var ParamColumns = []string{"dt", "bw", "tw", "twcc", "dx", "n", "ncc", "cs", "s0"}

// Params holds the fixed-schema scalar attributes for one segment, in
// ParamColumns order.
type Params [9]float32

// Record is one input row: a segment, its downstream, and its parameters.
type Record struct {
	ID         ID
	Downstream ID // Outlet for terminal segments
	Waterbody  *int64
	Params     Params
}

// Store is the immutable Graph Store.
type Store struct {
	downstream map[ID]ID
	params     map[ID]Params
	ids        []ID // sorted ascending, computed once
}

// NewStore validates records and builds an immutable Store.
//
// Validation order follows the graph integrity priority: duplicate IDs,
// then dangling downstreams, then cycles.
func NewStore(records []Record) (*Store, error) {
	downstream := make(map[ID]ID, len(records))
	params := make(map[ID]Params, len(records))

	for _, r := range records {
		if _, dup := downstream[r.ID]; dup {
			return nil, mcerr.WrapSegment(mcerr.StageTopology, r.ID, mcerr.ErrDuplicateSegment)
		}
		downstream[r.ID] = r.Downstream
		params[r.ID] = r.Params
	}

	for id, d := range downstream {
		if d == Outlet {
			continue
		}
		if _, ok := downstream[d]; !ok {
			return nil, mcerr.WrapSegment(mcerr.StageTopology, id, mcerr.ErrDanglingDownstream)
		}
	}

	if err := detectCycle(downstream); err != nil {
		return nil, err
	}

	ids := make([]ID, 0, len(downstream))
	for id := range downstream {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return &Store{downstream: downstream, params: params, ids: ids}, nil
}

// detectCycle walks each segment's downstream chain; a chain that revisits a
// segment before reaching Outlet is a cycle; cycles are forbidden.
func detectCycle(downstream map[ID]ID) error {
	const (
		unvisited int8 = iota
		inProgress
		done
	)
	state := make(map[ID]int8, len(downstream))
	for start := range downstream {
		if state[start] == done {
			continue
		}
		path := make([]ID, 0, 8)
		cur := start
		cycleAt := ID(0)
		for cur != Outlet && state[cur] != done {
			if state[cur] == inProgress {
				cycleAt = cur
				break
			}
			state[cur] = inProgress
			path = append(path, cur)
			next, ok := downstream[cur]
			if !ok {
				break
			}
			cur = next
		}
		for _, id := range path {
			state[id] = done
		}
		if cycleAt != 0 {
			return mcerr.WrapSegment(mcerr.StageTopology, cycleAt, mcerr.ErrCycle)
		}
	}
	return nil
}

// Downstream returns the downstream of id and whether id is present.
func (s *Store) Downstream(id ID) (ID, bool) {
	d, ok := s.downstream[id]
	return d, ok
}

// Params returns the parameters for id and whether id is present.
func (s *Store) Params(id ID) (Params, bool) {
	p, ok := s.params[id]
	return p, ok
}

// IDs returns all segment IDs, sorted ascending. The returned slice must not
// be mutated by callers.
func (s *Store) IDs() []ID { return s.ids }

// Len returns the number of segments in the store.
func (s *Store) Len() int { return len(s.ids) }

// Each calls fn once per segment (id, downstream), in unspecified order.
func (s *Store) Each(fn func(id, downstream ID)) {
	for id, d := range s.downstream {
		fn(id, d)
	}
}
