// Package schedule drives the reach-compute kernel across waves of
// independent work units, respecting the data dependencies between
// subnetwork orders.
package schedule

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rivergraph/mc-router/assemble"
	"github.com/rivergraph/mc-router/cluster"
	"github.com/rivergraph/mc-router/kernel"
	"github.com/rivergraph/mc-router/mcerr"
	"github.com/rivergraph/mc-router/reach"
	"github.com/rivergraph/mc-router/rlog"
	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/subnet"
	"github.com/rivergraph/mc-router/topology"
)

// Mode selects the dispatch granularity.
type Mode string

const (
	ModeSequential            Mode = "sequential"
	ModeByNetwork             Mode = "by-network"
	ModeBySubnetwork          Mode = "by-subnetwork"
	ModeBySubnetworkClustered Mode = "by-subnetwork-clustered"
)

// Options configures a Run.
type Options struct {
	Mode           Mode
	WorkerPoolSize int
	TargetSize     int     // subnetwork target size T; <= 0 normalizes to 1 (no batching)
	Theta          float64 // cluster threshold; normalized by cluster.NormalizeTheta
}

func (o Options) normalize() Options {
	if o.WorkerPoolSize < 1 {
		o.WorkerPoolSize = 1
	}
	if o.Mode == ModeSequential {
		o.WorkerPoolSize = 1
	}
	o.TargetSize, _ = subnet.NormalizeTargetSize(o.TargetSize)
	o.Theta, _ = cluster.NormalizeTheta(o.Theta)
	return o
}

// Series holds per-segment driving data: lateral inflow over nts timesteps
// and the t=0 initial state.
type Series struct {
	Nts  int
	Qlat map[segment.ID][]float32
	Q0   map[segment.ID][3]float32
}

// Run schedules kernel invocations over store/rev/networks according to
// opts.Mode and returns the assembled result table. A nil logger disables
// wave-level logging; Run otherwise logs each wave's dispatch and
// completion under the scheduling stage.
func Run(ctx context.Context, store *segment.Store, rev topology.Reverse, networks []topology.Network, series Series, compute kernel.Compute, opts Options, logger *slog.Logger) (assemble.Table, error) {
	opts = opts.normalize()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := rlog.ForStage(logger, string(mcerr.StageScheduling))

	units, err := buildUnits(ctx, rev, networks, opts)
	if err != nil {
		return assemble.Table{}, mcerr.Wrap(mcerr.StageDecompose, err)
	}

	waves := groupByOrderDesc(units)

	var native []kernel.Output
	var boundary map[segment.ID][][3]float32

	for i, order := range waves.orders {
		units := waves.byOrder[order]
		log.Info("wave dispatched", "order", order, "units", len(units))
		results, err := runWave(ctx, units, store, rev, series, boundary, compute, opts.WorkerPoolSize)
		if err != nil {
			return assemble.Table{}, err
		}
		log.Info("wave complete", "order", order, "units", len(units))
		for j, u := range units {
			native = append(native, filterNative(u, results[j]))
		}
		if i != len(waves.orders)-1 {
			boundary = nextBoundary(units, results)
		}
	}

	return assemble.Concat(native), nil
}

// workUnit is the scheduler's internal view of a dispatchable unit,
// common to raw subnetworks, packed clusters, and whole networks.
type workUnit struct {
	order      int
	tailwaters []segment.ID
	segments   map[segment.ID]struct{}
	reaches    []reach.Reach
}

func buildUnits(ctx context.Context, rev topology.Reverse, networks []topology.Network, opts Options) ([]workUnit, error) {
	switch opts.Mode {
	case ModeBySubnetwork, ModeBySubnetworkClustered:
		var units []workUnit
		for _, net := range networks {
			reaches, err := reach.Decompose(net, rev, &reach.Options{Ctx: ctx})
			if err != nil {
				return nil, err
			}
			subs := subnet.Partition(rev, net, opts.TargetSize)
			if opts.Mode == ModeBySubnetworkClustered {
				clusters := cluster.Pack(subs, reaches, rev, opts.TargetSize, opts.Theta)
				for _, c := range clusters {
					units = append(units, workUnit{
						order:      c.Order,
						tailwaters: c.Tailwaters,
						segments:   c.Segments,
						reaches:    c.Reaches,
					})
				}
				continue
			}
			for _, s := range subs {
				units = append(units, workUnit{
					order:      s.Order,
					tailwaters: []segment.ID{s.Tailwater},
					segments:   s.Segments,
					reaches:    reachesWithin(reaches, s.Segments),
				})
			}
		}
		return units, nil

	case ModeSequential, ModeByNetwork:
		var units []workUnit
		for _, net := range networks {
			reaches, err := reach.Decompose(net, rev, &reach.Options{Ctx: ctx})
			if err != nil {
				return nil, err
			}
			units = append(units, workUnit{
				order:      0,
				tailwaters: []segment.ID{net.Tailwater},
				segments:   net.Members,
				reaches:    reaches,
			})
		}
		return units, nil

	default:
		return nil, fmt.Errorf("schedule: unknown mode %q", opts.Mode)
	}
}

func reachesWithin(reaches []reach.Reach, segs map[segment.ID]struct{}) []reach.Reach {
	var out []reach.Reach
	for _, r := range reaches {
		contained := true
		for _, id := range r {
			if _, ok := segs[id]; !ok {
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

type waveSet struct {
	orders []int
	byOrder map[int][]workUnit
}

// groupByOrderDesc buckets units by order and returns the bucket keys sorted
// descending (highest order first), so a single-order set of units (the
// non-partitioned by-network/sequential paths) forms exactly one wave.
func groupByOrderDesc(units []workUnit) waveSet {
	byOrder := map[int][]workUnit{}
	seen := map[int]bool{}
	var orders []int
	for _, u := range units {
		if !seen[u.order] {
			seen[u.order] = true
			orders = append(orders, u.order)
		}
		byOrder[u.order] = append(byOrder[u.order], u)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(orders)))
	return waveSet{orders: orders, byOrder: byOrder}
}

// runWave dispatches every unit of one wave through a bounded worker pool,
// bulk-synchronous with a full barrier at wave exit, and returns the raw
// per-unit kernel outputs in the same order as units.
func runWave(ctx context.Context, units []workUnit, store *segment.Store, rev topology.Reverse, series Series, boundary map[segment.ID][][3]float32, compute kernel.Compute, poolSize int) ([]kernel.Output, error) {
	results := make([]kernel.Output, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolSize)

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			in := buildKernelInput(u, store, rev, series, boundary)
			out, err := compute(gctx, in)
			if err != nil {
				return mcerr.Wrap(mcerr.StageKernel, fmt.Errorf("unit tailwaters %v: %w: %w", u.tailwaters, mcerr.ErrKernelFailed, err))
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildKernelInput extends unit.segments with its off-network upstream
// boundary, sorts the result ascending (the kernel's position-index
// contract), and slices the shared parameter/driving tables to it.
func buildKernelInput(u workUnit, store *segment.Store, rev topology.Reverse, series Series, boundary map[segment.ID][][3]float32) kernel.Input {
	extended := make(map[segment.ID]struct{}, len(u.segments))
	for id := range u.segments {
		extended[id] = struct{}{}
	}
	for id := range u.segments {
		for _, up := range rev[id] {
			if _, inside := u.segments[up]; !inside {
				extended[up] = struct{}{}
			}
		}
	}

	ids := make([]segment.ID, 0, len(extended))
	for id := range extended {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	upstreams := make(map[segment.ID][]segment.ID, len(ids))
	params := make([]segment.Params, len(ids))
	qlat := make([][]float32, len(ids))
	q0 := make([][3]float32, len(ids))
	boundaryInputs := map[segment.ID]kernel.Boundary{}

	position := make(map[segment.ID]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	for i, id := range ids {
		var ups []segment.ID
		for _, up := range rev[id] {
			if _, inExt := extended[up]; inExt {
				ups = append(ups, up)
			}
		}
		sort.Slice(ups, func(a, b int) bool { return ups[a] < ups[b] })
		upstreams[id] = ups

		if p, ok := store.Params(id); ok {
			params[i] = p
		}
		qlat[i] = series.Qlat[id]
		q0[i] = series.Q0[id]

		if _, native := u.segments[id]; native {
			continue
		}
		if rows, ok := boundary[id]; ok {
			boundaryInputs[id] = kernel.Boundary{PositionIndex: position[id], Results: rows}
		}
	}

	return kernel.Input{
		Nts:            series.Nts,
		Reaches:        u.reaches,
		Upstreams:      upstreams,
		SegmentIDs:     ids,
		ParamColumns:   segment.ParamColumns,
		Params:         params,
		Qlat:           qlat,
		Q0:             q0,
		BoundaryInputs: boundaryInputs,
	}
}

// filterNative drops the off-network boundary placeholder rows from out,
// keeping only the unit's own native segments, so the final assembly never
// double-counts a segment across the two units that share it as a boundary.
func filterNative(u workUnit, out kernel.Output) kernel.Output {
	native := kernel.Output{}
	for i, id := range out.SegmentIDs {
		if _, ok := u.segments[id]; ok {
			native.SegmentIDs = append(native.SegmentIDs, id)
			native.FVD = append(native.FVD, out.FVD[i])
		}
	}
	return native
}

// nextBoundary extracts each completed unit's tailwater time series and
// installs them into a fresh Boundary Flow Table for the next, lower-order
// wave.
func nextBoundary(units []workUnit, results []kernel.Output) map[segment.ID][][3]float32 {
	table := map[segment.ID][][3]float32{}
	for i, u := range units {
		out := results[i]
		for _, tw := range u.tailwaters {
			for j, id := range out.SegmentIDs {
				if id == tw {
					table[tw] = out.FVD[j]
					break
				}
			}
		}
	}
	return table
}
