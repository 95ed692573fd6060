package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rivergraph/mc-router/geoio"
	"github.com/rivergraph/mc-router/kernel"
	"github.com/rivergraph/mc-router/routeconfig"
	"github.com/rivergraph/mc-router/schedule"
	"github.com/rivergraph/mc-router/segment"
	"github.com/rivergraph/mc-router/topology"
)

var (
	runInputPath  string
	runOutputPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the network decomposition and scheduler against a graph input file",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runInputPath, "input", "i", "", "graph input CSV path (required)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "./mc-router-output.csv", "result table output path")
	runCmd.MarkFlagRequired("input")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := routeconfig.Load(cfgFile)
	if err != nil {
		return err
	}

	logger.Info("loading graph", "path", runInputPath)
	records, err := geoio.ReadGraph(runInputPath)
	if err != nil {
		return fmt.Errorf("mc-router: %w", err)
	}

	store, err := segment.NewStore(records)
	if err != nil {
		return fmt.Errorf("mc-router: %w", err)
	}
	logger.Info("graph loaded", "segments", store.Len())

	rev := topology.Build(store)
	networks := topology.Partition(store, rev)
	logger.Info("topology built", "networks", len(networks))

	series := zeroSeries(store, cfg.Graph.Nts)

	opts := schedule.Options{
		Mode:           schedule.Mode(cfg.Partition.Mode),
		WorkerPoolSize: cfg.Partition.WorkerPoolSize,
		TargetSize:     cfg.Partition.TargetSize,
		Theta:          cfg.Partition.Theta,
	}

	logger.Info("dispatching", "mode", opts.Mode, "target_size", opts.TargetSize, "theta", opts.Theta)
	table, err := schedule.Run(context.Background(), store, rev, networks, series, kernel.Identity, opts, logger)
	if err != nil {
		return fmt.Errorf("mc-router: %w", err)
	}

	if err := geoio.WriteTable(runOutputPath, table); err != nil {
		return fmt.Errorf("mc-router: %w", err)
	}
	logger.Info("result written", "path", runOutputPath, "segments", len(table.SegmentIDs))
	return nil
}

// zeroSeries builds a driving-data series of all zeros: without a
// lateral-inflow synthesizer wired in (out of scope per the purpose and
// scope), this is the only qlat/q0 the CLI can supply on its own, exercising
// the S6 "empty qlat" scenario's completion guarantee end to end.
func zeroSeries(store *segment.Store, nts int) schedule.Series {
	if nts < 1 {
		nts = 1
	}
	qlat := make(map[segment.ID][]float32, store.Len())
	q0 := make(map[segment.ID][3]float32, store.Len())
	for _, id := range store.IDs() {
		qlat[id] = make([]float32, nts)
		q0[id] = [3]float32{}
	}
	return schedule.Series{Nts: nts, Qlat: qlat, Q0: q0}
}
