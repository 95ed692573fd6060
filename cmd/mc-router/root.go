package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rivergraph/mc-router/rlog"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mc-router",
	Short: "Decomposes a river network and dispatches a reach-compute kernel over it",
	Long: `mc-router partitions a river network graph into independent trees, decomposes
each tree into junction-split reaches, groups reaches into order-ranked
subnetworks, optionally packs those into clusters, and drives an external
reach-compute kernel across them with a bulk-synchronous-parallel scheduler.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = rlog.New(rlog.Config{Level: "info", Format: "text", Output: "stdout"})
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default: ./mc-router.yaml)")
}
