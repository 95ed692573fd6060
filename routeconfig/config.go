// Package routeconfig loads the run configuration (partition target size,
// cluster threshold, worker-pool size, dispatch mode, logging, graph input
// path) via viper, with the normalization rules of the error-handling
// design applied after unmarshal.
package routeconfig

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/rivergraph/mc-router/cluster"
	"github.com/rivergraph/mc-router/subnet"
)

// Config is the full run configuration.
type Config struct {
	Partition PartitionConfig `mapstructure:"partition"`
	Log       LogConfig       `mapstructure:"log"`
	Graph     GraphConfig     `mapstructure:"graph"`
}

// PartitionConfig controls subnetwork sizing, clustering, dispatch mode, and
// worker pool size.
type PartitionConfig struct {
	TargetSize     int     `mapstructure:"target_size"`
	Theta          float64 `mapstructure:"theta"`
	Mode           string  `mapstructure:"mode"` // sequential, by-network, by-subnetwork, by-subnetwork-clustered
	WorkerPoolSize int     `mapstructure:"worker_pool_size"`
}

// LogConfig mirrors rlog.Config's fields for unmarshaling from file/env.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// GraphConfig holds the graph input/output file paths and the timestep
// count. cmd/mc-router reads only Nts from it; its input and output paths
// come from the run command's --input and --output flags.
type GraphConfig struct {
	InputPath  string `mapstructure:"input_path"`
	OutputPath string `mapstructure:"output_path"`
	Nts        int    `mapstructure:"nts"`
}

// Load reads configuration from configPath (YAML/JSON/TOML, by extension),
// falling back to defaults and environment overrides when the file is
// absent.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mc-router")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mc-router")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintln(os.Stderr, "routeconfig: no config file found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "routeconfig: config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("routeconfig: read config: %w", err)
		}
	}

	v.SetEnvPrefix("MC_ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("routeconfig: unmarshal: %w", err)
	}
	cfg.Partition = cfg.Partition.Normalize()
	return &cfg, nil
}

// LoadFromReader parses configType ("yaml", "json", ...) content directly —
// used by tests rather than a file on disk.
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("routeconfig: read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("routeconfig: unmarshal: %w", err)
	}
	cfg.Partition = cfg.Partition.Normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("partition.target_size", 1)
	v.SetDefault("partition.theta", cluster.DefaultTheta)
	v.SetDefault("partition.mode", "by-subnetwork-clustered")
	v.SetDefault("partition.worker_pool_size", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("graph.nts", 1)
}

// Normalize applies the partition-precondition rules: T <= 0 means no
// batching (normalized to 1) and theta outside (0,1] clamps to the design
// default. Both clamps are logged to stderr rather than treated as load
// failures, since an out-of-range config value is a warning, not a fatal
// error.
func (p PartitionConfig) Normalize() PartitionConfig {
	targetSize, err := subnet.NormalizeTargetSize(p.TargetSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routeconfig: %v\n", err)
	}
	p.TargetSize = targetSize

	theta, err := cluster.NormalizeTheta(p.Theta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routeconfig: %v\n", err)
	}
	p.Theta = theta

	if p.WorkerPoolSize < 1 {
		p.WorkerPoolSize = 1
	}
	return p
}
