// Package cli assembles the landwho command tree: one binary that serves
// the API, runs the reconciliation worker, applies migrations and prints
// its build version.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand builds the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "landwho",
		Short:   "LandWho parcel-grid and mint-coordination service",
		Long:    "LandWho partitions registered land polygons into mintable parcel\ngrids and coordinates parcel NFT minting against an EVM chain.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: configs/config.yaml, then env only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newWorkerCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command tree.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig loads configuration from the flagged path, the default path or
// the environment, applies the log-level override and builds the logger.
func loadConfig(opts *rootOptions) (*config.Config, logging.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.Load(defaultConfigPath)
		if err != nil {
			cfg, err = config.LoadFromEnv()
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

const defaultConfigPath = "configs/config.yaml"
