package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhagen/influxsync"
	"github.com/mhagen/influxsync/internal/config"
	"github.com/mhagen/influxsync/internal/logging"
)

var exitCode int

func main() {
	rootCmd := &cobra.Command{
		Use:   "influxsync",
		Short: "Reconcile declarative InfluxDB schema definitions against a live server",
		Long: `influxsync parses InfluxQL schema definitions (databases, retention
policies, continuous queries) from a config directory, compares them with the
live state of an InfluxDB server, and applies the minimal ordered set of
changes. Destructive operations only run with --force; --dry-run and --diff
preview the plan without mutating anything.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.Flags().String("url", defaults.GetString("server.url"), "InfluxDB endpoint (http only)")
	cmd.Flags().String("config-dir", defaults.GetString("config.dir"), "Directory holding databases/ and queries/ definitions")
	cmd.Flags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("dry-run", false, "Plan every operation but execute none")
	cmd.Flags().Bool("force", false, "Allow destructive delete operations to run")
	cmd.Flags().Bool("diff", false, "Print each planned statement and exit without mutating")
}

func bindFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"server.url":  "url",
		"config.dir":  "config-dir",
		"log.level":   "log-level",
		"run.dry_run": "dry-run",
		"run.force":   "force",
		"run.diff":    "diff",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func run() error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := &influxsync.Options{
		ServerURL: cfg.ServerURL,
		ConfigDir: cfg.ConfigDir,
		DryRun:    cfg.DryRun,
		Force:     cfg.Force,
	}

	if cfg.Diff {
		return influxsync.Diff(opts, os.Stdout)
	}

	result, err := influxsync.Reconcile(opts, logger)
	if err != nil {
		return err
	}

	logger.Info("reconciliation complete",
		zap.Int("planned", len(result.Plan.Ops)),
		zap.Int("applied", result.Applied),
		zap.Int("withheld", result.Withheld),
	)

	exitCode = exitCodeFor(result.Withheld, cfg.Diff)
	return nil
}

// exitCodeFor maps the soft-failure signal to the process exit code:
// withheld destructive operations mean the run did not converge, unless
// the caller asked for diff output, which always succeeds.
func exitCodeFor(withheld int, diffMode bool) int {
	if diffMode || withheld == 0 {
		return 0
	}
	return 2
}
