// Package influxsync reconciles declarative InfluxDB 1.x schema
// definitions against the live state of a running server.
//
// Schema objects — databases, retention policies and continuous queries —
// are declared as plain InfluxQL statements in text files. On each run
// the desired state is parsed from those files, the observed state is
// loaded from the server, and the two are diffed into a minimal, ordered
// list of change operations which is then applied or printed.
//
// # Quick Start
//
// The simplest way to use this package is with Reconcile:
//
//	result, err := influxsync.Reconcile(&influxsync.Options{
//		ServerURL: "http://localhost:8086",
//		ConfigDir: "schema",
//	}, logger)
//
// # Config Layout
//
// The config directory holds two subdirectories:
//
//	schema/databases/  CREATE DATABASE and retention policy statements
//	schema/queries/    CREATE CONTINUOUS QUERY statements
//
// # Safety Flags
//
// With DryRun set, every operation is planned and reported but nothing
// executes. Destructive operations (drops) only run when Force is set;
// without it they stay in the plan, marked skipped, and are counted in
// Result.Withheld.
package influxsync

import (
	"io"

	"go.uber.org/zap"

	"github.com/mhagen/influxsync/internal/diff"
	"github.com/mhagen/influxsync/internal/executor"
	"github.com/mhagen/influxsync/internal/influx"
	"github.com/mhagen/influxsync/internal/parser"
	"github.com/mhagen/influxsync/internal/schema"
)

// Options configures one reconciliation run.
type Options struct {
	// ServerURL is the InfluxDB endpoint. Only the plaintext http
	// scheme is supported.
	ServerURL string

	// ConfigDir is the directory holding the databases/ and queries/
	// definition subdirectories.
	ConfigDir string

	// DryRun plans every operation but executes none of them.
	DryRun bool

	// Force allows destructive delete operations to execute. Without
	// it they remain in the plan, skipped.
	Force bool
}

// Result summarizes one reconciliation run.
type Result struct {
	// Plan is the full ordered operation list, skipped entries included.
	Plan *diff.Plan

	// Applied is the number of operations that executed.
	Applied int

	// Withheld is the number of destructive operations skipped only
	// because Force was not set. A nonzero count is the soft-failure
	// signal mapped to a nonzero exit code by the CLI.
	Withheld int
}

// Reconcile runs the whole pipeline: parse the config directory, load
// the live state, diff, order the plan and apply it. Config errors abort
// before the server is contacted; any query failure aborts the run with
// no partial-failure continuation.
func Reconcile(opts *Options, logger *zap.Logger) (*Result, error) {
	desired, err := DesiredState(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	client, err := influx.Dial(opts.ServerURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	observed, err := ObservedState(client)
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(observed, desired, opts.DryRun, opts.Force)
	if err != nil {
		return nil, err
	}

	applied, err := executor.New(client, logger).Apply(plan)
	if err != nil {
		return nil, err
	}

	return &Result{Plan: plan, Applied: applied, Withheld: plan.Withheld}, nil
}

// Diff computes the plan and writes each operation's exact statement to
// w, skipped entries prefixed. Nothing is mutated regardless of flags.
func Diff(opts *Options, w io.Writer) error {
	desired, err := DesiredState(opts.ConfigDir)
	if err != nil {
		return err
	}

	client, err := influx.Dial(opts.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	observed, err := ObservedState(client)
	if err != nil {
		return err
	}

	plan, err := BuildPlan(observed, desired, opts.DryRun, opts.Force)
	if err != nil {
		return err
	}

	return executor.NewDiffPrinter(w).Format(plan)
}

// DesiredState parses the config directory into a schema state.
func DesiredState(configDir string) (*schema.State, error) {
	return parser.Load(configDir)
}

// ObservedState loads the live schema state through the given querier.
func ObservedState(q influx.Querier) (*schema.State, error) {
	return influx.NewLoader(q).Load()
}

// BuildPlan diffs two states and orders the result into one gated
// operation list.
func BuildPlan(observed, desired *schema.State, dryRun, force bool) (*diff.Plan, error) {
	changes, err := diff.Diff(observed, desired)
	if err != nil {
		return nil, err
	}
	return diff.BuildPlan(changes, dryRun, force), nil
}
