// Package executor applies or prints a computed change plan.
package executor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mhagen/influxsync/internal/diff"
)

// Execer runs one statement against the server for effect.
// *influx.Client implements it; tests inject a recorder.
type Execer interface {
	Exec(cmd string) error
}

// Executor applies a plan strictly in list order. Later operations may
// assume earlier ones already took effect, so the first failure aborts
// the run with no retry.
type Executor struct {
	execer Execer
	logger *zap.Logger
}

// New creates an executor writing progress to the given logger.
func New(execer Execer, logger *zap.Logger) *Executor {
	return &Executor{execer: execer, logger: logger}
}

// Apply executes every non-skipped operation in order and returns how
// many ran. Skipped operations are logged but never executed.
func (e *Executor) Apply(plan *diff.Plan) (int, error) {
	applied := 0
	for _, op := range plan.Ops {
		e.logger.Info("planned operation",
			zap.String("action", string(op.Action)),
			zap.String("kind", string(op.Kind)),
			zap.String("database", op.Database),
			zap.String("name", op.Name),
			zap.Bool("skip", op.Skip),
		)
		if op.Skip {
			continue
		}
		if err := e.execer.Exec(op.Statement); err != nil {
			return applied, fmt.Errorf("failed to apply %s of %s %q on %q: %w",
				op.Action, op.Kind, op.Name, op.Database, err)
		}
		applied++
	}
	return applied, nil
}
