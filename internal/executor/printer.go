package executor

import (
	"fmt"
	"io"

	"github.com/mhagen/influxsync/internal/diff"
)

// DiffPrinter writes each planned statement as exact text, one per
// line, with gated operations prefixed so they stand apart. Printing
// never mutates anything.
type DiffPrinter struct {
	writer io.Writer
}

// NewDiffPrinter creates a new diff printer.
func NewDiffPrinter(w io.Writer) *DiffPrinter {
	return &DiffPrinter{writer: w}
}

// Format writes the plan in diff form.
func (p *DiffPrinter) Format(plan *diff.Plan) error {
	for _, op := range plan.Ops {
		if op.Skip {
			if _, err := fmt.Fprintf(p.writer, "skip: %s\n", op.Statement); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(p.writer, op.Statement); err != nil {
			return err
		}
	}
	return nil
}
