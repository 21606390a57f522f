package diff

import (
	"slices"
	"strings"

	"github.com/mhagen/influxsync/internal/schema"
)

// Plan is the final ordered operation list. Withheld counts destructive
// operations that were skipped only because force was not set; dry-run
// skips are the caller's deliberate choice and are not counted.
type Plan struct {
	Ops      []schema.ChangeOp
	Withheld int
}

// BuildPlan flattens classified changes into one list whose order avoids
// transient invalid states:
//
//  1. continuous query deletions, in reverse of collection order, ahead
//     of everything so stale queries never outlive a referenced policy
//     or database drop,
//  2. retention policy deletions (databases descending, names descending),
//  3. database deletions (descending),
//  4. database creations (ascending, each carrying its default policy),
//  5. retention policy creations, then updates (ascending),
//  6. continuous query updates, then creations, last.
//
// Every delete is skipped unless force is set; every operation is
// skipped under dry-run. Skipped operations stay in the plan so they
// remain visible in printed output.
func BuildPlan(changes *Changes, dryRun, force bool) *Plan {
	var ops []schema.ChangeOp

	queryDeletes := slices.Clone(changes.QueryDeletes)
	slices.Reverse(queryDeletes)
	ops = append(ops, queryDeletes...)

	ops = append(ops, sortedDescending(changes.PolicyDeletes)...)
	ops = append(ops, sortedDescending(changes.DatabaseDeletes)...)
	ops = append(ops, changes.DatabaseCreates...)
	ops = append(ops, changes.PolicyCreates...)
	ops = append(ops, changes.PolicyUpdates...)
	ops = append(ops, changes.QueryUpdates...)
	ops = append(ops, changes.QueryCreates...)

	plan := &Plan{Ops: ops}
	for i := range plan.Ops {
		op := &plan.Ops[i]
		if op.Action == schema.ActionDelete {
			op.Skip = dryRun || !force
			if !dryRun && !force {
				plan.Withheld++
			}
			continue
		}
		op.Skip = dryRun
	}

	return plan
}

func sortedDescending(ops []schema.ChangeOp) []schema.ChangeOp {
	sorted := slices.Clone(ops)
	slices.SortFunc(sorted, func(a, b schema.ChangeOp) int {
		if c := strings.Compare(b.Database, a.Database); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return sorted
}
