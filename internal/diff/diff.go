// Package diff computes the change operations that bring the observed
// schema of a server in line with the desired schema declared in config.
//
// The work happens in three layers: Reconcile is a generic sorted-merge
// set partition over object keys, Diff applies it per object kind
// together with kind-specific equality rules, and BuildPlan flattens the
// result into one globally ordered, skip-gated operation list.
package diff

import (
	"fmt"
	"slices"

	"github.com/mhagen/influxsync/internal/schema"
)

// Changes holds the classified operations per object kind, in the order
// they were collected (databases ascending, names ascending within a
// database). BuildPlan imposes the final global order.
type Changes struct {
	DatabaseDeletes []schema.ChangeOp
	DatabaseCreates []schema.ChangeOp
	PolicyDeletes   []schema.ChangeOp
	PolicyCreates   []schema.ChangeOp
	PolicyUpdates   []schema.ChangeOp
	QueryDeletes    []schema.ChangeOp
	QueryUpdates    []schema.ChangeOp
	QueryCreates    []schema.ChangeOp
}

// Empty reports whether no change operation was produced.
func (c *Changes) Empty() bool {
	return len(c.DatabaseDeletes) == 0 && len(c.DatabaseCreates) == 0 &&
		len(c.PolicyDeletes) == 0 && len(c.PolicyCreates) == 0 && len(c.PolicyUpdates) == 0 &&
		len(c.QueryDeletes) == 0 && len(c.QueryUpdates) == 0 && len(c.QueryCreates) == 0
}

// Diff classifies every object of the desired and observed states into
// create, update and delete operations. Databases present in both states
// are recursed into for retention policy drift; there is no update
// operation for a database itself.
func Diff(observed, desired *schema.State) (*Changes, error) {
	changes := &Changes{}

	if err := diffDatabases(observed, desired, changes); err != nil {
		return nil, err
	}
	diffContinuousQueries(observed, desired, changes)

	return changes, nil
}

func diffDatabases(observed, desired *schema.State, changes *Changes) error {
	obsNames := mapKeys(observed.Databases)
	desNames := mapKeys(desired.Databases)

	onlyObserved, both, onlyDesired := Reconcile(obsNames, desNames)

	for _, name := range onlyObserved {
		changes.DatabaseDeletes = append(changes.DatabaseDeletes, schema.ChangeOp{
			Action:    schema.ActionDelete,
			Kind:      schema.KindDatabase,
			Database:  name,
			Name:      name,
			Statement: dropDatabaseStmt(name),
		})
	}

	for _, name := range onlyDesired {
		changes.DatabaseCreates = append(changes.DatabaseCreates, schema.ChangeOp{
			Action:    schema.ActionCreate,
			Kind:      schema.KindDatabase,
			Database:  name,
			Name:      name,
			Statement: desired.Databases[name].CreateQuery,
		})
	}

	for _, name := range both {
		err := diffRetentionPolicies(name, observed.Databases[name], desired.Databases[name], changes)
		if err != nil {
			return err
		}
	}

	return nil
}

func diffRetentionPolicies(db string, observed, desired schema.Database, changes *Changes) error {
	onlyObserved, both, onlyDesired := Reconcile(
		mapKeys(observed.RetentionPolicies), mapKeys(desired.RetentionPolicies))

	for _, name := range onlyObserved {
		changes.PolicyDeletes = append(changes.PolicyDeletes, schema.ChangeOp{
			Action:    schema.ActionDelete,
			Kind:      schema.KindRetentionPolicy,
			Database:  db,
			Name:      name,
			Statement: dropRetentionPolicyStmt(db, name),
		})
	}

	for _, name := range onlyDesired {
		changes.PolicyCreates = append(changes.PolicyCreates, schema.ChangeOp{
			Action:    schema.ActionCreate,
			Kind:      schema.KindRetentionPolicy,
			Database:  db,
			Name:      name,
			Statement: createRetentionPolicyStmt(db, desired.RetentionPolicies[name]),
		})
	}

	for _, name := range both {
		equal, err := policiesEqual(observed.RetentionPolicies[name], desired.RetentionPolicies[name])
		if err != nil {
			return fmt.Errorf("comparing retention policy %q on %q: %w", name, db, err)
		}
		if equal {
			continue
		}
		changes.PolicyUpdates = append(changes.PolicyUpdates, schema.ChangeOp{
			Action:    schema.ActionUpdate,
			Kind:      schema.KindRetentionPolicy,
			Database:  db,
			Name:      name,
			Statement: alterRetentionPolicyStmt(db, desired.RetentionPolicies[name]),
		})
	}

	return nil
}

// policiesEqual compares two retention policies under duration
// normalization, so "8760h0m0s" reported by the server matches a
// declared "52w".
func policiesEqual(observed, desired schema.RetentionPolicy) (bool, error) {
	obsDur, err := DurationSeconds(observed.Duration)
	if err != nil {
		return false, err
	}
	desDur, err := DurationSeconds(desired.Duration)
	if err != nil {
		return false, err
	}
	obsShard, err := DurationSeconds(observed.ShardDuration)
	if err != nil {
		return false, err
	}
	desShard, err := DurationSeconds(desired.ShardDuration)
	if err != nil {
		return false, err
	}

	return obsDur == desDur && obsShard == desShard && observed.IsDefault == desired.IsDefault, nil
}

// diffContinuousQueries walks the union of databases referenced by any
// continuous query, ascending, and reconciles query names within each.
// A query on a database that is itself being dropped still produces a
// delete here; the plan places those drops ahead of the database drop.
func diffContinuousQueries(observed, desired *schema.State, changes *Changes) {
	obsByDB := groupQueries(observed.ContinuousQueries)
	desByDB := groupQueries(desired.ContinuousQueries)

	dbs := mapKeys(obsByDB)
	for db := range desByDB {
		if _, ok := obsByDB[db]; !ok {
			dbs = append(dbs, db)
		}
	}
	slices.Sort(dbs)

	for _, db := range dbs {
		onlyObserved, both, onlyDesired := Reconcile(obsByDB[db], desByDB[db])

		for _, name := range onlyObserved {
			changes.QueryDeletes = append(changes.QueryDeletes, schema.ChangeOp{
				Action:    schema.ActionDelete,
				Kind:      schema.KindContinuousQuery,
				Database:  db,
				Name:      name,
				Statement: dropContinuousQueryStmt(db, name),
			})
		}

		for _, name := range onlyDesired {
			changes.QueryCreates = append(changes.QueryCreates, schema.ChangeOp{
				Action:    schema.ActionCreate,
				Kind:      schema.KindContinuousQuery,
				Database:  db,
				Name:      name,
				Statement: desired.ContinuousQueries[schema.CQKey{Database: db, Name: name}].Definition,
			})
		}

		for _, name := range both {
			key := schema.CQKey{Database: db, Name: name}
			obs := observed.ContinuousQueries[key]
			des := desired.ContinuousQueries[key]
			if NormalizeCQ(obs.Definition) == NormalizeCQ(des.Definition) {
				continue
			}
			changes.QueryUpdates = append(changes.QueryUpdates, schema.ChangeOp{
				Action:    schema.ActionUpdate,
				Kind:      schema.KindContinuousQuery,
				Database:  db,
				Name:      name,
				Statement: replaceContinuousQueryStmt(db, name, des.Definition),
			})
		}
	}
}

func groupQueries(queries map[schema.CQKey]schema.ContinuousQuery) map[string][]string {
	byDB := make(map[string][]string)
	for key := range queries {
		byDB[key.Database] = append(byDB[key.Database], key.Name)
	}
	return byDB
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
