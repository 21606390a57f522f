package diff

import (
	"testing"

	"github.com/mhagen/influxsync/internal/schema"
)

func stateWith(databases []schema.Database, queries []schema.ContinuousQuery) *schema.State {
	state := schema.NewState()
	for _, db := range databases {
		state.Databases[db.Name] = db
	}
	for _, cq := range queries {
		state.ContinuousQueries[schema.CQKey{Database: cq.Database, Name: cq.Name}] = cq
	}
	return state
}

func database(name string, policies ...schema.RetentionPolicy) schema.Database {
	db := schema.Database{
		Name:              name,
		CreateQuery:       "CREATE DATABASE " + name,
		RetentionPolicies: make(map[string]schema.RetentionPolicy),
	}
	for _, rp := range policies {
		db.RetentionPolicies[rp.Name] = rp
	}
	return db
}

func TestDiffDatabases(t *testing.T) {
	rp := schema.RetentionPolicy{Name: "autogen", Duration: "infinite", ShardDuration: "7d", IsDefault: true}

	observed := stateWith([]schema.Database{database("a", rp), database("b", rp)}, nil)
	desired := stateWith([]schema.Database{database("b", rp), database("c", rp)}, nil)

	changes, err := Diff(observed, desired)
	if err != nil {
		t.Fatalf("Diff() error: %v", err)
	}

	if len(changes.DatabaseDeletes) != 1 || changes.DatabaseDeletes[0].Name != "a" {
		t.Errorf("DatabaseDeletes = %v, want delete of a", changes.DatabaseDeletes)
	}
	if changes.DatabaseDeletes[0].Statement != `DROP DATABASE "a"` {
		t.Errorf("delete statement = %q", changes.DatabaseDeletes[0].Statement)
	}
	if len(changes.DatabaseCreates) != 1 || changes.DatabaseCreates[0].Name != "c" {
		t.Errorf("DatabaseCreates = %v, want create of c", changes.DatabaseCreates)
	}
	if changes.DatabaseCreates[0].Statement != "CREATE DATABASE c" {
		t.Errorf("create statement = %q, want verbatim create query", changes.DatabaseCreates[0].Statement)
	}
	if len(changes.PolicyDeletes)+len(changes.PolicyCreates)+len(changes.PolicyUpdates) != 0 {
		t.Errorf("unexpected policy changes for identical policies: %+v", changes)
	}
}

func TestDiffRetentionPolicies(t *testing.T) {
	tests := []struct {
		name        string
		observed    schema.RetentionPolicy
		desired     schema.RetentionPolicy
		wantUpdate  bool
		wantAltered string
	}{
		{
			name:     "identical",
			observed: schema.RetentionPolicy{Name: "rp1", Duration: "2w", ShardDuration: "1d", IsDefault: true},
			desired:  schema.RetentionPolicy{Name: "rp1", Duration: "2w", ShardDuration: "1d", IsDefault: true},
		},
		{
			name:     "equivalent formatting",
			observed: schema.RetentionPolicy{Name: "rp1", Duration: "336h0m0s", ShardDuration: "24h0m0s", IsDefault: true},
			desired:  schema.RetentionPolicy{Name: "rp1", Duration: "2w", ShardDuration: "1d", IsDefault: true},
		},
		{
			name:     "infinite matches reported zero",
			observed: schema.RetentionPolicy{Name: "rp1", Duration: "0s", ShardDuration: "168h0m0s", IsDefault: true},
			desired:  schema.RetentionPolicy{Name: "rp1", Duration: "infinite", ShardDuration: "7d", IsDefault: true},
		},
		{
			name:        "duration drift",
			observed:    schema.RetentionPolicy{Name: "rp1", Duration: "1w", ShardDuration: "1d", IsDefault: true},
			desired:     schema.RetentionPolicy{Name: "rp1", Duration: "2w", ShardDuration: "1d", IsDefault: true},
			wantUpdate:  true,
			wantAltered: `ALTER RETENTION POLICY "rp1" ON "db" DURATION 2w REPLICATION 1 SHARD DURATION 1d DEFAULT`,
		},
		{
			name:        "default flag drift",
			observed:    schema.RetentionPolicy{Name: "rp1", Duration: "2w", ShardDuration: "1d", IsDefault: false},
			desired:     schema.RetentionPolicy{Name: "rp1", Duration: "2w", ShardDuration: "1d", IsDefault: true},
			wantUpdate:  true,
			wantAltered: `ALTER RETENTION POLICY "rp1" ON "db" DURATION 2w REPLICATION 1 SHARD DURATION 1d DEFAULT`,
		},
		{
			name:        "infinite desired renders as INF",
			observed:    schema.RetentionPolicy{Name: "rp1", Duration: "1w", ShardDuration: "1d", IsDefault: false},
			desired:     schema.RetentionPolicy{Name: "rp1", Duration: "infinite", ShardDuration: "1d", IsDefault: false},
			wantUpdate:  true,
			wantAltered: `ALTER RETENTION POLICY "rp1" ON "db" DURATION INF REPLICATION 1 SHARD DURATION 1d`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed := stateWith([]schema.Database{database("db", tt.observed)}, nil)
			desired := stateWith([]schema.Database{database("db", tt.desired)}, nil)

			changes, err := Diff(observed, desired)
			if err != nil {
				t.Fatalf("Diff() error: %v", err)
			}

			if !tt.wantUpdate {
				if len(changes.PolicyUpdates) != 0 {
					t.Errorf("PolicyUpdates = %v, want none", changes.PolicyUpdates)
				}
				return
			}
			if len(changes.PolicyUpdates) != 1 {
				t.Fatalf("PolicyUpdates = %v, want one update", changes.PolicyUpdates)
			}
			if got := changes.PolicyUpdates[0].Statement; got != tt.wantAltered {
				t.Errorf("update statement = %q, want %q", got, tt.wantAltered)
			}
		})
	}
}

func TestDiffPolicyCreateAndDelete(t *testing.T) {
	keep := schema.RetentionPolicy{Name: "keep", Duration: "1w", ShardDuration: "1d", IsDefault: true}
	stale := schema.RetentionPolicy{Name: "stale", Duration: "1w", ShardDuration: "1d"}
	fresh := schema.RetentionPolicy{Name: "fresh", Duration: "4w", ShardDuration: "1d"}

	observed := stateWith([]schema.Database{database("db", keep, stale)}, nil)
	desired := stateWith([]schema.Database{database("db", keep, fresh)}, nil)

	changes, err := Diff(observed, desired)
	if err != nil {
		t.Fatalf("Diff() error: %v", err)
	}

	if len(changes.PolicyDeletes) != 1 || changes.PolicyDeletes[0].Name != "stale" {
		t.Fatalf("PolicyDeletes = %v, want delete of stale", changes.PolicyDeletes)
	}
	if got := changes.PolicyDeletes[0].Statement; got != `DROP RETENTION POLICY "stale" ON "db"` {
		t.Errorf("delete statement = %q", got)
	}
	if len(changes.PolicyCreates) != 1 || changes.PolicyCreates[0].Name != "fresh" {
		t.Fatalf("PolicyCreates = %v, want create of fresh", changes.PolicyCreates)
	}
	want := `CREATE RETENTION POLICY "fresh" ON "db" DURATION 4w REPLICATION 1 SHARD DURATION 1d`
	if got := changes.PolicyCreates[0].Statement; got != want {
		t.Errorf("create statement = %q, want %q", got, want)
	}
}

func TestDiffContinuousQueries(t *testing.T) {
	rp := schema.RetentionPolicy{Name: "autogen", Duration: "infinite", ShardDuration: "7d", IsDefault: true}
	dbs := []schema.Database{database("metrics", rp)}

	observed := stateWith(dbs, []schema.ContinuousQuery{
		{Name: "stale", Database: "metrics", Definition: "CREATE CONTINUOUS QUERY stale ON metrics BEGIN SELECT a INTO b FROM c END"},
		{Name: "drifted", Database: "metrics", Definition: "CREATE CONTINUOUS QUERY drifted ON metrics BEGIN SELECT a INTO b FROM c END"},
		{Name: "same", Database: "metrics", Definition: "CREATE CONTINUOUS QUERY same ON metrics BEGIN SELECT a INTO b FROM c FILL(NULL) END"},
	})
	desired := stateWith(dbs, []schema.ContinuousQuery{
		{Name: "drifted", Database: "metrics", Definition: "CREATE CONTINUOUS QUERY drifted ON metrics BEGIN SELECT a INTO b FROM other END"},
		{Name: "same", Database: "metrics", Definition: "create continuous query same on metrics begin select a into b from c end"},
		{Name: "new.cq", Database: "metrics", Definition: "CREATE CONTINUOUS QUERY \"new.cq\" ON metrics BEGIN SELECT x INTO y FROM z END"},
	})

	changes, err := Diff(observed, desired)
	if err != nil {
		t.Fatalf("Diff() error: %v", err)
	}

	if len(changes.QueryDeletes) != 1 || changes.QueryDeletes[0].Name != "stale" {
		t.Errorf("QueryDeletes = %v, want delete of stale", changes.QueryDeletes)
	}
	if len(changes.QueryCreates) != 1 || changes.QueryCreates[0].Name != "new.cq" {
		t.Errorf("QueryCreates = %v, want create of new.cq", changes.QueryCreates)
	}
	if len(changes.QueryUpdates) != 1 || changes.QueryUpdates[0].Name != "drifted" {
		t.Fatalf("QueryUpdates = %v, want update of drifted", changes.QueryUpdates)
	}

	want := `DROP CONTINUOUS QUERY "drifted" ON "metrics"; CREATE CONTINUOUS QUERY drifted ON metrics BEGIN SELECT a INTO b FROM other END`
	if got := changes.QueryUpdates[0].Statement; got != want {
		t.Errorf("update statement = %q, want %q", got, want)
	}
}

func TestDiffIdenticalStatesIsEmpty(t *testing.T) {
	rp := schema.RetentionPolicy{Name: "autogen", Duration: "infinite", ShardDuration: "7d", IsDefault: true}
	cq := schema.ContinuousQuery{Name: "cq", Database: "db", Definition: "CREATE CONTINUOUS QUERY cq ON db BEGIN SELECT a INTO b FROM c END"}

	observed := stateWith([]schema.Database{database("db", rp)}, []schema.ContinuousQuery{cq})
	desired := stateWith([]schema.Database{database("db", rp)}, []schema.ContinuousQuery{cq})

	changes, err := Diff(observed, desired)
	if err != nil {
		t.Fatalf("Diff() error: %v", err)
	}
	if !changes.Empty() {
		t.Errorf("expected empty changes, got %+v", changes)
	}
}
