package influx

import (
	"fmt"

	"github.com/influxdata/influxdb1-client/models"

	"github.com/mhagen/influxsync/internal/schema"
)

// internalDatabase is the server's own telemetry database. It is never
// a candidate for comparison or deletion.
const internalDatabase = "_internal"

// Querier issues one statement and returns the resulting series rows.
// *Client implements it; tests inject fixture responses.
type Querier interface {
	Query(cmd string) ([]models.Row, error)
}

// Loader captures the observed schema state from a live server.
type Loader struct {
	querier Querier
}

// NewLoader creates a loader reading through the given querier.
func NewLoader(q Querier) *Loader {
	return &Loader{querier: q}
}

// Load builds the observed state in three passes: the database listing,
// one retention policy listing per database, and the continuous query
// listing.
func (l *Loader) Load() (*schema.State, error) {
	state := schema.NewState()

	names, err := l.databaseNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}

	for _, name := range names {
		policies, err := l.retentionPolicies(name)
		if err != nil {
			return nil, fmt.Errorf("failed to list retention policies for %q: %w", name, err)
		}
		state.Databases[name] = schema.Database{
			Name:              name,
			RetentionPolicies: policies,
		}
	}

	if err := l.continuousQueries(state); err != nil {
		return nil, fmt.Errorf("failed to list continuous queries: %w", err)
	}

	return state, nil
}

func (l *Loader) databaseNames() ([]string, error) {
	rows, err := l.querier.Query("SHOW DATABASES")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, row := range rows {
		for _, values := range row.Values {
			name, ok := stringAt(values, 0)
			if !ok {
				return nil, fmt.Errorf("unexpected database row %v", values)
			}
			if name == internalDatabase {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func (l *Loader) retentionPolicies(db string) (map[string]schema.RetentionPolicy, error) {
	rows, err := l.querier.Query(fmt.Sprintf("SHOW RETENTION POLICIES ON %q", db))
	if err != nil {
		return nil, err
	}

	policies := make(map[string]schema.RetentionPolicy)
	for _, row := range rows {
		nameIdx := columnIndex(row.Columns, "name")
		durationIdx := columnIndex(row.Columns, "duration")
		shardIdx := columnIndex(row.Columns, "shardGroupDuration")
		defaultIdx := columnIndex(row.Columns, "default")
		if nameIdx < 0 || durationIdx < 0 || shardIdx < 0 || defaultIdx < 0 {
			return nil, fmt.Errorf("unexpected retention policy columns %v", row.Columns)
		}

		for _, values := range row.Values {
			name, nameOK := stringAt(values, nameIdx)
			duration, durationOK := stringAt(values, durationIdx)
			shard, shardOK := stringAt(values, shardIdx)
			isDefault, defaultOK := boolAt(values, defaultIdx)
			if !nameOK || !durationOK || !shardOK || !defaultOK {
				return nil, fmt.Errorf("unexpected retention policy row %v", values)
			}

			policies[name] = schema.RetentionPolicy{
				Name:          name,
				Duration:      duration,
				ShardDuration: shard,
				IsDefault:     isDefault,
			}
		}
	}
	return policies, nil
}

// continuousQueries attaches observed queries to the state. The listing
// returns one series per database, named after it; series for databases
// outside the observed set (the internal database included) are skipped.
func (l *Loader) continuousQueries(state *schema.State) error {
	rows, err := l.querier.Query("SHOW CONTINUOUS QUERIES")
	if err != nil {
		return err
	}

	for _, row := range rows {
		db := row.Name
		if _, ok := state.Databases[db]; !ok {
			continue
		}
		for _, values := range row.Values {
			name, nameOK := stringAt(values, 0)
			definition, defOK := stringAt(values, 1)
			if !nameOK || !defOK {
				return fmt.Errorf("unexpected continuous query row %v", values)
			}
			key := schema.CQKey{Database: db, Name: name}
			state.ContinuousQueries[key] = schema.ContinuousQuery{
				Name:       name,
				Database:   db,
				Definition: definition,
			}
		}
	}
	return nil
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func stringAt(values []interface{}, i int) (string, bool) {
	if i >= len(values) {
		return "", false
	}
	s, ok := values[i].(string)
	return s, ok
}

func boolAt(values []interface{}, i int) (bool, bool) {
	if i >= len(values) {
		return false, false
	}
	b, ok := values[i].(bool)
	return b, ok
}
