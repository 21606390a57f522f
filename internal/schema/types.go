package schema

// Action is the kind of work a change operation performs.
type Action string

const (
	ActionDelete Action = "delete"
	ActionUpdate Action = "update"
	ActionCreate Action = "create"
)

// Kind identifies the schema object a change operation targets.
type Kind string

const (
	KindDatabase        Kind = "database"
	KindRetentionPolicy Kind = "retention_policy"
	KindContinuousQuery Kind = "continuous_query"
)

// Database represents a database and its retention policies.
// CreateQuery holds the verbatim creation statement and is only used
// when the database has to be created.
type Database struct {
	Name              string
	CreateQuery       string
	RetentionPolicies map[string]RetentionPolicy
}

// RetentionPolicy represents a retention policy within a database.
// Duration and ShardDuration keep the raw strings they were declared or
// reported with ("260w", "8760h0m0s", "infinite"); normalization happens
// only at comparison time.
type RetentionPolicy struct {
	Name          string
	Duration      string
	ShardDuration string
	IsDefault     bool
}

// ContinuousQuery represents a continuous query. Definition is the full
// verbatim CREATE CONTINUOUS QUERY statement. Names may contain dots, so
// continuous queries are identified by the (database, name) pair.
type ContinuousQuery struct {
	Name       string
	Database   string
	Definition string
}

// CQKey identifies a continuous query.
type CQKey struct {
	Database string
	Name     string
}

// State is one complete schema snapshot, either desired (parsed from
// config files) or observed (loaded from a live server). States are
// rebuilt from scratch on every run and never mutated after assembly.
type State struct {
	Databases         map[string]Database
	ContinuousQueries map[CQKey]ContinuousQuery
}

// NewState returns an empty state with initialized maps.
func NewState() *State {
	return &State{
		Databases:         make(map[string]Database),
		ContinuousQueries: make(map[CQKey]ContinuousQuery),
	}
}

// ChangeOp is one planned change. Statement is the exact text to execute.
// A skipped operation stays in the plan for display but must not run.
type ChangeOp struct {
	Action    Action
	Kind      Kind
	Database  string
	Name      string
	Statement string
	Skip      bool
}
