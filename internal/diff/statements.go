package diff

import (
	"fmt"
	"strings"

	"github.com/mhagen/influxsync/internal/schema"
)

// influxDuration renders a stored duration string into InfluxQL syntax.
// The config sentinel "infinite" has no literal form in the language and
// is written as INF.
func influxDuration(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "infinite" || lower == "inf" {
		return "INF"
	}
	return strings.TrimSpace(s)
}

func dropDatabaseStmt(db string) string {
	return fmt.Sprintf("DROP DATABASE %q", db)
}

func dropRetentionPolicyStmt(db, rp string) string {
	return fmt.Sprintf("DROP RETENTION POLICY %q ON %q", rp, db)
}

func createRetentionPolicyStmt(db string, rp schema.RetentionPolicy) string {
	stmt := fmt.Sprintf("CREATE RETENTION POLICY %q ON %q DURATION %s REPLICATION 1 SHARD DURATION %s",
		rp.Name, db, influxDuration(rp.Duration), influxDuration(rp.ShardDuration))
	if rp.IsDefault {
		stmt += " DEFAULT"
	}
	return stmt
}

func alterRetentionPolicyStmt(db string, rp schema.RetentionPolicy) string {
	stmt := fmt.Sprintf("ALTER RETENTION POLICY %q ON %q DURATION %s REPLICATION 1 SHARD DURATION %s",
		rp.Name, db, influxDuration(rp.Duration), influxDuration(rp.ShardDuration))
	if rp.IsDefault {
		stmt += " DEFAULT"
	}
	return stmt
}

func dropContinuousQueryStmt(db, cq string) string {
	return fmt.Sprintf("DROP CONTINUOUS QUERY %q ON %q", cq, db)
}

// replaceContinuousQueryStmt builds the drop-and-recreate pair used for
// continuous query updates. The server has no ALTER verb for continuous
// queries, so both statements travel as one unit.
func replaceContinuousQueryStmt(db, cq, definition string) string {
	return dropContinuousQueryStmt(db, cq) + "; " + definition
}
