// Package parser turns textual schema definitions into the structured
// entities of the desired state. It recognizes exactly four statement
// forms: CREATE DATABASE (with an optional retention clause), CREATE
// RETENTION POLICY, DROP RETENTION POLICY, and CREATE CONTINUOUS QUERY.
// Keywords match case-insensitively; names may be single- or
// double-quoted and the quotes are stripped.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mhagen/influxsync/internal/schema"
)

// ErrNoStatements is returned when a body of text contains none of the
// statement forms the caller requires at least one of.
var ErrNoStatements = errors.New("no recognizable schema statements")

// Attributes of the retention policy every database implicitly owns
// when its CREATE DATABASE statement carries no WITH clause.
const (
	implicitPolicyName     = "autogen"
	implicitPolicyDuration = "infinite"
	implicitPolicyShard    = "7d"
)

type token struct {
	text   string // unquoted text
	lower  string
	start  int // byte offsets into the source, quotes included
	end    int
	quoted bool
	semi   bool
}

func (t token) isKeyword(kw string) bool {
	return !t.quoted && !t.semi && t.lower == kw
}

// tokenize splits source text into words, quoted names and semicolons,
// keeping byte offsets so statements can be captured verbatim.
func tokenize(src string) []token {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ';':
			tokens = append(tokens, token{text: ";", lower: ";", start: i, end: i + 1, semi: true})
			i++
		case c == '"' || c == '\'':
			quote := c
			j := i + 1
			for j < len(src) && src[j] != quote {
				j++
			}
			end := j
			if j < len(src) {
				end = j + 1
			}
			tokens = append(tokens, token{
				text:   src[i+1 : j],
				lower:  strings.ToLower(src[i+1 : j]),
				start:  i,
				end:    end,
				quoted: true,
			})
			i = end
		default:
			j := i
			for j < len(src) {
				c := src[j]
				if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ';' || c == '"' || c == '\'' {
					break
				}
				j++
			}
			tokens = append(tokens, token{
				text:  src[i:j],
				lower: strings.ToLower(src[i:j]),
				start: i,
				end:   j,
			})
			i = j
		}
	}
	return tokens
}

// ParseDatabases extracts databases and their retention policies from a
// definition text. A single text may declare several databases; CREATE
// and DROP RETENTION POLICY statements attach to the database their ON
// clause names, which must already have been declared. Unrecognized text
// between statements is skipped, but a text yielding zero statements is
// an error.
func ParseDatabases(src string) (map[string]schema.Database, error) {
	tokens := tokenize(src)
	databases := make(map[string]schema.Database)
	matched := 0

	i := 0
	for i < len(tokens) {
		switch {
		case keywordsAt(tokens, i, "create", "database"):
			next, err := parseCreateDatabase(src, tokens, i, databases)
			if err != nil {
				return nil, err
			}
			i = next
			matched++
		case keywordsAt(tokens, i, "create", "retention", "policy"):
			next, err := parseCreateRetentionPolicy(tokens, i, databases)
			if err != nil {
				return nil, err
			}
			i = next
			matched++
		case keywordsAt(tokens, i, "drop", "retention", "policy"):
			next, err := parseDropRetentionPolicy(tokens, i, databases)
			if err != nil {
				return nil, err
			}
			i = next
			matched++
		default:
			i++
		}
	}

	if matched == 0 {
		return nil, ErrNoStatements
	}
	return databases, nil
}

func parseCreateDatabase(src string, tokens []token, i int, databases map[string]schema.Database) (int, error) {
	name, j, err := nameAt(tokens, i+2, "database name")
	if err != nil {
		return 0, err
	}

	db := schema.Database{
		Name:              name,
		RetentionPolicies: make(map[string]schema.RetentionPolicy),
	}

	var rp schema.RetentionPolicy
	if j < len(tokens) && tokens[j].isKeyword("with") {
		rp, j, err = parseWithClause(tokens, j)
		if err != nil {
			return 0, fmt.Errorf("database %q: %w", name, err)
		}
	} else {
		rp = schema.RetentionPolicy{
			Name:          implicitPolicyName,
			Duration:      implicitPolicyDuration,
			ShardDuration: implicitPolicyShard,
			IsDefault:     true,
		}
	}
	rp.IsDefault = true
	db.RetentionPolicies[rp.Name] = rp

	// The creation statement is kept verbatim, up to but excluding the
	// terminating semicolon.
	db.CreateQuery = strings.TrimSpace(src[tokens[i].start:tokens[j-1].end])

	databases[name] = db
	return j, nil
}

// parseWithClause consumes WITH DURATION <dur> [REPLICATION <n>] SHARD
// DURATION <sdur> NAME <rp> and returns the described policy.
func parseWithClause(tokens []token, i int) (schema.RetentionPolicy, int, error) {
	var rp schema.RetentionPolicy

	j, err := expectKeywords(tokens, i, "with", "duration")
	if err != nil {
		return rp, 0, err
	}
	rp.Duration, j, err = nameAt(tokens, j, "duration")
	if err != nil {
		return rp, 0, err
	}

	if j < len(tokens) && tokens[j].isKeyword("replication") {
		if _, _, err := nameAt(tokens, j+1, "replication factor"); err != nil {
			return rp, 0, err
		}
		j += 2
	}

	j, err = expectKeywords(tokens, j, "shard", "duration")
	if err != nil {
		return rp, 0, err
	}
	rp.ShardDuration, j, err = nameAt(tokens, j, "shard duration")
	if err != nil {
		return rp, 0, err
	}

	j, err = expectKeywords(tokens, j, "name")
	if err != nil {
		return rp, 0, err
	}
	rp.Name, j, err = nameAt(tokens, j, "retention policy name")
	if err != nil {
		return rp, 0, err
	}

	return rp, j, nil
}

func parseCreateRetentionPolicy(tokens []token, i int, databases map[string]schema.Database) (int, error) {
	rpName, j, err := nameAt(tokens, i+3, "retention policy name")
	if err != nil {
		return 0, err
	}
	j, err = expectKeywords(tokens, j, "on")
	if err != nil {
		return 0, err
	}
	dbName, j, err := nameAt(tokens, j, "database name")
	if err != nil {
		return 0, err
	}

	db, ok := databases[dbName]
	if !ok {
		return 0, fmt.Errorf("retention policy %q references undeclared database %q", rpName, dbName)
	}

	rp := schema.RetentionPolicy{Name: rpName}

	j, err = expectKeywords(tokens, j, "duration")
	if err != nil {
		return 0, err
	}
	rp.Duration, j, err = nameAt(tokens, j, "duration")
	if err != nil {
		return 0, err
	}

	j, err = expectKeywords(tokens, j, "replication")
	if err != nil {
		return 0, err
	}
	if _, _, err := nameAt(tokens, j, "replication factor"); err != nil {
		return 0, err
	}
	j++

	j, err = expectKeywords(tokens, j, "shard", "duration")
	if err != nil {
		return 0, err
	}
	rp.ShardDuration, j, err = nameAt(tokens, j, "shard duration")
	if err != nil {
		return 0, err
	}

	if j < len(tokens) && tokens[j].isKeyword("default") {
		// Last declared default wins across the whole document.
		for name, existing := range db.RetentionPolicies {
			existing.IsDefault = false
			db.RetentionPolicies[name] = existing
		}
		rp.IsDefault = true
		j++
	}

	db.RetentionPolicies[rp.Name] = rp
	return j, nil
}

func parseDropRetentionPolicy(tokens []token, i int, databases map[string]schema.Database) (int, error) {
	rpName, j, err := nameAt(tokens, i+3, "retention policy name")
	if err != nil {
		return 0, err
	}
	j, err = expectKeywords(tokens, j, "on")
	if err != nil {
		return 0, err
	}
	dbName, j, err := nameAt(tokens, j, "database name")
	if err != nil {
		return 0, err
	}

	db, ok := databases[dbName]
	if !ok {
		return 0, fmt.Errorf("drop retention policy %q references undeclared database %q", rpName, dbName)
	}
	delete(db.RetentionPolicies, rpName)

	return j, nil
}

// ParseContinuousQueries extracts CREATE CONTINUOUS QUERY statements.
// Each definition is captured verbatim from CREATE through the matching
// END keyword. A text yielding zero statements is an error.
func ParseContinuousQueries(src string) (map[schema.CQKey]schema.ContinuousQuery, error) {
	tokens := tokenize(src)
	queries := make(map[schema.CQKey]schema.ContinuousQuery)

	i := 0
	for i < len(tokens) {
		if !keywordsAt(tokens, i, "create", "continuous", "query") {
			i++
			continue
		}

		name, j, err := nameAt(tokens, i+3, "continuous query name")
		if err != nil {
			return nil, err
		}
		j, err = expectKeywords(tokens, j, "on")
		if err != nil {
			return nil, err
		}
		dbName, j, err := nameAt(tokens, j, "database name")
		if err != nil {
			return nil, err
		}

		end := j
		for end < len(tokens) && !tokens[end].isKeyword("end") {
			end++
		}
		if end == len(tokens) {
			return nil, fmt.Errorf("continuous query %q on %q: missing END", name, dbName)
		}

		queries[schema.CQKey{Database: dbName, Name: name}] = schema.ContinuousQuery{
			Name:       name,
			Database:   dbName,
			Definition: src[tokens[i].start:tokens[end].end],
		}
		i = end + 1
	}

	if len(queries) == 0 {
		return nil, ErrNoStatements
	}
	return queries, nil
}

// keywordsAt reports whether the tokens starting at i are exactly the
// given keyword sequence.
func keywordsAt(tokens []token, i int, kws ...string) bool {
	if i+len(kws) > len(tokens) {
		return false
	}
	for n, kw := range kws {
		if !tokens[i+n].isKeyword(kw) {
			return false
		}
	}
	return true
}

// expectKeywords consumes the given keyword sequence or fails.
func expectKeywords(tokens []token, i int, kws ...string) (int, error) {
	if !keywordsAt(tokens, i, kws...) {
		return 0, fmt.Errorf("expected %q at token %d", strings.ToUpper(strings.Join(kws, " ")), i)
	}
	return i + len(kws), nil
}

// nameAt returns the token at i as a name or value operand.
func nameAt(tokens []token, i int, what string) (string, int, error) {
	if i >= len(tokens) || tokens[i].semi {
		return "", 0, fmt.Errorf("expected %s at token %d", what, i)
	}
	return tokens[i].text, i + 1, nil
}
