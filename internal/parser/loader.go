package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhagen/influxsync/internal/schema"
)

// Subdirectories of the config directory. Files under databases/ hold
// database and retention policy definitions; files under queries/ hold
// continuous query definitions.
const (
	databasesDir = "databases"
	queriesDir   = "queries"
)

// Load reads every definition file under dir and assembles the desired
// state. Files are read in lexical order and merged into one mapping;
// when two files declare the same object name the later file wins
// silently, mirroring the last-write-wins rule within a single file.
func Load(dir string) (*schema.State, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("config directory %q not found", dir)
	}

	state := schema.NewState()

	dbFiles, err := listFiles(filepath.Join(dir, databasesDir))
	if err != nil {
		return nil, err
	}
	for _, path := range dbFiles {
		databases, err := parseFile(path, ParseDatabases)
		if err != nil {
			return nil, err
		}
		for name, db := range databases {
			state.Databases[name] = db
		}
	}

	cqFiles, err := listFiles(filepath.Join(dir, queriesDir))
	if err != nil {
		return nil, err
	}
	for _, path := range cqFiles {
		queries, err := parseFile(path, ParseContinuousQueries)
		if err != nil {
			return nil, err
		}
		for key, cq := range queries {
			state.ContinuousQueries[key] = cq
		}
	}

	return state, nil
}

func parseFile[T any](path string, parse func(string) (T, error)) (T, error) {
	var zero T
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("reading %s: %w", path, err)
	}
	parsed, err := parse(string(raw))
	if err != nil {
		return zero, fmt.Errorf("parsing %s: %w", path, err)
	}
	return parsed, nil
}

// listFiles returns the regular, non-hidden files directly under dir,
// in lexical order.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
