package estimate

// This file contains the in-memory database of CU estimates, keyed by
// benchmark name. It is the only persistence the engine offers; callers
// wanting durability serialize it themselves.

import (
	"encoding/json"
	"time"
)

// Database holds CU estimates for different benchmark subjects.
type Database struct {
	Estimates map[string]Stats `json:"estimates"`
	// GeneratedAt is an RFC3339 timestamp set at construction.
	GeneratedAt string `json:"generated_at"`
}

// NewDatabase creates a new empty database.
func NewDatabase() *Database {
	return &Database{
		Estimates:   make(map[string]Stats),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Put stores stats under its benchmark name, replacing any prior entry.
func (d *Database) Put(stats Stats) {
	d.Estimates[stats.BenchmarkName] = stats
}

// Get returns the estimate for a benchmark name.
func (d *Database) Get(name string) (Stats, bool) {
	stats, ok := d.Estimates[name]
	return stats, ok
}

// ForLevel returns the CU estimate for a benchmark name at the given
// confidence level.
func (d *Database) ForLevel(name string, level Level) (uint64, bool) {
	stats, ok := d.Estimates[name]
	if !ok {
		return 0, false
	}
	return stats.ForLevel(level), true
}

// ParseDatabase decodes a database previously serialized as JSON.
func ParseDatabase(data []byte) (*Database, error) {
	var d Database
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if d.Estimates == nil {
		d.Estimates = make(map[string]Stats)
	}
	return &d, nil
}
