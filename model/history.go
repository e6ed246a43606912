package model

import "time"

// History represents a single recorded benchmark run.
type History struct {
	// Unique ID for this run (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where the command was run (relative to repo root)
	WorkDir string `json:"workdir"`
	// Exit code of the run
	ExitCode int `json:"exit_code"`
	// Duration of the run
	Duration time.Duration `json:"duration"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Benchmark that was run
	Benchmark *Benchmark `json:"benchmark,omitempty"`
	// Artifacts generated during this run
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Git contains git repository information.
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
	// Repository name
	Repo string `json:"repo,omitempty"`
}

// Benchmark describes the benchmark a run executed.
type Benchmark struct {
	// Kind of benchmark (instruction or transaction)
	Kind string `json:"kind"`
	// Benchmark subject name
	Name string `json:"name"`
	// Number of measurement passes requested
	Samples int `json:"samples"`
}

// ArtifactType identifies the type of artifact.
type ArtifactType uint8

const (
	ArtifactTypeReport ArtifactType = iota
	ArtifactTypeReportStream
)

// Artifact represents a file generated during a run.
type Artifact struct {
	Type ArtifactType `json:"type"`
	Size uint64       `json:"size"`
	File string       `json:"file"` // relative to run dir
}
