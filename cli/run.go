package cli

// This file contains the run command: executing one benchmark and
// recording its report and metadata to the history directory.

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cubench/cubench/bench"
	"github.com/cubench/cubench/benchmarks"
	"github.com/cubench/cubench/model"
)

func (a *App) run(ctx *cli.Context) error {
	startTime := time.Now()

	name := ctx.Args().First()
	if name == "" {
		fmt.Println("Available benchmarks:")
		for _, entry := range benchmarks.All() {
			fmt.Printf("  %-16s (%s)\n", entry.Name, entry.Kind)
		}
		return fmt.Errorf("no benchmark specified")
	}

	entry, ok := benchmarks.Lookup(name)
	if !ok {
		available := make([]string, 0, len(benchmarks.All()))
		for _, e := range benchmarks.All() {
			available = append(available, e.Name)
		}
		return fmt.Errorf("unknown benchmark %q (available: %s)", name, strings.Join(available, ", "))
	}

	samples := ctx.Int("samples")
	outPath := ctx.String("out")

	// Generate random 16-byte ID
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return fmt.Errorf("failed to generate run ID: %w", err)
	}
	runID := hex.EncodeToString(idBytes)

	history := &model.History{
		ID:        runID,
		Timestamp: startTime,
		Args:      os.Args,
		Benchmark: &model.Benchmark{
			Kind:    entry.Kind,
			Name:    entry.Name,
			Samples: samples,
		},
	}

	// Capture working directory
	if cwd, err := os.Getwd(); err == nil {
		history.WorkDir = cwd
	}

	// Capture git info (non-fatal if it fails)
	if commit, branch, err := a.getGitInfo(); err == nil {
		history.Git = &model.Git{
			Commit: commit,
			Branch: branch,
		}
	}

	a.logger.Info().
		Str("benchmark", entry.Name).
		Str("kind", entry.Kind).
		Int("samples", samples).
		Msg("Starting benchmark run")

	runner := bench.NewRunner(a.logger)
	report, err := entry.Run(runner, samples)
	history.Duration = time.Since(startTime)
	if err != nil {
		history.ExitCode = 1
		a.logger.Error().Err(err).Msg("Benchmark run failed")
		if recErr := a.recordRun(history, nil); recErr != nil {
			a.logger.Warn().Err(recErr).Msg("Failed to record run")
		}
		return err
	}

	a.logger.Info().
		Str("benchmark", entry.Name).
		Dur("duration", history.Duration).
		Msg("Benchmark run completed")

	// Record the run (non-fatal if it fails)
	if err := a.recordRun(history, report); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record run")
	}

	// Append to the line-delimited report stream if requested
	if outPath != "" {
		if err := bench.AppendReport(outPath, report); err != nil {
			return err
		}
		a.logger.Info().Str("path", outPath).Msg("Appended report")
	}

	printSummary(report, samples)
	return nil
}

// recordRun writes the history record and report to
// .cubench/history/<timestamp>-<commit>-<id>.
func (a *App) recordRun(history *model.History, report bench.Report) error {
	// Get repository root
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))
	repoName := filepath.Base(repoRoot)

	if history.Git != nil {
		history.Git.Repo = repoName
	}

	// Get relative path from repo root
	relPath := "."
	if history.WorkDir != "" {
		if rel, err := filepath.Rel(repoRoot, history.WorkDir); err == nil {
			relPath = rel
		}
	}
	history.WorkDir = relPath

	timestamp := history.Timestamp.Format("20060102-150405")
	shortCommit := "nogit"
	if history.Git != nil && len(history.Git.Commit) >= 8 {
		shortCommit = history.Git.Commit[:8]
	}
	shortID := history.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	runName := fmt.Sprintf("%s-%s-%s", timestamp, shortCommit, shortID)
	runDir := filepath.Join(repoRoot, ".cubench", "history", runName)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	// Write the report artifact
	if report != nil {
		reportPath := filepath.Join(runDir, "report.json")
		if err := bench.WriteReport(reportPath, report); err != nil {
			return err
		}
		if info, err := os.Stat(reportPath); err == nil {
			history.Artifacts = append(history.Artifacts, model.Artifact{
				Type: model.ArtifactTypeReport,
				Size: uint64(info.Size()),
				File: "report.json",
			})
		}
	}

	// Write run metadata
	metadataPath := filepath.Join(runDir, "history.json")
	metadataJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath, metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}

	a.logger.Debug().Str("dir", runDir).Str("id", history.ID).Msg("Recorded benchmark run")
	return nil
}

func printSummary(report bench.Report, samples int) {
	stats := report.Estimate()

	fmt.Printf("\n=== %s (%s) ===\n", report.ReportName(), stats.BenchmarkType)
	fmt.Printf("Samples:      %d\n", samples)
	fmt.Printf("Min:          %d CU\n", stats.Min)
	fmt.Printf("Conservative: %d CU (p25)\n", stats.Conservative)
	fmt.Printf("Balanced:     %d CU (p50)\n", stats.Balanced)
	fmt.Printf("Safe:         %d CU (p75)\n", stats.Safe)
	fmt.Printf("Very high:    %d CU (p95)\n", stats.VeryHigh)
	fmt.Printf("Unsafe max:   %d CU\n", stats.UnsafeMax)
}
