package cli

// This file contains the view command for displaying benchmark reports
// from history.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cubench/cubench/history"
	"github.com/cubench/cubench/model"
)

// resolveEntry finds the history entry matching arg among entries sorted
// newest first. arg is "0" for the last run, a negative index counting
// back from it, or a hex ID prefix.
func resolveEntry(entries []history.Entry, arg string) (*history.Entry, error) {
	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			// Positive integers are not allowed
			return nil, fmt.Errorf("invalid index: %s (use 0 for last, -1 for second-to-last, etc.)", arg)
		}
		index := int(-parsed)
		if index >= len(entries) {
			return nil, fmt.Errorf("index %s out of range (only %d history entries)", arg, len(entries))
		}
		return &entries[index], nil
	}

	// Treat as hex ID prefix
	hexID := strings.ToLower(arg)
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].History.ID), hexID) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no history entry found matching ID: %s", arg)
}

func (a *App) view(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		arg = "0"
	}

	// Get cubench root directory
	cubenchRoot, err := history.GetCubenchRoot()
	if err != nil {
		return err
	}

	// Load all history entries
	historyEntries, err := history.LoadEntries(a.logger, cubenchRoot)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(historyEntries) == 0 {
		return fmt.Errorf("no history entries found")
	}

	// Sort by timestamp (newest first)
	sort.Slice(historyEntries, func(i, j int) bool {
		return historyEntries[i].History.Timestamp.After(historyEntries[j].History.Timestamp)
	})

	targetEntry, err := resolveEntry(historyEntries, arg)
	if err != nil {
		return err
	}

	return a.displayHistoryEntry(targetEntry)
}

func (a *App) displayHistoryEntry(entry *history.Entry) error {
	h := entry.History

	// Print header
	fmt.Printf("=== Benchmark Run: %s ===\n", h.ID[:8])
	fmt.Printf("Time: %s\n", h.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %s\n", h.Duration)
	fmt.Printf("Exit Code: %d\n", h.ExitCode)
	if h.Benchmark != nil {
		fmt.Printf("Benchmark: %s (%s, %d samples)\n", h.Benchmark.Name, h.Benchmark.Kind, h.Benchmark.Samples)
	}
	if h.Git != nil && h.Git.Commit != "" {
		fmt.Printf("Git Commit: %s", h.Git.Commit[:8])
		if h.Git.Branch != "" {
			fmt.Printf(" (%s)", h.Git.Branch)
		}
		fmt.Println()
	}
	fmt.Println()

	for i := range h.Artifacts {
		artifact := &h.Artifacts[i]
		if artifact.Type == model.ArtifactTypeReport {
			return a.displayReport(entry.FullPath, artifact)
		}
	}

	fmt.Println("No report artifact found")
	fmt.Printf("History directory: %s\n", entry.FullPath)
	return nil
}

func (a *App) displayReport(runDir string, artifact *model.Artifact) error {
	reportPath := filepath.Join(runDir, artifact.File)
	fmt.Printf("Report: %s (%.1f KB)\n", reportPath, float64(artifact.Size)/1024)
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
