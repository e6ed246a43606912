package cli

// This file contains the list command for displaying previous benchmark
// runs.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cubench/cubench/history"
	"github.com/cubench/cubench/model"
)

func (a *App) list(ctx *cli.Context) error {
	filterBenchmark := ctx.String("benchmark")
	limit := ctx.Int("limit")

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

	// Apply benchmark filter if specified
	var filteredEntries []history.Entry
	for _, entry := range historyEntries {
		if filterBenchmark == "" ||
			(entry.History.Benchmark != nil && entry.History.Benchmark.Name == filterBenchmark) {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	if len(filteredEntries) == 0 {
		if filterBenchmark != "" {
			fmt.Printf("No runs found for benchmark: %s\n", filterBenchmark)
		} else {
			fmt.Println("No runs found")
		}
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(filteredEntries, func(i, j int) bool {
		return filteredEntries[i].History.Timestamp.After(filteredEntries[j].History.Timestamp)
	})

	// Apply limit
	displayRuns := filteredEntries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Printf("\n=== Benchmark Runs (%d total) ===\n\n", len(filteredEntries))

	for _, entry := range displayRuns {
		h := entry.History
		timestamp := h.Timestamp.Format("2006-01-02 15:04:05")

		// Format duration
		duration := h.Duration.Round(time.Millisecond)

		// Determine status indicator
		status := "✓"
		if h.ExitCode != 0 {
			status = "✗"
		}

		// Show short ID (first 8 chars)
		shortID := h.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Printf("%s  %s  [%s]  exit=%d  id=%s\n", status, timestamp, duration, h.ExitCode, shortID)
		if h.Benchmark != nil {
			fmt.Printf("   Benchmark: %s (%s, %d samples)\n", h.Benchmark.Name, h.Benchmark.Kind, h.Benchmark.Samples)
		}
		if len(h.Args) > 1 {
			fmt.Printf("   Args: %s\n", strings.Join(h.Args[1:], " "))
		}
		if h.Git != nil && h.Git.Commit != "" {
			shortCommit := h.Git.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Printf("   Commit: %s", shortCommit)
			if h.Git.Branch != "" {
				fmt.Printf(" (%s)", h.Git.Branch)
			}
			fmt.Println()
		}
		for _, artifact := range h.Artifacts {
			var typeName string
			switch artifact.Type {
			case model.ArtifactTypeReport:
				typeName = "report"
			case model.ArtifactTypeReportStream:
				typeName = "stream"
			}
			if typeName != "" {
				fmt.Printf("   %s: %s (%.1f KB)\n", typeName, artifact.File, float64(artifact.Size)/1024)
			}
		}
		fmt.Printf("   %s\n", entry.FullPath)
		fmt.Println()
	}

	fmt.Println("\nView a report: cubench view <ID>")

	return nil
}
