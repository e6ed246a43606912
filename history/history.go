package history

// This file contains shared history utilities for loading and parsing
// recorded benchmark runs.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cubench/cubench/model"
)

// Entry pairs a parsed history record with its run directory.
type Entry struct {
	History  model.History
	FullPath string
}

// GetCubenchRoot returns the .cubench directory path from the git
// repository root.
func GetCubenchRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))
	cubenchRoot := filepath.Join(repoRoot, ".cubench")

	// Check if .cubench directory exists
	if _, err := os.Stat(cubenchRoot); os.IsNotExist(err) {
		return "", fmt.Errorf("no benchmark runs found in %s", cubenchRoot)
	}

	return cubenchRoot, nil
}

// LoadEntries loads all history entries from the .cubench directory.
func LoadEntries(logger zerolog.Logger, cubenchRoot string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(cubenchRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			historyPath := filepath.Join(path, "history.json")
			if _, err := os.Stat(historyPath); err == nil {
				history, err := parseHistoryJSON(historyPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", historyPath).Msg("Failed to parse history.json")
					return nil
				}

				entries = append(entries, Entry{
					History:  history,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk .cubench directory: %w", err)
	}

	return entries, nil
}

// parseHistoryJSON parses a history.json file.
func parseHistoryJSON(historyPath string) (model.History, error) {
	data, err := os.ReadFile(historyPath)
	if err != nil {
		return model.History{}, err
	}

	var history model.History
	if err := json.Unmarshal(data, &history); err != nil {
		return model.History{}, err
	}

	return history, nil
}
