// Package file persists run state as JSON files on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tessera-io/tessera/pkg/runbook"
)

// Store implements ports.RunStore on a directory of JSON files, one per run.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath, defaulting to ".tessera/runs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".tessera", "runs")
	}
	return &Store{BasePath: basePath}
}

// Save writes the run state atomically: temp file, fsync, rename. The temp
// file lives in the same directory so the rename stays on one filesystem.
func (s *Store) Save(ctx context.Context, runID string, state *runbook.RunState) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("ensure run directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run state: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+runID+"-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	// Rename of an open file fails on Windows.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	dest := filepath.Join(s.BasePath, runID+".json")
	// os.Rename does not replace on Windows; remove first and accept the
	// tiny window rather than a partially written file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("remove existing run file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads one run state file.
func (s *Store) Load(ctx context.Context, runID string) (*runbook.RunState, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}
	data, err := os.ReadFile(filepath.Join(s.BasePath, runID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, runbook.ErrRunNotFound
		}
		return nil, fmt.Errorf("read run file: %w", err)
	}
	var state runbook.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal run state: %w", err)
	}
	return &state, nil
}

// Delete removes the run file. Deleting a missing run is not an error.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	err := os.Remove(filepath.Join(s.BasePath, runID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete run file: %w", err)
	}
	return nil
}

// List returns the known run IDs, newest first. Run IDs sort by timestamp
// lexicographically, so a reverse sort suffices.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var runs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "tmp-") {
			continue
		}
		runs = append(runs, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}
