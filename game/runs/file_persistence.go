package runs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
)

// FilePersistence implements RunPersistence using file system storage
type FilePersistence struct {
	runsDir string
}

// NewFilePersistence creates a new file-based run persistence layer
func NewFilePersistence(runsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}
	return &FilePersistence{runsDir: runsDir}, nil
}

// Save persists a run to a JSON file
func (fp *FilePersistence) Save(run *service.Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.Grid == nil {
		return fmt.Errorf("run %s has no layout", run.ID)
	}
	if !validID(run.ID) {
		return ErrInvalidRunID
	}

	data := PersistedRunData{
		ID:             run.ID,
		LayoutID:       run.LayoutID,
		Layout:         strings.Split(run.Grid.String(), "\n"),
		Heuristic:      run.Heuristic,
		MaxExpansions:  run.MaxExpansions,
		Result:         run.Result,
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	if err := os.WriteFile(fp.getFilePath(run.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// Load retrieves a run from a JSON file and re-parses its layout
func (fp *FilePersistence) Load(id string) (*service.Run, error) {
	if !validID(id) {
		return nil, ErrInvalidRunID
	}

	jsonData, err := os.ReadFile(fp.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var data PersistedRunData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}

	grid, err := maze.ParseLayout(strings.Join(data.Layout, "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to restore layout of run %s: %w", id, err)
	}

	return &service.Run{
		ID:             data.ID,
		LayoutID:       data.LayoutID,
		Grid:           grid,
		Heuristic:      data.Heuristic,
		MaxExpansions:  data.MaxExpansions,
		Result:         data.Result,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a run file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrRunNotFound
	}
	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove run file: %w", err)
	}
	return nil
}

// ListAll returns all persisted run IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

// Exists checks if a run file exists
func (fp *FilePersistence) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.runsDir, fmt.Sprintf("%s.json", id))
}
