package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const validLayout = `%%%%%%
%P  .%
% %% %
%. O %
%%%%%%
`

func writeLayoutFile(t *testing.T, dir, filename, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write layout file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeLayoutFile(t, dir, "tinySearch.lay", validLayout)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		name, grid := manager.GetDefault()
		if name != "tinySearch" {
			t.Errorf("Expected default 'tinySearch', got '%s'", name)
		}
		if grid == nil {
			t.Error("Expected default grid to be non-nil")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in layout", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without layout files, got error: %v", err)
		}
		name, grid := manager.GetDefault()
		if name != "default" || grid == nil {
			t.Errorf("Expected built-in default layout, got %q", name)
		}
	})

	t.Run("first valid layout when no tinySearch", func(t *testing.T) {
		dir := t.TempDir()
		writeLayoutFile(t, dir, "a_broken.lay", "%%%\n%.%\n%%%\n")
		writeLayoutFile(t, dir, "b_good.txt", validLayout)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if name, _ := manager.GetDefault(); name != "b_good" {
			t.Errorf("Expected default 'b_good', got '%s'", name)
		}
	})
}

func TestManager_LoadLayout(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "tinySearch.lay", validLayout)
	writeLayoutFile(t, dir, "plain.txt", validLayout)
	writeLayoutFile(t, dir, "broken.lay", "%%%%\n%P%\n%%%%\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing layout", func(t *testing.T) {
		g, err := manager.LoadLayout("tinySearch")
		if err != nil {
			t.Fatalf("Failed to load layout: %v", err)
		}
		if g.Width() != 6 || g.Height() != 5 {
			t.Errorf("Expected 6x5 grid, got %dx%d", g.Width(), g.Height())
		}
		if len(g.Food()) != 2 || len(g.Pies()) != 1 {
			t.Errorf("Expected 2 food and 1 pie, got %d and %d", len(g.Food()), len(g.Pies()))
		}
	})

	t.Run("load with extension", func(t *testing.T) {
		if _, err := manager.LoadLayout("tinySearch.lay"); err != nil {
			t.Fatalf("Failed to load layout with extension: %v", err)
		}
		if _, err := manager.LoadLayout("plain"); err != nil {
			t.Fatalf("Failed to load .txt layout: %v", err)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		g1, _ := manager.LoadLayout("tinySearch")
		g2, err := manager.LoadLayout("tinySearch")
		if err != nil {
			t.Fatalf("Failed to load layout from cache: %v", err)
		}
		if g1 != g2 {
			t.Error("Expected layout to be loaded from cache")
		}
	})

	t.Run("load non-existent layout", func(t *testing.T) {
		_, err := manager.LoadLayout("non-existent")
		if !errors.Is(err, ErrLayoutNotFound) {
			t.Errorf("Expected ErrLayoutNotFound, got %v", err)
		}
	})

	t.Run("load invalid layout", func(t *testing.T) {
		_, err := manager.LoadLayout("broken")
		if !errors.Is(err, ErrInvalidLayout) {
			t.Errorf("Expected ErrInvalidLayout, got %v", err)
		}
	})
}

func TestManager_ListLayouts(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "tinySearch.lay", validLayout)
	writeLayoutFile(t, dir, "other.txt", validLayout)
	writeLayoutFile(t, dir, "broken.lay", "not a layout\n")
	writeLayoutFile(t, dir, "notes.md", "# notes\n")
	writeLayoutFile(t, dir, IndexFile, "layouts:\n  tinySearch:\n    description: Warm-up maze\n    heuristic: mfd\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	layouts, err := manager.ListLayouts()
	if err != nil {
		t.Fatalf("Failed to list layouts: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("Expected 2 layouts, got %d", len(layouts))
	}

	found := false
	for _, l := range layouts {
		if l.LayoutID != "tinySearch" {
			continue
		}
		found = true
		if l.Filename != "tinySearch.lay" {
			t.Errorf("Expected filename 'tinySearch.lay', got '%s'", l.Filename)
		}
		if l.Description != "Warm-up maze" || l.Heuristic != "mfd" {
			t.Errorf("Expected index metadata, got %q / %q", l.Description, l.Heuristic)
		}
		if l.Food != 2 || l.Pies != 1 {
			t.Errorf("Expected 2 food and 1 pie, got %d and %d", l.Food, l.Pies)
		}
	}
	if !found {
		t.Error("tinySearch missing from listing")
	}
}

func TestManager_IndexDefault(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "tinySearch.lay", validLayout)
	writeLayoutFile(t, dir, "big.lay", validLayout)
	writeLayoutFile(t, dir, IndexFile, "default: big\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if name, _ := manager.GetDefault(); name != "big" {
		t.Errorf("Expected index default 'big', got '%s'", name)
	}

	if err := manager.SetDefault("tinySearch"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if name, _ := manager.GetDefault(); name != "tinySearch" {
		t.Errorf("Expected default 'tinySearch', got '%s'", name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("Expected ErrLayoutNotFound, got %v", err)
	}
}

func TestManager_InvalidIndex(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, IndexFile, "layouts: [unclosed\n")

	if _, err := NewManager(dir); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout for a broken index, got %v", err)
	}
}

func TestManager_SaveLayout(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save valid layout", func(t *testing.T) {
		g, err := manager.SaveLayout("saved", validLayout)
		if err != nil {
			t.Fatalf("Failed to save layout: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.lay")); err != nil {
			t.Errorf("Layout file not written: %v", err)
		}
		loaded, err := manager.LoadLayout("saved")
		if err != nil {
			t.Fatalf("Failed to load saved layout: %v", err)
		}
		if loaded != g {
			t.Error("Expected saved layout to be cached")
		}
	})

	t.Run("reject invalid layout", func(t *testing.T) {
		_, err := manager.SaveLayout("bad", "%%%\n%%%\n")
		if !errors.Is(err, ErrInvalidLayout) {
			t.Errorf("Expected ErrInvalidLayout, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "bad.lay")); !os.IsNotExist(err) {
			t.Error("Invalid layout should not be written")
		}
	})

	t.Run("refresh reloads from disk", func(t *testing.T) {
		if err := manager.RefreshCache(); err != nil {
			t.Fatalf("Failed to refresh cache: %v", err)
		}
		if _, err := manager.LoadLayout("saved"); err != nil {
			t.Errorf("Expected saved layout after refresh: %v", err)
		}
	})
}

func TestManager_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "tinySearch.lay", validLayout)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadLayout("tinySearch"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent load failed: %v", err)
	}
}
