package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
)

var (
	ErrLayoutNotFound = errors.New("layout not found")
	ErrInvalidLayout  = errors.New("invalid layout")
)

// DefaultLayoutName is used as the default when the index names none
const DefaultLayoutName = "tinySearch"

// LayoutExt is the extension written by SaveLayout; ".txt" files are read too
const LayoutExt = ".lay"

var layoutExts = []string{LayoutExt, ".txt"}

// minimalLayout is served when the directory holds no valid layout
const minimalLayout = `%%%%%%%
%P   .%
% %%% %
%.   O%
%%%%%%%`

// Manager handles layout loading and caching
type Manager struct {
	layoutDir   string
	index       *Index
	defaultName string
	defaultGrid *maze.Grid
	layouts     map[string]*maze.Grid
	mu          sync.RWMutex
}

// NewManager creates a new layout manager over layoutDir
func NewManager(layoutDir string) (*Manager, error) {
	if _, err := os.Stat(layoutDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layout directory does not exist: %s", layoutDir)
	}

	index, err := LoadIndex(filepath.Join(layoutDir, IndexFile))
	if err != nil {
		return nil, err
	}

	m := &Manager{
		layoutDir: layoutDir,
		index:     index,
		layouts:   make(map[string]*maze.Grid),
	}

	if err := m.loadDefaultLayout(); err != nil {
		return nil, fmt.Errorf("failed to load default layout: %w", err)
	}

	return m, nil
}

// LoadLayout loads a layout by name, with or without its extension
func (m *Manager) LoadLayout(name string) (*maze.Grid, error) {
	name = layoutName(name)

	m.mu.RLock()
	if g, exists := m.layouts[name]; exists {
		m.mu.RUnlock()
		return g, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if g, exists := m.layouts[name]; exists {
		return g, nil
	}

	path, ok := m.findFile(name)
	if !ok {
		return nil, ErrLayoutNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	g, err := maze.ParseLayout(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	m.layouts[name] = g
	return g, nil
}

// ListLayouts returns information about all valid layouts in the directory
func (m *Manager) ListLayouts() ([]*service.LayoutInfo, error) {
	entries, err := os.ReadDir(m.layoutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout directory: %w", err)
	}

	var layouts []*service.LayoutInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasLayoutExt(entry.Name()) {
			continue
		}

		name := layoutName(entry.Name())
		if seen[name] {
			continue
		}

		g, err := m.LoadLayout(name)
		if err != nil {
			// Skip invalid layouts
			continue
		}
		seen[name] = true

		description, heuristic := m.Describe(name)
		info := service.DescribeGrid(name, g, description, heuristic)
		info.Filename = entry.Name()
		layouts = append(layouts, &info)
	}

	return layouts, nil
}

// GetDefault returns the default layout and its name
func (m *Manager) GetDefault() (string, *maze.Grid) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName, m.defaultGrid
}

// SetDefault sets the default layout by name
func (m *Manager) SetDefault(name string) error {
	g, err := m.LoadLayout(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = layoutName(name)
	m.defaultGrid = g
	return nil
}

// Describe returns the index description and preferred heuristic of a layout
func (m *Manager) Describe(name string) (string, string) {
	entry, ok := m.index.Layouts[layoutName(name)]
	if !ok {
		return "", ""
	}
	return entry.Description, entry.Heuristic
}

// RefreshCache drops all cached layouts and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.layouts = make(map[string]*maze.Grid)
	m.mu.Unlock()

	return m.loadDefaultLayout()
}

// SaveLayout validates layout text and writes it to <name>.lay
func (m *Manager) SaveLayout(name, text string) (*maze.Grid, error) {
	g, err := maze.ParseLayout(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	name = layoutName(name)
	path := filepath.Join(m.layoutDir, name+LayoutExt)

	if err := os.WriteFile(path, []byte(g.String()+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to write layout file: %w", err)
	}

	m.mu.Lock()
	m.layouts[name] = g
	m.mu.Unlock()

	return g, nil
}

// loadDefaultLayout picks the index default, then DefaultLayoutName, then
// the first valid layout, and finally the built-in minimal layout.
func (m *Manager) loadDefaultLayout() error {
	candidates := []string{DefaultLayoutName}
	if m.index.Default != "" {
		candidates = append([]string{m.index.Default}, candidates...)
	}

	for _, name := range candidates {
		if g, err := m.LoadLayout(name); err == nil {
			m.setDefault(name, g)
			return nil
		}
	}

	layouts, err := m.ListLayouts()
	if err == nil && len(layouts) > 0 {
		if g, err := m.LoadLayout(layouts[0].LayoutID); err == nil {
			m.setDefault(layouts[0].LayoutID, g)
			return nil
		}
	}

	g, err := maze.ParseLayout(minimalLayout)
	if err != nil {
		return err
	}
	m.setDefault("default", g)
	return nil
}

func (m *Manager) setDefault(name string, g *maze.Grid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = name
	m.defaultGrid = g
}

// findFile returns the first existing file for name across the accepted extensions
func (m *Manager) findFile(name string) (string, bool) {
	for _, ext := range layoutExts {
		path := filepath.Join(m.layoutDir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// layoutName strips a known layout extension
func layoutName(name string) string {
	for _, ext := range layoutExts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

func hasLayoutExt(filename string) bool {
	return layoutName(filename) != filename
}
