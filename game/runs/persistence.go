package runs

import (
	"time"

	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
)

// RunPersistence defines the interface for persisting runs
type RunPersistence interface {
	// Save persists a run to storage
	Save(run *service.Run) error

	// Load retrieves a run from storage by ID
	Load(id string) (*service.Run, error)

	// Delete removes a run from storage
	Delete(id string) error

	// ListAll returns all persisted run IDs
	ListAll() ([]string, error)

	// Exists checks if a run exists in storage
	Exists(id string) bool
}

// PersistedRunData represents the JSON structure for persisted runs
type PersistedRunData struct {
	ID             string         `json:"id"`
	LayoutID       string         `json:"layout_id"`
	Layout         []string       `json:"layout"`
	Heuristic      string         `json:"heuristic"`
	MaxExpansions  int            `json:"max_expansions,omitempty"`
	Result         *search.Result `json:"result"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
}
