package runs

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
)

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrInvalidRunID     = errors.New("invalid run ID")
)

// Manager handles run lifecycle
type Manager struct {
	runs        map[string]*service.Run
	persistence RunPersistence
	log         logrus.FieldLogger
	mu          sync.RWMutex
}

// NewManager creates a new in-memory run manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil, nil)
}

// NewManagerWithPersistence creates a run manager backed by persistence.
// A nil logger discards warnings.
func NewManagerWithPersistence(persistence RunPersistence, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Manager{
		runs:        make(map[string]*service.Run),
		persistence: persistence,
		log:         logger,
	}
}

// Create stores a new run, assigning a UUID when the ID is empty
func (m *Manager) Create(run *service.Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if !validID(run.ID) {
		return ErrInvalidRunID
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.LastAccessedAt.IsZero() {
		run.LastAccessedAt = run.CreatedAt
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(run.ID)
	if _, exists := m.runs[key]; exists {
		return ErrRunAlreadyExists
	}
	m.runs[key] = run

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.persistence.Save(run); err != nil {
			// Log error but don't fail the creation
			m.log.WithError(err).WithField("run", run.ID).Warn("Failed to persist run")
		}
	}

	return nil
}

// Get retrieves a run by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.RLock()
	run, exists := m.runs[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return run, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && validID(id) && m.persistence.Exists(id) {
		run, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted run: %w", err)
		}

		m.mu.Lock()
		m.runs[strings.ToLower(id)] = run
		m.mu.Unlock()

		return run, nil
	}

	return nil, ErrRunNotFound
}

// List returns all runs held in memory
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Run, 0, len(m.runs))
	for _, run := range m.runs {
		result = append(result, run)
	}
	return result
}

// Delete removes a run from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	_, inMemory := m.runs[key]
	delete(m.runs, key)

	if m.persistence != nil && validID(id) && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted run: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrRunNotFound
	}
	return nil
}

// UpdateLastAccessed updates the last accessed time for a run
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return ErrRunNotFound
	}
	run.LastAccessedAt = time.Now()

	if m.persistence != nil {
		if err := m.persistence.Save(run); err != nil {
			m.log.WithError(err).WithField("run", id).Warn("Failed to persist run after access update")
		}
	}
	return nil
}

// CleanupExpired removes runs that haven't been accessed in maxAge, from
// memory and persistence. It returns the number of runs removed.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, run := range m.runs {
		if !run.LastAccessedAt.Before(cutoff) {
			continue
		}
		delete(m.runs, key)
		removed++
		if m.persistence != nil && m.persistence.Exists(run.ID) {
			if err := m.persistence.Delete(run.ID); err != nil {
				m.log.WithError(err).WithField("run", run.ID).Warn("Failed to delete expired run")
			}
		}
	}

	if removed > 0 {
		m.log.WithField("removed", removed).Info("Expired runs cleaned up")
	}
	return removed
}

// Count returns the number of runs in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// LoadPersistedRuns loads all persisted runs into memory
func (m *Manager) LoadPersistedRuns() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted runs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, exists := m.runs[strings.ToLower(id)]; exists {
			continue
		}

		run, err := m.persistence.Load(id)
		if err != nil {
			m.log.WithError(err).WithField("run", id).Warn("Failed to load persisted run")
			continue
		}

		m.runs[strings.ToLower(id)] = run
		loaded++
	}

	if loaded > 0 {
		m.log.WithField("count", loaded).Info("Loaded persisted runs from storage")
	}
	return nil
}

// validID rejects IDs that could escape the runs directory
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.HasPrefix(id, ".")
}
