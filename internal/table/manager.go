package table

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"citykiller/internal/engine"
)

var ErrTableNotFound = errors.New("table not found")

// GameFactory builds the game for a new table id.
type GameFactory func(id string) *engine.Game

// Manager manages the live tables.
type Manager struct {
	mu      sync.Mutex
	tables  map[string]*Table
	newGame GameFactory
}

func NewManager(newGame GameFactory) *Manager {
	return &Manager{
		tables:  make(map[string]*Table),
		newGame: newGame,
	}
}

// Create deals a new table and registers it. A table whose setup fails is
// not registered.
func (m *Manager) Create() (*Table, []engine.Event, error) {
	id := uuid.NewString()
	t := newTable(id, m.newGame(id))

	events, err := t.Setup()
	if err != nil {
		return nil, nil, fmt.Errorf("table %s: %w", id, err)
	}

	m.mu.Lock()
	m.tables[id] = t
	m.mu.Unlock()
	return t, events, nil
}

// Get returns a table by id.
func (m *Manager) Get(id string) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Remove drops a table. Removing an unknown id is a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
}

// List returns the ids of live tables, oldest first.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tables := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Created.Equal(tables[j].Created) {
			return tables[i].ID < tables[j].ID
		}
		return tables[i].Created.Before(tables[j].Created)
	})

	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return ids
}
