package table

import (
	"sync"
	"time"

	"citykiller/internal/engine"
)

// Table is one live board. All access to its game goes through the table
// lock.
type Table struct {
	mu      sync.Mutex
	ID      string
	Created time.Time
	game    *engine.Game
}

func newTable(id string, game *engine.Game) *Table {
	return &Table{ID: id, Created: time.Now(), game: game}
}

// Setup deals a fresh board.
func (t *Table) Setup() ([]engine.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Setup()
}

// Apply applies a board edit and returns the events with the resulting view.
// On error the view is the unchanged board.
func (t *Table) Apply(action engine.Action) ([]engine.Event, engine.PublicViewData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	events, err := t.game.Apply(action)
	return events, t.game.PublicView(), err
}

// View returns the board as shown on the display.
func (t *Table) View() engine.PublicViewData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.PublicView()
}

// Citizens returns the classified deck, filtered to group unless group is empty.
func (t *Table) Citizens(group engine.Group) []engine.Citizen {
	t.mu.Lock()
	defer t.mu.Unlock()

	if group == "" {
		out := make([]engine.Citizen, len(t.game.Citizens))
		copy(out, t.game.Citizens)
		return out
	}
	return engine.CitizensByGroup(t.game.Citizens, group)
}

// GroupCounts counts the classified deck per group.
func (t *Table) GroupCounts() map[engine.Group]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return engine.GroupCounts(t.game.Citizens)
}
