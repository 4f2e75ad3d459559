package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrPlacementExhausted = errors.New("placement attempts exhausted")
	ErrCitizenNotFound    = errors.New("citizen not found")
	ErrCitizenNotPlaced   = errors.New("citizen is not on the board")
	ErrOutOfBounds        = errors.New("district out of bounds")
	ErrDistrictFull       = errors.New("district is full")
	ErrInvalidAction      = errors.New("invalid action")
	ErrWrongPhase         = errors.New("wrong phase for this action")
)

// Game holds one table's board and the deck it was dealt from.
type Game struct {
	ID        string    `json:"id"`
	Status    Status    `json:"-"`
	Phase     GamePhase `json:"-"`
	DayNumber int       `json:"day_number"`

	Citizens  []Citizen         `json:"citizens"` // classified deck
	Positions []CitizenPosition `json:"positions"`
	Buildings []Building        `json:"buildings"`
	Board     Board             `json:"board"`

	Players   []Player     `json:"players"`
	Killer    *Killer      `json:"killer,omitempty"` // never shown on the display
	Detective Coord        `json:"detective"`
	Selected  *Coord       `json:"selected,omitempty"`
	History   []GameAction `json:"history"`

	Config GameConfig `json:"-"`

	deck   []Citizen
	placer *Placer
	now    func() time.Time
}

// NewGame creates a game over the given deck. The board is empty until Setup.
func NewGame(id string, citizens []Citizen, config GameConfig, placer *Placer) *Game {
	deck := make([]Citizen, len(citizens))
	copy(deck, citizens)
	return &Game{
		ID:     id,
		Status: StatusWaiting,
		Phase:  PhaseSetup,
		Config: config,
		deck:   deck,
		placer: placer,
		now:    time.Now,
	}
}

// Setup classifies the deck, deals buildings and citizens and builds the
// board. With Config.Strict an exhausted placement fails and leaves the game
// untouched.
func (g *Game) Setup() ([]Event, error) {
	citizens := AssignGroups(g.deck, g.Config.Groups)

	var (
		buildings []Building
		positions []CitizenPosition
		err       error
	)
	if g.Config.Strict {
		if buildings, err = g.placer.GenerateBuildingsStrict(); err != nil {
			return nil, fmt.Errorf("setup buildings: %w", err)
		}
		if positions, err = g.placer.PlaceCitizensStrict(citizens); err != nil {
			return nil, fmt.Errorf("setup citizens: %w", err)
		}
	} else {
		buildings = g.placer.GenerateBuildings()
		positions = g.placer.PlaceCitizens(citizens)
	}

	g.Citizens = citizens
	g.Buildings = buildings
	g.Positions = positions
	g.Board = UpdateDistrictsWithBuildings(CreateDistricts(positions), buildings)
	g.Detective = g.Config.DetectiveStart
	g.Selected = nil
	g.History = nil
	g.Status = StatusPlaying
	g.Phase = PhaseDay
	g.DayNumber = 1

	events := []Event{
		{Type: EventSetup, Data: map[string]interface{}{
			"buildings": len(buildings),
			"citizens":  len(positions),
			"deck":      len(citizens),
		}},
	}

	eligible := min(len(citizens), g.placer.Config().MaxCitizens)
	if len(positions) < eligible {
		events = append(events, Event{Type: EventPlacementShortfall, Data: map[string]interface{}{
			"placed":   len(positions),
			"eligible": eligible,
		}})
	}
	return events, nil
}

// Apply is the single entry point for board edits.
func (g *Game) Apply(action Action) ([]Event, error) {
	if action.Type == ActionReshuffle {
		return g.Setup()
	}
	if g.Status != StatusPlaying {
		return nil, ErrWrongPhase
	}

	switch action.Type {
	case ActionSelectDistrict:
		return g.applySelect(action)
	case ActionMoveCitizen:
		return g.applyMove(action)
	default:
		return nil, ErrInvalidAction
	}
}

func (g *Game) applySelect(action Action) ([]Event, error) {
	if !InBounds(action.X, action.Y) {
		return nil, ErrOutOfBounds
	}
	sel := Coord{X: action.X, Y: action.Y}
	g.Selected = &sel
	g.Board = g.highlighted(g.Board)

	return []Event{
		{Type: EventDistrictSelected, Data: map[string]interface{}{
			"x":         sel.X,
			"y":         sel.Y,
			"citizens":  len(g.Board[sel.Y][sel.X].Citizens),
			"buildings": len(g.Board[sel.Y][sel.X].Buildings),
			"neighbors": Neighbors(sel.X, sel.Y),
		}},
	}, nil
}

func (g *Game) applyMove(action Action) ([]Event, error) {
	idx := slices.IndexFunc(g.Positions, func(p CitizenPosition) bool {
		return p.CitizenID == action.CitizenID
	})
	if idx < 0 {
		if _, ok := CitizenByID(g.Citizens, action.CitizenID); ok {
			return nil, ErrCitizenNotPlaced
		}
		return nil, ErrCitizenNotFound
	}

	pos := g.Positions[idx]
	if !InBounds(action.X, action.Y) {
		return nil, ErrOutOfBounds
	}
	if pos.DistrictX == action.X && pos.DistrictY == action.Y {
		return nil, nil
	}
	if !CanMoveCitizen(pos, action.X, action.Y, g.Positions) {
		return nil, ErrDistrictFull
	}

	positions := slices.Clone(g.Positions)
	positions[idx].DistrictX = action.X
	positions[idx].DistrictY = action.Y
	positions[idx].SubPosition = freeSlot(positions, action.X, action.Y, pos.CitizenID)

	g.Positions = positions
	g.Board = g.highlighted(UpdateDistrictsWithBuildings(CreateDistricts(positions), g.Buildings))

	entry := GameAction{
		ID:        len(g.History) + 1,
		Type:      ActionMoveCitizen,
		CitizenID: pos.CitizenID,
		From:      Coord{X: pos.DistrictX, Y: pos.DistrictY},
		To:        Coord{X: action.X, Y: action.Y},
		Timestamp: g.now(),
	}
	g.History = append(g.History, entry)

	return []Event{
		{Type: EventCitizenMoved, Data: map[string]interface{}{
			"citizen_id":   pos.CitizenID,
			"from":         entry.From,
			"to":           entry.To,
			"sub_position": positions[idx].SubPosition,
		}},
	}, nil
}

// highlighted marks the selected district and its neighbours on b.
func (g *Game) highlighted(b Board) Board {
	if g.Selected == nil {
		return WithHighlight(b)
	}
	coords := append([]Coord{*g.Selected}, Neighbors(g.Selected.X, g.Selected.Y)...)
	return WithHighlight(b, coords...)
}

// freeSlot returns the lowest sub-position in (x, y) not taken by another citizen.
func freeSlot(positions []CitizenPosition, x, y, mover int) int {
	used := map[int]bool{}
	for _, p := range positions {
		if p.DistrictX == x && p.DistrictY == y && p.CitizenID != mover {
			used[p.SubPosition] = true
		}
	}
	slot := 1
	for used[slot] {
		slot++
	}
	return slot
}

// PlacedCitizens returns the cards of citizens on the board, in placement order.
func (g *Game) PlacedCitizens() []Citizen {
	out := make([]Citizen, 0, len(g.Positions))
	for _, p := range g.Positions {
		if c, ok := CitizenByID(g.Citizens, p.CitizenID); ok {
			out = append(out, c)
		}
	}
	return out
}

// PublicViewData is the board as shown on the table display.
type PublicViewData struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Phase       string     `json:"phase"`
	DayNumber   int        `json:"day_number"`
	Board       Board      `json:"board"`
	Buildings   []Building `json:"buildings"`
	Citizens    []Citizen  `json:"citizens"` // cards of placed citizens
	Players     []Player   `json:"players"`
	Detective   Coord      `json:"detective"`
	Selected    *Coord     `json:"selected,omitempty"`
	Unplaced    int        `json:"unplaced"`
	HistorySize int        `json:"history_size"`
}

// PublicView returns the game state visible on the display.
func (g *Game) PublicView() PublicViewData {
	eligible := 0
	if g.placer != nil {
		eligible = min(len(g.Citizens), g.placer.Config().MaxCitizens)
	}
	return PublicViewData{
		ID:          g.ID,
		Status:      g.Status.String(),
		Phase:       g.Phase.String(),
		DayNumber:   g.DayNumber,
		Board:       g.Board,
		Buildings:   g.Buildings,
		Citizens:    g.PlacedCitizens(),
		Players:     g.Players,
		Detective:   g.Detective,
		Selected:    g.Selected,
		Unplaced:    max(0, eligible-len(g.Positions)),
		HistorySize: len(g.History),
	}
}
