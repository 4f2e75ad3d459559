package engine

import "time"

// ActionType identifies board edits sent to Game.Apply.
type ActionType string

const (
	ActionSelectDistrict ActionType = "select_district"
	ActionMoveCitizen    ActionType = "move_citizen"
	ActionReshuffle      ActionType = "reshuffle"
)

// Player action kinds. They can be stored in the history but Apply does not
// play them.
const (
	ActionQuestion    ActionType = "question"
	ActionKill        ActionType = "kill"
	ActionScare       ActionType = "scare"
	ActionUseBuilding ActionType = "use_building"
)

// Action is a board edit request.
type Action struct {
	Type ActionType `json:"type"`
	// select_district: X, Y
	// move_citizen: CitizenID, X, Y (target district)
	X         int `json:"x"`
	Y         int `json:"y"`
	CitizenID int `json:"citizen_id,omitempty"`
}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventSetup              EventType = "setup"
	EventPlacementShortfall EventType = "placement_shortfall"
	EventDistrictSelected   EventType = "district_selected"
	EventCitizenMoved       EventType = "citizen_moved"
)

// Event is emitted by the engine after state changes.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// GameAction is one entry of the game history.
type GameAction struct {
	ID        int        `json:"id"`
	PlayerID  string     `json:"player_id,omitempty"`
	Type      ActionType `json:"type"`
	CitizenID int        `json:"citizen_id,omitempty"`
	From      Coord      `json:"from"`
	To        Coord      `json:"to"`
	Timestamp time.Time  `json:"timestamp"`
}
