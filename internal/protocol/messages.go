package protocol

import "citykiller/internal/engine"

// Message types: Server → Client
const (
	MsgBoardState = "board_state"
	MsgEvent      = "event"
	MsgError      = "error"
)

// Message types: Client → Server. Board edits use the engine ActionType names.
const (
	MsgSelectDistrict = string(engine.ActionSelectDistrict)
	MsgMoveCitizen    = string(engine.ActionMoveCitizen)
	MsgReshuffle      = string(engine.ActionReshuffle)
	MsgRefresh        = "refresh"
)

// ActionMsg is the payload of a board edit.
type ActionMsg struct {
	X         int `json:"x"`
	Y         int `json:"y"`
	CitizenID int `json:"citizen_id,omitempty"`
}

// Action converts a client message into an engine action.
func (m ActionMsg) Action(typ string) engine.Action {
	return engine.Action{
		Type:      engine.ActionType(typ),
		X:         m.X,
		Y:         m.Y,
		CitizenID: m.CitizenID,
	}
}

// BoardState is sent to every viewer after the board changes.
type BoardState struct {
	TableID string                `json:"table_id"`
	Viewers int                   `json:"viewers"`
	View    engine.PublicViewData `json:"view"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}
