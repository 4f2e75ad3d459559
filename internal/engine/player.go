package engine

// Role is a player's side in the detective versus killer game.
type Role string

const (
	RoleDetective Role = "detective"
	RoleKiller    Role = "killer"
)

// Player is a seat at the table. Players are recorded with the game but no
// rule in this package acts on them.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Killer is the hidden identity chosen by the killer player.
type Killer struct {
	CitizenID int    `json:"citizen_id"`
	Motive    string `json:"motive"`
	AllyGroup Group  `json:"ally_group"`
}
