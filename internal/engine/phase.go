package engine

// GamePhase is the time of day on the board.
type GamePhase int

const (
	PhaseSetup GamePhase = iota // board not dealt yet
	PhaseDay
	PhaseNight
)

var phaseNames = map[GamePhase]string{
	PhaseSetup: "setup",
	PhaseDay:   "day",
	PhaseNight: "night",
}

func (p GamePhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Status is the lifecycle state of a game.
type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusFinished
)

var statusNames = map[Status]string{
	StatusWaiting:  "waiting",
	StatusPlaying:  "playing",
	StatusFinished: "finished",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}
