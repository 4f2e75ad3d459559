package engine

// GameConfig holds configuration for setting up a new game.
type GameConfig struct {
	Placement      PlacementConfig
	Groups         GroupTable
	DetectiveStart Coord // where the detective token stands after setup
	Strict         bool  // fail setup instead of accepting a partial placement
}

// DefaultConfig returns the base-game setup: default placement, the built-in
// job table and the detective on (1,1).
func DefaultConfig() GameConfig {
	return GameConfig{
		Placement:      DefaultPlacementConfig(),
		Groups:         DefaultGroupTable(),
		DetectiveStart: Coord{X: 1, Y: 1},
	}
}
