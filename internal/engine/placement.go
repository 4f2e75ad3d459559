package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// PlacementConfig bounds the random placement loops.
type PlacementConfig struct {
	MaxCitizens      int // citizens eligible for placement, taken from the front of the deck
	CitizenAttempts  int // samples per citizen before it is left off the board
	BuildingAttempts int // samples per building before a collision is accepted
	BuildingsPerType int
	SubPositions     int // slots a building may take within its district
}

// DefaultPlacementConfig returns the base-game placement rules.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		MaxCitizens:      20,
		CitizenAttempts:  100,
		BuildingAttempts: 100,
		BuildingsPerType: 2,
		SubPositions:     3,
	}
}

func (c PlacementConfig) withDefaults() PlacementConfig {
	d := DefaultPlacementConfig()
	if c.MaxCitizens <= 0 {
		c.MaxCitizens = d.MaxCitizens
	}
	if c.CitizenAttempts <= 0 {
		c.CitizenAttempts = d.CitizenAttempts
	}
	if c.BuildingAttempts <= 0 {
		c.BuildingAttempts = d.BuildingAttempts
	}
	if c.BuildingsPerType <= 0 {
		c.BuildingsPerType = d.BuildingsPerType
	}
	if c.SubPositions <= 0 {
		c.SubPositions = d.SubPositions
	}
	return c
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// PlacementError lists what could not be placed within the attempt budget.
// It matches ErrPlacementExhausted with errors.Is.
type PlacementError struct {
	Citizens  []int    // citizen ids left off the board
	Buildings []string // building ids accepted on a district that already had that type
}

func (e *PlacementError) Error() string {
	var parts []string
	if len(e.Citizens) > 0 {
		parts = append(parts, fmt.Sprintf("%d citizen(s) unplaced %v", len(e.Citizens), e.Citizens))
	}
	if len(e.Buildings) > 0 {
		parts = append(parts, fmt.Sprintf("%d building(s) colliding %v", len(e.Buildings), e.Buildings))
	}
	return ErrPlacementExhausted.Error() + ": " + strings.Join(parts, ", ")
}

func (e *PlacementError) Unwrap() error {
	return ErrPlacementExhausted
}

// Placer draws building and citizen placements from one random source.
// It is safe for concurrent use.
type Placer struct {
	mu  sync.Mutex
	rng *rand.Rand
	cfg PlacementConfig
}

// NewPlacer creates a Placer. Non-positive config fields take their defaults.
func NewPlacer(rng *rand.Rand, cfg PlacementConfig) *Placer {
	return &Placer{rng: rng, cfg: cfg.withDefaults()}
}

// Config returns the effective placement config.
func (p *Placer) Config() PlacementConfig {
	return p.cfg
}

// GenerateBuildings places BuildingsPerType buildings of every type. A
// building whose samples all collide with the same type keeps its last sample.
func (p *Placer) GenerateBuildings() []Building {
	buildings, _ := p.generateBuildings()
	return buildings
}

// GenerateBuildingsStrict is GenerateBuildings that also reports collisions.
func (p *Placer) GenerateBuildingsStrict() ([]Building, error) {
	buildings, collided := p.generateBuildings()
	if len(collided) > 0 {
		return buildings, &PlacementError{Buildings: collided}
	}
	return buildings, nil
}

func (p *Placer) generateBuildings() ([]Building, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := AllBuildingTypes()
	buildings := make([]Building, 0, len(types)*p.cfg.BuildingsPerType)
	var collided []string

	for ti, typ := range types {
		for i := 0; i < p.cfg.BuildingsPerType; i++ {
			id := fmt.Sprintf("building-%d", ti*p.cfg.BuildingsPerType+i+1)

			var x, y, sub int
			clash := true
			for attempt := 0; clash && attempt < p.cfg.BuildingAttempts; attempt++ {
				x = p.rng.IntN(BoardSize)
				y = p.rng.IntN(BoardSize)
				sub = p.rng.IntN(p.cfg.SubPositions) + 1
				clash = hasBuilding(buildings, typ, x, y)
			}
			if clash {
				collided = append(collided, id)
			}

			buildings = append(buildings, Building{
				ID:          id,
				Type:        typ,
				DistrictX:   x,
				DistrictY:   y,
				SubPosition: sub,
			})
		}
	}
	return buildings, collided
}

func hasBuilding(buildings []Building, typ BuildingType, x, y int) bool {
	for _, b := range buildings {
		if b.Type == typ && b.DistrictX == x && b.DistrictY == y {
			return true
		}
	}
	return false
}

// PlaceCitizens places the first MaxCitizens citizens on districts with free
// capacity. A citizen that finds no room within CitizenAttempts samples is
// left out. Output follows input order.
func (p *Placer) PlaceCitizens(citizens []Citizen) []CitizenPosition {
	positions, _ := p.placeCitizens(citizens)
	return positions
}

// PlaceCitizensStrict is PlaceCitizens that also reports citizens left out.
func (p *Placer) PlaceCitizensStrict(citizens []Citizen) ([]CitizenPosition, error) {
	positions, unplaced := p.placeCitizens(citizens)
	if len(unplaced) > 0 {
		return positions, &PlacementError{Citizens: unplaced}
	}
	return positions, nil
}

func (p *Placer) placeCitizens(citizens []Citizen) ([]CitizenPosition, []int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	eligible := citizens
	if len(eligible) > p.cfg.MaxCitizens {
		eligible = eligible[:p.cfg.MaxCitizens]
	}

	var occupancy [BoardSize][BoardSize]int
	positions := make([]CitizenPosition, 0, len(eligible))
	var unplaced []int

	for _, c := range eligible {
		placed := false
		for attempt := 0; !placed && attempt < p.cfg.CitizenAttempts; attempt++ {
			x := p.rng.IntN(BoardSize)
			y := p.rng.IntN(BoardSize)
			if occupancy[y][x] >= Capacity(x, y) {
				continue
			}
			occupancy[y][x]++
			positions = append(positions, CitizenPosition{
				CitizenID:   c.ID,
				DistrictX:   x,
				DistrictY:   y,
				SubPosition: occupancy[y][x],
			})
			placed = true
		}
		if !placed {
			unplaced = append(unplaced, c.ID)
		}
	}
	return positions, unplaced
}
