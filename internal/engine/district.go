package engine

// District is one cell of the board with everything standing on it.
type District struct {
	X             int               `json:"x"`
	Y             int               `json:"y"`
	Citizens      []CitizenPosition `json:"citizens"`
	Buildings     []Building        `json:"buildings"`
	IsHighlighted bool              `json:"is_highlighted"`
}

// Board is the 4x4 district grid, indexed [y][x].
type Board [BoardSize][BoardSize]District

// At returns the district at (x, y). It panics off the board.
func (b *Board) At(x, y int) *District {
	return &b[y][x]
}

// CreateDistricts groups positions by district. Citizens keep their relative
// input order; buildings start empty.
func CreateDistricts(positions []CitizenPosition) Board {
	var b Board
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			citizens := make([]CitizenPosition, 0, Capacity(x, y))
			for _, pos := range positions {
				if pos.DistrictX == x && pos.DistrictY == y {
					citizens = append(citizens, pos)
				}
			}
			b[y][x] = District{
				X:         x,
				Y:         y,
				Citizens:  citizens,
				Buildings: []Building{},
			}
		}
	}
	return b
}

// UpdateDistrictsWithBuildings returns a copy of b whose buildings are
// replaced by the ones standing on each district. b is not modified.
func UpdateDistrictsWithBuildings(b Board, buildings []Building) Board {
	var out Board
	for y := range b {
		for x := range b[y] {
			d := b[y][x]
			citizens := make([]CitizenPosition, len(d.Citizens))
			copy(citizens, d.Citizens)
			d.Citizens = citizens
			d.Buildings = make([]Building, 0, 2)
			for _, bl := range buildings {
				if bl.DistrictX == d.X && bl.DistrictY == d.Y {
					d.Buildings = append(d.Buildings, bl)
				}
			}
			out[y][x] = d
		}
	}
	return out
}

// WithHighlight returns a copy of b where exactly the given districts are
// highlighted.
func WithHighlight(b Board, coords ...Coord) Board {
	out := b
	for y := range out {
		for x := range out[y] {
			out[y][x].IsHighlighted = false
		}
	}
	for _, c := range coords {
		if InBounds(c.X, c.Y) {
			out[c.Y][c.X].IsHighlighted = true
		}
	}
	return out
}

// CanMoveCitizen reports whether the citizen at pos may move to
// (targetX, targetY) given every current position. The mover itself does
// not count against the target's capacity. Nothing is modified.
func CanMoveCitizen(pos CitizenPosition, targetX, targetY int, all []CitizenPosition) bool {
	if !InBounds(targetX, targetY) {
		return false
	}
	occupants := 0
	for _, other := range all {
		if other.DistrictX == targetX && other.DistrictY == targetY && other.CitizenID != pos.CitizenID {
			occupants++
		}
	}
	return occupants < Capacity(targetX, targetY)
}
