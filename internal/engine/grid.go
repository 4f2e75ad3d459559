package engine

// BoardSize is the width and height of the city grid.
const BoardSize = 4

// Coord addresses one district.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// IsCorner reports whether (x, y) is one of the four corner districts.
func IsCorner(x, y int) bool {
	return (x == 0 || x == BoardSize-1) && (y == 0 || y == BoardSize-1)
}

// Capacity returns how many citizens a district may hold: 2 in corners,
// 1 elsewhere, 0 off the board.
func Capacity(x, y int) int {
	switch {
	case !InBounds(x, y):
		return 0
	case IsCorner(x, y):
		return 2
	default:
		return 1
	}
}

// Neighbors returns the Moore neighbourhood of (x, y) clipped to the board,
// row by row.
func Neighbors(x, y int) []Coord {
	var out []Coord
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if InBounds(nx, ny) {
				out = append(out, Coord{X: nx, Y: ny})
			}
		}
	}
	return out
}
