// Package placement holds the building placement rules on the two-level
// map grid: coarse tiles, each split into a LocalGrid x LocalGrid sub-grid.
package placement

import "skirmish.ai/internal/sim/world/logic/mathx"

type Result int

const (
	OK Result = iota
	OutOfBounds
	StraddlesTile
	Overlaps
)

func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case OutOfBounds:
		return "OUT_OF_BOUNDS"
	case StraddlesTile:
		return "STRADDLES_TILE"
	default:
		return "OVERLAPS"
	}
}

type Rect struct {
	X, Y, W, H float64
}

// Overlaps is a strict bounding-box test; touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (r Rect) Contains(x, y float64) bool {
	return x > r.X && x < r.X+r.W && y > r.Y && y < r.Y+r.H
}

func (r Rect) Center() (float64, float64) { return r.X + r.W/2, r.Y + r.H/2 }

type Grid struct {
	Tiles     int
	LocalGrid int
	CellSize  float64
}

// Cells is the number of placement cells along one map side.
func (g Grid) Cells() int { return g.Tiles * g.LocalGrid }

// Footprint returns the pixel rectangle covered by a w x h footprint whose
// top-left cell is (gx, gy).
func (g Grid) Footprint(gx, gy, w, h int) Rect {
	return Rect{
		X: float64(gx) * g.CellSize,
		Y: float64(gy) * g.CellSize,
		W: float64(w) * g.CellSize,
		H: float64(h) * g.CellSize,
	}
}

func (g Grid) InBounds(gx, gy, w, h int) bool {
	n := g.Cells()
	return gx >= 0 && gy >= 0 && w > 0 && h > 0 && gx+w <= n && gy+h <= n
}

// WithinOneTile reports whether the footprint stays inside a single tile's
// local sub-grid.
func (g Grid) WithinOneTile(gx, gy, w, h int) bool {
	lg := g.LocalGrid
	return mathx.FloorDiv(gx, lg) == mathx.FloorDiv(gx+w-1, lg) &&
		mathx.FloorDiv(gy, lg) == mathx.FloorDiv(gy+h-1, lg)
}

// Check validates a footprint against map bounds, the tile rule and the
// occupied rectangles (other structures and static map features).
func (g Grid) Check(gx, gy, w, h int, occupied []Rect) Result {
	if !g.InBounds(gx, gy, w, h) {
		return OutOfBounds
	}
	if !g.WithinOneTile(gx, gy, w, h) {
		return StraddlesTile
	}
	fp := g.Footprint(gx, gy, w, h)
	for _, o := range occupied {
		if fp.Overlaps(o) {
			return Overlaps
		}
	}
	return OK
}
