// Package fog holds the per-team fog-of-war grid.
package fog

import "math"

type Cell uint8

const (
	Unexplored Cell = iota
	Explored
	Visible
)

func (c Cell) String() string {
	switch c {
	case Explored:
		return "EXPLORED"
	case Visible:
		return "VISIBLE"
	default:
		return "UNEXPLORED"
	}
}

// Grid is a fixed-size cell grid covering the map. Cells only move forward
// (Unexplored -> Explored/Visible) except for the per-tick Visible -> Explored
// demotion done by BeginTick.
type Grid struct {
	CellSize float64
	Cols     int
	Rows     int

	cells []Cell
}

func NewGrid(width, height, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
		cells:    make([]Cell, cols*rows),
	}
}

// BeginTick demotes every Visible cell to Explored.
func (g *Grid) BeginTick() {
	for i, c := range g.cells {
		if c == Visible {
			g.cells[i] = Explored
		}
	}
}

// StampDisc marks Visible every cell whose centre lies within r of (x, y).
func (g *Grid) StampDisc(x, y, r float64) {
	if r <= 0 {
		return
	}
	c0, r0 := g.cellOf(x-r, y-r)
	c1, r1 := g.cellOf(x+r, y+r)
	rr := r * r
	for row := r0; row <= r1; row++ {
		cy := (float64(row) + 0.5) * g.CellSize
		dy := cy - y
		for col := c0; col <= c1; col++ {
			cx := (float64(col) + 0.5) * g.CellSize
			dx := cx - x
			if dx*dx+dy*dy <= rr {
				g.cells[row*g.Cols+col] = Visible
			}
		}
	}
}

// StampRect marks Visible every cell whose centre lies inside the rectangle
// with top-left (x, y) and size w x h.
func (g *Grid) StampRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	c0, r0 := g.cellOf(x, y)
	c1, r1 := g.cellOf(x+w, y+h)
	for row := r0; row <= r1; row++ {
		cy := (float64(row) + 0.5) * g.CellSize
		if cy < y || cy > y+h {
			continue
		}
		for col := c0; col <= c1; col++ {
			cx := (float64(col) + 0.5) * g.CellSize
			if cx < x || cx > x+w {
				continue
			}
			g.cells[row*g.Cols+col] = Visible
		}
	}
}

// At returns the state of the cell containing (x, y). Points off the map
// read as Unexplored.
func (g *Grid) At(x, y float64) Cell {
	if x < 0 || y < 0 {
		return Unexplored
	}
	col := int(x / g.CellSize)
	row := int(y / g.CellSize)
	if col >= g.Cols || row >= g.Rows {
		return Unexplored
	}
	return g.cells[row*g.Cols+col]
}

func (g *Grid) IsVisible(x, y float64) bool { return g.At(x, y) == Visible }

func (g *Grid) IsExplored(x, y float64) bool { return g.At(x, y) != Unexplored }

func (g *Grid) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return Unexplored
	}
	return g.cells[row*g.Cols+col]
}

// Cells returns a copy of the grid in row-major order.
func (g *Grid) Cells() []byte {
	out := make([]byte, len(g.cells))
	for i, c := range g.cells {
		out[i] = byte(c)
	}
	return out
}

func (g *Grid) Counts() (unexplored, explored, visible int) {
	for _, c := range g.cells {
		switch c {
		case Visible:
			visible++
		case Explored:
			explored++
		default:
			unexplored++
		}
	}
	return
}

// cellOf clamps (x, y) onto the grid and returns its column and row.
func (g *Grid) cellOf(x, y float64) (int, int) {
	col := int(math.Floor(x / g.CellSize))
	row := int(math.Floor(y / g.CellSize))
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	if col >= g.Cols {
		col = g.Cols - 1
	}
	if row >= g.Rows {
		row = g.Rows - 1
	}
	return col, row
}
