// Package steering holds straight-line movement helpers. There is no
// obstacle avoidance here; overlaps are resolved after the fact by the
// collision pass.
package steering

import "math"

// Step moves (x, y) toward (tx, ty) by at most maxStep along the direct line.
// Each axis is clamped to its remaining delta so the mover never overshoots.
// It returns the new position and the applied delta.
func Step(x, y, tx, ty, maxStep float64) (nx, ny, dx, dy float64) {
	ddx := tx - x
	ddy := ty - y
	dist := math.Hypot(ddx, ddy)
	if dist == 0 || maxStep <= 0 {
		return x, y, 0, 0
	}
	sx := ddx / dist * maxStep
	sy := ddy / dist * maxStep
	sx = clampAbs(sx, math.Abs(ddx))
	sy = clampAbs(sy, math.Abs(ddy))
	return x + sx, y + sy, sx, sy
}

func clampAbs(v, lim float64) float64 {
	if v > lim {
		return lim
	}
	if v < -lim {
		return -lim
	}
	return v
}

// Facing returns the heading of a delta, or prev when the delta is zero.
func Facing(prev, dx, dy float64) float64 {
	if dx == 0 && dy == 0 {
		return prev
	}
	return math.Atan2(dy, dx)
}

// Away returns the point dist away from (fromX, fromY), continuing the line
// from the threat through (x, y).
func Away(x, y, fromX, fromY, dist float64) (float64, float64) {
	dx := x - fromX
	dy := y - fromY
	d := math.Hypot(dx, dy)
	if d == 0 {
		return x + dist, y
	}
	return x + dx/d*dist, y + dy/d*dist
}

type Point struct {
	X, Y float64
}

// Corners returns the four anchor points just outside the corners of a
// rectangle, pushed out by pad. Order: top-left, top-right, bottom-right,
// bottom-left.
func Corners(x, y, w, h, pad float64) [4]Point {
	return [4]Point{
		{X: x - pad, Y: y - pad},
		{X: x + w + pad, Y: y - pad},
		{X: x + w + pad, Y: y + h + pad},
		{X: x - pad, Y: y + h + pad},
	}
}
