package world

import "math"

// systemCollision separates every overlapping pair of bodies along the
// centre-to-centre axis of least penetration.
func (w *World) systemCollision() {
	var bodies []*Entity
	for _, e := range w.liveEntities() {
		if e.IsGarrisoned() || e.Class == ClassNeutral {
			continue
		}
		bodies = append(bodies, e)
	}
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if a.IsStructure() && b.IsStructure() {
				continue
			}
			if buildsOn(a, b) || buildsOn(b, a) {
				continue
			}
			w.separate(a, b)
		}
	}
}

// buildsOn reports whether worker is assigned to the construction site.
func buildsOn(worker, site *Entity) bool {
	return site.Construction != nil && worker.Build != nil && worker.Build.Target == site.ID
}

// separate pushes the pair apart by the full penetration on the shallower
// axis. Structures stay on their placement footprint, so a unit touching a
// structure takes the whole push; two units split it evenly.
func (w *World) separate(a, b *Entity) {
	if !a.Bounds().Overlaps(b.Bounds()) {
		return
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	px := (a.W+b.W)/2 - math.Abs(dx)
	py := (a.H+b.H)/2 - math.Abs(dy)
	if px <= 0 || py <= 0 {
		return
	}
	// Exact overlap: the jitter only picks the direction, the penetration
	// is measured from the real distance.
	if dx == 0 && dy == 0 {
		j := w.cfg.CollisionJitter
		dx = (w.rng.Float64()*2 - 1) * j
		dy = (w.rng.Float64()*2 - 1) * j
		if dx == 0 && dy == 0 {
			dx = j
		}
	}

	shareA, shareB := 0.5, 0.5
	switch {
	case a.IsStructure():
		shareA, shareB = 0, 1
	case b.IsStructure():
		shareA, shareB = 1, 0
	}
	if px < py || (px == py && math.Abs(dx) > math.Abs(dy)) {
		s := math.Copysign(px, dx)
		a.X -= s * shareA
		b.X += s * shareB
	} else {
		s := math.Copysign(py, dy)
		a.Y -= s * shareA
		b.Y += s * shareB
	}
	if !a.IsStructure() {
		a.X, a.Y = w.clampToMap(a, a.X, a.Y)
	}
	if !b.IsStructure() {
		b.X, b.Y = w.clampToMap(b, b.X, b.Y)
	}
}
