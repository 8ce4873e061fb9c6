package world

import "strconv"

// EntityID is a stable handle into the entity arena: the low 32 bits are
// slot+1 and the high 32 bits the slot generation. A handle whose slot has
// been recycled resolves to nil. Zero is "no entity".
type EntityID uint64

func makeEntityID(slot int, gen uint32) EntityID {
	return EntityID(uint64(gen)<<32 | uint64(uint32(slot+1)))
}

func (id EntityID) slot() int { return int(uint32(id)) - 1 }

func (id EntityID) gen() uint32 { return uint32(id >> 32) }

func (id EntityID) String() string {
	if id == 0 {
		return "none"
	}
	return "E" + strconv.Itoa(id.slot()) + "." + strconv.FormatUint(uint64(id.gen()), 10)
}

type arenaSlot struct {
	gen uint32
	e   *Entity
}

// arena is a slot map of entities that also remembers insertion order, which
// is the per-tick update order.
type arena struct {
	slots []arenaSlot
	free  []int
	order []EntityID
}

func (a *arena) insert(e *Entity) EntityID {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = len(a.slots)
		a.slots = append(a.slots, arenaSlot{})
	}
	id := makeEntityID(idx, a.slots[idx].gen)
	a.slots[idx].e = e
	e.ID = id
	a.order = append(a.order, id)
	return id
}

func (a *arena) get(id EntityID) *Entity {
	if id == 0 {
		return nil
	}
	idx := id.slot()
	if idx < 0 || idx >= len(a.slots) {
		return nil
	}
	s := a.slots[idx]
	if s.gen != id.gen() {
		return nil
	}
	return s.e
}

// remove frees the slot and bumps its generation so old handles go stale.
// The order list is compacted separately by compact.
func (a *arena) remove(id EntityID) {
	if a.get(id) == nil {
		return
	}
	idx := id.slot()
	a.slots[idx].e = nil
	a.slots[idx].gen++
	a.free = append(a.free, idx)
}

func (a *arena) compact() {
	out := a.order[:0]
	for _, id := range a.order {
		if a.get(id) != nil {
			out = append(out, id)
		}
	}
	a.order = out
}

// all returns the entities in insertion order. The returned slice is a copy
// so callers may insert while iterating.
func (a *arena) all() []*Entity {
	out := make([]*Entity, 0, len(a.order))
	for _, id := range a.order {
		if e := a.get(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (a *arena) len() int { return len(a.order) }
