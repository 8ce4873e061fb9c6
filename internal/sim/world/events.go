package world

// EventKind names a transient visual event. The renderer owns all
// animation and fade timing; the kernel only reports what happened.
type EventKind string

const (
	EventAttack               EventKind = "attack"
	EventBurst                EventKind = "burst"
	EventExplosion            EventKind = "explosion"
	EventFloatingText         EventKind = "floating_text"
	EventConstructionBar      EventKind = "construction_bar"
	EventExpirationBar        EventKind = "expiration_bar"
	EventConstructionComplete EventKind = "construction_complete"
	EventObjectiveCaptured    EventKind = "objective_captured"
	EventUnitTrained          EventKind = "unit_trained"
)

// Event is one entry of the per-tick append-only event list.
type Event struct {
	Kind   EventKind
	Tick   uint64
	Source EntityID
	Target EntityID
	Player int
	Team   int

	X, Y   float64
	TX, TY float64

	Amount   float64
	Progress float64
	Text     string
}
