// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events collects the audit trail the settlement engines emit.
// Mutating operations always emit an event describing the attempted state
// change, whether or not the underlying storage actually mutated; events
// emitted by a failed call are rolled back together with the state.
package events

import "github.com/covermutual/sentinel/sentinel"

// Event is one audit record.
type Event struct {
	Engine sentinel.Address
	Name   string
	Args   []any
}

// Emitter accumulates events for a call session.
type Emitter struct {
	recs []Event
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Bind returns a view of the emitter attributed to the given engine address.
func (e *Emitter) Bind(engine sentinel.Address) *Bound {
	return &Bound{emitter: e, engine: engine}
}

// Mark returns a marker for the current event count, to be passed to RevertTo.
func (e *Emitter) Mark() int {
	return len(e.recs)
}

// RevertTo discards events emitted after the marker.
func (e *Emitter) RevertTo(mark int) {
	if mark < len(e.recs) {
		e.recs = e.recs[:mark]
	}
}

// Events returns all collected events in emission order.
func (e *Emitter) Events() []Event {
	return e.recs
}

// Named returns collected events with the given name, in emission order.
func (e *Emitter) Named(name string) []Event {
	var out []Event
	for _, rec := range e.recs {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

// Reset drops all collected events.
func (e *Emitter) Reset() {
	e.recs = e.recs[:0]
}

// Bound is an emitter view attributed to one engine.
type Bound struct {
	emitter *Emitter
	engine  sentinel.Address
}

// Emit appends an event.
func (b *Bound) Emit(name string, args ...any) {
	b.emitter.recs = append(b.emitter.recs, Event{
		Engine: b.engine,
		Name:   name,
		Args:   args,
	})
}
