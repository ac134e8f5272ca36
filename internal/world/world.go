package world

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrSelfConnection is returned when an entity would be connected to itself.
var ErrSelfConnection = errors.New("cannot connect an entity to itself")

// DuplicateIDError is returned when two entities share an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate entity id %q", e.ID)
}

// IntegrityError describes one violation found by World.Validate.
type IntegrityError struct {
	EntityID string
	TargetID string
	Message  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("entity %q -> %q: %s", e.EntityID, e.TargetID, e.Message)
}

// World is an ordered, read-only collection of entities.
//
// Iteration order is the order entities were supplied to New and is stable
// across repeated passes.
type World struct {
	entities []*Entity
	index    map[string]*Entity
}

// New creates a World from entities in the given order.
// Returns DuplicateIDError if two entities share an id.
//
// The slice is copied; the entities themselves are shared and must not be
// mutated afterwards.
func New(entities ...*Entity) (*World, error) {
	w := &World{
		entities: make([]*Entity, 0, len(entities)),
		index:    make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("nil entity at position %d", len(w.entities))
		}
		if _, dup := w.index[e.ID]; dup {
			return nil, &DuplicateIDError{ID: e.ID}
		}
		w.entities = append(w.entities, e)
		w.index[e.ID] = e
	}
	return w, nil
}

// Entities returns the entities in stored order.
// Callers must treat the returned slice as read-only.
func (w *World) Entities() []*Entity {
	return w.entities
}

// Len returns the number of entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Lookup resolves an entity id.
func (w *World) Lookup(id string) (*Entity, bool) {
	e, ok := w.index[id]
	return e, ok
}

// Validate checks the connection invariants of every entity and reports all
// violations combined into a single error:
//   - no entity lists itself
//   - every listed id resolves to an entity in the world
//   - every link is listed by both endpoints
//
// Returns nil for a consistent world. Use multierr.Errors to split the result.
func (w *World) Validate() error {
	var errs error
	for _, e := range w.entities {
		for _, id := range e.Connections {
			if id == e.ID {
				errs = multierr.Append(errs, &IntegrityError{EntityID: e.ID, TargetID: id, Message: ErrSelfConnection.Error()})
				continue
			}
			other, ok := w.index[id]
			if !ok {
				errs = multierr.Append(errs, &IntegrityError{EntityID: e.ID, TargetID: id, Message: "connection references unknown entity"})
				continue
			}
			if !other.ConnectedTo(e.ID) {
				errs = multierr.Append(errs, &IntegrityError{EntityID: e.ID, TargetID: id, Message: "connection is not symmetric"})
			}
		}
	}
	return errs
}
