package world

import (
	"fmt"
	"slices"
)

// Class is the closed set of entity kinds.
type Class string

const (
	ClassBody         Class = "Body"
	ClassForceElement Class = "ForceElement"
	ClassConstraint   Class = "Constraint"
	ClassConnection   Class = "Connection"
	ClassJoint        Class = "Joint"
)

// Classes lists every valid class in declaration order.
var Classes = []Class{ClassBody, ClassForceElement, ClassConstraint, ClassConnection, ClassJoint}

// ConnectorClasses are the classes used for generated link entities.
var ConnectorClasses = []Class{ClassForceElement, ClassConstraint, ClassConnection, ClassJoint}

// ParseClass validates a class name.
// Returns error if name is not one of the five classes.
func ParseClass(name string) (Class, error) {
	c := Class(name)
	if slices.Contains(Classes, c) {
		return c, nil
	}
	return "", fmt.Errorf("invalid class %q: must be one of %v", name, Classes)
}

// Entity is a single object in a world.
//
// Entities are created by a Builder (or decoded from a document) and are
// read-only afterwards. Queries never mutate them.
type Entity struct {
	ID          string
	Class       Class
	Type        string
	Name        string
	Parameters  Params
	Connections []string
}

// Param returns the parameter at index i.
// An out-of-range index yields (nil, false), never an error.
func (e *Entity) Param(i int) (Param, bool) {
	if i < 0 || i >= len(e.Parameters) {
		return nil, false
	}
	return e.Parameters[i], true
}

// ConnectedTo reports whether id appears in e's connection list.
func (e *Entity) ConnectedTo(id string) bool {
	return slices.Contains(e.Connections, id)
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s(%s)", e.Class, e.ID)
}
