package eval

import (
	"errors"
	"fmt"
)

// UnboundVariableError is returned when a formula references a variable
// with no current binding.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

// DanglingReferenceError is returned when an entity lists a connection id
// that has no entity in the world. It signals a broken world, not a bad
// formula.
type DanglingReferenceError struct {
	From string // id of the entity holding the reference
	ID   string // the unresolved connection id
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("entity %q connects to unknown entity %q", e.From, e.ID)
}

// StepsExceededError is returned when a Solve call exceeds its step budget.
type StepsExceededError struct {
	Steps int // steps taken, including the one that tripped the limit
	Limit int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("evaluation exceeded max steps: %d steps > %d limit", e.Steps, e.Limit)
}

// IsUnboundVariable returns true if err is or wraps an UnboundVariableError.
func IsUnboundVariable(err error) bool {
	var ue *UnboundVariableError
	return errors.As(err, &ue)
}

// IsDanglingReference returns true if err is or wraps a
// DanglingReferenceError.
func IsDanglingReference(err error) bool {
	var de *DanglingReferenceError
	return errors.As(err, &de)
}

// IsStepsExceeded returns true if err is or wraps a StepsExceededError.
func IsStepsExceeded(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
