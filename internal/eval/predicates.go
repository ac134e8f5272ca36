package eval

import (
	"github.com/roach88/simquery/internal/formula"
	"github.com/roach88/simquery/internal/world"
)

// compareParam evaluates a parameter comparison.
//
// An index past the end of the parameter list is false. A present value
// is compared whatever it holds: zero and the empty string are values, not
// absences. Mismatched kinds compare false.
func (w *walker) compareParam(e *world.Entity, n *formula.ParamCompare) bool {
	actual, ok := e.Param(n.Index)
	if !ok {
		return false
	}
	want := literalParam(n.Value)

	switch n.Op {
	case formula.OpEq:
		return w.paramEqual(actual, want)
	case formula.OpLt, formula.OpGt:
		a, okA := world.Numeric(actual)
		b, okB := world.Numeric(want)
		if !okA || !okB {
			return false
		}
		if n.Op == formula.OpLt {
			return a < b
		}
		return a > b
	}
	return false
}

// paramEqual compares strings case-insensitively and numbers by value.
// Two integers compare exactly; any float promotes both sides.
func (w *walker) paramEqual(actual, want world.Param) bool {
	switch a := actual.(type) {
	case world.StringParam:
		b, ok := want.(world.StringParam)
		return ok && w.fold.String(string(a)) == w.fold.String(string(b))
	case world.IntParam:
		if b, ok := want.(world.IntParam); ok {
			return a == b
		}
	}
	a, okA := world.Numeric(actual)
	b, okB := world.Numeric(want)
	return okA && okB && a == b
}

func literalParam(lit formula.Literal) world.Param {
	switch v := lit.(type) {
	case formula.IntLit:
		return world.IntParam(v)
	case formula.FloatLit:
		return world.FloatParam(v)
	case formula.StringLit:
		return world.StringParam(v)
	}
	return nil
}
