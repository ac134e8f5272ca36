package formula

import (
	"strconv"
	"strings"

	"github.com/roach88/simquery/internal/world"
)

// Formula is a node in the abstract syntax tree.
//
// This is a sealed interface - only types in this package implement it.
// String renders the node back into query syntax; compound nodes are
// parenthesized so the output always re-parses to the same tree.
//
// Formula types:
//   - Quantifiers: Exists, Forall, ConnectsTo
//   - Connectives: And, Or, Not, Implies, Iff
//   - Predicates: IsClass, IsType, Equals, Connecting, ParamCompare
type Formula interface {
	formulaNode() // Marker method - seals interface to this package
	String() string
}

// Literal is a typed constant resolved at parse time.
//
// This is a sealed interface. Literal types: IntLit, FloatLit, StringLit.
type Literal interface {
	literalNode()
	String() string
}

// Query is the top-level production: a primary variable and a body.
type Query struct {
	Var  string
	Body Formula
}

func (q *Query) String() string {
	return q.Var + ". " + q.Body.String()
}

// Exists holds if Body holds for some entity bound to Var.
// When Var is already bound, only the current binding is checked.
type Exists struct {
	Var  string
	Body Formula
}

func (*Exists) formulaNode() {}

func (f *Exists) String() string {
	return "(exists " + f.Var + ". " + f.Body.String() + ")"
}

// Forall holds if Body holds for every entity bound to Var.
// Var is always rebound for the scope of the quantifier.
type Forall struct {
	Var  string
	Body Formula
}

func (*Forall) formulaNode() {}

func (f *Forall) String() string {
	return "(forall " + f.Var + ". " + f.Body.String() + ")"
}

// ConnectsTo holds if Body holds for some neighbor of the entity bound to
// From, with the neighbor bound to To.
type ConnectsTo struct {
	From string
	To   string
	Body Formula
}

func (*ConnectsTo) formulaNode() {}

func (f *ConnectsTo) String() string {
	return "(connects " + f.From + " -> " + f.To + ". " + f.Body.String() + ")"
}

// And holds if every operand holds. Operands has at least two elements.
type And struct {
	Operands []Formula
}

func (*And) formulaNode() {}

func (f *And) String() string { return joinOperands(f.Operands, " and ") }

// Or holds if any operand holds. Operands has at least two elements.
type Or struct {
	Operands []Formula
}

func (*Or) formulaNode() {}

func (f *Or) String() string { return joinOperands(f.Operands, " or ") }

// Implies is the chained implication f1 -> f2 -> ... -> fn. It holds if the
// operand values, read left to right, never drop from true to false.
type Implies struct {
	Operands []Formula
}

func (*Implies) formulaNode() {}

func (f *Implies) String() string { return joinOperands(f.Operands, " -> ") }

// Iff holds if every operand has the same value as the first.
type Iff struct {
	Operands []Formula
}

func (*Iff) formulaNode() {}

func (f *Iff) String() string { return joinOperands(f.Operands, " <-> ") }

// Not negates its operand.
type Not struct {
	Operand Formula
}

func (*Not) formulaNode() {}

func (f *Not) String() string { return "not " + f.Operand.String() }

// IsClass holds if the entity bound to Var has the given class.
type IsClass struct {
	Var   string
	Class world.Class
}

func (*IsClass) formulaNode() {}

func (f *IsClass) String() string {
	return classKeyword(f.Class) + "(" + f.Var + ")"
}

// IsType holds if the entity bound to Var has a type tag equal to Value.
type IsType struct {
	Var   string
	Value Literal
}

func (*IsType) formulaNode() {}

func (f *IsType) String() string {
	return "type(" + f.Var + ", " + f.Value.String() + ")"
}

// Equals holds if both variables are bound to the same entity.
type Equals struct {
	Left  string
	Right string
}

func (*Equals) formulaNode() {}

func (f *Equals) String() string { return f.Left + " = " + f.Right }

// Connecting holds if either entity lists the other as a connection.
type Connecting struct {
	Left  string
	Right string
}

func (*Connecting) formulaNode() {}

func (f *Connecting) String() string {
	return "connecting(" + f.Left + ", " + f.Right + ")"
}

// CompareOp is the operator of a parameter comparison.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpLt CompareOp = "<"
	OpGt CompareOp = ">"
)

// ParamCompare compares the parameter at Index of the entity bound to Var
// against Value.
type ParamCompare struct {
	Var   string
	Index int
	Op    CompareOp
	Value Literal
}

func (*ParamCompare) formulaNode() {}

func (f *ParamCompare) String() string {
	return f.Var + "." + strconv.Itoa(f.Index) + " " + string(f.Op) + " " + f.Value.String()
}

// IntLit is an integer literal.
type IntLit int64

func (IntLit) literalNode() {}

func (l IntLit) String() string { return strconv.FormatInt(int64(l), 10) }

// FloatLit is a floating-point literal.
type FloatLit float64

func (FloatLit) literalNode() {}

func (l FloatLit) String() string { return world.FloatParam(l).String() }

// StringLit is a string literal with quotes removed and escapes decoded.
type StringLit string

func (StringLit) literalNode() {}

func (l StringLit) String() string { return strconv.Quote(string(l)) }

func joinOperands(ops []Formula, sep string) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// classKeywords maps predicate keywords to entity classes.
var classKeywords = map[string]world.Class{
	"body":         world.ClassBody,
	"forceElement": world.ClassForceElement,
	"constraint":   world.ClassConstraint,
	"connection":   world.ClassConnection,
	"joint":        world.ClassJoint,
}

func classKeyword(c world.Class) string {
	for kw, class := range classKeywords {
		if class == c {
			return kw
		}
	}
	return string(c)
}
