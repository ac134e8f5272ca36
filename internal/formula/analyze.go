package formula

import (
	"fmt"
	"slices"
)

// Report summarizes static properties of a query.
//
// Analyze never rejects a query: the evaluator is the authority on
// unbound variables. The report exists so tools can warn before a query
// runs against a large world.
type Report struct {
	// FreeVariables are referenced somewhere without an enclosing binder.
	// Evaluating a query with free variables fails with an unbound variable
	// error once the reference is reached.
	FreeVariables []string

	// MaxDepth is the deepest nesting of quantifiers below the primary
	// variable. A brute-force scan costs O(|world|^(1+MaxDepth)) in the worst
	// case; connects quantifiers are bounded by out-degree instead.
	MaxDepth int

	// Warnings describe constructs with surprising semantics.
	Warnings []string
}

// Analyze walks q and reports free variables, quantifier depth and
// scoping surprises.
//
// Analyze is a pure function with no side effects.
func Analyze(q *Query) Report {
	a := &analyzer{
		bound: map[string]int{q.Var: 1},
		free:  map[string]bool{},
	}
	a.walk(q.Body, 0)

	free := make([]string, 0, len(a.free))
	for v := range a.free {
		free = append(free, v)
	}
	slices.Sort(free)

	return Report{
		FreeVariables: free,
		MaxDepth:      a.maxDepth,
		Warnings:      a.warnings,
	}
}

type analyzer struct {
	bound    map[string]int // variable -> number of enclosing binders
	free     map[string]bool
	maxDepth int
	warnings []string
}

func (a *analyzer) addWarning(format string, args ...any) {
	a.warnings = append(a.warnings, fmt.Sprintf(format, args...))
}

func (a *analyzer) use(vars ...string) {
	for _, v := range vars {
		if a.bound[v] == 0 {
			a.free[v] = true
		}
	}
}

// scoped walks body with v bound one more time.
func (a *analyzer) scoped(v string, body Formula, depth int) {
	a.bound[v]++
	a.walk(body, depth)
	a.bound[v]--
}

func (a *analyzer) walk(f Formula, depth int) {
	switch n := f.(type) {
	case *Exists:
		depth++
		a.maxDepth = max(a.maxDepth, depth)
		if a.bound[n.Var] > 0 {
			a.addWarning("exists %s: %s is already bound, only the current binding is checked", n.Var, n.Var)
		}
		a.scoped(n.Var, n.Body, depth)
	case *Forall:
		depth++
		a.maxDepth = max(a.maxDepth, depth)
		if a.bound[n.Var] > 0 {
			a.addWarning("forall %s: shadows the enclosing binding of %s", n.Var, n.Var)
		}
		a.scoped(n.Var, n.Body, depth)
	case *ConnectsTo:
		depth++
		a.maxDepth = max(a.maxDepth, depth)
		a.use(n.From)
		if a.bound[n.To] > 0 {
			a.addWarning("connects %s -> %s: shadows the enclosing binding of %s", n.From, n.To, n.To)
		}
		a.scoped(n.To, n.Body, depth)
	case *And:
		a.walkAll(n.Operands, depth)
	case *Or:
		a.walkAll(n.Operands, depth)
	case *Implies:
		a.walkAll(n.Operands, depth)
	case *Iff:
		a.walkAll(n.Operands, depth)
	case *Not:
		a.walk(n.Operand, depth)
	case *IsClass:
		a.use(n.Var)
	case *IsType:
		a.use(n.Var)
		if _, ok := n.Value.(StringLit); !ok {
			a.addWarning("type(%s, %s): type tags are strings, a number never matches", n.Var, n.Value)
		}
	case *Equals:
		a.use(n.Left, n.Right)
	case *Connecting:
		a.use(n.Left, n.Right)
	case *ParamCompare:
		a.use(n.Var)
		if _, ok := n.Value.(StringLit); ok && n.Op != OpEq {
			a.addWarning("%s: ordering comparisons against a string are always false", n)
		}
	default:
		a.addWarning("unknown formula type %T", f)
	}
}

func (a *analyzer) walkAll(fs []Formula, depth int) {
	for _, f := range fs {
		a.walk(f, depth)
	}
}
