package eval

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"

	"github.com/roach88/simquery/internal/formula"
	"github.com/roach88/simquery/internal/world"
)

// Evaluator decides whether a formula holds under an environment.
type Evaluator struct {
	world    *world.World
	maxSteps int
}

// NewEvaluator returns an Evaluator over w. maxSteps caps the quantifier
// iterations of each Evaluate call; zero means unlimited.
func NewEvaluator(w *world.World, maxSteps int) *Evaluator {
	return &Evaluator{world: w, maxSteps: maxSteps}
}

// Evaluate reports whether f holds with the bindings in env.
//
// env is mutated during evaluation but is restored to its starting depth
// before Evaluate returns, including on error.
func (ev *Evaluator) Evaluate(ctx context.Context, f formula.Formula, env *Env) (bool, error) {
	return newWalker(ev.world, newBudget(ctx, ev.maxSteps)).eval(f, env)
}

// walker carries the per-call state of an evaluation.
type walker struct {
	world  *world.World
	budget *budget
	fold   cases.Caser
}

func newWalker(w *world.World, b *budget) *walker {
	return &walker{world: w, budget: b, fold: cases.Fold()}
}

func (w *walker) eval(f formula.Formula, env *Env) (bool, error) {
	switch n := f.(type) {
	case *formula.Exists:
		return w.exists(n, env)
	case *formula.Forall:
		return w.forall(n, env)
	case *formula.ConnectsTo:
		return w.connectsTo(n, env)

	case *formula.And:
		for _, op := range n.Operands {
			ok, err := w.eval(op, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *formula.Or:
		for _, op := range n.Operands {
			ok, err := w.eval(op, env)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case *formula.Not:
		ok, err := w.eval(n.Operand, env)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case *formula.Implies:
		prev := false
		for _, op := range n.Operands {
			ok, err := w.eval(op, env)
			if err != nil {
				return false, err
			}
			if prev && !ok {
				return false, nil
			}
			prev = ok
		}
		return true, nil
	case *formula.Iff:
		first, err := w.eval(n.Operands[0], env)
		if err != nil {
			return false, err
		}
		for _, op := range n.Operands[1:] {
			ok, err := w.eval(op, env)
			if err != nil {
				return false, err
			}
			if ok != first {
				return false, nil
			}
		}
		return true, nil

	case *formula.IsClass:
		e, err := env.Lookup(n.Var)
		if err != nil {
			return false, err
		}
		return e.Class == n.Class, nil
	case *formula.IsType:
		e, err := env.Lookup(n.Var)
		if err != nil {
			return false, err
		}
		s, ok := n.Value.(formula.StringLit)
		return ok && e.Type == string(s), nil
	case *formula.Equals:
		a, err := env.Lookup(n.Left)
		if err != nil {
			return false, err
		}
		b, err := env.Lookup(n.Right)
		if err != nil {
			return false, err
		}
		return a.ID == b.ID, nil
	case *formula.Connecting:
		a, err := env.Lookup(n.Left)
		if err != nil {
			return false, err
		}
		b, err := env.Lookup(n.Right)
		if err != nil {
			return false, err
		}
		return a.ConnectedTo(b.ID) || b.ConnectedTo(a.ID), nil
	case *formula.ParamCompare:
		e, err := env.Lookup(n.Var)
		if err != nil {
			return false, err
		}
		return w.compareParam(e, n), nil

	default:
		return false, fmt.Errorf("unknown formula type %T", f)
	}
}

// exists evaluates the body directly when the variable is already bound;
// otherwise it scans the world and stops at the first match.
func (w *walker) exists(n *formula.Exists, env *Env) (bool, error) {
	if env.Bound(n.Var) {
		return w.eval(n.Body, env)
	}
	return w.scan(n.Var, n.Body, env, true)
}

// forall always shadows an outer binding of its variable.
func (w *walker) forall(n *formula.Forall, env *Env) (bool, error) {
	return w.scan(n.Var, n.Body, env, false)
}

// scan binds v to each entity of the world in order and evaluates body. It
// stops as soon as body evaluates to stopOn and returns stopOn; if no
// entity stops the scan it returns !stopOn.
func (w *walker) scan(v string, body formula.Formula, env *Env, stopOn bool) (bool, error) {
	tok := env.Bind(v, nil)
	defer env.Unbind(tok)

	for _, e := range w.world.Entities() {
		if err := w.budget.step(); err != nil {
			return false, err
		}
		env.Rebind(tok, e)
		ok, err := w.eval(body, env)
		if err != nil {
			return false, err
		}
		if ok == stopOn {
			return stopOn, nil
		}
	}
	return !stopOn, nil
}

// connectsTo binds To to each neighbor of From in stored connection order.
func (w *walker) connectsTo(n *formula.ConnectsTo, env *Env) (bool, error) {
	from, err := env.Lookup(n.From)
	if err != nil {
		return false, err
	}

	tok := env.Bind(n.To, nil)
	defer env.Unbind(tok)

	for _, id := range from.Connections {
		if err := w.budget.step(); err != nil {
			return false, err
		}
		neighbor, ok := w.world.Lookup(id)
		if !ok {
			return false, &DanglingReferenceError{From: from.ID, ID: id}
		}
		env.Rebind(tok, neighbor)
		ok, err := w.eval(n.Body, env)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
