package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simquery/internal/formula"
	"github.com/roach88/simquery/internal/testutil"
	"github.com/roach88/simquery/internal/world"
)

// evalWith parses src as a bare formula and evaluates it with the given
// bindings.
func evalWith(t *testing.T, w *world.World, src string, bindings ...string) (bool, error) {
	t.Helper()
	f, err := formula.ParseFormula(src)
	require.NoError(t, err)

	env := &Env{}
	for i := 0; i < len(bindings); i += 2 {
		e, ok := w.Lookup(bindings[i+1])
		require.True(t, ok, "unknown entity %q", bindings[i+1])
		env.Bind(bindings[i], e)
	}
	depth := env.Depth()

	ok, err := NewEvaluator(w, 0).Evaluate(context.Background(), f, env)
	assert.Equal(t, depth, env.Depth(), "evaluation must restore the environment")
	return ok, err
}

func mustEval(t *testing.T, w *world.World, src string, bindings ...string) bool {
	t.Helper()
	ok, err := evalWith(t, w, src, bindings...)
	require.NoError(t, err)
	return ok
}

func TestEvaluate_Connectives(t *testing.T) {
	w := testutil.ThreeBodies(t)

	tests := []struct {
		src  string
		want bool
	}{
		{"body(x) and x = x", true},
		{"body(x) and joint(x)", false},
		{"joint(x) or x = x", true},
		{"joint(x) or constraint(x)", false},
		{"not joint(x)", true},

		// implies: false only where a true operand is followed by a false one
		{"joint(x) -> body(x)", true},
		{"body(x) -> joint(x)", false},
		{"joint(x) -> joint(x)", true},
		{"body(x) -> body(x)", true},
		{"joint(x) -> body(x) -> joint(x)", false},
		{"joint(x) -> joint(x) -> body(x)", true},

		// iff compares every operand with the first
		{"body(x) <-> x = x", true},
		{"joint(x) <-> constraint(x)", true},
		{"body(x) <-> joint(x)", false},
		{"joint(x) <-> body(x) <-> joint(x)", false},
		{"body(x) <-> body(x) <-> x = x", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, w, tt.src, "x", "b1"))
		})
	}
}

func TestEvaluate_DoubleNegation(t *testing.T) {
	w := testutil.Mechanism(t)
	formulas := []string{
		"body(x)",
		"joint(x)",
		`type(x, "spring")`,
		"x.0 = 0",
		"x.2 > 1",
		"exists y. connecting(x, y) and joint(y)",
		"forall y. connecting(x, y) or x = y",
	}

	for _, src := range formulas {
		for _, e := range w.Entities() {
			plain := mustEval(t, w, src, "x", e.ID)
			double := mustEval(t, w, "not not ("+src+")", "x", e.ID)
			assert.Equal(t, plain, double, "%s with x = %s", src, e.ID)
		}
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	w := testutil.ThreeBodies(t)

	ok, err := evalWith(t, w, "joint(x) and body(unbound)", "x", "b1")
	require.NoError(t, err, "a false early operand must stop evaluation")
	assert.False(t, ok)

	ok, err = evalWith(t, w, "body(x) or body(unbound)", "x", "b1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = evalWith(t, w, "body(x) and body(unbound)", "x", "b1")
	require.Error(t, err)
	assert.True(t, IsUnboundVariable(err))

	var ue *UnboundVariableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "unbound", ue.Name)
}

func TestEvaluate_ImpliesStopsAtFirstDrop(t *testing.T) {
	w := testutil.ThreeBodies(t)

	ok, err := evalWith(t, w, "body(x) -> joint(x) -> body(unbound)", "x", "b1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = evalWith(t, w, "body(x) <-> joint(x) <-> body(unbound)", "x", "b1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate_ExistsPreboundNeverScans(t *testing.T) {
	w := testutil.ThreeBodies(t)

	// Bound to b3, the body is checked against b3 only, even though b1 and
	// b2 satisfy it.
	assert.False(t, mustEval(t, w, "exists x. exists y. connecting(x, y)", "x", "b3"))
	assert.True(t, mustEval(t, w, "exists x. exists y. connecting(x, y)", "x", "b1"))

	// No steps are charged for a captured exists.
	f, err := formula.ParseFormula("exists x. body(x)")
	require.NoError(t, err)
	b3, _ := w.Lookup("b3")
	wk := newWalker(w, newBudget(context.Background(), 0))
	ok, err := wk.eval(f, NewEnv("x", b3))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, wk.budget.Steps())
}

func TestEvaluate_ForallShadowsPrebound(t *testing.T) {
	w := testutil.ThreeBodies(t)

	// forall ignores the outer binding of x and ranges over the world.
	assert.False(t, mustEval(t, w, "forall x. exists y. connecting(x, y)", "x", "b1"))
	assert.True(t, mustEval(t, w, "forall x. body(x)", "x", "b1"))

	// The outer binding is visible again after the quantifier.
	assert.True(t, mustEval(t, w, `(forall x. body(x)) and exists y. connecting(x, y)`, "x", "b1"))
	assert.False(t, mustEval(t, w, `(forall x. body(x)) and exists y. connecting(x, y)`, "x", "b3"))
}

func TestEvaluate_QuantifiersOverEmptyWorld(t *testing.T) {
	w, err := world.New()
	require.NoError(t, err)

	assert.False(t, mustEval(t, w, "exists y. body(y)"))
	assert.True(t, mustEval(t, w, "forall y. joint(y)"))
}

func TestEvaluate_ConnectsToOnlyVisitsNeighbors(t *testing.T) {
	w := testutil.Neighborhood(t)

	// true only for n2, a neighbor
	assert.True(t, mustEval(t, w, `connects x -> y. type(y, "slider")`, "x", "a"))
	// true only for far, not a neighbor
	assert.False(t, mustEval(t, w, "connects x -> y. body(y) and y.0 = 2", "x", "a"))
	// exists does reach far
	assert.True(t, mustEval(t, w, "exists y. body(y) and y.0 = 2", "x", "a"))
	// no neighbors at all
	assert.False(t, mustEval(t, w, "connects x -> y. y = y", "x", "far"))
}

func TestEvaluate_ConnectsToRestoresTarget(t *testing.T) {
	w := testutil.Neighborhood(t)

	// y is bound to far before, rebound to neighbors inside, and far again
	// after the quantifier.
	ok := mustEval(t, w, `(connects x -> y. joint(y)) and body(y) and y.0 = 2`, "x", "a", "y", "far")
	assert.True(t, ok)
}

func TestEvaluate_ConnectsToUnboundSource(t *testing.T) {
	w := testutil.Neighborhood(t)

	_, err := evalWith(t, w, "connects z -> y. body(y)", "x", "a")
	require.Error(t, err)
	var ue *UnboundVariableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "z", ue.Name)
}

func TestEvaluate_ConnectsToDanglingReference(t *testing.T) {
	w := testutil.Dangling(t)

	// b is visited first and satisfies the body, so ghost is never resolved.
	assert.True(t, mustEval(t, w, "connects x -> y. body(y)", "x", "a"))

	_, err := evalWith(t, w, "connects x -> y. joint(y)", "x", "a")
	require.Error(t, err)
	assert.True(t, IsDanglingReference(err))

	var de *DanglingReferenceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "a", de.From)
	assert.Equal(t, "ghost", de.ID)
}

func TestEvaluate_ClassAndType(t *testing.T) {
	w := testutil.Mechanism(t)

	assert.True(t, mustEval(t, w, "joint(x)", "x", "j1"))
	assert.True(t, mustEval(t, w, "forceElement(x)", "x", "s1"))
	assert.False(t, mustEval(t, w, "constraint(x) or connection(x)", "x", "s1"))
	assert.True(t, mustEval(t, w, `type(x, "revolute")`, "x", "j1"))
	assert.False(t, mustEval(t, w, `type(x, "Revolute")`, "x", "j1"), "type tags compare exactly")
	assert.False(t, mustEval(t, w, `type(x, 3)`, "x", "j1"))
}

func TestEvaluate_EqualsAndConnecting(t *testing.T) {
	w := testutil.Mechanism(t)

	assert.True(t, mustEval(t, w, "x = y", "x", "arm", "y", "arm"))
	assert.False(t, mustEval(t, w, "x = y", "x", "arm", "y", "ground"))
	assert.True(t, mustEval(t, w, "connecting(x, y)", "x", "arm", "y", "j1"))
	assert.True(t, mustEval(t, w, "connecting(y, x)", "x", "arm", "y", "j1"))
	assert.False(t, mustEval(t, w, "connecting(x, y)", "x", "arm", "y", "ground"))
}

func TestEvaluate_ConnectingChecksBothDirections(t *testing.T) {
	w, err := world.New(
		&world.Entity{ID: "a", Class: world.ClassBody, Connections: []string{"b"}},
		&world.Entity{ID: "b", Class: world.ClassBody},
	)
	require.NoError(t, err)

	assert.True(t, mustEval(t, w, "connecting(x, y)", "x", "a", "y", "b"))
	assert.True(t, mustEval(t, w, "connecting(x, y)", "x", "b", "y", "a"))
}

func TestEvaluate_ParamPredicates(t *testing.T) {
	w, err := world.New(&world.Entity{
		ID:         "p",
		Class:      world.ClassBody,
		Parameters: world.Params{world.IntParam(0), world.StringParam("Rigid"), world.FloatParam(3.5), world.StringParam("")},
	})
	require.NoError(t, err)

	tests := []struct {
		src  string
		want bool
	}{
		{"v.0 = 0", true},
		{"v.0 = 0.0", true},
		{"v.0 = 1", false},
		{`v.0 = "0"`, false},
		{`v.1 = "rigid"`, true},
		{`v.1 = "RIGID"`, true},
		{`v.1 = "rig"`, false},
		{"v.1 = 0", false},
		{`v.1 < "z"`, false},
		{"v.2 < 4", true},
		{"v.2 > 4", false},
		{"v.2 > 3", true},
		{"v.2 = 3.5", true},
		{"v.2 < 3.5", false},
		{`v.3 = ""`, true},
		{"v.3 = 0", false},
		{"v.0 < 1", true},
		{"v.0 > -1", true},
		{"v.5 = 0", false},
		{`v.5 = "anything"`, false},
		{"v.5 < 100", false},
		{"not v.5 > 100", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, w, tt.src, "v", "p"))
		})
	}
}

func TestEvaluate_CaseFoldingBeyondASCII(t *testing.T) {
	w, err := world.New(&world.Entity{
		ID:         "p",
		Class:      world.ClassBody,
		Parameters: world.Params{world.StringParam("ÉCOLE"), world.StringParam("Ωmega")},
	})
	require.NoError(t, err)

	assert.True(t, mustEval(t, w, `v.0 = "école"`, "v", "p"))
	assert.True(t, mustEval(t, w, `v.1 = "ωMEGA"`, "v", "p"))
}

func TestEvaluate_StepBudget(t *testing.T) {
	w := testutil.ThreeBodies(t)
	f, err := formula.ParseFormula("forall y. forall z. y = y")
	require.NoError(t, err)

	// 3 outer + 9 inner iterations
	ok, err := NewEvaluator(w, 12).Evaluate(context.Background(), f, &Env{})
	require.NoError(t, err)
	assert.True(t, ok)

	env := &Env{}
	_, err = NewEvaluator(w, 11).Evaluate(context.Background(), f, env)
	require.Error(t, err)
	assert.True(t, IsStepsExceeded(err))
	assert.Zero(t, env.Depth())

	var se *StepsExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 12, se.Steps)
	assert.Equal(t, 11, se.Limit)
}

func TestEvaluate_ContextCancelled(t *testing.T) {
	w := testutil.ThreeBodies(t)
	f, err := formula.ParseFormula("exists y. joint(y)")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewEvaluator(w, 0).Evaluate(ctx, f, &Env{})
	assert.ErrorIs(t, err, context.Canceled)
}
