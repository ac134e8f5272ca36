// Package testutil provides fixture worlds shared by package tests.
//
// Fixtures use fixed ids so expectations and golden files stay stable.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/simquery/internal/world"
)

// Build creates a world from ids and class/type pairs, then links the given
// pairs. links are given as id pairs: Build(t, ents, "a", "b", "b", "c").
func Build(t testing.TB, entities []*world.Entity, links ...string) *world.World {
	t.Helper()
	require.Zero(t, len(links)%2, "links must come in pairs")

	gen := make([]string, len(entities))
	for i, e := range entities {
		gen[i] = e.ID
	}
	b := world.NewBuilder(world.NewFixedGenerator(gen...))
	byID := make(map[string]*world.Entity, len(entities))
	for _, e := range entities {
		added := b.Add(e.Class, e.Type, e.Parameters...)
		b.Named(added, e.Name)
		byID[added.ID] = added
	}
	for i := 0; i < len(links); i += 2 {
		a, c := byID[links[i]], byID[links[i+1]]
		require.NotNil(t, a, "unknown entity %q", links[i])
		require.NotNil(t, c, "unknown entity %q", links[i+1])
		require.NoError(t, b.Connect(a, c))
	}

	w, err := b.World()
	require.NoError(t, err)
	require.NoError(t, w.Validate())
	return w
}

// Body returns an unconnected body template for Build.
func Body(id string, params ...world.Param) *world.Entity {
	return &world.Entity{ID: id, Class: world.ClassBody, Type: "Body", Parameters: params}
}

// Connector returns an unconnected entity template of the given class.
func Connector(id string, class world.Class, typ string, params ...world.Param) *world.Entity {
	return &world.Entity{ID: id, Class: class, Type: typ, Parameters: params}
}

// ThreeBodies returns bodies b1, b2 and b3 where b1 and b2 are connected
// and b3 is isolated.
func ThreeBodies(t testing.TB) *world.World {
	t.Helper()
	return Build(t, []*world.Entity{Body("b1"), Body("b2"), Body("b3")}, "b1", "b2")
}

// Neighborhood returns body a connected to n1 and n2, in that order, plus
// an unconnected body far.
func Neighborhood(t testing.TB) *world.World {
	t.Helper()
	return Build(t,
		[]*world.Entity{
			Body("a"),
			Connector("n1", world.ClassJoint, "hinge", world.IntParam(1)),
			Connector("n2", world.ClassJoint, "slider", world.IntParam(2)),
			Body("far", world.IntParam(2)),
		},
		"a", "n1", "a", "n2",
	)
}

// Mechanism returns two bodies linked through a joint and a spring:
//
//	ground -- j1 -- arm -- s1 -- ground
//
// Parameters cover ints, floats and strings, including zero and the
// empty string.
func Mechanism(t testing.TB) *world.World {
	t.Helper()
	return Build(t,
		[]*world.Entity{
			Body("ground", world.IntParam(0), world.StringParam("Fixed"), world.FloatParam(0)),
			Body("arm", world.IntParam(3), world.StringParam("Rigid"), world.FloatParam(1.5)),
			Connector("j1", world.ClassJoint, "revolute", world.FloatParam(0.25)),
			Connector("s1", world.ClassForceElement, "spring", world.FloatParam(120), world.StringParam("")),
		},
		"ground", "j1", "j1", "arm", "arm", "s1", "s1", "ground",
	)
}

// Dangling returns a world whose entity a lists a connection to an id that
// does not exist. New accepts it; Validate does not.
func Dangling(t testing.TB) *world.World {
	t.Helper()
	w, err := world.New(
		&world.Entity{ID: "a", Class: world.ClassBody, Type: "Body", Connections: []string{"b", "ghost"}},
		&world.Entity{ID: "b", Class: world.ClassBody, Type: "Body", Connections: []string{"a"}},
	)
	require.NoError(t, err)
	return w
}
