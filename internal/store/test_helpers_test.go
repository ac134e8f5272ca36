package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/simquery/internal/world"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreAt(t, filepath.Join(t.TempDir(), "test.db"))
}

// createTestWorld builds a small world with every param kind and
// connection lists whose order differs from id order.
func createTestWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(
		&world.Entity{ID: "z", Class: world.ClassBody, Type: "Body", Name: "base",
			Parameters:  world.Params{world.IntParam(0), world.StringParam("Rigid"), world.FloatParam(2)},
			Connections: []string{"m", "a"}},
		&world.Entity{ID: "m", Class: world.ClassJoint, Type: "hinge",
			Parameters: world.Params{}, Connections: []string{"z"}},
		&world.Entity{ID: "a", Class: world.ClassForceElement, Type: "spring",
			Parameters: world.Params{world.FloatParam(-1.5), world.StringParam("")}, Connections: []string{"z"}},
	)
	require.NoError(t, err)
	return w
}
