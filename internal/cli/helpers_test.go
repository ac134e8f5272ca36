package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simquery/internal/testutil"
	"github.com/roach88/simquery/internal/world"
)

// writeMechanism saves the mechanism fixture as a JSON document in a temp
// directory and returns its path.
func writeMechanism(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mechanism.json")
	require.NoError(t, world.WriteFile(path, testutil.Mechanism(t)))
	return path
}

// writeDangling saves the dangling fixture.
func writeDangling(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dangling.json")
	require.NoError(t, world.WriteFile(path, testutil.Dangling(t)))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
