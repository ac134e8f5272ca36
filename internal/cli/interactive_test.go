package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simquery/internal/store"
)

func TestInteractiveCommand_Text(t *testing.T) {
	path := writeMechanism(t)
	stdin := "x. joint(x)\n\nx. (\nx. body(x)\nquit\nx. joint(x)\n"

	out, _, err := execute(t, NewInteractiveCommand(&RootOptions{Format: "text"}), stdin, "-f", path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Solver loaded."), out)
	assert.Contains(t, out, "Results: [j1]")
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "Results: [arm, ground]")
	// Nothing after quit is evaluated.
	assert.Equal(t, 1, strings.Count(out, "Results: [j1]"))
}

func TestInteractiveCommand_EndOfInput(t *testing.T) {
	path := writeMechanism(t)

	out, _, err := execute(t, NewInteractiveCommand(&RootOptions{Format: "text"}), "x. joint(x)", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Results: [j1]")
}

func TestInteractiveCommand_ExitIsCaseInsensitive(t *testing.T) {
	path := writeMechanism(t)

	out, _, err := execute(t, NewInteractiveCommand(&RootOptions{Format: "text"}), "EXIT\nx. joint(x)\n", "-f", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "Results")
}

func TestInteractiveCommand_JSONLines(t *testing.T) {
	path := writeMechanism(t)
	stdin := "x. joint(x)\nx. x = q\n"

	out, _, err := execute(t, NewInteractiveCommand(&RootOptions{Format: "json"}), stdin, "-f", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second replLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, []string{"j1"}, first.Results)
	assert.Nil(t, first.Error)
	require.NotNil(t, second.Error)
	assert.Equal(t, ErrCodeUnbound, second.Error.Code)
}

func TestInteractiveCommand_RecordsRuns(t *testing.T) {
	path := writeMechanism(t)
	db := filepath.Join(t.TempDir(), "sim.db")

	_, _, err := execute(t, NewInteractiveCommand(&RootOptions{Format: "text"}), "x. joint(x)\nx. (\n", "-f", path, "--db", db)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ReadRuns(t.Context(), "mechanism")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[0].Failed())
	assert.True(t, runs[1].Failed())
}

func TestInteractiveCommand_MissingWorld(t *testing.T) {
	_, _, err := execute(t, NewInteractiveCommand(&RootOptions{Format: "text"}), "", "-f", "/nonexistent.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
