package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	sub, _, err := NewRootCommand().Find([]string{name})
	require.NoError(t, err, name)
	require.Equal(t, name, sub.Name())
	return sub
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "simquery", cmd.Use)
	assert.True(t, cmd.SilenceErrors)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"check", "generate", "history", "import", "interactive", "query", "test"})

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestCommandFlags(t *testing.T) {
	// command → flag → {shorthand, default}
	tests := map[string]map[string][2]string{
		"query": {
			"file": {"f", ""}, "query": {"q", ""}, "input": {"i", ""}, "output": {"o", ""},
			"max-steps": {"", "0"}, "db": {"", ""}, "world": {"", ""},
		},
		"interactive": {"file": {"f", ""}, "max-steps": {"", "0"}},
		"generate": {
			"output": {"o", ""}, "bodies": {"", "10"}, "connections": {"", "3"},
			"params": {"", "10"}, "seed": {"", "42"}, "ids": {"", "counter"},
		},
		"history": {"db": {"", ""}, "world": {"", ""}},
		"test":    {"update": {"", "false"}, "golden-dir": {"", ""}},
	}

	for name, flags := range tests {
		t.Run(name, func(t *testing.T) {
			sub := findCommand(t, name)
			for flag, want := range flags {
				f := sub.Flags().Lookup(flag)
				require.NotNil(t, f, flag)
				assert.Equal(t, want[0], f.Shorthand, flag)
				assert.Equal(t, want[1], f.DefValue, flag)
			}
		})
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "", "--format", "xml", "query", "-f", writeMechanism(t), "-q", "x. body(x)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_RunsSubcommand(t *testing.T) {
	out, _, err := execute(t, NewRootCommand(), "", "--verbose", "query", "-f", writeMechanism(t), "-q", "x. joint(x)")
	require.NoError(t, err)
	assert.Equal(t, "x. joint(x): [j1]\n", out)
}
