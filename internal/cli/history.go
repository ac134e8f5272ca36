package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/simquery/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	World    string
	Limit    int
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	World string      `json:"world,omitempty"`
	Runs  []store.Run `json:"runs,omitempty"`

	// Worlds is set when no --world is given.
	Worlds []store.WorldInfo `json:"worlds,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored worlds and recorded query runs",
		Long: `Without --world, list the worlds stored in the database. With --world,
list the query runs recorded against it, oldest first, with the world
revision each run saw.

Examples:
  simquery history --db sim.db
  simquery history --db sim.db --world gears --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.World, "world", "", "stored world name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent n runs (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(opts.Database, store.WithLogger(opts.logger()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	if opts.World == "" {
		worlds, err := st.ListWorlds(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		if formatter.Format == "json" {
			return formatter.Success(HistoryResult{Worlds: worlds})
		}
		if len(worlds) == 0 {
			fmt.Fprintln(formatter.Writer, "No worlds stored.")
			return nil
		}
		for _, w := range worlds {
			fmt.Fprintf(formatter.Writer, "%s  revision %d  %d entities\n", w.Name, w.Revision, w.Entities)
		}
		return nil
	}

	runs, err := st.ReadRuns(ctx, opts.World)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[len(runs)-opts.Limit:]
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{World: opts.World, Runs: runs})
	}
	if len(runs) == 0 {
		fmt.Fprintf(formatter.Writer, "No runs recorded for %q.\n", opts.World)
		return nil
	}
	for _, r := range runs {
		if r.Failed() {
			fmt.Fprintf(formatter.Writer, "#%d r%d ✗ %s\n    %s\n", r.ID, r.Revision, r.Formula, r.Error)
			continue
		}
		fmt.Fprintf(formatter.Writer, "#%d r%d ✓ %s\n    [%s]\n", r.ID, r.Revision, r.Formula, strings.Join(r.Results, ", "))
	}
	return nil
}
