package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/simquery/internal/eval"
)

// InteractiveOptions holds flags for the interactive command.
type InteractiveOptions struct {
	*RootOptions
	Source   WorldSource
	MaxSteps int
}

// replLine is one JSON line of interactive output.
type replLine struct {
	Formula string    `json:"formula"`
	Results []string  `json:"results,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
}

// NewInteractiveCommand creates the interactive command.
func NewInteractiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InteractiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Query a world from a prompt",
		Long: `Load a world once and solve formulas read from standard input, one
per line. Errors are printed and the session continues. Type 'exit' or
'quit' (or send end of input) to leave.

With --format json every answer is printed as one JSON object per line.

Example:
  simquery interactive -f world.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), opts, cmd)
		},
	}

	opts.Source.bindFlags(cmd)
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "quantifier step budget per formula (0 = unlimited)")

	return cmd
}

func runInteractive(ctx context.Context, opts *InteractiveOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger()

	loaded, err := LoadWorld(ctx, opts.Source, logger)
	if err != nil {
		return failLoad(formatter, err)
	}
	defer loaded.Close()

	solver := eval.New(loaded.World,
		eval.WithLogger(logger.With(zap.String("world", loaded.Name))),
		eval.WithMaxSteps(opts.MaxSteps),
	)

	w := formatter.Writer
	text := formatter.Format != "json"
	if text {
		fmt.Fprintln(w, "Solver loaded. Enter a query. Type 'exit' or 'quit' to exit.")
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if text {
			fmt.Fprint(w, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if word := strings.ToLower(line); word == "exit" || word == "quit" {
			break
		}

		rs, solveErr := solver.Solve(ctx, line)
		if loaded.Store != nil {
			if _, err := loaded.Store.RecordRun(ctx, loaded.Name, line, rs, solveErr); err != nil {
				logger.Warn("failed to record run", zap.String("formula", line), zap.Error(err))
			}
		}

		if !text {
			out := replLine{Formula: line, Results: rs.IDs()}
			if solveErr != nil {
				out.Results = nil
				out.Error = &CLIError{Code: queryErrorCode(solveErr), Message: solveErr.Error()}
			}
			if err := formatter.encodeLine(out); err != nil {
				return err
			}
			continue
		}

		if solveErr != nil {
			fmt.Fprintf(w, "Error: %v\n", solveErr)
			continue
		}
		fmt.Fprintf(w, "\nResults: [%s]\n\n", strings.Join(rs.IDs(), ", "))
	}
	if text {
		fmt.Fprintln(w)
	}

	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}
