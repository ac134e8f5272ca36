package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/simquery/internal/eval"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Source   WorldSource
	Query    string // single formula
	Input    string // file with one formula per line
	Output   string // results file; stdout when empty
	MaxSteps int
}

// QueryFailure describes a formula that could not be solved.
type QueryFailure struct {
	Formula string `json:"formula"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	World    string              `json:"world"`
	Results  map[string][]string `json:"results"`
	Failures []QueryFailure      `json:"failures,omitempty"`

	order []string // solved formulas in input order
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Solve formulas against a world",
		Long: `Solve one formula (-q) or a batch file of formulas (-i, one per line)
against a world and write the matching ids as JSON, keyed by formula.

In a batch, blank lines are skipped and a failing formula is reported
without stopping the rest. With --db every run is recorded in the query
history; a world given with -f is imported first.

Exit codes:
  0 - All formulas solved
  1 - One or more formulas failed
  2 - Command error (missing world, bad flags, etc.)

Examples:
  simquery query -f world.json -q "x. body(x) and x.0 > 3"
  simquery query -f world.json -i queries.txt -o results.json
  simquery query --db sim.db --world gears -q "x. joint(x)"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	opts.Source.bindFlags(cmd)
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "formula to solve")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "file with one formula per line")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write results JSON to this file")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "quantifier step budget per formula (0 = unlimited)")
	cmd.MarkFlagsMutuallyExclusive("query", "input")
	cmd.MarkFlagsOneRequired("query", "input")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger()

	if opts.MaxSteps < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, "--max-steps must be non-negative", nil)
	}

	formulas, err := collectFormulas(opts)
	if err != nil {
		return failLoad(formatter, err)
	}

	loaded, err := LoadWorld(ctx, opts.Source, logger)
	if err != nil {
		return failLoad(formatter, err)
	}
	defer loaded.Close()

	formatter.VerboseLog("Loaded world %q with %d entities", loaded.Name, loaded.World.Len())

	solver := eval.New(loaded.World,
		eval.WithLogger(logger.With(zap.String("world", loaded.Name))),
		eval.WithMaxSteps(opts.MaxSteps),
	)

	result := QueryResult{World: loaded.Name, Results: make(map[string][]string, len(formulas))}
	for _, f := range formulas {
		rs, solveErr := solver.Solve(ctx, f)
		if loaded.Store != nil {
			if _, err := loaded.Store.RecordRun(ctx, loaded.Name, f, rs, solveErr); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to record run: %v", err), nil)
			}
		}
		if solveErr != nil {
			failure := QueryFailure{Formula: f, Code: queryErrorCode(solveErr), Message: solveErr.Error()}
			result.Failures = append(result.Failures, failure)
			if opts.Input == "" {
				return formatter.Fail(ExitFailure, failure.Code, failure.Message, syntaxDetails(solveErr))
			}
			fmt.Fprintf(formatter.GetErrWriter(), "Error processing query '%s': %v\n", f, solveErr)
			continue
		}
		if _, seen := result.Results[f]; !seen {
			result.order = append(result.order, f)
		}
		result.Results[f] = rs.IDs()
		formatter.VerboseLog("%s: %d match(es)", f, rs.Len())
	}

	if err := writeQueryResult(formatter, opts, result); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d queries failed", len(result.Failures), len(formulas)))
	}
	return nil
}

// collectFormulas returns the single -q formula or the non-blank lines of
// the -i file.
func collectFormulas(opts *QueryOptions) ([]string, error) {
	if opts.Input == "" {
		return []string{opts.Query}, nil
	}

	f, err := os.Open(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("input file not found: %s", opts.Input), ExitCode: ExitCommandError}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "failed to open input file", ExitCode: ExitCommandError, Err: err}
	}
	defer f.Close()

	return readFormulas(f)
}

func readFormulas(r io.Reader) ([]string, error) {
	var formulas []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		formulas = append(formulas, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "failed to read input file", ExitCode: ExitCommandError, Err: err}
	}
	return formulas, nil
}

// writeQueryResult writes the formula → ids object to the output file, or
// to stdout in the configured format.
func writeQueryResult(formatter *OutputFormatter, opts *QueryOptions, result QueryResult) error {
	if opts.Output != "" {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(result.Results); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to encode results: %v", err), nil)
		}
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write results: %v", err), nil)
		}
		formatter.VerboseLog("Wrote %d result(s) to %s", len(result.Results), opts.Output)
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote %d result(s) to %s\n", len(result.Results), opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, f := range result.order {
		fmt.Fprintf(formatter.Writer, "%s: [%s]\n", f, strings.Join(result.Results[f], ", "))
	}
	return nil
}
