package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/simquery/internal/formula"
)

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Valid         bool     `json:"valid"`
	Canonical     string   `json:"canonical"`
	FreeVariables []string `json:"free_variables"`
	MaxDepth      int      `json:"max_depth"`
	Warnings      []string `json:"warnings"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse and analyze a formula without a world",
		Long: `Parse a formula and report its canonical form, free variables,
quantifier depth and warnings about constructs with surprising meaning
(shadowed variables, comparisons that can never hold, and so on).

A formula with free variables parses but fails when evaluated.

Example:
  simquery check -q "x. exists x. body(x)"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, query, cmd)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "formula to check")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runCheck(opts *RootOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	q, err := formula.Parse(text)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeSyntax, err.Error(), syntaxDetails(err))
	}

	report := formula.Analyze(q)
	result := CheckResult{
		Valid:         len(report.FreeVariables) == 0,
		Canonical:     q.String(),
		FreeVariables: report.FreeVariables,
		MaxDepth:      report.MaxDepth,
		Warnings:      report.Warnings,
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintln(w, result.Canonical)
		fmt.Fprintf(w, "  quantifier depth: %d\n", result.MaxDepth)
		if len(result.FreeVariables) > 0 {
			fmt.Fprintf(w, "  free variables: %s\n", strings.Join(result.FreeVariables, ", "))
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("free variables: %s", strings.Join(result.FreeVariables, ", ")))
	}
	return nil
}
