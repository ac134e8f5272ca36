package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/simquery/internal/eval"
	"github.com/roach88/simquery/internal/formula"
	"github.com/roach88/simquery/internal/store"
	"github.com/roach88/simquery/internal/world"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *zap.Logger
}

// WithLogger sets the logger passed to the solver.
func WithLogger(logger *zap.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database for isolation:
//  1. Build the world from the inline document or world file
//  2. Save it to the store and load it back
//  3. Solve every query against the loaded world, recording each run
//  4. Compare outcomes with expectations
//
// Queries run against the stored copy, so every scenario also checks that
// storage preserves entity order, connection order and param kinds.
//
// Run returns an error only when the scenario cannot be executed at all.
// Failed expectations are reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := buildWorld(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}

	st, err := store.Open(":memory:", store.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if _, err := st.SaveWorld(ctx, scenario.Name, w); err != nil {
		return nil, fmt.Errorf("failed to store world: %w", err)
	}
	loaded, err := st.LoadWorld(ctx, scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}

	solver := eval.New(loaded,
		eval.WithLogger(cfg.logger.With(zap.String("scenario", scenario.Name))),
		eval.WithMaxSteps(scenario.MaxSteps),
	)

	result := NewResult()
	for i, step := range scenario.Queries {
		rs, solveErr := solver.Solve(ctx, step.Formula)
		if _, err := st.RecordRun(ctx, scenario.Name, step.Formula, rs, solveErr); err != nil {
			return nil, fmt.Errorf("failed to record query %d: %w", i, err)
		}

		outcome := QueryOutcome{Formula: step.Formula, Results: rs.IDs()}
		if solveErr != nil {
			outcome.Results = []string{}
			outcome.Error = ErrorKind(solveErr)
		}
		result.Queries = append(result.Queries, outcome)

		if msg := checkExpectation(step, outcome, solveErr); msg != "" {
			result.AddError(fmt.Sprintf("queries[%d] %q: %s", i, step.Formula, msg))
		}
	}

	return result, nil
}

func buildWorld(s *Scenario) (*world.World, error) {
	if s.World != nil {
		return s.World.Build(s.Name)
	}
	return world.ReadFile(s.WorldFile)
}

// ErrorKind classifies a query error into one of the Error* constants.
func ErrorKind(err error) string {
	switch {
	case formula.IsSyntaxError(err):
		return ErrorSyntax
	case eval.IsUnboundVariable(err):
		return ErrorUnboundVariable
	case eval.IsDanglingReference(err):
		return ErrorDanglingReference
	case eval.IsStepsExceeded(err):
		return ErrorStepsExceeded
	default:
		return ErrorOther
	}
}

// checkExpectation returns a failure message, or "" if outcome matches.
func checkExpectation(step QueryStep, outcome QueryOutcome, err error) string {
	if step.ExpectError != "" {
		if err == nil {
			return fmt.Sprintf("expected %s error, got results %v", step.ExpectError, outcome.Results)
		}
		if outcome.Error != step.ExpectError {
			return fmt.Sprintf("expected %s error, got %s: %v", step.ExpectError, outcome.Error, err)
		}
		return ""
	}

	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}

	want := slices.Clone(step.Expect)
	slices.Sort(want)
	want = slices.Compact(want)
	if !slices.Equal(want, outcome.Results) {
		return fmt.Sprintf("expected [%s], got [%s]", strings.Join(want, " "), strings.Join(outcome.Results, " "))
	}
	return ""
}
