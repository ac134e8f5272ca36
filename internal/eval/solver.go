package eval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/simquery/internal/formula"
	"github.com/roach88/simquery/internal/world"
)

// Solver answers queries against a fixed world.
//
// A Solver may be reused for any number of sequential Solve calls. Each
// candidate entity is evaluated in a fresh Env, so no binding leaks from
// one candidate to the next.
type Solver struct {
	world    *world.World
	logger   *zap.Logger
	maxSteps int
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger used for per-query debug output.
// Default: zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxSteps caps the quantifier iterations of a single Solve call.
//
// Default: 0 (unlimited). A world of n entities and a query nesting d
// unguarded quantifiers costs up to n^(1+d) steps.
func WithMaxSteps(maxSteps int) Option {
	return func(s *Solver) {
		s.maxSteps = maxSteps
	}
}

// New creates a Solver over w.
func New(w *world.World, opts ...Option) *Solver {
	s := &Solver{
		world:  w,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve parses text as a query and returns the ids of every entity that
// satisfies it.
//
// Parse failures return a *formula.SyntaxError unchanged. Evaluation is
// fail-fast: the first error aborts the scan and is returned wrapped with
// the candidate that raised it.
func (s *Solver) Solve(ctx context.Context, text string) (ResultSet, error) {
	q, err := formula.Parse(text)
	if err != nil {
		return ResultSet{}, err
	}
	return s.SolveQuery(ctx, q)
}

// SolveQuery is like Solve for an already parsed query.
func (s *Solver) SolveQuery(ctx context.Context, q *formula.Query) (ResultSet, error) {
	b := newBudget(ctx, s.maxSteps)
	w := newWalker(s.world, b)
	results := NewResultSet()

	for _, e := range s.world.Entities() {
		if err := ctx.Err(); err != nil {
			return ResultSet{}, err
		}
		ok, err := w.eval(q.Body, NewEnv(q.Var, e))
		if err != nil {
			s.logger.Debug("query failed",
				zap.String("query", q.String()),
				zap.String("candidate", e.ID),
				zap.Int("steps", b.Steps()),
				zap.Error(err))
			return ResultSet{}, fmt.Errorf("evaluating %s = %s: %w", q.Var, e.ID, err)
		}
		if ok {
			results.add(e.ID)
		}
	}

	s.logger.Debug("query solved",
		zap.String("query", q.String()),
		zap.Int("candidates", s.world.Len()),
		zap.Int("matches", results.Len()),
		zap.Int("steps", b.Steps()))
	return results, nil
}

// World returns the world the Solver queries.
func (s *Solver) World() *world.World {
	return s.world
}
