package eval

import "context"

// budget counts quantifier iterations for one Solve call and enforces the
// step limit. A limit of zero means unlimited.
//
// The context is checked on every step, so a cancelled Solve stops inside
// a scan rather than after it.
type budget struct {
	ctx   context.Context
	limit int
	steps int
}

func newBudget(ctx context.Context, limit int) *budget {
	return &budget{ctx: ctx, limit: limit}
}

// step charges one step. It returns a *StepsExceededError past the limit,
// or the context error once the context is done.
func (b *budget) step() error {
	b.steps++
	if b.limit > 0 && b.steps > b.limit {
		return &StepsExceededError{Steps: b.steps, Limit: b.limit}
	}
	return b.ctx.Err()
}

// Steps returns the number of steps charged so far.
func (b *budget) Steps() int {
	return b.steps
}
