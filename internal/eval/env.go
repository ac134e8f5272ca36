package eval

import "github.com/roach88/simquery/internal/world"

// Env maps variable names to entities within the current scope.
//
// Env is a stack of frames searched from the top. A zero Env is empty and
// ready to use.
type Env struct {
	frames []frame
}

type frame struct {
	name   string
	entity *world.Entity
}

// Token records the depth of an Env before a Bind. Pass it to Unbind to
// leave the scope the Bind opened.
type Token struct {
	depth int
}

// NewEnv returns an Env with name bound to e.
func NewEnv(name string, e *world.Entity) *Env {
	return &Env{frames: []frame{{name: name, entity: e}}}
}

// Bind binds name to e, shadowing any earlier binding of name.
func (env *Env) Bind(name string, e *world.Entity) Token {
	tok := Token{depth: len(env.frames)}
	env.frames = append(env.frames, frame{name: name, entity: e})
	return tok
}

// Rebind replaces the entity of the innermost frame opened at tok. It lets
// a quantifier reuse one frame across iterations instead of pushing one per
// entity.
func (env *Env) Rebind(tok Token, e *world.Entity) {
	env.frames[tok.depth].entity = e
}

// Unbind drops every binding made since the Bind that returned tok.
func (env *Env) Unbind(tok Token) {
	clear(env.frames[tok.depth:])
	env.frames = env.frames[:tok.depth]
}

// Lookup returns the entity bound to name.
func (env *Env) Lookup(name string) (*world.Entity, error) {
	for i := len(env.frames) - 1; i >= 0; i-- {
		if env.frames[i].name == name {
			return env.frames[i].entity, nil
		}
	}
	return nil, &UnboundVariableError{Name: name}
}

// Bound reports whether name has a binding.
func (env *Env) Bound(name string) bool {
	_, err := env.Lookup(name)
	return err == nil
}

// Depth returns the number of frames, used by tests to check that scopes
// are restored.
func (env *Env) Depth() int {
	return len(env.frames)
}
