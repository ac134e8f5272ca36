// Package eval evaluates parsed queries against a world.
//
// ARCHITECTURE:
//
// The Solver enumerates every entity of the world in stored order, binds
// the query's primary variable to it in a fresh Env, and asks the
// Evaluator whether the body holds. Matching entity ids form the ResultSet.
// This is a brute-force model check: each unguarded exists or forall
// rescans the whole world, while connects is bounded by the out-degree of
// its source entity.
//
// Binding Environment:
// Env is a stack of frames. Bind pushes a frame and returns a Token holding
// the previous depth; Unbind truncates back to it. Scope exit is a
// structural pop, so a shadowed binding is restored whatever its value.
// Every quantifier defers its Unbind, so early returns and errors restore
// the environment too.
//
// Scoping:
//   - exists over an already-bound variable evaluates its body against the
//     existing binding and never scans the world.
//   - forall always rebinds its variable for its own scope.
//   - connects requires its source variable to be bound and always rebinds
//     its target.
//
// Budget:
// Each quantifier iteration is one step. WithMaxSteps caps the steps of a
// single Solve call; exceeding the cap returns a *StepsExceededError. The
// context is checked at the same points, so cancellation is observed
// inside long scans.
//
// Errors:
// Evaluation is fail-fast. The first error aborts Solve and is returned
// wrapped with the candidate id; use IsUnboundVariable, IsDanglingReference
// and IsStepsExceeded to classify it.
//
// Env, Evaluator and Solver are not safe for concurrent use. The World is
// read-only during evaluation and may be shared by several Solvers.
package eval
