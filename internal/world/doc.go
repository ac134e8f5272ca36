// Package world provides the read-only object model that queries are
// evaluated against.
//
// A World is an ordered collection of entities. Each entity has a class
// drawn from a closed set (Body, ForceElement, Constraint, Connection,
// Joint), a free-form type tag, an ordered list of scalar parameters and a
// list of connected entity ids.
//
// INVARIANTS:
//   - Entity ids are unique within a world (enforced by New)
//   - Connections are symmetric and never point at the owning entity
//     (enforced by Builder.Connect, checked by World.Validate)
//   - Entities are never mutated once a world has been built
//
// Worlds enter the system through a Builder, random generation (Generate)
// or a document on disk (ReadDocument/ReadFile). Documents may be JSON,
// YAML or CUE.
//
// This package imports nothing internal. The formula and eval packages
// build on top of it.
package world
