// Package harness runs query scenarios described in YAML.
//
// A scenario names a world (inline or as a document file) and a list of
// queries, each with the ids it must return or the kind of error it must
// fail with:
//
//	name: three_bodies
//	description: b1 and b2 are linked, b3 is isolated
//	world:
//	  entities:
//	    - {id: b1, class: Body, type: Body, parameters: [], connections: [b2]}
//	    - {id: b2, class: Body, type: Body, parameters: [], connections: [b1]}
//	    - {id: b3, class: Body, type: Body, parameters: [], connections: []}
//	queries:
//	  - formula: "x. exists y. connecting(x, y)"
//	    expect: [b1, b2]
//	  - formula: "x. connecting(x, z)"
//	    expect_error: unbound_variable
//
// Run executes a scenario in isolation: the world goes through a fresh
// in-memory store before it is queried, and every query is recorded as a
// run. RunWithGolden additionally snapshots the outcomes with goldie under
// testdata/golden.
package harness
