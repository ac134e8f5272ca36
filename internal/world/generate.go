package world

import (
	"fmt"
	"math/rand/v2"
)

// Terms is the vocabulary used for generated string parameters.
var Terms = []string{
	"dense", "angled", "spring", "rotational", "linear", "fixed", "dynamic", "static",
	"frictionless", "elastic", "rigid", "flexible", "compliant", "inertial", "non-inertial",
	"gravitational", "electromagnetic", "hydraulic", "pneumatic", "thermal", "acoustic",
}

// typeTags and nameStems seed generated type tags and display names.
var (
	typeTags  = []string{"screw", "part", "spring", "grease", "gear", "bolt", "shaft", "hinge"}
	nameStems = []string{"object", "force", "constraint", "connection", "joint", "link", "mass", "node"}
)

// GenerateOptions configures random world generation.
type GenerateOptions struct {
	// Bodies is the number of Body entities to create.
	Bodies int

	// Connections is how many bodies each odd-indexed body samples as link
	// partners. Sampling the body itself drops that sample.
	Connections int

	// Params is the number of parameters per entity.
	Params int

	// Seed makes generation reproducible.
	Seed uint64

	// IDs supplies entity ids. Defaults to a fresh CounterGenerator.
	IDs IDGenerator
}

// DefaultGenerateOptions mirrors the CLI defaults.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{Bodies: 10, Connections: 3, Params: 10, Seed: 42}
}

// Generate builds a random world.
//
// Bodies are created first. Every odd-indexed body then samples
// opts.Connections distinct bodies and is linked to each of them through a
// new connector entity (ForceElement, Constraint, Connection or Joint)
// connected to both ends. Connectors follow the bodies in world order.
//
// The same options (including Seed) always produce the same world when the
// id generator is deterministic.
func Generate(opts GenerateOptions) (*World, error) {
	if opts.Bodies < 0 || opts.Connections < 0 || opts.Params < 0 {
		return nil, fmt.Errorf("generate: counts must be non-negative")
	}
	if opts.Connections > opts.Bodies {
		return nil, fmt.Errorf("generate: cannot sample %d link partners from %d bodies", opts.Connections, opts.Bodies)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	b := NewBuilder(opts.IDs)

	bodies := make([]*Entity, opts.Bodies)
	for i := range bodies {
		bodies[i] = b.Named(b.Add(ClassBody, pick(rng, typeTags), randomParams(rng, opts.Params)...), randomName(rng))
	}

	for i, body := range bodies {
		if i%2 == 0 {
			continue
		}
		for _, j := range rng.Perm(len(bodies))[:opts.Connections] {
			partner := bodies[j]
			if partner == body {
				continue
			}
			link := b.Named(b.Add(pick(rng, ConnectorClasses), pick(rng, typeTags), randomParams(rng, opts.Params)...), randomName(rng))
			if err := b.Connect(link, body); err != nil {
				return nil, fmt.Errorf("generate: %w", err)
			}
			if err := b.Connect(link, partner); err != nil {
				return nil, fmt.Errorf("generate: %w", err)
			}
		}
	}

	return b.World()
}

// randomParams draws n parameters. Each is an int in [1,10], a float in
// (-2.5, 2.5] or a term, with equal probability.
func randomParams(rng *rand.Rand, n int) []Param {
	params := make([]Param, n)
	for i := range params {
		switch rng.IntN(3) {
		case 0:
			params[i] = IntParam(rng.IntN(10) + 1)
		case 1:
			params[i] = FloatParam((0.5 - rng.Float64()) * 5)
		default:
			params[i] = StringParam(pick(rng, Terms))
		}
	}
	return params
}

func randomName(rng *rand.Rand) string {
	return fmt.Sprintf("%s-%03d", pick(rng, nameStems), rng.IntN(1000))
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
