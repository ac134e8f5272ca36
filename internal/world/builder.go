package world

// Builder creates entities and links them while enforcing the creation-time
// invariants: unique ids, no self connections, symmetric links.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	ids      IDGenerator
	entities []*Entity
	byID     map[string]*Entity
}

// NewBuilder creates a Builder drawing ids from gen.
// A nil gen defaults to a fresh CounterGenerator.
func NewBuilder(gen IDGenerator) *Builder {
	if gen == nil {
		gen = NewCounterGenerator()
	}
	return &Builder{
		ids:  gen,
		byID: make(map[string]*Entity),
	}
}

// Add creates a new entity with the next id and appends it to the world.
func (b *Builder) Add(class Class, typ string, params ...Param) *Entity {
	e := &Entity{
		ID:         b.ids.Generate(),
		Class:      class,
		Type:       typ,
		Parameters: Params(params),
	}
	b.entities = append(b.entities, e)
	b.byID[e.ID] = e
	return e
}

// Named sets the display name of e and returns it.
func (b *Builder) Named(e *Entity, name string) *Entity {
	e.Name = name
	return e
}

// Connect links a and c in both directions. Connecting an already linked
// pair is a no-op.
// Returns ErrSelfConnection if a and c are the same entity.
func (b *Builder) Connect(a, c *Entity) error {
	if a == c || a.ID == c.ID {
		return ErrSelfConnection
	}
	if !a.ConnectedTo(c.ID) {
		a.Connections = append(a.Connections, c.ID)
	}
	if !c.ConnectedTo(a.ID) {
		c.Connections = append(c.Connections, a.ID)
	}
	return nil
}

// Len returns the number of entities created so far.
func (b *Builder) Len() int {
	return len(b.entities)
}

// World returns a World holding every entity created so far, in creation
// order. The Builder must not be used to modify those entities afterwards.
func (b *Builder) World() (*World, error) {
	return New(b.entities...)
}
