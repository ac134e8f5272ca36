package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParseClass(t *testing.T) {
	for _, c := range Classes {
		got, err := ParseClass(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseClass("body")
	assert.Error(t, err, "class names are case-sensitive")
	_, err = ParseClass("Spring")
	assert.Error(t, err)
}

func TestEntityParam_OutOfRange(t *testing.T) {
	e := &Entity{ID: "e", Parameters: Params{IntParam(0), StringParam("")}}

	p, ok := e.Param(0)
	require.True(t, ok, "zero is a present value")
	assert.Equal(t, IntParam(0), p)

	p, ok = e.Param(1)
	require.True(t, ok, "empty string is a present value")
	assert.Equal(t, StringParam(""), p)

	_, ok = e.Param(2)
	assert.False(t, ok)
	_, ok = e.Param(-1)
	assert.False(t, ok)
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New(&Entity{ID: "a"}, &Entity{ID: "b"}, &Entity{ID: "a"})
	require.Error(t, err)

	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.ID)
}

func TestNew_PreservesOrder(t *testing.T) {
	w, err := New(&Entity{ID: "c"}, &Entity{ID: "a"}, &Entity{ID: "b"})
	require.NoError(t, err)

	var ids []string
	for _, e := range w.Entities() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, 3, w.Len())

	e, ok := w.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", e.ID)
	_, ok = w.Lookup("z")
	assert.False(t, ok)
}

func TestBuilder_ConnectIsSymmetric(t *testing.T) {
	b := NewBuilder(nil)
	a := b.Add(ClassBody, "gear")
	c := b.Add(ClassJoint, "hinge")

	require.NoError(t, b.Connect(a, c))
	require.NoError(t, b.Connect(c, a), "reconnecting is a no-op")

	assert.Equal(t, []string{c.ID}, a.Connections)
	assert.Equal(t, []string{a.ID}, c.Connections)

	w, err := b.World()
	require.NoError(t, err)
	assert.NoError(t, w.Validate())
}

func TestBuilder_RejectsSelfConnection(t *testing.T) {
	b := NewBuilder(nil)
	a := b.Add(ClassBody, "gear")

	err := b.Connect(a, a)
	assert.ErrorIs(t, err, ErrSelfConnection)
	assert.Empty(t, a.Connections)
}

func TestBuilder_UsesGenerator(t *testing.T) {
	b := NewBuilder(NewFixedGenerator("x", "y"))
	assert.Equal(t, "x", b.Add(ClassBody, "").ID)
	assert.Equal(t, "y", b.Add(ClassBody, "").ID)
	assert.Equal(t, 2, b.Len())
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	w, err := New(
		&Entity{ID: "a", Connections: []string{"a", "b"}},
		&Entity{ID: "b"},
		&Entity{ID: "c", Connections: []string{"ghost"}},
	)
	require.NoError(t, err)

	err = w.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	for _, e := range errs {
		var ie *IntegrityError
		assert.ErrorAs(t, e, &ie)
	}
	assert.Contains(t, errs[0].Error(), "itself")
	assert.Contains(t, errs[1].Error(), "not symmetric")
	assert.Contains(t, errs[2].Error(), "unknown entity")
}

func TestCounterGenerator(t *testing.T) {
	g := NewCounterGenerator()
	assert.Equal(t, "#0000", g.Generate())
	assert.Equal(t, "#0001", g.Generate())
	assert.Equal(t, "#0002", g.Generate())
}

func TestUUIDGenerator_Unique(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
