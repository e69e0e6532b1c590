package assembly_test

import (
	"math"
	"testing"

	"github.com/soypat/meisseli/assembly"
	"github.com/soypat/meisseli/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func cube(t *testing.T) feature.Solid {
	t.Helper()
	s, err := feature.Box{Plane: feature.XY, Size: r3.Vec{X: 2, Y: 2, Z: 2}}.Apply(feature.Solid{})
	require.NoError(t, err)
	return s
}

func TestPlacementOrder(t *testing.T) {
	const tol = 1e-12
	// Move first, then rotate about the world X axis.
	p := assembly.At(0, -40, 0).Rotate(feature.X, 180)
	got := p.Matrix().MulPosition(r3.Vec{Z: 1})
	want := r3.Vec{Y: 40, Z: -1}
	assert.InDelta(t, 0, r3.Norm(r3.Sub(want, got)), tol)
	// Reversing the steps gives a different placement.
	q := assembly.Placement{}.Rotate(feature.X, 180).Translate(0, -40, 0)
	got = q.Matrix().MulPosition(r3.Vec{Z: 1})
	want = r3.Vec{Y: -40, Z: -1}
	assert.InDelta(t, 0, r3.Norm(r3.Sub(want, got)), tol)
	assert.Equal(t, "move(0,-40,0) rotX(180)", p.String())
	assert.Equal(t, "identity", assembly.Placement{}.String())
}

func TestPlacementImmutable(t *testing.T) {
	base := assembly.At(1, 2, 3)
	a := base.Rotate(feature.Z, 90)
	b := base.Translate(1, 0, 0)
	assert.Equal(t, "move(1,2,3)", base.String())
	assert.NotEqual(t, a.String(), b.String())
}

func TestCompose(t *testing.T) {
	s := cube(t)
	c, err := assembly.Compose(
		assembly.Entry{Name: "b", Solid: s},
		assembly.Entry{Name: "a", Solid: s, Placement: assembly.At(10, 0, 0)},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, c.Names())
	a, ok := c.Get("a")
	require.True(t, ok)
	assert.InDelta(t, 9, a.Placed.Bounds().Min.X, 1e-9)
	// The part solid itself is untouched.
	assert.InDelta(t, -1, a.Solid.Bounds().Min.X, 1e-9)
	assert.Less(t, s.SDF().Evaluate(r3.Vec{}), 0.0)
	assert.Greater(t, a.Placed.SDF().Evaluate(r3.Vec{}), 0.0)
	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestComposeRotated(t *testing.T) {
	s := cube(t)
	c, err := assembly.Compose(assembly.Entry{Name: "r", Solid: s, Placement: assembly.Placement{}.Rotate(feature.Z, 45)})
	require.NoError(t, err)
	it, _ := c.Get("r")
	assert.Less(t, it.Placed.SDF().Evaluate(r3.Vec{X: math.Sqrt2 - 0.05}), 0.0)
}

func TestComposeErrors(t *testing.T) {
	s := cube(t)
	_, err := assembly.Compose(assembly.Entry{Name: "x", Solid: s}, assembly.Entry{Name: "x", Solid: s})
	assert.ErrorContains(t, err, "duplicate")
	_, err = assembly.Compose(assembly.Entry{Name: "x"})
	assert.Error(t, err)
	_, err = assembly.Compose(assembly.Entry{Solid: s})
	assert.Error(t, err)
}
