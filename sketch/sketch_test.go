package sketch_test

import (
	"math"
	"testing"

	"github.com/soypat/meisseli/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-6

func outline(t *testing.T, outerD, boxh float64) sketch.Profile {
	t.Helper()
	p, err := sketch.NewBuilder().
		Add(sketch.Circle(outerD / 2)).
		Intersect(sketch.Rect(107, boxh)).
		Build()
	require.NoError(t, err)
	return p
}

func TestInlineRadius(t *testing.T) {
	const (
		battD = 18.5
		wall  = 1.5
		outer = battD + 6
		boxh  = battD + 2*wall
	)
	out := outline(t, outer, boxh)
	in, err := sketch.NewBuilder().Add(out).Offset(-wall).Build()
	require.NoError(t, err)
	// Along X the circle bounds the region, along Y the flat cut does.
	assert.InDelta(t, 0, in.Region().Evaluate(r2.Vec{X: 10.75}), eps)
	assert.InDelta(t, 0, in.Region().Evaluate(r2.Vec{Y: boxh/2 - wall}), eps)
	assert.True(t, in.Contains(r2.Vec{X: 10.7}))
	assert.False(t, in.Contains(r2.Vec{X: 10.8}))
}

func TestProfileReuseNonDestructive(t *testing.T) {
	base := outline(t, 24.5, 21.5)
	areaBefore, _ := base.Area()
	pt := r2.Vec{X: 11, Y: 3}
	dBefore := base.Region().Evaluate(pt)
	vBefore := base.Vertices()

	derived, err := sketch.NewBuilder().
		Add(base).
		Offset(-1.5).
		Subtract(sketch.Circle(4)).
		Add(sketch.At(sketch.Rect(2, 2), 0, 0)).
		Build()
	require.NoError(t, err)
	areaDerived, _ := derived.Area()
	require.Less(t, areaDerived, areaBefore)

	areaAfter, _ := base.Area()
	assert.Equal(t, areaBefore, areaAfter)
	assert.Equal(t, dBefore, base.Region().Evaluate(pt))
	assert.Equal(t, vBefore, base.Vertices())
}

func TestOperatorOrder(t *testing.T) {
	big := sketch.Rect(10, 10)
	hole := sketch.Circle(3)
	plug := sketch.Circle(1)
	// Plug added after the hole fills the center back in.
	p1, err := sketch.NewBuilder().Add(big).Subtract(hole).Add(plug).Build()
	require.NoError(t, err)
	// Hole subtracted after the plug removes it again.
	p2, err := sketch.NewBuilder().Add(big).Add(plug).Subtract(hole).Build()
	require.NoError(t, err)
	assert.True(t, p1.Contains(r2.Vec{}))
	assert.False(t, p2.Contains(r2.Vec{}))
}

func TestRectVertices(t *testing.T) {
	p, err := sketch.NewBuilder().Add(sketch.AlignedRect(4, 2, sketch.Max, sketch.Center)).Build()
	require.NoError(t, err)
	bb := p.Bounds()
	assert.InDelta(t, -4, bb.Min.X, eps)
	assert.InDelta(t, 0, bb.Max.X, eps)
	groups := p.Vertices().GroupBy(sketch.X)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.InDelta(t, -4, groups[0][0].Pos.X, eps)
	sorted := p.Vertices().SortBy(sketch.Y)
	assert.InDelta(t, -1, sorted[0].Pos.Y, eps)
	assert.InDelta(t, 1, sorted[len(sorted)-1].Pos.Y, eps)
}

func TestFillet(t *testing.T) {
	b := sketch.NewBuilder().
		Add(sketch.AlignedRect(4, 2, sketch.Max, sketch.Center)).
		Fillet(sketch.Group(sketch.X, 0), 0.5)
	vs, err := b.Vertices()
	require.NoError(t, err)
	assert.Len(t, vs, 2, "filleted corners are no longer vertices")
	p, err := b.Build()
	require.NoError(t, err)
	// Sharp corner region removed, right corners untouched.
	assert.False(t, p.Contains(r2.Vec{X: -3.97, Y: 0.97}))
	assert.True(t, p.Contains(r2.Vec{X: -0.03, Y: 0.97}))
	area, _ := p.Area()
	want := 8 - 2*(1-math.Pi/4)*0.25
	assert.InDelta(t, want, area, 0.02)
}

func TestFilletErrors(t *testing.T) {
	_, err := sketch.NewBuilder().
		Add(sketch.Rect(4, 2)).
		Fillet(sketch.Group(sketch.X, 0), 2.5).
		Build()
	var gerr *sketch.GeometryError
	require.ErrorAs(t, err, &gerr, "radius larger than the adjacent edges")

	_, err = sketch.NewBuilder().
		Add(sketch.Circle(2)).
		Fillet(sketch.Group(sketch.X, 0), 0.5).
		Build()
	require.ErrorAs(t, err, &gerr, "circle has no corners")
}

func TestOffsetEmpty(t *testing.T) {
	_, err := sketch.NewBuilder().Add(sketch.Circle(1)).Offset(-1.5).Build()
	var gerr *sketch.GeometryError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "offset", gerr.Op)

	_, err = sketch.NewBuilder().Subtract(sketch.Circle(1)).Build()
	require.ErrorAs(t, err, &gerr)

	_, err = sketch.NewBuilder().Add(sketch.Rect(2, 2)).Intersect(sketch.At(sketch.Rect(2, 2), 10, 0)).Build()
	require.ErrorAs(t, err, &gerr)
}

func TestPrimitiveErrors(t *testing.T) {
	for name, s := range map[string]sketch.Shape{
		"circle":    sketch.Circle(0),
		"rect":      sketch.Rect(-1, 2),
		"polygon":   sketch.RegularPolygon(1, 2, false, 0),
		"polyline":  sketch.Polyline(r2.Vec{}, r2.Vec{X: 1}),
		"collinear": sketch.Polyline(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{X: 2}),
		"slot":      sketch.Slot(2, 0, 0),
	} {
		_, err := sketch.NewBuilder().Add(s).Build()
		assert.Error(t, err, name)
	}
}

func TestRegularPolygonInradius(t *testing.T) {
	// Flats on the X axis once rotated by half a sector.
	p, err := sketch.NewBuilder().Add(sketch.RegularPolygon(5, 6, true, 30)).Build()
	require.NoError(t, err)
	assert.InDelta(t, 0, p.Region().Evaluate(r2.Vec{X: 5}), eps)
	assert.InDelta(t, 0, p.Region().Evaluate(r2.Vec{Y: 5 / math.Cos(math.Pi/6)}), eps)
}

func TestSlotAndPlacement(t *testing.T) {
	p, err := sketch.NewBuilder().Add(sketch.At(sketch.Slot(10, 2, 90), 0, 5)).Build()
	require.NoError(t, err)
	bb := p.Bounds()
	assert.InDelta(t, -1, bb.Min.Y, 1e-9)
	assert.InDelta(t, 11, bb.Max.Y, 1e-9)
	assert.True(t, p.Contains(r2.Vec{Y: 10.5}))
	assert.False(t, p.Contains(r2.Vec{X: 1.2, Y: 5}))

	rot, err := sketch.NewBuilder().Add(sketch.Rotated(sketch.AlignedRect(2, 1, sketch.Min, sketch.Center), 180)).Build()
	require.NoError(t, err)
	assert.True(t, rot.Contains(r2.Vec{X: -1.5}))
	assert.False(t, rot.Contains(r2.Vec{X: 1.5}))
}

func TestTopology(t *testing.T) {
	ring, err := sketch.NewBuilder().Add(sketch.Circle(5)).Subtract(sketch.Circle(3)).Build()
	require.NoError(t, err)
	pieces, holes := ring.Topology()
	assert.Equal(t, 1, pieces)
	assert.Equal(t, 1, holes)

	pair, err := sketch.NewBuilder().
		Add(sketch.At(sketch.Circle(2), -5, 0)).
		Add(sketch.At(sketch.Circle(2), 5, 0)).
		Build()
	require.NoError(t, err)
	pieces, holes = pair.Topology()
	assert.Equal(t, 2, pieces)
	assert.Equal(t, 0, holes)
}

func TestPolylineFace(t *testing.T) {
	p, err := sketch.NewBuilder().Add(sketch.Polyline(
		r2.Vec{X: -10.75, Y: 0},
		r2.Vec{X: -5.5, Y: 3},
		r2.Vec{X: 1, Y: 0},
		r2.Vec{X: 1, Y: -6.35},
		r2.Vec{X: -8.75, Y: -6.35},
	)).Build()
	require.NoError(t, err)
	assert.True(t, p.Contains(r2.Vec{X: -4, Y: -2}))
	assert.Len(t, p.Vertices(), 5)
}

func TestText(t *testing.T) {
	label, err := sketch.NewBuilder().Add(sketch.Text("O     I", 6)).Build()
	require.NoError(t, err)
	pieces, holes := label.Topology()
	assert.Equal(t, 2, pieces, "O and I")
	assert.Equal(t, 1, holes, "the counter of the O")
	bb := label.Bounds()
	assert.InDelta(t, 0, bb.Min.X+bb.Max.X, 1e-9, "centered on the origin")
	h := bb.Max.Y - bb.Min.Y
	assert.Greater(t, h, 2.0)
	assert.Less(t, h, 6.0)
	// The gap between the glyphs is empty.
	assert.False(t, label.Contains(r2.Vec{}))

	bar, err := sketch.NewBuilder().Add(sketch.At(sketch.Text("I", 6), 3, 1)).Build()
	require.NoError(t, err)
	assert.True(t, bar.Contains(r2.Vec{X: 3, Y: 1}))
	assert.False(t, bar.Contains(r2.Vec{X: 10, Y: 1}))

	_, err = sketch.NewBuilder().Add(sketch.Text("   ", 6)).Build()
	var gerr *sketch.GeometryError
	assert.ErrorAs(t, err, &gerr)
	_, err = sketch.NewBuilder().Add(sketch.Text("I", 0)).Build()
	assert.Error(t, err)
}
