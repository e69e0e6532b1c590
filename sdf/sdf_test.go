package sdf_test

import (
	"math"
	"testing"

	"github.com/soypat/meisseli/form2/must2"
	"github.com/soypat/meisseli/form3/must3"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestVolumeBox(t *testing.T) {
	const tol = 0.02
	box := must3.Box(r3.Vec{X: 10, Y: 4, Z: 2}, 0)
	got := sdf.Volume3D(box, 0.1)
	want := 80.0
	if math.Abs(got-want)/want > tol {
		t.Errorf("box volume: got %g, want %g", got, want)
	}
	cut := sdf.Cut3D(box, r3.Vec{}, r3.Vec{Z: 1})
	got = sdf.Volume3D(cut, 0.1)
	if math.Abs(got-want/2)/want > tol {
		t.Errorf("cut box volume: got %g, want %g", got, want/2)
	}
	if bb := cut.Bounds(); bb.Min.Z != 0 {
		t.Errorf("cut bounds not trimmed: %v", bb)
	}
}

func TestIsEmptyDifference(t *testing.T) {
	small := must3.Box(r3.Vec{X: 1, Y: 1, Z: 1}, 0)
	large := must3.Box(r3.Vec{X: 2, Y: 2, Z: 2}, 0)
	if !sdf.IsEmpty3D(sdf.Difference3D(small, large), 0.05) {
		t.Error("difference of a contained box should be empty")
	}
	if sdf.IsEmpty3D(sdf.Difference3D(large, small), 0.05) {
		t.Error("difference with a hollow should not be empty")
	}
}

func TestAreaCentroid(t *testing.T) {
	const tol = 1e-2
	rect := must2.Box(r2.Vec{X: 4, Y: 2}, 0)
	moved := sdf.Transform2D(rect, sdf.Translate2D(r2.Vec{X: 3, Y: -1}))
	area, c := sdf.AreaCentroid2D(moved, 0.01)
	if math.Abs(area-8) > 8*tol {
		t.Errorf("area: got %g, want 8", area)
	}
	if math.Abs(c.X-3) > tol || math.Abs(c.Y+1) > tol {
		t.Errorf("centroid: got %v, want {3 -1}", c)
	}
}

func TestTransformInverse(t *testing.T) {
	const tol = 1e-12
	m := sdf.Translate3D(r3.Vec{X: 1, Y: 2, Z: 3}).Mul(sdf.RotateX(0.3)).Mul(sdf.RotateZ(-1.2))
	if !m.Mul(m.Inverse()).Equals(sdf.Identity3D(), tol) {
		t.Error("m * inv(m) is not identity")
	}
	mirror := sdf.Mirror3D(r3.Vec{Z: 2}, r3.Vec{Z: 1})
	p := mirror.MulPosition(r3.Vec{X: 1, Y: 1, Z: 0})
	if math.Abs(p.Z-4) > tol || math.Abs(p.X-1) > tol {
		t.Errorf("mirror: got %v", p)
	}
	if mirror.Det() >= 0 {
		t.Error("mirror determinant should be negative")
	}
	r := sdf.Rotate2D(math.Pi / 2).MulPosition(r2.Vec{X: 1})
	if math.Abs(r.X) > tol || math.Abs(r.Y-1) > tol {
		t.Errorf("rotate2d: got %v", r)
	}
	m2 := sdf.Translate2D(r2.Vec{X: 4, Y: -2}).Mul(sdf.Rotate2D(0.7)).Mul(sdf.Scale2D(r2.Vec{X: 2, Y: 3}))
	q := r2.Vec{X: 1.5, Y: -0.25}
	back := m2.Inverse().MulPosition(m2.MulPosition(q))
	if math.Abs(back.X-q.X) > 1e-9 || math.Abs(back.Y-q.Y) > 1e-9 {
		t.Errorf("2d inverse round trip: got %v, want %v", back, q)
	}
}

func TestMulBox(t *testing.T) {
	const tol = 1e-9
	box := r3.Box{Min: r3.Vec{X: -1, Y: -2, Z: -3}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	got := sdf.Translate3D(r3.Vec{X: 10}).Mul(sdf.RotateZ(math.Pi / 2)).MulBox(box)
	want := r3.Box{Min: r3.Vec{X: 8, Y: -1, Z: -3}, Max: r3.Vec{X: 12, Y: 1, Z: 3}}
	if r3.Norm(r3.Sub(got.Min, want.Min)) > tol || r3.Norm(r3.Sub(got.Max, want.Max)) > tol {
		t.Errorf("rotated box: got %v, want %v", got, want)
	}
	rect := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 2, Y: 1}}
	got2 := sdf.Rotate2D(math.Pi).MulBox(rect)
	if math.Abs(got2.Min.X+2) > tol || math.Abs(got2.Min.Y+1) > tol || math.Abs(got2.Max.X) > tol || math.Abs(got2.Max.Y) > tol {
		t.Errorf("rotated rect: got %v", got2)
	}
}

func TestRaycast(t *testing.T) {
	box := must3.Box(r3.Vec{X: 2, Y: 2, Z: 2}, 0)
	hit, dist, _ := sdf.Raycast3(box, r3.Vec{Z: 10}, r3.Vec{Z: -1}, 1, 1e-6, 100, 200)
	if dist < 0 {
		t.Fatal("ray missed box")
	}
	if math.Abs(hit.Z-1) > 1e-5 || math.Abs(dist-9) > 1e-5 {
		t.Errorf("hit %v at %g, want z=1 at 9", hit, dist)
	}
	_, dist, _ = sdf.Raycast3(box, r3.Vec{X: 5, Z: 10}, r3.Vec{Z: -1}, 1, 1e-6, 100, 200)
	if dist >= 0 {
		t.Error("ray should miss box")
	}
}

func TestLoftBounds(t *testing.T) {
	s := sdf.Loft3D(must2.Circle(2), must2.Circle(1), 4, 0)
	bb := s.Bounds()
	if bb.Min.Z != -2 || bb.Max.Z != 2 || bb.Max.X != 2 {
		t.Errorf("unexpected loft bounds %v", bb)
	}
	if d := s.Evaluate(r3.Vec{X: 1.5, Z: 1.9}); d <= 0 {
		t.Errorf("point outside narrow end reported inside: %g", d)
	}
	if d := s.Evaluate(r3.Vec{X: 1.5, Z: -1.9}); d >= 0 {
		t.Errorf("point inside wide end reported outside: %g", d)
	}
}
