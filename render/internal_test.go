package render

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/soypat/meisseli/form3/must3"
	"github.com/soypat/meisseli/internal/d3"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestTetraMaxTriangles(t *testing.T) {
	var p [8]r3.Vec
	for i, c := range cubeCorners {
		p[i] = c.ToV3()
	}
	var dst [cubeMaxTriangles]r3.Triangle
	for mask := 0; mask < 256; mask++ {
		var v [8]float64
		for i := range v {
			v[i] = 1 + 0.1*float64(i)
			if mask&(1<<i) != 0 {
				v[i] = -v[i]
			}
		}
		n := mtToTriangles(dst[:], p, v, 0, 1e-9)
		if n > cubeMaxTriangles {
			t.Fatalf("mask %08b: got %d triangles, max %d", mask, n, cubeMaxTriangles)
		}
		if (mask == 0 || mask == 255) && n != 0 {
			t.Errorf("mask %08b: uniform cube produced %d triangles", mask, n)
		}
		for _, tri := range dst[:n] {
			if tri.IsDegenerate(1e-9) {
				t.Errorf("mask %08b: degenerate triangle %v", mask, tri)
			}
		}
	}
}

func TestTetraOrientation(t *testing.T) {
	// Single inside corner at the origin: normal must point away from it.
	var p [8]r3.Vec
	for i, c := range cubeCorners {
		p[i] = c.ToV3()
	}
	v := [8]float64{-1, 1, 1, 1, 1, 1, 1, 1}
	var dst [cubeMaxTriangles]r3.Triangle
	n := mtToTriangles(dst[:], p, v, 0, 1e-9)
	if n == 0 {
		t.Fatal("expected triangles")
	}
	for _, tri := range dst[:n] {
		if r3.Dot(tri.Normal(), r3.Sub(tri.Centroid(), p[0])) <= 0 {
			t.Errorf("triangle %v faces inside", tri)
		}
	}
}

func TestSTLWriteReadback(t *testing.T) {
	const (
		quality = 80
		tol     = 1e-5
	)
	s0 := must3.Cylinder(10, 4, 1)
	size := r3.Norm(d3.Box(s0.Bounds()).Size())
	// calculate relative tolerance
	rtol := tol * size / quality
	input, err := RenderAll(NewOctreeRenderer(s0, quality))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	output, err := ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	mismatches := 0
	for iface, expect := range input {
		got := output[iface]
		for i := range expect {
			if !d3.EqualWithin(got[i], expect[i], rtol) {
				mismatches++
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got[i], expect[i])
			}
		}
		if mismatches > 10 {
			t.Fatal("too many mismatches")
		}
	}
}

func TestOctreeSmallBuffer(t *testing.T) {
	oct := NewOctreeRenderer(must3.Cylinder(20, 8, 2), 60)
	buf := make([]r3.Triangle, 5)
	var err error
	var nt int
	var model []r3.Triangle
	for err == nil {
		nt, err = oct.ReadTriangles(buf)
		model = append(model, buf[:nt]...)
	}
	if err != io.EOF {
		t.Fatal(err)
	}
	if len(model) != oct.triangles {
		t.Errorf("triangles lost. got %d. octree read %d", len(model), oct.triangles)
	}
	all, err := RenderAll(NewOctreeRenderer(must3.Cylinder(20, 8, 2), 60))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(model) {
		t.Errorf("buffer size changed result: %d != %d", len(all), len(model))
	}
}

func TestMeshVolume(t *testing.T) {
	const (
		h, r = 10., 4.
		want = math.Pi * r * r * h
	)
	s := sdf.Transform3D(must3.Cylinder(h, r, 0), sdf.Translate3D(r3.Vec{X: 0.123, Y: -0.071, Z: 0.037}))
	model, err := RenderAll(NewOctreeRenderer(s, 100))
	if err != nil {
		t.Fatal(err)
	}
	got := meshVolume(model)
	if math.Abs(got-want)/want > 0.02 {
		t.Errorf("mesh volume %.2f, want %.2f. Negative values mean inverted normals", got, want)
	}
}

func TestKDSDF(t *testing.T) {
	model, err := RenderAll(NewOctreeRenderer(must3.Box(r3.Vec{X: 4, Y: 3, Z: 2}, 0.2), 30))
	if err != nil {
		t.Fatal(err)
	}
	s := NewKDSDF(model)
	if d := s.Evaluate(r3.Vec{Z: 0.9}); d >= 0 {
		t.Errorf("point inside mesh got distance %g", d)
	}
	if d := s.Evaluate(r3.Vec{Z: 1.5}); d <= 0 {
		t.Errorf("point outside mesh got distance %g", d)
	}
	bb := s.Bounds()
	if !d3.EqualWithin(bb.Min, r3.Vec{X: -2, Y: -1.5, Z: -1}, 0.2) || !d3.EqualWithin(bb.Max, r3.Vec{X: 2, Y: 1.5, Z: 1}, 0.2) {
		t.Errorf("unexpected mesh bounds %v", bb)
	}
}

// meshVolume returns the signed volume enclosed by a closed mesh.
func meshVolume(model []r3.Triangle) (v float64) {
	for _, t := range model {
		v += r3.Dot(t[0], r3.Cross(t[1], t[2])) / 6
	}
	return v
}
