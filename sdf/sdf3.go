package sdf

import (
	"math"
	"strconv"

	"github.com/soypat/meisseli/internal/d2"
	"github.com/soypat/meisseli/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// 3D signed distance utility functions.

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

type SDF3Union interface {
	SDF3
	SetMin(MinFunc)
}

type SDF3Diff interface {
	SDF3
	SetMax(MaxFunc)
}

// extrude3 extrudes an SDF2 to an SDF3.
type extrude3 struct {
	sdf    SDF2
	height float64
	bb     r3.Box
}

// Extrude3D does a linear extrude on an SDF2. The resulting
// solid is centered on the z=0 plane.
func Extrude3D(sdf SDF2, height float64) SDF3 {
	if sdf == nil {
		panic("nil SDF2 argument")
	}
	s := extrude3{}
	s.sdf = sdf
	s.height = height / 2
	// work out the bounding box
	bb := sdf.Bounds()
	s.bb = r3.Box{Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: -s.height}, Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: s.height}}
	return &s
}

// Evaluate returns the minimum distance to an extrusion.
func (s *extrude3) Evaluate(p r3.Vec) float64 {
	// sdf for the projected 2d surface
	a := s.sdf.Evaluate(r2.Vec{X: p.X, Y: p.Y})
	// sdf for the extrusion region: z = [-height, height]
	b := math.Abs(p.Z) - s.height
	// return the intersection
	return math.Max(a, b)
}

// Bounds returns the bounding box for an extrusion.
func (s *extrude3) Bounds() r3.Box {
	return s.bb
}

// Extrude/Loft
// Blend between sdf0 and sdf1 as we move from bottom to top.

// loft3 is an extrusion between two SDF2s.
type loft3 struct {
	sdf0, sdf1 SDF2
	height     float64
	round      float64
	bb         r3.Box
}

// Loft3D extrudes an SDF3 that transitions between two SDF2 shapes.
// sdf0 sits at z=-height/2 and sdf1 at z=height/2.
func Loft3D(sdf0, sdf1 SDF2, height, round float64) SDF3 {
	switch {
	case sdf0 == nil || sdf1 == nil:
		panic("nil sdf argument")
	case height <= 0:
		panic("loft height must be positive")
	case round < 0 || height < 2*round:
		panic("invalid loft rounding")
	}
	s := loft3{
		sdf0:   sdf0,
		sdf1:   sdf1,
		height: (height / 2) - round,
		round:  round,
	}
	// work out the bounding box
	bb0 := d2.Box(sdf0.Bounds())
	bb1 := d2.Box(sdf1.Bounds())
	bb := bb0.Extend(bb1)
	s.bb = r3.Box{
		Min: r3.Sub(r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: -s.height}, d3.Elem(round)),
		Max: r3.Add(r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: s.height}, d3.Elem(round))}
	return &s
}

// Evaluate returns the minimum distance to a loft extrusion.
func (s *loft3) Evaluate(p r3.Vec) float64 {
	// work out the mix value as a function of height
	k := Clamp((0.5*p.Z/s.height)+0.5, 0, 1)
	// mix the 2D SDFs
	a0 := s.sdf0.Evaluate(r2.Vec{X: p.X, Y: p.Y})
	a1 := s.sdf1.Evaluate(r2.Vec{X: p.X, Y: p.Y})
	a := Mix(a0, a1, k)

	b := math.Abs(p.Z) - s.height
	var d float64
	if b > 0 {
		// outside the object Z extent
		if a < 0 {
			// inside the boundary
			d = b
		} else {
			// outside the boundary
			d = math.Sqrt((a * a) + (b * b))
		}
	} else {
		// within the object Z extent
		if a < 0 {
			// inside the boundary
			d = math.Max(a, b)
		} else {
			// outside the boundary
			d = a
		}
	}
	return d - s.round
}

// Bounds returns the bounding box for a loft extrusion.
func (s *loft3) Bounds() r3.Box {
	return s.bb
}

// Transform SDF3 (rotation, translation - distance preserving)

// transform3 is an SDF3 transformed with a 4x4 transformation matrix.
type transform3 struct {
	sdf     SDF3
	matrix  M44
	inverse M44
	bb      r3.Box
}

// Transform3D applies a transformation matrix to an SDF3.
func Transform3D(sdf SDF3, matrix M44) SDF3 {
	if sdf == nil {
		panic("nil SDF3 argument")
	}
	s := transform3{}
	s.sdf = sdf
	s.matrix = matrix
	s.inverse = matrix.Inverse()
	s.bb = matrix.MulBox(sdf.Bounds())
	return &s
}

// Evaluate returns the minimum distance to a transformed SDF3.
// Distance is *not* preserved with scaling.
func (s *transform3) Evaluate(p r3.Vec) float64 {
	return s.sdf.Evaluate(s.inverse.MulPosition(p))
}

// Bounds returns the bounding box of a transformed SDF3.
func (s *transform3) Bounds() r3.Box {
	return s.bb
}

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
	min MinFunc
	bb  r3.Box
}

// Union3D returns the union of multiple SDF3 objects.
// Union3D will panic if arguments list is empty or if
// an argument SDF3 is nil.
func Union3D(sdf ...SDF3) SDF3Union {
	if len(sdf) < 2 {
		panic("union require at least 2 sdfs")
	}
	s := union3{
		sdf: sdf,
	}
	for i, x := range s.sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union3D")
		}
	}
	// work out the bounding box
	bb := d3.Box(s.sdf[0].Bounds())
	for _, x := range s.sdf {
		bb = bb.Extend(d3.Box(x.Bounds()))
	}
	s.bb = r3.Box(bb)
	s.min = math.Min
	return &s
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	var d float64
	for i, x := range s.sdf {
		if i == 0 {
			d = x.Evaluate(p)
		} else {
			d = s.min(d, x.Evaluate(p))
		}
	}
	return d
}

// SetMin sets the minimum function to control blending.
func (s *union3) SetMin(min MinFunc) {
	s.min = min
}

// Bounds returns the bounding box of an SDF3 union.
func (s *union3) Bounds() r3.Box {
	return s.bb
}

// diff3 is the difference of two SDF3s, s0 - s1.
type diff3 struct {
	s0  SDF3
	s1  SDF3
	max MaxFunc
	bb  r3.Box
}

// Difference3D returns the difference of two SDF3s, s0 - s1.
// Difference3D will panic if one any of the arguments is nil.
func Difference3D(s0, s1 SDF3) SDF3Diff {
	if s1 == nil || s0 == nil {
		panic("nil argument to Difference3D")
	}
	s := diff3{}
	s.s0 = s0
	s.s1 = s1
	s.max = math.Max
	s.bb = s0.Bounds()
	return &s
}

// Evaluate returns the minimum distance to the SDF3 difference.
func (s *diff3) Evaluate(p r3.Vec) float64 {
	return s.max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

// SetMax sets the maximum function to control blending.
func (s *diff3) SetMax(max MaxFunc) {
	s.max = max
}

// Bounds returns the bounding box of the SDF3 difference.
func (s *diff3) Bounds() r3.Box {
	return s.bb
}

// intersection3 is the intersection of two SDF3s.
type intersection3 struct {
	s0  SDF3
	s1  SDF3
	max MaxFunc
	bb  r3.Box
}

// Intersect3D returns the intersection of two SDF3s.
// Intersect3D will panic if any of the arguments are nil.
func Intersect3D(s0, s1 SDF3) SDF3Diff {
	if s0 == nil || s1 == nil {
		panic("nil argument to Intersect3D")
	}
	s := intersection3{}
	s.s0 = s0
	s.s1 = s1
	s.max = math.Max
	s.bb = intersectBox3(s0.Bounds(), s1.Bounds())
	return &s
}

// Evaluate returns the minimum distance to the SDF3 intersection.
func (s *intersection3) Evaluate(p r3.Vec) float64 {
	return s.max(s.s0.Evaluate(p), s.s1.Evaluate(p))
}

// SetMax sets the maximum function to control blending.
func (s *intersection3) SetMax(max MaxFunc) {
	s.max = max
}

// Bounds returns the bounding box of an SDF3 intersection.
func (s *intersection3) Bounds() r3.Box {
	return s.bb
}

// cut3 makes a planar cut through an SDF3.
type cut3 struct {
	sdf SDF3
	a   r3.Vec // point on plane
	n   r3.Vec // normal to plane
	bb  r3.Box // bounding box
}

// Cut3D cuts an SDF3 along a plane passing through a with normal n.
// The SDF3 on the same side as the normal remains.
func Cut3D(sdf SDF3, a, n r3.Vec) SDF3 {
	if sdf == nil {
		panic("nil SDF3 argument")
	}
	s := cut3{}
	s.sdf = sdf
	s.a = a
	n = r3.Unit(n)
	s.n = r3.Scale(-1, n)
	s.bb = cutBox3(sdf.Bounds(), a, n)
	return &s
}

// Evaluate returns the minimum distance to the cut SDF3.
func (s *cut3) Evaluate(p r3.Vec) float64 {
	return math.Max(r3.Dot(r3.Sub(p, s.a), s.n), s.sdf.Evaluate(p))
}

// Bounds returns the bounding box of the cut SDF3.
func (s *cut3) Bounds() r3.Box {
	return s.bb
}

// cutBox3 trims a bounding box by the half-space on the normal side of a
// plane. Only axis aligned normals trim; any other plane keeps the box.
func cutBox3(bb r3.Box, a, n r3.Vec) r3.Box {
	const tol = 1e-12
	switch {
	case math.Abs(n.X-1) < tol:
		bb.Min.X = math.Min(math.Max(bb.Min.X, a.X), bb.Max.X)
	case math.Abs(n.X+1) < tol:
		bb.Max.X = math.Max(math.Min(bb.Max.X, a.X), bb.Min.X)
	case math.Abs(n.Y-1) < tol:
		bb.Min.Y = math.Min(math.Max(bb.Min.Y, a.Y), bb.Max.Y)
	case math.Abs(n.Y+1) < tol:
		bb.Max.Y = math.Max(math.Min(bb.Max.Y, a.Y), bb.Min.Y)
	case math.Abs(n.Z-1) < tol:
		bb.Min.Z = math.Min(math.Max(bb.Min.Z, a.Z), bb.Max.Z)
	case math.Abs(n.Z+1) < tol:
		bb.Max.Z = math.Max(math.Min(bb.Max.Z, a.Z), bb.Min.Z)
	}
	return bb
}

// intersectBox3 returns the overlap of two boxes. Disjoint boxes
// collapse to a zero sized box.
func intersectBox3(a, b r3.Box) r3.Box {
	bb := r3.Box{Min: d3.MaxElem(a.Min, b.Min), Max: d3.MinElem(a.Max, b.Max)}
	bb.Max = d3.MaxElem(bb.Max, bb.Min)
	return bb
}
