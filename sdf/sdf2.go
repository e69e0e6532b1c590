package sdf

import (
	"math"

	"github.com/soypat/meisseli/internal/d2"
	"github.com/soypat/meisseli/internal/d3"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// 2D signed distance function utility functions.

// SDF2 is the interface to a 2d signed distance function object.
type SDF2 interface {
	// Evaluate takes a point in 2D space as input and returns
	// the minimum distance of the SDF2 to the point. The distance
	// is negative if the point is contained within the SDF2.
	Evaluate(p r2.Vec) float64

	// Bounds returns the bounding box that completely contains the SDF2.
	Bounds() r2.Box
}

type SDF2Union interface {
	SDF2
	SetMin(MinFunc)
}

type SDF2Diff interface {
	SDF2
	SetMax(MaxFunc)
}

// MinFunc is a minimum functions for SDF blending.
type MinFunc func(a, b float64) float64

// MaxFunc is a maximum function for SDF blending.
type MaxFunc func(a, b float64) float64

// Transform SDF2 (rotation and translation are distance preserving)

// transform2 transorms an SDF2 with rotation and translation.
type transform2 struct {
	sdf  SDF2
	mInv M33
	bb   r2.Box
}

// Transform2D applies a transformation matrix to an SDF2.
// Distance is *not* preserved with scaling.
func Transform2D(sdf SDF2, m M33) SDF2 {
	if sdf == nil {
		panic("nil SDF2 argument")
	}
	s := transform2{}
	s.sdf = sdf
	s.mInv = m.Inverse()
	s.bb = m.MulBox(sdf.Bounds())
	return &s
}

// Evaluate returns the minimum distance to a transformed SDF2.
// Distance is *not* preserved with scaling.
func (s *transform2) Evaluate(p r2.Vec) float64 {
	q := s.mInv.MulPosition(p)
	return s.sdf.Evaluate(q)
}

// Bounds returns the bounding box of a transformed SDF2.
func (s *transform2) Bounds() r2.Box {
	return s.bb
}

// slice2 creates an SDF2 from a planar slice through an SDF3.
type slice2 struct {
	sdf SDF3   // the sdf3 being sliced
	a   r3.Vec // 3d point for 2d origin
	u   r3.Vec // vector for the 2d x-axis
	v   r3.Vec // vector for the 2d y-axis
	bb  r2.Box // bounding box
}

// Slice2D returns an SDF2 created from a planar slice through an SDF3.
// a is the slice origin, u and v are the unit vectors of the 2d x and y axes.
// u and v must be orthonormal.
func Slice2D(sdf SDF3, a, u, v r3.Vec) SDF2 {
	if sdf == nil {
		panic("nil SDF3 argument")
	}
	s := slice2{
		sdf: sdf,
		a:   a,
		u:   r3.Unit(u),
		v:   r3.Unit(v),
	}
	// Project the 3d bounding box onto the plane. This is bigger than it needs
	// to be but it is always correct.
	v3 := d3.Box(sdf.Bounds()).Vertices()
	vec := make(d2.Set, len(v3))
	for i, vtx := range v3 {
		va := r3.Sub(vtx, s.a)
		vec[i] = r2.Vec{X: r3.Dot(va, s.u), Y: r3.Dot(va, s.v)}
	}
	s.bb = r2.Box(vec.Bounds())
	return &s
}

// Evaluate returns the minimum distance to the sliced SDF2.
func (s *slice2) Evaluate(p r2.Vec) float64 {
	pnew := r3.Add(s.a, r3.Scale(p.X, s.u))
	pnew = r3.Add(pnew, r3.Scale(p.Y, s.v))
	return s.sdf.Evaluate(pnew)
}

// Bounds returns the bounding box of the sliced SDF2.
func (s *slice2) Bounds() r2.Box {
	return s.bb
}

// union2 is a union of multiple SDF2 objects.
type union2 struct {
	sdf []SDF2
	min MinFunc
	bb  r2.Box
}

// Union2D returns the union of multiple SDF2 objects.
func Union2D(sdf ...SDF2) SDF2Union {
	if len(sdf) < 2 {
		panic("union requires at least 2 sdfs")
	}
	s := union2{sdf: sdf}
	for _, x := range s.sdf {
		if x == nil {
			panic("nil argument found")
		}
	}
	// work out the bounding box
	bb := d2.Box(s.sdf[0].Bounds())
	for _, x := range s.sdf {
		bb = bb.Extend(d2.Box(x.Bounds()))
	}
	s.bb = r2.Box(bb)
	s.min = math.Min
	return &s
}

// Evaluate returns the minimum distance to the SDF2 union.
func (s *union2) Evaluate(p r2.Vec) float64 {
	var d float64
	for i := range s.sdf {
		x := s.sdf[i].Evaluate(p)
		if i == 0 {
			d = x
		} else {
			d = s.min(d, x)
		}
	}
	return d
}

// SetMin sets the minimum function to control SDF2 blending.
func (s *union2) SetMin(min MinFunc) {
	s.min = min
}

// Bounds returns the bounding box of an SDF2 union.
func (s *union2) Bounds() r2.Box {
	return s.bb
}

// diff2 is the difference of two SDF2s.
type diff2 struct {
	s0  SDF2
	s1  SDF2
	max MaxFunc
	bb  r2.Box
}

// Difference2D returns the difference of two SDF2 objects, s0 - s1.
func Difference2D(s0, s1 SDF2) SDF2Diff {
	if s0 == nil || s1 == nil {
		panic("nil sdf argument")
	}
	s := diff2{}
	s.s0 = s0
	s.s1 = s1
	s.max = math.Max
	s.bb = s0.Bounds()
	return &s
}

// Evaluate returns the minimum distance to the difference of two SDF2s.
func (s *diff2) Evaluate(p r2.Vec) float64 {
	return s.max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

// SetMax sets the maximum function to control blending.
func (s *diff2) SetMax(max MaxFunc) {
	s.max = max
}

// Bounds returns the bounding box of the difference of two SDF2s.
func (s *diff2) Bounds() r2.Box {
	return s.bb
}

// offset2 offsets the distance function of an existing SDF2.
type offset2 struct {
	sdf    SDF2
	offset float64
	bb     r2.Box
}

// Offset2D returns an SDF2 that offsets the distance function of another SDF2.
// Positive offsets grow the region, negative offsets shrink it.
func Offset2D(sdf SDF2, offset float64) SDF2 {
	s := offset2{}
	s.sdf = sdf
	s.offset = offset
	// work out the bounding box
	bb := d2.Box(sdf.Bounds())
	size := d2.MaxElem(r2.Add(bb.Size(), d2.Elem(2*offset)), r2.Vec{})
	s.bb = r2.Box(d2.NewBox2(bb.Center(), size))
	return &s
}

// Evaluate returns the minimum distance to an offset SDF2.
func (s *offset2) Evaluate(p r2.Vec) float64 {
	return s.sdf.Evaluate(p) - s.offset
}

// Bounds returns the bounding box of an offset SDF2.
func (s *offset2) Bounds() r2.Box {
	return s.bb
}

// intersection2 is the intersection of two SDF2s.
type intersection2 struct {
	s0  SDF2
	s1  SDF2
	max MaxFunc
	bb  r2.Box
}

// Intersect2D returns the intersection of two SDF2s.
func Intersect2D(s0, s1 SDF2) SDF2Diff {
	if s0 == nil || s1 == nil {
		panic("nil sdf argument")
	}
	s := intersection2{}
	s.s0 = s0
	s.s1 = s1
	s.max = math.Max
	s.bb = intersectBox2(s0.Bounds(), s1.Bounds())
	return &s
}

// Evaluate returns the minimum distance to the SDF2 intersection.
func (s *intersection2) Evaluate(p r2.Vec) float64 {
	return s.max(s.s0.Evaluate(p), s.s1.Evaluate(p))
}

// SetMax sets the maximum function to control blending.
func (s *intersection2) SetMax(max MaxFunc) {
	s.max = max
}

// Bounds returns the bounding box of an SDF2 intersection.
func (s *intersection2) Bounds() r2.Box {
	return s.bb
}

// intersectBox2 returns the overlap of two boxes. Disjoint boxes
// collapse to a zero sized box.
func intersectBox2(a, b r2.Box) r2.Box {
	bb := r2.Box{Min: d2.MaxElem(a.Min, b.Min), Max: d2.MinElem(a.Max, b.Max)}
	bb.Max = d2.MaxElem(bb.Max, bb.Min)
	return bb
}
