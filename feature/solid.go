// Package feature applies ordered solid-building operations to an
// accumulator solid. Faces are never stored as handles: they are derived
// from the current solid each time a selector runs.
package feature

import (
	"fmt"
	"math"

	"github.com/soypat/meisseli/internal/d3"
	"github.com/soypat/meisseli/sdf"
	"github.com/soypat/meisseli/sketch"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeometryError reports an empty or invalid operation result.
type GeometryError = sketch.GeometryError

// Mode is the boolean operator of a feature.
type Mode = sketch.Mode

const (
	Add       = sketch.Add
	Subtract  = sketch.Subtract
	Intersect = sketch.Intersect
)

// Solid is an immutable 3D body. Besides its distance function it carries
// the planar caps recorded by the features that built it. Caps are only
// candidates: whether a candidate is still a face of the solid is decided by
// Faces against the current distance function.
type Solid struct {
	s    sdf.SDF3
	caps []candidate
}

// candidate is a planar face recorded by a feature. The plane normal points out of the solid
// and region is negative over the candidate footprint.
type candidate struct {
	plane  Plane
	region sdf.SDF2
}

// NewSolid wraps an SDF3 without any face candidates.
func NewSolid(s sdf.SDF3) Solid { return Solid{s: s} }

// SDF returns the distance function of the solid. Nil for the zero Solid.
func (s Solid) SDF() sdf.SDF3 { return s.s }

// IsZero reports whether s is the empty accumulator.
func (s Solid) IsZero() bool { return s.s == nil }

// Bounds returns the bounding box of the solid.
func (s Solid) Bounds() r3.Box {
	if s.s == nil {
		return r3.Box{}
	}
	return s.s.Bounds()
}

// Volume estimates the enclosed volume.
func (s Solid) Volume() float64 {
	if s.s == nil {
		return 0
	}
	return sdf.Volume3D(s.s, sampleStep(s.s.Bounds()))
}

func (s Solid) String() string {
	if s.s == nil {
		return "Solid(empty)"
	}
	bb := s.Bounds()
	sz := d3.Box(bb).Size()
	return fmt.Sprintf("Solid(size=%.3gx%.3gx%.3g min=%.4g,%.4g,%.4g caps=%d)",
		sz.X, sz.Y, sz.Z, bb.Min.X, bb.Min.Y, bb.Min.Z, len(s.caps))
}

// sampleStep is the cell size used to check solids for emptiness.
func sampleStep(bb r3.Box) float64 {
	res := d3.Max(d3.Box(bb).Size()) / 48
	if res <= 0 {
		return 1
	}
	return res
}

func isEmpty(s sdf.SDF3) bool {
	if s == nil {
		return true
	}
	return sdf.IsEmpty3D(s, sampleStep(s.Bounds()))
}

// withCaps returns a copy of s with extra caps. Caps coplanar with an
// existing candidate merge into it.
func (s Solid) withCaps(extra ...candidate) Solid {
	out := Solid{s: s.s, caps: append([]candidate(nil), s.caps...)}
	for _, c := range extra {
		merged := false
		for i, have := range out.caps {
			if coplanar(have.plane, c.plane, capTol) {
				region := sdf.Transform2D(c.region, planeToPlane(c.plane, have.plane))
				out.caps[i].region = sdf.Union2D(have.region, region)
				merged = true
				break
			}
		}
		if !merged {
			out.caps = append(out.caps, c)
		}
	}
	return out
}

// transform returns the solid moved by m, which must preserve distance.
func (s Solid) transform(m sdf.M44) Solid {
	out := Solid{s: sdf.Transform3D(s.s, m)}
	for _, c := range s.caps {
		p, mirrored := c.plane.Transform(m)
		region := c.region
		if mirrored {
			region = flipY(region)
		}
		out.caps = append(out.caps, candidate{plane: p, region: region})
	}
	return out
}

// flipped returns the caps of s with reversed normals, the faces they
// leave behind when s is subtracted from another solid.
func (s Solid) flippedCaps() []candidate {
	out := make([]candidate, len(s.caps))
	for i, c := range s.caps {
		out[i] = candidate{plane: c.plane.Flipped(), region: flipY(c.region)}
	}
	return out
}

func flipY(s sdf.SDF2) sdf.SDF2 {
	return sdf.Transform2D(s, sdf.Scale2D(r2.Vec{X: 1, Y: -1}))
}

const (
	capTol = 1e-6
	// faceOffset is the distance off a candidate at which the solid is sampled
	// to decide whether the candidate is still part of the boundary.
	faceOffset = 1e-3
	// faceCells is the sampling raster along the longest side of a candidate.
	faceCells = 64
)

// Face is a planar face of a solid.
type Face struct {
	Plane Plane
	// Region is negative over the footprint the face was created with, in
	// plane coordinates. Parts of it may have been removed since; Area and
	// Centroid only count what is still boundary.
	Region   sdf.SDF2
	Area     float64
	Centroid r3.Vec
}

// Faces returns the planar faces of the solid. They are computed from the
// current distance function on every call.
func (s Solid) Faces() []Face {
	var faces []Face
	for _, c := range s.caps {
		f, ok := s.face(c)
		if ok {
			faces = append(faces, f)
		}
	}
	return faces
}

// face samples the candidate footprint and keeps the points where the solid is
// outside just above the plane and inside just below it.
func (s Solid) face(c candidate) (Face, bool) {
	bb := c.region.Bounds()
	size := r2.Sub(bb.Max, bb.Min)
	side := math.Max(size.X, size.Y) / faceCells
	if side <= 0 || s.s == nil {
		return Face{}, false
	}
	nx := int(math.Ceil(size.X / side))
	ny := int(math.Ceil(size.Y / side))
	above := r3.Scale(faceOffset, c.plane.Normal)
	var count int
	var sum r2.Vec
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			q := r2.Add(bb.Min, r2.Vec{X: (float64(i) + 0.5) * side, Y: (float64(j) + 0.5) * side})
			if c.region.Evaluate(q) >= 0 {
				continue
			}
			p := c.plane.Point(q)
			if s.s.Evaluate(r3.Add(p, above)) <= 0 || s.s.Evaluate(r3.Sub(p, above)) >= 0 {
				continue
			}
			count++
			sum = r2.Add(sum, q)
		}
	}
	// A candidate needs a few surviving samples to count as a face.
	if count < 4 {
		return Face{}, false
	}
	centroid := r2.Scale(1/float64(count), sum)
	return Face{
		Plane:    c.plane,
		Region:   c.region,
		Area:     float64(count) * side * side,
		Centroid: c.plane.Point(centroid),
	}, true
}
