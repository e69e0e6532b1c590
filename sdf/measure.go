package sdf

import (
	"math"

	"github.com/soypat/meisseli/internal/d2"
	"github.com/soypat/meisseli/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Volume3D estimates the volume enclosed by an SDF3. Space is subdivided
// with an octree until cells are smaller than resolution. Cells whose
// center distance exceeds their half diagonal are classified without
// further evaluation, so the SDF3 must never overestimate distance.
func Volume3D(s SDF3, resolution float64) float64 {
	if resolution <= 0 {
		panic("resolution must be positive")
	}
	bb := d3.Box(s.Bounds())
	size := bb.Size()
	if d3.LTEZero(size) {
		return 0
	}
	// Cells are cubes so the root is sized after the longest axis.
	side := d3.Max(size)
	return volume3(s, bb.Center(), 0.5*side, 0.5*resolution, bb)
}

func volume3(s SDF3, center r3.Vec, half, minHalf float64, bb d3.Box) float64 {
	cell := d3.NewBox(center, d3.Elem(2*half))
	if !boxOverlap3(cell, bb) {
		return 0
	}
	d := s.Evaluate(center)
	hdiag := half * math.Sqrt(3)
	full := 8 * half * half * half
	switch {
	case d >= hdiag:
		return 0
	case d <= -hdiag:
		return full
	case half <= minHalf:
		// Linear estimate of the fraction of the cell that is inside.
		return full * Clamp(0.5-d/(2*half), 0, 1)
	}
	q := 0.5 * half
	var vol float64
	for i := 0; i < 8; i++ {
		offset := r3.Vec{X: q, Y: q, Z: q}
		if i&1 != 0 {
			offset.X = -q
		}
		if i&2 != 0 {
			offset.Y = -q
		}
		if i&4 != 0 {
			offset.Z = -q
		}
		vol += volume3(s, r3.Add(center, offset), q, minHalf, bb)
	}
	return vol
}

// IsEmpty3D reports whether an SDF3 encloses no volume detectable at the
// argument resolution.
func IsEmpty3D(s SDF3, resolution float64) bool {
	return Volume3D(s, resolution) < 0.5*resolution*resolution*resolution
}

// AreaCentroid2D estimates the enclosed area and area centroid of an SDF2
// by quadtree subdivision down to cells smaller than resolution.
// A zero area returns the bounding box center as centroid.
func AreaCentroid2D(s SDF2, resolution float64) (area float64, centroid r2.Vec) {
	if resolution <= 0 {
		panic("resolution must be positive")
	}
	bb := d2.Box(s.Bounds())
	size := bb.Size()
	if d2.LTEZero(size) {
		return 0, bb.Center()
	}
	side := math.Max(size.X, size.Y)
	var moment r2.Vec
	area = area2(s, bb.Center(), 0.5*side, 0.5*resolution, bb, &moment)
	if area == 0 {
		return 0, bb.Center()
	}
	return area, r2.Scale(1/area, moment)
}

func area2(s SDF2, center r2.Vec, half, minHalf float64, bb d2.Box, moment *r2.Vec) float64 {
	cell := d2.NewBox2(center, d2.Elem(2*half))
	if !boxOverlap2(cell, bb) {
		return 0
	}
	d := s.Evaluate(center)
	hdiag := half * math.Sqrt2
	full := 4 * half * half
	var a float64
	switch {
	case d >= hdiag:
		return 0
	case d <= -hdiag:
		a = full
	case half <= minHalf:
		a = full * Clamp(0.5-d/(2*half), 0, 1)
	default:
		q := 0.5 * half
		for i := 0; i < 4; i++ {
			offset := r2.Vec{X: q, Y: q}
			if i&1 != 0 {
				offset.X = -q
			}
			if i&2 != 0 {
				offset.Y = -q
			}
			a += area2(s, r2.Add(center, offset), q, minHalf, bb, moment)
		}
		return a
	}
	*moment = r2.Add(*moment, r2.Scale(a, center))
	return a
}

func boxOverlap3(a, b d3.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

func boxOverlap2(a, b d2.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}
