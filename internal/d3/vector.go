// Package d3 holds the r3 vector, box and transform helpers the 3D kernel
// and the mesh renderers build on.
package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Elem returns a vector with all components set to v.
func Elem(v float64) r3.Vec { return r3.Vec{X: v, Y: v, Z: v} }

// EqualWithin reports whether a and b differ by at most tol on each axis.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	d := AbsElem(r3.Sub(a, b))
	return d.X <= tol && d.Y <= tol && d.Z <= tol
}

// LTEZero reports whether any component of a is zero or negative.
func LTEZero(a r3.Vec) bool { return a.X <= 0 || a.Y <= 0 || a.Z <= 0 }

func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Max returns the largest component of a.
func Max(a r3.Vec) float64 { return math.Max(a.X, math.Max(a.Y, a.Z)) }

func AbsElem(a r3.Vec) r3.Vec { return r3.Vec{X: math.Abs(a.X), Y: math.Abs(a.Y), Z: math.Abs(a.Z)} }

// Set is a list of points, such as the corners of a box.
type Set []r3.Vec

// Bounds returns the smallest box holding every point of the set.
// It panics on an empty set.
func (s Set) Bounds() Box {
	bb := Box{Min: s[0], Max: s[0]}
	for _, v := range s[1:] {
		bb.Min = MinElem(bb.Min, v)
		bb.Max = MaxElem(bb.Max, v)
	}
	return bb
}
