// Package d2 holds the r2 vector, box and transform helpers the 2D kernel
// builds on.
package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Elem returns a vector with both components set to v.
func Elem(v float64) r2.Vec { return r2.Vec{X: v, Y: v} }

// EqualWithin reports whether a and b differ by at most tol on each axis.
func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// LTEZero reports whether any component of a is zero or negative.
func LTEZero(a r2.Vec) bool { return a.X <= 0 || a.Y <= 0 }

func MinElem(a, b r2.Vec) r2.Vec { return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)} }

func MaxElem(a, b r2.Vec) r2.Vec { return r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)} }

func AbsElem(a r2.Vec) r2.Vec { return r2.Vec{X: math.Abs(a.X), Y: math.Abs(a.Y)} }

func MulElem(a, b r2.Vec) r2.Vec { return r2.Vec{X: a.X * b.X, Y: a.Y * b.Y} }

func DivElem(a, b r2.Vec) r2.Vec { return r2.Vec{X: a.X / b.X, Y: a.Y / b.Y} }

// Set is a list of points, such as polygon vertices.
type Set []r2.Vec

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
