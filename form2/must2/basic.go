package must2

import (
	"math"

	"github.com/soypat/meisseli/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const tolerance = 1e-9

// 2D Circle

// circle is the 2d signed distance object for a circle.
type circle struct {
	radius float64
	bb     r2.Box
}

// Circle returns the SDF2 for a 2d circle.
func Circle(radius float64) *circle {
	if radius <= 0 {
		panic("radius <= 0")
	}
	s := circle{}
	s.radius = radius
	d := r2.Vec{X: radius, Y: radius}
	s.bb = r2.Box{Min: r2.Scale(-1, d), Max: d}
	return &s
}

// Evaluate returns the minimum distance to a 2d circle.
func (s *circle) Evaluate(p r2.Vec) float64 {
	return r2.Norm(p) - s.radius
}

// Bounds returns the bounding box of a 2d circle.
func (s *circle) Bounds() r2.Box {
	return s.bb
}

// 2D Box (rounded corners with round > 0)

// box is the 2d signed distance object for a rectangular box.
type box struct {
	size  r2.Vec
	round float64
	bb    r2.Box
}

// Box returns a 2d box centered on the origin.
func Box(size r2.Vec, round float64) *box {
	if d2.LTEZero(size) {
		panic("box size <= 0")
	}
	if round < 0 || 2*round > math.Min(size.X, size.Y) {
		panic("invalid box rounding")
	}
	size = r2.Scale(0.5, size)
	s := box{}
	s.size = r2.Sub(size, d2.Elem(round))
	s.round = round
	s.bb = r2.Box{Min: r2.Scale(-1, size), Max: size}
	return &s
}

// Evaluate returns the minimum distance to a 2d box.
func (s *box) Evaluate(p r2.Vec) float64 {
	return sdfBox2d(p, s.size) - s.round
}

// Bounds returns the bounding box for a 2d box.
func (s *box) Bounds() r2.Box {
	return s.bb
}

// 2D Line

// line is the 2d signed distance object for a line.
type line struct {
	l     float64 // line length
	round float64 // rounding
	bb    r2.Box  // bounding box
}

// Line returns a line from (-l/2,0) to (l/2,0). A positive round
// gives the line thickness, which makes it a slot with semicircular ends.
func Line(l, round float64) *line {
	if l < 0 || round < 0 {
		panic("line length and rounding must be positive")
	}
	s := line{}
	s.l = l / 2
	s.round = round
	s.bb = r2.Box{Min: r2.Vec{X: -s.l - round, Y: -round}, Max: r2.Vec{X: s.l + round, Y: round}}
	return &s
}

// Evaluate returns the minimum distance to a 2d line.
func (s *line) Evaluate(p r2.Vec) float64 {
	p = d2.AbsElem(p)
	if p.X <= s.l {
		return p.Y - s.round
	}
	return r2.Norm(r2.Sub(p, r2.Vec{X: s.l})) - s.round
}

// Bounds returns the bounding box for a 2d line.
func (s *line) Bounds() r2.Box {
	return s.bb
}

// sdfBox2d returns the signed distance to a box of half-size s
// centered on the origin.
func sdfBox2d(p, s r2.Vec) float64 {
	p = d2.AbsElem(p)
	d := r2.Sub(p, s)
	k := math.Max(d.X, d.Y)
	if k > 0 {
		return r2.Norm(d2.MaxElem(d, r2.Vec{}))
	}
	return k
}

// Sign returns the sign of x
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}
