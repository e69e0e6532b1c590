package d2

import "gonum.org/v1/gonum/spatial/r2"

// Transform is an affine 2D transform: a 2x2 linear part followed by a
// translation. The zero value is the identity.
type Transform struct {
	// lin is the row major linear part with the identity subtracted.
	lin [4]float64
	off r2.Vec
}

// NewTransform returns the affine transform with the two rows
// {a, b, tx} and {c, d, ty}.
func NewTransform(rows []float64) Transform {
	if len(rows) != 6 {
		panic("affine 2D transform needs 6 values")
	}
	return Transform{
		lin: [4]float64{rows[0] - 1, rows[1], rows[3], rows[4] - 1},
		off: r2.Vec{X: rows[2], Y: rows[5]},
	}
}

func (t Transform) linear() (a, b, c, d float64) {
	return t.lin[0] + 1, t.lin[1], t.lin[2], t.lin[3] + 1
}

// Mul returns the transform applying b first and t second.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	a0, a1, a2, a3 := t.linear()
	b0, b1, b2, b3 := b.linear()
	return Transform{
		lin: [4]float64{a0*b0 + a1*b2 - 1, a0*b1 + a1*b3, a2*b0 + a3*b2, a2*b1 + a3*b3 - 1},
		off: t.ApplyPos(b.off),
	}
}

// ApplyPos applies the transform to a position.
func (t Transform) ApplyPos(p r2.Vec) r2.Vec {
	a, b, c, d := t.linear()
	return r2.Vec{X: a*p.X + b*p.Y + t.off.X, Y: c*p.X + d*p.Y + t.off.Y}
}

// ApplyBox transforms a box and returns the axis aligned box holding the result.
func (t Transform) ApplyBox(box Box) Box {
	if t == (Transform{}) {
		return box
	}
	a, b, c, d := t.linear()
	// Each output axis is a sum of per-axis contributions; take the extremes of each.
	xa, xb := r2.Vec{X: a * box.Min.X, Y: c * box.Min.X}, r2.Vec{X: a * box.Max.X, Y: c * box.Max.X}
	ya, yb := r2.Vec{X: b * box.Min.Y, Y: d * box.Min.Y}, r2.Vec{X: b * box.Max.Y, Y: d * box.Max.Y}
	return Box{
		Min: r2.Add(r2.Add(MinElem(xa, xb), MinElem(ya, yb)), t.off),
		Max: r2.Add(r2.Add(MaxElem(xa, xb), MaxElem(ya, yb)), t.off),
	}
}

// Determinant returns the determinant of the linear part.
func (t Transform) Determinant() float64 {
	a, b, c, d := t.linear()
	return a*d - b*c
}

// Inverse returns the inverse transform. Singular transforms yield
// non-finite values.
func (t Transform) Inverse() Transform {
	if t == (Transform{}) {
		return t
	}
	a, b, c, d := t.linear()
	k := 1 / t.Determinant()
	inv := Transform{lin: [4]float64{d*k - 1, -b * k, -c * k, a*k - 1}}
	inv.off = r2.Scale(-1, inv.ApplyPos(t.off))
	return inv
}
