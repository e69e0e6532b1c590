package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an affine 3D transform: a 3x3 linear part followed by a
// translation. The zero value is the identity.
type Transform struct {
	// lin is the row major linear part with the identity subtracted.
	lin [9]float64
	off r3.Vec
}

// NewTransform returns the affine transform with the three rows of
// the argument, each holding 3 linear terms and the translation.
func NewTransform(rows []float64) Transform {
	if len(rows) != 12 {
		panic("affine 3D transform needs 12 values")
	}
	var t Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t.set(i, j, rows[i*4+j])
		}
	}
	t.off = r3.Vec{X: rows[3], Y: rows[7], Z: rows[11]}
	return t
}

// Rotation returns the transform rotating by q about the origin.
func Rotation(q r3.Rotation) Transform {
	var t Transform
	cols := [3]r3.Vec{q.Rotate(r3.Vec{X: 1}), q.Rotate(r3.Vec{Y: 1}), q.Rotate(r3.Vec{Z: 1})}
	for j, c := range cols {
		t.set(0, j, c.X)
		t.set(1, j, c.Y)
		t.set(2, j, c.Z)
	}
	return t
}

// At returns the linear part element at row i, column j.
func (t Transform) At(i, j int) float64 {
	if i == j {
		return t.lin[i*3+j] + 1
	}
	return t.lin[i*3+j]
}

func (t *Transform) set(i, j int, v float64) {
	if i == j {
		v--
	}
	t.lin[i*3+j] = v
}

// Offset returns the translation of the transform.
func (t Transform) Offset() r3.Vec { return t.off }

// Translate returns t followed by a translation of v.
func (t Transform) Translate(v r3.Vec) Transform {
	t.off = r3.Add(t.off, v)
	return t
}

// Transform applies the transform to the position v.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Add(t.linear(v), t.off)
}

func (t Transform) linear(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: t.At(0, 0)*v.X + t.At(0, 1)*v.Y + t.At(0, 2)*v.Z,
		Y: t.At(1, 0)*v.X + t.At(1, 1)*v.Y + t.At(1, 2)*v.Z,
		Z: t.At(2, 0)*v.X + t.At(2, 1)*v.Y + t.At(2, 2)*v.Z,
	}
}

// Mul returns the transform applying b first and t second.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	var m Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.set(i, j, t.At(i, 0)*b.At(0, j)+t.At(i, 1)*b.At(1, j)+t.At(i, 2)*b.At(2, j))
		}
	}
	m.off = t.Transform(b.off)
	return m
}

// Det returns the determinant of the linear part. Negative values belong
// to transforms that mirror space.
func (t Transform) Det() float64 {
	return t.At(0, 0)*(t.At(1, 1)*t.At(2, 2)-t.At(1, 2)*t.At(2, 1)) -
		t.At(0, 1)*(t.At(1, 0)*t.At(2, 2)-t.At(1, 2)*t.At(2, 0)) +
		t.At(0, 2)*(t.At(1, 0)*t.At(2, 1)-t.At(1, 1)*t.At(2, 0))
}

// Inv returns the inverse transform. A singular transform has no inverse
// and Inv returns the transform collapsing space onto the origin.
func (t Transform) Inv() Transform {
	if t == (Transform{}) {
		return t
	}
	det := t.Det()
	if math.Abs(det) < 1e-16 {
		return NewTransform(make([]float64, 12))
	}
	d := 1 / det
	// Adjugate over the determinant; element (i,j) is the cofactor of (j,i).
	var m Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r0, r1 := (j+1)%3, (j+2)%3
			c0, c1 := (i+1)%3, (i+2)%3
			m.set(i, j, (t.At(r0, c0)*t.At(r1, c1)-t.At(r0, c1)*t.At(r1, c0))*d)
		}
	}
	m.off = r3.Scale(-1, m.linear(t.off))
	return m
}

// EqualWithin reports whether every element of t and b differ by at most tol.
func (t Transform) EqualWithin(b Transform, tol float64) bool {
	for i := range t.lin {
		if math.Abs(t.lin[i]-b.lin[i]) > tol {
			return false
		}
	}
	return EqualWithin(t.off, b.off, tol)
}
