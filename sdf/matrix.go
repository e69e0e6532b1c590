package sdf

import (
	"math"

	"github.com/soypat/meisseli/internal/d2"
	"github.com/soypat/meisseli/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// M44 is an affine transformation of 3D space, the top rows of a 4x4
// homogeneous matrix.
// The zero value is the identity transform.
type M44 struct {
	t d3.Transform
}

// M33 is an affine transformation of 2D space.
// The zero value is the identity transform.
type M33 struct {
	t d2.Transform
}

// Identity3D returns the identity 4x4 matrix.
func Identity3D() M44 { return M44{} }

// Translate3D returns a 4x4 translation matrix.
func Translate3D(v r3.Vec) M44 {
	return M44{d3.Transform{}.Translate(v)}
}

// Rotate3D returns an orthographic 4x4 rotation matrix about an axis
// passing through the origin. The angle is in radians.
func Rotate3D(axis r3.Vec, angle float64) M44 {
	q := r3.NewRotation(angle, r3.Unit(axis))
	return M44{d3.Rotation(q)}
}

// RotateX returns a 4x4 matrix with rotation about the X axis.
func RotateX(angle float64) M44 { return Rotate3D(r3.Vec{X: 1}, angle) }

// RotateZ returns a 4x4 matrix with rotation about the Z axis.
func RotateZ(angle float64) M44 { return Rotate3D(r3.Vec{Z: 1}, angle) }

// Mirror3D returns a 4x4 matrix that reflects points through the plane
// containing point with normal n.
func Mirror3D(point, n r3.Vec) M44 {
	n = r3.Unit(n)
	k := 2 * r3.Dot(point, n)
	return M44{d3.NewTransform([]float64{
		1 - 2*n.X*n.X, -2 * n.X * n.Y, -2 * n.X * n.Z, k * n.X,
		-2 * n.Y * n.X, 1 - 2*n.Y*n.Y, -2 * n.Y * n.Z, k * n.Y,
		-2 * n.Z * n.X, -2 * n.Z * n.Y, 1 - 2*n.Z*n.Z, k * n.Z,
	})}
}

// Frame3D returns the matrix mapping local coordinates onto the frame with
// the argument origin and axes. The axes are the columns of the rotation.
func Frame3D(origin, x, y, z r3.Vec) M44 {
	return M44{d3.NewTransform([]float64{
		x.X, y.X, z.X, origin.X,
		x.Y, y.Y, z.Y, origin.Y,
		x.Z, y.Z, z.Z, origin.Z,
	})}
}

// Mul multiplies 4x4 matrices. The result applies b first and a second.
func (a M44) Mul(b M44) M44 {
	return M44{a.t.Mul(b.t)}
}

// MulPosition multiplies a r3.Vec position with a rotate/translate matrix.
func (a M44) MulPosition(b r3.Vec) r3.Vec {
	return a.t.Transform(b)
}

// MulDirection applies the rotation part of the matrix to a direction.
func (a M44) MulDirection(b r3.Vec) r3.Vec {
	return r3.Sub(a.t.Transform(b), a.t.Offset())
}

// MulBox rotates/translates a 3d bounding box and resizes for axis-alignment.
func (a M44) MulBox(box r3.Box) r3.Box {
	v := d3.Box(box).Vertices()
	for i := range v {
		v[i] = a.MulPosition(v[i])
	}
	return r3.Box(v.Bounds())
}

// Inverse returns the inverse of a 4x4 matrix.
func (a M44) Inverse() M44 {
	return M44{a.t.Inv()}
}

// Det returns the determinant of a 4x4 matrix. Negative determinants
// belong to transforms that mirror space.
func (a M44) Det() float64 {
	return a.t.Det()
}

// Equals tests the equality of two matrices within a tolerance.
func (a M44) Equals(b M44, tol float64) bool {
	return a.t.EqualWithin(b.t, tol)
}

// Translate2D returns a 3x3 translation matrix.
func Translate2D(v r2.Vec) M33 {
	return M33{d2.NewTransform([]float64{
		1, 0, v.X,
		0, 1, v.Y,
	})}
}

// Scale2D returns a 3x3 scaling matrix.
// Non-uniform scaling does not preserve distance.
func Scale2D(v r2.Vec) M33 {
	return M33{d2.NewTransform([]float64{
		v.X, 0, 0,
		0, v.Y, 0,
	})}
}

// Rotate2D returns an orthographic 3x3 rotation matrix (right hand rule).
// The angle is in radians.
func Rotate2D(a float64) M33 {
	s, c := math.Sincos(a)
	return M33{d2.NewTransform([]float64{
		c, -s, 0,
		s, c, 0,
	})}
}

// Mul multiplies 3x3 matrices. The result applies b first and a second.
func (a M33) Mul(b M33) M33 {
	return M33{a.t.Mul(b.t)}
}

// MulPosition multiplies a r2.Vec position with a rotate/translate matrix.
func (a M33) MulPosition(b r2.Vec) r2.Vec {
	return a.t.ApplyPos(b)
}

// MulBox rotates/translates a 2d bounding box and resizes for axis-alignment.
func (a M33) MulBox(box r2.Box) r2.Box {
	return r2.Box(a.t.ApplyBox(d2.Box(box)))
}

// Inverse returns the inverse of a 3x3 matrix.
func (a M33) Inverse() M33 {
	return M33{a.t.Inverse()}
}
