package feature

import (
	"fmt"
	"math"

	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis is a world coordinate axis.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Vec returns the unit vector of the axis.
func (a Axis) Vec() r3.Vec {
	switch a {
	case X:
		return r3.Vec{X: 1}
	case Y:
		return r3.Vec{Y: 1}
	}
	return r3.Vec{Z: 1}
}

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Plane is a right handed 2D frame embedded in 3D space. Sketch coordinates
// (u, v) map to Origin + u*XDir + v*YDir().
type Plane struct {
	Origin r3.Vec
	XDir   r3.Vec
	Normal r3.Vec
}

var (
	// XY has its X along world X and its normal along world Z.
	XY = Plane{XDir: r3.Vec{X: 1}, Normal: r3.Vec{Z: 1}}
	// YZ has its X along world Y and its normal along world X.
	YZ = Plane{XDir: r3.Vec{Y: 1}, Normal: r3.Vec{X: 1}}
	// XZ has its X along world X and its normal along world -Y.
	XZ = Plane{XDir: r3.Vec{X: 1}, Normal: r3.Vec{Y: -1}}
)

// YDir returns the in-plane Y direction.
func (p Plane) YDir() r3.Vec { return r3.Cross(p.Normal, p.XDir) }

// Offset returns the plane moved by d along its normal.
func (p Plane) Offset(d float64) Plane {
	p.Origin = r3.Add(p.Origin, r3.Scale(d, p.Normal))
	return p
}

// Flipped returns the plane with its normal reversed. The X direction is
// kept so the Y direction reverses as well.
func (p Plane) Flipped() Plane {
	p.Normal = r3.Scale(-1, p.Normal)
	return p
}

// MoveTo returns the plane with its origin moved to the plane point q.
func (p Plane) MoveTo(q r2.Vec) Plane {
	p.Origin = p.Point(q)
	return p
}

// Point returns the world position of the sketch point q.
func (p Plane) Point(q r2.Vec) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(q.X, p.XDir), r3.Scale(q.Y, p.YDir())))
}

// Local returns the sketch coordinates of v projected onto the plane and
// its signed height above it.
func (p Plane) Local(v r3.Vec) (q r2.Vec, h float64) {
	d := r3.Sub(v, p.Origin)
	return r2.Vec{X: r3.Dot(d, p.XDir), Y: r3.Dot(d, p.YDir())}, r3.Dot(d, p.Normal)
}

// Frame returns the matrix mapping plane local coordinates, with Z along
// the normal, to world coordinates.
func (p Plane) Frame() sdf.M44 {
	return sdf.Frame3D(p.Origin, p.XDir, p.YDir(), p.Normal)
}

// Transform returns the plane moved by m. Mirroring transforms are
// reported by mirrored so callers can flip in-plane regions.
func (p Plane) Transform(m sdf.M44) (out Plane, mirrored bool) {
	out = Plane{
		Origin: m.MulPosition(p.Origin),
		XDir:   r3.Unit(m.MulDirection(p.XDir)),
		Normal: r3.Unit(m.MulDirection(p.Normal)),
	}
	return out, m.Det() < 0
}

func (p Plane) String() string {
	return fmt.Sprintf("Plane(origin=%.4g,%.4g,%.4g normal=%.3g,%.3g,%.3g)",
		p.Origin.X, p.Origin.Y, p.Origin.Z, p.Normal.X, p.Normal.Y, p.Normal.Z)
}

func (p Plane) valid() error {
	const tol = 1e-9
	if math.Abs(r3.Norm(p.XDir)-1) > tol || math.Abs(r3.Norm(p.Normal)-1) > tol {
		return fmt.Errorf("%v: axes are not unit vectors", p)
	}
	if math.Abs(r3.Dot(p.XDir, p.Normal)) > tol {
		return fmt.Errorf("%v: X direction not perpendicular to normal", p)
	}
	return nil
}

// coplanar reports whether a and b are the same oriented plane.
func coplanar(a, b Plane, tol float64) bool {
	if r3.Dot(a.Normal, b.Normal) < 1-tol {
		return false
	}
	return math.Abs(r3.Dot(r3.Sub(b.Origin, a.Origin), a.Normal)) < tol
}

// planeToPlane returns the 2D rigid transform taking sketch coordinates of
// a to sketch coordinates of b. a and b must be coplanar.
func planeToPlane(a, b Plane) sdf.M33 {
	angle := math.Atan2(r3.Dot(a.XDir, b.YDir()), r3.Dot(a.XDir, b.XDir))
	t, _ := b.Local(a.Origin)
	return sdf.Translate2D(t).Mul(sdf.Rotate2D(angle))
}

// PlaneRef resolves to a Plane against the current accumulator. Plane
// itself is a PlaneRef that ignores the accumulator.
type PlaneRef interface {
	resolve(acc Solid) (Plane, error)
}

func (p Plane) resolve(Solid) (Plane, error) { return p, p.valid() }

type onFace struct {
	sel FaceSelector
}

// OnFace resolves to the plane of the single face picked by sel, with its
// origin at the face centroid. sel is evaluated against the accumulator each
// time the reference resolves.
func OnFace(sel FaceSelector) PlaneRef { return onFace{sel: sel} }

func (o onFace) resolve(acc Solid) (Plane, error) {
	faces, err := o.sel(acc)
	if err != nil {
		return Plane{}, err
	}
	if len(faces) != 1 {
		return Plane{}, &GeometryError{Op: "face plane", Msg: fmt.Sprintf("selection is ambiguous: %d faces", len(faces))}
	}
	f := faces[0]
	p := f.Plane
	p.Origin = f.Centroid
	return p, nil
}

type offsetRef struct {
	ref PlaneRef
	d   float64
}

// OffsetRef resolves ref and moves it by d along its normal.
func OffsetRef(ref PlaneRef, d float64) PlaneRef { return offsetRef{ref: ref, d: d} }

func (o offsetRef) resolve(acc Solid) (Plane, error) {
	p, err := o.ref.resolve(acc)
	if err != nil {
		return Plane{}, err
	}
	return p.Offset(o.d), nil
}
