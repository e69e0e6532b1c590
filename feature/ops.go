package feature

import (
	"github.com/soypat/meisseli/sdf"
)

// Boolean combines two solids. Unlike a feature step it checks the result
// itself since it runs outside a part.
func Boolean(a, b Solid, mode Mode) (Solid, error) {
	if a.IsZero() || b.IsZero() {
		return Solid{}, &GeometryError{Op: mode.String(), Msg: "empty operand"}
	}
	s, err := combine(a, b, mode)
	if err != nil {
		return Solid{}, err
	}
	if isEmpty(s.s) {
		return Solid{}, &GeometryError{Op: mode.String(), Msg: "result is empty"}
	}
	return s, nil
}

// Mirror returns the reflection of s about plane.
func Mirror(s Solid, plane Plane) Solid {
	if s.IsZero() {
		return s
	}
	return s.transform(sdf.Mirror3D(plane.Origin, plane.Normal))
}

// Locate returns s moved by the rigid transform m.
func Locate(s Solid, m sdf.M44) Solid {
	if s.IsZero() {
		return s
	}
	return s.transform(m)
}

// SplitSolid cuts s with plane. KeepBoth returns the halves ordered
// [below, above]; the other modes return the single kept half. A half
// without volume is a GeometryError.
func SplitSolid(s Solid, plane Plane, keep Keep) ([]Solid, error) {
	if s.IsZero() {
		return nil, &GeometryError{Op: "split", Msg: "nothing to split"}
	}
	if err := plane.valid(); err != nil {
		return nil, &GeometryError{Op: "split", Msg: "bad plane", Err: err}
	}
	var out []Solid
	if keep == KeepBottom || keep == KeepBoth {
		out = append(out, s.half(plane.Flipped()))
	}
	if keep == KeepTop || keep == KeepBoth {
		out = append(out, s.half(plane))
	}
	if len(out) == 0 {
		return nil, &GeometryError{Op: "split", Msg: "unknown side " + keep.String()}
	}
	for _, half := range out {
		if isEmpty(half.s) {
			return nil, &GeometryError{Op: "split", Msg: "plane does not cross the solid"}
		}
	}
	return out, nil
}

// half keeps the side of s that the normal of p points to. The cut face
// looks back against the normal.
func (s Solid) half(p Plane) Solid {
	cutFace := p.Flipped()
	region := sdf.Slice2D(s.s, cutFace.Origin, cutFace.XDir, cutFace.YDir())
	return Solid{s: sdf.Cut3D(s.s, p.Origin, p.Normal), caps: s.caps}.withCaps(
		candidate{plane: cutFace, region: region},
	)
}
