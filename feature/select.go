package feature

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// FaceSelector picks faces of a solid. Selectors run against the solid
// they are handed, so the same selector can pick different faces before
// and after a feature changes the solid.
type FaceSelector func(Solid) ([]Face, error)

// End picks the low or high end of an axis.
type End int

const (
	Min End = iota
	Max
)

// selectTol is the distance within which face centroids count as level.
const selectTol = 1e-3

// Extremal selects the faces whose centroid lies furthest along axis in
// the direction of end.
func Extremal(axis Axis, end End) FaceSelector {
	return func(s Solid) ([]Face, error) {
		groups, err := faceGroups(s, axis)
		if err != nil {
			return nil, err
		}
		if end == Max {
			return groups[len(groups)-1], nil
		}
		return groups[0], nil
	}
}

// FacesGroupedBy groups faces by centroid coordinate along axis, ascending,
// and selects group i. Negative i counts from the last group.
func FacesGroupedBy(axis Axis, i int) FaceSelector {
	return func(s Solid) ([]Face, error) {
		groups, err := faceGroups(s, axis)
		if err != nil {
			return nil, err
		}
		if i < 0 {
			i += len(groups)
		}
		if i < 0 || i >= len(groups) {
			return nil, &GeometryError{Op: "select faces", Msg: fmt.Sprintf("group %d out of %d along %v", i, len(groups), axis)}
		}
		return groups[i], nil
	}
}

// FacesFacing selects the faces whose outward normal is within tol radians
// of dir.
func FacesFacing(dir r3.Vec, tol float64) FaceSelector {
	dir = r3.Unit(dir)
	return func(s Solid) ([]Face, error) {
		var out []Face
		for _, f := range s.Faces() {
			if math.Acos(math.Max(-1, math.Min(1, r3.Dot(f.Plane.Normal, dir)))) <= tol {
				out = append(out, f)
			}
		}
		if len(out) == 0 {
			return nil, &GeometryError{Op: "select faces", Msg: "no face faces the direction"}
		}
		return out, nil
	}
}

func faceGroups(s Solid, axis Axis) ([][]Face, error) {
	faces := s.Faces()
	if len(faces) == 0 {
		return nil, &GeometryError{Op: "select faces", Msg: "solid has no planar faces"}
	}
	u := axis.Vec()
	coord := func(f Face) float64 { return r3.Dot(f.Centroid, u) }
	sort.SliceStable(faces, func(i, j int) bool { return coord(faces[i]) < coord(faces[j]) })
	groups := [][]Face{{faces[0]}}
	for _, f := range faces[1:] {
		last := groups[len(groups)-1]
		if coord(f)-coord(last[0]) < selectTol {
			groups[len(groups)-1] = append(last, f)
			continue
		}
		groups = append(groups, []Face{f})
	}
	return groups, nil
}

// Edge is the boundary loop of a face.
type Edge struct {
	Face Face
}

// EdgeSelector picks edges of a solid.
type EdgeSelector func(Solid) ([]Edge, error)

// EdgesOf selects the boundary loops of the faces picked by sel.
func EdgesOf(sel FaceSelector) EdgeSelector {
	return func(s Solid) ([]Edge, error) {
		faces, err := sel(s)
		if err != nil {
			return nil, err
		}
		if len(faces) == 0 {
			return nil, &GeometryError{Op: "select edges", Msg: "no faces selected"}
		}
		edges := make([]Edge, len(faces))
		for i, f := range faces {
			edges[i] = Edge{Face: f}
		}
		return edges, nil
	}
}

// AnyOf selects the faces picked by any of sels, without duplicates.
func AnyOf(sels ...FaceSelector) FaceSelector {
	return func(s Solid) ([]Face, error) {
		var out []Face
		for _, sel := range sels {
			faces, err := sel(s)
			if err != nil {
				return nil, err
			}
			for _, f := range faces {
				if !containsFace(out, f) {
					out = append(out, f)
				}
			}
		}
		return out, nil
	}
}

func containsFace(faces []Face, f Face) bool {
	for _, have := range faces {
		if coplanar(have.Plane, f.Plane, capTol) {
			return true
		}
	}
	return false
}
