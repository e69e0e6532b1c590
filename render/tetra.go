package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// cubeMaxTriangles is the most triangles mtToTriangles writes for one cube.
const cubeMaxTriangles = 12

// cubeTetrahedra splits a cube into six tetrahedra sharing the 0-6 diagonal.
// Neighbouring cubes split their shared faces along the same diagonal so
// the resulting surface has no cracks.
var cubeTetrahedra = [6][4]int{
	{0, 6, 1, 2},
	{0, 6, 2, 3},
	{0, 6, 3, 7},
	{0, 6, 7, 4},
	{0, 6, 4, 5},
	{0, 6, 5, 1},
}

// mtToTriangles writes the isosurface triangles at level x of a cube with corner
// positions p and values v to dst. Triangle normals point to the side where v > x.
// Triangles whose height is below tol are dropped.
func mtToTriangles(dst []r3.Triangle, p [8]r3.Vec, v [8]float64, x, tol float64) int {
	n := 0
	for _, tet := range cubeTetrahedra {
		n += tetraToTriangles(dst[n:],
			[4]r3.Vec{p[tet[0]], p[tet[1]], p[tet[2]], p[tet[3]]},
			[4]float64{v[tet[0]], v[tet[1]], v[tet[2]], v[tet[3]]},
			x, tol,
		)
	}
	return n
}

func tetraToTriangles(dst []r3.Triangle, p [4]r3.Vec, v [4]float64, x, tol float64) int {
	var in, out [4]int
	var nin, nout int
	for i := range v {
		if v[i] < x {
			in[nin] = i
			nin++
		} else {
			out[nout] = i
			nout++
		}
	}
	edge := func(i, j int) r3.Vec {
		t := (x - v[i]) / (v[j] - v[i])
		return r3.Add(p[i], r3.Scale(t, r3.Sub(p[j], p[i])))
	}
	n := 0
	switch nin {
	case 1:
		a := in[0]
		t := r3.Triangle{edge(a, out[0]), edge(a, out[1]), edge(a, out[2])}
		n += orientedTriangle(dst[n:], t, p[a], tol)
	case 3:
		b := out[0]
		t := r3.Triangle{edge(in[0], b), edge(in[1], b), edge(in[2], b)}
		ref := r3.Scale(1./3, r3.Add(r3.Add(p[in[0]], p[in[1]]), p[in[2]]))
		n += orientedTriangle(dst[n:], t, ref, tol)
	case 2:
		a, b := in[0], in[1]
		c, d := out[0], out[1]
		q := [4]r3.Vec{edge(a, c), edge(a, d), edge(b, d), edge(b, c)}
		ref := r3.Scale(0.5, r3.Add(p[a], p[b]))
		n += orientedTriangle(dst[n:], r3.Triangle{q[0], q[1], q[2]}, ref, tol)
		n += orientedTriangle(dst[n:], r3.Triangle{q[0], q[2], q[3]}, ref, tol)
	}
	return n
}

// orientedTriangle writes t to dst with its normal facing away from
// the inside point ref. Degenerate triangles are not written.
func orientedTriangle(dst []r3.Triangle, t r3.Triangle, ref r3.Vec, tol float64) int {
	if t.IsDegenerate(tol) {
		return 0
	}
	if r3.Dot(t.Normal(), r3.Sub(t.Centroid(), ref)) < 0 {
		t[1], t[2] = t[2], t[1]
	}
	dst[0] = t
	return 1
}
