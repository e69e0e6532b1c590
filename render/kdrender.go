package render

import (
	"math"

	"github.com/soypat/meisseli/internal/d3"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ sdf.SDF3         = kdSDF{}
	_ kdtree.Interface = kdTriangles{}
	_ kdtree.Bounder   = kdTriangles{}
)

// NewKDSDF returns an approximate SDF3 of a closed, outward facing mesh.
// Distances are measured to the triangle whose centroid is nearest to
// the query point, so the result is only exact close to the surface.
func NewKDSDF(model []r3.Triangle) sdf.SDF3 {
	if len(model) == 0 {
		panic("empty mesh")
	}
	mykd := make(kdTriangles, len(model))
	for i := range mykd {
		mykd[i] = kdTriangle(model[i])
	}
	tree := kdtree.New(mykd, true)
	return kdSDF{
		tree: *tree,
	}
}

type kdSDF struct {
	tree kdtree.Tree
}

func (s kdSDF) Evaluate(v r3.Vec) float64 {
	triangle := r3.Triangle(s.Nearest(v))
	closest := closestOnTriangle(triangle, v)
	d := r3.Sub(v, closest)
	dist := r3.Norm(d)
	return math.Copysign(dist, r3.Dot(d, triangle.Normal()))
}

// Nearest returns the triangle whose centroid is nearest to v.
func (s kdSDF) Nearest(v r3.Vec) kdTriangle {
	got, _ := s.tree.Nearest(kdTriangle{v, v, v})
	return got.(kdTriangle)
}

func (s kdSDF) Bounds() r3.Box {
	bb := s.tree.Root.Bounding
	if bb == nil {
		panic("got nil bounding box?")
	}
	tMin := bb.Min.(kdTriangle)
	tMax := bb.Max.(kdTriangle)
	return r3.Box{
		Min: d3.MinElem(tMin[2], d3.MinElem(tMin[0], tMin[1])),
		Max: d3.MaxElem(tMax[2], d3.MaxElem(tMax[0], tMax[1])),
	}
}

// closestOnTriangle returns the point of t closest to p.
func closestOnTriangle(t r3.Triangle, p r3.Vec) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)
	d1, d2 := r3.Dot(ab, ap), r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}
	bp := r3.Sub(p, b)
	dd3, d4 := r3.Dot(ab, bp), r3.Dot(ac, bp)
	if dd3 >= 0 && d4 <= dd3 {
		return b
	}
	vc := d1*d4 - dd3*d2
	if vc <= 0 && d1 >= 0 && dd3 <= 0 {
		return r3.Add(a, r3.Scale(d1/(d1-dd3), ab))
	}
	cp := r3.Sub(p, c)
	d5, d6 := r3.Dot(ab, cp), r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(d2/(d2-d6), ac))
	}
	va := dd3*d6 - d5*d4
	if va <= 0 && d4-dd3 >= 0 && d5-d6 >= 0 {
		w := (d4 - dd3) / ((d4 - dd3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

type kdTriangles []kdTriangle

type kdTriangle r3.Triangle

func (k kdTriangles) Index(i int) kdtree.Comparable {
	return k[i]
}

// Len returns the length of the list.
func (k kdTriangles) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdTriangles) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), triangles: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdTriangles) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

func (k kdTriangles) Bounds() *kdtree.Bounding {
	max := r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	min := r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	for _, tri := range k {
		tbounds := tri.Bounds()
		tmin := tbounds.Min.(kdTriangle)
		tmax := tbounds.Max.(kdTriangle)
		min = d3.MinElem(min, tmin[0])
		max = d3.MaxElem(max, tmax[0])
	}
	return &kdtree.Bounding{
		Min: kdTriangle{min, min, min},
		Max: kdTriangle{max, max, max},
	}
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
//
// Given c = a.Compare(b, d):
//
//	c = a_d - b_d
func (a kdTriangle) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdTriangle), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (k kdTriangle) Dims() int {
	return 3
}

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdTriangle) Distance(b kdtree.Comparable) float64 {
	return kdDist(a, b.(kdTriangle))
}

func (a kdTriangle) Bounds() *kdtree.Bounding {
	min := d3.MinElem(a[2], d3.MinElem(a[0], a[1]))
	max := d3.MaxElem(a[2], d3.MaxElem(a[0], a[1]))
	return &kdtree.Bounding{
		Min: kdTriangle{min, min, min},
		Max: kdTriangle{max, max, max},
	}
}

// c = a.dim - b.dim
func kdComp(a, b kdTriangle, dim int) (c float64) {
	switch dim {
	case 0:
		c = (a[0].X + a[1].X + a[2].X) - (b[0].X + b[1].X + b[2].X)
	case 1:
		c = (a[0].Y + a[1].Y + a[2].Y) - (b[0].Y + b[1].Y + b[2].Y)
	case 2:
		c = (a[0].Z + a[1].Z + a[2].Z) - (b[0].Z + b[1].Z + b[2].Z)
	}
	return c / 3
}

// returns euclidean squared norm distance between triangle centroids.
func kdDist(a, b kdTriangle) (c float64) {
	return r3.Norm2(r3.Sub(r3.Triangle(a).Centroid(), r3.Triangle(b).Centroid()))
}

type kdPlane struct {
	dim       int
	triangles kdTriangles
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.triangles[i], p.triangles[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.triangles[i], p.triangles[j] = p.triangles[j], p.triangles[i]
}
func (p kdPlane) Len() int {
	return len(p.triangles)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.triangles = p.triangles[start:end]
	return p
}
