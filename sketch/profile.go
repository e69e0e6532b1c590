package sketch

import (
	"errors"
	"math"
	"sort"

	"github.com/soypat/meisseli/internal/d2"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Profile is an immutable closed 2D region. Adding a Profile into a Builder
// copies its geometry; the Profile itself never changes.
type Profile struct {
	region  sdf.SDF2
	corners []r2.Vec
}

// Region returns the signed distance function of the profile.
func (p Profile) Region() sdf.SDF2 { return p.region }

// IsZero reports whether p is the zero Profile.
func (p Profile) IsZero() bool { return p.region == nil }

// Bounds returns the bounding box of the profile.
func (p Profile) Bounds() r2.Box { return p.region.Bounds() }

// Contains reports whether pt lies inside the profile or on its boundary.
func (p Profile) Contains(pt r2.Vec) bool { return p.region.Evaluate(pt) <= vertexTol }

// Vertices returns the polygon corners lying on the profile boundary.
func (p Profile) Vertices() Vertices {
	vs := make(Vertices, len(p.corners))
	for i, c := range p.corners {
		vs[i] = Vertex{Pos: c, op: -1}
	}
	return vs
}

// Area returns the enclosed area and its centroid.
func (p Profile) Area() (area float64, centroid r2.Vec) {
	return sdf.AreaCentroid2D(p.region, sampleStep(p.region))
}

func (p Profile) element() (element, error) {
	if p.region == nil {
		return element{}, errors.New("zero Profile")
	}
	return element{curve: p.region, corners: append([]r2.Vec(nil), p.corners...)}, nil
}

// topologyCells is the raster resolution along the longest side used to
// count pieces and holes.
const topologyCells = 96

// Topology returns the number of disjoint pieces of the profile and the
// number of holes through it, sampled on a raster.
func (p Profile) Topology() (pieces, holes int) {
	return Topology(p.region)
}

// Topology returns the number of disjoint pieces of an SDF2 region and the
// number of holes through it, sampled on a raster. Pieces closer together
// than a raster cell count as one.
func Topology(s sdf.SDF2) (pieces, holes int) {
	bb := d2.Box(s.Bounds())
	size := bb.Size()
	side := math.Max(size.X, size.Y) / topologyCells
	if side <= 0 {
		return 0, 0
	}
	// One cell of margin on every side so the outside forms one component.
	nx := int(math.Ceil(size.X/side)) + 2
	ny := int(math.Ceil(size.Y/side)) + 2
	origin := r2.Sub(bb.Min, r2.Vec{X: side / 2, Y: side / 2})
	inside := make([]bool, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			pt := r2.Add(origin, r2.Vec{X: float64(i) * side, Y: float64(j) * side})
			inside[j*nx+i] = s.Evaluate(pt) < 0
		}
	}
	in := simple.NewUndirectedGraph()
	out := simple.NewUndirectedGraph()
	for k, v := range inside {
		if v {
			in.AddNode(simple.Node(k))
		} else {
			out.AddNode(simple.Node(k))
		}
	}
	// Inside cells connect through faces, outside cells also through
	// corners, so a diagonal pinch never counts as both.
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			k := j*nx + i
			link := func(di, dj int) {
				ii, jj := i+di, j+dj
				if ii < 0 || ii >= nx || jj >= ny {
					return
				}
				kk := jj*nx + ii
				if inside[k] != inside[kk] {
					return
				}
				if inside[k] {
					if di != 0 && dj != 0 {
						return
					}
					in.SetEdge(in.NewEdge(simple.Node(k), simple.Node(kk)))
				} else {
					out.SetEdge(out.NewEdge(simple.Node(k), simple.Node(kk)))
				}
			}
			link(1, 0)
			link(0, 1)
			link(1, 1)
			link(-1, 1)
		}
	}
	pieces = len(topo.ConnectedComponents(in))
	holes = len(topo.ConnectedComponents(out)) - 1
	return pieces, holes
}

func isEmpty(s sdf.SDF2) bool {
	area, _ := sdf.AreaCentroid2D(s, sampleStep(s))
	res := sampleStep(s)
	return area < 0.5*res*res
}

func sampleStep(s sdf.SDF2) float64 {
	size := d2.Box(s.Bounds()).Size()
	side := math.Max(size.X, size.Y)
	if side <= 0 {
		return 1
	}
	return side / 256
}

// Axis names a 2D coordinate axis.
type Axis int

const (
	X Axis = iota
	Y
)

func (a Axis) of(v r2.Vec) float64 {
	if a == Y {
		return v.Y
	}
	return v.X
}

// Vertex is a corner of a profile.
type Vertex struct {
	Pos r2.Vec
	// origin of the corner inside the Builder, -1 when it cannot be filleted.
	op     int
	corner int
}

// Vertices is a set of profile corners.
type Vertices []Vertex

// groupTol is the coordinate difference under which vertices share a group.
const groupTol = 1e-6

// SortBy returns the vertices sorted by their coordinate along axis.
// Ties keep their relative order.
func (vs Vertices) SortBy(axis Axis) Vertices {
	out := append(Vertices(nil), vs...)
	sort.SliceStable(out, func(i, j int) bool { return axis.of(out[i].Pos) < axis.of(out[j].Pos) })
	return out
}

// GroupBy partitions the vertices by their coordinate along axis,
// groups sorted in ascending coordinate.
func (vs Vertices) GroupBy(axis Axis) []Vertices {
	sorted := vs.SortBy(axis)
	var groups []Vertices
	for i, v := range sorted {
		if i == 0 || axis.of(v.Pos)-axis.of(sorted[i-1].Pos) > groupTol {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], v)
	}
	return groups
}

// Positions returns the vertex coordinates.
func (vs Vertices) Positions() []r2.Vec {
	pos := make([]r2.Vec, len(vs))
	for i, v := range vs {
		pos[i] = v.Pos
	}
	return pos
}

func abs(x float64) float64 { return math.Abs(x) }

func near(a, b r2.Vec) bool { return r2.Norm(r2.Sub(a, b)) < vertexTol }
