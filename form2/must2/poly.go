package must2

import (
	"math"

	"github.com/soypat/meisseli/internal/d2"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
)

// polygon is an SDF2 made from a closed set of line segments.
type polygon struct {
	vertex []r2.Vec  // vertices
	vector []r2.Vec  // unit line vectors
	length []float64 // line lengths
	bb     r2.Box    // bounding box
}

// Polygon returns an SDF2 made from a closed set of line segments.
func Polygon(vertex []r2.Vec) sdf.SDF2 {
	s := polygon{}

	n := len(vertex)
	if n < 3 {
		panic("number of vertices < 3")
	}

	// Close the loop (if necessary)
	s.vertex = append([]r2.Vec(nil), vertex...)
	if !d2.EqualWithin(vertex[0], vertex[n-1], tolerance) {
		s.vertex = append(s.vertex, vertex[0])
	}

	// allocate pre-calculated line segment info
	nsegs := len(s.vertex) - 1
	s.vector = make([]r2.Vec, nsegs)
	s.length = make([]float64, nsegs)

	vmin := s.vertex[0]
	vmax := s.vertex[0]

	for i := 0; i < nsegs; i++ {
		l := r2.Sub(s.vertex[i+1], s.vertex[i])
		s.length[i] = r2.Norm(l)
		if s.length[i] < tolerance {
			panic("polygon has coincident consecutive vertices")
		}
		s.vector[i] = r2.Unit(l)
		vmin = d2.MinElem(vmin, s.vertex[i])
		vmax = d2.MaxElem(vmax, s.vertex[i])
	}

	s.bb = r2.Box{Min: vmin, Max: vmax}
	return &s
}

// Evaluate returns the minimum distance for a 2d polygon.
func (s *polygon) Evaluate(p r2.Vec) float64 {
	dd := math.MaxFloat64 // d^2 to polygon (>0)
	wn := 0               // winding number (inside/outside)

	// iterate over the line segments
	nsegs := len(s.vertex) - 1
	pb := r2.Sub(p, s.vertex[0])

	for i := 0; i < nsegs; i++ {
		a := s.vertex[i]
		b := s.vertex[i+1]

		pa := pb
		pb = r2.Sub(p, b)

		t := r2.Dot(pa, s.vector[i])                                  // t-parameter of projection onto line
		dn := r2.Dot(pa, r2.Vec{X: s.vector[i].Y, Y: -s.vector[i].X}) // normal distance from p to line

		// Distance to line segment
		if t < 0 {
			dd = math.Min(dd, r2.Norm2(pa)) // distance to vertex[0] of line
		} else if t > s.length[i] {
			dd = math.Min(dd, r2.Norm2(pb)) // distance to vertex[1] of line
		} else {
			dd = math.Min(dd, dn*dn) // normal distance to line
		}

		// Is the point in the polygon?
		// See: http://geomalgorithms.com/a03-_inclusion.html
		if a.Y <= p.Y {
			if b.Y > p.Y { // upward crossing
				if dn < 0 { // p is to the left of the line segment
					wn++ // up intersect
				}
			}
		} else {
			if b.Y <= p.Y { // downward crossing
				if dn > 0 { // p is to the right of the line segment
					wn-- // down intersect
				}
			}
		}
	}

	// normalise d*d to d
	d := math.Sqrt(dd)
	if wn != 0 {
		// p is inside the polygon
		return -d
	}
	return d
}

// Bounds returns the bounding box of a 2d polygon.
func (s *polygon) Bounds() r2.Box {
	return s.bb
}

// Polygon building code.

// PolygonBuilder stores a set of 2d polygon vertices.
type PolygonBuilder struct {
	closed bool            // is the polygon closed or open?
	vlist  []polygonVertex // list of polygon vertices
}

// polygonVertex is a polygon vertex.
type polygonVertex struct {
	vtype  pvType  // type of polygon vertex
	vertex r2.Vec  // vertex coordinates
	facets int     // number of polygon facets to create when smoothing
	radius float64 // radius of smoothing (0 == none)
}

// pvType is the type of a polygon vertex.
type pvType int

const (
	pvNormal pvType = iota // normal vertex
	pvSmooth               // smooth the vertex
)

// Smooth marks the polygon vertex for smoothing.
func (v *polygonVertex) Smooth(radius float64, facets int) *polygonVertex {
	if radius != 0 && facets != 0 {
		v.radius = radius
		v.facets = facets
		v.vtype = pvSmooth
	}
	return v
}

// nextVertex returns the next vertex in the polygon.
func (p *PolygonBuilder) nextVertex(i int) *polygonVertex {
	if i == len(p.vlist)-1 {
		if p.closed {
			return &p.vlist[0]
		}
		return nil
	}
	return &p.vlist[i+1]
}

// prevVertex returns the previous vertex in the polygon.
func (p *PolygonBuilder) prevVertex(i int) *polygonVertex {
	if i == 0 {
		if p.closed {
			return &p.vlist[len(p.vlist)-1]
		}
		return nil
	}
	return &p.vlist[i-1]
}

// vertex smoothing

// Smooth the i-th vertex, return true if we smoothed it.
// Panics if the smoothing radius does not fit between the neighbouring vertices.
func (p *PolygonBuilder) smoothVertex(i int) bool {
	// check the vertex
	v := p.vlist[i]
	if v.vtype != pvSmooth {
		// fixed point
		return false
	}
	// get the next and previous points
	vn := p.nextVertex(i)
	vp := p.prevVertex(i)
	if vp == nil || vn == nil {
		panic("can't smooth the endpoints of an open polygon")
	}
	// work out the angle
	v0 := r2.Unit(r2.Sub(vp.vertex, v.vertex))
	v1 := r2.Unit(r2.Sub(vn.vertex, v.vertex))
	theta := math.Acos(sdf.Clamp(r2.Dot(v0, v1), -1, 1))
	if theta < tolerance || math.Pi-theta < tolerance {
		panic("can't smooth a degenerate or straight vertex")
	}
	// distance from vertex to circle tangent
	d1 := v.radius / math.Tan(theta/2.0)
	if d1 > r2.Norm(r2.Sub(vp.vertex, v.vertex))+tolerance || d1 > r2.Norm(r2.Sub(vn.vertex, v.vertex))+tolerance {
		panic("smoothing radius is too large for the adjacent edges")
	}
	// tangent points
	p0 := r2.Add(v.vertex, r2.Scale(d1, v0))
	// distance from vertex to circle center
	d2 := v.radius / math.Sin(theta/2.0)
	// center of circle
	vc := r2.Unit(r2.Add(v0, v1))
	c := r2.Add(v.vertex, r2.Scale(d2, vc))
	// rotation angle
	dtheta := Sign(r2.Cross(v1, v0)) * (math.Pi - theta) / float64(v.facets)
	// rotation matrix
	rm := sdf.Rotate2D(dtheta)
	// radius vector
	rv := r2.Sub(p0, c)
	// work out the new points
	points := make([]polygonVertex, v.facets+1)
	for j := range points {
		points[j] = polygonVertex{vertex: r2.Add(c, rv)}
		rv = rm.MulPosition(rv)
	}
	// replace the old point with the new points
	p.vlist = append(p.vlist[:i], append(points, p.vlist[i+1:]...)...)
	return true
}

// smoothVertices smoothes the vertices of a polygon.
func (p *PolygonBuilder) smoothVertices() {
	done := false
	for !done {
		done = true
		for i := 0; i < len(p.vlist); i++ {
			if p.smoothVertex(i) {
				done = false
			}
		}
	}
}

// Public API for polygons

// Close closes the polygon.
func (p *PolygonBuilder) Close() {
	p.closed = true
}

// NewPolygon returns an empty polygon.
func NewPolygon() *PolygonBuilder {
	return &PolygonBuilder{}
}

// AddV2 adds a V2 vertex to a polygon.
func (p *PolygonBuilder) AddV2(x r2.Vec) *polygonVertex {
	v := polygonVertex{}
	v.vertex = x
	v.vtype = pvNormal
	p.vlist = append(p.vlist, v)
	return &p.vlist[len(p.vlist)-1]
}

// Vertices returns the vertices of the polygon.
func (p *PolygonBuilder) Vertices() []r2.Vec {
	if p.vlist == nil {
		panic("nil vertex list. was PolygonBuilder initialized?")
	}
	p.smoothVertices()
	v := make([]r2.Vec, len(p.vlist))
	for i, pv := range p.vlist {
		v[i] = pv.vertex
	}
	return v
}

// Nagon return the vertices of a N sided regular polygon
// with the first vertex on the positive x axis.
func Nagon(n int, radius float64) d2.Set {
	if n < 3 {
		panic("polygon requires at least 3 sides")
	}
	if radius <= 0 {
		panic("radius <= 0")
	}
	m := sdf.Rotate2D(2 * math.Pi / float64(n))
	v := make(d2.Set, n)
	p := r2.Vec{X: radius}
	for i := 0; i < n; i++ {
		v[i] = p
		p = m.MulPosition(p)
	}
	return v
}
