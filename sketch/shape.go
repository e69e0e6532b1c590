// Package sketch builds immutable 2D profiles from primitive shapes
// combined in declaration order.
package sketch

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/meisseli/form2"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
)

// Shape is a 2D region that can be combined into a Builder. The set of
// shapes is closed: primitives of this package, placed or rotated copies of
// them, and built Profiles.
type Shape interface {
	element() (element, error)
}

// Align positions a rectangle relative to the origin along one axis.
type Align int

const (
	Center Align = iota // centered on the origin
	Min                 // minimum coordinate at the origin
	Max                 // maximum coordinate at the origin
)

// element is the normalized form of a Shape. Polygonal shapes keep their
// vertices so corners can be filleted later, curved shapes only carry
// their region.
type element struct {
	poly    []r2.Vec  // closed polygon, nil for curved shapes
	round   []float64 // fillet radius per polygon vertex
	curve   sdf.SDF2  // region of curved shapes
	corners []r2.Vec  // reported vertices of curved shapes
}

func polyElement(pts []r2.Vec) element {
	return element{poly: pts, round: make([]float64, len(pts))}
}

func (e element) clone() element {
	return element{
		poly:    append([]r2.Vec(nil), e.poly...),
		round:   append([]float64(nil), e.round...),
		curve:   e.curve,
		corners: append([]r2.Vec(nil), e.corners...),
	}
}

func (e element) transform(m sdf.M33) element {
	out := e.clone()
	for i := range out.poly {
		out.poly[i] = m.MulPosition(out.poly[i])
	}
	for i := range out.corners {
		out.corners[i] = m.MulPosition(out.corners[i])
	}
	if out.curve != nil {
		out.curve = sdf.Transform2D(out.curve, m)
	}
	return out
}

// filletFacets is the number of segments approximating a filleted corner.
const filletFacets = 12

// region returns the SDF2 of the element.
func (e element) region() (sdf.SDF2, error) {
	if e.poly == nil {
		return e.curve, nil
	}
	rounded := false
	for _, r := range e.round {
		rounded = rounded || r > 0
	}
	if !rounded {
		return form2.Polygon(e.poly)
	}
	b := form2.NewPolygon()
	for i, v := range e.poly {
		pv := b.AddV2(v)
		if e.round[i] > 0 {
			pv.Smooth(e.round[i], filletFacets)
		}
	}
	b.Close()
	s, _, err := form2.BuildPolygon(b)
	return s, err
}

type circle struct{ r float64 }

// Circle returns a circle of radius r centered on the origin.
func Circle(r float64) Shape { return circle{r: r} }

func (c circle) element() (element, error) {
	s, err := form2.Circle(c.r)
	if err != nil {
		return element{}, fmt.Errorf("circle: %w", err)
	}
	return element{curve: s}, nil
}

type rect struct {
	w, h   float64
	ax, ay Align
}

// Rect returns a w by h rectangle centered on the origin.
func Rect(w, h float64) Shape { return rect{w: w, h: h} }

// AlignedRect returns a w by h rectangle placed relative to the origin
// by ax and ay.
func AlignedRect(w, h float64, ax, ay Align) Shape { return rect{w: w, h: h, ax: ax, ay: ay} }

func alignRange(size float64, a Align) (lo, hi float64) {
	switch a {
	case Min:
		return 0, size
	case Max:
		return -size, 0
	}
	return -size / 2, size / 2
}

func (r rect) element() (element, error) {
	if r.w <= 0 || r.h <= 0 {
		return element{}, fmt.Errorf("rectangle: non-positive size %gx%g", r.w, r.h)
	}
	x0, x1 := alignRange(r.w, r.ax)
	y0, y1 := alignRange(r.h, r.ay)
	return polyElement([]r2.Vec{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}), nil
}

type regularPolygon struct {
	radius   float64
	sides    int
	inradius bool
	rotation float64
}

// RegularPolygon returns a regular polygon centered on the origin with its
// first vertex on the +X axis before rotating by rotationDeg degrees.
// radius is the inradius (center to flat) when inradius is true and the
// circumradius (center to vertex) otherwise.
func RegularPolygon(radius float64, sides int, inradius bool, rotationDeg float64) Shape {
	return regularPolygon{radius: radius, sides: sides, inradius: inradius, rotation: rotationDeg}
}

func (p regularPolygon) element() (element, error) {
	if p.sides < 3 {
		return element{}, fmt.Errorf("regular polygon: %d sides", p.sides)
	}
	r := p.radius
	if p.inradius {
		r /= math.Cos(math.Pi / float64(p.sides))
	}
	v, err := form2.Nagon(p.sides, r)
	if err != nil {
		return element{}, fmt.Errorf("regular polygon: %w", err)
	}
	e := polyElement(v)
	return e.transform(sdf.Rotate2D(sdf.DtoR(p.rotation))), nil
}

type polyline struct{ pts []r2.Vec }

// Polyline returns the face bounded by the argument points. The closing
// segment from the last point back to the first is implicit.
func Polyline(pts ...r2.Vec) Shape {
	return polyline{pts: append([]r2.Vec(nil), pts...)}
}

func (p polyline) element() (element, error) {
	pts := p.pts
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return element{}, errors.New("polyline: face needs at least 3 distinct points")
	}
	if math.Abs(signedArea(pts)) < 1e-12 {
		return element{}, errors.New("polyline: points enclose no area")
	}
	return polyElement(append([]r2.Vec(nil), pts...)), nil
}

type slot struct {
	length, width, rotation float64
}

// Slot returns a slot of the given width whose semicircular end centers
// are length apart, centered on the origin along the X axis before rotating
// by rotationDeg degrees.
func Slot(length, width, rotationDeg float64) Shape {
	return slot{length: length, width: width, rotation: rotationDeg}
}

func (s slot) element() (element, error) {
	if s.width <= 0 {
		return element{}, fmt.Errorf("slot: non-positive width %g", s.width)
	}
	line, err := form2.Line(s.length, s.width/2)
	if err != nil {
		return element{}, fmt.Errorf("slot: %w", err)
	}
	e := element{curve: line}
	return e.transform(sdf.Rotate2D(sdf.DtoR(s.rotation))), nil
}

type placed struct {
	s Shape
	m sdf.M33
}

// At returns s translated by (x, y).
func At(s Shape, x, y float64) Shape {
	return placed{s: s, m: sdf.Translate2D(r2.Vec{X: x, Y: y})}
}

// Rotated returns s rotated by deg degrees about the origin.
func Rotated(s Shape, deg float64) Shape {
	return placed{s: s, m: sdf.Rotate2D(sdf.DtoR(deg))}
}

func (p placed) element() (element, error) {
	if p.s == nil {
		return element{}, errors.New("nil shape")
	}
	e, err := p.s.element()
	if err != nil {
		return element{}, err
	}
	return e.transform(p.m), nil
}

// signedArea returns the shoelace area of a closed polygon, positive
// when counter-clockwise.
func signedArea(pts []r2.Vec) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += r2.Cross(pts[i], pts[j])
	}
	return a / 2
}
