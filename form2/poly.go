package form2

import (
	"github.com/soypat/meisseli/form2/must2"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon returns an SDF2 made from a closed set of line segments.
func Polygon(vertex []r2.Vec) (s sdf.SDF2, err error) {
	defer catch("polygon", &err)
	return must2.Polygon(vertex), nil
}

// NewPolygon returns an empty polygon.
func NewPolygon() *must2.PolygonBuilder {
	return must2.NewPolygon()
}

// BuildPolygon resolves the vertices of a polygon builder, smoothing the
// marked vertices, and returns the resulting SDF2 and its vertices.
func BuildPolygon(b *must2.PolygonBuilder) (s sdf.SDF2, vertices []r2.Vec, err error) {
	defer catch("polygon", &err)
	vertices = b.Vertices()
	return must2.Polygon(vertices), vertices, nil
}

// Nagon return the vertices of a N sided regular polygon.
func Nagon(n int, radius float64) (v []r2.Vec, err error) {
	defer catch("nagon", &err)
	return must2.Nagon(n, radius), nil
}
