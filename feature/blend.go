package feature

import (
	"fmt"
	"math"

	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Chamfer bevels the selected edges by Amount, measured along both faces
// meeting at the edge.
type Chamfer struct {
	Edges  EdgeSelector
	Amount float64
}

func (c Chamfer) String() string { return fmt.Sprintf("Chamfer(%.4g)", c.Amount) }

func (c Chamfer) Apply(acc Solid) (Solid, error) {
	return blend(acc, c.Edges, c.Amount, "chamfer", chamferCut)
}

// Fillet rounds the selected edges with Radius.
type Fillet struct {
	Edges  EdgeSelector
	Radius float64
}

func (f Fillet) String() string { return fmt.Sprintf("Fillet(%.4g)", f.Radius) }

func (f Fillet) Apply(acc Solid) (Solid, error) {
	return blend(acc, f.Edges, f.Radius, "fillet", filletCut)
}

// cutFunc returns the distance to the material removed next to an edge
// given the depth d into the face region and the height h above the face.
type cutFunc func(d, h, size float64) float64

func chamferCut(d, h, c float64) float64 {
	return math.Max(math.Max(-d-c, d-c), math.Max(h-c, (d-h-c)/math.Sqrt2))
}

func filletCut(d, h, r float64) float64 {
	box := math.Max(math.Max(-d-r, d-r), math.Max(h-r, -h-r))
	return math.Max(box, r-math.Hypot(r+h, r-d))
}

func blend(acc Solid, sel EdgeSelector, size float64, op string, cut cutFunc) (Solid, error) {
	if acc.IsZero() {
		return Solid{}, &GeometryError{Op: op, Msg: "nothing to blend"}
	}
	if size <= 0 {
		return Solid{}, &GeometryError{Op: op, Msg: "size must be positive"}
	}
	if sel == nil {
		return Solid{}, &GeometryError{Op: op, Msg: "no edge selector"}
	}
	edges, err := sel(acc)
	if err != nil {
		return Solid{}, err
	}
	if len(edges) == 0 {
		return Solid{}, &GeometryError{Op: op, Msg: "no edges selected"}
	}
	cuts := make([]sdf.SDF3, len(edges))
	for i, e := range edges {
		pl := e.Face.Plane
		// The face may have lost part of its region to later features; cut
		// along what is still material just under the plane.
		section := sdf.Slice2D(acc.s, r3.Sub(pl.Origin, r3.Scale(faceOffset, pl.Normal)), pl.XDir, pl.YDir())
		footprint := sdf.Intersect2D(e.Face.Region, section)
		fb := footprint.Bounds()
		cuts[i] = sdf.Transform3D(&edgeCut{
			region: footprint,
			size:   size,
			cut:    cut,
			bb: r3.Box{
				Min: r3.Vec{X: fb.Min.X, Y: fb.Min.Y, Z: -size},
				Max: r3.Vec{X: fb.Max.X, Y: fb.Max.Y, Z: size},
			},
		}, pl.Frame())
	}
	var tool sdf.SDF3 = cuts[0]
	if len(cuts) > 1 {
		tool = sdf.Union3D(cuts...)
	}
	out := Solid{s: sdf.Difference3D(acc.s, tool), caps: acc.caps}
	return out, nil
}

// edgeCut is the material removed along the boundary loop of a face
// footprint, in face local coordinates with Z along the outward normal.
// The cut never leaves the footprint.
type edgeCut struct {
	region sdf.SDF2
	size   float64
	cut    cutFunc
	bb     r3.Box
}

func (e *edgeCut) Evaluate(p r3.Vec) float64 {
	slab := math.Abs(p.Z) - e.size
	if slab > 0 {
		return slab
	}
	d := -e.region.Evaluate(r2.Vec{X: p.X, Y: p.Y})
	if d < 0 {
		return math.Max(-d, slab)
	}
	return math.Max(e.cut(d, p.Z, e.size), -d)
}

func (e *edgeCut) Bounds() r3.Box { return e.bb }
