package feature

import (
	"fmt"
	"math"

	"github.com/soypat/meisseli/form2"
	"github.com/soypat/meisseli/form3"
	"github.com/soypat/meisseli/sdf"
	"github.com/soypat/meisseli/sketch"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Feature is one step of a part. Apply never modifies acc.
type Feature interface {
	Apply(acc Solid) (Solid, error)
	String() string
}

// lift is how far tools that start on a plane reach past it so that the
// boolean leaves no zero thickness skin.
const lift = 0.01

// Extrude sweeps a profile along the plane normal by Distance. A negative
// Distance sweeps against the normal. With Both set the sweep goes
// Distance to each side of the plane.
type Extrude struct {
	Profile  sketch.Profile
	Plane    PlaneRef
	Distance float64
	Mode     Mode
	Both     bool
}

func (e Extrude) String() string {
	both := ""
	if e.Both {
		both = " both"
	}
	return fmt.Sprintf("Extrude(%.4g%s %v)", e.Distance, both, e.Mode)
}

func (e Extrude) Apply(acc Solid) (Solid, error) {
	if e.Profile.IsZero() {
		return Solid{}, &GeometryError{Op: "extrude", Msg: "empty profile"}
	}
	if e.Distance == 0 {
		return Solid{}, &GeometryError{Op: "extrude", Msg: "zero distance"}
	}
	p, err := resolvePlane(e.Plane, acc)
	if err != nil {
		return Solid{}, err
	}
	lo, hi := math.Min(0, e.Distance), math.Max(0, e.Distance)
	if e.Both {
		lo, hi = -math.Abs(e.Distance), math.Abs(e.Distance)
	}
	tool, err := prism(e.Profile.Region(), p, lo, hi)
	if err != nil {
		return Solid{}, err
	}
	return combine(acc, tool, e.Mode)
}

// prism extrudes region between heights lo and hi over plane p.
func prism(region sdf.SDF2, p Plane, lo, hi float64) (Solid, error) {
	s, err := form3.Extrude(region, hi-lo)
	if err != nil {
		return Solid{}, &GeometryError{Op: "extrude", Msg: "kernel rejected profile", Err: err}
	}
	s = sdf.Transform3D(s, p.Frame().Mul(sdf.Translate3D(r3.Vec{Z: (lo + hi) / 2})))
	return NewSolid(s).withCaps(
		candidate{plane: p.Offset(hi), region: region},
		candidate{plane: p.Offset(lo).Flipped(), region: flipY(region)},
	), nil
}

// ExtrudeUntil sweeps a profile against the plane normal until it meets
// the accumulator. Mirror adds a reflected copy of the sweep about each
// plane, as for paired bosses.
type ExtrudeUntil struct {
	Profile sketch.Profile
	Plane   PlaneRef
	Mode    Mode
	Mirror  []Plane
}

func (e ExtrudeUntil) String() string {
	return fmt.Sprintf("ExtrudeUntil(%v mirrors=%d)", e.Mode, len(e.Mirror))
}

func (e ExtrudeUntil) Apply(acc Solid) (Solid, error) {
	if acc.IsZero() {
		return Solid{}, &GeometryError{Op: "extrude until", Msg: "nothing to extrude to"}
	}
	if e.Profile.IsZero() {
		return Solid{}, &GeometryError{Op: "extrude until", Msg: "empty profile"}
	}
	p, err := resolvePlane(e.Plane, acc)
	if err != nil {
		return Solid{}, err
	}
	hf, err := newHeightField(e.Profile.Region(), p, acc.s)
	if err != nil {
		return Solid{}, err
	}
	tool := NewSolid(sdf.Transform3D(hf, p.Frame())).withCaps(
		candidate{plane: p, region: e.Profile.Region()},
	)
	for _, m := range e.Mirror {
		if err := m.valid(); err != nil {
			return Solid{}, &GeometryError{Op: "extrude until", Msg: "bad mirror plane", Err: err}
		}
		mirrored := Mirror(tool, m)
		tool = Solid{s: sdf.Union3D(tool.s, mirrored.s), caps: tool.caps}.withCaps(mirrored.caps...)
	}
	return combine(acc, tool, e.Mode)
}

// heightField is a column under a region whose depth varies over the
// region. Depth is measured against the local Z axis.
type heightField struct {
	region sdf.SDF2
	grid   *sdf.Map2
	depth  []float64
	// lip divides the depth term so the field stays a distance bound where
	// the depth changes fast.
	lip float64
	bb  r3.Box
}

const (
	heightCells = 32
	// heightOverlap sinks the column into the surface it stops at.
	heightOverlap = 0.05
)

func newHeightField(region sdf.SDF2, p Plane, target sdf.SDF3) (*heightField, error) {
	grid, err := sdf.NewMap2(region.Bounds(), sdf.V2i{heightCells, heightCells})
	if err != nil {
		return nil, &GeometryError{Op: "extrude until", Msg: "degenerate profile", Err: err}
	}
	bb := target.Bounds()
	reach := r3.Norm(r3.Sub(bb.Max, bb.Min)) + r3.Norm(r3.Sub(p.Origin, bb.Min))
	down := r3.Scale(-1, p.Normal)
	hf := &heightField{region: region, grid: grid, depth: make([]float64, heightCells*heightCells)}
	var deepest float64
	hit := false
	for j := 0; j < heightCells; j++ {
		for i := 0; i < heightCells; i++ {
			q := grid.ToV2(sdf.V2i{i, j})
			_, t, _ := sdf.Raycast3(target, p.Point(q), down, 1, 1e-4, reach, 2000)
			if t < 0 {
				t = 0
			} else if region.Evaluate(q) < 0 {
				hit = true
			}
			hf.depth[j*heightCells+i] = t
			deepest = math.Max(deepest, t)
		}
	}
	if !hit {
		return nil, &GeometryError{Op: "extrude until", Msg: "profile does not meet the solid"}
	}
	delta := grid.Delta()
	var slope float64
	for j := 0; j < heightCells; j++ {
		for i := 0; i < heightCells; i++ {
			d := hf.depth[j*heightCells+i]
			if i+1 < heightCells {
				slope = math.Max(slope, math.Abs(hf.depth[j*heightCells+i+1]-d)/delta.X)
			}
			if j+1 < heightCells {
				slope = math.Max(slope, math.Abs(hf.depth[(j+1)*heightCells+i]-d)/delta.Y)
			}
		}
	}
	hf.lip = math.Sqrt(1 + slope*slope)
	rb := region.Bounds()
	hf.bb = r3.Box{
		Min: r3.Vec{X: rb.Min.X, Y: rb.Min.Y, Z: -deepest - heightOverlap},
		Max: r3.Vec{X: rb.Max.X, Y: rb.Max.Y, Z: 0},
	}
	return hf, nil
}

// at returns the bilinear depth at q.
func (h *heightField) at(q r2.Vec) float64 {
	g := h.grid.ToGrid(q)
	n := float64(heightCells - 1)
	g.X = sdf.Clamp(g.X, 0, n)
	g.Y = sdf.Clamp(g.Y, 0, n)
	i0, j0 := int(g.X), int(g.Y)
	i1, j1 := min(i0+1, heightCells-1), min(j0+1, heightCells-1)
	fx, fy := g.X-float64(i0), g.Y-float64(j0)
	d00 := h.depth[j0*heightCells+i0]
	d10 := h.depth[j0*heightCells+i1]
	d01 := h.depth[j1*heightCells+i0]
	d11 := h.depth[j1*heightCells+i1]
	return sdf.Mix(sdf.Mix(d00, d10, fx), sdf.Mix(d01, d11, fx), fy)
}

func (h *heightField) Evaluate(p r3.Vec) float64 {
	q := r2.Vec{X: p.X, Y: p.Y}
	bottom := -h.at(q) - heightOverlap
	return math.Max(h.region.Evaluate(q), math.Max(p.Z, (bottom-p.Z)/h.lip))
}

func (h *heightField) Bounds() r3.Box { return h.bb }

// Section is a profile placed at an offset along the loft plane normal.
type Section struct {
	Profile sketch.Profile
	Offset  float64
}

// Loft blends between consecutive sections. Offsets must be strictly
// monotonic and all sections must share the same topology.
type Loft struct {
	Sections []Section
	Plane    PlaneRef
	Mode     Mode
}

func (l Loft) String() string {
	return fmt.Sprintf("Loft(sections=%d %v)", len(l.Sections), l.Mode)
}

func (l Loft) Apply(acc Solid) (Solid, error) {
	secs, err := l.sections()
	if err != nil {
		return Solid{}, err
	}
	p, err := resolvePlane(l.Plane, acc)
	if err != nil {
		return Solid{}, err
	}
	var parts []sdf.SDF3
	for i := 0; i+1 < len(secs); i++ {
		a, b := secs[i], secs[i+1]
		s, err := form3.Loft(a.Profile.Region(), b.Profile.Region(), b.Offset-a.Offset)
		if err != nil {
			return Solid{}, &GeometryError{Op: "loft", Msg: "kernel rejected sections", Err: err}
		}
		parts = append(parts, sdf.Transform3D(s, sdf.Translate3D(r3.Vec{Z: (a.Offset + b.Offset) / 2})))
	}
	var s sdf.SDF3 = parts[0]
	if len(parts) > 1 {
		s = sdf.Union3D(parts...)
	}
	first, last := secs[0], secs[len(secs)-1]
	tool := NewSolid(sdf.Transform3D(s, p.Frame())).withCaps(
		candidate{plane: p.Offset(last.Offset), region: last.Profile.Region()},
		candidate{plane: p.Offset(first.Offset).Flipped(), region: flipY(first.Profile.Region())},
	)
	return combine(acc, tool, l.Mode)
}

// sections validates the loft sections and returns them by ascending offset.
func (l Loft) sections() ([]Section, error) {
	if len(l.Sections) < 2 {
		return nil, &GeometryError{Op: "loft", Msg: "need at least two sections"}
	}
	secs := append([]Section(nil), l.Sections...)
	ascending := secs[1].Offset > secs[0].Offset
	for i := 1; i < len(secs); i++ {
		step := secs[i].Offset - secs[i-1].Offset
		if step == 0 || (step > 0) != ascending {
			return nil, &GeometryError{Op: "loft", Msg: "section offsets must be distinct and monotonic"}
		}
	}
	if !ascending {
		for i, j := 0, len(secs)-1; i < j; i, j = i+1, j-1 {
			secs[i], secs[j] = secs[j], secs[i]
		}
	}
	var pieces, holes int
	for i, sec := range secs {
		if sec.Profile.IsZero() {
			return nil, &GeometryError{Op: "loft", Msg: fmt.Sprintf("section %d is empty", i)}
		}
		pc, hl := sec.Profile.Topology()
		if pc == 0 {
			return nil, &GeometryError{Op: "loft", Msg: fmt.Sprintf("section %d is empty", i)}
		}
		if i > 0 && (pc != pieces || hl != holes) {
			return nil, &GeometryError{Op: "loft", Msg: fmt.Sprintf(
				"incompatible sections: %d pieces with %d holes against %d pieces with %d holes", pc, hl, pieces, holes)}
		}
		pieces, holes = pc, hl
	}
	return secs, nil
}

// Combine applies a boolean between the accumulator and another solid.
type Combine struct {
	Tool Solid
	Mode Mode
}

func (c Combine) String() string { return fmt.Sprintf("Combine(%v %v)", c.Tool, c.Mode) }

func (c Combine) Apply(acc Solid) (Solid, error) {
	if c.Tool.IsZero() {
		return Solid{}, &GeometryError{Op: "combine", Msg: "empty tool"}
	}
	return combine(acc, c.Tool, c.Mode)
}

// Box places a box on a plane. Size is given in plane coordinates with Z
// along the normal. Align positions the box relative to At along each of
// the three plane axes. The box is rotated about the plane normal by
// RotationDeg after alignment.
type Box struct {
	Plane       PlaneRef
	At          r2.Vec
	Size        r3.Vec
	Align       [3]sketch.Align
	RotationDeg float64
	Mode        Mode
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%.4gx%.4gx%.4g %v)", b.Size.X, b.Size.Y, b.Size.Z, b.Mode)
}

func (b Box) Apply(acc Solid) (Solid, error) {
	p, err := resolvePlane(b.Plane, acc)
	if err != nil {
		return Solid{}, err
	}
	rect, err := form2.Box(r2.Vec{X: b.Size.X, Y: b.Size.Y}, 0)
	if err != nil {
		return Solid{}, &GeometryError{Op: "box", Msg: "invalid size", Err: err}
	}
	off := r2.Vec{X: alignOffset(b.Size.X, b.Align[0]), Y: alignOffset(b.Size.Y, b.Align[1])}
	place := sdf.Translate2D(b.At).Mul(sdf.Rotate2D(sdf.DtoR(b.RotationDeg))).Mul(sdf.Translate2D(off))
	lo := alignOffset(b.Size.Z, b.Align[2]) - b.Size.Z/2
	tool, err := prism(sdf.Transform2D(rect, place), p, lo, lo+b.Size.Z)
	if err != nil {
		return Solid{}, err
	}
	return combine(acc, tool, b.Mode)
}

// Cylinder places a cylinder with its axis along the plane normal.
type Cylinder struct {
	Plane  PlaneRef
	At     r2.Vec
	Radius float64
	Height float64
	Align  [3]sketch.Align
	Mode   Mode
}

func (c Cylinder) String() string {
	return fmt.Sprintf("Cylinder(r=%.4g h=%.4g %v)", c.Radius, c.Height, c.Mode)
}

func (c Cylinder) Apply(acc Solid) (Solid, error) {
	p, err := resolvePlane(c.Plane, acc)
	if err != nil {
		return Solid{}, err
	}
	if c.Height <= 0 {
		return Solid{}, &GeometryError{Op: "cylinder", Msg: "height must be positive"}
	}
	disk, err := form2.Circle(c.Radius)
	if err != nil {
		return Solid{}, &GeometryError{Op: "cylinder", Msg: "invalid radius", Err: err}
	}
	d := 2 * c.Radius
	center := r2.Add(c.At, r2.Vec{X: alignOffset(d, c.Align[0]), Y: alignOffset(d, c.Align[1])})
	lo := alignOffset(c.Height, c.Align[2]) - c.Height/2
	tool, err := prism(sdf.Transform2D(disk, sdf.Translate2D(center)), p, lo, lo+c.Height)
	if err != nil {
		return Solid{}, err
	}
	return combine(acc, tool, c.Mode)
}

// alignOffset returns where the center of an extent of the given size
// lands relative to the anchor.
func alignOffset(size float64, a sketch.Align) float64 {
	switch a {
	case sketch.Min:
		return size / 2
	case sketch.Max:
		return -size / 2
	}
	return 0
}

// DefaultCounterSinkAngle is the included angle of countersinks in degrees.
const DefaultCounterSinkAngle = 82

// Hole drills countersunk holes into the accumulator starting at the plane
// and going against its normal. A zero Depth drills through. A zero
// CounterSinkRadius drills a plain hole.
type Hole struct {
	Plane             PlaneRef
	At                []r2.Vec
	Radius            float64
	CounterSinkRadius float64
	Depth             float64
	// Angle is the included countersink angle in degrees.
	Angle float64
}

func (h Hole) String() string {
	depth := "through"
	if h.Depth > 0 {
		depth = fmt.Sprintf("%.4g", h.Depth)
	}
	return fmt.Sprintf("Hole(r=%.4g cs=%.4g depth=%s n=%d)", h.Radius, h.CounterSinkRadius, depth, len(h.At))
}

func (h Hole) Apply(acc Solid) (Solid, error) {
	switch {
	case acc.IsZero():
		return Solid{}, &GeometryError{Op: "hole", Msg: "nothing to drill"}
	case len(h.At) == 0:
		return Solid{}, &GeometryError{Op: "hole", Msg: "no hole locations"}
	case h.Radius <= 0 || h.Depth < 0:
		return Solid{}, &GeometryError{Op: "hole", Msg: "radius must be positive and depth not negative"}
	case h.CounterSinkRadius != 0 && h.CounterSinkRadius <= h.Radius:
		return Solid{}, &GeometryError{Op: "hole", Msg: "countersink radius must exceed hole radius"}
	}
	p, err := resolvePlane(h.Plane, acc)
	if err != nil {
		return Solid{}, err
	}
	depth := h.Depth
	through := depth == 0
	if through {
		bb := acc.Bounds()
		depth = r3.Norm(r3.Sub(bb.Max, bb.Min)) + r3.Norm(r3.Sub(p.Origin, bb.Min))
	}
	angle := h.Angle
	if angle == 0 {
		angle = DefaultCounterSinkAngle
	}
	if angle <= 0 || angle >= 180 {
		return Solid{}, &GeometryError{Op: "hole", Msg: fmt.Sprintf("bad countersink angle %g", angle)}
	}
	bore, err := form3.Cylinder(depth+lift, h.Radius, 0)
	if err != nil {
		return Solid{}, &GeometryError{Op: "hole", Msg: "kernel rejected bore", Err: err}
	}
	bits := []sdf.SDF3{sdf.Transform3D(bore, sdf.Translate3D(r3.Vec{Z: (lift - depth) / 2}))}
	if h.CounterSinkRadius > 0 {
		hc := (h.CounterSinkRadius - h.Radius) / math.Tan(sdf.DtoR(angle)/2)
		cone, err := form3.Cone(hc, h.Radius, h.CounterSinkRadius, 0)
		if err != nil {
			return Solid{}, &GeometryError{Op: "hole", Msg: "kernel rejected countersink", Err: err}
		}
		rim, err := form3.Cylinder(lift, h.CounterSinkRadius, 0)
		if err != nil {
			return Solid{}, &GeometryError{Op: "hole", Msg: "kernel rejected countersink", Err: err}
		}
		bits = append(bits,
			sdf.Transform3D(cone, sdf.Translate3D(r3.Vec{Z: -hc / 2})),
			sdf.Transform3D(rim, sdf.Translate3D(r3.Vec{Z: lift / 2})),
		)
	}
	drill := bits[0]
	if len(bits) > 1 {
		drill = sdf.Union3D(bits...)
	}
	floor, err := form2.Circle(h.Radius)
	if err != nil {
		return Solid{}, &GeometryError{Op: "hole", Msg: "invalid radius", Err: err}
	}
	var tools []sdf.SDF3
	var floors []sdf.SDF2
	for _, at := range h.At {
		tools = append(tools, sdf.Transform3D(drill, sdf.Translate3D(r3.Vec{X: at.X, Y: at.Y})))
		floors = append(floors, sdf.Transform2D(floor, sdf.Translate2D(at)))
	}
	var s sdf.SDF3 = tools[0]
	if len(tools) > 1 {
		s = sdf.Union3D(tools...)
	}
	tool := NewSolid(sdf.Transform3D(s, p.Frame()))
	if !through {
		var region sdf.SDF2 = floors[0]
		if len(floors) > 1 {
			region = sdf.Union2D(floors...)
		}
		tool = tool.withCaps(candidate{plane: p.Offset(-depth).Flipped(), region: flipY(region)})
	}
	return combine(acc, tool, Subtract)
}

// Keep picks the sides of a split.
type Keep int

const (
	// KeepTop keeps the side the plane normal points to.
	KeepTop Keep = iota
	KeepBottom
	// KeepBoth is only valid for SplitSolid.
	KeepBoth
)

func (k Keep) String() string {
	switch k {
	case KeepTop:
		return "top"
	case KeepBottom:
		return "bottom"
	case KeepBoth:
		return "both"
	}
	return fmt.Sprintf("Keep(%d)", int(k))
}

// Split cuts the accumulator with a plane and keeps one side.
type Split struct {
	Plane Plane
	Keep  Keep
}

func (s Split) String() string { return fmt.Sprintf("Split(%v keep=%v)", s.Plane, s.Keep) }

func (s Split) Apply(acc Solid) (Solid, error) {
	if s.Keep == KeepBoth {
		return Solid{}, &GeometryError{Op: "split", Msg: "a part can only keep one side; use SplitSolid"}
	}
	halves, err := SplitSolid(acc, s.Plane, s.Keep)
	if err != nil {
		return Solid{}, err
	}
	return halves[0], nil
}

func resolvePlane(ref PlaneRef, acc Solid) (Plane, error) {
	if ref == nil {
		return XY, nil
	}
	return ref.resolve(acc)
}

// combine applies mode between acc and tool. The zero accumulator only
// accepts Add.
func combine(acc, tool Solid, mode Mode) (Solid, error) {
	if acc.IsZero() {
		if mode != Add {
			return Solid{}, &GeometryError{Op: mode.String(), Msg: "nothing to operate on"}
		}
		return tool, nil
	}
	switch mode {
	case Add:
		return Solid{s: sdf.Union3D(acc.s, tool.s), caps: acc.caps}.withCaps(tool.caps...), nil
	case Subtract:
		return Solid{s: sdf.Difference3D(acc.s, tool.s), caps: acc.caps}.withCaps(tool.flippedCaps()...), nil
	case Intersect:
		return Solid{s: sdf.Intersect3D(acc.s, tool.s), caps: acc.caps}.withCaps(tool.caps...), nil
	}
	return Solid{}, fmt.Errorf("unknown mode %v", mode)
}
