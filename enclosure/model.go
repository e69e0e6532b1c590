package enclosure

import (
	"math"

	"github.com/soypat/meisseli/assembly"
	"github.com/soypat/meisseli/feature"
	"github.com/soypat/meisseli/param"
	"github.com/soypat/meisseli/sketch"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// profiles are the sketches shared between parts.
type profiles struct {
	outline sketch.Profile // shell cross section
	inline  sketch.Profile // cavity cross section
	lining  sketch.Profile // space around the battery inside the cavity
	button  sketch.Profile // push button cap
}

func buildProfiles(v param.Values) (p profiles, err error) {
	p.outline, err = sketch.NewBuilder().
		Add(sketch.Circle(v.Get("outer_d") / 2)).
		Intersect(sketch.Rect(107, v.Get("boxh"))).
		Build()
	if err != nil {
		return p, err
	}
	p.inline, err = sketch.NewBuilder().Add(p.outline).Offset(-v.Get("wall")).Build()
	if err != nil {
		return p, err
	}
	p.lining, err = sketch.NewBuilder().
		Add(p.inline).
		Subtract(sketch.Circle(v.Get("batt_d") / 2)).
		Build()
	if err != nil {
		return p, err
	}
	halfX := v.Get("button_xdim") / 2
	ydim := v.Get("button_ydim")
	roff := halfX - ydim/2
	p.button, err = sketch.NewBuilder().
		Add(sketch.AlignedRect(halfX, ydim, sketch.Max, sketch.Center)).
		Fillet(sketch.Group(sketch.X, 0), 0.5).
		Add(sketch.AlignedRect(roff, ydim, sketch.Min, sketch.Center)).
		Add(sketch.At(sketch.Circle(ydim/2), roff, 0)).
		Build()
	return p, err
}

// Build constructs every part of the enclosure and places them for export.
func Build(v param.Values, log *zap.Logger) (*assembly.Collection, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("model",
		zap.Float64("total_len", v.Get("total_len")),
		zap.Float64("boxh", v.Get("boxh")),
		zap.Float64("outer_d", v.Get("outer_d")),
		zap.Float64("pcb_len", v.Get("pcb_len")),
	)
	p, err := buildProfiles(v)
	if err != nil {
		return nil, err
	}
	blank, err := feature.Build(blankPart(v, p), log)
	if err != nil {
		return nil, err
	}
	halves, err := feature.SplitSolid(blank, feature.XY, feature.KeepBoth)
	if err != nil {
		return nil, err
	}
	var parts []feature.Part
	for _, build := range []func() (feature.Part, error){
		func() (feature.Part, error) { return bottomPart(v, p, halves[0]) },
		func() (feature.Part, error) { return buttonPart(v, p) },
		func() (feature.Part, error) { return lidPart(v, p, halves[1]) },
		func() (feature.Part, error) { return holder4Part(v) },
	} {
		part, err := build()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	solids := make(map[string]feature.Solid, len(parts)+1)
	for _, part := range parts {
		s, err := feature.Build(part, log)
		if err != nil {
			return nil, err
		}
		solids[part.Name] = s
	}
	part, err := holder635Part(solids["holder4"])
	if err != nil {
		return nil, err
	}
	if solids[part.Name], err = feature.Build(part, log); err != nil {
		return nil, err
	}
	return assembly.Compose(
		assembly.Entry{Name: "bottom", Solid: solids["bottom"]},
		assembly.Entry{Name: "button", Solid: solids["button"], Placement: assembly.At(50, -30, 0)},
		assembly.Entry{Name: "lid", Solid: solids["lid"], Placement: assembly.At(0, -40, 0).Rotate(feature.X, 180)},
		assembly.Entry{Name: "holder4", Solid: solids["holder4"], Placement: assembly.At(20, -30, 0)},
		assembly.Entry{Name: "holder635", Solid: solids["holder635"], Placement: assembly.At(0, -30, 0)},
	)
}

// endFace is the switch end of the shell seen from outside, with X to the
// viewer's right and Y up.
var endFace = feature.Plane{XDir: r3.Vec{Y: -1}, Normal: r3.Vec{X: -1}}

var (
	top    = feature.Extremal(feature.Z, feature.Max)
	xStart = feature.Extremal(feature.X, feature.Min)
	xEnd   = feature.Extremal(feature.X, feature.Max)
)

// blankPart is the full length shell tube, later split into bottom and lid.
func blankPart(v param.Values, p profiles) feature.Part {
	total := v.Get("total_len")
	return feature.Part{Name: "blank", Steps: []feature.Feature{
		feature.Extrude{Profile: p.outline, Plane: feature.YZ, Distance: total},
		feature.Chamfer{Edges: feature.EdgesOf(feature.AnyOf(xStart, xEnd)), Amount: v.Get("wall") - 0.4},
		feature.Extrude{Profile: p.inline, Plane: feature.OnFace(xStart), Distance: -total, Mode: feature.Subtract},
	}}
}

// sleeve returns the battery lining cut to one side of a horizontal line at
// height y. Keeping the top side leaves the material above y.
func sleeve(p profiles, y float64, keepTop bool) (sketch.Profile, error) {
	align := sketch.Min
	if keepTop {
		align = sketch.Max
	}
	return sketch.NewBuilder().
		Add(p.lining).
		Subtract(sketch.At(sketch.AlignedRect(107, 107, sketch.Center, align), 0, y)).
		Build()
}

func lidPart(v param.Values, p profiles, upper feature.Solid) (feature.Part, error) {
	// Raised by 1 to leave a passage for the switch wire.
	lining, err := sleeve(p, 1, true)
	if err != nil {
		return feature.Part{}, err
	}
	return feature.Part{Name: "lid", Steps: []feature.Feature{
		feature.Combine{Tool: upper, Mode: feature.Add},
		feature.Extrude{Profile: lining, Plane: feature.YZ.Offset(v.Get("sleeve_x")), Distance: v.Get("sleeve_len")},
		feature.Hole{
			Plane:             feature.XY.Offset(v.Get("boxh") / 2),
			At:                []r2.Vec{{X: v.Get("mount_len") / 2}, {X: v.Get("lid_screw_x2")}},
			Radius:            v.Get("lid_screw_d") / 2,
			CounterSinkRadius: v.Get("lid_screw_cs_d") / 2,
		},
	}}, nil
}

func bottomPart(v param.Values, p profiles, lower feature.Solid) (feature.Part, error) {
	var (
		wall    = v.Get("wall")
		pitch   = v.Get("pitch")
		pcbThk  = v.Get("pcb_thk")
		innerR  = v.Get("inner_r")
		boxh    = v.Get("boxh")
		total   = v.Get("total_len")
		eps     = v.Get("eps")
		wall1X  = v.Get("wall1_x")
		surface = v.Get("pcb_surface_off")
		knob    = v.Get("switch_knob")
	)
	steps := []feature.Feature{feature.Combine{Tool: lower, Mode: feature.Add}}

	// End, battery stop and motor walls.
	for _, w := range [][2]float64{
		{0, v.Get("mount_len")},
		{wall1X, wall},
		{v.Get("wall2_x"), 9 + 2},
	} {
		steps = append(steps, feature.Extrude{Profile: p.inline, Plane: feature.YZ.Offset(w[0]), Distance: w[1]})
	}

	// Power switch inlay: knob, switch body, switch pcb and the cable alley.
	centered := [3]sketch.Align{sketch.Center, sketch.Center, sketch.Min}
	pcbSize := v.Get("power_pcb_size")
	alley, err := sketch.NewBuilder().Add(sketch.Polyline(
		r2.Vec{X: -innerR},
		r2.Vec{X: -11.0 / 2, Y: 6.0 / 2}, // top left corner of the switch body pocket
		r2.Vec{X: 1},
		r2.Vec{X: 1, Y: -2.5 * pitch},
		r2.Vec{X: -innerR + 2, Y: -2.5 * pitch},
	)).Build()
	if err != nil {
		return feature.Part{}, err
	}
	steps = append(steps,
		feature.Box{Plane: feature.YZ, Size: r3.Vec{X: 7.2, Y: 3.8, Z: knob}, Align: centered, Mode: feature.Subtract},
		feature.Box{Plane: feature.YZ.Offset(knob), Size: r3.Vec{X: 11.3, Y: 6.3, Z: 6}, Align: centered, Mode: feature.Subtract},
		feature.Box{Plane: feature.YZ.Offset(surface), Size: r3.Vec{X: pcbSize, Y: pcbSize, Z: pcbThk}, Align: centered, Mode: feature.Subtract},
		feature.Extrude{Profile: alley, Plane: feature.YZ.Offset(surface), Distance: -2, Both: true, Mode: feature.Subtract},
	)

	// Switch label engraved in the end face, shifted left since the O is wider.
	label, err := sketch.NewBuilder().Add(sketch.At(sketch.Text("O     I", 6), -1, 0)).Build()
	if err != nil {
		return feature.Part{}, err
	}
	steps = append(steps, feature.Extrude{Profile: label, Plane: endFace, Distance: -0.5, Mode: feature.Subtract})

	// Battery sleeve, lowered by 1 to leave a passage for the switch wire.
	lining, err := sleeve(p, -1, false)
	if err != nil {
		return feature.Part{}, err
	}
	steps = append(steps, feature.Extrude{Profile: lining, Plane: feature.YZ.Offset(v.Get("sleeve_x")), Distance: v.Get("sleeve_len")})

	// Wire alley from the battery to the pcb through the battery stop wall.
	const alleyDeg = 135
	steps = append(steps, feature.Box{
		Plane:       feature.YZ.Offset(wall1X),
		At:          r2.Vec{X: innerR * math.Cos(alleyDeg*math.Pi/180), Y: innerR * math.Sin(alleyDeg*math.Pi/180)},
		Size:        r3.Vec{X: 5, Y: 2, Z: wall},
		Align:       [3]sketch.Align{sketch.Max, sketch.Min, sketch.Min},
		RotationDeg: alleyDeg,
		Mode:        feature.Subtract,
	})

	// Battery spring mount.
	springOuter, err := circle(11.0 / 2)
	if err != nil {
		return feature.Part{}, err
	}
	springInner, err := circle(8.2 / 2)
	if err != nil {
		return feature.Part{}, err
	}
	springSeat, err := circle(6.5 / 2)
	if err != nil {
		return feature.Part{}, err
	}
	wireSlot, err := sketch.NewBuilder().Add(sketch.At(sketch.Slot(boxh, 2, 90), 0, boxh/2)).Build()
	if err != nil {
		return feature.Part{}, err
	}
	steps = append(steps,
		feature.Loft{Plane: feature.YZ.Offset(wall1X), Sections: []feature.Section{
			{Profile: springOuter, Offset: 0},
			{Profile: springInner, Offset: -1},
		}},
		feature.Extrude{Profile: springSeat, Plane: feature.YZ.Offset(wall1X), Distance: -1, Mode: feature.Subtract},
		feature.Extrude{Profile: wireSlot, Plane: feature.YZ.Offset(wall1X), Distance: 5, Both: true, Mode: feature.Subtract},
	)

	// Motor mount pocket, axle hole and screw holes.
	bridging := v.Get("motor_mount_bridging_extra")
	axle, err := circle(2.1)
	if err != nil {
		return feature.Part{}, err
	}
	screw := v.Get("motor_mount_screw_dist") / 2
	steps = append(steps,
		feature.Box{
			Plane: feature.XY.Offset(bridging),
			At:    r2.Vec{X: total - 2},
			Size:  r3.Vec{X: 9, Y: 12.5 + 2*eps, Z: 10.2 + 2*eps + bridging},
			Align: [3]sketch.Align{sketch.Max, sketch.Center, sketch.Center},
			Mode:  feature.Subtract,
		},
		feature.Extrude{Profile: axle, Plane: feature.YZ.Offset(total), Distance: -2, Mode: feature.Subtract},
		feature.Hole{
			Plane:             feature.YZ.Offset(total),
			At:                []r2.Vec{{X: -screw}, {X: screw}},
			Radius:            v.Get("m1_6_hole") / 2,
			CounterSinkRadius: v.Get("m1_6_cs_butt") / 2,
			Depth:             2,
		},
	)

	// Heat set insert holes for the lid screws.
	hsi := v.Get("m2_hsi_hole_d") / 2
	for _, h := range []struct{ x, depth float64 }{
		{v.Get("mount_len") / 2, 5},
		{v.Get("lid_screw_x2"), 3.5},
	} {
		hole, err := sketch.NewBuilder().Add(sketch.At(sketch.Circle(hsi), h.x, 0)).Build()
		if err != nil {
			return feature.Part{}, err
		}
		steps = append(steps, feature.Extrude{
			Profile: hole, Plane: feature.XY.Offset(boxh/2 - wall), Distance: -h.depth, Mode: feature.Subtract,
		})
	}

	// PCB mount bosses grow down from under the pcb to the shell, paired
	// on both sides of the center line.
	dy := v.Get("pcb_mount_dy")
	for _, x := range []float64{v.Get("pcb_mount_sc1_offx"), v.Get("pcb_mount_sc2_offx")} {
		boss, err := sketch.NewBuilder().
			Add(sketch.At(sketch.Circle(hsi+1), x, dy)).
			Add(sketch.At(sketch.AlignedRect(2*hsi+2, innerR-dy, sketch.Center, sketch.Min), x, dy)).
			Subtract(sketch.At(sketch.Circle(hsi), x, dy)).
			Build()
		if err != nil {
			return feature.Part{}, err
		}
		steps = append(steps, feature.ExtrudeUntil{
			Profile: boss,
			Plane:   feature.XY.Offset(-pcbThk),
			Mode:    feature.Add,
			Mirror:  []feature.Plane{feature.XZ},
		})
	}

	// Loose fitting holes for the two push buttons.
	x1, x2 := v.Get("button_x1"), v.Get("button_x2")
	buttons, err := sketch.NewBuilder().
		Add(sketch.At(sketch.Rotated(p.button, 180), x1, 0)).
		Add(sketch.At(p.button, x2, 0)).
		Offset(0.15).
		Build()
	if err != nil {
		return feature.Part{}, err
	}
	steps = append(steps, feature.Extrude{
		Profile: buttons, Plane: feature.XY.Offset(-boxh / 2), Distance: 2 * wall, Mode: feature.Subtract,
	})
	return feature.Part{Name: "bottom", Steps: steps}, nil
}

func buttonPart(v param.Values, p profiles) (feature.Part, error) {
	headroom := v.Get("inside_headroom")
	base, err := sketch.NewBuilder().Add(p.button).Offset(1).Build()
	if err != nil {
		return feature.Part{}, err
	}
	return feature.Part{Name: "button", Steps: []feature.Feature{
		feature.Extrude{Profile: base, Plane: feature.XY, Distance: headroom},
		feature.Extrude{Profile: p.button, Plane: feature.XY.Offset(headroom), Distance: 2.5 * v.Get("wall")},
		feature.Chamfer{Edges: feature.EdgesOf(top), Amount: 0.5},
	}}, nil
}

// hexagon returns a regular hexagon with the given inradius.
func hexagon(inradius float64) sketch.Shape {
	return sketch.RegularPolygon(inradius, 6, true, 30)
}

func holder4Part(v param.Values) (feature.Part, error) {
	var (
		hd       = v.Get("hd")
		shaftLen = v.Get("shaft_len")
	)
	// Motor shaft bore with a flat.
	bore, err := sketch.NewBuilder().
		Add(hexagon(hd / 2)).
		Subtract(sketch.Circle(v.Get("shaft_d")/2 + v.Get("eps"))).
		Add(sketch.At(sketch.AlignedRect(v.Get("slit"), 3, sketch.Min, sketch.Center), 1.2, 0)).
		Build()
	if err != nil {
		return feature.Part{}, err
	}
	hex, err := sketch.NewBuilder().Add(hexagon(hd / 2)).Build()
	if err != nil {
		return feature.Part{}, err
	}
	socket, err := sketch.NewBuilder().Add(hexagon(2.2)).Build()
	if err != nil {
		return feature.Part{}, err
	}
	return feature.Part{Name: "holder4", Steps: []feature.Feature{
		feature.Extrude{Profile: bore, Plane: feature.XY, Distance: shaftLen + 0.5},
		feature.Extrude{Profile: hex, Plane: feature.XY.Offset(shaftLen + 0.5), Distance: 1},
		feature.Extrude{Profile: hex, Plane: feature.OnFace(top), Distance: 14},
		feature.Chamfer{Edges: feature.EdgesOf(top), Amount: 1},
		feature.Extrude{Profile: socket, Plane: feature.OnFace(top), Distance: -12, Mode: feature.Subtract},
		// 5x1 magnet
		feature.Cylinder{Plane: feature.OffsetRef(feature.OnFace(top), -13.5), Radius: 5.4 / 2, Height: 1.1, Mode: feature.Subtract},
	}}, nil
}

// holder635Part widens the holder4 socket to a 6.35 mm bit.
func holder635Part(holder4 feature.Solid) (feature.Part, error) {
	socket, err := sketch.NewBuilder().Add(hexagon(6.55 / 2)).Build()
	if err != nil {
		return feature.Part{}, err
	}
	return feature.Part{Name: "holder635", Steps: []feature.Feature{
		feature.Combine{Tool: holder4, Mode: feature.Add},
		feature.Extrude{Profile: socket, Plane: feature.OnFace(top), Distance: -12, Mode: feature.Subtract},
	}}, nil
}

func circle(r float64) (sketch.Profile, error) {
	return sketch.NewBuilder().Add(sketch.Circle(r)).Build()
}
