package sketch

import (
	"fmt"

	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
)

// Mode is the set operator combining a shape into the accumulated region.
type Mode int

const (
	Add Mode = iota
	Subtract
	Intersect
	offset
)

func (m Mode) String() string {
	switch m {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Intersect:
		return "intersect"
	case offset:
		return "offset"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

type op struct {
	mode   Mode
	el     element
	amount float64 // offset distance
}

// Builder accumulates shapes in declaration order. Operators act on the
// accumulator state left by every earlier operator. The first error sticks
// and is returned by Build.
type Builder struct {
	ops []op
	err error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Add unions s into the accumulator.
func (b *Builder) Add(s Shape) *Builder { return b.combine(Add, s) }

// Subtract removes s from the accumulator.
func (b *Builder) Subtract(s Shape) *Builder { return b.combine(Subtract, s) }

// Intersect keeps the overlap of s and the accumulator.
func (b *Builder) Intersect(s Shape) *Builder { return b.combine(Intersect, s) }

// Combine applies s to the accumulator with mode.
func (b *Builder) Combine(mode Mode, s Shape) *Builder { return b.combine(mode, s) }

func (b *Builder) combine(mode Mode, s Shape) *Builder {
	if b.err != nil {
		return b
	}
	if mode < Add || mode > Intersect {
		return b.fail(fmt.Errorf("invalid mode %v", mode))
	}
	if s == nil {
		return b.fail(fmt.Errorf("%v: nil shape", mode))
	}
	if len(b.ops) == 0 && mode != Add {
		return b.fail(&GeometryError{Op: mode.String(), Msg: "accumulator is empty"})
	}
	el, err := s.element()
	if err != nil {
		return b.fail(err)
	}
	b.ops = append(b.ops, op{mode: mode, el: el.clone()})
	return b
}

// Offset grows (positive d) or shrinks (negative d) the accumulated region
// boundary uniformly. Removing the region entirely is a GeometryError.
func (b *Builder) Offset(d float64) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.ops) == 0 {
		return b.fail(&GeometryError{Op: "offset", Msg: "accumulator is empty"})
	}
	b.ops = append(b.ops, op{mode: offset, amount: d})
	region, err := b.region()
	if err != nil {
		return b.fail(err)
	}
	if isEmpty(region) {
		return b.fail(&GeometryError{Op: "offset", Msg: fmt.Sprintf("offset %g removes the whole region", d)})
	}
	return b
}

// VertexSelector picks vertices out of the current accumulator.
type VertexSelector func(Vertices) Vertices

// Group returns a selector picking the i-th group of vertices grouped by
// their coordinate along axis. Negative indices count from the last group.
func Group(axis Axis, i int) VertexSelector {
	return func(v Vertices) Vertices {
		groups := v.GroupBy(axis)
		if i < 0 {
			i += len(groups)
		}
		if i < 0 || i >= len(groups) {
			return nil
		}
		return groups[i]
	}
}

// Fillet rounds the selected corners of the accumulator with radius r.
// Only polygon corners can be filleted.
func (b *Builder) Fillet(sel VertexSelector, r float64) *Builder {
	if b.err != nil {
		return b
	}
	if r <= 0 {
		return b.fail(fmt.Errorf("fillet: non-positive radius %g", r))
	}
	vs, err := b.vertices()
	if err != nil {
		return b.fail(err)
	}
	picked := sel(vs)
	if len(picked) == 0 {
		return b.fail(&GeometryError{Op: "fillet", Msg: "vertex selection is empty"})
	}
	for _, v := range picked {
		if v.op < 0 || v.op >= len(b.ops) || b.ops[v.op].el.poly == nil {
			return b.fail(&GeometryError{Op: "fillet", Msg: fmt.Sprintf("vertex %v is not a polygon corner", v.Pos)})
		}
		b.ops[v.op].el.round[v.corner] = r
	}
	if _, err := b.region(); err != nil {
		return b.fail(&GeometryError{Op: "fillet", Msg: "cannot round corners", Err: err})
	}
	return b
}

// Vertices returns the corners of the current accumulator.
func (b *Builder) Vertices() (Vertices, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.vertices()
}

// Build returns the accumulated region as an immutable Profile.
func (b *Builder) Build() (Profile, error) {
	if b.err != nil {
		return Profile{}, b.err
	}
	if len(b.ops) == 0 {
		return Profile{}, &GeometryError{Op: "build", Msg: "no shapes added"}
	}
	region, err := b.region()
	if err != nil {
		return Profile{}, err
	}
	if isEmpty(region) {
		return Profile{}, &GeometryError{Op: "build", Msg: "profile is empty"}
	}
	vs, err := b.vertices()
	if err != nil {
		return Profile{}, err
	}
	corners := make([]r2.Vec, len(vs))
	for i, v := range vs {
		corners[i] = v.Pos
	}
	return Profile{region: region, corners: corners}, nil
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// region folds the operator list into one SDF2.
func (b *Builder) region() (acc sdf.SDF2, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = fmt.Errorf("%v", a)
		}
	}()
	for _, o := range b.ops {
		if o.mode == offset {
			acc = sdf.Offset2D(acc, o.amount)
			continue
		}
		s, err := o.el.region()
		if err != nil {
			return nil, err
		}
		switch {
		case acc == nil:
			acc = s
		case o.mode == Add:
			acc = sdf.Union2D(acc, s)
		case o.mode == Subtract:
			acc = sdf.Difference2D(acc, s)
		case o.mode == Intersect:
			acc = sdf.Intersect2D(acc, s)
		}
	}
	return acc, nil
}

// vertexTol is how close to the boundary a corner must lie to be reported.
const vertexTol = 1e-6

func (b *Builder) vertices() (Vertices, error) {
	region, err := b.region()
	if err != nil {
		return nil, err
	}
	var vs Vertices
	add := func(v Vertex) {
		if abs(region.Evaluate(v.Pos)) > vertexTol {
			return
		}
		for _, w := range vs {
			if near(w.Pos, v.Pos) {
				return
			}
		}
		vs = append(vs, v)
	}
	for i, o := range b.ops {
		for j, p := range o.el.poly {
			if o.el.round[j] > 0 {
				continue
			}
			add(Vertex{Pos: p, op: i, corner: j})
		}
		for _, p := range o.el.corners {
			add(Vertex{Pos: p, op: -1})
		}
	}
	return vs, nil
}
