// Package assembly places built parts and collects them for export.
package assembly

import (
	"fmt"
	"strings"

	"github.com/soypat/meisseli/feature"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Placement is an ordered list of rigid moves applied to a part. The zero
// Placement leaves the part where it was built.
type Placement struct {
	steps []move
}

type move struct {
	translate r3.Vec
	axis      feature.Axis
	deg       float64
	rotate    bool
}

// Translate returns p followed by a translation.
func (p Placement) Translate(x, y, z float64) Placement {
	return p.with(move{translate: r3.Vec{X: x, Y: y, Z: z}})
}

// Rotate returns p followed by a rotation of deg degrees about a world
// axis through the origin.
func (p Placement) Rotate(axis feature.Axis, deg float64) Placement {
	return p.with(move{axis: axis, deg: deg, rotate: true})
}

func (p Placement) with(m move) Placement {
	steps := make([]move, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return Placement{steps: append(steps, m)}
}

// At is shorthand for the zero placement followed by a translation.
func At(x, y, z float64) Placement { return Placement{}.Translate(x, y, z) }

// Matrix returns the transform applying the steps in order.
func (p Placement) Matrix() sdf.M44 {
	m := sdf.Identity3D()
	for _, s := range p.steps {
		var step sdf.M44
		if s.rotate {
			step = sdf.Rotate3D(s.axis.Vec(), sdf.DtoR(s.deg))
		} else {
			step = sdf.Translate3D(s.translate)
		}
		m = step.Mul(m)
	}
	return m
}

func (p Placement) String() string {
	if len(p.steps) == 0 {
		return "identity"
	}
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		if s.rotate {
			parts[i] = fmt.Sprintf("rot%v(%g)", s.axis, s.deg)
		} else {
			parts[i] = fmt.Sprintf("move(%g,%g,%g)", s.translate.X, s.translate.Y, s.translate.Z)
		}
	}
	return strings.Join(parts, " ")
}

// Item is one named, placed part of a collection.
type Item struct {
	Name      string
	Solid     feature.Solid
	Placement Placement
	// Placed is Solid moved by Placement.
	Placed feature.Solid
}

// Collection holds placed parts in declaration order.
type Collection struct {
	items []Item
	index map[string]int
}

// Entry pairs a part solid with its placement for Compose.
type Entry struct {
	Name      string
	Solid     feature.Solid
	Placement Placement
}

// Compose places every entry. Names must be unique and solids non-empty.
// Placement only ever produces new solids; the entries are not modified.
func Compose(entries ...Entry) (*Collection, error) {
	c := &Collection{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("part %d has no name", len(c.items))
		}
		if _, dup := c.index[e.Name]; dup {
			return nil, fmt.Errorf("duplicate part name %q", e.Name)
		}
		if e.Solid.IsZero() {
			return nil, fmt.Errorf("part %q has no solid", e.Name)
		}
		c.index[e.Name] = len(c.items)
		c.items = append(c.items, Item{
			Name:      e.Name,
			Solid:     e.Solid,
			Placement: e.Placement,
			Placed:    feature.Locate(e.Solid, e.Placement.Matrix()),
		})
	}
	return c, nil
}

// Len returns the number of parts.
func (c *Collection) Len() int { return len(c.items) }

// Items returns the placed parts in declaration order.
func (c *Collection) Items() []Item { return append([]Item(nil), c.items...) }

// Names returns the part names in declaration order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.items))
	for i, it := range c.items {
		names[i] = it.Name
	}
	return names
}

// Get returns the part called name.
func (c *Collection) Get(name string) (Item, bool) {
	i, ok := c.index[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}
