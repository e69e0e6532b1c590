package d2

import "gonum.org/v1/gonum/spatial/r2"

// Box is a 2d bounding box.
type Box r2.Box

// NewBox2 creates a 2d box with a given center and size.
func NewBox2(center, size r2.Vec) Box {
	half := r2.Scale(0.5, size)
	return Box{Min: r2.Sub(center, half), Max: r2.Add(center, half)}
}

// Extend returns the box enclosing both a and b.
func (a Box) Extend(b Box) Box {
	return Box{Min: MinElem(a.Min, b.Min), Max: MaxElem(a.Max, b.Max)}
}

func (a Box) Size() r2.Vec { return r2.Sub(a.Max, a.Min) }

func (a Box) Center() r2.Vec { return r2.Scale(0.5, r2.Add(a.Min, a.Max)) }
