package d3

import "gonum.org/v1/gonum/spatial/r3"

// Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Extend returns the box enclosing both a and b.
func (a Box) Extend(b Box) Box {
	return Box{Min: MinElem(a.Min, b.Min), Max: MaxElem(a.Max, b.Max)}
}

func (a Box) Size() r3.Vec { return r3.Sub(a.Max, a.Min) }

func (a Box) Center() r3.Vec { return r3.Scale(0.5, r3.Add(a.Min, a.Max)) }

// ScaleAboutCenter returns the box grown or shrunk by k about its center.
func (a Box) ScaleAboutCenter(k float64) Box {
	return NewBox(a.Center(), r3.Scale(k, a.Size()))
}

// Vertices returns the 8 corners of the box. Bit i of the index picks
// the maximum on axis i, X first.
func (a Box) Vertices() Set {
	v := make(Set, 8)
	for i := range v {
		v[i] = a.Min
		if i&1 != 0 {
			v[i].X = a.Max.X
		}
		if i&2 != 0 {
			v[i].Y = a.Max.Y
		}
		if i&4 != 0 {
			v[i].Z = a.Max.Z
		}
	}
	return v
}
