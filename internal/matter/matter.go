// Package matter compensates printed dimensions for material shrinkage.
package matter

import (
	"fmt"
	"sort"
	"strings"
)

// Material describes how a printed plastic shrinks once it cools.
type Material struct {
	Name string
	// Shrink is the thermal contraction of the material once it cools to
	// room temperature.
	Shrink float64
	// PullShrink is the viscoelastic pull of the extruded bead into holes, in mm.
	PullShrink float64
}

var materials = map[string]Material{
	"pla":  {Name: "pla", Shrink: 0.2e-2, PullShrink: 0.45},
	"petg": {Name: "petg", Shrink: 0.4e-2, PullShrink: 0.3},
}

// Lookup returns the material registered under name, ignoring case.
func Lookup(name string) (Material, error) {
	m, ok := materials[strings.ToLower(name)]
	if !ok {
		return Material{}, fmt.Errorf("unknown material %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return m, nil
}

// Names returns the registered material names sorted.
func Names() []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Internal returns the modelled size of an internal dimension, such as a
// hole diameter, so that it prints at the real size.
func (m Material) Internal(size float64) (float64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("internal dimension %g must be positive", size)
	}
	return size*(m.Shrink+1) + m.PullShrink, nil
}
