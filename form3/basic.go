package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/meisseli/form3/must3"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Box return an SDF3 for a 3d box (rounded corners with round > 0).
func Box(size r3.Vec, round float64) (s sdf.SDF3, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Box(size, round), err
}

// Cylinder return an SDF3 for a cylinder (rounded edges with round > 0).
func Cylinder(height, radius, round float64) (s sdf.SDF3, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Cylinder(height, radius, round), err
}

// Cone returns the SDF3 for a trucated cone (round > 0 gives rounded edges).
func Cone(height, r0, r1, round float64) (s sdf.SDF3, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Cone(height, r0, r1, round), err
}

// Extrude returns a linear extrusion of an SDF2 of the given height
// centered on the z=0 plane.
func Extrude(s2 sdf.SDF2, height float64) (s sdf.SDF3, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	if height <= 0 {
		panic("extrusion height <= 0")
	}
	return sdf.Extrude3D(s2, height), err
}

// Loft returns an extrusion blending from s0 at z=-height/2 to s1 at z=height/2.
func Loft(s0, s1 sdf.SDF2, height float64) (s sdf.SDF3, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return sdf.Loft3D(s0, s1, height, 0), err
}
