// Package form2 wraps the must2 shape constructors, turning their panics
// on bad dimensions into errors.
package form2

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/meisseli/form2/must2"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r2"
)

type shapeErr struct {
	shape    string
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s: %v", s.shape, s.panicObj)
}

// catch is deferred by every constructor in this package.
func catch(shape string, err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			shape:    shape,
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

// Circle returns the SDF2 for a 2d circle.
func Circle(radius float64) (s sdf.SDF2, err error) {
	defer catch("circle", &err)
	return must2.Circle(radius), nil
}

// Box returns a 2d box, rounded at the corners when round > 0.
func Box(size r2.Vec, round float64) (s sdf.SDF2, err error) {
	defer catch("box", &err)
	return must2.Box(size, round), nil
}

// Line returns a line from (-l/2,0) to (l/2,0).
func Line(l, round float64) (s sdf.SDF2, err error) {
	defer catch("line", &err)
	return must2.Line(l, round), nil
}
