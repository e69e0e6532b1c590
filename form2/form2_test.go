package form2

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestShapeErrors(t *testing.T) {
	if _, err := Circle(-1); err == nil || err.Error() != "circle: radius <= 0" {
		t.Errorf("circle: unexpected error %v", err)
	}
	if _, err := Box(r2.Vec{X: 1, Y: 0}, 0); err == nil || err.Error() != "box: box size <= 0" {
		t.Errorf("box: unexpected error %v", err)
	}
	if _, err := Polygon([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}}); err == nil {
		t.Error("two point polygon should fail")
	}
	s, err := Circle(2)
	if err != nil {
		t.Fatal(err)
	}
	if d := s.Evaluate(r2.Vec{}); d != -2 {
		t.Errorf("circle center distance %g, want -2", d)
	}
}
