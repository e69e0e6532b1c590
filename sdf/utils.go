package sdf

import (
	"errors"
	"math"

	"github.com/soypat/meisseli/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	pi        = math.Pi
	tau       = 2 * pi
	sqrtHalf  = 0.7071067811865476
	tolerance = 1e-9
)

// DtoR converts degrees to radians
func DtoR(degrees float64) float64 {
	return (pi / 180) * degrees
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// Mix does a linear interpolation from x to y, a = [0,1]
func Mix(x, y, a float64) float64 {
	return x + (a * (y - x))
}

// Sign returns the sign of x
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

// Raycasting

// Raycast3 collides a ray (with an origin point from and a direction dir) with an SDF3.
// stepScale controls precision (less stepSize, more precision, but more SDF evaluations): use 1 if SDF indicates
// distance to the closest surface.
// It returns the collision point, how many normalized distances to reach it (t), and the number of steps performed
// If no surface is found (in maxDist and maxSteps), t is < 0
func Raycast3(s SDF3, from, dir r3.Vec, stepScale, epsilon, maxDist float64, maxSteps int) (collision r3.Vec, t float64, steps int) {
	dirN := r3.Unit(dir)
	pos := from
	for {
		val := s.Evaluate(pos)
		if val < epsilon {
			collision = pos // Success
			break
		}
		steps++
		if steps == maxSteps {
			t = -1 // Failure
			break
		}
		delta := math.Max(val*stepScale, epsilon)
		t += delta
		pos = r3.Add(pos, r3.Scale(delta, dirN))
		if t > maxDist {
			t = -1 // Failure
			break
		}
	}
	return collision, t, steps
}

// Map2 maps a 2d region to integer grid coordinates.
type Map2 struct {
	bb    d2.Box // bounding box
	grid  V2i    // integral dimension
	delta r2.Vec
}

// NewMap2 returns a 2d region to grid coordinates map.
// Grid points sit on the cell centers.
func NewMap2(bb r2.Box, grid V2i) (*Map2, error) {
	// sanity check the bounding box
	bbSize := d2.Box(bb).Size()
	if bbSize.X <= 0 || bbSize.Y <= 0 {
		return nil, errors.New("bad bounding box")
	}
	// sanity check the integer dimensions
	if grid[0] <= 0 || grid[1] <= 0 {
		return nil, errors.New("bad grid dimensions")
	}
	m := Map2{}
	m.bb = d2.Box(bb)
	m.grid = grid
	m.delta = d2.DivElem(bbSize, r2.Vec{X: float64(grid[0]), Y: float64(grid[1])})
	return &m, nil
}

// Delta returns the size of a single grid cell.
func (m *Map2) Delta() r2.Vec { return m.delta }

// ToV2 converts grid integer coordinates to 2d region float coordinates.
func (m *Map2) ToV2(p V2i) r2.Vec {
	ofs := d2.MulElem(r2.Vec{X: float64(p[0]) + 0.5, Y: float64(p[1]) + 0.5}, m.delta)
	return r2.Add(m.bb.Min, ofs)
}

// ToGrid converts 2d region float coordinates to continuous grid coordinates
// such that ToGrid(ToV2(p)) equals p.
func (m *Map2) ToGrid(p r2.Vec) r2.Vec {
	v := d2.DivElem(r2.Sub(p, m.bb.Min), m.delta)
	return r2.Vec{X: v.X - 0.5, Y: v.Y - 0.5}
}
