package render

import (
	"io"
	"math"

	"github.com/soypat/meisseli/internal/d3"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// octree renders an SDF3 using marching tetrahedra over octree space sampling.
type octree struct {
	dc        dc3
	todo      []cube
	unwritten triangle3Buffer
	// triangles shorter than this across are dropped.
	degenerate float64
	triangles  int
}

type cube struct {
	sdf.V3i      // origin of cube as integers
	n       uint // level of cube, size = 1 << n
}

// NewOctreeRenderer returns a marching tetrahedra Renderer using octree
// cube sampling. meshCells is the number of cells along the longest axis
// of the bounding box. The todo cube slice leaks for the lifetime of the
// renderer, so it should be discarded once io.EOF is read.
func NewOctreeRenderer(s sdf.SDF3, meshCells int) *octree {
	if meshCells < 2 {
		panic("meshCells must be 2 or larger")
	}
	// Scale the bounding box about the center to make sure the boundaries
	// aren't on the object surface.
	bb := d3.Box(s.Bounds())
	bb = bb.ScaleAboutCenter(1.01)
	longAxis := d3.Max(bb.Size())
	// We want to test the smallest cube (side == resolution) for emptiness
	// so the level = 0 cube is at half resolution.
	resolution := 0.5 * longAxis / float64(meshCells)

	// how many cube levels for the octree?
	levels := uint(math.Ceil(math.Log2(longAxis/resolution))) + 1

	// Calculate theoretical max amount of cubes
	divisions := r3.Scale(1/resolution, bb.Size())
	maxCubes := int(divisions.X) * int(divisions.Y) * int(divisions.Z)

	cubes := make([]cube, 1, max(1, maxCubes/64))
	cubes[0] = cube{sdf.V3i{0, 0, 0}, levels - 1} // process the octree, start at the top level
	return &octree{
		dc:         *newDc3(s, bb.Min, resolution, levels),
		unwritten:  triangle3Buffer{buf: make([]r3.Triangle, 0, 1024)},
		todo:       cubes,
		degenerate: 1e-4 * resolution,
	}
}

// ReadTriangles writes triangles rendered from the model into the argument buffer.
// returns number of triangles written and an error if present.
func (oc *octree) ReadTriangles(dst []r3.Triangle) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	defer func() { oc.triangles += n }()
	if oc.unwritten.Len() > 0 {
		n += oc.unwritten.Read(dst[n:])
		if n == len(dst) {
			return n, nil
		}
	}
	if len(oc.todo) == 0 && oc.unwritten.Len() == 0 {
		// Done rendering model.
		return n, io.EOF
	}
	n += oc.readTriangles(dst[n:])
	return n, nil
}

// readTriangles processes todo cubes until dst is full and returns
// number of triangles written.
func (oc *octree) readTriangles(dst []r3.Triangle) (n int) {
	cubesProcessed := 0
	var newCubes []cube
	for _, cube := range oc.todo {
		if n == len(dst) {
			// Finished writing all the buffer
			break
		}
		if n+cubeMaxTriangles > len(dst) {
			// Not enough room in buffer to write all triangles a single cube may yield.
			var tmp [cubeMaxTriangles]r3.Triangle
			tri, cubes := oc.processCube(tmp[:], cube)
			oc.unwritten.Write(tmp[:tri])
			newCubes = append(newCubes, cubes...)
			cubesProcessed++
			break
		}
		tri, cubes := oc.processCube(dst[n:], cube)
		newCubes = append(newCubes, cubes...)
		cubesProcessed++
		n += tri
	}
	oc.todo = append(oc.todo, newCubes...)
	oc.todo = oc.todo[cubesProcessed:]
	return n
}

// Process a cube. Generate triangles, or more cubes.
func (oc *octree) processCube(dst []r3.Triangle, c cube) (writtenTriangles int, newCubes []cube) {
	if c.n == 1 {
		// this cube is at the required resolution
		var corners [8]r3.Vec
		var values [8]float64
		for i, off := range cubeCorners {
			corners[i], values[i] = oc.dc.Evaluate(c.Add(off))
		}
		writtenTriangles = mtToTriangles(dst, corners, values, 0, oc.degenerate)
		return writtenTriangles, nil
	}
	// process the sub cubes
	n := c.n - 1
	s := 1 << n
	subCubes := [8]cube{
		{c.Add(sdf.V3i{0, 0, 0}), n},
		{c.Add(sdf.V3i{s, 0, 0}), n},
		{c.Add(sdf.V3i{s, s, 0}), n},
		{c.Add(sdf.V3i{0, s, 0}), n},
		{c.Add(sdf.V3i{0, 0, s}), n},
		{c.Add(sdf.V3i{s, 0, s}), n},
		{c.Add(sdf.V3i{s, s, s}), n},
		{c.Add(sdf.V3i{0, s, s}), n},
	}
	// Eliminate empty cubes.
	for _, candidate := range subCubes {
		if !oc.dc.IsEmpty(&candidate) {
			newCubes = append(newCubes, candidate)
		}
	}
	return 0, newCubes
}

// cubeCorners are the integer offsets of the corners of a level 1 cube.
var cubeCorners = [8]sdf.V3i{
	{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
	{0, 0, 2}, {2, 0, 2}, {2, 2, 2}, {0, 2, 2},
}

// dc3 implements a 3 dimensional distance cache. evaluates the SDF3 via a distance cache to avoid repeated evaluations.
// Experimentally about 2/3 of lookups get a hit, and the overall speedup
// is about 2x a non-cached evaluation.
type dc3 struct {
	cache      map[sdf.V3i]float64 // cache of distances
	origin     r3.Vec              // origin of the overall bounding cube
	resolution float64             // size of smallest octree cube
	hdiag      []float64           // lookup table of cube half diagonals
	s          sdf.SDF3            // the SDF3 to be rendered
}

// Evaluate returns the position of an integer lattice point and the SDF value there.
func (dc *dc3) Evaluate(vi sdf.V3i) (r3.Vec, float64) {
	v := r3.Add(dc.origin, r3.Scale(dc.resolution, vi.ToV3()))
	if dist, found := dc.cache[vi]; found {
		return v, dist
	}
	dist := dc.s.Evaluate(v)
	dc.cache[vi] = dist
	return v, dist
}

// IsEmpty returns true if the cube contains no SDF surface
func (dc *dc3) IsEmpty(c *cube) bool {
	// evaluate the SDF3 at the center of the cube
	s := 1 << (c.n - 1) // half side
	_, d := dc.Evaluate(c.AddScalar(s))
	// compare to the center/corner distance
	return math.Abs(d) >= dc.hdiag[c.n]
}

func newDc3(s sdf.SDF3, origin r3.Vec, resolution float64, n uint) *dc3 {
	if n >= 64 {
		panic("size of n must be less than size of word for hdiag generation")
	}
	dc := dc3{
		origin:     origin,
		resolution: resolution,
		hdiag:      make([]float64, n),
		s:          s,
		cache:      make(map[sdf.V3i]float64),
	}
	// build a lut for cube half diagonal lengths
	for i := range dc.hdiag {
		si := 1 << uint(i)
		s := float64(si) * dc.resolution
		dc.hdiag[i] = 0.5 * math.Sqrt(3.0*s*s)
	}
	return &dc
}

func max(a, b int) int {
	if a >= b {
		return a
	}
	return b
}
