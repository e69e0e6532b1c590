// Package render turns SDF3 solids into triangle meshes and writes them out
// as binary STL.
package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer reads the triangles of a mesh. It follows io.Reader semantics:
// it returns io.EOF once the mesh is exhausted.
type Renderer interface {
	ReadTriangles(t []r3.Triangle) (int, error)
}
