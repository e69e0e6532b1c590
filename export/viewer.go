package export

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/meisseli/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// PNGViewer renders a shaded iso view of each part into Dir/<name>.png.
type PNGViewer struct {
	Dir           string
	Width, Height int
}

// Show renders triangles. The mesh is scaled to fit the view.
func (v PNGViewer) Show(name string, triangles []r3.Triangle) error {
	if len(triangles) == 0 {
		return errors.New("no triangles to show")
	}
	width, height := v.Width, v.Height
	if width <= 0 || height <= 0 {
		width, height = 768, 432
	}
	const (
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
		near  = 1
		far   = 10
	)
	var (
		eyepos = d3.Elem(2.4) // iso view
		eye    = fauxgl.V(eyepos.X, eyepos.Y, eyepos.Z)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	tris := make([]*fauxgl.Triangle, len(triangles))
	for i, t := range triangles {
		tris[i] = fauxgl.NewTriangleForPoints(fv(t[0]), fv(t[1]), fv(t[2]))
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := resize.Resize(uint(width), uint(height), context.Image(), resize.Bilinear)
	if err := os.MkdirAll(v.Dir, 0o755); err != nil {
		return err
	}
	return fauxgl.SavePNG(filepath.Join(v.Dir, name+".png"), image)
}

func fv(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
