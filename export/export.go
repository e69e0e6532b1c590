// Package export meshes placed parts and writes them out as binary STL
// files. A run either writes every part or leaves no part file behind.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/soypat/meisseli/assembly"
	"github.com/soypat/meisseli/render"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCells is the mesh resolution used when Gate.Cells is zero.
const DefaultCells = 300

// ExportError reports the part whose export failed.
type ExportError struct {
	Part string
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %q to %s: %v", e.Part, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Viewer receives the mesh of every exported part. It is handed the mesh
// after the part file is on disk.
type Viewer interface {
	Show(name string, triangles []r3.Triangle) error
}

// Gate writes collections to Dir.
type Gate struct {
	Dir     string
	Project string
	Version int
	// Cells is the number of mesh cells along the longest side of a part.
	Cells int
	// Verify compares each mesh against its solid at a grid of sample
	// points away from the surface and logs disagreements.
	Verify bool
	Viewer Viewer
	Logger *zap.Logger
}

// FileName returns the file name of a part export.
func FileName(project, part string, version int) string {
	return fmt.Sprintf("%s_%s_v%d.stl", project, part, version)
}

// Export writes every part of c and returns the written paths in
// declaration order. On failure the files written so far are removed.
func (g Gate) Export(c *assembly.Collection) (paths []string, err error) {
	log := g.logger()
	if c == nil || c.Len() == 0 {
		return nil, errors.New("export: empty collection")
	}
	if g.Project == "" {
		return nil, errors.New("export: no project name")
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		for _, p := range paths {
			if rmErr := os.Remove(p); rmErr != nil {
				log.Warn("could not remove partial export", zap.String("path", p), zap.Error(rmErr))
			}
		}
		paths = nil
	}()
	for _, it := range c.Items() {
		path := filepath.Join(g.Dir, FileName(g.Project, it.Name, g.Version))
		start := time.Now()
		model, err := g.mesh(it)
		if err != nil {
			return paths, &ExportError{Part: it.Name, Path: path, Err: err}
		}
		if err := writeAtomic(path, model); err != nil {
			return paths, &ExportError{Part: it.Name, Path: path, Err: err}
		}
		if g.Verify {
			g.verify(it, model)
		}
		paths = append(paths, path)
		log.Info("exported part", zap.String("part", it.Name), zap.String("path", path),
			zap.Int("triangles", len(model)), zap.Duration("took", time.Since(start)))
		g.show(it.Name, model)
	}
	return paths, nil
}

// Preview meshes every part and hands it to the viewer without writing
// part files.
func (g Gate) Preview(c *assembly.Collection) error {
	if g.Viewer == nil || c == nil {
		return nil
	}
	for _, it := range c.Items() {
		model, err := g.mesh(it)
		if err != nil {
			return &ExportError{Part: it.Name, Err: err}
		}
		g.show(it.Name, model)
	}
	return nil
}

func (g Gate) mesh(it assembly.Item) ([]r3.Triangle, error) {
	cells := g.cells()
	if cells < 2 {
		return nil, fmt.Errorf("mesh cells %d too few", cells)
	}
	model, err := render.RenderAll(render.NewOctreeRenderer(it.Placed.SDF(), cells))
	if err != nil {
		return nil, err
	}
	if len(model) == 0 {
		return nil, errors.New("mesh has no triangles")
	}
	return model, nil
}

// verifySamples is the number of sample points along each side of a part.
const verifySamples = 6

func (g Gate) verify(it assembly.Item, model []r3.Triangle) (mismatches int) {
	s := it.Placed.SDF()
	mesh := render.NewKDSDF(model)
	bb := s.Bounds()
	size := r3.Sub(bb.Max, bb.Min)
	// Points closer to the surface than two cells may legitimately
	// fall on either side of the mesh.
	margin := 2 * math.Max(size.X, math.Max(size.Y, size.Z)) / float64(g.cells())
	checked := 0
	for i := 0; i < verifySamples; i++ {
		for j := 0; j < verifySamples; j++ {
			for k := 0; k < verifySamples; k++ {
				p := r3.Vec{
					X: bb.Min.X + (float64(i)+0.5)/verifySamples*size.X,
					Y: bb.Min.Y + (float64(j)+0.5)/verifySamples*size.Y,
					Z: bb.Min.Z + (float64(k)+0.5)/verifySamples*size.Z,
				}
				d := s.Evaluate(p)
				if math.Abs(d) < margin {
					continue
				}
				checked++
				if (d < 0) != (mesh.Evaluate(p) < 0) {
					mismatches++
				}
			}
		}
	}
	log := g.logger().With(zap.String("part", it.Name), zap.Int("samples", checked), zap.Int("mismatches", mismatches))
	if mismatches > 0 {
		log.Warn("mesh disagrees with solid")
	} else {
		log.Debug("mesh verified")
	}
	return mismatches
}

func (g Gate) show(name string, model []r3.Triangle) {
	if g.Viewer == nil {
		return
	}
	if err := g.Viewer.Show(name, model); err != nil {
		g.logger().Warn("viewer failed", zap.String("part", name), zap.Error(err))
	}
}

func (g Gate) cells() int {
	if g.Cells == 0 {
		return DefaultCells
	}
	return g.Cells
}

func (g Gate) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// writeAtomic writes the STL next to path and renames it into place so a
// crash never leaves a truncated part file.
func writeAtomic(path string, model []r3.Triangle) (err error) {
	fp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := fp.Name()
	defer func() {
		if err != nil {
			fp.Close()
			os.Remove(tmp)
		}
	}()
	w := bufio.NewWriter(fp)
	if err = render.WriteSTL(w, model); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = fp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
