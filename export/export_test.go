package export_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/meisseli/assembly"
	"github.com/soypat/meisseli/export"
	"github.com/soypat/meisseli/feature"
	"github.com/soypat/meisseli/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

const cells = 24

func collection(t *testing.T, extra ...assembly.Entry) *assembly.Collection {
	t.Helper()
	box, err := feature.Box{Plane: feature.XY, Size: r3.Vec{X: 4, Y: 3, Z: 2}}.Apply(feature.Solid{})
	require.NoError(t, err)
	cyl, err := feature.Cylinder{Plane: feature.XY, Radius: 2, Height: 5}.Apply(feature.Solid{})
	require.NoError(t, err)
	entries := append([]assembly.Entry{
		{Name: "box", Solid: box},
		{Name: "cyl", Solid: cyl, Placement: assembly.At(10, 0, 0)},
	}, extra...)
	c, err := assembly.Compose(entries...)
	require.NoError(t, err)
	return c
}

// void encloses nothing, so meshing it yields no triangles.
type void struct{}

func (void) Evaluate(r3.Vec) float64 { return 1 }
func (void) Bounds() r3.Box          { return r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}} }

type recorder struct {
	names []string
	err   error
}

func (r *recorder) Show(name string, triangles []r3.Triangle) error {
	r.names = append(r.names, name)
	return r.err
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "meisseli_lid_v1.stl", export.FileName("meisseli", "lid", 1))
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stl")
	view := &recorder{}
	g := export.Gate{Dir: dir, Project: "p", Version: 3, Cells: cells, Viewer: view}
	paths, err := g.Export(collection(t))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "p_box_v3.stl"), filepath.Join(dir, "p_cyl_v3.stl")}, paths)
	assert.Equal(t, []string{"box", "cyl"}, view.names)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")

	fp, err := os.Open(paths[1])
	require.NoError(t, err)
	defer fp.Close()
	model, err := render.ReadSTL(fp)
	require.NoError(t, err)
	require.NotEmpty(t, model)
	for _, tri := range model {
		for _, v := range tri {
			// The cylinder was placed at x=10.
			assert.InDelta(t, 10, v.X, 2.2)
		}
	}
}

func TestExportDeterministic(t *testing.T) {
	c := collection(t)
	var files [2][]byte
	for i := range files {
		g := export.Gate{Dir: t.TempDir(), Project: "p", Version: 1, Cells: cells}
		paths, err := g.Export(c)
		require.NoError(t, err)
		files[i], err = os.ReadFile(paths[0])
		require.NoError(t, err)
	}
	assert.True(t, bytes.Equal(files[0], files[1]))
}

func TestExportFailureRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	c := collection(t, assembly.Entry{Name: "void", Solid: feature.NewSolid(void{})})
	g := export.Gate{Dir: dir, Project: "p", Version: 1, Cells: cells}
	paths, err := g.Export(c)
	assert.Nil(t, paths)
	var eerr *export.ExportError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "void", eerr.Part)
	assert.Equal(t, filepath.Join(dir, "p_void_v1.stl"), eerr.Path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := export.Gate{Dir: file, Project: "p", Cells: cells}.Export(collection(t))
	assert.Error(t, err)
}

func TestViewerErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	view := &recorder{err: errors.New("no display")}
	g := export.Gate{Dir: t.TempDir(), Project: "p", Cells: cells, Viewer: view, Logger: zap.New(core)}
	_, err := g.Export(collection(t))
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("viewer failed").Len())

	view.names = nil
	require.NoError(t, g.Preview(collection(t)))
	assert.Equal(t, []string{"box", "cyl"}, view.names)
}

func TestPNGViewerDeterministic(t *testing.T) {
	s, err := feature.Box{Plane: feature.XY, Size: r3.Vec{X: 4, Y: 3, Z: 2}}.Apply(feature.Solid{})
	require.NoError(t, err)
	model, err := render.RenderAll(render.NewOctreeRenderer(s.SDF(), cells))
	require.NoError(t, err)
	var images [2][]byte
	for i := range images {
		v := export.PNGViewer{Dir: t.TempDir(), Width: 160, Height: 90}
		require.NoError(t, v.Show("box", model))
		images[i], err = os.ReadFile(filepath.Join(v.Dir, "box.png"))
		require.NoError(t, err)
	}
	equal, err := cmpimg.EqualApprox("png", images[0], images[1], 0)
	require.NoError(t, err)
	assert.True(t, equal)
	assert.Error(t, export.PNGViewer{Dir: t.TempDir()}.Show("none", nil))
}

func TestExportVerify(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	g := export.Gate{Dir: t.TempDir(), Project: "p", Cells: cells, Verify: true, Logger: zap.New(core)}
	_, err := g.Export(collection(t))
	require.NoError(t, err)
	verified := logs.FilterMessage("mesh verified").All()
	require.Len(t, verified, 2)
	for _, entry := range verified {
		assert.Greater(t, entry.ContextMap()["samples"], int64(0))
	}
	assert.Zero(t, logs.FilterMessage("mesh disagrees with solid").Len())
}
