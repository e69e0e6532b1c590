package render_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/meisseli/form3"
	"github.com/soypat/meisseli/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSTLCreateWriteRead(t *testing.T) {
	const quality = 20
	path := filepath.Join(t.TempDir(), "box.stl")
	box, _ := form3.Box(r3.Vec{X: 3, Y: 2, Z: 1}, 0.5)
	err := render.CreateSTL(path, render.NewOctreeRenderer(box, quality))
	if err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	bfile, err := io.ReadAll(fp)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.RenderAll(render.NewOctreeRenderer(box, quality))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	readback, err := render.ReadSTL(bytes.NewReader(bfile))
	if err != nil {
		t.Fatal(err)
	}
	if len(readback) != len(model) {
		t.Errorf("read %d triangles, wrote %d", len(readback), len(model))
	}
}

func TestWriteSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}
