package render_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deadsy/sdfx/obj"
	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/soypat/meisseli/form3/must3"
	"github.com/soypat/meisseli/render"
	"github.com/soypat/meisseli/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	benchQuality = 300
)

func BenchmarkSDFXBolt(b *testing.B) {
	stdout := os.Stdout
	defer func() {
		os.Stdout = stdout // pesky sdfx prints out stuff
	}()
	os.Stdout, _ = os.Open(os.DevNull)
	output := filepath.Join(b.TempDir(), "sdfx_bolt.stl")
	object, _ := obj.Bolt(&obj.BoltParms{
		Thread:      "npt_1/2",
		Style:       "hex",
		Tolerance:   0.1,
		TotalLength: 20,
		ShankLength: 10,
	})
	for i := 0; i < b.N; i++ {
		sdfxrender.ToSTL(object, benchQuality, output, &sdfxrender.MarchingCubesOctree{})
	}
}

// BenchmarkTube renders a bored cylinder of similar extent to the bolt above.
func BenchmarkTube(b *testing.B) {
	output := filepath.Join(b.TempDir(), "our_tube.stl")
	outer := must3.Cylinder(20, 10, 1)
	bore := sdf.Transform3D(must3.Cylinder(22, 6, 0), sdf.RotateZ(0.3))
	object := sdf.Difference3D(outer, bore)
	for i := 0; i < b.N; i++ {
		err := render.CreateSTL(output, render.NewOctreeRenderer(object, benchQuality))
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderAll(b *testing.B) {
	object := must3.Box(r3.Vec{X: 10, Y: 20, Z: 5}, 1)
	for i := 0; i < b.N; i++ {
		_, err := render.RenderAll(render.NewOctreeRenderer(object, 100))
		if err != nil {
			b.Fatal(err)
		}
	}
}
