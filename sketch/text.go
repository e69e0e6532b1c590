package sketch

import (
	"math"
	"strings"
	"sync"

	sdfx "github.com/deadsy/sdfx/sdf"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"gonum.org/v1/gonum/spatial/r2"
)

var boldFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(gobold.TTF)
})

type text struct {
	s string
	h float64
}

// Text returns the outline of s set in Go Bold and centered on the origin.
// h is the line height.
func Text(s string, h float64) Shape { return text{s: s, h: h} }

func (t text) element() (element, error) {
	if strings.TrimSpace(t.s) == "" || t.h <= 0 {
		return element{}, &GeometryError{Op: "text", Msg: "need visible characters and a positive height"}
	}
	f, err := boldFont()
	if err != nil {
		return element{}, &GeometryError{Op: "text", Msg: "loading font", Err: err}
	}
	s, err := sdfx.TextSDF2(f, sdfx.NewText(t.s), t.h)
	if err != nil {
		return element{}, &GeometryError{Op: "text", Msg: "outlining glyphs", Err: err}
	}
	bb := s.BoundingBox()
	return element{curve: &glyphs{
		s:  s,
		bb: r2.Box{Min: r2.Vec{X: bb.Min.X, Y: bb.Min.Y}, Max: r2.Vec{X: bb.Max.X, Y: bb.Max.Y}},
	}}, nil
}

// glyphs evaluates an sdfx glyph outline as a kernel SDF2.
type glyphs struct {
	s  sdfx.SDF2
	bb r2.Box
}

// glyphMargin is how far outside its bounds the outline is still evaluated
// exactly. Farther points get the distance to the bounds, which never
// exceeds the true distance.
const glyphMargin = 1

func (g *glyphs) Evaluate(p r2.Vec) float64 {
	dx := math.Max(g.bb.Min.X-p.X, p.X-g.bb.Max.X)
	dy := math.Max(g.bb.Min.Y-p.Y, p.Y-g.bb.Max.Y)
	if out := math.Hypot(math.Max(dx, 0), math.Max(dy, 0)); out > glyphMargin {
		return out
	}
	return g.s.Evaluate(sdfx.V2{X: p.X, Y: p.Y})
}

func (g *glyphs) Bounds() r2.Box { return g.bb }
