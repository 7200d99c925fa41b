// Package svgexport renders a SlicedModel layer to SVG for visual
// inspection, using the ajstarks/svgo package the teacher's dependency
// graph already carries (spec.md §6 names rendering/export as a
// consumer of the final SlicedModel, outside the geometry core itself).
package svgexport

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/mprochnow/slice2print/pkg/layer"
	"github.com/mprochnow/slice2print/pkg/polygon"
)

// Options controls the rendered viewport and stroke styling.
type Options struct {
	Width, Height int    // pixels
	Scale         float64 // pixels per integer unit (1/VERTEX_PRECISION mm)
	OffsetX       int64   // integer-unit translation applied before scaling
	OffsetY       int64
}

// WriteLayer renders one layer's outlines, perimeter rings, and infill
// lines as a single SVG document. Outlines are drawn as a light fill,
// perimeters as colored strokes (outermost to innermost), and infill
// lines as thin strokes.
func WriteLayer(w io.Writer, ly *layer.Layer, opt Options) {
	canvas := svg.New(w)
	canvas.Start(opt.Width, opt.Height)
	defer canvas.End()

	canvas.Gstyle(fmt.Sprintf("fill:none;stroke:#000;stroke-width:%g", opt.Scale))
	defer canvas.Gend()

	for _, outline := range ly.Outlines {
		drawPolygon(canvas, outline, opt, "fill:#ddd;fill-opacity:0.5;stroke:none")
	}

	colors := []string{"#c00", "#090", "#00c", "#c90"}
	for i, ring := range ly.Perimeters {
		color := colors[i%len(colors)]
		for _, path := range ring {
			drawPolygon(canvas, path, opt, fmt.Sprintf("fill:none;stroke:%s", color))
		}
	}

	for _, seg := range ly.Infill {
		x1, y1 := project(seg.Start, opt)
		x2, y2 := project(seg.End, opt)
		canvas.Line(x1, y1, x2, y2, "stroke:#333;stroke-width:0.5")
	}
}

func drawPolygon(canvas *svg.SVG, path polygon.Path, opt Options, style string) {
	if len(path) < 2 {
		return
	}
	xs := make([]int, len(path))
	ys := make([]int, len(path))
	for i, pt := range path {
		xs[i], ys[i] = project(pt, opt)
	}
	canvas.Polygon(xs, ys, style)
}

// project maps an integer-unit (1/VERTEX_PRECISION mm) model coordinate to
// an SVG pixel coordinate, inverting Y since SVG's origin is top-left and
// the slicer's is bottom-left (spec.md §6).
func project(pt polygon.Point, opt Options) (int, int) {
	x := float64(pt.X-opt.OffsetX) * opt.Scale
	y := float64(pt.Y-opt.OffsetY) * opt.Scale
	return int(x), opt.Height - int(y)
}
