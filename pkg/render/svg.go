package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// GenerateSVG renders the graph as a standalone SVG document. The output
// mirrors the raster renderer: edges under states, labels boxed at the
// curve control points.
func GenerateSVG(g *canvas.Graph, style StyleProvider, width, height int) string {
	var buf bytes.Buffer
	sc := svg.New(&buf)
	sc.Start(width, height)
	sc.Rect(0, 0, width, height, "fill:"+css(style.Background()))

	for _, t := range g.Transitions {
		svgTransition(sc, g, t, style)
	}
	for _, s := range g.States {
		svgState(sc, s, style)
	}

	sc.End()
	return buf.String()
}

func svgState(sc *svg.SVG, s *canvas.State, style StyleProvider) {
	x, y := int(s.Pos.X), int(s.Pos.Y)
	r := int(canvas.StateRadius)

	body := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", css(style.StateFill()), css(style.StateStroke()))
	sc.Circle(x, y, r, body)
	if s.Final {
		sc.Circle(x, y, r-5, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(style.StateStroke())))
	}
	if s.Start {
		sc.Line(x-r-30, y, x-r, y, fmt.Sprintf("stroke:%s;stroke-width:2", css(style.StateStroke())))
		svgTriangle(sc, geometry.Arrowhead(geometry.Point{X: float64(x - r), Y: float64(y)}, 0, arrowLength, arrowHalfWidth), style.StateStroke())
	}

	sc.Text(x, y+5, s.Name,
		fmt.Sprintf("fill:%s;font-size:14px;font-family:sans-serif;text-anchor:middle", css(style.Text())))

	for _, a := range geometry.Anchors {
		ap := s.AnchorPos(a)
		sc.Circle(int(ap.X), int(ap.Y), int(canvas.AnchorSize/2), "fill:"+css(style.AnchorDot()))
	}
}

func svgTransition(sc *svg.SVG, g *canvas.Graph, t *canvas.Transition, style StyleProvider) {
	stroke := fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(style.Edge()))

	if t.IsLoop() {
		l := g.LoopCurve(t)
		sc.Bezier(int(l.P0.X), int(l.P0.Y), int(l.C1.X), int(l.C1.Y),
			int(l.C2.X), int(l.C2.Y), int(l.P1.X), int(l.P1.Y), stroke)

		base := geometry.PointOnCubic(l, 0.83)
		raw := geometry.PointOnCubic(l, 0.94)
		tip := geometry.Point{X: raw.X - 4, Y: raw.Y + 14}
		angle := math.Atan2(tip.Y-base.Y, tip.X-base.X)
		svgTriangle(sc, geometry.Arrowhead(tip, angle, arrowLength, arrowHalfWidth), style.Edge())

		svgEdgeLabel(sc, t, geometry.Point{X: t.From.Pos.X, Y: l.C1.Y + 8}, style)
		return
	}

	q := g.Curve(t)
	sc.Qbez(int(q.P0.X), int(q.P0.Y), int(q.Ctrl.X), int(q.Ctrl.Y), int(q.P1.X), int(q.P1.Y), stroke)
	svgTriangle(sc, geometry.Arrowhead(q.P1, q.EndAngle(), arrowLength, arrowHalfWidth), style.Edge())
	svgEdgeLabel(sc, t, q.Ctrl, style)
}

func svgEdgeLabel(sc *svg.SVG, t *canvas.Transition, pos geometry.Point, style StyleProvider) {
	text := strings.Join(t.Labels, ",")
	// 7px per glyph approximates the monospace label face.
	w := 7*len(text) + 8
	h := 18

	sc.Roundrect(int(pos.X)-w/2, int(pos.Y)-h/2, w, h, 4, 4,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(style.LabelBackground()), css(style.LabelBorder())))
	sc.Text(int(pos.X), int(pos.Y)+4, text,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(style.Text())))
}

func svgTriangle(sc *svg.SVG, tri [3]geometry.Point, fill color.RGBA) {
	xs := []int{int(tri[0].X), int(tri[1].X), int(tri[2].X)}
	ys := []int{int(tri[0].Y), int(tri[1].Y), int(tri[2].Y)}
	sc.Polygon(xs, ys, "fill:"+css(fill))
}
