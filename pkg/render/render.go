package render

import (
	"io"
	"math"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// Arrowhead dimensions in pixels.
const (
	arrowLength    = 12.0
	arrowHalfWidth = 5.0
)

// Overlay carries the transient interaction visuals drawn on top of the
// graph: the pending-connection rubber band and the empty-canvas add
// button. A nil Overlay draws the graph alone.
type Overlay struct {
	RubberFrom geometry.Point
	RubberTo   geometry.Point
	Rubber     bool

	AddButtonPos  geometry.Point
	ShowAddButton bool
	HoverAdd      bool
}

// Draw renders the graph and overlay onto a gg context. Transitions are
// drawn first so states sit on top of their edges.
func Draw(dc *gg.Context, g *canvas.Graph, ov *Overlay, style StyleProvider) {
	dc.SetColor(style.Background())
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, t := range g.Transitions {
		drawTransition(dc, g, t, style)
	}
	for _, s := range g.States {
		drawState(dc, s, style)
	}

	if ov == nil {
		return
	}
	if ov.Rubber {
		dc.SetColor(style.RubberBand())
		dc.SetLineWidth(2)
		dc.SetDash(6, 6)
		dc.DrawLine(ov.RubberFrom.X, ov.RubberFrom.Y, ov.RubberTo.X, ov.RubberTo.Y)
		dc.Stroke()
		dc.SetDash()
	}
	if ov.ShowAddButton {
		drawAddButton(dc, ov, style)
	}
}

// WritePNG renders the graph to w as a PNG of the given size.
func WritePNG(w io.Writer, g *canvas.Graph, ov *Overlay, style StyleProvider, width, height int) error {
	dc := gg.NewContext(width, height)
	Draw(dc, g, ov, style)
	return dc.EncodePNG(w)
}

func drawState(dc *gg.Context, s *canvas.State, style StyleProvider) {
	r := canvas.StateRadius

	dc.SetColor(style.StateFill())
	dc.DrawCircle(s.Pos.X, s.Pos.Y, r)
	dc.Fill()

	dc.SetColor(style.StateStroke())
	dc.SetLineWidth(2)
	dc.DrawCircle(s.Pos.X, s.Pos.Y, r)
	dc.Stroke()

	if s.Final {
		dc.DrawCircle(s.Pos.X, s.Pos.Y, r-5)
		dc.Stroke()
	}

	if s.Start {
		tip := geometry.Point{X: s.Pos.X - r, Y: s.Pos.Y}
		dc.DrawLine(tip.X-30, tip.Y, tip.X, tip.Y)
		dc.Stroke()
		fillTriangle(dc, geometry.Arrowhead(tip, 0, arrowLength, arrowHalfWidth))
	}

	dc.SetColor(style.Text())
	dc.DrawStringAnchored(s.Name, s.Pos.X, s.Pos.Y, 0.5, 0.35)

	dc.SetColor(style.AnchorDot())
	for _, a := range geometry.Anchors {
		ap := s.AnchorPos(a)
		dc.DrawCircle(ap.X, ap.Y, canvas.AnchorSize/2)
		dc.Fill()
	}
}

func drawTransition(dc *gg.Context, g *canvas.Graph, t *canvas.Transition, style StyleProvider) {
	dc.SetColor(style.Edge())

	if t.IsLoop() {
		l := g.LoopCurve(t)
		dc.SetLineWidth(2.2)
		dc.MoveTo(l.P0.X, l.P0.Y)
		dc.CubicTo(l.C1.X, l.C1.Y, l.C2.X, l.C2.Y, l.P1.X, l.P1.Y)
		dc.Stroke()

		// Arrow rides the right leg, angled inward toward the state.
		base := geometry.PointOnCubic(l, 0.83)
		raw := geometry.PointOnCubic(l, 0.94)
		tip := geometry.Point{X: raw.X - 4, Y: raw.Y + 14}
		angle := math.Atan2(tip.Y-base.Y, tip.X-base.X)
		fillTriangle(dc, geometry.Arrowhead(tip, angle, arrowLength, arrowHalfWidth))

		labelPos := geometry.Point{X: t.From.Pos.X, Y: l.C1.Y + 8}
		drawEdgeLabel(dc, t, labelPos, style)
		return
	}

	q := g.Curve(t)
	dc.SetLineWidth(2)
	dc.MoveTo(q.P0.X, q.P0.Y)
	dc.QuadraticTo(q.Ctrl.X, q.Ctrl.Y, q.P1.X, q.P1.Y)
	dc.Stroke()

	fillTriangle(dc, geometry.Arrowhead(q.P1, q.EndAngle(), arrowLength, arrowHalfWidth))
	drawEdgeLabel(dc, t, q.Ctrl, style)
}

func drawEdgeLabel(dc *gg.Context, t *canvas.Transition, pos geometry.Point, style StyleProvider) {
	text := strings.Join(t.Labels, ",")
	w, h := dc.MeasureString(text)

	dc.SetColor(style.LabelBackground())
	dc.DrawRoundedRectangle(pos.X-w/2-4, pos.Y-h/2-3, w+8, h+6, 4)
	dc.Fill()
	dc.SetColor(style.LabelBorder())
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(pos.X-w/2-4, pos.Y-h/2-3, w+8, h+6, 4)
	dc.Stroke()

	dc.SetColor(style.Text())
	dc.DrawStringAnchored(text, pos.X, pos.Y, 0.5, 0.35)
}

func drawAddButton(dc *gg.Context, ov *Overlay, style StyleProvider) {
	const btnW, btnH = 100.0, 40.0
	pos := ov.AddButtonPos

	dc.SetColor(style.Accent(ov.HoverAdd))
	dc.DrawRoundedRectangle(pos.X-btnW/2, pos.Y-btnH/2, btnW, btnH, 10)
	dc.Fill()
	dc.SetColor(style.Text())
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(pos.X-btnW/2, pos.Y-btnH/2, btnW, btnH, 10)
	dc.Stroke()
	dc.DrawStringAnchored("Add State", pos.X, pos.Y, 0.5, 0.35)
}

func fillTriangle(dc *gg.Context, tri [3]geometry.Point) {
	dc.NewSubPath()
	dc.MoveTo(tri[0].X, tri[0].Y)
	dc.LineTo(tri[1].X, tri[1].Y)
	dc.LineTo(tri[2].X, tri[2].Y)
	dc.ClosePath()
	dc.Fill()
}
