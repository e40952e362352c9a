package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleState      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStateStart = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStateFinal = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleAnchor     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleTrans      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleRubber     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleLabel      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleButton     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkBlue)
	styleButtonHot  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua)
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgOK      = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawCanvas()
	ed.drawSidebar(w, h)

	switch ed.mode {
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeMenu:
		ed.drawMenuOverlay()
	}

	ed.drawStatusBar(w, h)
}

// plot sets one canvas cell, clipped to the canvas region.
func (ed *Editor) plot(x, y int, r rune, style tcell.Style) {
	cw, ch := ed.canvasSize()
	if x < 0 || x >= cw || y < 0 || y >= ch {
		return
	}
	ed.screen.SetContent(x, y, r, nil, style)
}

// plotPx sets the cell covering a canvas-pixel point.
func (ed *Editor) plotPx(p geometry.Point, r rune, style tcell.Style) {
	x, y := canvasToCell(p)
	ed.plot(x, y, r, style)
}

func (ed *Editor) drawCanvas() {
	cw, ch := ed.canvasSize()

	// Sidebar divider
	for y := 0; y < ch; y++ {
		ed.screen.SetContent(cw, y, '│', nil, styleBorder)
	}

	// Transitions first so states render on top
	for _, t := range ed.graph.Transitions {
		ed.drawTransition(t)
	}

	for _, s := range ed.graph.States {
		ed.drawState(s)
	}

	if from, to, ok := ed.ctrl.RubberBand(); ok {
		ed.drawRubberBand(from, to)
	}

	if ed.ctrl.ShowAddButton() {
		ed.drawAddButton()
	}
}

func (ed *Editor) drawState(s *canvas.State) {
	style := styleState
	if s.Start {
		style = styleStateStart
	}

	// Circle outline, sampled in canvas pixels
	for a := 0.0; a < 2*math.Pi; a += 0.08 {
		p := geometry.Point{
			X: s.Pos.X + canvas.StateRadius*math.Cos(a),
			Y: s.Pos.Y + canvas.StateRadius*math.Sin(a),
		}
		ed.plotPx(p, '·', style)
	}
	if s.Final {
		inner := canvas.StateRadius - 5
		for a := 0.0; a < 2*math.Pi; a += 0.12 {
			p := geometry.Point{
				X: s.Pos.X + inner*math.Cos(a),
				Y: s.Pos.Y + inner*math.Sin(a),
			}
			ed.plotPx(p, '·', styleStateFinal)
		}
	}

	// Anchor dots
	for _, a := range geometry.Anchors {
		ed.plotPx(s.AnchorPos(a), 'o', styleAnchor)
	}

	// Start arrow enters from the left
	if s.Start {
		cx, cy := canvasToCell(s.Pos)
		rf := float64(canvas.StateRadius) / cellW
		r := int(rf)
		for i := r + 3; i > r; i-- {
			ed.plot(cx-i, cy, '─', style)
		}
		ed.plot(cx-r-1, cy, '→', style)
	}

	// Name, centred
	cx, cy := canvasToCell(s.Pos)
	name := s.Name
	for i, r := range name {
		ed.plot(cx-len(name)/2+i, cy, r, style.Bold(true))
	}
}

func (ed *Editor) drawTransition(t *canvas.Transition) {
	if t.IsLoop() {
		c := ed.graph.LoopCurve(t)
		for u := 0.0; u <= 1.0; u += 0.02 {
			ed.plotPx(geometry.PointOnCubic(c, u), '·', styleTrans)
		}
		label := strings.Join(t.Labels, ",")
		lx, ly := canvasToCell(geometry.Point{X: t.From.Pos.X, Y: c.C1.Y})
		ed.drawLabelAt(lx-len(label)/2, ly, label)
		return
	}

	c := ed.graph.Curve(t)
	for u := 0.0; u <= 1.0; u += 0.02 {
		ed.plotPx(geometry.PointOnQuad(c, u), '·', styleTrans)
	}
	ed.plotPx(c.P1, arrowRune(c.EndAngle()), styleTrans)

	label := strings.Join(t.Labels, ",")
	lx, ly := canvasToCell(c.Ctrl)
	ed.drawLabelAt(lx-len(label)/2, ly, label)
}

// arrowRune picks the arrow glyph closest to the curve's end direction.
func arrowRune(angle float64) rune {
	a := math.Mod(angle+2*math.Pi, 2*math.Pi)
	switch {
	case a < math.Pi/4 || a >= 7*math.Pi/4:
		return '→'
	case a < 3*math.Pi/4:
		return '↓'
	case a < 5*math.Pi/4:
		return '←'
	default:
		return '↑'
	}
}

func (ed *Editor) drawLabelAt(x, y int, label string) {
	for i, r := range label {
		ed.plot(x+i, y, r, styleLabel)
	}
}

func (ed *Editor) drawRubberBand(from, to geometry.Point) {
	steps := int(geometry.Distance(from, to)/cellW) * 2
	if steps < 2 {
		steps = 2
	}
	for i := 0; i <= steps; i++ {
		if i%2 != 0 {
			continue // dashed
		}
		u := float64(i) / float64(steps)
		p := geometry.Point{
			X: from.X + (to.X-from.X)*u,
			Y: from.Y + (to.Y-from.Y)*u,
		}
		ed.plotPx(p, '·', styleRubber)
	}
	ed.plotPx(to, '+', styleRubber)
}

func (ed *Editor) drawAddButton() {
	style := styleButton
	if ed.ctrl.HoverAdd() {
		style = styleButtonHot
	}
	label := " Add State "
	cx, cy := canvasToCell(ed.ctrl.AddButtonPos)
	x := cx - len(label)/2
	for i, r := range label {
		ed.plot(x+i, cy, r, style)
	}
}

func (ed *Editor) drawSidebar(w, h int) {
	x := w - sidebarWidth + 2
	y := 0

	ed.drawString(x, y, "Definition", styleSidebarH)
	y += 2

	for _, line := range strings.Split(strings.TrimRight(ed.definitionText, "\n"), "\n") {
		if y >= h-3 {
			ed.drawString(x, y, "...", styleSidebar)
			break
		}
		ed.drawString(x, y, truncate(line, sidebarWidth-4), styleSidebar)
		y++
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if ed.filename != "" {
		fileInfo = filepath.Base(ed.filename)
	}
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	counts := fmt.Sprintf("%d states  %d transitions", len(ed.graph.States), len(ed.graph.Transitions))
	ed.drawString(w/2-len(counts)/2, y, counts, styleStatus)

	if ed.message != "" {
		style := styleMsgOK
		if ed.messageType == MsgError {
			style = styleMsgError
		}
		ed.drawString(w-len(ed.message)-2, y, ed.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeInput:
		return "Type labels  Enter:Confirm  Esc:Cancel"
	case ModeMenu:
		return "↑↓:Select  Enter:Confirm  Esc:Close"
	default:
		return "Click:Drag  Click anchor:Connect  Right-click:Menu  Ctrl+S:Save  Ctrl+C:Copy  Ctrl+Q:Quit"
	}
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 50
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt+" ", styleInput)
	ed.drawString(boxX+2+len(ed.inputPrompt)+1, boxY+1, ed.inputBuffer+"_", styleInput)
}

// menuRect places the context menu near its click point, nudged back
// inside the screen when it would overflow.
func (ed *Editor) menuRect() (x, y, w, h int) {
	m := ed.menu
	w = len(m.title) + 6
	for _, it := range m.items {
		if len(it.label)+4 > w {
			w = len(it.label) + 4
		}
	}
	h = len(m.items) + 3
	x, y = m.cellX, m.cellY
	sw, sh := ed.screen.Size()
	if x+w > sw {
		x = sw - w
	}
	if y+h > sh-2 {
		y = sh - 2 - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

func (ed *Editor) drawMenuOverlay() {
	m := ed.menu
	x, y, w, h := ed.menuRect()

	ed.drawTitledBox(x, y, w, h, m.title)
	for i, item := range m.items {
		style := styleMenu
		if i == m.selected {
			style = styleMenuSel
		}
		padded := fmt.Sprintf(" %-*s", w-3, item.label)
		ed.drawString(x+1, y+2+i, padded, style)
	}
}

// drawTitledBox draws a bordered box with optional title.
func (ed *Editor) drawTitledBox(x, y, w, h int, title string) {
	ed.drawBox(x, y, w, h, styleDefault)
	if title != "" {
		titleX := x + (w-len(title)-2)/2
		ed.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		ed.drawString(titleX+1, y, title, styleSidebarH)
		ed.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, fill tcell.Style) {
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, fill)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
