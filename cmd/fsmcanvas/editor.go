package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	charmlog "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/definition"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
	"github.com/ha1tch/fsm-canvas/pkg/interaction"
)

// A terminal cell covers this many canvas pixels. Cells are roughly
// twice as tall as wide, so the vertical factor is doubled to keep
// circles round in canvas space.
const (
	cellW = 10.0
	cellH = 20.0
)

const sidebarWidth = 34

// Mode represents editor mode.
type Mode int

const (
	ModeCanvas Mode = iota
	ModeInput
	ModeMenu
)

// MessageType for status messages.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

// menuItem is one entry of a context menu. Its action runs against the
// controller and returns effects for the host to apply.
type menuItem struct {
	label  string
	action func() []interaction.Effect
}

type contextMenu struct {
	title    string
	items    []menuItem
	selected int
	cellX    int
	cellY    int
}

// reloadRequest is posted by the file watcher goroutine.
type reloadRequest struct{}

// Editor hosts the pointer-event controller on a tcell screen. It owns
// the terminal surface, the modal prompt and the context menus; all
// diagram mutation goes through the controller.
type Editor struct {
	screen tcell.Screen
	graph  *canvas.Graph
	ctrl   *interaction.Controller
	cfg    Config
	logger *charmlog.Logger

	filename string
	modified bool

	// Latest serialized definition, mirrored into the sidebar.
	definitionText string

	mode        Mode
	message     string
	messageType MessageType

	inputPrompt string
	inputBuffer string

	menu *contextMenu

	prevButtons tcell.ButtonMask

	watcher *fsnotify.Watcher
}

// NewEditor creates an editor over the given file, or an empty diagram
// when path is "".
func NewEditor(path string, cfg Config, watch bool, logger *charmlog.Logger) (*Editor, error) {
	var g *canvas.Graph
	if path != "" {
		loaded, err := loadGraph(path)
		if err != nil {
			return nil, err
		}
		g = loaded
	} else {
		g = canvas.New()
	}

	ed := &Editor{
		graph:          g,
		ctrl:           interaction.New(g),
		cfg:            cfg,
		logger:         logger,
		filename:       path,
		definitionText: definition.Generate(g),
	}

	if watch && path != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		if err := w.Add(path); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		ed.watcher = w
	}
	return ed, nil
}

// Run owns the terminal until the user quits.
func (ed *Editor) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	ed.screen = screen
	screen.EnableMouse()
	defer screen.Fini()

	if ed.watcher != nil {
		defer ed.watcher.Close()
		go func() {
			for ev := range ed.watcher.Events {
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					ed.screen.PostEvent(tcell.NewEventInterrupt(reloadRequest{}))
				}
			}
		}()
	}

	ed.placeAddButton()

	for {
		ed.draw()
		screen.Show()

		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
			ed.placeAddButton()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(reloadRequest); ok {
				ed.reload()
			}
		}
	}
}

// canvasSize returns the drawable canvas region in cells.
func (ed *Editor) canvasSize() (int, int) {
	w, h := ed.screen.Size()
	cw := w - sidebarWidth
	if cw < 1 {
		cw = 1
	}
	ch := h - 2
	if ch < 1 {
		ch = 1
	}
	return cw, ch
}

func (ed *Editor) placeAddButton() {
	if ed.screen == nil {
		return
	}
	cw, ch := ed.canvasSize()
	ed.ctrl.AddButtonPos = geometry.Point{
		X: float64(cw) * cellW / 2,
		Y: float64(ch) * cellH / 2,
	}
}

func cellToCanvas(x, y int) geometry.Point {
	return geometry.Point{
		X: float64(x)*cellW + cellW/2,
		Y: float64(y)*cellH + cellH/2,
	}
}

func canvasToCell(p geometry.Point) (int, int) {
	return int(p.X / cellW), int(p.Y / cellH)
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ed.mode {
	case ModeInput:
		ed.handleInputKey(ev)
		return false
	case ModeMenu:
		ed.handleMenuKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyCtrlC:
		ed.copyToClipboard()
		return false
	case tcell.KeyEscape:
		ed.apply(ed.ctrl.Cancel())
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 's':
		ed.save()
	case 'y':
		ed.copyToClipboard()
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		ed.apply(ed.ctrl.Commit(ed.inputBuffer))
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
		ed.apply(ed.ctrl.Cancel())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) > 0 {
			ed.inputBuffer = ed.inputBuffer[:len(ed.inputBuffer)-1]
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
}

func (ed *Editor) handleMenuKey(ev *tcell.EventKey) {
	m := ed.menu
	switch ev.Key() {
	case tcell.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tcell.KeyDown:
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case tcell.KeyEnter:
		item := m.items[m.selected]
		ed.closeMenu()
		ed.apply(item.action())
	case tcell.KeyEscape:
		ed.closeMenu()
	}
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	prev := ed.prevButtons
	ed.prevButtons = buttons

	if ed.mode == ModeMenu {
		if buttons&tcell.Button1 != 0 && prev&tcell.Button1 == 0 {
			if item, ok := ed.menuItemAt(x, y); ok {
				ed.closeMenu()
				ed.apply(item.action())
			} else {
				ed.closeMenu()
			}
		}
		return
	}
	if ed.mode != ModeCanvas {
		return
	}

	cw, ch := ed.canvasSize()
	inCanvas := x < cw && y < ch
	p := cellToCanvas(x, y)

	// tcell reports b1 for the left (primary) and b2 for the right
	// (secondary) button.
	switch {
	case buttons&tcell.Button1 != 0 && prev&tcell.Button1 == 0:
		if inCanvas {
			ed.apply(ed.ctrl.PointerDown(p, interaction.ButtonPrimary))
		}
	case buttons&tcell.Button1 == 0 && prev&tcell.Button1 != 0:
		ed.apply(ed.ctrl.PointerUp(p))
	case buttons&tcell.Button2 != 0 && prev&tcell.Button2 == 0:
		if inCanvas {
			ed.apply(ed.ctrl.PointerDown(p, interaction.ButtonSecondary))
		}
	default:
		ed.apply(ed.ctrl.PointerMove(p))
	}
}

// apply carries out the effects a controller call returned.
func (ed *Editor) apply(effects []interaction.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case interaction.Repaint:
			// The event loop redraws after every event.
		case interaction.DefinitionChanged:
			ed.definitionText = e.Text
			ed.modified = true
		case interaction.ShowPrompt:
			ed.mode = ModeInput
			ed.inputPrompt = e.Title
			ed.inputBuffer = e.Initial
		case interaction.ReportError:
			ed.showMessage(e.Message, MsgError)
		case interaction.ShowStateMenu:
			ed.openStateMenu(e.State, e.At)
		case interaction.ShowTransitionMenu:
			ed.openTransitionMenu(e.Transition, e.At)
		case interaction.ShowCanvasMenu:
			ed.openCanvasMenu(e.At)
		}
	}
}

func (ed *Editor) openStateMenu(s *canvas.State, at geometry.Point) {
	cx, cy := canvasToCell(at)
	ed.menu = &contextMenu{
		title: s.Name,
		items: []menuItem{
			{"Make start state", func() []interaction.Effect { return ed.ctrl.SetStart(s) }},
			{"Toggle final", func() []interaction.Effect { return ed.ctrl.ToggleFinal(s) }},
			{"Add self-transition", func() []interaction.Effect { return ed.ctrl.AddSelfTransition(s) }},
			{"Delete state", func() []interaction.Effect { return ed.ctrl.DeleteState(s) }},
		},
		cellX: cx,
		cellY: cy,
	}
	ed.mode = ModeMenu
}

func (ed *Editor) openTransitionMenu(t *canvas.Transition, at geometry.Point) {
	cx, cy := canvasToCell(at)
	ed.menu = &contextMenu{
		title: t.From.Name + " -> " + t.To.Name,
		items: []menuItem{
			{"Edit labels", func() []interaction.Effect { return ed.ctrl.EditTransition(t) }},
			{"Delete transition", func() []interaction.Effect { return ed.ctrl.DeleteTransition(t) }},
		},
		cellX: cx,
		cellY: cy,
	}
	ed.mode = ModeMenu
}

func (ed *Editor) openCanvasMenu(at geometry.Point) {
	cx, cy := canvasToCell(at)
	ed.menu = &contextMenu{
		title: "Canvas",
		items: []menuItem{
			{"Add state here", func() []interaction.Effect { return ed.ctrl.AddStateAt(at) }},
		},
		cellX: cx,
		cellY: cy,
	}
	ed.mode = ModeMenu
}

func (ed *Editor) closeMenu() {
	ed.menu = nil
	ed.mode = ModeCanvas
}

func (ed *Editor) menuItemAt(x, y int) (menuItem, bool) {
	m := ed.menu
	mx, my, mw, _ := ed.menuRect()
	row := y - my - 2
	if x <= mx || x >= mx+mw-1 || row < 0 || row >= len(m.items) {
		return menuItem{}, false
	}
	return m.items[row], true
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.showMessage("No file name; start the editor with a path", MsgError)
		return
	}
	var err error
	if filepath.Ext(ed.filename) == ".json" {
		var data []byte
		data, err = definition.MarshalDocument(ed.graph)
		if err == nil {
			err = os.WriteFile(ed.filename, data, 0644)
		}
	} else {
		err = os.WriteFile(ed.filename, []byte(definition.Generate(ed.graph)), 0644)
	}
	if err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.modified = false
	ed.showMessage("Saved "+filepath.Base(ed.filename), MsgSuccess)

	ed.cfg.LastDir = filepath.Dir(ed.filename)
	if err := SaveConfig(ed.cfg); err != nil {
		ed.logger.Debug("config save failed", "err", err)
	}
}

func (ed *Editor) reload() {
	g, err := loadGraph(ed.filename)
	if err != nil {
		ed.showMessage("Reload failed: "+err.Error(), MsgError)
		return
	}
	// Any open menu or prompt targets states of the old graph; acting on
	// them against the fresh controller would mutate orphaned objects.
	ed.closeMenu()
	ed.inputPrompt = ""
	ed.inputBuffer = ""
	ed.graph = g
	ed.ctrl = interaction.New(g)
	ed.placeAddButton()
	ed.definitionText = definition.Generate(g)
	ed.modified = false
	ed.showMessage("Reloaded "+filepath.Base(ed.filename), MsgInfo)
}

func (ed *Editor) copyToClipboard() {
	if err := clipboard.WriteAll(ed.definitionText); err != nil {
		ed.showMessage("Clipboard unavailable: "+err.Error(), MsgError)
		return
	}
	ed.showMessage("Definition copied", MsgSuccess)
}

// showMessage replaces the status-bar message. It stays until the next
// message overwrites it.
func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
}
