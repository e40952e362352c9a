// Package interaction drives the canvas with pointer events. The state
// machine is explicit (Idle, DraggingState, PendingConnection) and every
// event handler returns the effects the host must apply, so the whole
// controller can be exercised in tests without a rendering surface.
package interaction

import (
	"fmt"
	"strings"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/definition"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// Button identifies the pointer button of a press.
type Button int

const (
	ButtonPrimary   Button = iota // drag, connect, add
	ButtonSecondary               // context menus
)

// Effect is a side effect the host must apply after an event. Graph
// mutations surface exactly two: Repaint and DefinitionChanged.
type Effect interface{ effect() }

// Repaint asks the host to redraw the canvas.
type Repaint struct{}

// DefinitionChanged carries the freshly serialized definition text for
// the external listener.
type DefinitionChanged struct{ Text string }

// ShowPrompt asks the host for label text. The host answers by calling
// Commit or Cancel on the controller.
type ShowPrompt struct {
	Title   string
	Initial string
}

// ReportError surfaces a non-fatal, user-facing message.
type ReportError struct{ Message string }

// ShowStateMenu asks the host to open the context menu for a state.
type ShowStateMenu struct {
	State *canvas.State
	At    geometry.Point
}

// ShowTransitionMenu asks the host to open the context menu for a
// transition.
type ShowTransitionMenu struct {
	Transition *canvas.Transition
	At         geometry.Point
}

// ShowCanvasMenu asks the host to open the empty-space context menu.
type ShowCanvasMenu struct{ At geometry.Point }

func (Repaint) effect()            {}
func (DefinitionChanged) effect()  {}
func (ShowPrompt) effect()         {}
func (ReportError) effect()        {}
func (ShowStateMenu) effect()      {}
func (ShowTransitionMenu) effect() {}
func (ShowCanvasMenu) effect()     {}

// Phase is the controller's press/drag/release state.
type Phase int

const (
	Idle Phase = iota
	DraggingState
	PendingConnection
)

// promptKind records why a prompt is open.
type promptKind int

const (
	promptNone promptKind = iota
	promptCreate
	promptEdit
)

// Add-button geometry, in canvas pixels.
const (
	addButtonWidth  = 100.0
	addButtonHeight = 40.0
)

// Controller owns the graph and applies pointer events to it. All calls
// run on the event thread; there is no internal locking.
type Controller struct {
	Graph *canvas.Graph

	phase      Phase
	dragState  *canvas.State
	dragOffset geometry.Point

	source       *canvas.State
	sourceAnchor geometry.Anchor
	cursor       geometry.Point

	prompt           promptKind
	createFrom       *canvas.State
	createTo         *canvas.State
	createFromAnchor geometry.Anchor
	createToAnchor   geometry.Anchor
	editTarget       *canvas.Transition

	// Fixed "Add State" button, shown only while the graph is empty.
	// The host positions it (usually the canvas center) on resize.
	AddButtonPos geometry.Point
	hoverAdd     bool
}

// New creates a controller for the given graph.
func New(g *canvas.Graph) *Controller {
	return &Controller{Graph: g}
}

// Phase returns the current press/drag/release phase.
func (c *Controller) Phase() Phase { return c.phase }

// ShowAddButton reports whether the on-canvas add button is visible.
func (c *Controller) ShowAddButton() bool { return len(c.Graph.States) == 0 }

// HoverAdd reports whether the pointer rests on the add button.
func (c *Controller) HoverAdd() bool { return c.hoverAdd }

// RubberBand returns the endpoints of the pending-connection preview
// line. ok is false unless a connection drag is in progress.
func (c *Controller) RubberBand() (from, to geometry.Point, ok bool) {
	if c.phase != PendingConnection {
		return geometry.Point{}, geometry.Point{}, false
	}
	return c.source.AnchorPos(c.sourceAnchor), c.cursor, true
}

// PointerDown handles a button press at p.
func (c *Controller) PointerDown(p geometry.Point, b Button) []Effect {
	if b == ButtonSecondary {
		if c.phase != Idle {
			return nil
		}
		if s := c.Graph.StateAt(p); s != nil {
			return []Effect{ShowStateMenu{State: s, At: p}}
		}
		if t := c.Graph.TransitionAt(p); t != nil {
			return []Effect{ShowTransitionMenu{Transition: t, At: p}}
		}
		return []Effect{ShowCanvasMenu{At: p}}
	}

	if c.ShowAddButton() && c.onAddButton(p) {
		c.hoverAdd = false
		return c.AddStateAt(c.AddButtonPos)
	}

	if s := c.Graph.StateAt(p); s != nil {
		if a, ok := c.Graph.AnchorAt(s, p); ok {
			c.phase = PendingConnection
			c.source = s
			c.sourceAnchor = a
			c.cursor = p
			return []Effect{Repaint{}}
		}
		c.phase = DraggingState
		c.dragState = s
		c.dragOffset = geometry.Point{X: p.X - s.Pos.X, Y: p.Y - s.Pos.Y}
		return nil
	}
	return nil
}

// PointerMove handles pointer motion at p.
func (c *Controller) PointerMove(p geometry.Point) []Effect {
	switch c.phase {
	case PendingConnection:
		c.cursor = p
		return []Effect{Repaint{}}
	case DraggingState:
		c.dragState.Pos = geometry.Point{X: p.X - c.dragOffset.X, Y: p.Y - c.dragOffset.Y}
		return c.mutated()
	}

	if c.ShowAddButton() {
		was := c.hoverAdd
		c.hoverAdd = c.onAddButton(p)
		if was != c.hoverAdd {
			return []Effect{Repaint{}}
		}
	}
	return nil
}

// PointerUp handles the button release at p.
func (c *Controller) PointerUp(p geometry.Point) []Effect {
	switch c.phase {
	case DraggingState:
		c.phase = Idle
		c.dragState = nil
		return nil

	case PendingConnection:
		source, sourceAnchor := c.source, c.sourceAnchor
		c.phase = Idle
		c.source = nil

		target := c.Graph.StateAt(p)
		if target == nil {
			return []Effect{Repaint{}}
		}
		targetAnchor, ok := c.Graph.AnchorAt(target, p)
		if !ok {
			return []Effect{Repaint{}}
		}
		if c.Graph.HasTransition(source, target) {
			return []Effect{Repaint{}, ReportError{
				Message: fmt.Sprintf("A transition from %s to %s already exists.", source.Name, target.Name),
			}}
		}

		c.prompt = promptCreate
		c.createFrom = source
		c.createFromAnchor = sourceAnchor
		c.createTo = target
		c.createToAnchor = targetAnchor
		return []Effect{Repaint{}, ShowPrompt{Title: "Transition label(s):", Initial: "a"}}
	}
	return nil
}

// Commit resolves an open prompt with the user's text. Empty or
// whitespace-only input aborts without mutating the graph.
func (c *Controller) Commit(input string) []Effect {
	kind := c.prompt
	c.prompt = promptNone

	labels := definition.SplitLabels(input)
	if len(labels) == 0 {
		c.clearPending()
		return nil
	}

	switch kind {
	case promptCreate:
		from, to := c.createFrom, c.createTo
		fromAnchor, toAnchor := c.createFromAnchor, c.createToAnchor
		c.clearPending()
		t, err := c.Graph.AddTransition(from, to, labels)
		if err != nil {
			return []Effect{ReportError{Message: err.Error()}}
		}
		t.FromAnchor = fromAnchor
		t.ToAnchor = toAnchor
		return c.mutated()

	case promptEdit:
		t := c.editTarget
		c.clearPending()
		t.Labels = labels
		return c.mutated()
	}
	return nil
}

// Cancel dismisses an open prompt without mutating the graph.
func (c *Controller) Cancel() []Effect {
	c.prompt = promptNone
	c.clearPending()
	return nil
}

// SetStart marks s as the start state.
func (c *Controller) SetStart(s *canvas.State) []Effect {
	c.Graph.SetStart(s)
	return c.mutated()
}

// ToggleFinal flips the final flag on s.
func (c *Controller) ToggleFinal(s *canvas.State) []Effect {
	c.Graph.ToggleFinal(s)
	return c.mutated()
}

// AddSelfTransition opens the label prompt for a self-loop on s.
func (c *Controller) AddSelfTransition(s *canvas.State) []Effect {
	c.prompt = promptCreate
	c.createFrom = s
	c.createTo = s
	c.createFromAnchor = geometry.North
	c.createToAnchor = geometry.North
	return []Effect{ShowPrompt{Title: "Transition label(s):", Initial: "a"}}
}

// EditTransition opens the label prompt pre-filled with t's labels.
func (c *Controller) EditTransition(t *canvas.Transition) []Effect {
	c.prompt = promptEdit
	c.editTarget = t
	return []Effect{ShowPrompt{Title: "Transition label(s):", Initial: strings.Join(t.Labels, " ")}}
}

// DeleteTransition removes t from the graph.
func (c *Controller) DeleteTransition(t *canvas.Transition) []Effect {
	c.Graph.RemoveTransition(t)
	return c.mutated()
}

// DeleteState removes s and, cascading, every transition touching it.
func (c *Controller) DeleteState(s *canvas.State) []Effect {
	c.Graph.RemoveState(s)
	return c.mutated()
}

// AddStateAt adds a state with a generated name at p.
func (c *Controller) AddStateAt(p geometry.Point) []Effect {
	c.Graph.AddStateAt(p)
	return c.mutated()
}

func (c *Controller) clearPending() {
	c.createFrom = nil
	c.createTo = nil
	c.editTarget = nil
}

// mutated returns the two effects every graph mutation produces.
func (c *Controller) mutated() []Effect {
	return []Effect{Repaint{}, DefinitionChanged{Text: definition.Generate(c.Graph)}}
}

func (c *Controller) onAddButton(p geometry.Point) bool {
	return p.X >= c.AddButtonPos.X-addButtonWidth/2 && p.X <= c.AddButtonPos.X+addButtonWidth/2 &&
		p.Y >= c.AddButtonPos.Y-addButtonHeight/2 && p.Y <= c.AddButtonPos.Y+addButtonHeight/2
}
