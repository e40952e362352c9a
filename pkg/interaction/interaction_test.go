package interaction

import (
	"strings"
	"testing"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

func newController() (*Controller, *canvas.Graph) {
	g := canvas.New()
	return New(g), g
}

func hasEffect[E Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(E); ok {
			return true
		}
	}
	return false
}

func findEffect[E Effect](t *testing.T, effects []Effect) E {
	t.Helper()
	for _, e := range effects {
		if v, ok := e.(E); ok {
			return v
		}
	}
	var zero E
	t.Fatalf("Expected %T in %v", zero, effects)
	return zero
}

func TestAddButtonOnEmptyCanvas(t *testing.T) {
	c, g := newController()
	c.AddButtonPos = geometry.Point{X: 400, Y: 300}

	if !c.ShowAddButton() {
		t.Fatal("Empty canvas should show the add button")
	}

	effects := c.PointerDown(geometry.Point{X: 400, Y: 300}, ButtonPrimary)
	if len(g.States) != 1 {
		t.Fatal("Click on the button should add a state")
	}
	if !g.States[0].Start {
		t.Error("First state should be the start state")
	}
	if !hasEffect[DefinitionChanged](effects) {
		t.Error("Mutation should emit DefinitionChanged")
	}
	if c.ShowAddButton() {
		t.Error("Button should disappear once a state exists")
	}
}

func TestAddButtonHover(t *testing.T) {
	c, _ := newController()
	c.AddButtonPos = geometry.Point{X: 400, Y: 300}

	effects := c.PointerMove(geometry.Point{X: 400, Y: 300})
	if !c.HoverAdd() {
		t.Fatal("Pointer on the button should set hover")
	}
	if !hasEffect[Repaint](effects) {
		t.Error("Hover change should repaint")
	}

	// No repaint while hover state is unchanged
	if effects := c.PointerMove(geometry.Point{X: 401, Y: 300}); len(effects) != 0 {
		t.Errorf("Unchanged hover produced effects: %v", effects)
	}

	effects = c.PointerMove(geometry.Point{X: 0, Y: 0})
	if c.HoverAdd() {
		t.Error("Pointer off the button should clear hover")
	}
	if !hasEffect[Repaint](effects) {
		t.Error("Hover change should repaint")
	}
}

func TestDragMovesState(t *testing.T) {
	c, g := newController()
	s := g.AddState("q0", geometry.Point{X: 100, Y: 100})

	// Press inside the body but off-centre; the grab offset must hold
	c.PointerDown(geometry.Point{X: 110, Y: 105}, ButtonPrimary)
	if c.Phase() != DraggingState {
		t.Fatalf("Expected DraggingState, got %v", c.Phase())
	}

	effects := c.PointerMove(geometry.Point{X: 310, Y: 205})
	if s.Pos.X != 300 || s.Pos.Y != 200 {
		t.Errorf("State at (%.0f, %.0f), want (300, 200)", s.Pos.X, s.Pos.Y)
	}
	if !hasEffect[DefinitionChanged](effects) {
		t.Error("Drag should emit DefinitionChanged")
	}

	c.PointerUp(geometry.Point{X: 310, Y: 205})
	if c.Phase() != Idle {
		t.Errorf("Expected Idle after release, got %v", c.Phase())
	}
}

func TestConnectionDragCreatesTransition(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})

	// Press on q0's east anchor
	effects := c.PointerDown(a.AnchorPos(geometry.East), ButtonPrimary)
	if c.Phase() != PendingConnection {
		t.Fatalf("Expected PendingConnection, got %v", c.Phase())
	}
	if !hasEffect[Repaint](effects) {
		t.Error("Starting a connection should repaint")
	}

	mid := geometry.Point{X: 250, Y: 100}
	c.PointerMove(mid)
	from, to, ok := c.RubberBand()
	if !ok {
		t.Fatal("Rubber band should be active")
	}
	if from != a.AnchorPos(geometry.East) || to != mid {
		t.Errorf("Rubber band %v -> %v wrong", from, to)
	}

	// Release on q1's west anchor opens the label prompt
	effects = c.PointerUp(b.AnchorPos(geometry.West))
	prompt := findEffect[ShowPrompt](t, effects)
	if prompt.Title != "Transition label(s):" || prompt.Initial != "a" {
		t.Errorf("Prompt wrong: %+v", prompt)
	}
	if len(g.Transitions) != 0 {
		t.Fatal("Transition must not exist before the prompt commits")
	}

	effects = c.Commit("x y")
	if len(g.Transitions) != 1 {
		t.Fatal("Commit should create the transition")
	}
	tr := g.Transitions[0]
	if tr.From != a || tr.To != b {
		t.Error("Transition endpoints wrong")
	}
	if tr.FromAnchor != geometry.East || tr.ToAnchor != geometry.West {
		t.Errorf("Chosen anchors lost: %s/%s", tr.FromAnchor, tr.ToAnchor)
	}
	if len(tr.Labels) != 2 || tr.Labels[0] != "x" || tr.Labels[1] != "y" {
		t.Errorf("Labels wrong: %v", tr.Labels)
	}
	if !hasEffect[DefinitionChanged](effects) {
		t.Error("Commit should emit DefinitionChanged")
	}
}

func TestConnectionDragToEmptySpace(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})

	c.PointerDown(a.AnchorPos(geometry.East), ButtonPrimary)
	effects := c.PointerUp(geometry.Point{X: 500, Y: 500})

	if c.Phase() != Idle {
		t.Error("Release should return to Idle")
	}
	if hasEffect[ShowPrompt](effects) {
		t.Error("Release over empty space must not prompt")
	}
	if len(g.Transitions) != 0 {
		t.Error("No transition should appear")
	}
}

func TestConnectionDragToBodyNotAnchor(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})

	c.PointerDown(a.AnchorPos(geometry.East), ButtonPrimary)
	// Release on q1's centre: inside the body but not near any anchor
	effects := c.PointerUp(b.Pos)

	if hasEffect[ShowPrompt](effects) {
		t.Error("Release on the body must not prompt; anchors only")
	}
	if len(g.Transitions) != 0 {
		t.Error("No transition should appear")
	}
}

func TestConnectionDragDuplicateReports(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})
	g.AppendTransition(a, b, []string{"x"})

	c.PointerDown(a.AnchorPos(geometry.East), ButtonPrimary)
	effects := c.PointerUp(b.AnchorPos(geometry.West))

	rep := findEffect[ReportError](t, effects)
	if !strings.Contains(rep.Message, "q0") || !strings.Contains(rep.Message, "q1") {
		t.Errorf("Error message should name both states: %q", rep.Message)
	}
	if hasEffect[ShowPrompt](effects) {
		t.Error("Duplicate must not prompt")
	}
	if len(g.Transitions) != 1 {
		t.Error("Duplicate must not be created")
	}
}

func TestCommitEmptyAborts(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})

	c.PointerDown(a.AnchorPos(geometry.East), ButtonPrimary)
	c.PointerUp(b.AnchorPos(geometry.West))

	if effects := c.Commit("   "); len(effects) != 0 {
		t.Errorf("Whitespace commit produced effects: %v", effects)
	}
	if len(g.Transitions) != 0 {
		t.Error("Whitespace commit must not create a transition")
	}
}

func TestCancelPrompt(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})

	c.PointerDown(a.AnchorPos(geometry.East), ButtonPrimary)
	c.PointerUp(b.AnchorPos(geometry.West))
	c.Cancel()

	if len(g.Transitions) != 0 {
		t.Error("Cancel must not create a transition")
	}
	// A later stray commit must not resurrect the pending pair
	if effects := c.Commit("x"); len(effects) != 0 {
		t.Errorf("Commit after cancel produced effects: %v", effects)
	}
	if len(g.Transitions) != 0 {
		t.Error("Commit after cancel must not create a transition")
	}
}

func TestSecondaryMenus(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})
	tr := g.AppendTransition(a, b, []string{"x"})

	effects := c.PointerDown(a.Pos, ButtonSecondary)
	sm := findEffect[ShowStateMenu](t, effects)
	if sm.State != a {
		t.Error("State menu for the wrong state")
	}

	mid := geometry.PointOnQuad(g.Curve(tr), 0.5)
	effects = c.PointerDown(mid, ButtonSecondary)
	tm := findEffect[ShowTransitionMenu](t, effects)
	if tm.Transition != tr {
		t.Error("Transition menu for the wrong transition")
	}

	effects = c.PointerDown(geometry.Point{X: 250, Y: 400}, ButtonSecondary)
	findEffect[ShowCanvasMenu](t, effects)
}

func TestSecondaryIgnoredWhileDragging(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})

	c.PointerDown(a.Pos, ButtonPrimary)
	if effects := c.PointerDown(a.Pos, ButtonSecondary); effects != nil {
		t.Errorf("Secondary press during a drag produced effects: %v", effects)
	}
	_ = g
}

func TestStateBodyTakesPrecedenceOverEdge(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})
	g.AppendTransition(a, b, []string{"x"})

	// Right-click on the state even though the edge starts at its rim
	effects := c.PointerDown(geometry.Point{X: 120, Y: 100}, ButtonSecondary)
	if !hasEffect[ShowStateMenu](effects) {
		t.Error("State body should win the hit test over the edge")
	}
}

func TestAddSelfTransitionFlow(t *testing.T) {
	c, g := newController()
	s := g.AddState("q0", geometry.Point{X: 200, Y: 200})

	effects := c.AddSelfTransition(s)
	findEffect[ShowPrompt](t, effects)

	c.Commit("z")
	if len(g.Transitions) != 1 {
		t.Fatal("Self-transition not created")
	}
	tr := g.Transitions[0]
	if !tr.IsLoop() {
		t.Error("Expected a loop")
	}
	if tr.FromAnchor != geometry.North || tr.ToAnchor != geometry.North {
		t.Errorf("Loop anchors expected North/North, got %s/%s", tr.FromAnchor, tr.ToAnchor)
	}
}

func TestEditTransitionFlow(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})
	tr := g.AppendTransition(a, b, []string{"x", "y"})

	effects := c.EditTransition(tr)
	prompt := findEffect[ShowPrompt](t, effects)
	if prompt.Initial != "x y" {
		t.Errorf("Prompt should pre-fill existing labels, got %q", prompt.Initial)
	}

	c.Commit("a, b")
	if len(tr.Labels) != 2 || tr.Labels[0] != "a" || tr.Labels[1] != "b" {
		t.Errorf("Labels after edit: %v", tr.Labels)
	}
	if len(g.Transitions) != 1 {
		t.Error("Edit must not add transitions")
	}
}

func TestDeleteStateCascades(t *testing.T) {
	c, g := newController()
	a := g.AddState("q0", geometry.Point{X: 100, Y: 100})
	b := g.AddState("q1", geometry.Point{X: 400, Y: 100})
	g.AppendTransition(a, b, []string{"x"})

	effects := c.DeleteState(b)
	if len(g.States) != 1 || len(g.Transitions) != 0 {
		t.Error("Delete should cascade to the attached transition")
	}
	dc := findEffect[DefinitionChanged](t, effects)
	if strings.Contains(dc.Text, "q1") {
		t.Errorf("Serialized text still mentions the deleted state:\n%s", dc.Text)
	}
}

func TestSetStartAndToggleFinal(t *testing.T) {
	c, g := newController()
	a := g.AddStateAt(geometry.Point{X: 100, Y: 100})
	b := g.AddStateAt(geometry.Point{X: 400, Y: 100})

	effects := c.SetStart(b)
	if a.Start || !b.Start {
		t.Error("SetStart did not move the flag")
	}
	dc := findEffect[DefinitionChanged](t, effects)
	if !strings.Contains(dc.Text, "Start: "+b.Name) {
		t.Errorf("Serialized text missing new start:\n%s", dc.Text)
	}

	c.ToggleFinal(a)
	if !a.Final {
		t.Error("ToggleFinal did not set the flag")
	}
}

func TestPressOnEmptySpaceDoesNothing(t *testing.T) {
	c, g := newController()
	g.AddState("q0", geometry.Point{X: 100, Y: 100})

	if effects := c.PointerDown(geometry.Point{X: 600, Y: 600}, ButtonPrimary); effects != nil {
		t.Errorf("Empty-space press produced effects: %v", effects)
	}
	if c.Phase() != Idle {
		t.Error("Phase should stay Idle")
	}
}
