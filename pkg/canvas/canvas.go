// Package canvas holds the mutable graph model for one FSM diagram:
// named states positioned freely in the plane and directed labeled
// transitions between them, including self-loops and parallel edges.
package canvas

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// Canvas dimensions and hit-testing constants, in pixels.
const (
	StateRadius = 35.0
	AnchorSize  = 10.0
	GridSpacing = 120.0

	// Anchors get a grab radius larger than their drawn size so they
	// remain clickable next to the state body.
	anchorHitFactor = 2.3
)

// State is a named automaton state placed on the canvas. Its name is its
// identity; transitions reference states, they never copy them.
type State struct {
	Name  string
	Pos   geometry.Point
	Start bool
	Final bool
}

// AnchorPos returns the given compass anchor on the state's boundary.
func (s *State) AnchorPos(a geometry.Anchor) geometry.Point {
	return geometry.AnchorPosition(s.Pos, StateRadius, a)
}

// Transition is a directed labeled edge between two states. From == To
// marks a self-loop, which always uses the loop geometry regardless of
// its anchors. Label order is preserved for round-trip fidelity.
type Transition struct {
	From, To    *State
	Labels      []string
	FromAnchor  geometry.Anchor
	ToAnchor    geometry.Anchor
	OffsetIndex int
}

// IsLoop reports whether the transition is a self-loop.
func (t *Transition) IsLoop() bool { return t.From == t.To }

// DuplicateTransitionError is returned when a transition for an already
// existing ordered (from, to) pair is added. The reverse pair is a
// distinct, allowed transition.
type DuplicateTransitionError struct {
	From, To string
}

func (e *DuplicateTransitionError) Error() string {
	return fmt.Sprintf("a transition from %s to %s already exists", e.From, e.To)
}

// Graph is the ordered collection of states and transitions for one
// diagram. Transition endpoints always reference states currently in the
// graph; deleting a state cascades to its transitions.
type Graph struct {
	States      []*State
	Transitions []*Transition

	nameCounter int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddState adds a named state at the given position. If a state with that
// name already exists it is returned unchanged.
func (g *Graph) AddState(name string, pos geometry.Point) *State {
	if s := g.FindState(name); s != nil {
		return s
	}
	s := &State{Name: name, Pos: pos}
	g.States = append(g.States, s)
	return s
}

// AddStateAt adds a state with the next generated name (q0, q1, ...).
// The first state added to an empty graph becomes the start state.
func (g *Graph) AddStateAt(pos geometry.Point) *State {
	name := fmt.Sprintf("q%d", g.nameCounter)
	g.nameCounter++
	s := &State{Name: name, Pos: pos, Start: len(g.States) == 0}
	g.States = append(g.States, s)
	return s
}

var stateNameIndex = regexp.MustCompile(`^q(\d+)$`)

// SeedNames advances the name counter past every numeric q-suffix already
// in the graph so generated names never collide with loaded ones.
func (g *Graph) SeedNames() {
	for _, s := range g.States {
		m := stateNameIndex.FindStringSubmatch(s.Name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n+1 > g.nameCounter {
			g.nameCounter = n + 1
		}
	}
}

// FindState returns the state with the given name, or nil.
func (g *Graph) FindState(name string) *State {
	for _, s := range g.States {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// StartState returns the state marked as start, or nil.
func (g *Graph) StartState() *State {
	for _, s := range g.States {
		if s.Start {
			return s
		}
	}
	return nil
}

// RemoveState removes s and every transition whose endpoint is s.
func (g *Graph) RemoveState(s *State) {
	kept := g.Transitions[:0]
	for _, t := range g.Transitions {
		if t.From != s && t.To != s {
			kept = append(kept, t)
		}
	}
	g.Transitions = kept

	states := g.States[:0]
	for _, other := range g.States {
		if other != s {
			states = append(states, other)
		}
	}
	g.States = states
}

// HasTransition reports whether the exact ordered (from, to) pair already
// has a transition.
func (g *Graph) HasTransition(from, to *State) bool {
	for _, t := range g.Transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// HasOpposite reports whether a transition in the reverse direction of t
// exists.
func (g *Graph) HasOpposite(t *Transition) bool {
	for _, other := range g.Transitions {
		if other.From == t.To && other.To == t.From && other != t {
			return true
		}
	}
	return false
}

// OffsetIndex computes the offset index a new (from, to) transition
// should take: the larger of the same-direction and opposite-direction
// edge counts between the pair. Successive parallel edges fan out
// progressively, and the first reciprocal edge still clears the edge it
// opposes.
func (g *Graph) OffsetIndex(from, to *State) int {
	sameDir := 0
	oppositeDir := 0
	for _, t := range g.Transitions {
		switch {
		case t.From == from && t.To == to:
			sameDir++
		case t.From == to && t.To == from:
			oppositeDir++
		}
	}
	if sameDir > oppositeDir {
		return sameDir
	}
	return oppositeDir
}

// AddTransition appends a transition for the ordered (from, to) pair,
// rejecting duplicates with a DuplicateTransitionError. The reverse pair
// is allowed.
func (g *Graph) AddTransition(from, to *State, labels []string) (*Transition, error) {
	if g.HasTransition(from, to) {
		return nil, &DuplicateTransitionError{From: from.Name, To: to.Name}
	}
	return g.AppendTransition(from, to, labels), nil
}

// AppendTransition appends a transition without the duplicate check.
// Parsed definitions may legitimately carry several lines for the same
// ordered pair; those are kept as distinct parallel edges that fan out by
// offset index.
func (g *Graph) AppendTransition(from, to *State, labels []string) *Transition {
	t := &Transition{
		From:        from,
		To:          to,
		Labels:      labels,
		FromAnchor:  geometry.East,
		ToAnchor:    geometry.West,
		OffsetIndex: g.OffsetIndex(from, to),
	}
	if from == to {
		t.FromAnchor = geometry.North
		t.ToAnchor = geometry.North
	}
	g.Transitions = append(g.Transitions, t)
	return t
}

// RemoveTransition removes t from the graph.
func (g *Graph) RemoveTransition(t *Transition) {
	kept := g.Transitions[:0]
	for _, other := range g.Transitions {
		if other != t {
			kept = append(kept, other)
		}
	}
	g.Transitions = kept
}

// SetStart marks s as the start state, clearing the flag on all others
// first so at most one state carries it.
func (g *Graph) SetStart(s *State) {
	for _, other := range g.States {
		other.Start = false
	}
	s.Start = true
}

// ToggleFinal flips the final flag on s.
func (g *Graph) ToggleFinal(s *State) {
	s.Final = !s.Final
}

// Alphabet returns the set of labels used by any transition.
func (g *Graph) Alphabet() map[string]bool {
	alphabet := make(map[string]bool)
	for _, t := range g.Transitions {
		for _, l := range t.Labels {
			alphabet[l] = true
		}
	}
	return alphabet
}

// Curve returns the quadratic curve for a non-loop transition, bowing to
// account for parallel and opposing edges. Drawing and hit-testing share
// this single derivation.
func (g *Graph) Curve(t *Transition) geometry.QuadCurve {
	from := t.From.AnchorPos(t.FromAnchor)
	to := t.To.AnchorPos(t.ToAnchor)
	return geometry.EdgeCurve(from, to, t.OffsetIndex, g.HasOpposite(t), t.From.Name, t.To.Name)
}

// LoopCurve returns the cubic curve for a self-loop.
func (g *Graph) LoopCurve(t *Transition) geometry.CubicCurve {
	return geometry.SelfLoopCurve(t.From.Pos, StateRadius, t.OffsetIndex)
}

// StateAt returns the state whose body contains p, or nil.
func (g *Graph) StateAt(p geometry.Point) *State {
	for _, s := range g.States {
		if geometry.Distance(p, s.Pos) <= StateRadius {
			return s
		}
	}
	return nil
}

// AnchorAt returns the anchor of s within grab range of p, if any.
func (g *Graph) AnchorAt(s *State, p geometry.Point) (geometry.Anchor, bool) {
	for _, a := range geometry.Anchors {
		if geometry.Distance(p, s.AnchorPos(a)) <= AnchorSize*anchorHitFactor {
			return a, true
		}
	}
	return 0, false
}

// TransitionAt returns the first transition whose curve passes within the
// hit tolerance of p, or nil.
func (g *Graph) TransitionAt(p geometry.Point) *Transition {
	for _, t := range g.Transitions {
		if t.IsLoop() {
			if geometry.HitCubic(g.LoopCurve(t), p, 0, 0) {
				return t
			}
		} else if geometry.HitQuad(g.Curve(t), p, 0, 0) {
			return t
		}
	}
	return nil
}
