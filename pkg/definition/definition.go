// Package definition converts between the canvas graph and its plain-text
// automaton definition. Parsing is tolerant and line-oriented: malformed
// lines are dropped, never fatal, so one bad line cannot fail a load.
package definition

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// Parsed holds the result of reading a definition text: state names in
// declaration order, the start and final names, and the transitions in
// text order with their label lists intact.
type Parsed struct {
	States      []string
	Start       string
	Finals      []string
	Transitions []ParsedTransition
}

// ParsedTransition is one transition line from the text.
type ParsedTransition struct {
	From, To string
	Labels   []string
}

var (
	statesLine = regexp.MustCompile(`(?i)^states:\s*(.*)$`)
	startLine  = regexp.MustCompile(`(?i)^start:\s*([\w-]+)$`)
	finalsLine = regexp.MustCompile(`(?i)^finals:\s*(.*)$`)
	transLine  = regexp.MustCompile(`(?i)^([\w-]+)\s*->\s*([\w-]+)\s*\(([^)]*)\)$`)
)

// Parse reads a definition best-effort. Blank lines and # comments are
// skipped. A line starting with "transitions" (case-insensitive) switches
// into transition mode; header lines before it match states:/start:/finals:
// patterns, first match wins. Anything unmatched is silently ignored.
// Transition endpoints are auto-declared as states when needed. If no
// start: line appears, the first declared state becomes the start.
func Parse(text string) *Parsed {
	p := &Parsed{}
	declared := make(map[string]bool)
	finals := make(map[string]bool)

	addState := func(name string) {
		if !declared[name] {
			declared[name] = true
			p.States = append(p.States, name)
		}
	}

	inTransitions := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "transitions") {
			inTransitions = true
			continue
		}

		if !inTransitions {
			if m := statesLine.FindStringSubmatch(line); m != nil {
				for _, tok := range strings.Fields(m[1]) {
					addState(tok)
				}
			} else if m := startLine.FindStringSubmatch(line); m != nil {
				p.Start = m[1]
			} else if m := finalsLine.FindStringSubmatch(line); m != nil {
				for _, tok := range strings.Fields(m[1]) {
					if !finals[tok] {
						finals[tok] = true
						p.Finals = append(p.Finals, tok)
					}
				}
			}
			continue
		}

		m := transLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p.Transitions = append(p.Transitions, ParsedTransition{
			From:   m[1],
			To:     m[2],
			Labels: strings.Fields(m[3]),
		})
		addState(m[1])
		addState(m[2])
	}

	if p.Start == "" && len(p.States) > 0 {
		p.Start = p.States[0]
	}
	return p
}

// Generate serializes the graph in the block definition format. Finals
// and Alphabet enumerate in map order (not guaranteed stable between
// calls); States and Transitions keep creation order so a reload
// reproduces the same diagram.
func Generate(g *canvas.Graph) string {
	var sb strings.Builder

	if start := g.StartState(); start != nil {
		fmt.Fprintf(&sb, "Start: %s\n", start.Name)
	}

	finals := make(map[string]bool)
	for _, s := range g.States {
		if s.Final {
			finals[s.Name] = true
		}
	}
	if len(finals) > 0 {
		sb.WriteString("Finals:")
		for name := range finals {
			sb.WriteString(" " + name)
		}
		sb.WriteString("\n")
	}

	if alphabet := g.Alphabet(); len(alphabet) > 0 {
		sb.WriteString("Alphabet:")
		for label := range alphabet {
			sb.WriteString(" " + label)
		}
		sb.WriteString("\n")
	}

	if len(g.States) > 0 {
		sb.WriteString("States:")
		for _, s := range g.States {
			sb.WriteString(" " + s.Name)
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("Transitions:\n")
	for _, t := range g.Transitions {
		fmt.Fprintf(&sb, "%s -> %s (%s)\n", t.From.Name, t.To.Name, strings.Join(t.Labels, " "))
	}
	return sb.String()
}

// Load parses text and builds a positioned graph. States land on a
// square-ish grid (columns = ceil(sqrt(n)), GridSpacing apart, row-major)
// purely from declaration order; positions from any previous layout are
// not preserved. Duplicate transition lines for the same ordered pair are
// kept as distinct parallel edges.
func Load(text string) *canvas.Graph {
	p := Parse(text)
	g := canvas.New()
	n := len(p.States)
	if n == 0 {
		return g
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols < 1 {
		cols = 1
	}

	finals := make(map[string]bool, len(p.Finals))
	for _, name := range p.Finals {
		finals[name] = true
	}

	for i, name := range p.States {
		row := i / cols
		col := i % cols
		pos := geometry.Point{
			X: canvas.GridSpacing + float64(col)*canvas.GridSpacing,
			Y: canvas.GridSpacing + float64(row)*canvas.GridSpacing,
		}
		s := g.AddState(name, pos)
		s.Start = name == p.Start
		s.Final = finals[name]
	}
	g.SeedNames()

	for _, pt := range p.Transitions {
		from := g.FindState(pt.From)
		to := g.FindState(pt.To)
		if from == nil || to == nil {
			continue
		}
		g.AppendTransition(from, to, append([]string(nil), pt.Labels...))
	}
	return g
}

// SplitLabels splits prompt input on spaces and commas, dropping empty
// tokens. Whitespace-only input yields nil.
func SplitLabels(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}
