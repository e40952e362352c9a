package definition

import (
	"fmt"
	"strings"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
)

// GenerateDOT converts a diagram to Graphviz DOT format for interop with
// external tooling. Labels on one edge are joined with commas.
func GenerateDOT(g *canvas.Graph, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FSM {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	// Invisible start node
	if start := g.StartState(); start != nil {
		sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
		sb.WriteString(fmt.Sprintf("    __start -> \"%s\";\n", escapeDOT(start.Name)))
		sb.WriteString("\n")
	}

	for _, s := range g.States {
		shape := "circle"
		if s.Final {
			shape = "doublecircle"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [shape=%s];\n", escapeDOT(s.Name), shape))
	}
	sb.WriteString("\n")

	for _, t := range g.Transitions {
		label := strings.Join(t.Labels, ", ")
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(t.From.Name), escapeDOT(t.To.Name), escapeDOT(label)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
