package definition

import (
	json "github.com/goccy/go-json"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

// Document is the JSON representation of a diagram: the same content as
// the definition text plus the state positions, so the editor can restore
// a hand-arranged layout. Loading plain definition text instead always
// re-grids the states.
type Document struct {
	States      []DocumentState      `json:"states"`
	Start       string               `json:"start,omitempty"`
	Finals      []string             `json:"finals,omitempty"`
	Transitions []DocumentTransition `json:"transitions"`
}

// DocumentState pairs a state name with its canvas position.
type DocumentState struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// DocumentTransition is one edge in the document.
type DocumentTransition struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Labels []string `json:"labels"`
}

// MarshalDocument converts a graph to its JSON document form.
func MarshalDocument(g *canvas.Graph) ([]byte, error) {
	doc := Document{}
	for _, s := range g.States {
		doc.States = append(doc.States, DocumentState{Name: s.Name, X: s.Pos.X, Y: s.Pos.Y})
		if s.Start {
			doc.Start = s.Name
		}
		if s.Final {
			doc.Finals = append(doc.Finals, s.Name)
		}
	}
	for _, t := range g.Transitions {
		doc.Transitions = append(doc.Transitions, DocumentTransition{
			From:   t.From.Name,
			To:     t.To.Name,
			Labels: t.Labels,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalDocument builds a graph from its JSON document form. States
// keep their saved positions. Transitions referencing unknown states are
// dropped, matching the tolerant text parser.
func UnmarshalDocument(data []byte) (*canvas.Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	g := canvas.New()
	finals := make(map[string]bool, len(doc.Finals))
	for _, name := range doc.Finals {
		finals[name] = true
	}
	for _, ds := range doc.States {
		s := g.AddState(ds.Name, geometry.Point{X: ds.X, Y: ds.Y})
		s.Start = ds.Name == doc.Start
		s.Final = finals[ds.Name]
	}
	g.SeedNames()

	for _, dt := range doc.Transitions {
		from := g.FindState(dt.From)
		to := g.FindState(dt.To)
		if from == nil || to == nil {
			continue
		}
		g.AppendTransition(from, to, dt.Labels)
	}
	return g, nil
}
