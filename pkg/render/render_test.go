package render

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

func sampleGraph() *canvas.Graph {
	g := canvas.New()
	a := g.AddState("q0", geometry.Point{X: 150, Y: 150})
	b := g.AddState("q1", geometry.Point{X: 450, Y: 150})
	a.Start = true
	b.Final = true
	g.AppendTransition(a, b, []string{"x"})
	g.AppendTransition(b, b, []string{"y"})
	return g
}

func TestGenerateSVG(t *testing.T) {
	doc := GenerateSVG(sampleGraph(), Light(), 600, 300)

	for _, want := range []string{
		"<svg",
		"</svg>",
		`width="600"`,
		"q0",
		"q1",
		"<circle",
		"x", // edge label
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	// One quadratic edge, one cubic loop
	if !strings.Contains(doc, "Q") {
		t.Error("SVG missing quadratic edge path")
	}
	if !strings.Contains(doc, "C") {
		t.Error("SVG missing cubic loop path")
	}
}

func TestGenerateSVGEmptyGraph(t *testing.T) {
	doc := GenerateSVG(canvas.New(), Dark(), 400, 400)
	if !strings.Contains(doc, "<svg") || !strings.Contains(doc, "</svg>") {
		t.Error("Empty graph should still produce a well-formed document")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleGraph(), nil, Light(), 600, 300); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	sig := []byte{0x89, 'P', 'N', 'G'}
	if buf.Len() < 8 || !bytes.Equal(buf.Bytes()[:4], sig) {
		t.Error("Output does not start with the PNG signature")
	}
}

func TestWritePNGWithOverlay(t *testing.T) {
	ov := &Overlay{
		Rubber:     true,
		RubberFrom: geometry.Point{X: 100, Y: 100},
		RubberTo:   geometry.Point{X: 300, Y: 200},
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleGraph(), ov, Dark(), 600, 300); err != nil {
		t.Fatalf("WritePNG with overlay failed: %v", err)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("dark").Name != "dark" {
		t.Error("dark theme not resolved")
	}
	if ThemeByName("light").Name != "light" {
		t.Error("light theme not resolved")
	}
	if ThemeByName("nonsense").Name != "light" {
		t.Error("Unknown names should fall back to light")
	}
}

func TestLoadTheme(t *testing.T) {
	data := []byte(`
name: midnight
base: dark
colors:
  background: "#101020"
  edge: "#80c0ff"
  unknown_key: "#000000"
`)
	th, err := LoadTheme(data)
	if err != nil {
		t.Fatalf("LoadTheme failed: %v", err)
	}
	if th.Name != "midnight" {
		t.Errorf("Name expected midnight, got %s", th.Name)
	}
	if th.BackgroundColor != (color.RGBA{0x10, 0x10, 0x20, 0xff}) {
		t.Errorf("Background not overridden: %v", th.BackgroundColor)
	}
	if th.EdgeColor != (color.RGBA{0x80, 0xc0, 0xff, 0xff}) {
		t.Errorf("Edge not overridden: %v", th.EdgeColor)
	}
	// Keys absent from the file keep the base palette
	if th.StateFillColor != Dark().StateFillColor {
		t.Error("Missing key should keep the base value")
	}
}

func TestLoadThemeBadColor(t *testing.T) {
	if _, err := LoadTheme([]byte("colors:\n  edge: \"red\"\n")); err == nil {
		t.Error("Non-hex color should fail")
	}
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#ff8000")
	if err != nil {
		t.Fatalf("parseHex failed: %v", err)
	}
	if c != (color.RGBA{0xff, 0x80, 0x00, 0xff}) {
		t.Errorf("Got %v", c)
	}

	c, err = parseHex("#ff800080")
	if err != nil {
		t.Fatalf("parseHex with alpha failed: %v", err)
	}
	if c.A != 0x80 {
		t.Errorf("Alpha expected 0x80, got %#x", c.A)
	}

	for _, bad := range []string{"", "ff8000", "#ff80", "#zzzzzz"} {
		if _, err := parseHex(bad); err == nil {
			t.Errorf("parseHex(%q) should fail", bad)
		}
	}
}

func TestCSS(t *testing.T) {
	if got := css(color.RGBA{0x12, 0x34, 0x56, 0xff}); got != "#123456" {
		t.Errorf("css expected #123456, got %s", got)
	}
}
