package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/fsm-canvas/pkg/geometry"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Config{Theme: "dark", Format: "png", LastDir: "/tmp/diagrams"}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	got := LoadConfig()
	if got != cfg {
		t.Errorf("Round trip changed config: %+v != %+v", got, cfg)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got := LoadConfig()
	if got.Theme != "light" || got.Format != "svg" {
		t.Errorf("Missing file should yield defaults, got %+v", got)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "fsm-canvas", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("theme = \"neon\"\nformat = \"bmp\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := LoadConfig()
	if got.Theme != "light" {
		t.Errorf("Bad theme should fall back to light, got %s", got.Theme)
	}
	if got.Format != "svg" {
		t.Errorf("Bad format should fall back to svg, got %s", got.Format)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]string{
		"out.svg":    "svg",
		"out.png":    "png",
		"out.dot":    "dot",
		"out.gv":     "dot",
		"out.txt":    "",
		"no-ext":     "",
		"dir/of.svg": "svg",
	}
	for in, want := range cases {
		if got := formatFromPath(in); got != want {
			t.Errorf("formatFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCellCanvasMapping(t *testing.T) {
	// A cell's centre maps back to the same cell
	for _, cell := range [][2]int{{0, 0}, {5, 3}, {70, 20}} {
		p := cellToCanvas(cell[0], cell[1])
		x, y := canvasToCell(p)
		if x != cell[0] || y != cell[1] {
			t.Errorf("Cell (%d, %d) round-tripped to (%d, %d)", cell[0], cell[1], x, y)
		}
	}
}

func TestArrowRune(t *testing.T) {
	cases := []struct {
		angle float64
		want  rune
	}{
		{0, '→'},
		{math.Pi / 2, '↓'},
		{math.Pi, '←'},
		{-math.Pi / 2, '↑'},
		{3 * math.Pi / 2, '↑'},
	}
	for _, c := range cases {
		if got := arrowRune(c.angle); got != c.want {
			t.Errorf("arrowRune(%.2f) = %c, want %c", c.angle, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Short string changed: %q", got)
	}
	if got := truncate("a much longer line", 10); got != "a much ..." {
		t.Errorf("Truncation wrong: %q", got)
	}
}

func TestLoadGraphDefinition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.fsm")
	text := "Start: q0\nStates: q0 q1\n\nTransitions:\nq0 -> q1 (a)\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := loadGraph(path)
	if err != nil {
		t.Fatalf("loadGraph failed: %v", err)
	}
	if len(g.States) != 2 || len(g.Transitions) != 1 {
		t.Errorf("Got %d states, %d transitions", len(g.States), len(g.Transitions))
	}
}

func TestLoadGraphDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	doc := `{"states": [{"name": "q0", "x": 42, "y": 77}], "start": "q0", "transitions": []}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := loadGraph(path)
	if err != nil {
		t.Fatalf("loadGraph failed: %v", err)
	}
	if len(g.States) != 1 {
		t.Fatalf("Expected 1 state, got %d", len(g.States))
	}
	if g.States[0].Pos != (geometry.Point{X: 42, Y: 77}) {
		t.Errorf("Document position lost: %v", g.States[0].Pos)
	}
}
