// Package render draws the canvas graph onto raster and SVG surfaces.
// The core supplies geometry only; appearance comes from an injected
// StyleProvider so model and geometry tests never touch a theme.
package render

import (
	"fmt"
	"image/color"

	"gopkg.in/yaml.v3"
)

// StyleProvider supplies the colors used while drawing. The renderer
// never reaches into global theme state.
type StyleProvider interface {
	Background() color.RGBA
	StateFill() color.RGBA
	StateStroke() color.RGBA
	Text() color.RGBA
	AnchorDot() color.RGBA
	Edge() color.RGBA
	LabelBackground() color.RGBA
	LabelBorder() color.RGBA
	RubberBand() color.RGBA
	Accent(hover bool) color.RGBA
}

// Theme is a StyleProvider backed by a fixed palette.
type Theme struct {
	Name string

	BackgroundColor  color.RGBA
	StateFillColor   color.RGBA
	StateStrokeColor color.RGBA
	TextColor        color.RGBA
	AnchorColor      color.RGBA
	EdgeColor        color.RGBA
	LabelBgColor     color.RGBA
	LabelBorderColor color.RGBA
	RubberBandColor  color.RGBA
	AccentColor      color.RGBA
	AccentHoverColor color.RGBA
}

func (t *Theme) Background() color.RGBA      { return t.BackgroundColor }
func (t *Theme) StateFill() color.RGBA       { return t.StateFillColor }
func (t *Theme) StateStroke() color.RGBA     { return t.StateStrokeColor }
func (t *Theme) Text() color.RGBA            { return t.TextColor }
func (t *Theme) AnchorDot() color.RGBA       { return t.AnchorColor }
func (t *Theme) Edge() color.RGBA            { return t.EdgeColor }
func (t *Theme) LabelBackground() color.RGBA { return t.LabelBgColor }
func (t *Theme) LabelBorder() color.RGBA     { return t.LabelBorderColor }
func (t *Theme) RubberBand() color.RGBA      { return t.RubberBandColor }

func (t *Theme) Accent(hover bool) color.RGBA {
	if hover {
		return t.AccentHoverColor
	}
	return t.AccentColor
}

// Light is the default light palette.
func Light() *Theme {
	return &Theme{
		Name:             "light",
		BackgroundColor:  color.RGBA{250, 250, 252, 255},
		StateFillColor:   color.RGBA{240, 244, 248, 255},
		StateStrokeColor: color.RGBA{64, 64, 64, 255},
		TextColor:        color.RGBA{20, 20, 20, 255},
		AnchorColor:      color.RGBA{60, 100, 160, 255},
		EdgeColor:        color.RGBA{0, 0, 0, 255},
		LabelBgColor:     color.RGBA{255, 255, 230, 255},
		LabelBorderColor: color.RGBA{64, 64, 64, 255},
		RubberBandColor:  color.RGBA{50, 90, 200, 180},
		AccentColor:      color.RGBA{60, 120, 210, 255},
		AccentHoverColor: color.RGBA{80, 145, 235, 255},
	}
}

// Dark is the default dark palette.
func Dark() *Theme {
	return &Theme{
		Name:             "dark",
		BackgroundColor:  color.RGBA{30, 34, 40, 255},
		StateFillColor:   color.RGBA{50, 58, 70, 255},
		StateStrokeColor: color.RGBA{220, 224, 232, 255},
		TextColor:        color.RGBA{235, 238, 243, 255},
		AnchorColor:      color.RGBA{120, 170, 230, 255},
		EdgeColor:        color.RGBA{230, 235, 245, 255},
		LabelBgColor:     color.RGBA{56, 60, 70, 255},
		LabelBorderColor: color.RGBA{190, 195, 205, 255},
		RubberBandColor:  color.RGBA{50, 90, 200, 180},
		AccentColor:      color.RGBA{60, 120, 210, 255},
		AccentHoverColor: color.RGBA{80, 145, 235, 255},
	}
}

// ThemeByName returns one of the built-in themes, defaulting to light.
func ThemeByName(name string) *Theme {
	if name == "dark" {
		return Dark()
	}
	return Light()
}

// themeFile is the on-disk YAML palette format. Colors are hex strings
// (#rrggbb or #rrggbbaa) keyed by role; unknown keys are ignored and
// missing keys keep the base theme's value.
type themeFile struct {
	Name   string            `yaml:"name"`
	Base   string            `yaml:"base"`
	Colors map[string]string `yaml:"colors"`
}

// LoadTheme reads a YAML palette over one of the built-in themes.
func LoadTheme(data []byte) (*Theme, error) {
	var tf themeFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse theme: %w", err)
	}

	t := ThemeByName(tf.Base)
	if tf.Name != "" {
		t.Name = tf.Name
	}

	targets := map[string]*color.RGBA{
		"background":   &t.BackgroundColor,
		"state_fill":   &t.StateFillColor,
		"state_stroke": &t.StateStrokeColor,
		"text":         &t.TextColor,
		"anchor":       &t.AnchorColor,
		"edge":         &t.EdgeColor,
		"label_bg":     &t.LabelBgColor,
		"label_border": &t.LabelBorderColor,
		"rubber_band":  &t.RubberBandColor,
		"accent":       &t.AccentColor,
		"accent_hover": &t.AccentHoverColor,
	}
	for key, hex := range tf.Colors {
		target, ok := targets[key]
		if !ok {
			continue
		}
		c, err := parseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("theme color %s: %w", key, err)
		}
		*target = c
	}
	return t, nil
}

func parseHex(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("expected #rrggbb, got %q", s)
	}
	var r, g, b, a uint8
	a = 255
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("expected #rrggbb, got %q", s)
		}
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return color.RGBA{}, fmt.Errorf("expected #rrggbbaa, got %q", s)
		}
	default:
		return color.RGBA{}, fmt.Errorf("expected #rrggbb, got %q", s)
	}
	return color.RGBA{r, g, b, a}, nil
}

// css formats a color as a CSS hex literal for SVG styling.
func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
