// Command fsmcanvas is an interactive canvas editor for finite state
// machine diagrams, with batch rendering to SVG, PNG and DOT.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ha1tch/fsm-canvas/pkg/canvas"
	"github.com/ha1tch/fsm-canvas/pkg/definition"
	"github.com/ha1tch/fsm-canvas/pkg/render"
)

var version = "0.3.0"

func main() {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *charmlog.Logger) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "fsmcanvas",
		Short:         "Edit and render finite state machine diagrams",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newEditCmd(logger))
	root.AddCommand(newRenderCmd(logger))
	root.AddCommand(newFmtCmd(logger))
	return root
}

func newEditCmd(logger *charmlog.Logger) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the interactive canvas editor",
		Long: `Open the interactive canvas editor.

With no file a new empty diagram is created; the first click places a
state. Definition files (.fsm, .txt) hold the plain-text format and
.json files carry positions as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			cfg := LoadConfig()
			ed, err := NewEditor(path, cfg, watch, logger)
			if err != nil {
				return err
			}
			return ed.Run()
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the diagram when the file changes on disk")
	return cmd
}

func newRenderCmd(logger *charmlog.Logger) *cobra.Command {
	var (
		output    string
		format    string
		theme     string
		themeFile string
		width     int
		height    int
		title     string
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a diagram to SVG, PNG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			cfg := LoadConfig()
			if format == "" {
				format = formatFromPath(output)
			}
			if format == "" {
				format = cfg.Format
			}
			if theme == "" {
				theme = cfg.Theme
			}
			if output == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				output = base + "." + format
			}

			style, err := resolveStyle(theme, themeFile)
			if err != nil {
				return err
			}

			switch format {
			case "svg":
				doc := render.GenerateSVG(g, style, width, height)
				if err := os.WriteFile(output, []byte(doc), 0644); err != nil {
					return err
				}
			case "png":
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := render.WritePNG(f, g, nil, style, width, height); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			case "dot":
				if title == "" {
					title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
				doc := definition.GenerateDOT(g, title)
				if err := os.WriteFile(output, []byte(doc), 0644); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want svg, png or dot)", format)
			}

			logger.Info("rendered", "input", args[0], "output", output, "format", format,
				"states", len(g.States), "transitions", len(g.Transitions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: svg, png or dot (default: from output extension)")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "colour theme: light or dark")
	cmd.Flags().StringVar(&themeFile, "theme-file", "", "YAML theme file overriding the base theme")
	cmd.Flags().IntVar(&width, "width", 900, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "image height in pixels")
	cmd.Flags().StringVar(&title, "title", "", "graph title for DOT output")
	return cmd
}

func newFmtCmd(logger *charmlog.Logger) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a definition file in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			text := definition.Generate(g)
			if !write {
				fmt.Print(text)
				return nil
			}
			if err := os.WriteFile(args[0], []byte(text), 0644); err != nil {
				return err
			}
			logger.Info("formatted", "file", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back instead of printing it")
	return cmd
}

// loadGraph reads a diagram from disk. JSON documents keep their stored
// positions; definition text gets the default grid layout.
func loadGraph(path string) (*canvas.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".json" {
		return definition.UnmarshalDocument(data)
	}
	return definition.Load(string(data)), nil
}

func formatFromPath(path string) string {
	switch filepath.Ext(path) {
	case ".svg":
		return "svg"
	case ".png":
		return "png"
	case ".dot", ".gv":
		return "dot"
	}
	return ""
}

func resolveStyle(theme, themeFile string) (render.StyleProvider, error) {
	if themeFile != "" {
		data, err := os.ReadFile(themeFile)
		if err != nil {
			return nil, err
		}
		return render.LoadTheme(data)
	}
	return render.ThemeByName(theme), nil
}
