package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtower/pkg/graph"
	"github.com/matzehuels/mindtower/pkg/mindmap"
	"github.com/matzehuels/mindtower/pkg/render/nodelink"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: "svg", "dot"
	detailed bool     // show status, due date and depth in labels
	scale    float64  // points per scene unit
	relayout bool     // recompute positions before rendering
}

// renderCommand creates the render command for generating a flat preview.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 1}

	cmd := &cobra.Command{
		Use:   "render [map.json]",
		Short: "Render a mind map preview to SVG or DOT",
		Long: `Render a mind map preview to SVG or DOT.

The preview is the 3D scene viewed along the z axis: every node is drawn at
its (x, y) position and edges connect parents to children. Depth is shown in
labels with --detailed.

Positions are taken from the file as-is. Use --relayout to recompute them
first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.scale <= 0 {
				return fmt.Errorf("invalid scale: %g (must be positive)", opts.scale)
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show status, due date and depth in node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "points per scene unit")
	cmd.Flags().BoolVar(&opts.relayout, "relayout", false, "recompute node positions before rendering")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the map and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	m, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load mind map %s: %w", input, err)
	}
	logger.Infof("Loaded mind map: %d nodes, %d edges", m.Len(), len(m.Edges))

	if opts.relayout {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		st := c.newStore(cfg)
		if err := st.Load(m); err != nil {
			return err
		}
		m = st.Snapshot()
	}

	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: opts.detailed, Scale: opts.scale})

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeRendered(ctx, m, dot, format, path); err != nil {
			return err
		}
		printFile(path)
	}
	printSuccess("Rendered %d nodes", m.Len())
	return nil
}

func writeRendered(ctx context.Context, m mindmap.MindMap, dot, format, path string) error {
	data := []byte(dot)
	if format == formatSVG {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d nodes...", m.Len()))
		spinner.Start()
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
		data = svg
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
