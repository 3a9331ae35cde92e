package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtower/pkg/graph"
)

// layoutCommand creates the layout command for recomputing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [map.json]",
		Short: "Recompute node positions of a mind map",
		Long: `Recompute node positions of a mind map.

The layout command reads a mind map JSON file, validates its structure, and
places every node with the hybrid layout: the root's children in a horizontal
row below it, deeper levels on radial rings. Nodes marked as pinned keep their
position and their children follow them.

Spacing and radii come from the [layout] section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	return cmd
}

// runLayout loads the map, recomputes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	m, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load mind map %s: %w", input, err)
	}

	prog := newProgress(logger)
	st := c.newStore(cfg)
	if err := st.Load(m); err != nil {
		return err
	}
	laid := st.Snapshot()
	res := st.Engine().Layout(laid.Nodes, laid.Edges)
	prog.done(fmt.Sprintf("Placed %d nodes", laid.Len()))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutput(input, ".layout.json")
	}
	if err := graph.WriteFile(laid, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(laid.Len(), len(laid.Edges), len(res.Orphans))
	printNewline()
	printNextStep("Preview", appName+" render "+outputPath)

	return nil
}

// defaultOutput replaces the extension of input with suffix.
func defaultOutput(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
