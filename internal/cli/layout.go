package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridsmith/oneline/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.pipelineOptions()
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Compute positions for every unplaced piece of equipment",
		Long: `Compute positions for every unplaced piece of equipment.

The layout command reads a diagram file, runs the layout engine over it, and
writes a layout.json with the resulting positions, connection handle
references, and topological levels. Equipment already carrying a position is
left where it is.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", opts.Strategy, "layout strategy: layered (default), relative")
	cmd.Flags().Float64Var(&opts.ContainerWidth, "width", opts.ContainerWidth, "container width rows are centered under")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "top and left inset")
	cmd.Flags().Float64Var(&opts.VerticalSpacing, "vspacing", opts.VerticalSpacing, "distance between level rows")
	cmd.Flags().Float64Var(&opts.HorizontalSpacing, "hspacing", opts.HorizontalSpacing, "gap between row neighbors")

	return cmd
}

// runLayout loads the diagram, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = input
	opts.Formats = []string{pipeline.FormatPositions}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Strategy))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatPositions], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Export", "oneline export "+input)

	return nil
}
