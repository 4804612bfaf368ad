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

// exportCommand creates the export command for generating output artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formats  string
		output   string
		noCache  bool
		detailed bool
		scale    float64
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "export [diagram.json]",
		Short: "Export a diagram as DOT, SVG, PDF, or PNG",
		Long: `Export a diagram as DOT, SVG, PDF, or PNG.

The diagram is laid out first, so exported output always carries a position
for every piece of equipment. Multiple formats can be produced in one run
with a comma-separated -f list.

PDF and PNG output require librsvg (rsvg-convert) on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			opts.Detailed = detailed
			opts.Scale = scale
			return c.runExport(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formats, "formats", "f", "svg", "comma-separated output formats: dot, svg, pdf, png, positions")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output basename (default: input without extension)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include voltages and capacities in labels")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", pipeline.DefaultStrategy, "layout strategy: layered (default), relative")

	return cmd
}

// runExport executes the pipeline and writes one file per requested format.
func (c *CLI) runExport(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = input

	spinner := newSpinnerWithContext(ctx, "Exporting diagram...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	printSuccess("Export complete")
	for _, format := range opts.Formats {
		path := base + "." + extensionFor(format)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.ExportHit)

	return nil
}

// extensionFor maps a format name to its file extension.
func extensionFor(format string) string {
	if format == pipeline.FormatPositions {
		return "layout.json"
	}
	return format
}
