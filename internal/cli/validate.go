package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridsmith/oneline/pkg/diagram"
	"github.com/gridsmith/oneline/pkg/equipment"
)

// validateCommand creates the validate command for checking diagram
// connections.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [diagram.json]",
		Short: "List all connection problems in a diagram",
		Long: `List all connection problems in a diagram.

Every committed connection is checked for voltage compatibility, and every
piece of equipment for connection capacity overruns. All problems are listed
together; the command exits non-zero when any are found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(input string) error {
	g, err := diagram.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	problems := auditGraph(g)
	if len(problems) == 0 {
		printSuccess("No problems found")
		printStats(g.NodeCount(), g.EdgeCount(), false)
		return nil
	}

	printWarning("%d problem(s) found", len(problems))
	for _, p := range problems {
		printDetail("%s", p)
	}
	return fmt.Errorf("%d connection problem(s)", len(problems))
}

// auditGraph collects every problem in an already-committed graph: capacity
// overruns per node and voltage mismatches per connection. Unlike the
// pre-commit check, an existing connection counts toward its own endpoints,
// so capacity is an overrun only when the count exceeds the limit.
func auditGraph(g *equipment.Graph) []string {
	var problems []string

	for _, n := range g.Nodes() {
		if n.SourceCount() > n.AllowedSources {
			problems = append(problems, fmt.Sprintf(
				"%s %q has %d sources but allows %d", n.Kind, n.ID, n.SourceCount(), n.AllowedSources))
		}
		if n.LoadCount() > n.AllowedLoads {
			problems = append(problems, fmt.Sprintf(
				"%s %q has %d loads but allows %d", n.Kind, n.ID, n.LoadCount(), n.AllowedLoads))
		}
	}

	for _, e := range g.Edges() {
		source, ok := g.Node(e.Source)
		if !ok {
			continue
		}
		load, ok := g.Node(e.Load)
		if !ok {
			continue
		}
		sv, sok := source.Voltage(equipment.LoadFacing)
		lv, lok := load.Voltage(equipment.SourceFacing)
		if sok && lok && sv != lv {
			problems = append(problems, fmt.Sprintf(
				"voltage mismatch on %q → %q: %gkV feeds %gkV", e.Source, e.Load, sv, lv))
		}
	}

	return problems
}
