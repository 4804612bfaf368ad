// Package layout turns an equipment graph snapshot into non-overlapping 2D
// positions.
//
// The engine never mutates the graph it was derived from: it consumes an
// immutable snapshot ([Snapshot]) and returns a position patch plus the edge
// list with inferred handle references. Callers apply the patch back to the
// graph themselves.
//
// Two interchangeable strategies are provided:
//
//   - [Layered]: topological leveling (Kahn's algorithm) with centered-row
//     packing per level. Sources end up strictly above their loads.
//   - [Relative]: parent/child relative placement with a local slide-right
//     collision search. Trades guaranteed layering for locality and is more
//     tolerant of partially-pinned diagrams.
//
// Both strategies are total: cycles and disconnected fragments degrade to
// best-effort placement instead of failing, so a diagram always renders.
package layout

import (
	"fmt"

	"github.com/gridsmith/oneline/pkg/equipment"
)

// Node is an immutable snapshot of one piece of equipment, carrying only what
// placement needs. A zero Position means "unset": the strategy will assign
// one. A non-zero Position is pinned: it is echoed back unchanged, though
// the node still occupies space in row-width accounting.
type Node struct {
	ID       string
	Kind     equipment.Kind
	Size     equipment.Size
	Sources  []string
	Loads    []string
	Position equipment.Position
}

// Edge is a source→load connection with resolved handle references for
// connector routing. Handle refs are "bottom"/"top" for single attachments,
// or "bottom-k"/"top-k" when the endpoint is a bus fanning out multiple
// connections across its width (k is the connection's index in the bus's
// source/load list).
type Edge struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// Result is the output of a layout pass.
type Result struct {
	// Positions maps every snapshot node to a position. Pinned nodes keep
	// the position they came in with.
	Positions map[string]equipment.Position

	// Edges lists all connections with inferred handle references.
	Edges []Edge

	// Levels records the topological leveling the layered strategy produced,
	// top row first. Empty for the relative strategy.
	Levels [][]string
}

// Options are the geometric tunables shared by both strategies.
type Options struct {
	// Margin is the top and left inset of the first row.
	Margin float64
	// VerticalSpacing is the distance between consecutive level rows.
	VerticalSpacing float64
	// HorizontalSpacing is the gap between neighbors within a row.
	HorizontalSpacing float64
	// ContainerWidth is the width each row is centered under.
	ContainerWidth float64
	// MinNodeWidth is the smallest effective width a node occupies in a row.
	MinNodeWidth float64
	// NodePadding is added to a node's declared width in row accounting.
	NodePadding float64
	// SlideStep is the collision-search step of the relative strategy.
	SlideStep float64
}

// DefaultOptions returns the standard geometry.
func DefaultOptions() Options {
	return Options{
		Margin:            40,
		VerticalSpacing:   120,
		HorizontalSpacing: 40,
		ContainerWidth:    1200,
		MinNodeWidth:      60,
		NodePadding:       20,
		SlideStep:         20,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithContainerWidth sets the width rows are centered under.
func WithContainerWidth(w float64) Option {
	return func(o *Options) { o.ContainerWidth = w }
}

// WithMargin sets the top/left inset.
func WithMargin(m float64) Option {
	return func(o *Options) { o.Margin = m }
}

// WithSpacing sets the vertical row spacing and horizontal neighbor gap.
func WithSpacing(vertical, horizontal float64) Option {
	return func(o *Options) {
		o.VerticalSpacing = vertical
		o.HorizontalSpacing = horizontal
	}
}

// WithSlideStep sets the relative strategy's collision-search step.
func WithSlideStep(step float64) Option {
	return func(o *Options) { o.SlideStep = step }
}

// Strategy is a placement algorithm. Strategies are total functions: they
// return a position for every snapshot node and never fail.
type Strategy func(nodes []Node, opts Options) Result

// Build runs the default layered strategy with the given options applied.
func Build(nodes []Node, opts ...Option) Result {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return Layered(nodes, o)
}

// Snapshot captures the current graph state as layout input. The returned
// nodes are detached copies: later graph mutations do not affect them.
func Snapshot(g *equipment.Graph) []Node {
	var out []Node
	for _, n := range g.Nodes() {
		out = append(out, Node{
			ID:       n.ID,
			Kind:     n.Kind,
			Size:     n.Size(),
			Sources:  n.Sources(),
			Loads:    n.Loads(),
			Position: n.Position,
		})
	}
	return out
}

// InferEdges resolves the handle reference each connection uses on both
// endpoints. Bus endpoints with multiple connections on a side fan out over
// indexed handles so lines spread across the bus's width instead of
// overlapping at one point; all other endpoints use the plain side refs.
func InferEdges(nodes []Node) []Edge {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var edges []Edge
	for _, n := range nodes {
		for i, loadID := range n.Loads {
			e := Edge{Source: n.ID, Target: loadID, SourceHandle: "bottom", TargetHandle: "top"}
			if n.Kind == equipment.KindBus && len(n.Loads) > 1 {
				e.SourceHandle = fmt.Sprintf("bottom-%d", i)
			}
			if target, ok := byID[loadID]; ok && target.Kind == equipment.KindBus && len(target.Sources) > 1 {
				e.TargetHandle = fmt.Sprintf("top-%d", indexOf(target.Sources, n.ID))
			}
			edges = append(edges, e)
		}
	}
	return edges
}

// effectiveWidth is the horizontal room a node occupies in row accounting.
func effectiveWidth(n Node, opts Options) float64 {
	w := n.Size.Width + opts.NodePadding
	if w < opts.MinNodeWidth {
		w = opts.MinNodeWidth
	}
	return w
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return 0
}
