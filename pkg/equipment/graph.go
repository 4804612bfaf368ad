// Package equipment implements the directed, capacity-constrained equipment
// graph at the core of the single-line-diagram editor.
//
// Nodes are pieces of electrical equipment (generators, transformers, buses,
// meters). Edges are source→load relationships: the source feeds power into
// the load. Every edge is stored on both endpoints (if A is a source of B
// then B is a load of A) and all mutations go through Graph operations so
// the two views can never drift apart.
//
// Each connection also materializes one attachment handle per endpoint: the
// source sprouts a handle on its downstream (bottom) side, the load on its
// upstream (top) side, matching the top-to-bottom diagram convention. Handles
// sharing a side are kept evenly distributed.
//
// Graph is not safe for concurrent use without external synchronization; the
// editor drives it from a single event loop.
package equipment

import "github.com/gridsmith/oneline/pkg/errors"

// Edge is a directed source→load connection between two registered nodes.
type Edge struct {
	Source string
	Load   string
}

// Graph is the authoritative in-memory registry of equipment and their
// connections. The zero value is not usable; use New.
type Graph struct {
	nodes map[string]*Node
	order []string // insertion order, used for deterministic iteration
}

// New creates an empty equipment graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add registers a node. Returns a DUPLICATE_EQUIPMENT error if the ID is
// already taken, or INVALID_INPUT for an empty ID. Node IDs are unique for
// the lifetime of the registry.
func (g *Graph) Add(n *Node) error {
	if n == nil || n.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "equipment ID must not be empty")
	}
	if _, exists := g.nodes[n.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateEquipment, "equipment id %q already registered", n.ID)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// Remove deletes a node, severing all edges and handles referencing it on
// both endpoints. Returns an UNKNOWN_EQUIPMENT error if the ID is not
// registered.
func (g *Graph) Remove(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeUnknownEquipment, "no equipment with id %q", id)
	}
	for _, srcID := range n.Sources() {
		if src, ok := g.nodes[srcID]; ok {
			src.loads = removeID(src.loads, id)
			src.removeHandlesFor(id)
		}
	}
	for _, loadID := range n.Loads() {
		if load, ok := g.nodes[loadID]; ok {
			load.sources = removeID(load.sources, id)
			load.removeHandlesFor(id)
		}
	}
	delete(g.nodes, id)
	g.order = removeID(g.order, id)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesByKind returns all nodes of the given kind in insertion order.
func (g *Graph) NodesByKind(k Kind) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of registered nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of source→load connections.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.loads)
	}
	return count
}

// Edges returns all source→load connections, ordered by source insertion
// order and then connection order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, id := range g.order {
		for _, loadID := range g.nodes[id].loads {
			out = append(out, Edge{Source: id, Load: loadID})
		}
	}
	return out
}

// Connect adds a source→load edge, mutating both endpoints atomically and
// allocating one handle on each: a downstream handle on the source, an
// upstream handle on the load.
//
// Connect fails wholesale, never creating a partial edge, with:
//   - UNKNOWN_EQUIPMENT if either ID is not registered
//   - SELF_LOOP if both IDs are the same
//   - DUPLICATE_EDGE if the edge already exists
//   - CAPACITY_EXCEEDED if either endpoint is at its connection limit
//
// Connect enforces capacity only. Run [Check] first to collect voltage
// problems as user-facing messages before committing.
func (g *Graph) Connect(sourceID, loadID string) error {
	source, load, err := g.endpoints(sourceID, loadID)
	if err != nil {
		return err
	}
	if source.HasLoad(loadID) {
		return errors.New(errors.ErrCodeDuplicateEdge, "%q already feeds %q", sourceID, loadID)
	}
	if source.LoadCount() >= source.AllowedLoads {
		return errors.New(errors.ErrCodeCapacityExceeded,
			"%q already has %d of %d allowed loads", sourceID, source.LoadCount(), source.AllowedLoads)
	}
	if load.SourceCount() >= load.AllowedSources {
		return errors.New(errors.ErrCodeCapacityExceeded,
			"%q already has %d of %d allowed sources", loadID, load.SourceCount(), load.AllowedSources)
	}

	source.loads = append(source.loads, loadID)
	load.sources = append(load.sources, sourceID)
	source.AddHandle(Handle{ID: newHandleID(), Side: SideBottom, ConnectedTo: loadID})
	load.AddHandle(Handle{ID: newHandleID(), Side: SideTop, IsSource: true, ConnectedTo: sourceID})
	return nil
}

// Disconnect removes the source→load edge from both endpoints along with the
// handles referencing the severed partner. Returns UNKNOWN_EQUIPMENT for
// unregistered IDs; removing a non-existent edge is a no-op.
func (g *Graph) Disconnect(sourceID, loadID string) error {
	source, load, err := g.endpoints(sourceID, loadID)
	if err != nil {
		return err
	}
	source.loads = removeID(source.loads, loadID)
	load.sources = removeID(load.sources, sourceID)
	source.removeHandlesFor(loadID)
	load.removeHandlesFor(sourceID)
	return nil
}

// IsConnected reports whether an edge exists between a and b in either
// direction. Unregistered IDs report false.
func (g *Graph) IsConnected(a, b string) bool {
	na, ok := g.nodes[a]
	if !ok {
		return false
	}
	return na.HasLoad(b) || na.HasSource(b)
}

// Link adds a source→load edge without allocating handles or checking
// capacity. It is the deserialization fast path: persisted diagrams carry
// their handles explicitly and may predate capacity overrides. Structural
// checks (unknown IDs, self-loops, duplicates) still apply.
func (g *Graph) Link(sourceID, loadID string) error {
	source, load, err := g.endpoints(sourceID, loadID)
	if err != nil {
		return err
	}
	if source.HasLoad(loadID) {
		return errors.New(errors.ErrCodeDuplicateEdge, "%q already feeds %q", sourceID, loadID)
	}
	source.loads = append(source.loads, loadID)
	load.sources = append(load.sources, sourceID)
	return nil
}

// endpoints resolves both edge endpoints and rejects self-loops.
func (g *Graph) endpoints(sourceID, loadID string) (*Node, *Node, error) {
	if sourceID == loadID {
		return nil, nil, errors.New(errors.ErrCodeSelfLoop, "equipment %q cannot feed itself", sourceID)
	}
	source, ok := g.nodes[sourceID]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeUnknownEquipment, "no equipment with id %q", sourceID)
	}
	load, ok := g.nodes[loadID]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeUnknownEquipment, "no equipment with id %q", loadID)
	}
	return source, load, nil
}

func removeID(ids []string, id string) []string {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
