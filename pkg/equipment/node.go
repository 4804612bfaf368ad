package equipment

import "slices"

// Position is a point in diagram world coordinates.
// The zero value acts as the "unset" sentinel: the layout engine only assigns
// positions to nodes still at {0,0} and never overwrites a node the user has
// explicitly moved.
type Position struct {
	X float64
	Y float64
}

// IsZero reports whether the position is the unset sentinel.
func (p Position) IsZero() bool { return p.X == 0 && p.Y == 0 }

// Size is a node's rendered footprint in world units.
type Size struct {
	Width  float64
	Height float64
}

// Handle is a positioned attachment point on a node boundary where one
// connection line terminates. PositionPercent runs 0-100 along the side.
type Handle struct {
	ID              string
	Side            Side
	PositionPercent float64
	IsSource        bool   // true when the handle attaches an incoming source
	ConnectedTo     string // partner equipment ID, lookup only
}

// Node is a single piece of equipment in the diagram graph.
//
// ID is immutable after construction. Position is owned by the node and
// mutated by the editor on drag commit. Connection state (sources, loads,
// handles) is owned jointly by both edge endpoints and must only be mutated
// through Graph operations, which keep both ends consistent.
type Node struct {
	ID   string
	Name string
	Kind Kind

	// Position is {0,0} until layout has run or the user has moved the node.
	Position Position

	// AllowedSources and AllowedLoads are connection capacities. They default
	// per kind and may be overridden per instance before the node is wired.
	AllowedSources int
	AllowedLoads   int

	traits  Traits
	size    Size
	sources []string
	loads   []string
	handles []Handle
}

func newNode(id, name string, kind Kind, traits Traits) *Node {
	return &Node{
		ID:             id,
		Name:           name,
		Kind:           kind,
		AllowedSources: traits.DefaultAllowedSources(),
		AllowedLoads:   traits.DefaultAllowedLoads(),
		traits:         traits,
		size:           traits.DefaultSize(),
	}
}

// NewGenerator creates a generator producing the given voltage on both faces.
func NewGenerator(id, name string, voltage float64) *Node {
	return newNode(id, name, KindGenerator, generatorTraits{voltage: voltage})
}

// NewTransformer creates a transformer with the primary voltage on its
// upstream face and the secondary voltage on its downstream face.
func NewTransformer(id, name string, primary, secondary float64) *Node {
	return newNode(id, name, KindTransformer, transformerTraits{primary: primary, secondary: secondary})
}

// NewBus creates a bus bar of the given explicit width. Buses commonly carry
// several sources and loads, so their width is stored rather than derived.
func NewBus(id, name string, voltage, width float64) *Node {
	return newNode(id, name, KindBus, busTraits{voltage: voltage, width: width})
}

// NewMeter creates a meter. Meters are electrically transparent: they accept
// any voltage on either face.
func NewMeter(id, name string) *Node {
	return newNode(id, name, KindMeter, meterTraits{})
}

// NewOther creates a piece of equipment with no specialized behavior.
func NewOther(id, name string) *Node {
	return newNode(id, name, KindOther, otherTraits{})
}

// Voltage returns the voltage the node presents on the given face, or false
// if the node is electrically transparent on that face.
func (n *Node) Voltage(f Facing) (float64, bool) {
	return n.traits.Voltage(f)
}

// Size returns the node's current footprint.
func (n *Node) Size() Size { return n.size }

// SetSize overrides the derived footprint, e.g. to fit dynamic content.
func (n *Node) SetSize(s Size) { n.size = s }

// Sources returns the IDs of equipment feeding this node, in connection order.
// The slice is a copy; mutate connections through Graph operations.
func (n *Node) Sources() []string { return slices.Clone(n.sources) }

// Loads returns the IDs of equipment fed by this node, in connection order.
// The slice is a copy; mutate connections through Graph operations.
func (n *Node) Loads() []string { return slices.Clone(n.loads) }

// SourceCount returns the number of incoming connections.
func (n *Node) SourceCount() int { return len(n.sources) }

// LoadCount returns the number of outgoing connections.
func (n *Node) LoadCount() int { return len(n.loads) }

// HasSource reports whether id is among the node's sources.
func (n *Node) HasSource(id string) bool { return slices.Contains(n.sources, id) }

// HasLoad reports whether id is among the node's loads.
func (n *Node) HasLoad(id string) bool { return slices.Contains(n.loads, id) }
