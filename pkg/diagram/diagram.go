// Package diagram is the canonical serialization format for equipment graphs.
//
// The format is human-readable JSON designed for round-trip fidelity: export
// → re-import reproduces the same graph, including handle layouts and user
// positions. Connections are persisted once, as each node's loadIds; the
// bidirectional sourceIds view and both endpoints' handles are rebuilt on
// import.
//
// Import is two-pass by construction: all nodes are reconstructed first,
// independent of connection order, then edges are rebuilt from loadIds. A
// single-pass parse cannot work because edges reference ids that may not
// exist yet.
package diagram

import (
	"github.com/google/uuid"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/errors"
)

// Diagram is the serialized form of a full equipment graph.
type Diagram struct {
	Equipment []Equipment `json:"equipment"`
}

// Equipment is the serialized form of one node. Kind-specific electrical
// fields are pointers so absent and zero stay distinguishable.
type Equipment struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Type      string   `json:"type"`
	SourceIDs []string `json:"sourceIds,omitempty"`
	LoadIDs   []string `json:"loadIds,omitempty"`
	Position  Position `json:"position"`
	Handles   []Handle `json:"handles,omitempty"`

	Voltage          *float64 `json:"voltage,omitempty"`
	PrimaryVoltage   *float64 `json:"primaryVoltage,omitempty"`
	SecondaryVoltage *float64 `json:"secondaryVoltage,omitempty"`
	BusWidth         *float64 `json:"busWidth,omitempty"`

	AllowedSources *int `json:"allowedSources,omitempty"`
	AllowedLoads   *int `json:"allowedLoads,omitempty"`
}

// Position mirrors equipment.Position in the wire format.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Handle mirrors equipment.Handle in the wire format.
type Handle struct {
	ID                   string  `json:"id"`
	Side                 string  `json:"side"`
	PositionPercent      float64 `json:"positionPercent"`
	IsSource             bool    `json:"isSource"`
	ConnectedEquipmentID string  `json:"connectedEquipmentId,omitempty"`
}

// FromGraph converts a graph to its serialization format. Equipment is
// ordered by insertion for deterministic output.
func FromGraph(g *equipment.Graph) Diagram {
	var d Diagram
	for _, n := range g.Nodes() {
		eq := Equipment{
			ID:        n.ID,
			Name:      n.Name,
			Type:      n.Kind.String(),
			SourceIDs: n.Sources(),
			LoadIDs:   n.Loads(),
			Position:  Position{X: n.Position.X, Y: n.Position.Y},
		}
		for _, h := range n.Handles() {
			eq.Handles = append(eq.Handles, Handle{
				ID:                   h.ID,
				Side:                 h.Side.String(),
				PositionPercent:      h.PositionPercent,
				IsSource:             h.IsSource,
				ConnectedEquipmentID: h.ConnectedTo,
			})
		}

		switch n.Kind {
		case equipment.KindGenerator, equipment.KindBus:
			if v, ok := n.Voltage(equipment.SourceFacing); ok {
				eq.Voltage = &v
			}
			if n.Kind == equipment.KindBus {
				w := n.Size().Width
				eq.BusWidth = &w
			}
		case equipment.KindTransformer:
			if v, ok := n.Voltage(equipment.SourceFacing); ok {
				eq.PrimaryVoltage = &v
			}
			if v, ok := n.Voltage(equipment.LoadFacing); ok {
				eq.SecondaryVoltage = &v
			}
		}

		src := n.AllowedSources
		eq.AllowedSources = &src
		loads := n.AllowedLoads
		eq.AllowedLoads = &loads

		d.Equipment = append(d.Equipment, eq)
	}
	return d
}

// ToGraph rebuilds a graph from its serialized form.
//
// Pass one constructs and registers every node; pass two links edges from
// each node's LoadIDs, which restores the bidirectional source view. Handles
// persisted with a node are restored verbatim; a node that carries
// connections but no persisted handles gets freshly allocated ones.
func ToGraph(d Diagram) (*equipment.Graph, error) {
	g := equipment.New()

	for _, eq := range d.Equipment {
		n, err := buildNode(eq)
		if err != nil {
			return nil, err
		}
		if err := g.Add(n); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "add equipment %q", eq.ID)
		}
	}

	for _, eq := range d.Equipment {
		for _, loadID := range eq.LoadIDs {
			if err := g.Link(eq.ID, loadID); err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "link %q→%q", eq.ID, loadID)
			}
		}
	}

	for _, eq := range d.Equipment {
		n, _ := g.Node(eq.ID)
		if len(eq.Handles) > 0 {
			hs, err := parseHandles(eq.Handles)
			if err != nil {
				return nil, err
			}
			n.RestoreHandles(hs)
		} else {
			allocateHandles(n)
		}
	}

	return g, nil
}

func buildNode(eq Equipment) (*equipment.Node, error) {
	kind, err := equipment.ParseKind(eq.Type)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "equipment %q", eq.ID)
	}

	var n *equipment.Node
	switch kind {
	case equipment.KindGenerator:
		n = equipment.NewGenerator(eq.ID, eq.Name, deref(eq.Voltage))
	case equipment.KindTransformer:
		n = equipment.NewTransformer(eq.ID, eq.Name, deref(eq.PrimaryVoltage), deref(eq.SecondaryVoltage))
	case equipment.KindBus:
		width := deref(eq.BusWidth)
		if width == 0 {
			width = 240
		}
		n = equipment.NewBus(eq.ID, eq.Name, deref(eq.Voltage), width)
	case equipment.KindMeter:
		n = equipment.NewMeter(eq.ID, eq.Name)
	default:
		n = equipment.NewOther(eq.ID, eq.Name)
	}

	n.Position = equipment.Position{X: eq.Position.X, Y: eq.Position.Y}
	if eq.AllowedSources != nil {
		n.AllowedSources = *eq.AllowedSources
	}
	if eq.AllowedLoads != nil {
		n.AllowedLoads = *eq.AllowedLoads
	}
	return n, nil
}

func parseHandles(hs []Handle) ([]equipment.Handle, error) {
	out := make([]equipment.Handle, len(hs))
	for i, h := range hs {
		side, err := equipment.ParseSide(h.Side)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "handle %q", h.ID)
		}
		out[i] = equipment.Handle{
			ID:              h.ID,
			Side:            side,
			PositionPercent: h.PositionPercent,
			IsSource:        h.IsSource,
			ConnectedTo:     h.ConnectedEquipmentID,
		}
	}
	return out, nil
}

// allocateHandles derives the standard handle set for a node that was
// persisted without one: a downstream handle per load, an upstream handle
// per source, evenly distributed by AddHandle.
func allocateHandles(n *equipment.Node) {
	for _, loadID := range n.Loads() {
		n.AddHandle(equipment.Handle{ID: uuid.NewString(), Side: equipment.SideBottom, ConnectedTo: loadID})
	}
	for _, srcID := range n.Sources() {
		n.AddHandle(equipment.Handle{ID: uuid.NewString(), Side: equipment.SideTop, IsSource: true, ConnectedTo: srcID})
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
