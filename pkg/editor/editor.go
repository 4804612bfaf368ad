// Package editor is the stateful controller driving one diagram session.
//
// An Editor owns a single equipment graph and coordinates the pure engines
// around it: validation before connections commit, layout passes that fill in
// positions for unplaced nodes, and the drag lifecycle with live snapping.
// All state lives on the Editor instance; nothing is process-global, so
// several diagrams can be edited side by side.
//
// Editor is not safe for concurrent use. Drive it from a single event loop
// and synchronize externally if needed.
package editor

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/errors"
	"github.com/gridsmith/oneline/pkg/layout"
	"github.com/gridsmith/oneline/pkg/observability"
	"github.com/gridsmith/oneline/pkg/snap"
)

// Editor coordinates graph mutation, layout, and drag snapping for one
// diagram.
type Editor struct {
	graph        *equipment.Graph
	strategy     layout.Strategy
	strategyName string
	layoutOpts   layout.Options
	snapX, snapY float64
	logger       *log.Logger

	dirty  bool
	result layout.Result

	drag *dragState
}

// dragState tracks the node being moved between BeginDrag and EndDrag.
type dragState struct {
	id     string
	origin equipment.Position
	lines  []snap.Line
}

// Option configures an Editor.
type Option func(*Editor)

// WithGraph seeds the editor with an existing graph, e.g. one loaded from a
// persisted diagram. Without it the editor starts empty.
func WithGraph(g *equipment.Graph) Option {
	return func(e *Editor) { e.graph = g }
}

// WithStrategy selects the layout strategy. The name is used for logging and
// instrumentation.
func WithStrategy(name string, s layout.Strategy) Option {
	return func(e *Editor) {
		e.strategyName = name
		e.strategy = s
	}
}

// WithLayoutOptions overrides the layout geometry.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(e *Editor) {
		for _, fn := range opts {
			fn(&e.layoutOpts)
		}
	}
}

// WithSnapThresholds sets the per-axis snap distances. Zero keeps the
// default.
func WithSnapThresholds(x, y float64) Option {
	return func(e *Editor) {
		e.snapX = x
		e.snapY = y
	}
}

// WithLogger sets the logger. Without it the editor logs nowhere.
func WithLogger(logger *log.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

// New creates an editor with an empty graph, the layered strategy, and
// default geometry.
func New(opts ...Option) *Editor {
	e := &Editor{
		graph:        equipment.New(),
		strategy:     layout.Layered,
		strategyName: "layered",
		layoutOpts:   layout.DefaultOptions(),
		logger:       log.New(io.Discard),
		dirty:        true,
	}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

// Graph exposes the underlying graph for read access, e.g. serialization.
func (e *Editor) Graph() *equipment.Graph { return e.graph }

// AddEquipment registers a node and schedules a relayout.
func (e *Editor) AddEquipment(n *equipment.Node) error {
	if err := e.graph.Add(n); err != nil {
		return err
	}
	e.dirty = true
	e.logger.Debug("added equipment", "id", n.ID, "kind", n.Kind)
	return nil
}

// RemoveEquipment deletes a node, severing its connections, and schedules a
// relayout. A drag in progress on the removed node is cancelled.
func (e *Editor) RemoveEquipment(id string) error {
	if err := e.graph.Remove(id); err != nil {
		return err
	}
	if e.drag != nil && e.drag.id == id {
		e.drag = nil
	}
	e.dirty = true
	e.logger.Debug("removed equipment", "id", id)
	return nil
}

// Connect validates and commits a source→load connection.
//
// Validation problems (voltage mismatch, capacity) come back as user-facing
// messages with a nil error, and nothing is committed. Structural failures
// (unknown IDs, self-loops, duplicate edges) come back as an error. On
// success both return values are empty and a relayout is scheduled.
func (e *Editor) Connect(sourceID, loadID string) ([]string, error) {
	source, okS := e.graph.Node(sourceID)
	load, okL := e.graph.Node(loadID)
	if okS && okL && sourceID != loadID {
		if problems := equipment.Check(source, load); len(problems) > 0 {
			observability.Editor().OnConnect(sourceID, loadID, problems, nil)
			e.logger.Debug("connection rejected", "source", sourceID, "load", loadID, "problems", len(problems))
			return problems, nil
		}
	}

	err := e.graph.Connect(sourceID, loadID)
	observability.Editor().OnConnect(sourceID, loadID, nil, err)
	if err != nil {
		return nil, err
	}
	e.dirty = true
	e.logger.Debug("connected equipment", "source", sourceID, "load", loadID)
	return nil, nil
}

// Disconnect severs a source→load connection and schedules a relayout.
func (e *Editor) Disconnect(sourceID, loadID string) error {
	if err := e.graph.Disconnect(sourceID, loadID); err != nil {
		return err
	}
	observability.Editor().OnDisconnect(sourceID, loadID)
	e.dirty = true
	e.logger.Debug("disconnected equipment", "source", sourceID, "load", loadID)
	return nil
}

// Move pins a node at an explicit position. Pinned nodes keep their position
// across layout passes.
func (e *Editor) Move(id string, p equipment.Position) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeUnknownEquipment, "no equipment with id %q", id)
	}
	n.Position = p
	e.dirty = true
	return nil
}

// Relayout runs the layout strategy over a snapshot of the graph and applies
// the resulting position patch to every node still unplaced. Nodes the user
// has moved are left where they are. The result is cached until the next
// mutation.
func (e *Editor) Relayout() layout.Result {
	start := time.Now()
	nodes := layout.Snapshot(e.graph)
	res := e.strategy(nodes, e.layoutOpts)

	for _, n := range e.graph.Nodes() {
		if n.Position.IsZero() {
			if p, ok := res.Positions[n.ID]; ok {
				n.Position = p
			}
		}
	}

	e.result = res
	e.dirty = false
	observability.Editor().OnLayout(e.strategyName, len(nodes), time.Since(start))
	e.logger.Debug("layout pass", "strategy", e.strategyName, "nodes", len(nodes), "duration", time.Since(start))
	return res
}

// Layout returns the current layout result, recomputing it after any
// mutation since the last pass.
func (e *Editor) Layout() layout.Result {
	if e.dirty {
		return e.Relayout()
	}
	return e.result
}

// Edges returns the current connections with resolved handle references.
func (e *Editor) Edges() []layout.Edge {
	return e.Layout().Edges
}

// BeginDrag starts moving a node. Only one drag can be active at a time.
func (e *Editor) BeginDrag(id string) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeUnknownEquipment, "no equipment with id %q", id)
	}
	if e.drag != nil {
		return errors.New(errors.ErrCodeInvalidInput, "drag already in progress for %q", e.drag.id)
	}
	e.drag = &dragState{id: id, origin: n.Position}
	return nil
}

// DragTick computes the snapped position for one pointer movement without
// committing anything. The returned result carries the adjusted position and
// the snap lines to render.
func (e *Editor) DragTick(tentative equipment.Position) (snap.Result, error) {
	if e.drag == nil {
		return snap.Result{Position: tentative}, errors.New(errors.ErrCodeInvalidInput, "no drag in progress")
	}
	res := snap.Adjust(e.drag.id, tentative, e.snapContext())
	e.drag.lines = res.Lines
	if len(res.Lines) > 0 {
		observability.Editor().OnSnap(e.drag.id, len(res.Lines))
	}
	return res, nil
}

// SnapLines returns the guides from the most recent drag tick. Empty when no
// drag is active or the last tick produced no snap.
func (e *Editor) SnapLines() []snap.Line {
	if e.drag == nil {
		return nil
	}
	return e.drag.lines
}

// CancelDrag abandons the active drag. The node keeps its pre-drag position.
func (e *Editor) CancelDrag() {
	e.drag = nil
}

// EndDrag commits the drag at the given position after one final snap
// adjustment, pinning the node there. The committed position is returned.
func (e *Editor) EndDrag(tentative equipment.Position) (equipment.Position, error) {
	if e.drag == nil {
		return tentative, errors.New(errors.ErrCodeInvalidInput, "no drag in progress")
	}
	res := snap.Adjust(e.drag.id, tentative, e.snapContext())
	n, ok := e.graph.Node(e.drag.id)
	e.drag = nil
	if !ok {
		return tentative, errors.New(errors.ErrCodeUnknownEquipment, "dragged equipment no longer exists")
	}
	n.Position = res.Position
	e.logger.Debug("drag committed", "id", n.ID, "x", res.Position.X, "y", res.Position.Y)
	return res.Position, nil
}

// snapContext assembles the rendered node boxes and edge set the snap engine
// resolves handles against. The dragged node's stored position is irrelevant;
// the engine works from the tentative position passed per tick.
func (e *Editor) snapContext() snap.Context {
	boxes := make(map[string]snap.Box, e.graph.NodeCount())
	for _, n := range e.graph.Nodes() {
		boxes[n.ID] = snap.Box{Position: n.Position, Size: n.Size()}
	}
	return snap.Context{
		Nodes:      boxes,
		Edges:      e.Edges(),
		ThresholdX: e.snapX,
		ThresholdY: e.snapY,
	}
}
