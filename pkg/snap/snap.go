// Package snap adjusts a dragged node's tentative position so its connection
// handles line up with the handles on the other end of each edge.
//
// The engine is recomputed on every drag tick: it is a pure function of the
// dragged node's tentative position and the currently rendered node and edge
// set. When a pair of connected handle centers comes within the axis
// threshold, the tentative position is shifted so the handles align exactly
// and a snap line is emitted for visual feedback. Alignment accounts for the
// handle's offset within its node (including bus fan-out handles), not just
// node-to-node alignment.
//
// When several edges produce competing snaps on the same axis, the nearest
// one wins: the candidate needing the smallest correction. The engine never
// averages competing snaps.
package snap

import (
	"math"
	"strconv"
	"strings"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/layout"
)

// DefaultThreshold is the default snap distance in world units, applied to
// both axes unless overridden.
const DefaultThreshold = 20.0

// Box is the rendered geometry of one node.
type Box struct {
	Position equipment.Position
	Size     equipment.Size
}

// Context is the rendered state the engine resolves handles against.
type Context struct {
	Nodes map[string]Box
	Edges []layout.Edge

	// ThresholdX and ThresholdY are the maximum handle-center distances that
	// still snap, per axis. Zero means DefaultThreshold.
	ThresholdX float64
	ThresholdY float64
}

// Axis identifies a snap line orientation.
type Axis int

const (
	// AxisVertical is a vertical guide at a fixed x.
	AxisVertical Axis = iota
	// AxisHorizontal is a horizontal guide at a fixed y.
	AxisHorizontal
)

// Line is a transient alignment guide at Value on the given axis.
type Line struct {
	Axis  Axis
	Value float64
}

// Result is the adjusted position plus the active snap lines.
type Result struct {
	Position equipment.Position
	Lines    []Line
}

// Adjust computes the snapped position for one drag tick.
//
// For every edge touching draggedID it resolves the partner's handle center
// in world coordinates and the dragged node's own handle center at the
// tentative position; if they align within the axis threshold, the position
// is shifted so they align exactly. Axes snap independently. An unknown
// dragged ID returns the tentative position unchanged.
func Adjust(draggedID string, tentative equipment.Position, ctx Context) Result {
	res := Result{Position: tentative}
	dragged, ok := ctx.Nodes[draggedID]
	if !ok {
		return res
	}

	tx := ctx.ThresholdX
	if tx == 0 {
		tx = DefaultThreshold
	}
	ty := ctx.ThresholdY
	if ty == 0 {
		ty = DefaultThreshold
	}

	bestX := math.Inf(1)
	bestY := math.Inf(1)
	var lineX, lineY *Line

	for _, e := range ctx.Edges {
		var myRef, partnerRef, partnerID string
		switch draggedID {
		case e.Source:
			myRef, partnerRef, partnerID = e.SourceHandle, e.TargetHandle, e.Target
			if myRef == "" {
				myRef = "bottom"
			}
			if partnerRef == "" {
				partnerRef = "top"
			}
		case e.Target:
			myRef, partnerRef, partnerID = e.TargetHandle, e.SourceHandle, e.Source
			if myRef == "" {
				myRef = "top"
			}
			if partnerRef == "" {
				partnerRef = "bottom"
			}
		default:
			continue
		}

		partner, ok := ctx.Nodes[partnerID]
		if !ok {
			continue
		}

		partnerOff := handleOffset(partner.Size, partnerRef, countOnSide(ctx.Edges, partnerID, sideOf(partnerRef)))
		myOff := handleOffset(dragged.Size, myRef, countOnSide(ctx.Edges, draggedID, sideOf(myRef)))

		partnerX := partner.Position.X + partnerOff.X
		partnerY := partner.Position.Y + partnerOff.Y
		myX := tentative.X + myOff.X
		myY := tentative.Y + myOff.Y

		if dx := partnerX - myX; math.Abs(dx) <= tx && math.Abs(dx) < bestX {
			bestX = math.Abs(dx)
			res.Position.X = tentative.X + dx
			lineX = &Line{Axis: AxisVertical, Value: partnerX}
		}
		if dy := partnerY - myY; math.Abs(dy) <= ty && math.Abs(dy) < bestY {
			bestY = math.Abs(dy)
			res.Position.Y = tentative.Y + dy
			lineY = &Line{Axis: AxisHorizontal, Value: partnerY}
		}
	}

	if lineX != nil {
		res.Lines = append(res.Lines, *lineX)
	}
	if lineY != nil {
		res.Lines = append(res.Lines, *lineY)
	}
	return res
}

// sideOf extracts the side prefix of a handle reference ("top-2" → "top").
func sideOf(ref string) string {
	if i := strings.IndexByte(ref, '-'); i >= 0 {
		return ref[:i]
	}
	return ref
}

// countOnSide counts the edge attachments a node carries on one side, which
// is the n in the (k+1)/(n+1) fan-out distribution.
func countOnSide(edges []layout.Edge, nodeID, side string) int {
	count := 0
	for _, e := range edges {
		if e.Source == nodeID && sideOf(refOrDefault(e.SourceHandle, "bottom")) == side {
			count++
		}
		if e.Target == nodeID && sideOf(refOrDefault(e.TargetHandle, "top")) == side {
			count++
		}
	}
	return count
}

func refOrDefault(ref, def string) string {
	if ref == "" {
		return def
	}
	return ref
}

// handleOffset resolves a handle reference to an offset within the node.
// Indexed refs distribute as handle k of n at (k+1)/(n+1) along the side;
// plain refs sit at the side's midpoint.
func handleOffset(size equipment.Size, ref string, n int) equipment.Position {
	side := sideOf(ref)
	frac := 0.5
	if i := strings.IndexByte(ref, '-'); i >= 0 && n > 0 {
		if k, err := strconv.Atoi(ref[i+1:]); err == nil {
			frac = float64(k+1) / float64(n+1)
		}
	}

	switch side {
	case "top":
		return equipment.Position{X: frac * size.Width, Y: 0}
	case "bottom":
		return equipment.Position{X: frac * size.Width, Y: size.Height}
	case "left":
		return equipment.Position{X: 0, Y: frac * size.Height}
	default: // right
		return equipment.Position{X: size.Width, Y: frac * size.Height}
	}
}
