package layout

import "github.com/gridsmith/oneline/pkg/equipment"

// maxSlides bounds the collision search so a degenerate input cannot spin.
const maxSlides = 10000

// Relative places nodes next to an already-placed parent or child instead of
// computing global levels.
//
// The walk starts from any pinned (user-placed) node, or places the first
// node at the margin when nothing is pinned. It then repeatedly looks for an
// unplaced node with a placed child (parent goes directly above, offset by
// node height plus spacing) or a placed parent (child goes directly below).
// Every placement runs a local collision search that slides the candidate
// right in fixed steps until its bounding box clears all placed nodes.
//
// Nodes still unreachable after more passes than there are nodes (detached
// fragments with no placed neighbor) drop into a simple fallback row below
// everything else. The strategy trades guaranteed layering for locality:
// children stay near their specific parent, and partially-pinned diagrams
// keep their shape.
func Relative(nodes []Node, opts Options) Result {
	res := Result{Positions: make(map[string]equipment.Position, len(nodes))}
	if len(nodes) == 0 {
		return res
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	placed := make(map[string]equipment.Position, len(nodes))
	for _, n := range nodes {
		if !n.Position.IsZero() {
			placed[n.ID] = n.Position
		}
	}
	if len(placed) == 0 {
		first := nodes[0]
		placed[first.ID] = equipment.Position{X: opts.Margin, Y: opts.Margin}
	}

	for pass := 0; pass <= len(nodes); pass++ {
		progress := false
		for _, n := range nodes {
			if _, done := placed[n.ID]; done {
				continue
			}
			if pos, ok := placeNextTo(n, byID, placed, opts); ok {
				placed[n.ID] = pos
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	// Fallback row for nodes with no placed neighbor.
	bottom := opts.Margin
	for id, pos := range placed {
		if b := pos.Y + byID[id].Size.Height; b > bottom {
			bottom = b
		}
	}
	x := opts.Margin
	for _, n := range nodes {
		if _, done := placed[n.ID]; done {
			continue
		}
		placed[n.ID] = equipment.Position{X: x, Y: bottom + opts.VerticalSpacing}
		x += effectiveWidth(n, opts) + opts.HorizontalSpacing
	}

	res.Positions = placed
	res.Edges = InferEdges(nodes)
	return res
}

// placeNextTo finds a placed child or parent of n and returns a
// collision-free position next to it.
func placeNextTo(n Node, byID map[string]Node, placed map[string]equipment.Position, opts Options) (equipment.Position, bool) {
	for _, loadID := range n.Loads {
		if childPos, ok := placed[loadID]; ok {
			candidate := equipment.Position{
				X: childPos.X,
				Y: childPos.Y - n.Size.Height - opts.VerticalSpacing,
			}
			return slideClear(candidate, n.Size, byID, placed, opts), true
		}
	}
	for _, sourceID := range n.Sources {
		if parentPos, ok := placed[sourceID]; ok {
			parent := byID[sourceID]
			candidate := equipment.Position{
				X: parentPos.X,
				Y: parentPos.Y + parent.Size.Height + opts.VerticalSpacing,
			}
			return slideClear(candidate, n.Size, byID, placed, opts), true
		}
	}
	return equipment.Position{}, false
}

// slideClear moves the candidate right in fixed steps until it overlaps no
// placed node.
func slideClear(pos equipment.Position, size equipment.Size, byID map[string]Node, placed map[string]equipment.Position, opts Options) equipment.Position {
	for i := 0; i < maxSlides; i++ {
		if !collides(pos, size, byID, placed) {
			break
		}
		pos.X += opts.SlideStep
	}
	return pos
}

func collides(pos equipment.Position, size equipment.Size, byID map[string]Node, placed map[string]equipment.Position) bool {
	for id, other := range placed {
		os := byID[id].Size
		if pos.X < other.X+os.Width && other.X < pos.X+size.Width &&
			pos.Y < other.Y+os.Height && other.Y < pos.Y+size.Height {
			return true
		}
	}
	return false
}
