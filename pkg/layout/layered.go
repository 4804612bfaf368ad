package layout

import "github.com/gridsmith/oneline/pkg/equipment"

// Layered places nodes with topological leveling and centered-row packing.
//
// Levels are computed with a breadth-first topological sweep (Kahn's
// algorithm) over the source→load direction: level 0 is the in-degree-zero
// frontier, and a node advances to a level only once all of its sources have
// been leveled, so diamonds (shared buses) land below all their feeds. When
// no in-degree-zero node exists (a cycle with no clear root), an arbitrary
// single node seeds the sweep to guarantee progress. Nodes the sweep never
// reaches (pure cycles) are appended as singleton trailing levels in
// original order rather than run through a cycle-breaking heuristic.
//
// Rows are packed left to right with fixed spacing and centered under the
// container width. A node whose position is already pinned keeps it but still
// contributes its effective width, so siblings pack around the hole it
// occupies.
func Layered(nodes []Node, opts Options) Result {
	res := Result{Positions: make(map[string]equipment.Position, len(nodes))}
	if len(nodes) == 0 {
		return res
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		for _, loadID := range n.Loads {
			if _, ok := byID[loadID]; ok {
				inDegree[loadID]++
			}
		}
	}

	var frontier []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			frontier = append(frontier, n.ID)
		}
	}
	if len(frontier) == 0 {
		// Rootless cycle: seed with a single arbitrary node so the sweep
		// still makes progress.
		frontier = []string{nodes[0].ID}
	}

	leveled := make(map[string]bool, len(nodes))
	for len(frontier) > 0 {
		res.Levels = append(res.Levels, frontier)
		var next []string
		for _, id := range frontier {
			leveled[id] = true
			for _, loadID := range byID[id].Loads {
				if _, ok := byID[loadID]; !ok || leveled[loadID] {
					continue
				}
				inDegree[loadID]--
				if inDegree[loadID] == 0 {
					next = append(next, loadID)
				}
			}
		}
		frontier = next
	}

	// Pure cycles never reach in-degree zero; give up gracefully and append
	// them as singleton rows in original order.
	for _, n := range nodes {
		if !leveled[n.ID] {
			res.Levels = append(res.Levels, []string{n.ID})
			leveled[n.ID] = true
		}
	}

	for levelIdx, level := range res.Levels {
		y := opts.Margin + float64(levelIdx)*opts.VerticalSpacing

		total := 0.0
		for i, id := range level {
			if i > 0 {
				total += opts.HorizontalSpacing
			}
			total += effectiveWidth(byID[id], opts)
		}

		x := (opts.ContainerWidth - total) / 2
		if x < opts.Margin {
			x = opts.Margin
		}

		for _, id := range level {
			n := byID[id]
			eff := effectiveWidth(n, opts)
			if n.Position.IsZero() {
				res.Positions[id] = equipment.Position{X: x + (eff-n.Size.Width)/2, Y: y}
			} else {
				// User-placed nodes are never moved; they only reserve room.
				res.Positions[id] = n.Position
			}
			x += eff + opts.HorizontalSpacing
		}
	}

	res.Edges = InferEdges(nodes)
	return res
}
