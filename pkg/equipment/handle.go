package equipment

import "github.com/google/uuid"

// Handle management keeps each node's attachment points geometrically sane:
// whenever a handle is added to a side, all handles sharing that side are
// redistributed so that handle k of n (1-indexed) sits at 100*k/(n+1) percent.
// A node gaining its first connection on a side therefore gets a single
// handle centered at 50%.

// AddHandle upserts a handle by ID and redistributes all handles on the same
// side to uniform spacing.
func (n *Node) AddHandle(h Handle) {
	for i := range n.handles {
		if n.handles[i].ID == h.ID {
			n.handles[i] = h
			n.redistributeSide(h.Side)
			return
		}
	}
	n.handles = append(n.handles, h)
	n.redistributeSide(h.Side)
}

// RemoveHandle deletes the handle with the given ID and reports whether it
// existed. The remaining handles on that side keep their positions until the
// next addition redistributes them.
func (n *Node) RemoveHandle(id string) bool {
	for i := range n.handles {
		if n.handles[i].ID == id {
			n.handles = append(n.handles[:i], n.handles[i+1:]...)
			return true
		}
	}
	return false
}

// Handles returns the node's handles in insertion order. The slice is a copy.
func (n *Node) Handles() []Handle {
	out := make([]Handle, len(n.handles))
	copy(out, n.handles)
	return out
}

// HandlesOn returns the node's handles on the given side, in insertion order.
func (n *Node) HandlesOn(side Side) []Handle {
	var out []Handle
	for _, h := range n.handles {
		if h.Side == side {
			out = append(out, h)
		}
	}
	return out
}

// redistributeSide spaces all handles on side evenly along it.
func (n *Node) redistributeSide(side Side) {
	count := 0
	for i := range n.handles {
		if n.handles[i].Side == side {
			count++
		}
	}
	if count == 0 {
		return
	}
	k := 0
	for i := range n.handles {
		if n.handles[i].Side == side {
			k++
			n.handles[i].PositionPercent = 100 * float64(k) / float64(count+1)
		}
	}
}

// RestoreHandles replaces the node's handles verbatim, without
// redistribution. Used by deserialization to reproduce persisted attachment
// points exactly, including any gaps left by earlier removals.
func (n *Node) RestoreHandles(hs []Handle) {
	n.handles = make([]Handle, len(hs))
	copy(n.handles, hs)
}

// removeHandlesFor deletes every handle referencing the partner equipment.
// Used when an edge is severed; does not redistribute (see RemoveHandle).
func (n *Node) removeHandlesFor(partnerID string) {
	kept := n.handles[:0]
	for _, h := range n.handles {
		if h.ConnectedTo != partnerID {
			kept = append(kept, h)
		}
	}
	n.handles = kept
}

// newHandleID generates a unique handle identifier.
func newHandleID() string { return uuid.NewString() }
