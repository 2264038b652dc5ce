package layout

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/html/tree"
)

// HitTest returns the element painted last at the document point (x, y),
// or tree.NoNode. Fixed positioned elements are tested against the viewport
// point (clientX, clientY) instead.
// Text nodes are never returned: the element containing them is.
func (l *Layout) HitTest(t *tree.Tree, x, y, clientX, clientY Fl) tree.NodeID {
	found := tree.NoNode
	// padding boxes of the overflow clips around the current node
	var clips []backend.Rect
	clipped := make(map[tree.NodeID]bool)
	inside := func(px, py Fl) bool {
		for _, r := range clips {
			if !r.Contains(px, py) {
				return false
			}
		}
		return true
	}
	w := walker{
		t: t,
		enter: func(id tree.NodeID, pos backend.Rect, fixed bool) {
			n := &t.Nodes[id]
			if n.IsText() {
				return
			}
			px, py := x, y
			if fixed {
				px, py = clientX, clientY
			}
			if !n.Style.Hidden && inside(px, py) {
				for _, r := range fragments(n, pos) {
					if r.Contains(px, py) {
						found = id
						break
					}
				}
			}
			if clipsOverflow(n) {
				clips = append(clips, paddingBox(n, pos))
				clipped[id] = true
			}
		},
		leave: func(id tree.NodeID) {
			if clipped[id] {
				clips = clips[:len(clips)-1]
			}
		},
		pushClip: func(id tree.NodeID, pos backend.Rect) {
			clips = append(clips, paddingBox(&t.Nodes[id], pos))
		},
		popClip: func(tree.NodeID) { clips = clips[:len(clips)-1] },
	}
	w.run()
	return found
}
