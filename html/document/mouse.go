package document

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/html/tree"
)

// OnMouseOver updates the hovered element after a mouse move to the
// document point (x, y), or the viewport point (clientX, clientY) for fixed
// elements. It returns true if the document must be repainted.
func (d *Document) OnMouseOver(x, y, clientX, clientY Fl) bool {
	if !d.enter("OnMouseOver") {
		return false
	}
	defer d.leave()
	over := d.hitTest(x, y, clientX, clientY)
	redraw := d.setHover(over)
	d.c.SetCursor(d.cursor(over))
	return redraw
}

// OnLButtonDown records the element being clicked.
// It returns true if the document must be repainted.
func (d *Document) OnLButtonDown(x, y, clientX, clientY Fl) bool {
	if !d.enter("OnLButtonDown") {
		return false
	}
	defer d.leave()
	over := d.hitTest(x, y, clientX, clientY)
	d.pressed = over
	changed := d.tree.SetHover(over)
	if d.tree.SetActive(over) {
		changed = true
	}
	return changed && d.restyle()
}

// OnLButtonUp completes a click: when the button is released over the link
// it was pressed on, the host is notified with OnAnchorClick.
// It returns true if the document must be repainted.
func (d *Document) OnLButtonUp(x, y, clientX, clientY Fl) bool {
	if !d.enter("OnLButtonUp") {
		return false
	}
	defer d.leave()
	over := d.hitTest(x, y, clientX, clientY)
	if link := d.link(over); link != tree.NoNode && link == d.link(d.pressed) {
		d.c.OnAnchorClick(d.tree.Nodes[link].Attr("href"))
	}
	d.pressed = tree.NoNode
	if !d.tree.SetActive(tree.NoNode) {
		return false
	}
	return d.restyle()
}

// OnMouseLeave clears the hovered and active elements.
// It returns true if the document must be repainted.
func (d *Document) OnMouseLeave() bool {
	if !d.enter("OnMouseLeave") {
		return false
	}
	defer d.leave()
	d.pressed = tree.NoNode
	changed := d.tree.SetActive(tree.NoNode)
	if d.setHover(tree.NoNode) {
		changed = true
	}
	d.c.SetCursor("auto")
	return changed
}

func (d *Document) hitTest(x, y, clientX, clientY Fl) tree.NodeID {
	if d.state != LaidOut && d.state != AwaitingResources {
		return tree.NoNode
	}
	return d.layout.HitTest(d.tree, x, y, clientX, clientY)
}

// setHover moves the hover state to `over`, notifying the host,
// and returns true if a repaint is needed.
func (d *Document) setHover(over tree.NodeID) bool {
	old := d.tree.Hovered()
	if !d.tree.SetHover(over) {
		return false
	}
	if old != tree.NoNode {
		d.c.OnMouseEvent(backend.MouseLeave)
	}
	if over != tree.NoNode {
		d.c.OnMouseEvent(backend.MouseEnter)
	}
	return d.restyle()
}

// restyle computes the styles again when the stylesheets have
// :hover or :active rules, and lays out the document if a style changed.
// It returns true when a repaint is needed.
func (d *Document) restyle() bool {
	if !d.tree.HasDynamicRules() {
		return false
	}
	if !d.tree.ComputeStyles(d.c) {
		return false
	}
	if d.hasMaxWidth && (d.state == LaidOut || d.state == AwaitingResources) {
		d.render()
	}
	return true
}

func (d *Document) cursor(id tree.NodeID) string {
	if n := d.tree.Node(id); n != nil && n.Style != nil && n.Style.Cursor != "" {
		return n.Style.Cursor
	}
	return "auto"
}

// link returns the nearest <a href> ancestor of `id` (included), or NoNode.
func (d *Document) link(id tree.NodeID) tree.NodeID {
	for n := d.tree.Node(id); n != nil; n = d.tree.Node(id) {
		if n.Tag == "a" && n.HasAttr("href") {
			return id
		}
		id = n.Parent
	}
	return tree.NoNode
}
