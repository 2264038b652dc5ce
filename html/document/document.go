// Package document drives the lifecycle of an HTML document rendered
// through a host capability table: parsing, layout, resource requests,
// painting and mouse interaction.
//
// A Document is single threaded. Resources requested by a layout are
// recorded in a pending queue, which the host drains, fetches, and feeds
// back before rendering again (see package loop).
package document

import (
	"errors"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/html/layout"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
)

type Fl = utils.Fl

var (
	ErrNoMarkup = errors.New("document: empty markup")
	ErrNoTable  = errors.New("document: missing capability table")
)

// State is the position of a document in its lifecycle.
type State uint8

const (
	Unparsed State = iota
	// Parsed documents have computed styles, but no layout.
	Parsed
	// LaidOut documents may be drawn.
	LaidOut
	// AwaitingResources documents may be drawn, but the last layout
	// requested images which are not yet available.
	AwaitingResources
	Destroyed
)

var stateNames = [...]string{"unparsed", "parsed", "laid out", "awaiting resources", "destroyed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "<invalid State>"
}

// PendingResource is an image requested by a layout pass.
type PendingResource struct {
	Src     string
	BaseURL string
	// RedrawOnly is true when the size of the image does not affect the layout:
	// background images, or <img> elements with both dimensions set.
	RedrawOnly bool
}

// container records the images requested by the engine before
// forwarding them to the host.
type container struct {
	*bridge.Bridge
	doc *Document
}

func (c container) LoadImage(src, baseURL string, redrawOnReady bool) {
	c.doc.pending = append(c.doc.pending, PendingResource{Src: src, BaseURL: baseURL, RedrawOnly: redrawOnReady})
	c.Bridge.LoadImage(src, baseURL, redrawOnReady)
}

// Document is a parsed HTML document bound to a host capability table.
type Document struct {
	bridge *bridge.Bridge
	c      container
	tree   *tree.Tree
	layout *layout.Layout

	state   State
	pending []PendingResource
	// gen is bumped on Destroy, invalidating every Element
	gen  uint32
	busy bool

	// last requested width, used to lay out again after interaction
	maxWidth    Fl
	hasMaxWidth bool
	width       Fl
	height      Fl

	pressed tree.NodeID
}

// NewFromString parses `markup` and computes its styles. The host is called
// synchronously for the stylesheets (ImportCSS), the title (SetCaption) and
// the <base> element (SetBaseURL).
// If `masterCSS` is empty, the default user agent stylesheet is used;
// `userCSS` is applied after the document stylesheets.
func NewFromString(markup string, table *bridge.Table, masterCSS, userCSS string) (*Document, error) {
	if markup == "" {
		return nil, ErrNoMarkup
	}
	b := bridge.New(table)
	if b == nil {
		return nil, ErrNoTable
	}
	doc := &Document{bridge: b, layout: layout.New(), pressed: tree.NoNode}
	doc.c = container{Bridge: b, doc: doc}

	t, err := tree.New(markup, doc.c, masterCSS, userCSS)
	if err != nil {
		b.Close()
		return nil, err
	}
	doc.tree = t
	t.ComputeStyles(doc.c)
	doc.state = Parsed
	return doc, nil
}

// enter marks the document busy for the operation `op`. It returns false,
// with a warning, if the document is destroyed or already busy, which
// happens when a host callback calls back into the document.
func (d *Document) enter(op string) bool {
	if d.state == Destroyed {
		logger.WarningLogger.Printf("%s called on a destroyed document: ignored", op)
		return false
	}
	if d.busy {
		logger.WarningLogger.Printf("%s called from a host callback: ignored", op)
		return false
	}
	d.busy = true
	return true
}

func (d *Document) leave() { d.busy = false }

// State returns the current lifecycle state.
func (d *Document) State() State { return d.state }

// Render lays out the document in a containing block of width `maxWidth`,
// and returns the height of its content.
// Images whose size is unknown are requested (once per image) and queued
// in the pending list.
func (d *Document) Render(maxWidth Fl) Fl {
	if !d.enter("Render") {
		return 0
	}
	defer d.leave()
	d.maxWidth, d.hasMaxWidth = maxWidth, true
	d.render()
	return d.height
}

func (d *Document) render() {
	d.height = d.layout.Render(d.tree, d.c, d.maxWidth)
	d.width = d.layout.Width
	if len(d.pending) != 0 {
		d.state = AwaitingResources
	} else {
		d.state = LaidOut
	}
}

// DrainPending returns the images requested since the last call, and
// clears the queue.
func (d *Document) DrainPending() []PendingResource {
	out := d.pending
	d.pending = nil
	return out
}

// PendingCount returns the number of queued image requests.
func (d *Document) PendingCount() int { return len(d.pending) }

// Draw paints the document on `s`, with its origin at (x, y).
// When `clip` is not nil, only the boxes intersecting it are painted.
// The document must have been rendered.
func (d *Document) Draw(s bridge.Surface, x, y Fl, clip *bridge.Position) {
	if d.state != LaidOut && d.state != AwaitingResources {
		logger.WarningLogger.Printf("Draw called on a %s document: ignored", d.state)
		return
	}
	if !d.enter("Draw") {
		return
	}
	defer d.leave()
	var c *backend.Rect
	if clip != nil {
		r := bridge.FromPosition(*clip)
		c = &r
	}
	d.layout.Draw(d.tree, d.c, s, x, y, c)
}

// Width returns the width of the content after the last Render.
func (d *Document) Width() Fl { return d.width }

// Height returns the height of the content after the last Render.
func (d *Document) Height() Fl { return d.height }

// AddStylesheet parses `cssText` and applies it after the existing stylesheets.
// `media` is an optional media query list. A new Render is required.
func (d *Document) AddStylesheet(cssText, baseURL, media string) {
	if !d.enter("AddStylesheet") {
		return
	}
	defer d.leave()
	d.tree.AddStylesheet(cssText, baseURL, media, d.c)
	d.tree.ComputeStyles(d.c)
	d.state = Parsed
}

// AppendChildrenFromString parses `html` as a fragment in the context of
// `parent` and appends the resulting nodes. When `replaceExisting` is true,
// the current children are removed first, and the views on them become stale.
// A new Render is required.
func (d *Document) AppendChildrenFromString(parent Element, html string, replaceExisting bool) error {
	if !d.enter("AppendChildrenFromString") {
		return nil
	}
	defer d.leave()
	if parent.doc != d || parent.node() == nil {
		return errors.New("document: invalid parent element")
	}
	if err := d.tree.AppendChildren(parent.id, html, replaceExisting); err != nil {
		return err
	}
	d.tree.ComputeStyles(d.c)
	d.state = Parsed
	return nil
}

// MediaChanged reads the media features from the host again, and recomputes
// the styles if the result of a media query changed. It returns true when
// the styles changed: a new Render is then required.
func (d *Document) MediaChanged() bool {
	if !d.enter("MediaChanged") {
		return false
	}
	defer d.leave()
	if !d.tree.UpdateMedia(d.c.GetMediaFeatures()) {
		return false
	}
	d.tree.ComputeStyles(d.c)
	d.state = Parsed
	return true
}

// Root returns the root element, or an invalid element.
func (d *Document) Root() Element {
	if d.state == Destroyed {
		return Element{}
	}
	return d.element(d.tree.Root)
}

// ElementAt returns the element painted last at the document point (x, y),
// fixed positioned elements being tested against (clientX, clientY).
// The returned element is invalid if there is none, or before the first Render.
func (d *Document) ElementAt(x, y, clientX, clientY Fl) Element {
	if d.state != LaidOut && d.state != AwaitingResources {
		return Element{}
	}
	return d.element(d.layout.HitTest(d.tree, x, y, clientX, clientY))
}

func (d *Document) element(id tree.NodeID) Element {
	if d.tree.Node(id) == nil {
		return Element{}
	}
	return Element{doc: d, id: id, gen: d.gen}
}

// Destroy deletes the fonts created for the document and releases the
// host table: no callback is made afterwards, and every Element becomes
// stale. It is safe to call Destroy more than once.
func (d *Document) Destroy() {
	if d.state == Destroyed {
		return
	}
	if d.busy {
		logger.WarningLogger.Println("Destroy called from a host callback: ignored")
		return
	}
	d.tree.Release(d.c)
	d.bridge.Close()
	d.gen++
	d.state = Destroyed
	d.pending = nil
	d.pressed = tree.NoNode
}
