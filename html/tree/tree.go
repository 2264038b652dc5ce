// Package tree builds the element arena of a document from its markup,
// discovers its stylesheets, and computes the style of each node.
//
// Nodes are stored in a slice and referenced by index: an index is never
// reused, and removed nodes stay in the arena, flagged as such, so that an
// outdated reference can be detected.
package tree

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Fl = utils.Fl

//go:embed ua.css
var uaStylesheet string

// NodeID is the index of a node in the arena.
type NodeID int32

// NoNode is returned when there is no node (parent of the root, missing child).
const NoNode NodeID = -1

type Kind uint8

const (
	ElementNode Kind = iota
	// TextNode is a word: text without whitespace.
	TextNode
	// SpaceNode is a run of spaces or tabs.
	SpaceNode
	// LineBreakNode is a newline, only significant in preformatted text.
	LineBreakNode
)

type Node struct {
	Kind     Kind
	Tag      string // lower case, empty for text nodes
	Text     string // for text nodes
	Parent   NodeID
	Children []NodeID
	// Source is the parsed element, nil for text nodes.
	Source *html.Node
	// Style is the computed style. Text nodes share the style of their parent.
	Style *Style
	Box   Box
	// Removed is set when the node is detached from the tree.
	Removed bool
}

// Attr returns the value of the attribute `name`, or an empty string.
func (n *Node) Attr(name string) string {
	if n.Source == nil {
		return ""
	}
	for _, a := range n.Source.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasAttr returns true if the attribute `name` is present.
func (n *Node) HasAttr(name string) bool {
	if n.Source == nil {
		return false
	}
	for _, a := range n.Source.Attr {
		if a.Namespace == "" && a.Key == name {
			return true
		}
	}
	return false
}

// IsText returns true for words, spaces and line breaks.
func (n *Node) IsText() bool { return n.Kind != ElementNode }

// Tree is a parsed document.
type Tree struct {
	Nodes   []Node
	Root    NodeID
	Title   string
	BaseURL string
	Fonts   *Fonts
	// Media is the value used to evaluate @media rules during the last style computation.
	Media backend.MediaFeatures

	sheets  []*css.Stylesheet
	hovered NodeID
	active  NodeID
}

// New parses `markup` and resolves its stylesheets through `c`:
// the caption, base URL and links are reported, and every <link rel=stylesheet>
// and @import is fetched with ImportCSS.
// If `masterCSS` is empty, the default user agent stylesheet is used.
// Styles are not computed: see ComputeStyles.
func New(markup string, c backend.Container, masterCSS, userCSS string) (*Tree, error) {
	logger.ProgressLogger.Println("Step 1 - Parsing HTML")
	doc, err := html.ParseWithOptions(strings.NewReader(markup), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("invalid html input: %w", err)
	}
	root := doc.FirstChild
	for root != nil && root.Type != html.ElementNode {
		root = root.NextSibling
	}
	if root == nil {
		return nil, errors.New("invalid html input: missing root element")
	}

	t := &Tree{Fonts: NewFonts(), hovered: NoNode, active: NoNode}

	logger.ProgressLogger.Println("Step 2 - Fetching stylesheets")
	if masterCSS == "" {
		masterCSS = uaStylesheet
	}
	t.addSheet(css.Parse(masterCSS, "", css.UserAgent, nil, nil))
	if userCSS != "" {
		t.addSheet(css.Parse(userCSS, "", css.User, nil, c.ImportCSS))
	}
	if err := t.discover(doc, c); err != nil {
		return nil, err
	}

	t.Root = t.build(root, NoNode)
	t.Media = c.GetMediaFeatures()
	return t, nil
}

// discover reports the caption, base URL and links of the document,
// and loads its stylesheets, in document order.
func (t *Tree) discover(doc *html.Node, c backend.Container) error {
	if title := htmlquery.FindOne(doc, "//head/title"); title != nil {
		t.Title = strings.Join(strings.Fields(htmlquery.InnerText(title)), " ")
		c.SetCaption(t.Title)
	}
	if base := htmlquery.FindOne(doc, "//base[@href]"); base != nil {
		t.BaseURL = htmlquery.SelectAttr(base, "href")
		c.SetBaseURL(t.BaseURL)
	}

	sources, err := htmlquery.QueryAll(doc, "//*[self::style or (self::link and @rel)]")
	if err != nil {
		return fmt.Errorf("stylesheet discovery: %w", err)
	}
	for _, node := range sources {
		media := css.ParseMediaList(htmlquery.SelectAttr(node, "media"))
		if node.DataAtom == atom.Style {
			t.addSheet(css.Parse(htmlquery.InnerText(node), t.BaseURL, css.Author, media, c.ImportCSS))
			continue
		}
		rel, href := htmlquery.SelectAttr(node, "rel"), htmlquery.SelectAttr(node, "href")
		c.Link(rel, href)
		if !hasToken(rel, "stylesheet") || hasToken(rel, "alternate") || href == "" {
			continue
		}
		content, base := c.ImportCSS(href, t.BaseURL)
		if base == "" {
			base = utils.ResolveURL(t.BaseURL, href)
		}
		t.addSheet(css.Parse(content, base, css.Author, media, c.ImportCSS))
	}
	return nil
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if utils.AsciiLower(f) == token {
			return true
		}
	}
	return false
}

func (t *Tree) addSheet(s *css.Stylesheet) { t.sheets = append(t.sheets, s) }

// AddStylesheet parses an author stylesheet and adds it after the existing ones.
// `media` is an optional media query list restricting it.
// Styles must then be computed again.
func (t *Tree) AddStylesheet(text, baseURL, media string, c backend.Container) {
	var ml css.MediaList
	if strings.TrimSpace(media) != "" {
		ml = css.ParseMediaList(media)
	}
	t.addSheet(css.Parse(text, baseURL, css.Author, ml, c.ImportCSS))
}

// HasDynamicRules returns true if a stylesheet uses :hover or :active.
func (t *Tree) HasDynamicRules() bool {
	for _, s := range t.sheets {
		if s.HasDynamic {
			return true
		}
	}
	return false
}

// rawText elements have no rendered text content
var rawText = utils.NewSet("style", "script", "title", "template", "noscript")

// build appends `node` and its descendants to the arena.
func (t *Tree) build(node *html.Node, parent NodeID) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{Kind: ElementNode, Tag: utils.AsciiLower(node.Data), Parent: parent, Source: node})
	t.buildChildren(id, node.FirstChild)
	return id
}

func (t *Tree) buildChildren(id NodeID, first *html.Node) {
	skipText := rawText.Has(t.Nodes[id].Tag)
	for child := first; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			childID := t.build(child, id)
			t.Nodes[id].Children = append(t.Nodes[id].Children, childID)
		case html.TextNode:
			if !skipText {
				t.appendText(id, child.Data)
			}
		}
	}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\f' }

// appendText splits `text` in words, spaces and line breaks.
func (t *Tree) appendText(parent NodeID, text string) {
	add := func(kind Kind, s string) {
		id := NodeID(len(t.Nodes))
		t.Nodes = append(t.Nodes, Node{Kind: kind, Text: s, Parent: parent})
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	}
	start := 0
	current := Kind(0)
	flush := func(end int) {
		if end > start {
			add(current, text[start:end])
		}
		start = end
	}
	for i, r := range text {
		var kind Kind
		switch {
		case r == '\n':
			flush(i)
			add(LineBreakNode, "\n")
			start = i + 1
			current = 0
			continue
		case isSpace(r):
			kind = SpaceNode
		default:
			kind = TextNode
		}
		if kind != current {
			flush(i)
			current = kind
		}
	}
	flush(len(text))
}

// Node returns the node `id`, or nil if it is out of the arena or removed.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) || t.Nodes[id].Removed {
		return nil
	}
	return &t.Nodes[id]
}

// AppendChildren parses `markup` as a fragment in the context of `parent`
// and appends the resulting nodes to it. If `replace` is true, the existing
// children are removed first.
// Styles must then be computed again.
func (t *Tree) AppendChildren(parent NodeID, markup string, replace bool) error {
	p := t.Node(parent)
	if p == nil || p.Kind != ElementNode {
		return fmt.Errorf("invalid parent node %d", parent)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), p.Source)
	if err != nil {
		return fmt.Errorf("invalid html fragment: %w", err)
	}
	if replace {
		for _, child := range p.Children {
			t.remove(child)
		}
		p.Children = nil
		for c := p.Source.FirstChild; c != nil; c = p.Source.FirstChild {
			p.Source.RemoveChild(c)
		}
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		p.Source.AppendChild(n)
	}
	if len(nodes) != 0 {
		// p may be invalidated by the arena growth
		t.buildChildren(parent, nodes[0])
	}
	return nil
}

// remove flags `id` and its descendants as removed.
func (t *Tree) remove(id NodeID) {
	n := &t.Nodes[id]
	n.Removed = true
	if t.hovered == id {
		t.hovered = NoNode
	}
	if t.active == id {
		t.active = NoNode
	}
	for _, child := range n.Children {
		t.remove(child)
	}
}

// Text returns the concatenation of the text of `id` and its descendants.
func (t *Tree) Text(id NodeID) string {
	var b strings.Builder
	t.writeText(&b, id)
	return b.String()
}

func (t *Tree) writeText(b *strings.Builder, id NodeID) {
	n := &t.Nodes[id]
	if n.IsText() {
		b.WriteString(n.Text)
		return
	}
	for _, child := range n.Children {
		t.writeText(b, child)
	}
}

// Release deletes the fonts created for the tree. The tree must not be used afterwards.
func (t *Tree) Release(c backend.Container) {
	t.Fonts.Release(c)
	t.Nodes = nil
	t.sheets = nil
	t.Root = NoNode
}
