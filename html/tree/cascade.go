package tree

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/andybalholm/cascadia"
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
)

// weight orders the declarations applying to one element.
type weight struct {
	precedence  int
	inline      bool
	specificity cascadia.Specificity
	sheet       int // -1 for presentational hints
	order       int
}

func (w weight) less(o weight) bool {
	if w.precedence != o.precedence {
		return w.precedence < o.precedence
	}
	if w.inline != o.inline {
		return !w.inline
	}
	if w.specificity != o.specificity {
		return w.specificity.Less(o.specificity)
	}
	if w.sheet != o.sheet {
		return w.sheet < o.sheet
	}
	return w.order < o.order
}

type matched struct {
	css.Declaration
	weight  weight
	baseURL string
}

// ComputeStyles runs the cascade on every node of the tree, with the current
// media features, hovered and active elements.
// It returns true if at least one computed style changed.
func (t *Tree) ComputeStyles(c backend.Container) bool {
	logger.ProgressLogger.Println("Step 3 - Computing styles")
	if t.Node(t.Root) == nil {
		return false
	}
	hover, active := t.stateChain(t.hovered), t.stateChain(t.active)
	var rootStyle *Style
	changed := false
	var visit func(id NodeID, parent *Style, parentSpec map[string]specified)
	visit = func(id NodeID, parent *Style, parentSpec map[string]specified) {
		n := &t.Nodes[id]
		if n.IsText() {
			n.Style = parent
			return
		}
		var state css.PseudoState
		if hover.Has(id) {
			state |= css.Hover
		}
		if active.Has(id) {
			state |= css.Active
		}
		spec := t.cascade(n, state, parentSpec)
		sc := styleComputer{
			c: c, fonts: t.Fonts, parent: parent, root: rootStyle,
			spec: spec, element: n.Tag, media: t.Media,
		}
		style := sc.compute()
		if rootStyle == nil {
			rootStyle = style
		}
		if !changed && (n.Style == nil || !reflect.DeepEqual(n.Style, style)) {
			changed = true
		}
		n.Style = style
		for _, child := range n.Children {
			visit(child, style, spec)
		}
	}
	visit(t.Root, nil, nil)
	return changed
}

type nodeSet map[NodeID]bool

func (s nodeSet) Has(id NodeID) bool { return s[id] }

// stateChain returns `id` and its ancestors.
func (t *Tree) stateChain(id NodeID) nodeSet {
	out := nodeSet{}
	for n := t.Node(id); n != nil; n = t.Node(id) {
		out[id] = true
		id = n.Parent
	}
	return out
}

// cascade returns the specified values of `n`.
func (t *Tree) cascade(n *Node, state css.PseudoState, parentSpec map[string]specified) map[string]specified {
	var decls []matched
	for _, d := range presentationalHints(n) {
		decls = append(decls, matched{Declaration: d, weight: weight{precedence: css.Author.Precedence(false), sheet: -1}})
	}
	for i, sheet := range t.sheets {
		for _, rule := range sheet.Rules {
			if rule.State&^state != 0 || !rule.MatchesMedia(t.Media) || !rule.Selector.Match(n.Source) {
				continue
			}
			for _, d := range rule.Declarations {
				decls = append(decls, matched{
					Declaration: d,
					weight:      weight{precedence: sheet.Origin.Precedence(d.Important), specificity: rule.Specificity, sheet: i, order: rule.Order},
					baseURL:     sheet.BaseURL,
				})
			}
		}
	}
	if style := n.Attr("style"); style != "" {
		for i, d := range css.ParseInline(style) {
			decls = append(decls, matched{
				Declaration: d,
				weight:      weight{precedence: css.Author.Precedence(d.Important), inline: true, order: i},
				baseURL:     t.BaseURL,
			})
		}
	}
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].weight.less(decls[j].weight) })

	spec := make(map[string]specified)
	for name, v := range parentSpec {
		if inherited.Has(name) {
			spec[name] = v
		}
	}
	for _, d := range decls {
		for _, long := range expand(d.Declaration, n.Tag) {
			switch utils.AsciiLower(long.Value) {
			case "inherit":
				if v, ok := parentSpec[long.Name]; ok {
					spec[long.Name] = v
				} else {
					delete(spec, long.Name)
				}
			case "unset":
				if v, ok := parentSpec[long.Name]; ok && inherited.Has(long.Name) {
					spec[long.Name] = v
				} else {
					delete(spec, long.Name)
				}
			case "initial", "revert":
				delete(spec, long.Name)
			default:
				spec[long.Name] = specified{value: long.Value, baseURL: d.baseURL}
			}
		}
	}
	return spec
}

// presentationalHints converts the legacy styling attributes.
func presentationalHints(n *Node) []css.Declaration {
	var out []css.Declaration
	dimension := func(attr, property string) {
		v := n.Attr(attr)
		if v == "" {
			return
		}
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			out = append(out, css.Declaration{Name: property, Value: strconv.FormatFloat(f, 'f', -1, 32) + "px"})
		} else if l, ok := css.ParseLength(v); ok && l.Unit == css.UnitPercent {
			out = append(out, css.Declaration{Name: property, Value: v})
		}
	}
	switch n.Tag {
	case "img", "table", "td", "th", "hr", "iframe", "canvas", "video":
		dimension("width", "width")
		dimension("height", "height")
	}
	if bg := n.Attr("bgcolor"); bg != "" {
		out = append(out, css.Declaration{Name: "background-color", Value: bg})
	}
	if n.Tag == "font" {
		if color := n.Attr("color"); color != "" {
			out = append(out, css.Declaration{Name: "color", Value: color})
		}
		if face := n.Attr("face"); face != "" {
			out = append(out, css.Declaration{Name: "font-family", Value: face})
		}
	}
	if align := utils.AsciiLower(n.Attr("align")); align != "" {
		switch n.Tag {
		case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th":
			out = append(out, css.Declaration{Name: "text-align", Value: align})
		}
	}
	if n.Tag == "img" && n.Attr("border") != "" {
		dimension("border", "border-width")
		out = append(out, css.Declaration{Name: "border-style", Value: "solid"})
	}
	return out
}

// Hovered returns the element under the mouse, or NoNode.
func (t *Tree) Hovered() NodeID { return t.hovered }

// Active returns the element being clicked, or NoNode.
func (t *Tree) Active() NodeID { return t.active }

// SetHover records the element under the mouse. It returns true if it changed.
func (t *Tree) SetHover(id NodeID) bool {
	if t.Node(id) == nil {
		id = NoNode
	}
	changed := t.hovered != id
	t.hovered = id
	return changed
}

// SetActive records the element being clicked. It returns true if it changed.
func (t *Tree) SetActive(id NodeID) bool {
	if t.Node(id) == nil {
		id = NoNode
	}
	changed := t.active != id
	t.active = id
	return changed
}

// UpdateMedia stores new media features, and returns true if the result
// of at least one @media condition changed.
func (t *Tree) UpdateMedia(features backend.MediaFeatures) bool {
	old := t.Media
	t.Media = features
	for _, s := range t.sheets {
		if !s.HasMedia {
			continue
		}
		for i := range s.Rules {
			r := &s.Rules[i]
			if len(r.Media) != 0 && r.MatchesMedia(old) != r.MatchesMedia(features) {
				return true
			}
		}
	}
	return false
}
