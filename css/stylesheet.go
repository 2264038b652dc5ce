// Package css parses stylesheets into rules ready for the cascade,
// and implements the value parsers (lengths, colors, gradients, media queries)
// used to compute styles.
//
// The grammar is handled by github.com/tdewolff/parse/v2/css and
// selectors are compiled by github.com/andybalholm/cascadia.
// Invalid content is reported through logger.WarningLogger and skipped.
package css

import (
	"io"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
	"github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
)

// Origin is the origin of a stylesheet in the cascade.
type Origin uint8

const (
	UserAgent Origin = iota
	User
	Author
)

// Precedence returns the cascade rank of a declaration: higher wins.
func (o Origin) Precedence(important bool) int {
	if !important {
		return int(o) // UA < user < author
	}
	return 5 - int(o) // author! < user! < UA!
}

// PseudoState is a bit set of the dynamic pseudo-classes a rule requires
// on the element it applies to.
type PseudoState uint8

const (
	Hover PseudoState = 1 << iota
	Active
)

type Declaration struct {
	Name      string // lower case
	Value     string // normalized whitespace
	Important bool
}

// Rule is a selector with its declarations. A rule with several selectors
// separated by commas is split in several rules, sharing the declarations.
type Rule struct {
	Selector     cascadia.Sel
	Text         string // the selector as written, without dynamic pseudo-classes
	Specificity  cascadia.Specificity
	Declarations []Declaration
	// Media are the conditions of the enclosing @media and @import rules,
	// which must all be satisfied.
	Media []MediaList
	State PseudoState
	// Order is the position in the stylesheet, used to break specificity ties.
	Order int
}

// MatchesMedia evaluates the media conditions of the rule.
func (r *Rule) MatchesMedia(features backend.MediaFeatures) bool {
	for _, m := range r.Media {
		if !m.Matches(features) {
			return false
		}
	}
	return true
}

// Stylesheet is a parsed stylesheet, with rules sorted by specificity.
type Stylesheet struct {
	Origin  Origin
	BaseURL string
	Rules   []Rule
	// HasDynamic is true if one rule depends on :hover or :active.
	HasDynamic bool
	// HasMedia is true if one rule depends on a media query.
	HasMedia bool
}

// Importer resolves an @import rule, returning the content of the stylesheet
// and its base URL.
type Importer func(url, baseURL string) (css string, newBaseURL string)

const maxImportDepth = 16

// Parse parses `text`, resolving @import rules with `importer` (which may be nil).
// `media` is the media list the whole stylesheet applies to (nil for all).
// The returned rules are sorted by specificity, then by source order.
func Parse(text, baseURL string, origin Origin, media MediaList, importer Importer) *Stylesheet {
	out := &Stylesheet{Origin: origin, BaseURL: baseURL}
	ps := sheetParser{out: out, importer: importer, visited: utils.NewSet()}
	var conditions []MediaList
	if media != nil {
		conditions = []MediaList{media}
	}
	ps.parse(text, baseURL, conditions, 0)
	out.Sort()
	return out
}

// Sort sorts the rules by increasing specificity, keeping source order
// between rules of equal specificity.
func (s *Stylesheet) Sort() {
	sort.SliceStable(s.Rules, func(i, j int) bool {
		ri, rj := s.Rules[i], s.Rules[j]
		if ri.Specificity != rj.Specificity {
			return ri.Specificity.Less(rj.Specificity)
		}
		return ri.Order < rj.Order
	})
}

type sheetParser struct {
	out      *Stylesheet
	importer Importer
	visited  utils.Set
	order    int
}

// block kinds of the at-rule stack
const (
	blockMedia = iota
	blockSkipped
)

func (ps *sheetParser) parse(text, baseURL string, media []MediaList, depth int) {
	p := tcss.NewParser(parse.NewInputString(text), false)

	var (
		stack     []int // open at-rule blocks
		selectors []string
		inRule    bool
		skipRule  bool
		decls     []Declaration
		seenRule  bool // @import is only valid before any other rule
	)
	skipping := func() bool {
		for _, b := range stack {
			if b == blockSkipped {
				return true
			}
		}
		return false
	}

	for {
		gt, _, data := p.Next()
		switch gt {
		case tcss.ErrorGrammar:
			if err := p.Err(); err == io.EOF {
				return
			} else if err != nil {
				logger.WarningLogger.Printf("Invalid CSS skipped: %s", err)
			}
		case tcss.AtRuleGrammar:
			keyword := utils.AsciiLower(string(data))
			prelude := joinTokens(p.Values())
			switch keyword {
			case "@import":
				if seenRule || len(stack) != 0 {
					logger.WarningLogger.Printf("@import rule '%s' not at the beginning of the whole rule was ignored.", prelude)
					continue
				}
				ps.importRule(prelude, baseURL, media, depth)
			case "@charset", "@namespace":
			default:
				logger.WarningLogger.Printf("Unsupported at-rule %s ignored.", keyword)
			}
		case tcss.BeginAtRuleGrammar:
			seenRule = true
			keyword := utils.AsciiLower(string(data))
			if keyword == "@media" && !skipping() {
				ml := ParseMediaList(joinTokens(p.Values()))
				stack = append(stack, blockMedia)
				media = append(media, ml)
				ps.out.HasMedia = true
			} else {
				stack = append(stack, blockSkipped)
			}
		case tcss.EndAtRuleGrammar:
			if len(stack) == 0 {
				continue
			}
			if stack[len(stack)-1] == blockMedia {
				media = media[:len(media)-1]
			}
			stack = stack[:len(stack)-1]
		case tcss.QualifiedRuleGrammar:
			selectors = append(selectors, joinTokens(p.Values()))
		case tcss.BeginRulesetGrammar:
			seenRule = true
			selectors = append(selectors, joinTokens(p.Values()))
			inRule, skipRule, decls = true, skipping(), nil
		case tcss.DeclarationGrammar:
			if !inRule || skipRule {
				continue
			}
			if d, ok := newDeclaration(string(data), p.Values()); ok {
				decls = append(decls, d)
			}
		case tcss.CustomPropertyGrammar:
			// custom properties are not supported
		case tcss.EndRulesetGrammar:
			if inRule && !skipRule && len(decls) != 0 {
				ps.addRules(selectors, decls, media)
			}
			selectors, inRule, decls = nil, false, nil
		}
	}
}

func (ps *sheetParser) importRule(prelude, baseURL string, media []MediaList, depth int) {
	url, rest := splitImportPrelude(prelude)
	if url == "" {
		logger.WarningLogger.Printf("Invalid @import rule '%s' ignored.", prelude)
		return
	}
	if ps.importer == nil {
		return
	}
	if depth >= maxImportDepth {
		logger.WarningLogger.Printf("@import of %s ignored: too many nested imports", url)
		return
	}
	key := utils.ResolveURL(baseURL, url)
	if ps.visited.Has(key) {
		logger.WarningLogger.Printf("@import of %s ignored: circular import", url)
		return
	}
	ps.visited.Add(key)

	text, newBase := ps.importer(url, baseURL)
	if newBase == "" {
		newBase = baseURL
	}
	nested := append([]MediaList(nil), media...)
	if rest != "" {
		nested = append(nested, ParseMediaList(rest))
		ps.out.HasMedia = true
	}
	ps.parse(text, newBase, nested, depth+1)
}

// splitImportPrelude returns the URL of an @import prelude, and its media list.
func splitImportPrelude(prelude string) (url, media string) {
	prelude = strings.TrimSpace(prelude)
	if u, ok := ParseURL(prelude); ok { // whole prelude
		return u, ""
	}
	if s, rest, ok := cutQuoted(prelude); ok {
		return s, strings.TrimSpace(rest)
	}
	if i := strings.IndexByte(prelude, ')'); i != -1 {
		if u, ok := ParseURL(prelude[:i+1]); ok {
			return u, strings.TrimSpace(prelude[i+1:])
		}
	}
	return "", ""
}

func (ps *sheetParser) addRules(selectors []string, decls []Declaration, media []MediaList) {
	mediaCopy := append([]MediaList(nil), media...)
	for _, text := range selectors {
		text = strings.TrimSpace(text)
		cleaned, state, ok := stripDynamicPseudoClasses(text)
		if !ok {
			logger.WarningLogger.Printf("Invalid or unsupported selector '%s', dynamic pseudo-class not on the subject", text)
			continue
		}
		sel, err := cascadia.Parse(cleaned)
		if err != nil {
			logger.WarningLogger.Printf("Invalid or unsupported selector '%s', %s", text, err)
			continue
		}
		spec := sel.Specificity()
		if state&Hover != 0 {
			spec[1]++
		}
		if state&Active != 0 {
			spec[1]++
		}
		if state != 0 {
			ps.out.HasDynamic = true
		}
		ps.out.Rules = append(ps.out.Rules, Rule{
			Selector:     sel,
			Text:         cleaned,
			Specificity:  spec,
			Declarations: decls,
			Media:        mediaCopy,
			State:        state,
			Order:        ps.order,
		})
		ps.order++
	}
}

// stripDynamicPseudoClasses removes :hover and :active from the selector,
// returning the state they require. They are only supported on the last
// compound selector.
func stripDynamicPseudoClasses(selector string) (string, PseudoState, bool) {
	var state PseudoState
	for _, pc := range [...]struct {
		name  string
		state PseudoState
	}{{":hover", Hover}, {":active", Active}} {
		for {
			lower := utils.AsciiLower(selector)
			i := strings.Index(lower, pc.name)
			if i == -1 {
				break
			}
			end := i + len(pc.name)
			if end < len(lower) && isNameChar(lower[end]) {
				break // another pseudo-class, like :hovered
			}
			if i > 0 && selector[i-1] == ':' {
				break // pseudo-element
			}
			if strings.ContainsAny(selector[end:], " >+~") {
				return "", 0, false
			}
			selector = selector[:i] + selector[end:]
			state |= pc.state
		}
	}
	if selector == "" || strings.ContainsAny(selector[len(selector)-1:], " >+~") {
		selector += "*"
	}
	return strings.TrimSpace(selector), state, true
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
}

func newDeclaration(name string, values []tcss.Token) (Declaration, bool) {
	name = utils.AsciiLower(strings.TrimSpace(name))
	if name == "" {
		return Declaration{}, false
	}
	// look for a trailing !important
	important := false
	end := len(values)
	for end > 0 && values[end-1].TokenType == tcss.WhitespaceToken {
		end--
	}
	if end >= 2 && values[end-1].TokenType == tcss.IdentToken &&
		utils.AsciiLower(string(values[end-1].Data)) == "important" {
		i := end - 2
		for i > 0 && values[i].TokenType == tcss.WhitespaceToken {
			i--
		}
		if values[i].TokenType == tcss.DelimToken && string(values[i].Data) == "!" {
			important = true
			end = i
		}
	}
	value := joinTokens(values[:end])
	if value == "" {
		logger.WarningLogger.Printf("Ignored `%s:` , empty value.", name)
		return Declaration{}, false
	}
	return Declaration{Name: name, Value: value, Important: important}, true
}

// joinTokens serializes tokens, collapsing white space.
func joinTokens(tokens []tcss.Token) string {
	var b strings.Builder
	pendingSpace := false
	var prev tcss.TokenType = tcss.ErrorToken
	for _, tok := range tokens {
		switch tok.TokenType {
		case tcss.WhitespaceToken, tcss.CommentToken:
			pendingSpace = b.Len() != 0
			continue
		}
		if pendingSpace || (isWordToken(prev) && startsWord(tok.TokenType)) {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.Write(tok.Data)
		prev = tok.TokenType
	}
	return b.String()
}

func isWordToken(tt tcss.TokenType) bool {
	switch tt {
	case tcss.IdentToken, tcss.NumberToken, tcss.PercentageToken, tcss.DimensionToken,
		tcss.HashToken, tcss.StringToken, tcss.URLToken, tcss.RightParenthesisToken:
		return true
	}
	return false
}

func startsWord(tt tcss.TokenType) bool {
	switch tt {
	case tcss.IdentToken, tcss.NumberToken, tcss.PercentageToken, tcss.DimensionToken,
		tcss.HashToken, tcss.StringToken, tcss.URLToken, tcss.FunctionToken:
		return true
	}
	return false
}

// ParseInline parses the content of a style attribute.
func ParseInline(style string) []Declaration {
	p := tcss.NewParser(parse.NewInputString(style), true)
	var out []Declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case tcss.ErrorGrammar:
			if err := p.Err(); err == io.EOF {
				return out
			} else if err != nil {
				logger.WarningLogger.Printf("Invalid style attribute '%s': %s", style, err)
			}
		case tcss.DeclarationGrammar:
			if d, ok := newDeclaration(string(data), p.Values()); ok {
				out = append(out, d)
			}
		}
	}
}
