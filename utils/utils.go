package utils

import (
	"net/url"
	"strings"
)

var Has = struct{}{}

type Set map[string]struct{}

func (s Set) Add(key string) {
	s[key] = Has
}

func (s Set) Has(key string) bool {
	_, in := s[key]
	return in
}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// AsciiLower lower cases the ASCII letters of s, leaving other runes untouched,
// which is what CSS keywords comparison requires.
func AsciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// IsDataURL returns true for "data:" URLs, which are never resolved.
func IsDataURL(s string) bool {
	return len(s) >= 5 && AsciiLower(s[:5]) == "data:"
}

// ResolveURL resolves `ref` against `base`.
// If `base` is empty or invalid, or if `ref` is already absolute, `ref` is returned unchanged.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == "" || IsDataURL(ref) {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
