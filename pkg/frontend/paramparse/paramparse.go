// Package paramparse splits a parenthesized parameter-list's raw source
// text into individual parameter texts, respecting nested brackets so
// that generic types like "HashMap<K, V>" don't get split on their
// internal comma. Shared by every tree-sitter-backed frontend, since
// each one hands parameter text to the same "name: type" splitting
// logic.
package paramparse

import "strings"

// SplitTopLevel splits s on commas that are not nested inside (), [],
// {}, or <>.
func SplitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NameType splits a single "name: type" parameter text on its first
// top-level colon. When no colon is present, the whole text is treated
// as an unnamed type (e.g. a bare type in a signature with no
// parameter names).
func NameType(paramText string) (name, typ string) {
	depth := 0
	for i, r := range paramText {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return strings.TrimSpace(paramText[:i]), strings.TrimSpace(paramText[i+1:])
			}
		}
	}
	return "", strings.TrimSpace(paramText)
}
