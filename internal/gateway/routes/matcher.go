// Package routes matches request paths against ant-style patterns:
// `?` matches one character, `*` matches any run of characters within a
// segment, `**` matches zero or more whole segments.
package routes

import "strings"

type Pattern struct {
	raw      string
	segments []string
}

// Compile splits the pattern into path segments. Patterns are expected to
// start with "/"; a relative pattern is treated as if it did.
func Compile(pattern string) Pattern {
	return Pattern{raw: pattern, segments: split(pattern)}
}

func (p Pattern) String() string { return p.raw }

// Matches reports whether path matches the pattern.
func (p Pattern) Matches(path string) bool {
	return matchSegments(p.segments, split(path))
}

// Matcher is an ordered allowlist; first match wins, though order only
// matters for reporting since matching has no captures.
type Matcher struct {
	patterns []Pattern
}

func NewMatcher(patterns ...string) *Matcher {
	m := &Matcher{patterns: make([]Pattern, 0, len(patterns))}
	for _, p := range patterns {
		m.patterns = append(m.patterns, Compile(p))
	}
	return m
}

func (m *Matcher) Matches(path string) bool {
	for _, p := range m.patterns {
		if p.Matches(path) {
			return true
		}
	}
	return false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}

	if pattern[0] == "**" {
		// ** swallows zero or more segments. Try every split point.
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}

	if len(path) == 0 {
		return false
	}
	if !matchSegment(pattern[0], path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

// matchSegment matches a single segment with * and ? wildcards.
func matchSegment(pattern, s string) bool {
	// Iterative glob with backtracking over the last *.
	var pi, si int
	star, starSi := -1, 0

	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == s[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			star, starSi = pi, si
			pi++
		case star >= 0:
			starSi++
			pi, si = star+1, starSi
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
