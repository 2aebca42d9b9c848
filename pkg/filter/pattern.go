// SPDX-License-Identifier: MPL-2.0

package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// recursiveSuffix marks a pattern as "this directory and everything beneath it".
const recursiveSuffix = "/..."

// ErrInvalidPattern is the sentinel error wrapped by InvalidPatternError.
var ErrInvalidPattern = errors.New("invalid filter pattern")

type (
	// Pattern is one compiled include-manifest entry. Patterns are compiled
	// once (lower-cased for case-insensitive matching) and reused for every
	// path tested against them.
	Pattern struct {
		raw string
		// dir is the directory prefix for recursive-directory patterns,
		// empty for glob patterns.
		dir string
		// matcher is the compiled glob, nil for recursive-directory patterns.
		matcher glob.Glob
	}

	// Set is an ordered collection of patterns. A path is included when any
	// pattern matches; the first match short-circuits but the result does
	// not depend on order.
	Set struct {
		patterns []Pattern
	}

	// InvalidPatternError is returned when a manifest entry cannot be
	// compiled as a glob.
	InvalidPatternError struct {
		Pattern string
		Cause   error
	}
)

// NormalizePath converts a path into manifest matching form: backslashes
// become forward slashes and a single leading slash is stripped.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimPrefix(p, "/")
}

// CompilePattern compiles a single normalized manifest entry.
//
// Entries ending in "/..." become recursive-directory patterns; everything
// else compiles to a shell-style glob. The glob is compiled without a
// separator rune so '*' matches across '/' — manifest globs match the whole
// relative path as a flat string, the way "*.uplugin" is expected to select
// a descriptor at any depth.
func CompilePattern(raw string) (Pattern, error) {
	normalized := strings.ToLower(NormalizePath(raw))

	if dir, ok := strings.CutSuffix(normalized, recursiveSuffix); ok {
		return Pattern{raw: raw, dir: dir}, nil
	}

	matcher, err := glob.Compile(escapeAlternation(normalized))
	if err != nil {
		return Pattern{}, &InvalidPatternError{Pattern: raw, Cause: err}
	}
	return Pattern{raw: raw, matcher: matcher}, nil
}

// escapeAlternation makes '{' and '}' literal characters. Manifest globs are
// shell-style with no alternation syntax; left unescaped, the glob library
// would treat "{a,b}" as alternatives and reject an unbalanced '{'. No
// backslash survives NormalizePath, so the escapes cannot collide.
func escapeAlternation(s string) string {
	return strings.NewReplacer("{", `\{`, "}", `\}`).Replace(s)
}

// String returns the original manifest text of the pattern.
func (p Pattern) String() string { return p.raw }

// IsRecursive reports whether the pattern is a recursive-directory selector.
func (p Pattern) IsRecursive() bool { return p.matcher == nil }

// Matches reports whether relPath is selected by this pattern. The path is
// normalized and lower-cased before comparison, so callers may pass paths in
// any casing or separator style.
func (p Pattern) Matches(relPath string) bool {
	return p.matchesNormalized(strings.ToLower(NormalizePath(relPath)))
}

// matchesNormalized assumes relPath is already normalized and lower-cased.
func (p Pattern) matchesNormalized(relPath string) bool {
	if p.matcher == nil {
		return relPath == p.dir || strings.HasPrefix(relPath, p.dir+"/")
	}
	return p.matcher.Match(relPath)
}

// NewSet compiles the given manifest entries into a Set, preserving order.
// Duplicate entries are tolerated; they simply never match anything the
// earlier copy did not already match.
func NewSet(entries []string) (*Set, error) {
	patterns := make([]Pattern, 0, len(entries))
	for _, entry := range entries {
		p, err := CompilePattern(entry)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return &Set{patterns: patterns}, nil
}

// Matches reports whether relPath is selected by any pattern in the set.
func (s *Set) Matches(relPath string) bool {
	normalized := strings.ToLower(NormalizePath(relPath))
	for _, p := range s.patterns {
		if p.matchesNormalized(normalized) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int { return len(s.patterns) }

// Patterns returns the original manifest text of every pattern, in order.
func (s *Set) Patterns() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.raw
	}
	return out
}

// Error implements the error interface for InvalidPatternError.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid filter pattern %q: %v", e.Pattern, e.Cause)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }
