// Package slug derives URL identifiers from post titles.
package slug

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Fallback is used when a title contains nothing that survives slugging.
const Fallback = "post"

// spaceClass is what counts as a word break: ASCII whitespace plus vertical
// tab, Unicode space separators such as U+00A0 and U+3000, the BOM and
// U+2028/U+2029. isSpace must match the same set.
const spaceClass = `\s\x{0B}\p{Zs}\x{FEFF}\x{2028}\x{2029}`

var (
	// Word characters, whitespace and CJK unified ideographs are kept.
	disallowed = regexp.MustCompile(`[^\w` + spaceClass + `\x{4e00}-\x{9fff}]+`)
	whitespace = regexp.MustCompile(`[` + spaceClass + `]+`)
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// Make lower-cases title, strips unsupported characters and joins words with hyphens.
func Make(title string) string {
	s := strings.ToLower(strings.TrimFunc(title, isSpace))
	s = disallowed.ReplaceAllString(s, "")
	s = strings.TrimFunc(s, isSpace)
	s = whitespace.ReplaceAllString(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns base if it is free, otherwise the first free base-N for N = 1, 2, ...
// It also returns how many candidates were rejected before one was found.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, int, error) {
	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", n - 1, err
		}
		if !taken {
			return candidate, n - 1, nil
		}
		if err := ctx.Err(); err != nil {
			return "", n, err
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
