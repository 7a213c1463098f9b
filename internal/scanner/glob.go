package scanner

import (
	"regexp"
	"strings"

	"github.com/IGLOU-EU/go-wildcard"
)

// glob is one exclude pattern with fnmatch semantics: '*' and '?' also
// match '/', [seq] and [!seq] are character classes, and a '[' without a
// closing ']' is a literal.
type glob struct {
	pattern string
	re      *regexp.Regexp // set only for patterns with a class
}

func compileGlob(pattern string) glob {
	g := glob{pattern: pattern}
	if !strings.Contains(pattern, "[") {
		return g
	}
	// A class such as [z-a] has no regexp form; wildcard then treats the
	// brackets as literals.
	if re, err := regexp.Compile(globToRegexp(pattern)); err == nil {
		g.re = re
	}
	return g
}

func compileGlobs(patterns []string) []glob {
	globs := make([]glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, compileGlob(p))
	}
	return globs
}

func (g glob) match(s string) bool {
	if g.re != nil {
		return g.re.MatchString(s)
	}
	return wildcard.Match(g.pattern, s)
}

// globToRegexp translates an fnmatch pattern into an anchored regexp
func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(`.*`)
			i++
		case '?':
			b.WriteString(`.`)
			i++
		case '[':
			end := classEnd(pattern, i)
			if end < 0 {
				b.WriteString(`\[`)
				i++
				continue
			}
			b.WriteString(classToRegexp(pattern[i+1 : end]))
			i = end + 1
		default:
			// Copy a whole run of literals so multibyte runes stay intact.
			j := i + 1
			for j < len(pattern) && !strings.ContainsRune("*?[", rune(pattern[j])) {
				j++
			}
			b.WriteString(regexp.QuoteMeta(pattern[i:j]))
			i = j
		}
	}

	b.WriteString(`$`)
	return b.String()
}

// classEnd returns the index of the ']' closing the class opened at
// start, or -1. A ']' right after '[' or '[!' belongs to the class.
func classEnd(pattern string, start int) int {
	j := start + 1
	if j < len(pattern) && pattern[j] == '!' {
		j++
	}
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	for j < len(pattern) && pattern[j] != ']' {
		j++
	}
	if j >= len(pattern) {
		return -1
	}
	return j
}

func classToRegexp(body string) string {
	negate := strings.HasPrefix(body, "!")
	if negate {
		body = body[1:]
	}

	var b strings.Builder
	b.WriteByte('[')
	if negate {
		b.WriteByte('^')
	}
	for i := 0; i < len(body); i++ {
		switch c := body[i]; c {
		case '\\', '[', ']', '^':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(']')
	return b.String()
}
