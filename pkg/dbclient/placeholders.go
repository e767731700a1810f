package dbclient

import "strings"

// Rewrite replaces each bindable `?` in query with bind(i), where i is
// the 0-based order of occurrence, and returns the rewritten query plus
// the number of placeholders bound.
//
// The scan is quote-aware: a `?` inside a single-quoted string (with ''
// escapes), a double-quoted, backtick or bracketed identifier, a line
// comment or a block comment is part of the SQL text, not a
// placeholder, and is left untouched.
func Rewrite(query string, bind func(i int) string) (string, int) {
	var b strings.Builder
	b.Grow(len(query) + 16)

	n := 0
	i := 0
	for i < len(query) {
		c := query[i]
		switch {
		case c == '?':
			b.WriteString(bind(n))
			n++
			i++
		case c == '\'' || c == '"' || c == '`':
			j := skipQuoted(query, i, c)
			b.WriteString(query[i:j])
			i = j
		case c == '[':
			j := skipBracketed(query, i)
			b.WriteString(query[i:j])
			i = j
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			j := strings.IndexByte(query[i:], '\n')
			if j < 0 {
				j = len(query)
			} else {
				j += i
			}
			b.WriteString(query[i:j])
			i = j
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			j := strings.Index(query[i+2:], "*/")
			if j < 0 {
				j = len(query)
			} else {
				j += i + 2 + 2
			}
			b.WriteString(query[i:j])
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), n
}

// skipQuoted returns the index just past the quoted region opening at
// start. A doubled quote character inside the region is an escape.
func skipQuoted(query string, start int, quote byte) int {
	i := start + 1
	for i < len(query) {
		if query[i] != quote {
			i++
			continue
		}
		if i+1 < len(query) && query[i+1] == quote {
			i += 2
			continue
		}
		return i + 1
	}
	return len(query)
}

// skipBracketed returns the index just past a [bracketed] identifier
// opening at start. A doubled ]] inside the region is an escape.
func skipBracketed(query string, start int) int {
	i := start + 1
	for i < len(query) {
		if query[i] != ']' {
			i++
			continue
		}
		if i+1 < len(query) && query[i+1] == ']' {
			i += 2
			continue
		}
		return i + 1
	}
	return len(query)
}
