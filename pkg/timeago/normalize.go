package timeago

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// token is a word or a digit run inside a normalised phrase.
type token struct {
	text       string
	start, end int
	number     bool
}

// normalize trims, NFC-normalises and lower-cases s. Whitespace is collapsed
// only for space-separated locales; separator-less locales also drop
// zero-width characters, which scraped text carries inconsistently.
func (t *PatternTable) normalize(s string) string {
	// A Caser keeps state between calls and must not be shared.
	s = cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
	switch t.mode {
	case modeSpace:
		s = strings.Join(strings.Fields(s), " ")
	case modeNone:
		s = strings.Map(func(r rune) rune {
			if isZeroWidth(r) {
				return -1
			}
			return r
		}, s)
	}
	return strings.TrimSpace(s)
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}

// isDigit reports ASCII digits, any Unicode decimal digit and the table's
// declared glyphs.
func (t *PatternTable) isDigit(r rune) bool {
	if unicode.IsDigit(r) {
		return true
	}
	_, ok := t.digitValue[r]
	return ok
}

func isWordBreak(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '\'', '’', '-':
		return false
	}
	return unicode.IsPunct(r)
}

// tokenize splits a normalised phrase. Space-separated locales break on
// whitespace, punctuation and digit boundaries; literal separators break on
// the separator only. Separator-less locales have no tokens.
func (t *PatternTable) tokenize(s string) []token {
	switch t.mode {
	case modeLiteral:
		var out []token
		pos := 0
		for _, part := range strings.Split(s, t.separator) {
			start := pos
			pos += len(part) + len(t.separator)
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			off := strings.Index(part, trimmed)
			out = append(out, token{text: trimmed, start: start + off, end: start + off + len(trimmed)})
		}
		return out
	case modeSpace:
		var out []token
		start := -1
		number := false
		flush := func(end int) {
			if start >= 0 {
				out = append(out, token{text: s[start:end], start: start, end: end, number: number})
				start = -1
			}
		}
		for i, r := range s {
			switch {
			case isWordBreak(r):
				flush(i)
			case t.isDigit(r):
				if start >= 0 && !number {
					flush(i)
				}
				if start < 0 {
					start, number = i, true
				}
			default:
				if start >= 0 && number {
					flush(i)
				}
				if start < 0 {
					start, number = i, false
				}
			}
		}
		flush(len(s))
		return out
	}
	return nil
}

func words(toks []token) []token {
	out := toks[:0:0]
	for _, tok := range toks {
		if !tok.number {
			out = append(out, tok)
		}
	}
	return out
}
