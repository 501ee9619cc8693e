package timeago

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type separatorMode int

const (
	// Words separated by whitespace; digits and punctuation also split tokens.
	modeSpace separatorMode = iota
	// Words separated by a literal string other than a single space.
	modeLiteral
	// No separator: forms are matched as substrings of the phrase.
	modeNone
)

// entry is a canonicalised word-form or special-case literal.
type entry struct {
	unit   Unit
	text   string
	tokens []string // word tokens
	all    []string // word and number tokens
	runes  int
}

type special struct {
	entry
	quantity int
}

// PatternTable is the immutable word-form table of one locale.
type PatternTable struct {
	locale    string
	separator string
	mode      separatorMode

	digits     []rune
	digitValue map[rune]int

	forms    [len(unitNames)][]string
	entries  []entry
	specials []special
}

// TableOption configures optional parts of a PatternTable.
type TableOption func(*tableConfig)

type tableConfig struct {
	digits   string
	specials []specialCase
}

type specialCase struct {
	literal  string
	unit     Unit
	quantity int
}

// WithSpecialCase maps a literal phrase, e.g. a word meaning "yesterday",
// directly to unit and quantity.
func WithSpecialCase(literal string, unit Unit, quantity int) TableOption {
	return func(c *tableConfig) {
		c.specials = append(c.specials, specialCase{literal: literal, unit: unit, quantity: quantity})
	}
}

// WithDigits declares locale-local digit glyphs, zero through nine.
func WithDigits(glyphs string) TableOption {
	return func(c *tableConfig) { c.digits = glyphs }
}

// NewPatternTable builds and validates the table of one locale. forms must
// hold at least one non-empty word-form for every unit.
func NewPatternTable(locale, separator string, forms map[Unit][]string, opts ...TableOption) (*PatternTable, error) {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &PatternTable{locale: locale, separator: separator}
	switch separator {
	case " ":
		t.mode = modeSpace
	case "":
		t.mode = modeNone
	default:
		t.mode = modeLiteral
	}
	fail := func(format string, args ...any) (*PatternTable, error) {
		return nil, &ConfigurationError{Locale: locale, Reason: fmt.Sprintf(format, args...)}
	}

	if cfg.digits != "" {
		glyphs := []rune(cfg.digits)
		if len(glyphs) != 10 {
			return fail("digits must list ten glyphs, got %d", len(glyphs))
		}
		t.digits = glyphs
		t.digitValue = make(map[rune]int, 10)
		for i, r := range glyphs {
			if _, dup := t.digitValue[r]; dup {
				return fail("digit glyph %q declared twice", r)
			}
			t.digitValue[r] = i
		}
	}

	for u := range forms {
		if !u.valid() {
			return fail("unknown unit %d", int(u))
		}
	}
	for _, u := range Units() {
		seen := make(map[string]bool)
		for _, raw := range forms[u] {
			e, err := t.compile(u, raw)
			if err != nil {
				return fail("%s form %q: %v", u, raw, err)
			}
			if e.text == "" || seen[e.text] {
				continue
			}
			seen[e.text] = true
			t.forms[u] = append(t.forms[u], e.text)
			t.entries = append(t.entries, e)
		}
		if len(t.forms[u]) == 0 {
			return fail("no word-forms for %s", u)
		}
	}

	for _, sc := range cfg.specials {
		if !sc.unit.valid() {
			return fail("special case %q: unknown unit %d", sc.literal, int(sc.unit))
		}
		if sc.quantity < 0 {
			return fail("special case %q: negative quantity %d", sc.literal, sc.quantity)
		}
		e, err := t.compile(sc.unit, sc.literal)
		if err != nil {
			return fail("special case %q: %v", sc.literal, err)
		}
		if e.text == "" {
			return fail("empty special case literal")
		}
		t.specials = append(t.specials, special{entry: e, quantity: sc.quantity})
	}
	return t, nil
}

// compile canonicalises a form the same way phrases are normalised.
func (t *PatternTable) compile(u Unit, raw string) (entry, error) {
	if t.mode == modeLiteral {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, t.separator) || strings.HasSuffix(trimmed, t.separator) {
			return entry{}, fmt.Errorf("form starts or ends with separator %q", t.separator)
		}
	}
	text := t.normalize(raw)
	if text == "" {
		return entry{}, nil
	}
	e := entry{unit: u, text: text, runes: utf8.RuneCountInString(text)}
	if t.mode != modeNone {
		for _, tok := range t.tokenize(text) {
			e.all = append(e.all, tok.text)
			if !tok.number {
				e.tokens = append(e.tokens, tok.text)
			}
		}
		if len(e.tokens) == 0 {
			return entry{}, fmt.Errorf("form has no word tokens")
		}
	}
	return e, nil
}

// Locale returns the locale code the table was built for.
func (t *PatternTable) Locale() string { return t.locale }

// Separator returns the word separator, possibly empty.
func (t *PatternTable) Separator() string { return t.separator }

// Digits returns the declared locale digit glyphs, or "" if none.
func (t *PatternTable) Digits() string { return string(t.digits) }

// FormsFor returns the canonical word-forms of u in declaration order.
func (t *PatternTable) FormsFor(u Unit) []string {
	if !u.valid() {
		return nil
	}
	out := make([]string, len(t.forms[u]))
	copy(out, t.forms[u])
	return out
}

// SpecialCases returns the literal phrases that map directly to a Duration.
func (t *PatternTable) SpecialCases() map[string]Duration {
	out := make(map[string]Duration, len(t.specials))
	for _, s := range t.specials {
		out[s.text] = Duration{Unit: s.unit, Quantity: s.quantity}
	}
	return out
}
