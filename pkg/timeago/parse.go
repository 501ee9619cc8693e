package timeago

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Parse is shorthand for table.Parse(phrase).
func Parse(phrase string, table *PatternTable) (Duration, error) {
	return table.Parse(phrase)
}

// Parse converts a phrase such as "3 saat önce" into {Hour, 3}.
//
// Special-case literals are checked first. Otherwise the longest word-form of
// any unit found in the phrase decides the unit; equally long forms of two
// different units make the phrase ambiguous. The first numeral in the phrase
// is the quantity, defaulting to 1.
func (t *PatternTable) Parse(phrase string) (Duration, error) {
	text := t.normalize(phrase)
	if text == "" {
		return Duration{}, &NoMatchError{Locale: t.locale, Phrase: phrase, Reason: "empty phrase"}
	}
	all := t.tokenize(text)
	toks := words(all)

	if d, ok := t.matchSpecial(text, all); ok {
		return d, nil
	}

	best, err := t.bestCandidate(phrase, t.candidates(text, toks))
	if err != nil {
		return Duration{}, err
	}

	qty, found, err := t.firstNumber(text)
	if err != nil {
		return Duration{}, &NoMatchError{Locale: t.locale, Phrase: phrase, Reason: err.Error()}
	}
	if !found {
		qty = 1
	}
	return Duration{Unit: best.Unit, Quantity: qty}, nil
}

// matchSpecial reports the longest special-case literal equal to the whole
// phrase, ignoring whitespace and punctuation. Separator-less locales only
// need the literal to occur in the phrase.
func (t *PatternTable) matchSpecial(text string, all []token) (Duration, bool) {
	var (
		found bool
		best  special
	)
	for _, s := range t.specials {
		if t.mode == modeNone {
			if !strings.Contains(text, s.text) {
				continue
			}
		} else if len(all) != len(s.all) || !tokensEqual(all, s.all) {
			continue
		}
		if !found || s.runes > best.runes {
			best, found = s, true
		}
	}
	return Duration{Unit: best.unit, Quantity: best.quantity}, found
}

// candidates lists every unit word-form present in the phrase.
func (t *PatternTable) candidates(text string, toks []token) []Candidate {
	var out []Candidate
	for _, e := range t.entries {
		if start, end, ok := t.find(e, text, toks); ok {
			out = append(out, Candidate{Unit: e.unit, Form: e.text, Start: start, End: end})
		}
	}
	return out
}

// bestCandidate applies longest-match preference.
func (t *PatternTable) bestCandidate(phrase string, cands []Candidate) (Candidate, error) {
	if len(cands) == 0 {
		return Candidate{}, &NoMatchError{Locale: t.locale, Phrase: phrase}
	}
	longest := 0
	for _, c := range cands {
		if n := utf8.RuneCountInString(c.Form); n > longest {
			longest = n
		}
	}
	var top []Candidate
	units := make(map[Unit]bool)
	for _, c := range cands {
		if utf8.RuneCountInString(c.Form) == longest {
			top = append(top, c)
			units[c.Unit] = true
		}
	}
	if len(units) > 1 {
		sort.SliceStable(top, func(i, j int) bool { return top[i].Unit < top[j].Unit })
		return Candidate{}, &AmbiguousMatchError{Locale: t.locale, Phrase: phrase, Candidates: top}
	}
	return top[0], nil
}

// find locates e in the phrase at a token boundary, or as a substring for
// separator-less locales.
func (t *PatternTable) find(e entry, text string, toks []token) (start, end int, ok bool) {
	if t.mode == modeNone {
		i := strings.Index(text, e.text)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + len(e.text), true
	}
	n := len(e.tokens)
	for i := 0; i+n <= len(toks); i++ {
		if tokensEqual(toks[i:i+n], e.tokens) {
			return toks[i].start, toks[i+n-1].end, true
		}
	}
	return 0, 0, false
}

func tokensEqual(toks []token, want []string) bool {
	for i, w := range want {
		if toks[i].text != w {
			return false
		}
	}
	return true
}

// ParseDuration sums compound durations such as "1 hour 23 minutes". Each
// unit word takes the last numeral written before it, or 1. Words that are
// not unit forms are skipped.
func (t *PatternTable) ParseDuration(text string) (time.Duration, error) {
	normalized := t.normalize(text)
	var (
		total   time.Duration
		matched bool
		prevEnd int
	)
	for _, c := range t.scanSequence(normalized) {
		if c.err != nil {
			return 0, &AmbiguousMatchError{Locale: t.locale, Phrase: text, Candidates: c.tied}
		}
		qty, found, err := t.lastNumber(normalized[prevEnd:c.Start])
		if err != nil {
			return 0, &NoMatchError{Locale: t.locale, Phrase: text, Reason: err.Error()}
		}
		if !found {
			qty = 1
		}
		unit := c.Unit.Approx()
		if int64(qty) > math.MaxInt64/int64(unit) || total > math.MaxInt64-time.Duration(qty)*unit {
			return 0, &NoMatchError{Locale: t.locale, Phrase: text, Reason: errQuantityRange.Error()}
		}
		total += time.Duration(qty) * unit
		matched = true
		prevEnd = c.End
	}
	if !matched {
		return 0, &NoMatchError{Locale: t.locale, Phrase: text}
	}
	return total, nil
}

type sequenceMatch struct {
	Candidate
	tied []Candidate
	err  error
}

// scanSequence walks the phrase left to right and takes the longest form
// starting at each position, skipping over what it consumed.
func (t *PatternTable) scanSequence(text string) []sequenceMatch {
	var out []sequenceMatch
	if t.mode == modeNone {
		for i := 0; i < len(text); {
			m, ok := t.longestAt(func(e entry) (int, bool) {
				if strings.HasPrefix(text[i:], e.text) {
					return i + len(e.text), true
				}
				return 0, false
			}, i)
			if !ok {
				_, size := utf8.DecodeRuneInString(text[i:])
				i += size
				continue
			}
			out = append(out, m)
			i = m.End
		}
		return out
	}

	toks := words(t.tokenize(text))
	for i := 0; i < len(toks); {
		m, ok := t.longestAt(func(e entry) (int, bool) {
			n := len(e.tokens)
			if i+n <= len(toks) && tokensEqual(toks[i:i+n], e.tokens) {
				return toks[i+n-1].end, true
			}
			return 0, false
		}, toks[i].start)
		if !ok {
			i++
			continue
		}
		out = append(out, m)
		for i < len(toks) && toks[i].start < m.End {
			i++
		}
	}
	return out
}

func (t *PatternTable) longestAt(match func(entry) (int, bool), start int) (sequenceMatch, bool) {
	var cands []Candidate
	for _, e := range t.entries {
		if end, ok := match(e); ok {
			cands = append(cands, Candidate{Unit: e.unit, Form: e.text, Start: start, End: end})
		}
	}
	if len(cands) == 0 {
		return sequenceMatch{}, false
	}
	best, err := t.bestCandidate("", cands)
	if err != nil {
		amb := err.(*AmbiguousMatchError)
		return sequenceMatch{Candidate: amb.Candidates[0], tied: amb.Candidates, err: err}, true
	}
	return sequenceMatch{Candidate: best}, true
}
