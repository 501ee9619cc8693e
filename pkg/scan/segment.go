package scan

import (
	"strings"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Segmenter cuts running text into short candidate phrases.
type Segmenter interface {
	Segments(text string) []string
}

// DefaultMaxRunes bounds the length of a candidate phrase. Bylines and
// timestamps are short; longer segments are body text.
const DefaultMaxRunes = 48

// SentenceSegmenter splits on newlines, sentence punctuation and the
// separators sites put between byline fields.
type SentenceSegmenter struct {
	// MaxRunes drops longer segments. Zero means DefaultMaxRunes.
	MaxRunes int
}

func isBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '。', '！', '？', '.', '!', '?', '|', '·', '•':
		return true
	}
	return false
}

// Segments returns the trimmed, non-empty segments of text in order.
func (s SentenceSegmenter) Segments(text string) []string {
	limit := s.MaxRunes
	if limit <= 0 {
		limit = DefaultMaxRunes
	}
	var out []string
	for _, seg := range strings.FieldsFunc(text, isBoundary) {
		seg = strings.TrimSpace(seg)
		if seg == "" || utf8.RuneCountInString(seg) > limit {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// window is how many tokens before 前 a Japanese phrase may span.
const window = 4

// JapaneseSegmenter finds relative-time phrases in Japanese text, which has
// no spaces to split on. It morphologically analyses the text and emits the
// few tokens ending in 前 ("ago"), plus standalone words such as 昨日.
type JapaneseSegmenter struct {
	t *tokenizer.Tokenizer

	// Literals are words emitted on their own when they appear as a token.
	Literals []string
}

// NewJapaneseSegmenter loads the IPA dictionary.
func NewJapaneseSegmenter() (*JapaneseSegmenter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &JapaneseSegmenter{
		t:        t,
		Literals: []string{"昨日", "一昨日", "先週", "先月", "去年", "昨年"},
	}, nil
}

// Segments returns candidate phrases in the order they occur.
func (j *JapaneseSegmenter) Segments(text string) []string {
	var toks []tokenizer.Token
	for _, tok := range j.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		toks = append(toks, tok)
	}

	var out []string
	for i, tok := range toks {
		if j.isLiteral(tok.Surface) {
			out = append(out, tok.Surface)
			continue
		}
		if tok.Surface != "前" {
			continue
		}
		start := i
		for start > 0 && i-start < window && joinsPhrase(toks[start-1]) {
			start--
		}
		if start == i {
			continue
		}
		var b strings.Builder
		for _, t := range toks[start : i+1] {
			b.WriteString(t.Surface)
		}
		out = append(out, b.String())
	}
	return out
}

func (j *JapaneseSegmenter) isLiteral(s string) bool {
	for _, l := range j.Literals {
		if s == l {
			return true
		}
	}
	return false
}

// joinsPhrase reports whether a token can sit inside "3時間前". Particles,
// verbs and punctuation end the phrase, except the counter kana of か月.
func joinsPhrase(tok tokenizer.Token) bool {
	switch tok.Surface {
	case "か", "ヶ", "カ", "ヵ", "ケ":
		return true
	}
	features := tok.Features()
	if len(features) == 0 {
		return false
	}
	switch features[0] {
	case "助詞", "助動詞", "動詞", "記号":
		return false
	}
	return true
}
