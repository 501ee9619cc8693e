// Package scan locates relative-time phrases inside longer text such as an
// extracted article, and parses each one with a locale's pattern table.
package scan

import (
	"errors"
	"strings"

	"github.com/japaniel/timeago/pkg/timeago"
)

// Hit is a phrase found in text together with its parsed duration.
type Hit struct {
	Phrase   string
	Duration timeago.Duration
}

// Scanner runs a Segmenter over text and keeps the segments that parse.
type Scanner struct {
	Table     *timeago.PatternTable
	Segmenter Segmenter

	// OnAmbiguous, if set, receives segments that matched several units.
	OnAmbiguous func(error)
}

// ForTable returns a scanner with the segmenter suited to the table's locale.
func ForTable(table *timeago.PatternTable) (*Scanner, error) {
	if table.Separator() == "" && isJapanese(table.Locale()) {
		seg, err := NewJapaneseSegmenter()
		if err != nil {
			return nil, err
		}
		return &Scanner{Table: table, Segmenter: seg}, nil
	}
	return &Scanner{Table: table, Segmenter: SentenceSegmenter{}}, nil
}

func isJapanese(locale string) bool {
	return locale == "ja" || strings.HasPrefix(locale, "ja-")
}

// Find returns every parsable phrase in text, in order of appearance.
// Segments without a unit word are skipped silently.
func (s *Scanner) Find(text string) []Hit {
	var hits []Hit
	for _, seg := range s.Segmenter.Segments(text) {
		d, err := s.Table.Parse(seg)
		if err != nil {
			if errors.Is(err, timeago.ErrAmbiguous) && s.OnAmbiguous != nil {
				s.OnAmbiguous(err)
			}
			continue
		}
		hits = append(hits, Hit{Phrase: seg, Duration: d})
	}
	return hits
}
