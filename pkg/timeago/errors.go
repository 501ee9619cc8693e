package timeago

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. The concrete error types below match them.
var (
	ErrConfiguration = errors.New("timeago: invalid pattern table")
	ErrNoMatch       = errors.New("timeago: no match")
	ErrAmbiguous     = errors.New("timeago: ambiguous match")
)

// ConfigurationError reports a malformed pattern table. It is returned at
// construction time and only affects the locale it names.
type ConfigurationError struct {
	Locale string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("timeago: locale %q: invalid pattern table: %s", e.Locale, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NoMatchError is returned when a phrase holds no unit word and no special case.
type NoMatchError struct {
	Locale string
	Phrase string
	Reason string
}

func (e *NoMatchError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no unit word found"
	}
	return fmt.Sprintf("timeago: locale %q: cannot parse %q: %s", e.Locale, e.Phrase, reason)
}

func (e *NoMatchError) Is(target error) bool { return target == ErrNoMatch }

// Candidate is a unit word-form found in a normalised phrase. Start and End
// are byte offsets into that phrase.
type Candidate struct {
	Unit  Unit
	Form  string
	Start int
	End   int
}

// AmbiguousMatchError is returned when word-forms of different units tie for
// the longest match. A well-formed table never produces it.
type AmbiguousMatchError struct {
	Locale     string
	Phrase     string
	Candidates []Candidate
}

func (e *AmbiguousMatchError) Error() string {
	parts := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		parts = append(parts, fmt.Sprintf("%s=%q", c.Unit, c.Form))
	}
	return fmt.Sprintf("timeago: locale %q: ambiguous phrase %q: %s", e.Locale, e.Phrase, strings.Join(parts, ", "))
}

func (e *AmbiguousMatchError) Is(target error) bool { return target == ErrAmbiguous }
