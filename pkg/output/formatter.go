// Package output renders the stored observations of a source.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/timeago/pkg/db"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Report is everything known about one source.
type Report struct {
	Source       db.Source
	Observations []db.Observation
	// Failures counts observations per error kind.
	Failures map[string]int
}

// Parsed is the number of observations that resolved to a timestamp.
func (r Report) Parsed() int {
	n := 0
	for _, o := range r.Observations {
		if o.ErrorKind == "" {
			n++
		}
	}
	return n
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(r Report, w io.Writer) error
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table or json)", s)
	}
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	default:
		return &TableFormatter{}
	}
}
