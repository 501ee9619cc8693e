package db

import "time"

// Error kinds recorded for phrases that did not resolve.
const (
	ErrorKindNoMatch       = "no_match"
	ErrorKindAmbiguous     = "ambiguous"
	ErrorKindUnknownLocale = "unknown_locale"
)

// Source is a provenance record for where phrases were collected.
type Source struct {
	ID                int64
	SourceType        string
	Title             string
	Author            string
	Website           string
	URL               string
	Meta              string
	AddedAt           time.Time
	LastProcessedItem int
}

// Observation is one phrase of a source and what it resolved to. Failed
// phrases keep an ErrorKind and leave Unit empty.
type Observation struct {
	ID          int64
	SourceID    int64
	ItemIndex   int
	Locale      string
	Phrase      string
	Unit        string
	Quantity    int
	PublishedAt time.Time
	Approximate bool
	ErrorKind   string
	CreatedAt   time.Time
}
