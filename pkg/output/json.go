package output

import (
	"encoding/json"
	"io"
	"time"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

type jsonSource struct {
	ID      int64     `json:"id"`
	Type    string    `json:"type"`
	Title   string    `json:"title,omitempty"`
	Author  string    `json:"author,omitempty"`
	Website string    `json:"website,omitempty"`
	URL     string    `json:"url,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

type jsonObservation struct {
	Index       int        `json:"index"`
	Locale      string     `json:"locale"`
	Phrase      string     `json:"phrase"`
	Unit        string     `json:"unit,omitempty"`
	Quantity    int        `json:"quantity,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Approximate bool       `json:"approximate,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// JSONOutput wraps the observations with their source and failure counts.
type JSONOutput struct {
	Source       jsonSource        `json:"source"`
	Observations []jsonObservation `json:"observations"`
	Parsed       int               `json:"parsed"`
	Failures     map[string]int    `json:"failures"`
}

// Format outputs a report as JSON
func (f *JSONFormatter) Format(r Report, w io.Writer) error {
	s := r.Source
	out := JSONOutput{
		Source: jsonSource{
			ID: s.ID, Type: s.SourceType, Title: s.Title, Author: s.Author,
			Website: s.Website, URL: s.URL, AddedAt: s.AddedAt,
		},
		Observations: make([]jsonObservation, 0, len(r.Observations)),
		Parsed:       r.Parsed(),
		Failures:     r.Failures,
	}
	if out.Failures == nil {
		out.Failures = map[string]int{}
	}
	for _, o := range r.Observations {
		jo := jsonObservation{
			Index:  o.ItemIndex,
			Locale: o.Locale,
			Phrase: o.Phrase,
			Unit:   o.Unit,
			Error:  o.ErrorKind,
		}
		if o.ErrorKind == "" {
			published := o.PublishedAt
			jo.Quantity = o.Quantity
			jo.PublishedAt = &published
			jo.Approximate = o.Approximate
		}
		out.Observations = append(out.Observations, jo)
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
