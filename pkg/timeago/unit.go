// Package timeago turns localized "time ago" phrases such as "2 hours ago",
// "vor 3 Tagen" or "2時間前" into a unit and a quantity.
//
// A PatternTable holds the word-forms one locale uses for each unit. Parse
// finds the most specific word-form in a phrase, extracts the numeral next to
// it and returns a Duration. Tables are immutable, so a single table can be
// shared by any number of goroutines.
package timeago

import (
	"fmt"
	"strings"
	"time"
)

// Unit is a time granularity recognised in phrases.
type Unit int

const (
	Second Unit = iota
	Minute
	Hour
	Day
	Week
	Month
	Year
)

var unitNames = [...]string{"seconds", "minutes", "hours", "days", "weeks", "months", "years"}

// Units returns every unit from Second to Year.
func Units() []Unit {
	return []Unit{Second, Minute, Hour, Day, Week, Month, Year}
}

// String returns the plural key name used in pattern data, e.g. "hours".
func (u Unit) String() string {
	if !u.valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

func (u Unit) valid() bool {
	return u >= Second && u <= Year
}

// ParseUnit accepts "hours", "hour" and any casing of them.
func ParseUnit(s string) (Unit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range unitNames {
		if name == n || name == strings.TrimSuffix(n, "s") {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}

// Approx returns the nominal length of one unit. Months count as 30 days and
// years as 365.
func (u Unit) Approx() time.Duration {
	switch u {
	case Second:
		return time.Second
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Day:
		return 24 * time.Hour
	case Week:
		return 7 * 24 * time.Hour
	case Month:
		return 30 * 24 * time.Hour
	case Year:
		return 365 * 24 * time.Hour
	}
	return 0
}

// Duration is the result of parsing a phrase.
type Duration struct {
	Unit     Unit
	Quantity int
}

func (d Duration) String() string {
	name := d.Unit.String()
	if d.Quantity == 1 {
		name = strings.TrimSuffix(name, "s")
	}
	return fmt.Sprintf("%d %s", d.Quantity, name)
}
