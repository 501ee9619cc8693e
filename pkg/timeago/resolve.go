package timeago

import (
	"math"
	"time"
)

// Timestamp is an absolute time reconstructed from a Duration. Approximate is
// set when the phrase only pins the time down to a day or coarser.
type Timestamp struct {
	Time        time.Time
	Approximate bool
}

// maxResolveYears bounds how far back Resolve goes. Larger quantities are
// clamped and the result is marked approximate.
const maxResolveYears = 1_000_000_000

// Resolve subtracts d from now. Second, minute and hour phrases are exact.
// Coarser units are approximate and truncated to the hour. Years subtract one
// extra day so a renderer does not show "12 months ago".
func Resolve(d Duration, now time.Time) Timestamp {
	now = now.UTC()
	if !d.Unit.valid() {
		return Timestamp{Time: now}
	}
	n := int64(d.Quantity)
	clamped := false
	if limit := maxResolveYears * int64(Year.Approx()/d.Unit.Approx()); n > limit {
		n, clamped = limit, true
	}

	var ts Timestamp
	switch d.Unit {
	case Second, Minute, Hour:
		unit := d.Unit.Approx()
		if n <= math.MaxInt64/int64(unit) {
			ts.Time = now.Add(-time.Duration(n) * unit)
			break
		}
		// Too long for a time.Duration: step back whole days, then the rest.
		perDay := int64(24 * time.Hour / unit)
		ts.Time = now.AddDate(0, 0, -int(n/perDay)).Add(-time.Duration(n%perDay) * unit)
	case Day:
		ts = Timestamp{Time: now.AddDate(0, 0, -int(n)), Approximate: true}
	case Week:
		ts = Timestamp{Time: now.AddDate(0, 0, -7*int(n)), Approximate: true}
	case Month:
		ts = Timestamp{Time: now.AddDate(0, -int(n), 0), Approximate: true}
	case Year:
		ts = Timestamp{Time: now.AddDate(-int(n), 0, -1), Approximate: true}
	}
	if clamped {
		ts.Approximate = true
	}
	if ts.Approximate {
		ts.Time = ts.Time.Truncate(time.Hour)
	}
	return ts
}
