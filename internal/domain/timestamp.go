package domain

import (
	"strings"
	"time"
	_ "time/tzdata" // Europe/Helsinki must resolve on minimal container images.
)

// MaxSortDate is the date_sort value of an event whose start date does not
// parse. It sorts after every real date.
const MaxSortDate = "9999-12-31T23:59:59Z"

const (
	sortLayout     = time.RFC3339
	dayLayout      = "02.01.2006"
	dayOnlyLayout  = "02."
	dayMonthLayout = "02.01."
)

// timestampLayouts are tried in order. The event API mostly emits RFC 3339 with
// a "Z" suffix and milliseconds, but older records lack the zone or the time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// helsinki is the zone used for trial class weekdays.
var helsinki = mustLoadLocation("Europe/Helsinki")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("load time zone " + name + ": " + err.Error())
	}
	return loc
}

// Timestamp is the result of parsing an upstream date string. Raw keeps the
// original text so callers can fall back to it for display.
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// ParseTimestamp parses an ISO-8601 timestamp. Zone-less values are taken as
// UTC. Empty or unparseable input yields an invalid Timestamp, never an error.
func ParseTimestamp(raw string) Timestamp {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Timestamp{Raw: raw}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Raw: raw, Time: t, Valid: true}
		}
	}
	return Timestamp{Raw: raw}
}

// SortKey returns the timestamp as RFC 3339 in UTC, or [MaxSortDate] when
// invalid. Lexicographic order of sort keys is chronological order.
func (ts Timestamp) SortKey() string {
	if !ts.Valid {
		return MaxSortDate
	}
	return ts.Time.UTC().Format(sortLayout)
}

// sameDay reports whether a and b fall on the same calendar date, each read in
// its own offset.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// weekdayAbbrev is indexed by time.Weekday (Sunday first).
var weekdayAbbrev = [...]string{"Su", "Ma", "Ti", "Ke", "To", "Pe", "La"}

// weekdayRank orders weekdays Monday first.
func weekdayRank(d time.Weekday) int {
	return (int(d) + 6) % 7
}
