package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Normalize converts a raw event into the display schema. coords is the
// resolved location, or nil when unknown. Normalize never fails: missing or
// malformed fields degrade to placeholders.
func Normalize(raw RawEvent, coords *Coordinates) NormalizedEvent {
	start := ParseTimestamp(string(raw.StartDate))
	end := ParseTimestamp(string(raw.EndDate))
	contact := decodeObject(raw.ContactInfo)

	event := NormalizedEvent{
		Type:        textOr(raw.EventType, Unavailable),
		Levels:      aggregateLevels(parseClasses(raw.Classes)),
		Date:        displayDate(start, end),
		DateSort:    start.SortKey(),
		EntryDate:   entryWindow(ParseTimestamp(string(raw.EntryStartDate)), ParseTimestamp(string(raw.EntryEndDate))),
		Location:    textOr(raw.Location, UnknownLocation),
		Coordinates: coords,
		Name:        string(raw.Name),
		Organizer:   textField(decodeObject(raw.Organizer), "name"),
		Official:    parseContact(contact["official"]),
		Secretary:   parseContact(contact["secretary"]),
		Judges:      parseJudges(raw.Judges),
		Description: string(raw.Description),
		Cost:        passthrough(raw.Cost, `""`),
		CostMember:  passthrough(raw.CostMember, `""`),
		Classes:     passthrough(raw.Classes, `[]`),
	}
	if end.Valid {
		key := end.SortKey()
		event.EndDateSort = &key
	}
	return event
}

func textOr(t Text, fallback string) string {
	if strings.TrimSpace(string(t)) == "" {
		return fallback
	}
	return string(t)
}

// displayDate renders "DD.MM.YYYY", or "DD.-DD.MM.YYYY" when the event ends on
// a later day. An unparseable start date is shown as its raw text.
func displayDate(start, end Timestamp) string {
	if !start.Valid {
		return start.Raw
	}
	if end.Valid && !sameDay(start.Time, end.Time) {
		return start.Time.Format(dayOnlyLayout) + "-" + end.Time.Format(dayLayout)
	}
	return start.Time.Format(dayLayout)
}

// entryWindow renders the entry period as "DD.MM.-DD.MM.", "päättyy DD.MM."
// when only the closing date is known, or "N/A".
func entryWindow(start, end Timestamp) string {
	switch {
	case start.Valid && end.Valid:
		return start.Time.Format(dayMonthLayout) + "-" + end.Time.Format(dayMonthLayout)
	case end.Valid:
		return EntryClosesPrefix + end.Time.Format(dayMonthLayout)
	default:
		return Unavailable
	}
}

// aggregateLevels summarizes classes as "ALO (La, Su), AVO (Su)": class names
// sorted, each with the Helsinki weekdays it runs on, Monday first. A class
// without any parseable date is listed by name alone.
func aggregateLevels(classes []ClassEntry) string {
	days := make(map[string]map[time.Weekday]bool)
	for _, c := range classes {
		name := string(c.Class)
		if name == "" {
			continue
		}
		set, ok := days[name]
		if !ok {
			set = make(map[time.Weekday]bool)
			days[name] = set
		}
		if ts := ParseTimestamp(string(c.Date)); ts.Valid {
			set[ts.Time.In(helsinki).Weekday()] = true
		}
	}
	if len(days) == 0 {
		return Unavailable
	}

	names := make([]string, 0, len(days))
	for name := range days {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		set := days[name]
		if len(set) == 0 {
			parts = append(parts, name)
			continue
		}
		weekdays := make([]time.Weekday, 0, len(set))
		for d := range set {
			weekdays = append(weekdays, d)
		}
		sort.Slice(weekdays, func(i, j int) bool {
			return weekdayRank(weekdays[i]) < weekdayRank(weekdays[j])
		})
		abbrevs := make([]string, len(weekdays))
		for i, d := range weekdays {
			abbrevs[i] = weekdayAbbrev[d]
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, strings.Join(abbrevs, ", ")))
	}
	return strings.Join(parts, ", ")
}
