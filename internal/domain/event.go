package domain

import (
	"encoding/json"
	"fmt"
)

const (
	// Unavailable is the placeholder for display fields that have no value.
	Unavailable = "N/A"

	// UnknownLocation is displayed when an event has no location at all.
	UnknownLocation = "Ei tiedossa"

	// EntryClosesPrefix precedes the entry end date when the entry start is unknown.
	EntryClosesPrefix = "päättyy "
)

// Coordinates is a WGS-84 latitude/longitude pair. It serializes as a
// two-element [lat, lon] array in both the cache file and the result file.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode coordinates: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode coordinates: want 2 values, got %d", len(pair))
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}

// RawEvent is one record of the event API. Nested fields are kept as raw JSON
// and decoded leniently during normalization, because their shape is not
// reliable upstream.
type RawEvent struct {
	EventType      Text            `json:"eventType"`
	Name           Text            `json:"name"`
	Description    Text            `json:"description"`
	Location       Text            `json:"location"`
	StartDate      Text            `json:"startDate"`
	EndDate        Text            `json:"endDate"`
	EntryStartDate Text            `json:"entryStartDate"`
	EntryEndDate   Text            `json:"entryEndDate"`
	Cost           json.RawMessage `json:"cost"`
	CostMember     json.RawMessage `json:"costMember"`
	Organizer      json.RawMessage `json:"organizer"`
	ContactInfo    json.RawMessage `json:"contactInfo"`
	Judges         json.RawMessage `json:"judges"`
	Classes        json.RawMessage `json:"classes"`
}

// ParseRawEvent decodes a single event record. It fails only when the record
// is not a JSON object; field-level type drift is absorbed by [Text] and the
// raw nested fields.
func ParseRawEvent(data []byte) (RawEvent, error) {
	var raw RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawEvent{}, fmt.Errorf("parse raw event: %w", err)
	}
	return raw, nil
}

// StartYear returns the calendar year of the event's start date, or false when
// the start date does not parse.
func (e RawEvent) StartYear() (int, bool) {
	ts := ParseTimestamp(string(e.StartDate))
	if !ts.Valid {
		return 0, false
	}
	return ts.Time.Year(), true
}

// ClassEntry is one trial class (ALO, AVO, VOI, ...) held on a given date.
type ClassEntry struct {
	Class Text `json:"class"`
	Date  Text `json:"date"`
}

// Contact is the name/phone/email triple of an event official or secretary.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// NormalizedEvent is the flat, display-ready record written to the result file.
type NormalizedEvent struct {
	Type        string          `json:"type"`
	Levels      string          `json:"levels"`
	Date        string          `json:"date"`
	DateSort    string          `json:"date_sort"`
	EndDateSort *string         `json:"end_date_sort"`
	EntryDate   string          `json:"entry_date"`
	Location    string          `json:"location"`
	Coordinates *Coordinates    `json:"coordinates"`
	Name        string          `json:"name"`
	Organizer   string          `json:"organizer"`
	Official    Contact         `json:"official"`
	Secretary   Contact         `json:"secretary"`
	Judges      []string        `json:"judges"`
	Description string          `json:"description"`
	Cost        json.RawMessage `json:"cost"`
	CostMember  json.RawMessage `json:"cost_member"`
	Classes     json.RawMessage `json:"classes"`
}
