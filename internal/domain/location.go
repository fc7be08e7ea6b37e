package domain

import "strings"

// countrySuffix narrows geocoder queries to Finland.
const countrySuffix = ", Finland"

// Suffixes organizers append to mean "and surroundings". Longer forms first.
var surroundingsSuffixes = []string{" ympäristö", " ymp.", " ymp"}

// CleanLocation strips the parts of a free-text location that confuse the
// geocoder: anything from the first "(" onward and a trailing "ymp"/"ympäristö"
// marker. "Kuopio ymp(seutu)" becomes "Kuopio".
func CleanLocation(location string) string {
	s := location
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	for _, suffix := range surroundingsSuffixes {
		if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}
	return strings.TrimSpace(s)
}

// QueryVariants returns the geocoder queries to try for a location, in order:
// the raw text with surrounding whitespace trimmed, then the cleaned text, both
// qualified with the country. Duplicates and empty variants are dropped.
func QueryVariants(location string) []string {
	var variants []string
	seen := make(map[string]bool, 2)
	for _, base := range []string{strings.TrimSpace(location), CleanLocation(location)} {
		if base == "" {
			continue
		}
		q := base + countrySuffix
		if seen[q] {
			continue
		}
		seen[q] = true
		variants = append(variants, q)
	}
	return variants
}

// KnownPlace is a fallback entry: a location containing Name
// (case-insensitively) resolves to Coordinates.
type KnownPlace struct {
	Name        string
	Coordinates Coordinates
}

// KnownPlaces is an ordered fallback table. Order matters when a location
// mentions more than one place.
type KnownPlaces []KnownPlace

// DefaultKnownPlaces covers the cities where most SNJ trials are held.
var DefaultKnownPlaces = KnownPlaces{
	{Name: "kuopio", Coordinates: Coordinates{Lat: 62.8924, Lon: 27.6782}},
	{Name: "helsinki", Coordinates: Coordinates{Lat: 60.1699, Lon: 24.9384}},
	{Name: "tampere", Coordinates: Coordinates{Lat: 61.4978, Lon: 23.7610}},
	{Name: "oulu", Coordinates: Coordinates{Lat: 65.0121, Lon: 25.4651}},
	{Name: "turku", Coordinates: Coordinates{Lat: 60.4518, Lon: 22.2666}},
}

// Match returns the first place whose name occurs in location, ignoring case.
func (p KnownPlaces) Match(location string) (KnownPlace, bool) {
	lower := strings.ToLower(location)
	for _, place := range p {
		if place.Name != "" && strings.Contains(lower, strings.ToLower(place.Name)) {
			return place, true
		}
	}
	return KnownPlace{}, false
}
