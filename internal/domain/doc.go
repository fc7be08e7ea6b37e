// Package domain models the SNJ (Suomen Noutajakoirajärjestö) trial calendar
// and turns its event records into the flat display schema consumed by the
// koetutka map frontend.
//
// # Data Source
//
// Events come from the koekalenteri event API as a JSON array. The records are
// edited by hand in an admin UI over several years, so the shape drifts:
// nested objects may be missing, null, or replaced by plain strings, and dates
// may or may not carry a UTC marker. Every parser in this package degrades to
// an empty or placeholder value instead of rejecting the record.
//
// # Date Conventions
//
// Timestamps are ISO-8601, usually UTC with a trailing "Z":
//
//	"2026-05-10T08:00:00.000Z"
//
// Display strings are rendered in the timestamp's own offset:
//
//	single day:  "10.05.2026"
//	multi day:   "10.-11.05.2026"
//	entry window "01.03.-15.04." or "päättyy 15.04." or "N/A"
//
// Trial class weekdays are computed in Europe/Helsinki, because a class held
// on a Saturday morning is stored as Friday 21:00Z. Weekdays use the Finnish
// two-letter forms Ma, Ti, Ke, To, Pe, La, Su and are listed Monday first.
//
// A start date that fails to parse sorts last: its date_sort is [MaxSortDate].
//
// # Location Conventions
//
// The location field is free text typed by the organizer, e.g. "Kuopio",
// "Kuopio ymp" (ympäristö, "surroundings") or "Iisalmi (Peltosalmi)". The raw
// string is the coordinate cache key; only the geocoder query variants are
// cleaned. See [CleanLocation] and [QueryVariants].
//
// # Coordinate Cache
//
// The cache maps raw location strings to one of three states: never tried
// (absent), resolved to coordinates, or confirmed unresolvable. It only grows.
// See [CoordinateCache].
package domain
