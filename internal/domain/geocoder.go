package domain

import "context"

// GeocodingResult is the outcome of one geocoder query. Found is false when
// the provider answered but had no match.
type GeocodingResult struct {
	Coordinates Coordinates
	DisplayName string
	Found       bool
}

// Geocoder turns a free-text place query into coordinates.
type Geocoder interface {
	// Geocode returns the best match for query. A provider-side "no match" is
	// not an error; it is reported with Found set to false.
	Geocode(ctx context.Context, query string) (GeocodingResult, error)
}
