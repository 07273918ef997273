package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder names station locations from their declared coordinates.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// Station is a station's declared location, optionally enriched with a place name.
type Station struct {
	ID        string
	File      string
	Lat       float64
	Lon       float64
	PlaceName string
}
