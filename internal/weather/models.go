package weather

import (
	"fmt"
	"strconv"
	"time"
)

// RequestKind identifies which form of LocationRequest is populated.
type RequestKind string

const (
	KindID          RequestKind = "id"
	KindCoordinates RequestKind = "coordinates"
	KindText        RequestKind = "text"
)

// LocationRequest is a parsed user location. Exactly one form is active,
// selected by Kind; use ByID, ByCoordinates or ByText to build one.
type LocationRequest struct {
	Kind RequestKind `json:"kind"`

	PlaceID int64 `json:"placeId,omitempty"`

	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`

	Query      string `json:"query,omitempty"`
	ExactMatch bool   `json:"exact,omitempty"`
}

func ByID(id int64) LocationRequest {
	return LocationRequest{Kind: KindID, PlaceID: id}
}

func ByCoordinates(lat, lon float64) LocationRequest {
	return LocationRequest{Kind: KindCoordinates, Lat: lat, Lon: lon}
}

func ByText(query string, exact bool) LocationRequest {
	return LocationRequest{Kind: KindText, Query: query, ExactMatch: exact}
}

// Validate checks the variant invariants, mainly for records read back from a store.
func (r LocationRequest) Validate() error {
	switch r.Kind {
	case KindID:
		if r.PlaceID <= 0 {
			return fmt.Errorf("place id must be positive, got %d", r.PlaceID)
		}
	case KindCoordinates:
		if !latInRange(r.Lat) || !lonInRange(r.Lon) {
			return fmt.Errorf("coordinates out of range: %v,%v", r.Lat, r.Lon)
		}
	case KindText:
	default:
		return fmt.Errorf("unknown location kind %q", r.Kind)
	}
	return nil
}

// String renders the request the way a user would type it.
func (r LocationRequest) String() string {
	switch r.Kind {
	case KindID:
		return strconv.FormatInt(r.PlaceID, 10)
	case KindCoordinates:
		return strconv.FormatFloat(r.Lat, 'f', -1, 64) + ";" + strconv.FormatFloat(r.Lon, 'f', -1, 64)
	case KindText:
		if r.ExactMatch {
			return "!" + r.Query
		}
		return r.Query
	}
	return ""
}

// MatchMode selects the provider text-search semantics.
type MatchMode string

const (
	MatchExact MatchMode = "accurate"
	MatchLike  MatchMode = "like"
)

// PlaceMatch is a single place known to the provider.
type PlaceMatch struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Label returns "Name,CC", or just the name when the country is unknown.
func (p PlaceMatch) Label() string {
	if p.Country == "" {
		return p.Name
	}
	return p.Name + "," + p.Country
}

// ResolvedPlace is the outcome of a successful lookup. When more than one
// candidate is present the result is ambiguous and Primary is the first one.
type ResolvedPlace struct {
	Primary    PlaceMatch   `json:"primary"`
	Candidates []PlaceMatch `json:"candidates,omitempty"`
}

func (r ResolvedPlace) Ambiguous() bool {
	return len(r.Candidates) > 1
}

// Conditions is the provider's raw current-conditions reading.
type Conditions struct {
	Description   string
	TempKelvin    float64
	HumidityPct   int
	WindSpeedMS   float64
	WindDirection *float64
}

// AirQuality is the provider's air pollution index with component
// concentrations in μg/m3 keyed by provider name (co, no2, o3, pm2_5, pm10).
type AirQuality struct {
	Index      int                `json:"aqi"`
	Components map[string]float64 `json:"components,omitempty"`
}

// WeatherSnapshot is the normalized current weather at a place.
type WeatherSnapshot struct {
	Place         PlaceMatch  `json:"place"`
	Description   string      `json:"description"`
	TempC         float64     `json:"tempC"`
	TempF         float64     `json:"tempF"`
	HumidityPct   int         `json:"humidityPercent"`
	WindSpeed     float64     `json:"windSpeed"`
	WindDirection *float64    `json:"windDirection,omitempty"`
	AirQuality    *AirQuality `json:"airQuality,omitempty"`
	FetchedAt     time.Time   `json:"fetchedAt"` // always UTC
}

// TemperatureRange summarises the spread across ambiguous candidates.
type TemperatureRange struct {
	MinC float64 `json:"minC"`
	MaxC float64 `json:"maxC"`
	MinF float64 `json:"minF"`
	MaxF float64 `json:"maxF"`
}

func latInRange(lat float64) bool { return lat >= -90 && lat <= 90 }

func lonInRange(lon float64) bool { return lon >= -180 && lon <= 180 }
