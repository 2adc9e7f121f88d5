package weather

import (
	"context"
	"time"
)

// Provider abstracts the weather data source (OpenWeatherMap).
// Implementations return ErrNotFound, ErrUnauthorized or an error wrapping
// ErrProvider.
type Provider interface {
	Name() string
	FindPlaces(ctx context.Context, query string, mode MatchMode) ([]PlaceMatch, error)
	PlaceByID(ctx context.Context, id int64) (PlaceMatch, error)
	PlaceByCoordinates(ctx context.Context, lat, lon float64) (PlaceMatch, error)
	CurrentConditions(ctx context.Context, place PlaceMatch) (Conditions, error)
	AirQuality(ctx context.Context, lat, lon float64) (AirQuality, error)
}

// LocationStore remembers the last location each nick asked for.
// Nicks are case-sensitive keys; Set overwrites.
type LocationStore interface {
	Get(ctx context.Context, nick string) (LocationRequest, bool, error)
	Set(ctx context.Context, nick string, req LocationRequest) error
}

// SnapshotCache is the contract for short-lived snapshot caching.
type SnapshotCache interface {
	Get(placeID int64) (WeatherSnapshot, bool)
	Save(snapshot WeatherSnapshot)
	Sweep(now time.Time) int
}
