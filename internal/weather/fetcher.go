package weather

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Fetcher retrieves current conditions, and optionally air quality, for
// resolved places.
type Fetcher struct {
	provider   Provider
	cache      SnapshotCache
	airQuality bool
	logger     *zap.Logger
	now        func() time.Time
}

// NewFetcher creates a Fetcher. cache may be nil to always hit the provider.
func NewFetcher(provider Provider, cache SnapshotCache, airQuality bool, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		provider:   provider,
		cache:      cache,
		airQuality: airQuality,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Fetch returns the current snapshot for a place. Air quality failures are
// logged and leave the field empty.
func (f *Fetcher) Fetch(ctx context.Context, place PlaceMatch) (WeatherSnapshot, error) {
	return f.fetch(ctx, place, f.airQuality)
}

// FetchAll fetches every place in order and fails on the first error.
// Air quality is never requested: range replies do not show it.
func (f *Fetcher) FetchAll(ctx context.Context, places []PlaceMatch) ([]WeatherSnapshot, error) {
	out := make([]WeatherSnapshot, 0, len(places))
	for _, p := range places {
		snap, err := f.fetch(ctx, p, false)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// fetch only saves snapshots that carry everything Fetch would have asked
// for, so a range lookup never caches a snapshot without air quality.
func (f *Fetcher) fetch(ctx context.Context, place PlaceMatch, withAir bool) (WeatherSnapshot, error) {
	cacheable := f.cache != nil && place.ID > 0
	if cacheable {
		if snap, ok := f.cache.Get(place.ID); ok {
			f.logger.Debug("snapshot cache hit", zap.Int64("place_id", place.ID))
			return snap, nil
		}
	}

	cond, err := f.provider.CurrentConditions(ctx, place)
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("current conditions for %s: %w", place.Label(), err)
	}

	snap := WeatherSnapshot{
		Place:         place,
		Description:   cond.Description,
		TempC:         kelvinToCelsius(cond.TempKelvin),
		TempF:         kelvinToFahrenheit(cond.TempKelvin),
		HumidityPct:   cond.HumidityPct,
		WindSpeed:     cond.WindSpeedMS,
		WindDirection: cond.WindDirection,
		FetchedAt:     f.now(),
	}

	if withAir {
		aq, err := f.provider.AirQuality(ctx, place.Lat, place.Lon)
		if err != nil {
			f.logger.Warn("air quality unavailable",
				zap.Int64("place_id", place.ID),
				zap.Error(err))
		} else {
			snap.AirQuality = &aq
		}
	}

	if cacheable && withAir == f.airQuality {
		f.cache.Save(snap)
	}
	return snap, nil
}
