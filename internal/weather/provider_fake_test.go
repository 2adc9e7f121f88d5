package weather

import (
	"context"
	"sync"
	"time"
)

// fakeProvider serves canned places and readings and counts calls.
type fakeProvider struct {
	mu sync.Mutex

	find       map[string][]PlaceMatch
	byID       map[int64]PlaceMatch
	conditions map[int64]Conditions
	air        *AirQuality

	findErr error
	condErr error
	airErr  error

	findCalls int
	condCalls int
	airCalls  int
	lastMode  MatchMode
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		find:       map[string][]PlaceMatch{},
		byID:       map[int64]PlaceMatch{},
		conditions: map[int64]Conditions{},
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FindPlaces(_ context.Context, query string, mode MatchMode) ([]PlaceMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	f.lastMode = mode
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.find[query], nil
}

func (f *fakeProvider) PlaceByID(_ context.Context, id int64) (PlaceMatch, error) {
	p, ok := f.byID[id]
	if !ok {
		return PlaceMatch{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeProvider) PlaceByCoordinates(_ context.Context, lat, lon float64) (PlaceMatch, error) {
	return PlaceMatch{Name: "Somewhere", Lat: lat, Lon: lon}, nil
}

func (f *fakeProvider) CurrentConditions(_ context.Context, place PlaceMatch) (Conditions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.condCalls++
	if f.condErr != nil {
		return Conditions{}, f.condErr
	}
	c, ok := f.conditions[place.ID]
	if !ok {
		return Conditions{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeProvider) AirQuality(_ context.Context, _, _ float64) (AirQuality, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.airCalls++
	if f.airErr != nil {
		return AirQuality{}, f.airErr
	}
	if f.air == nil {
		return AirQuality{}, ErrNotFound
	}
	return *f.air, nil
}

// mapCache is a minimal SnapshotCache without expiry.
type mapCache struct {
	data map[int64]WeatherSnapshot
}

func (c *mapCache) Get(id int64) (WeatherSnapshot, bool) {
	s, ok := c.data[id]
	return s, ok
}

func (c *mapCache) Save(s WeatherSnapshot) { c.data[s.Place.ID] = s }

func (c *mapCache) Sweep(time.Time) int { return 0 }
