package weather

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var abuDhabi = PlaceMatch{ID: 292968, Name: "Abu Dhabi", Country: "AE", Lat: 24.4667, Lon: 54.3667}

func bearing(deg float64) *float64 { return &deg }

func TestFetchConvertsKelvin(t *testing.T) {
	p := newFakeProvider()
	p.conditions[abuDhabi.ID] = Conditions{
		Description:   "clear sky",
		TempKelvin:    303.15,
		HumidityPct:   40,
		WindSpeedMS:   4.1,
		WindDirection: bearing(90),
	}
	f := NewFetcher(p, nil, false, nil)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	snap, err := f.Fetch(context.Background(), abuDhabi)
	require.NoError(t, err)

	assert.InDelta(t, 30.0, snap.TempC, 1e-9)
	assert.InDelta(t, 86.0, snap.TempF, 1e-9)
	assert.Equal(t, 40, snap.HumidityPct)
	assert.Equal(t, abuDhabi, snap.Place)
	assert.Equal(t, fixed, snap.FetchedAt)
	assert.Nil(t, snap.AirQuality)
}

func TestFetchAirQualityFailureDegrades(t *testing.T) {
	p := newFakeProvider()
	p.conditions[abuDhabi.ID] = Conditions{Description: "haze", TempKelvin: 300}
	p.airErr = ErrProvider
	f := NewFetcher(p, nil, true, nil)

	snap, err := f.Fetch(context.Background(), abuDhabi)
	require.NoError(t, err)
	assert.Nil(t, snap.AirQuality)
	assert.Equal(t, "haze", snap.Description)
}

func TestFetchAirQualityIncluded(t *testing.T) {
	p := newFakeProvider()
	p.conditions[abuDhabi.ID] = Conditions{Description: "haze", TempKelvin: 300}
	p.air = &AirQuality{Index: 2, Components: map[string]float64{"pm10": 30}}
	f := NewFetcher(p, nil, true, nil)

	snap, err := f.Fetch(context.Background(), abuDhabi)
	require.NoError(t, err)
	require.NotNil(t, snap.AirQuality)
	assert.Equal(t, 2, snap.AirQuality.Index)
}

func TestFetchConditionsError(t *testing.T) {
	p := newFakeProvider()
	p.condErr = ErrProvider
	f := NewFetcher(p, nil, false, nil)

	_, err := f.Fetch(context.Background(), abuDhabi)
	assert.ErrorIs(t, err, ErrProvider)
}

func TestFetchUsesCache(t *testing.T) {
	p := newFakeProvider()
	p.conditions[abuDhabi.ID] = Conditions{Description: "clear sky", TempKelvin: 303.15}
	cache := &mapCache{data: map[int64]WeatherSnapshot{}}
	f := NewFetcher(p, cache, false, nil)

	first, err := f.Fetch(context.Background(), abuDhabi)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), abuDhabi)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.condCalls)
}

func TestFetchSkipsCacheWithoutPlaceID(t *testing.T) {
	p := newFakeProvider()
	p.conditions[0] = Conditions{Description: "clear sky", TempKelvin: 303.15}
	cache := &mapCache{data: map[int64]WeatherSnapshot{}}
	f := NewFetcher(p, cache, false, nil)

	place := PlaceMatch{Name: "24.4667,54.3667", Lat: 24.4667, Lon: 54.3667}
	_, err := f.Fetch(context.Background(), place)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), place)
	require.NoError(t, err)

	assert.Equal(t, 2, p.condCalls)
	assert.Empty(t, cache.data)
}

func TestFetchAllStopsOnError(t *testing.T) {
	p := newFakeProvider()
	p.conditions[springA.ID] = Conditions{TempKelvin: 283.15}
	f := NewFetcher(p, nil, false, nil)

	_, err := f.FetchAll(context.Background(), []PlaceMatch{springA, springB})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchAllSkipsAirQuality(t *testing.T) {
	p := newFakeProvider()
	p.conditions[springA.ID] = Conditions{TempKelvin: 283.15}
	p.conditions[springB.ID] = Conditions{TempKelvin: 293.15}
	p.air = &AirQuality{Index: 2}
	cache := &mapCache{data: map[int64]WeatherSnapshot{}}
	f := NewFetcher(p, cache, true, nil)

	snaps, err := f.FetchAll(context.Background(), []PlaceMatch{springA, springB})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Zero(t, p.airCalls)
	assert.Empty(t, cache.data)

	snap, err := f.Fetch(context.Background(), springA)
	require.NoError(t, err)
	require.NotNil(t, snap.AirQuality)
	assert.Equal(t, 1, p.airCalls)
}
