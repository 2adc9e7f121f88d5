package weather

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(p *fakeProvider, bestGuess bool) *Service {
	return NewService(
		NewResolver(p, ResolverConfig{BestGuess: bestGuess}, nil),
		NewFetcher(p, nil, false, nil),
	)
}

func TestReportSinglePlace(t *testing.T) {
	p := newFakeProvider()
	p.find["Abu Dhabi"] = []PlaceMatch{abuDhabi}
	p.conditions[abuDhabi.ID] = Conditions{
		Description:   "clear sky",
		TempKelvin:    303.15,
		HumidityPct:   40,
		WindSpeedMS:   4.1,
		WindDirection: bearing(90),
	}

	report, err := newTestService(p, true).Report(context.Background(), ByText("Abu Dhabi", false))
	require.NoError(t, err)
	require.NotNil(t, report.Snapshot)
	assert.Nil(t, report.Range)
	assert.Equal(t, "Abu Dhabi,AE: clear sky 30.0°C (86.0°F) Humidity: 40% 4.1m/s (←)", report.Text)
}

func TestReportAmbiguousRange(t *testing.T) {
	p := newFakeProvider()
	p.find["Springfield,US"] = []PlaceMatch{springA, springB, springC}
	p.conditions[springA.ID] = Conditions{TempKelvin: 288.15}
	p.conditions[springB.ID] = Conditions{TempKelvin: 283.15}
	p.conditions[springC.ID] = Conditions{TempKelvin: 293.15}

	report, err := newTestService(p, true).Report(context.Background(), ByText("Springfield,US", false))
	require.NoError(t, err)
	require.NotNil(t, report.Range)
	require.Len(t, report.Snapshots, 3)

	rng := *report.Range
	assert.LessOrEqual(t, rng.MinC, rng.MaxC)
	assert.LessOrEqual(t, rng.MinF, rng.MaxF)

	minC, maxC := report.Snapshots[0].TempC, report.Snapshots[0].TempC
	for _, s := range report.Snapshots {
		if s.TempC < minC {
			minC = s.TempC
		}
		if s.TempC > maxC {
			maxC = s.TempC
		}
	}
	assert.Equal(t, minC, rng.MinC)
	assert.Equal(t, maxC, rng.MaxC)

	assert.Equal(t,
		"Springfield,US: 10.0°C - 20.0°C (50.0°F - 68.0°F) Ambiguous results for 'Springfield,US', "+
			"use place id 4409896 for a precise lookup or visit https://openweathermap.org/find?q=Springfield",
		report.Text)
}

func TestStoredRequest(t *testing.T) {
	text := ByText("London", false)

	assert.Equal(t, ByID(londonGB.ID), StoredRequest(text, ResolvedPlace{Primary: londonGB}))
	assert.Equal(t, text, StoredRequest(text, ResolvedPlace{Primary: springA, Candidates: []PlaceMatch{springA, springB}}))

	coords := ByCoordinates(1, 2)
	assert.Equal(t, coords, StoredRequest(coords, ResolvedPlace{Primary: PlaceMatch{Name: "1,2", Lat: 1, Lon: 2}}))
}

func TestReportAirQualityCalls(t *testing.T) {
	p := newFakeProvider()
	p.find["Springfield,US"] = []PlaceMatch{springA, springB, springC}
	p.find["Abu Dhabi"] = []PlaceMatch{abuDhabi}
	for _, place := range []PlaceMatch{springA, springB, springC, abuDhabi} {
		p.conditions[place.ID] = Conditions{Description: "clear sky", TempKelvin: 290}
	}
	p.air = &AirQuality{Index: 1}

	service := NewService(
		NewResolver(p, ResolverConfig{BestGuess: true}, nil),
		NewFetcher(p, nil, true, nil),
	)

	report, err := service.Report(context.Background(), ByText("Springfield,US", false))
	require.NoError(t, err)
	require.NotNil(t, report.Range)
	assert.Zero(t, p.airCalls)

	report, err = service.Report(context.Background(), ByText("Abu Dhabi", false))
	require.NoError(t, err)
	assert.Contains(t, report.Text, "AQI: 1 (Good)")
	assert.Equal(t, 1, p.airCalls)
}
