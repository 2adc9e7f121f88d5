package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	londonGB = PlaceMatch{ID: 2643743, Name: "London", Country: "GB", Lat: 51.5085, Lon: -0.1257}
	londonCA = PlaceMatch{ID: 6058560, Name: "London", Country: "CA", Lat: 42.9834, Lon: -81.233}
	springA  = PlaceMatch{ID: 4409896, Name: "Springfield", Country: "US", Lat: 37.2153, Lon: -93.2982}
	springB  = PlaceMatch{ID: 4951788, Name: "Springfield", Country: "US", Lat: 42.1015, Lon: -72.5898}
	springC  = PlaceMatch{ID: 4250542, Name: "Springfield", Country: "US", Lat: 39.8017, Lon: -89.6437}
	springD  = PlaceMatch{ID: 4440076, Name: "Springfield", Country: "US", Lat: 36.5092, Lon: -86.885}
)

func TestResolveByID(t *testing.T) {
	p := newFakeProvider()
	p.byID[londonGB.ID] = londonGB
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	got, err := r.Resolve(context.Background(), ByID(londonGB.ID))
	require.NoError(t, err)
	assert.Equal(t, londonGB, got.Primary)
	assert.False(t, got.Ambiguous())

	_, err = r.Resolve(context.Background(), ByID(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveByCoordinates(t *testing.T) {
	r := NewResolver(newFakeProvider(), ResolverConfig{}, nil)

	got, err := r.Resolve(context.Background(), ByCoordinates(24.4667, 54.3667))
	require.NoError(t, err)
	assert.Equal(t, 24.4667, got.Primary.Lat)
	assert.Equal(t, 54.3667, got.Primary.Lon)
}

func TestResolveTextNoMatches(t *testing.T) {
	r := NewResolver(newFakeProvider(), ResolverConfig{BestGuess: true}, nil)

	_, err := r.Resolve(context.Background(), ByText("Atlantis", false))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveTextEmptyCitySkipsProvider(t *testing.T) {
	p := newFakeProvider()
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	_, err := r.Resolve(context.Background(), ByText("", false))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, p.findCalls)
}

func TestResolveTextMatchMode(t *testing.T) {
	p := newFakeProvider()
	p.find["London,GB"] = []PlaceMatch{londonGB}
	r := NewResolver(p, ResolverConfig{}, nil)

	_, err := r.Resolve(context.Background(), ByText("London,GB", true))
	require.NoError(t, err)
	assert.Equal(t, MatchExact, p.lastMode)

	_, err = r.Resolve(context.Background(), ByText("London,GB", false))
	require.NoError(t, err)
	assert.Equal(t, MatchLike, p.lastMode)
}

func TestResolveTextDifferentCountriesPicksFirst(t *testing.T) {
	p := newFakeProvider()
	p.find["London"] = []PlaceMatch{londonGB, londonCA}

	for _, bestGuess := range []bool{true, false} {
		r := NewResolver(p, ResolverConfig{BestGuess: bestGuess}, nil)
		got, err := r.Resolve(context.Background(), ByText("London", false))
		require.NoError(t, err)
		assert.Equal(t, londonGB, got.Primary)
		assert.False(t, got.Ambiguous())
	}
}

func TestResolveTextSameNameBestGuess(t *testing.T) {
	p := newFakeProvider()
	p.find["Springfield,US"] = []PlaceMatch{springA, springB}
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	got, err := r.Resolve(context.Background(), ByText("Springfield,US", false))
	require.NoError(t, err)
	assert.True(t, got.Ambiguous())
	assert.Equal(t, springA, got.Primary)
	assert.Equal(t, []PlaceMatch{springA, springB}, got.Candidates)
}

func TestResolveTextSameNameWithoutBestGuess(t *testing.T) {
	p := newFakeProvider()
	p.find["Springfield,US"] = []PlaceMatch{springA, springB}
	r := NewResolver(p, ResolverConfig{BestGuess: false}, nil)

	_, err := r.Resolve(context.Background(), ByText("Springfield,US", false))

	var dis *DisambiguationError
	require.True(t, errors.As(err, &dis))
	assert.False(t, dis.Collision)
	assert.Equal(t, []PlaceMatch{springA, springB}, dis.Candidates)
	assert.Contains(t, dis.Error(), "Springfield,US")
}

func TestResolveTextTooManyCandidates(t *testing.T) {
	p := newFakeProvider()
	p.find["Springfield"] = []PlaceMatch{springA, springB, springC, springD}
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	_, err := r.Resolve(context.Background(), ByText("Springfield", false))

	var dis *DisambiguationError
	require.True(t, errors.As(err, &dis))
	assert.True(t, dis.Collision)
	assert.Len(t, dis.Candidates, 4)
}

func TestResolveProviderError(t *testing.T) {
	p := newFakeProvider()
	p.findErr = ErrProvider
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	_, err := r.Resolve(context.Background(), ByText("London", false))
	assert.ErrorIs(t, err, ErrProvider)
}

func TestResolveTextDuplicateCoordinatesCollapse(t *testing.T) {
	dup := springA
	dup.ID = 9999999

	p := newFakeProvider()
	p.find["Springfield,US"] = []PlaceMatch{springA, dup, springA}
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	got, err := r.Resolve(context.Background(), ByText("Springfield,US", false))
	require.NoError(t, err)
	assert.False(t, got.Ambiguous())
	assert.Equal(t, springA, got.Primary)
}

func TestResolveTextDuplicatesKeepDistinctPlaces(t *testing.T) {
	p := newFakeProvider()
	p.find["Springfield,US"] = []PlaceMatch{springA, springB, springA}
	r := NewResolver(p, ResolverConfig{BestGuess: true}, nil)

	got, err := r.Resolve(context.Background(), ByText("Springfield,US", false))
	require.NoError(t, err)
	assert.Equal(t, []PlaceMatch{springA, springB}, got.Candidates)
}
