package weather

import (
	"errors"
	"strings"
)

var (
	// ErrNoLocation is returned by ParseLocation for empty input.
	ErrNoLocation = errors.New("no location supplied")

	// ErrNotFound is returned when the provider has no matching place.
	ErrNotFound = errors.New("location not found")

	// ErrProvider wraps transport, status and schema failures from the provider.
	ErrProvider = errors.New("weather provider error")

	// ErrUnauthorized is returned when the provider rejects the API key.
	ErrUnauthorized = errors.New("weather provider rejected credentials")
)

// DisambiguationError lists candidates the user must choose between.
type DisambiguationError struct {
	Query      string
	Candidates []PlaceMatch
	// Collision is set when the candidates are indistinguishable by name and
	// country, so only a place id can tell them apart.
	Collision bool
}

func (e *DisambiguationError) Error() string {
	labels := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		labels = append(labels, c.Label())
	}
	return "ambiguous location " + e.Query + ": " + strings.Join(labels, ", ")
}
