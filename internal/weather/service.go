package weather

import (
	"context"
)

// Report is the outcome of a weather lookup: either a single snapshot or,
// for ambiguous places, the temperature range across all candidates.
type Report struct {
	Place     ResolvedPlace     `json:"place"`
	Snapshot  *WeatherSnapshot  `json:"snapshot,omitempty"`
	Snapshots []WeatherSnapshot `json:"snapshots,omitempty"`
	Range     *TemperatureRange `json:"range,omitempty"`
	Text      string            `json:"text"`
}

// Service ties place resolution and fetching together.
type Service struct {
	resolver *Resolver
	fetcher  *Fetcher
}

func NewService(resolver *Resolver, fetcher *Fetcher) *Service {
	return &Service{resolver: resolver, fetcher: fetcher}
}

// Resolve looks a request up without fetching any weather.
func (s *Service) Resolve(ctx context.Context, req LocationRequest) (ResolvedPlace, error) {
	return s.resolver.Resolve(ctx, req)
}

// Report resolves req and fetches the weather for it.
func (s *Service) Report(ctx context.Context, req LocationRequest) (Report, error) {
	place, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return Report{}, err
	}

	label := place.Primary.Label()

	if place.Ambiguous() {
		snaps, err := s.fetcher.FetchAll(ctx, place.Candidates)
		if err != nil {
			return Report{}, err
		}
		rng, _ := SummarizeRange(snaps)
		return Report{
			Place:     place,
			Snapshots: snaps,
			Range:     &rng,
			Text:      FormatRange(label, rng, place.Primary),
		}, nil
	}

	snap, err := s.fetcher.Fetch(ctx, place.Primary)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Place:    place,
		Snapshot: &snap,
		Text:     FormatReport(label, snap),
	}, nil
}

// StoredRequest returns what should be remembered for a nick after req
// resolved to place. Unambiguous places are pinned by id so later lookups
// do not depend on search ordering.
func StoredRequest(req LocationRequest, place ResolvedPlace) LocationRequest {
	if place.Ambiguous() || place.Primary.ID <= 0 {
		return req
	}
	return ByID(place.Primary.ID)
}
