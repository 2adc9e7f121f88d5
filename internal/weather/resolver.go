package weather

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxCandidates caps how many same-name places are fetched for a
// temperature range before the user is asked to pick a place id instead.
const DefaultMaxCandidates = 3

// ResolverConfig holds the feature flags the resolver depends on.
type ResolverConfig struct {
	BestGuess     bool
	MaxCandidates int
}

// Resolver turns a LocationRequest into a ResolvedPlace.
type Resolver struct {
	provider Provider
	cfg      ResolverConfig
	logger   *zap.Logger
}

func NewResolver(provider Provider, cfg ResolverConfig, logger *zap.Logger) *Resolver {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{provider: provider, cfg: cfg, logger: logger}
}

// Resolve looks the request up with the provider.
//
// Text searches returning several places pick the first one in provider
// order unless every match shares the same name and country. In that case
// best-guess mode returns all of them as candidates, otherwise a
// *DisambiguationError is returned.
func (r *Resolver) Resolve(ctx context.Context, req LocationRequest) (ResolvedPlace, error) {
	switch req.Kind {
	case KindID:
		p, err := r.provider.PlaceByID(ctx, req.PlaceID)
		if err != nil {
			return ResolvedPlace{}, fmt.Errorf("place id %d: %w", req.PlaceID, err)
		}
		return ResolvedPlace{Primary: p}, nil

	case KindCoordinates:
		p, err := r.provider.PlaceByCoordinates(ctx, req.Lat, req.Lon)
		if err != nil {
			return ResolvedPlace{}, fmt.Errorf("coordinates %v,%v: %w", req.Lat, req.Lon, err)
		}
		return ResolvedPlace{Primary: p}, nil

	case KindText:
		return r.resolveText(ctx, req)
	}
	return ResolvedPlace{}, fmt.Errorf("unknown location kind %q: %w", req.Kind, ErrNotFound)
}

func (r *Resolver) resolveText(ctx context.Context, req LocationRequest) (ResolvedPlace, error) {
	city, _ := splitQuery(req.Query)
	if city == "" {
		return ResolvedPlace{}, fmt.Errorf("empty query: %w", ErrNotFound)
	}

	mode := MatchLike
	if req.ExactMatch {
		mode = MatchExact
	}

	matches, err := r.provider.FindPlaces(ctx, req.Query, mode)
	if err != nil {
		return ResolvedPlace{}, fmt.Errorf("find %q: %w", req.Query, err)
	}
	matches = dedupePlaces(matches)

	r.logger.Debug("place candidates",
		zap.String("query", req.Query),
		zap.String("mode", string(mode)),
		zap.Int("count", len(matches)))

	switch {
	case len(matches) == 0:
		return ResolvedPlace{}, fmt.Errorf("find %q: %w", req.Query, ErrNotFound)
	case len(matches) == 1:
		return ResolvedPlace{Primary: matches[0]}, nil
	case !sameNameAndCountry(matches):
		return ResolvedPlace{Primary: matches[0]}, nil
	}

	if !r.cfg.BestGuess || len(matches) > r.cfg.MaxCandidates {
		return ResolvedPlace{}, &DisambiguationError{
			Query:      req.Query,
			Candidates: matches,
			Collision:  len(matches) > r.cfg.MaxCandidates,
		}
	}

	return ResolvedPlace{Primary: matches[0], Candidates: matches}, nil
}

// dedupePlaces drops repeated entries for the same name, country and
// coordinates, keeping the first in provider order.
func dedupePlaces(matches []PlaceMatch) []PlaceMatch {
	type key struct {
		name, country string
		lat, lon      float64
	}
	seen := make(map[key]struct{}, len(matches))
	out := matches[:0:0]
	for _, m := range matches {
		k := key{m.Name, m.Country, m.Lat, m.Lon}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}

func sameNameAndCountry(matches []PlaceMatch) bool {
	first := matches[0]
	for _, m := range matches[1:] {
		if m.Name != first.Name || m.Country != first.Country {
			return false
		}
	}
	return true
}
