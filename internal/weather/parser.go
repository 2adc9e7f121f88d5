package weather

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/i474232898/ircweather/internal/common"
)

var placeIDPattern = regexp.MustCompile(`^#?[0-9]+$`)

// coordinateSeparators are tried in order.
var coordinateSeparators = []string{";", ","}

// ParseLocation classifies raw user input into a LocationRequest.
//
// Rules, first match wins: empty input returns ErrNoLocation; a positive
// integer (optionally "#"-prefixed) is a place id; two in-range decimals
// separated by ";" or "," (optionally wrapped in square brackets) are
// latitude and longitude; anything else is a text query where a leading "!"
// asks for an exact match and a leading "*" for a fuzzy one. Coordinate-like
// input that fails the range or shape checks is treated as text.
func ParseLocation(raw string) (LocationRequest, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return LocationRequest{}, ErrNoLocation
	}

	if id, ok := parsePlaceID(s); ok {
		return ByID(id), nil
	}

	if lat, lon, ok := parseCoordinates(s); ok {
		return ByCoordinates(lat, lon), nil
	}

	query, exact := parseText(s)
	return ByText(query, exact), nil
}

func parsePlaceID(s string) (int64, bool) {
	if !placeIDPattern.MatchString(s) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseCoordinates(s string) (float64, float64, bool) {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sep := range coordinateSeparators {
		parts := strings.Split(s, sep)
		if len(parts) != 2 {
			continue
		}
		lat, ok := parseDecimal(parts[0])
		if !ok {
			continue
		}
		lon, ok := parseDecimal(parts[1])
		if !ok {
			continue
		}
		if latInRange(lat) && lonInRange(lon) {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// parseDecimal accepts any finite decimal float, exponents included.
// Hex floats and the NaN/Inf spellings are rejected.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseText strips the match-mode prefix and normalises "city" or
// "city,country" input. Extra comma separated parts are kept as given.
func parseText(s string) (string, bool) {
	exact := false
	switch {
	case strings.HasPrefix(s, "!"):
		exact = true
		s = s[1:]
	case strings.HasPrefix(s, "*"):
		s = s[1:]
	}

	parts := strings.Split(s, ",")
	switch len(parts) {
	case 1:
		return common.CleanField(parts[0]), exact
	case 2:
		city := common.CleanField(parts[0])
		country := strings.ToUpper(common.CleanField(parts[1]))
		if country == "" {
			return city, exact
		}
		return city + "," + country, exact
	default:
		return strings.TrimSpace(s), exact
	}
}

// splitQuery separates a normalised text query into city and country.
func splitQuery(query string) (string, string) {
	city, country, found := strings.Cut(query, ",")
	if !found {
		return strings.TrimSpace(query), ""
	}
	return strings.TrimSpace(city), strings.TrimSpace(country)
}
