package weather

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// windArrows shows where the wind blows to, starting with a north wind (↓)
// and going clockwise in 22.5° steps.
var windArrows = [16]string{
	"↓", "↓↙", "↙", "↙←",
	"←", "←↖", "↖", "↖↑",
	"↑", "↑↗", "↗", "↗→",
	"→", "→↘", "↘", "↘↓",
}

// unknownDirection is shown when the provider reports no bearing.
const unknownDirection = "Unknown direction"

// WindArrowIndex maps a bearing in degrees to one of 16 compass points.
func WindArrowIndex(degrees float64) int {
	i := int(math.Round(degrees/22.5)) % 16
	if i < 0 {
		i += 16
	}
	return i
}

// WindArrow returns the arrow glyph for a bearing in degrees.
func WindArrow(degrees float64) string {
	return windArrows[WindArrowIndex(degrees)]
}

// FormatReport renders a single snapshot as a chat line.
func FormatReport(label string, s WeatherSnapshot) string {
	direction := unknownDirection
	if s.WindDirection != nil {
		direction = WindArrow(*s.WindDirection)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s°C (%s°F) Humidity: %d%% %sm/s (%s)",
		label,
		s.Description,
		oneDecimal(s.TempC),
		oneDecimal(s.TempF),
		s.HumidityPct,
		oneDecimal(s.WindSpeed),
		direction,
	)

	if s.AirQuality != nil {
		b.WriteString(" AQI: ")
		b.WriteString(formatAirQuality(*s.AirQuality))
	}
	return b.String()
}

// FormatRange renders the temperature spread of ambiguous candidates with a
// hint naming one place id the user can query directly.
func FormatRange(label string, rng TemperatureRange, hint PlaceMatch) string {
	return fmt.Sprintf("%s: %s°C - %s°C (%s°F - %s°F) Ambiguous results for '%s', use place id %d for a precise lookup or visit https://openweathermap.org/find?q=%s",
		label,
		oneDecimal(rng.MinC),
		oneDecimal(rng.MaxC),
		oneDecimal(rng.MinF),
		oneDecimal(rng.MaxF),
		label,
		hint.ID,
		url.QueryEscape(hint.Name),
	)
}

func oneDecimal(v float64) string {
	v = round1(v)
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

type pollutant struct {
	key   string
	name  string
	bands [4]float64 // lower bounds of levels 2..5
}

// pollutants follows the OpenWeatherMap air pollution index table.
var pollutants = []pollutant{
	{key: "co", name: "CO", bands: [4]float64{200, 300, 400, 500}},
	{key: "no2", name: "NO2", bands: [4]float64{50, 100, 200, 400}},
	{key: "o3", name: "Ozone", bands: [4]float64{60, 120, 180, 240}},
	{key: "pm2_5", name: "PM2.5", bands: [4]float64{15, 30, 55, 110}},
	{key: "pm10", name: "PM10", bands: [4]float64{25, 50, 90, 180}},
}

// AirQualityName returns the qualitative name of an index from 1 (Good) to 5.
func AirQualityName(index int) string {
	switch index {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// WorstOffenders lists the pollutants whose own level equals the overall
// index, formatted as "PM2.5: 35.2 (≥30)". Nothing is reported for Good air.
func WorstOffenders(aq AirQuality) []string {
	if aq.Index <= 1 {
		return nil
	}
	var out []string
	for _, p := range pollutants {
		v, ok := aq.Components[p.key]
		if !ok {
			continue
		}
		level, floor := 1, 0.0
		for i, lower := range p.bands {
			if v >= lower {
				level, floor = i+2, lower
			}
		}
		if level == aq.Index {
			out = append(out, fmt.Sprintf("%s: %s (≥%s)", p.name,
				strconv.FormatFloat(v, 'f', -1, 64),
				strconv.FormatFloat(floor, 'f', -1, 64)))
		}
	}
	return out
}

func formatAirQuality(aq AirQuality) string {
	s := fmt.Sprintf("%d (%s)", aq.Index, AirQualityName(aq.Index))
	if offenders := WorstOffenders(aq); len(offenders) > 0 {
		s += " " + strings.Join(offenders, ", ")
	}
	return s
}
