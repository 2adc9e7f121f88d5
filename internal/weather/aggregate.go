package weather

import "math"

// SummarizeRange returns the lowest and highest temperature across snapshots.
// Each bound carries the Celsius and Fahrenheit values of the same snapshot.
func SummarizeRange(snapshots []WeatherSnapshot) (TemperatureRange, bool) {
	if len(snapshots) == 0 {
		return TemperatureRange{}, false
	}

	lo, hi := snapshots[0], snapshots[0]
	for _, s := range snapshots[1:] {
		if s.TempC < lo.TempC {
			lo = s
		}
		if s.TempC > hi.TempC {
			hi = s
		}
	}

	return TemperatureRange{
		MinC: lo.TempC,
		MaxC: hi.TempC,
		MinF: lo.TempF,
		MaxF: hi.TempF,
	}, true
}

func kelvinToCelsius(k float64) float64 {
	return k - 273.15
}

func kelvinToFahrenheit(k float64) float64 {
	return k*9/5 - 459.67
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
