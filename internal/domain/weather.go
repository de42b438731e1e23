package domain

import "strings"

// Rainfall thresholds in millimetres, over the sample's short window.
const (
	// HeavyRainMM is the depth above which a reading contributes +20 confidence.
	HeavyRainMM = 20.0
	// ExtremeRainMM is the depth above which a place is actionable on
	// weather alone, without news corroboration.
	ExtremeRainMM = 50.0
)

// RawWeatherSample is one vendor response for a city, before normalization.
type RawWeatherSample struct {
	City      string  `json:"city"`
	RainMM    float64 `json:"rain_mm"`
	Condition string  `json:"condition"`
}

// WeatherReading is a normalized per-city rainfall observation.
type WeatherReading struct {
	City      string  `json:"city"`
	RainMM    float64 `json:"rain_mm"`
	Condition string  `json:"condition"`
}

// NormalizeWeather converts raw vendor samples into readings. Samples with a
// blank city name are dropped; negative rain depths (vendor glitches) are
// floored to zero. Partial results are expected: fetching is best-effort
// per city, so a short list just means some cities failed upstream.
func NormalizeWeather(samples []RawWeatherSample) []WeatherReading {
	readings := make([]WeatherReading, 0, len(samples))
	for _, s := range samples {
		city := strings.TrimSpace(s.City)
		if city == "" {
			continue
		}
		rain := s.RainMM
		if rain < 0 {
			rain = 0
		}
		readings = append(readings, WeatherReading{
			City:      city,
			RainMM:    rain,
			Condition: strings.TrimSpace(s.Condition),
		})
	}
	return readings
}
