package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

// Client fetches current conditions from the OpenWeather API. It implements
// pipeline.WeatherSource.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		logger:  logger,
	}
}

// CurrentWeather returns the raw sample for one city. Failures are per-city:
// the caller drops the city and continues with the rest of the batch.
func (c *Client) CurrentWeather(ctx context.Context, city string) (domain.RawWeatherSample, error) {
	params := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.RawWeatherSample{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawWeatherSample{}, fmt.Errorf("weather request for %s: %w", city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.RawWeatherSample{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.RawWeatherSample{}, fmt.Errorf("decode response: %w", err)
	}

	sample := domain.RawWeatherSample{
		// Keep the requested name: the vendor sometimes localizes "name"
		// and the fusion key must match the gazetteer.
		City:   city,
		RainMM: owResp.Rain.OneHour,
	}
	if sample.RainMM == 0 {
		sample.RainMM = owResp.Rain.ThreeHour
	}
	if len(owResp.Weather) > 0 {
		sample.Condition = owResp.Weather[0].Main
	}
	return sample, nil
}

// OpenWeather API response types.

type response struct {
	Name    string      `json:"name"`
	Rain    rainVolume  `json:"rain"`
	Weather []condition `json:"weather"`
}

type rainVolume struct {
	OneHour   float64 `json:"1h"`
	ThreeHour float64 `json:"3h"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}
