package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/ircweather/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherConfig configures the OpenWeatherMap provider.
type OpenWeatherConfig struct {
	APIKey   string
	BaseURL  string // defaults to https://api.openweathermap.org
	Language string // defaults to "en"
	Backoff  BackoffConfig
}

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap using
// the 2.5 find, weather and air_pollution endpoints.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	language string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	validate *validator.Validate
}

func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig) *OpenWeatherProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenWeatherBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
		cfg.Backoff.MaxInterval = 5 * time.Second
	}

	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: cfg.Backoff,
		},
		circuit:  newCircuitBreaker("openweather"),
		validate: validator.New(),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCoord struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lon *float64 `json:"lon" validate:"required,longitude"`
}

type owmSys struct {
	Country string `json:"country"`
}

type owmPlace struct {
	ID    int64    `json:"id" validate:"gte=0"`
	Name  string   `json:"name"`
	Coord owmCoord `json:"coord"`
	Sys   owmSys   `json:"sys"`
}

type owmFind struct {
	List []owmPlace `json:"list" validate:"dive"`
}

type owmCurrent struct {
	owmPlace
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather" validate:"min=1"`
	Main struct {
		Temp     *float64 `json:"temp" validate:"required,gt=0"`
		Humidity *int     `json:"humidity" validate:"required,gte=0,lte=100"`
	} `json:"main"`
	Wind struct {
		Speed float64  `json:"speed" validate:"gte=0"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
}

type owmAirPollution struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi" validate:"gte=1,lte=5"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list" validate:"min=1,dive"`
}

func (p owmPlace) toMatch() weather.PlaceMatch {
	m := weather.PlaceMatch{
		ID:      p.ID,
		Name:    p.Name,
		Country: p.Sys.Country,
		Lat:     *p.Coord.Lat,
		Lon:     *p.Coord.Lon,
	}
	if m.Name == "" {
		m.Name = strconv.FormatFloat(m.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(m.Lon, 'f', -1, 64)
	}
	return m
}

func (p *OpenWeatherProvider) FindPlaces(ctx context.Context, query string, mode weather.MatchMode) ([]weather.PlaceMatch, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("type", string(mode))

	var payload owmFind
	if err := p.get(ctx, "/data/2.5/find", values, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.PlaceMatch, 0, len(payload.List))
	for _, item := range payload.List {
		out = append(out, item.toMatch())
	}
	return out, nil
}

func (p *OpenWeatherProvider) PlaceByID(ctx context.Context, id int64) (weather.PlaceMatch, error) {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(id, 10))

	var payload owmCurrent
	if err := p.get(ctx, "/data/2.5/weather", values, &payload); err != nil {
		return weather.PlaceMatch{}, err
	}
	return payload.toMatch(), nil
}

func (p *OpenWeatherProvider) PlaceByCoordinates(ctx context.Context, lat, lon float64) (weather.PlaceMatch, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var payload owmCurrent
	if err := p.get(ctx, "/data/2.5/weather", values, &payload); err != nil {
		return weather.PlaceMatch{}, err
	}
	return payload.toMatch(), nil
}

// CurrentConditions queries by place id, or by coordinates for places the
// API knows no id for.
func (p *OpenWeatherProvider) CurrentConditions(ctx context.Context, place weather.PlaceMatch) (weather.Conditions, error) {
	values := url.Values{}
	if place.ID > 0 {
		values.Set("id", strconv.FormatInt(place.ID, 10))
	} else {
		values.Set("lat", strconv.FormatFloat(place.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(place.Lon, 'f', -1, 64))
	}

	var cur owmCurrent
	if err := p.get(ctx, "/data/2.5/weather", values, &cur); err != nil {
		return weather.Conditions{}, err
	}

	return weather.Conditions{
		Description:   cur.Weather[0].Description,
		TempKelvin:    *cur.Main.Temp,
		HumidityPct:   *cur.Main.Humidity,
		WindSpeedMS:   cur.Wind.Speed,
		WindDirection: cur.Wind.Deg,
	}, nil
}

func (p *OpenWeatherProvider) AirQuality(ctx context.Context, lat, lon float64) (weather.AirQuality, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var payload owmAirPollution
	if err := p.get(ctx, "/data/2.5/air_pollution", values, &payload); err != nil {
		return weather.AirQuality{}, err
	}

	latest := payload.List[0]
	return weather.AirQuality{
		Index:      latest.Main.AQI,
		Components: latest.Components,
	}, nil
}

// get performs one API call, decodes the JSON body into out and validates it.
// Temperatures stay in the API's native Kelvin.
func (p *OpenWeatherProvider) get(ctx context.Context, path string, values url.Values, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnauthorized)
	}

	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)
		q.Set("lang", p.language)

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", weather.ErrProvider, path, err)
	}
	if err := p.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: unexpected %s payload: %w", weather.ErrProvider, path, err)
	}
	return nil
}
