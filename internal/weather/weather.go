// Package weather is a client of OpenWeather compatible API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/logger"
)

const (
	DefaultBaseURL      = "https://api.openweathermap.org/data/2.5"
	DefaultForecastDays = 5

	defaultTimeout = 10 * time.Second
	defaultRate    = rate.Limit(1) // per second
	defaultBurst   = 5

	iconURL = "https://openweathermap.org/img/wn/%s@2x.png"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// Client side limit of requests to the API
	// If not set than default is used
	Rate  rate.Limit
	Burst int
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  logger.Logger
}

func New(cfg Config, l logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Rate == 0 {
		cfg.Rate = defaultRate
	}
	if cfg.Burst == 0 {
		cfg.Burst = defaultBurst
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	l = l.With("component", "weather")

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "weather-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// Wrong city or key is user mistake, the API itself is fine
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, apperrors.ErrCityNotFound) ||
				errors.Is(err, apperrors.ErrWeatherInvalidKey)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			l.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(cfg.Rate, cfg.Burst),
		cb:      cb,
		logger:  l,
	}
}

type Current struct {
	City        string
	Description string
	Icon        string
	Temp        int
	FeelsLike   int
	TempMin     int
	TempMax     int
	Humidity    int
	WindSpeed   float64
}

type Day struct {
	Date        string
	TempDay     int
	TempNight   int
	Description string
	Icon        string
	Humidity    int
}

type mainData struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
}

type condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentResponse struct {
	Name    string      `json:"name"`
	Main    mainData    `json:"main"`
	Weather []condition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastResponse struct {
	List []struct {
		DtTxt   string      `json:"dt_txt"`
		Main    mainData    `json:"main"`
		Weather []condition `json:"weather"`
	} `json:"list"`
}

func (c *Client) Current(ctx context.Context, city string) (Current, error) {
	var resp currentResponse
	if err := c.get(ctx, "/weather", city, &resp); err != nil {
		return Current{}, err
	}

	cond := first(resp.Weather)
	return Current{
		City:        resp.Name,
		Description: cond.Description,
		Icon:        cond.Icon,
		Temp:        round(resp.Main.Temp),
		FeelsLike:   round(resp.Main.FeelsLike),
		TempMin:     round(resp.Main.TempMin),
		TempMax:     round(resp.Main.TempMax),
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
	}, nil
}

// Forecast returns up to 'days' days of forecast
// Day temperature is the maximum of the day samples, night one is the minimum.
// Conditions are taken from midday sample
func (c *Client) Forecast(ctx context.Context, city string, days int) ([]Day, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}

	var resp forecastResponse
	if err := c.get(ctx, "/forecast", city, &resp); err != nil {
		return nil, err
	}

	var dates []string
	byDate := make(map[string][]int)
	for i, item := range resp.List {
		date, _, _ := strings.Cut(item.DtTxt, " ")
		if _, ok := byDate[date]; !ok {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], i)
	}
	if len(dates) > days {
		dates = dates[:days]
	}

	forecast := make([]Day, 0, len(dates))
	for _, date := range dates {
		idx := byDate[date]

		maxTemp, minTemp := math.Inf(-1), math.Inf(1)
		midday := idx[len(idx)/2]
		found := false
		for _, i := range idx {
			item := resp.List[i]
			maxTemp = math.Max(maxTemp, item.Main.Temp)
			minTemp = math.Min(minTemp, item.Main.Temp)
			if !found && (strings.Contains(item.DtTxt, "12:00:00") || strings.Contains(item.DtTxt, "15:00:00")) {
				midday, found = i, true
			}
		}

		sample := resp.List[midday]
		cond := first(sample.Weather)
		forecast = append(forecast, Day{
			Date:        date,
			TempDay:     round(maxTemp),
			TempNight:   round(minTemp),
			Description: cond.Description,
			Icon:        cond.Icon,
			Humidity:    sample.Main.Humidity,
		})
	}

	return forecast, nil
}

func IconURL(code string) string {
	return fmt.Sprintf(iconURL, code)
}

func (c *Client) get(ctx context.Context, path string, city string, out any) error {
	if c.cfg.APIKey == "" {
		return apperrors.ErrWeatherKeyMissing
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return apperrors.ErrCityRequired
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrWeatherRateLimited, err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.fetch(ctx, path, city)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.logger.Warn("Request rejected by circuit breaker", "error", err)
		return fmt.Errorf("%w: %w", apperrors.ErrWeatherUnavailable, err)
	case err != nil:
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: error while decoding response. Err: %w", apperrors.ErrWeatherUnavailable, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, city string) ([]byte, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error while creating request. Err: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		err = withoutURL(err, path)
		c.logger.Warn("Weather request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrCityNotFound, city)
	case http.StatusUnauthorized:
		return nil, apperrors.ErrWeatherInvalidKey
	case http.StatusTooManyRequests:
		return nil, apperrors.ErrWeatherRateLimited
	default:
		c.logger.Warn("Unexpected weather API status", "path", path, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("%w: unexpected status %d", apperrors.ErrWeatherUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWeatherUnavailable, err)
	}
	return body, nil
}

// Request URL carries the API key, so it never reaches logs or callers
func withoutURL(err error, path string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return fmt.Errorf("%s %s: %w", urlErr.Op, path, urlErr.Err)
}

func first(conds []condition) condition {
	if len(conds) == 0 {
		return condition{}
	}
	return conds[0]
}

// Round half up, negative halves go to zero
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
