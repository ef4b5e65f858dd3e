// Package weather looks up the current outdoor temperature for a postal
// code through the OpenWeatherMap current-weather API.
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
	"sync"
	"time"

	"clothcheck-skill/internal/integrations/paramstore"
)

const defaultBaseURL = "https://api.openweathermap.org"

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("weather: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// currentResponse is the minimal payload shape the skill reads.
type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Client is a focused OpenWeatherMap client. The API key is fetched from
// SSM on the first lookup and reused for the lifetime of the process.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      paramstore.Getter
	paramPrefix string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(ps paramstore.Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("weather: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("weather: parameter prefix must not be empty")
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = paramstore.Token(ctx, c.getter, c.paramPrefix+"/openweather-api-key")
	})
	return c.apiKey, c.keyErr
}

// CurrentTemperature returns the current Celsius temperature for the postal
// code, floored to an integer. Any non-2xx response is a failure; there are
// no retries here.
func (c *Client) CurrentTemperature(ctx context.Context, postalCode, countryCode string) (int, error) {
	if postalCode == "" {
		return 0, errors.New("weather: postal code must not be empty")
	}
	if countryCode == "" {
		return 0, errors.New("weather: country code must not be empty")
	}

	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return 0, err
	}

	values := url.Values{}
	values.Set("units", "metric")
	values.Set("zip", postalCode+","+countryCode)
	values.Set("appid", apiKey)
	reqURL := strings.TrimRight(c.baseURL, "/") + "/data/2.5/weather?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("weather: create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return 0, &HTTPStatusError{StatusCode: res.StatusCode, URL: reqURL, Body: string(buf)}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("weather: read response body: %w", err)
	}

	var payload currentResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("weather: decode response: %w", err)
	}

	// Floor, not round: 18.9 degrees is reported as 18.
	return int(math.Floor(payload.Main.Temp)), nil
}
