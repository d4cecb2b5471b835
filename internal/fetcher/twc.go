// Package fetcher retrieves historical observations from the TWC History
// on Demand API.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAuthURL    = "https://api.ibm.com/saascore/run/authentication-retrieve/api-key"
	defaultHistoryURL = "https://api.ibm.com/geospatial/run/v3/wx/hod/r1/direct"

	// Tokens are valid for an hour; refresh with a margin.
	jwtLifetime = 50 * time.Minute
)

// HistoryFetcher retrieves a decoded history payload for a coordinate and
// a UTC time range.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, lat, lon float64, startISO, endISO string) (any, error)
}

// TWCOptions parameterise the History on Demand client.
type TWCOptions struct {
	APIKey             string
	OrgID              string
	SaaSClientID       string
	GeospatialClientID string
	AuthURL            string
	HistoryURL         string
	Units              string
	Products           string
	Timeout            time.Duration
}

// TWC calls the History on Demand API, acquiring and caching the bearer
// token it needs.
type TWC struct {
	opts       TWCOptions
	logger     zerolog.Logger
	client     *http.Client
	authURL    string
	historyURL string

	mu       sync.Mutex
	jwt      string
	jwtIssue time.Time
}

// NewTWC constructs a History on Demand client.
func NewTWC(opts TWCOptions, logger zerolog.Logger) *TWC {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	authURL := strings.TrimRight(opts.AuthURL, "/")
	if authURL == "" {
		authURL = defaultAuthURL
	}
	historyURL := strings.TrimRight(opts.HistoryURL, "/")
	if historyURL == "" {
		historyURL = defaultHistoryURL
	}

	return &TWC{
		opts:       opts,
		logger:     logger.With().Str("component", "twc_fetcher").Logger(),
		client:     &http.Client{Timeout: timeout},
		authURL:    authURL,
		historyURL: historyURL,
	}
}

// FetchHistory retrieves observations for the coordinate over the given
// range and decodes the JSON response without imposing a schema.
func (c *TWC) FetchHistory(ctx context.Context, lat, lon float64, startISO, endISO string) (any, error) {
	jwt, err := c.ensureJWT(ctx, false)
	if err != nil {
		return nil, err
	}

	units := c.opts.Units
	if units == "" {
		units = "m"
	}
	products := c.opts.Products
	if products == "" {
		products = "all"
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("products", products)
	params.Set("geocode", fmt.Sprintf("%.5f,%.5f", lat, lon))
	params.Set("startDateTime", startISO)
	params.Set("endDateTime", endISO)
	params.Set("units", units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.historyURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+jwt)
	req.Header.Set("x-ibm-client-Id", c.opts.GeospatialClientID)

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("start", startISO).
		Str("end", endISO).
		Msg("fetching history")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpError("history", resp.StatusCode, body)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode history payload: %w", err)
	}
	return payload, nil
}

// ensureJWT returns a cached bearer token, fetching a fresh one when the
// cache is empty, expired, or force is set.
func (c *TWC) ensureJWT(ctx context.Context, force bool) (string, error) {
	if c.opts.APIKey == "" || c.opts.SaaSClientID == "" {
		return "", errors.New("twc api key and saas client id required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.jwt != "" && time.Since(c.jwtIssue) < jwtLifetime {
		return c.jwt, nil
	}

	params := url.Values{}
	params.Set("orgId", c.opts.OrgID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.opts.APIKey)
	req.Header.Set("x-ibm-client-Id", c.opts.SaaSClientID)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", httpError("auth", resp.StatusCode, body)
	}

	// The endpoint returns the token as a bare, possibly quoted string.
	token := strings.TrimSpace(string(body))
	token = strings.Trim(token, `"`)
	if token == "" {
		return "", errors.New("auth endpoint returned empty token")
	}

	c.jwt = token
	c.jwtIssue = time.Now()
	c.logger.Debug().Msg("acquired fresh bearer token")
	return c.jwt, nil
}

func httpError(op string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("twc %s error (%d)", op, status)
	}
	return fmt.Errorf("twc %s error (%d): %s", op, status, msg)
}

var _ HistoryFetcher = (*TWC)(nil)
