// Package gateway talks to the disease.sh COVID-19 API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/stats"
	"github.com/sw33tLie/covidboard/pkg/whttp"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL     = "https://disease.sh/v3/covid-19"
	DefaultTimeout     = 30 * time.Second
	DefaultHistoryDays = 30
)

// Config holds the gateway settings. Zero values fall back to the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	Proxy   string
}

// Client fetches statistics. It does not cache: every call hits the API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *retryablehttp.Client
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient, err := whttp.NewClient(whttp.ClientOptions{Retries: cfg.Retries, Proxy: cfg.Proxy})
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: base, timeout: timeout, http: httpClient}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchAggregate requests the global summary and the country list at the same
// time and joins them. If either request fails the other one is cancelled and
// only the error is returned.
func (c *Client) FetchAggregate(ctx context.Context) (*stats.AggregateData, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var (
		global    stats.GlobalSummary
		countries []stats.CountryRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, "global", c.baseURL+"/all", &global)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "countries", c.baseURL+"/countries?sort=cases", &countries)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	utils.Log.WithField("countries", len(countries)).Debug("Fetched aggregate")
	return &stats.AggregateData{
		Global:    global,
		Countries: countries,
		FetchedAt: time.Now(),
	}, nil
}

// FetchCountry returns a single country's statistics.
func (c *Client) FetchCountry(ctx context.Context, name string) (stats.CountryRecord, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var record stats.CountryRecord
	err := c.getJSON(ctx, "country", c.baseURL+"/countries/"+url.PathEscape(name), &record)
	return record, err
}

// FetchHistory returns the cumulative daily timeline of a country for the last
// days days. days <= 0 means DefaultHistoryDays. The name "all" returns the
// worldwide timeline.
func (c *Client) FetchHistory(ctx context.Context, name string, days int) (stats.HistorySeries, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if days <= 0 {
		days = DefaultHistoryDays
	}
	u := c.baseURL + "/historical/" + url.PathEscape(name) + "?lastdays=" + strconv.Itoa(days)

	body, err := c.get(ctx, "history", u)
	if err != nil {
		return stats.HistorySeries{}, err
	}

	series, err := parseHistory(body, strings.EqualFold(name, "all"))
	if err != nil {
		return stats.HistorySeries{}, &FetchError{Op: "history", URL: u, Err: err}
	}
	if series.Country == "" {
		series.Country = name
	}
	return series, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) getJSON(ctx context.Context, op, u string, v interface{}) error {
	body, err := c.get(ctx, op, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &FetchError{Op: op, URL: u, Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, u string) ([]byte, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{Method: "GET", URL: u}, c.http)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, &FetchError{Op: op, URL: u, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &FetchError{Op: op, URL: u, StatusCode: res.StatusCode, Err: ErrStatus}
	}
	return res.Body, nil
}
