// Package geoip resolves the visitor's location through a chain of public
// HTTP geolocation services, normalizing their differing response shapes.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Location is the normalized geolocation payload.
type Location struct {
	CountryCode string `json:"countryCode"`
	CountryName string `json:"countryName"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	IP          string `json:"ip,omitempty"`
}

// Provider describes one geolocation service: a URL resolving the caller's
// own IP and a format string resolving a country by its two-letter code.
type Provider struct {
	Name string
	// SelfURL returns the caller's location from its IP.
	SelfURL string
	// CodeURL is a format string taking a two-letter country code.
	CodeURL string
}

// DefaultProviders are tried in order until one succeeds.
var DefaultProviders = []Provider{
	{Name: "ipapi", SelfURL: "https://ipapi.co/json/", CodeURL: ""},
	{Name: "ip-api", SelfURL: "http://ip-api.com/json/", CodeURL: ""},
	{Name: "ipwho", SelfURL: "https://ipwho.is/", CodeURL: ""},
	{Name: "restcountries", SelfURL: "", CodeURL: "https://restcountries.com/v3.1/alpha/%s"},
}

// ErrNoProvider is returned when every provider in the chain fails.
var ErrNoProvider = errors.New("geoip: all providers failed")

// Client performs chained lookups across a list of providers.
type Client struct {
	http      *http.Client
	providers []Provider
	log       *zap.Logger
}

// NewClient builds a Client over the given providers; nil providers means
// DefaultProviders.
func NewClient(httpClient *http.Client, providers []Provider, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if providers == nil {
		providers = DefaultProviders
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: httpClient, providers: providers, log: log}
}

// Lookup resolves the caller's location from its IP, trying each provider in
// sequence until one yields a usable country code.
func (c *Client) Lookup(ctx context.Context) (*Location, error) {
	for _, p := range c.providers {
		if p.SelfURL == "" {
			continue
		}
		loc, err := c.fetch(ctx, p.SelfURL)
		if err != nil {
			c.log.Warn("geolocation provider failed",
				zap.String("provider", p.Name), zap.Error(err))
			continue
		}
		return loc, nil
	}
	return nil, ErrNoProvider
}

// LookupCountry resolves a location payload for an explicit country code.
func (c *Client) LookupCountry(ctx context.Context, code string) (*Location, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, p := range c.providers {
		if p.CodeURL == "" {
			continue
		}
		loc, err := c.fetch(ctx, fmt.Sprintf(p.CodeURL, code))
		if err != nil {
			c.log.Warn("country lookup provider failed",
				zap.String("provider", p.Name), zap.String("code", code), zap.Error(err))
			continue
		}
		loc.CountryCode = code
		return loc, nil
	}
	return nil, ErrNoProvider
}

// fetch performs one GET and normalizes whatever shape comes back.
func (c *Client) fetch(ctx context.Context, url string) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoip: status %d from %s", resp.StatusCode, url)
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	// Some services wrap the payload in a one-element array.
	obj, ok := raw.(map[string]any)
	if !ok {
		if arr, isArr := raw.([]any); isArr && len(arr) > 0 {
			obj, ok = arr[0].(map[string]any)
		}
	}
	if !ok {
		return nil, fmt.Errorf("geoip: unexpected payload from %s", url)
	}

	loc := normalize(obj)
	if loc.CountryCode == "" && loc.CountryName == "" {
		return nil, fmt.Errorf("geoip: no country in payload from %s", url)
	}
	return loc, nil
}

// normalize maps the field-name variants the providers use onto Location.
func normalize(obj map[string]any) *Location {
	loc := &Location{}

	for _, field := range []string{"country_code", "countryCode", "cca2"} {
		if v, ok := obj[field].(string); ok && len(v) == 2 {
			loc.CountryCode = strings.ToUpper(v)
			break
		}
	}
	// Some shapes put the two-letter code in "country" itself.
	if loc.CountryCode == "" {
		if v, ok := obj["country"].(string); ok && len(v) == 2 {
			loc.CountryCode = strings.ToUpper(v)
		}
	}

	for _, field := range []string{"country_name", "countryName", "country"} {
		if v, ok := obj[field].(string); ok && len(v) > 2 {
			loc.CountryName = v
			break
		}
	}
	if v, ok := obj["city"].(string); ok {
		loc.City = v
	}
	for _, field := range []string{"region", "regionName"} {
		if v, ok := obj[field].(string); ok && v != "" {
			loc.Region = v
			break
		}
	}
	for _, field := range []string{"ip", "query"} {
		if v, ok := obj[field].(string); ok && v != "" {
			loc.IP = v
			break
		}
	}
	return loc
}
