// Package location establishes and exposes the user's active marketplace
// country, reconciling IP geolocation, a persisted prior selection, and live
// user override.
package location

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/apartey/apartey-client/internal/geoip"
	"github.com/apartey/apartey-client/internal/session"
	"github.com/apartey/apartey-client/internal/storage"
)

// Country describes a supported marketplace locale.
type Country struct {
	Code     string
	Name     string
	Currency string
}

// Supported is the fixed set of marketplace countries.
var Supported = map[string]Country{
	"EE": {Code: "EE", Name: "Estonia", Currency: "EUR"},
	"NG": {Code: "NG", Name: "Nigeria", Currency: "NGN"},
	"LV": {Code: "LV", Name: "Latvia", Currency: "EUR"},
	"FI": {Code: "FI", Name: "Finland", Currency: "EUR"},
}

// DefaultCode is the fallback marketplace country.
const DefaultCode = "EE"

// State names the resolution phase the resolver is in.
type State int

const (
	// Uninitialized means no resolution has completed yet.
	Uninitialized State = iota
	// AutoResolved means the IP geolocation result is active.
	AutoResolved
	// ErrorResolved means geolocation failed and the default applies.
	ErrorResolved
	// ManualResolved means a user-selected country is active.
	ManualResolved
)

// Lookup is the slice of the geoip client the resolver uses.
type Lookup interface {
	Lookup(ctx context.Context) (*geoip.Location, error)
	LookupCountry(ctx context.Context, code string) (*geoip.Location, error)
}

// Resolver reconciles the three location sources. Every asynchronous
// operation is tagged with a generation number; only a result matching the
// current generation is applied, so a slow geolocation response arriving
// after a manual override is discarded rather than cancelled.
type Resolver struct {
	kv  storage.Store
	geo Lookup
	log *zap.Logger

	mu          sync.Mutex
	state       State
	gen         uint64
	loc         *geoip.Location
	code        string
	loading     bool
	err         error
	initialized bool
}

// NewResolver builds a Resolver and restores any persisted selection so the
// display code is usable before geolocation resolves. The restore does not
// count as a manual override: Init's automatic result may still replace it.
func NewResolver(kv storage.Store, geo Lookup, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{kv: kv, geo: geo, log: log, code: DefaultCode}

	if v, ok := kv.Get(session.KeySelectedCountry); ok {
		if _, supported := Supported[v]; supported {
			r.code = v
		}
	}
	if raw, ok := kv.Get(session.KeyUserLocation); ok {
		var loc geoip.Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil && loc.CountryCode != "" {
			r.loc = &loc
		}
	}
	return r
}

// Init runs the one-shot IP geolocation and applies its result unless a
// manual selection happened in the meantime. A total provider failure falls
// back to the default country. Blocks until resolution completes; run it in
// its own goroutine.
func (r *Resolver) Init(ctx context.Context) {
	r.mu.Lock()
	gen := r.gen
	r.loading = true
	r.mu.Unlock()

	loc, err := r.geo.Lookup(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		// A manual change won the race; this result is stale. The manual
		// path may have finished already, so settle the loading flag here.
		r.loading = false
		r.initialized = true
		return
	}

	if err != nil {
		r.log.Warn("geolocation failed, falling back to default country", zap.Error(err))
		r.applyLocked(fallbackLocation(DefaultCode), ErrorResolved)
		r.err = err
	} else {
		if _, supported := Supported[loc.CountryCode]; !supported {
			loc = fallbackLocation(DefaultCode)
		}
		r.applyLocked(loc, AutoResolved)
		r.err = nil
	}
	r.loading = false
	r.initialized = true
}

// Select applies a user-initiated country change. A persisted payload
// matching the code is reused without a network call; otherwise a fresh
// lookup runs, falling back to the supported-country table on error. The
// selection always invalidates any in-flight automatic result.
func (r *Resolver) Select(ctx context.Context, code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := Supported[code]; !ok {
		code = DefaultCode
	}

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.code = code
	r.kv.Set(session.KeySelectedCountry, code)

	// Reuse a persisted payload when it already matches.
	if raw, ok := r.kv.Get(session.KeyUserLocation); ok {
		var loc geoip.Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil && loc.CountryCode == code {
			r.applyLocked(&loc, ManualResolved)
			r.loading = false
			r.mu.Unlock()
			return
		}
	}
	r.loading = true
	r.mu.Unlock()

	loc, err := r.geo.LookupCountry(ctx, code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		r.loading = false
		return
	}
	if err != nil {
		r.log.Warn("country lookup failed, using built-in payload",
			zap.String("code", code), zap.Error(err))
		loc = fallbackLocation(code)
	}
	r.applyLocked(loc, ManualResolved)
	r.loading = false
}

// applyLocked installs loc as the active location and persists both the
// payload and the derived code. Caller must hold r.mu.
func (r *Resolver) applyLocked(loc *geoip.Location, st State) {
	r.loc = loc
	r.code = loc.CountryCode
	r.state = st

	if data, err := json.Marshal(loc); err == nil {
		r.kv.Set(session.KeyUserLocation, string(data))
	}
	r.kv.Set(session.KeySelectedCountry, loc.CountryCode)
}

// fallbackLocation builds a payload from the supported-country table.
func fallbackLocation(code string) *geoip.Location {
	c, ok := Supported[code]
	if !ok {
		c = Supported[DefaultCode]
	}
	return &geoip.Location{CountryCode: c.Code, CountryName: c.Name}
}

// Location returns the currently resolved payload, or nil.
func (r *Resolver) Location() *geoip.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loc
}

// SelectedCountryCode returns the active marketplace country code.
func (r *Resolver) SelectedCountryCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code
}

// IsLoading reports whether a resolution is in flight.
func (r *Resolver) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Err returns the last geolocation error, if any.
func (r *Resolver) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Initialized reports whether the startup resolution has completed.
func (r *Resolver) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// CurrentState returns the resolution phase.
func (r *Resolver) CurrentState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
