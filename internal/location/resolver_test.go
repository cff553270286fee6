package location

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/apartey/apartey-client/internal/geoip"
	"github.com/apartey/apartey-client/internal/session"
	"github.com/apartey/apartey-client/internal/storage"
)

// fakeGeo serves scripted lookup results, optionally gated on a channel so
// tests can control arrival order.
type fakeGeo struct {
	selfLoc *geoip.Location
	selfErr error
	// selfStarted is closed when Lookup is entered; selfGate blocks it.
	selfStarted chan struct{}
	selfGate    chan struct{}

	codeLoc *geoip.Location
	codeErr error
}

func (f *fakeGeo) Lookup(context.Context) (*geoip.Location, error) {
	if f.selfStarted != nil {
		close(f.selfStarted)
	}
	if f.selfGate != nil {
		<-f.selfGate
	}
	return f.selfLoc, f.selfErr
}

func (f *fakeGeo) LookupCountry(_ context.Context, code string) (*geoip.Location, error) {
	if f.codeErr != nil {
		return nil, f.codeErr
	}
	if f.codeLoc != nil {
		return f.codeLoc, nil
	}
	return &geoip.Location{CountryCode: code}, nil
}

func newTestResolver(t *testing.T, geo Lookup) (*Resolver, storage.Store) {
	t.Helper()
	kv := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	return NewResolver(kv, geo, zap.NewNop()), kv
}

func TestInitAppliesGeolocation(t *testing.T) {
	geo := &fakeGeo{selfLoc: &geoip.Location{CountryCode: "NG", CountryName: "Nigeria", City: "Lagos"}}
	r, kv := newTestResolver(t, geo)

	r.Init(context.Background())

	if got := r.SelectedCountryCode(); got != "NG" {
		t.Errorf("SelectedCountryCode = %q; want NG", got)
	}
	if r.CurrentState() != AutoResolved {
		t.Errorf("state = %v; want AutoResolved", r.CurrentState())
	}
	if r.IsLoading() || !r.Initialized() {
		t.Error("expected loading done and initialized")
	}
	if v, _ := kv.Get(session.KeySelectedCountry); v != "NG" {
		t.Errorf("persisted code = %q; want NG", v)
	}
	if v, ok := kv.Get(session.KeyUserLocation); !ok || v == "" {
		t.Error("expected location payload to be persisted")
	}
}

func TestInitUnsupportedCountryFallsBack(t *testing.T) {
	geo := &fakeGeo{selfLoc: &geoip.Location{CountryCode: "US", CountryName: "United States"}}
	r, _ := newTestResolver(t, geo)

	r.Init(context.Background())

	if got := r.SelectedCountryCode(); got != DefaultCode {
		t.Errorf("SelectedCountryCode = %q; want default %q", got, DefaultCode)
	}
}

func TestInitTotalFailureFallsBackToDefault(t *testing.T) {
	geo := &fakeGeo{selfErr: errors.New("all providers down")}
	r, kv := newTestResolver(t, geo)

	r.Init(context.Background())

	if got := r.SelectedCountryCode(); got != DefaultCode {
		t.Errorf("SelectedCountryCode = %q; want %q", got, DefaultCode)
	}
	if r.CurrentState() != ErrorResolved {
		t.Errorf("state = %v; want ErrorResolved", r.CurrentState())
	}
	if r.IsLoading() {
		t.Error("isLoading must transition to false on failure")
	}
	if r.Err() == nil {
		t.Error("expected the failure to be exposed")
	}
	if v, _ := kv.Get(session.KeySelectedCountry); v != DefaultCode {
		t.Errorf("persisted code = %q; want default", v)
	}
}

func TestManualOverrideBeatsStaleGeolocation(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	geo := &fakeGeo{
		selfLoc:     &geoip.Location{CountryCode: "NG", CountryName: "Nigeria"},
		selfStarted: started,
		selfGate:    gate,
		codeLoc:     &geoip.Location{CountryCode: "EE", CountryName: "Estonia"},
	}
	r, kv := newTestResolver(t, geo)

	done := make(chan struct{})
	go func() {
		r.Init(context.Background())
		close(done)
	}()
	<-started

	// Manual selection lands while geolocation is still in flight.
	r.Select(context.Background(), "EE")
	if got := r.SelectedCountryCode(); got != "EE" {
		t.Fatalf("SelectedCountryCode = %q; want EE", got)
	}

	// The late automatic result must not revert the manual choice.
	close(gate)
	<-done

	if got := r.SelectedCountryCode(); got != "EE" {
		t.Errorf("stale geolocation reverted selection to %q", got)
	}
	if r.CurrentState() != ManualResolved {
		t.Errorf("state = %v; want ManualResolved", r.CurrentState())
	}
	if v, _ := kv.Get(session.KeySelectedCountry); v != "EE" {
		t.Errorf("persisted code = %q; want EE", v)
	}
}

func TestLoadingClearsWhenReuseSelectSupersedesInit(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	geo := &fakeGeo{
		selfLoc:     &geoip.Location{CountryCode: "NG", CountryName: "Nigeria"},
		selfStarted: started,
		selfGate:    gate,
	}
	r, kv := newTestResolver(t, geo)

	// A persisted payload lets the manual selection complete without a
	// network call, so it never raises the loading flag itself.
	kv.Set(session.KeyUserLocation, `{"countryCode":"EE","countryName":"Estonia"}`)

	done := make(chan struct{})
	go func() {
		r.Init(context.Background())
		close(done)
	}()
	<-started

	r.Select(context.Background(), "EE")

	close(gate)
	<-done

	if r.IsLoading() {
		t.Error("IsLoading must be false once all resolution has completed")
	}
	if !r.Initialized() {
		t.Error("expected initialization to be complete")
	}
	if got := r.SelectedCountryCode(); got != "EE" {
		t.Errorf("code = %q; want EE", got)
	}
	if r.CurrentState() != ManualResolved {
		t.Errorf("state = %v; want ManualResolved", r.CurrentState())
	}
}

func TestAutoThenManualOverride(t *testing.T) {
	geo := &fakeGeo{
		selfLoc: &geoip.Location{CountryCode: "NG", CountryName: "Nigeria"},
		codeLoc: &geoip.Location{CountryCode: "EE", CountryName: "Estonia"},
	}
	r, kv := newTestResolver(t, geo)

	r.Init(context.Background())
	if got := r.SelectedCountryCode(); got != "NG" {
		t.Fatalf("after init code = %q; want NG", got)
	}

	r.Select(context.Background(), "EE")
	if got := r.SelectedCountryCode(); got != "EE" {
		t.Errorf("after select code = %q; want EE", got)
	}
	if v, _ := kv.Get(session.KeySelectedCountry); v != "EE" {
		t.Errorf("persisted code = %q; want EE", v)
	}
}

func TestSelectReusesPersistedPayload(t *testing.T) {
	geo := &fakeGeo{codeErr: errors.New("network must not be touched")}
	r, kv := newTestResolver(t, geo)

	kv.Set(session.KeyUserLocation, `{"countryCode":"LV","countryName":"Latvia","city":"Riga"}`)

	r.Select(context.Background(), "LV")

	if got := r.SelectedCountryCode(); got != "LV" {
		t.Errorf("code = %q; want LV", got)
	}
	if loc := r.Location(); loc == nil || loc.City != "Riga" {
		t.Errorf("location = %+v; want the persisted payload, not a fresh lookup", loc)
	}
	if r.CurrentState() != ManualResolved {
		t.Errorf("state = %v; want ManualResolved", r.CurrentState())
	}
}

func TestSelectLookupErrorUsesBuiltinPayload(t *testing.T) {
	geo := &fakeGeo{codeErr: errors.New("lookup down")}
	r, _ := newTestResolver(t, geo)

	r.Select(context.Background(), "FI")

	if got := r.SelectedCountryCode(); got != "FI" {
		t.Errorf("code = %q; want FI", got)
	}
	if loc := r.Location(); loc == nil || loc.CountryName != "Finland" {
		t.Errorf("location = %+v; want table payload for FI", loc)
	}
}

func TestSelectUnsupportedCodeFallsBack(t *testing.T) {
	geo := &fakeGeo{}
	r, _ := newTestResolver(t, geo)

	r.Select(context.Background(), "zz")
	if got := r.SelectedCountryCode(); got != DefaultCode {
		t.Errorf("code = %q; want default %q", got, DefaultCode)
	}
}

func TestRestoreFromStorageIsNotManual(t *testing.T) {
	kv := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	kv.Set(session.KeySelectedCountry, "LV")
	kv.Set(session.KeyUserLocation, `{"countryCode":"LV","countryName":"Latvia"}`)

	geo := &fakeGeo{selfLoc: &geoip.Location{CountryCode: "NG", CountryName: "Nigeria"}}
	r := NewResolver(kv, geo, zap.NewNop())

	// The restored selection is visible before geolocation resolves...
	if got := r.SelectedCountryCode(); got != "LV" {
		t.Fatalf("restored code = %q; want LV", got)
	}
	if r.Initialized() {
		t.Error("restore alone must not mark initialization complete")
	}

	// ...but it is only a placeholder: the automatic result still applies.
	r.Init(context.Background())
	if got := r.SelectedCountryCode(); got != "NG" {
		t.Errorf("code after init = %q; want NG", got)
	}
}
