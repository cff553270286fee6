// Package review holds the pending review draft: an in-progress review form
// persisted so an unauthenticated user can start a review, detour through
// sign-in, and resume afterwards.
package review

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/apartey/apartey-client/internal/session"
	"github.com/apartey/apartey-client/internal/storage"
)

// Draft bundles the sections of an in-progress property review. Sections are
// free-form objects; the backend validates their contents on submission.
type Draft struct {
	ID                string         `json:"id"`
	StayDetails       map[string]any `json:"stayDetails"`
	CostDetails       map[string]any `json:"costDetails"`
	Accessibility     map[string]any `json:"accessibility"`
	Ratings           map[string]any `json:"ratings"`
	Location          map[string]any `json:"location"`
	SubmitAnonymously bool           `json:"submitAnonymously"`
}

// Normalize fills a partial draft into the canonical shape: missing sections
// become empty objects, a missing ID is assigned. SubmitAnonymously already
// defaults to false by virtue of being a bool.
func Normalize(d Draft) Draft {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.StayDetails == nil {
		d.StayDetails = map[string]any{}
	}
	if d.CostDetails == nil {
		d.CostDetails = map[string]any{}
	}
	if d.Accessibility == nil {
		d.Accessibility = map[string]any{}
	}
	if d.Ratings == nil {
		d.Ratings = map[string]any{}
	}
	if d.Location == nil {
		d.Location = map[string]any{}
	}
	return d
}

// Load reads the persisted draft. Malformed or absent data reads as no draft.
func Load(kv storage.Store) (Draft, bool) {
	raw, ok := kv.Get(session.KeyPendingReview)
	if !ok || raw == "" {
		return Draft{}, false
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, false
	}
	return Normalize(d), true
}

// Save persists the draft in canonical form.
func Save(kv storage.Store, d Draft) error {
	data, err := json.Marshal(Normalize(d))
	if err != nil {
		return err
	}
	kv.Set(session.KeyPendingReview, string(data))
	return nil
}

// Clear removes the persisted draft.
func Clear(kv storage.Store) {
	kv.Delete(session.KeyPendingReview)
}
