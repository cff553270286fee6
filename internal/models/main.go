// Package models defines the wire structures shared by the API client and
// the dev server.
package models

import "time"

// User represents an Apartey account as reported by the backend.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the account email address.
	Email string `json:"email"`
	// Role is one of "renter", "homeowner", "agent".
	Role string `json:"role"`
	// IsOnboarded reports whether the post-signup wizard was completed.
	IsOnboarded bool `json:"isOnboarded"`
	// PasswordHash is the hashed password; never serialized.
	PasswordHash []byte `json:"-"`
	// CreatedAt is the account creation time.
	CreatedAt time.Time `json:"createdAt"`
}

// Review is a submitted property review record.
type Review struct {
	ID                string         `json:"id"`
	UserEmail         string         `json:"userEmail,omitempty"`
	StayDetails       map[string]any `json:"stayDetails"`
	CostDetails       map[string]any `json:"costDetails"`
	Accessibility     map[string]any `json:"accessibility"`
	Ratings           map[string]any `json:"ratings"`
	Location          map[string]any `json:"location"`
	SubmitAnonymously bool           `json:"submitAnonymously"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
