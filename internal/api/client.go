// Package api is the HTTP client for the Apartey backend. Every request
// carries a bearer token when one is stored; a 401 clears credentials and
// forces the sign-in flow.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apartey/apartey-client/internal/models"
	"github.com/apartey/apartey-client/internal/review"
	"github.com/apartey/apartey-client/internal/session"
)

// ErrUnauthorized is returned when the backend rejects the session token.
var ErrUnauthorized = errors.New("api: unauthorized")

// Error carries a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client talks to the backend REST API.
type Client struct {
	http    *http.Client
	baseURL string
	sess    *session.Store
	log     *zap.Logger

	// onUnauthorized runs after a 401 clears the credentials, typically
	// navigating to the sign-in page.
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUnauthorizedHook sets the callback invoked after a 401.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New constructs a Client for the API at baseURL.
func New(baseURL string, sess *session.Store, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		sess:    sess,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one JSON request. out, when non-nil, receives the decoded
// response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.sess.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(path) {
		// The one error that changes global state: credentials are gone.
		// A 401 from the auth endpoints is just a failed attempt and must
		// not tear down an existing session.
		c.sess.ClearAllTokens()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}

// isAuthEndpoint reports whether path is a credential-presenting endpoint,
// mirroring the server middleware's public-path carve-out.
func isAuthEndpoint(path string) bool {
	return strings.HasPrefix(path, "/api/auth/")
}

// readMessage extracts a {"message": ...} body, degrading to raw text.
func readMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return string(bytes.TrimSpace(data))
}

// SignIn authenticates with email and password. The response token and any
// mirrored fields are stored through the session.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var payload map[string]any
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		return err
	}
	if !c.sess.UpdateFromResponse(payload) {
		return errors.New("api: sign-in response carried no token")
	}
	return nil
}

// SignUp creates an account and stores the resulting session token.
func (c *Client) SignUp(ctx context.Context, email, password, role string) error {
	var payload map[string]any
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"role":     role,
	}, &payload)
	if err != nil {
		return err
	}
	if !c.sess.UpdateFromResponse(payload) {
		return errors.New("api: sign-up response carried no token")
	}
	return nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SubmitReview sends a finished review draft to the backend.
func (c *Client) SubmitReview(ctx context.Context, d review.Draft) error {
	return c.do(ctx, http.MethodPost, "/api/reviews", d, nil)
}

// SubmitContact sends a contact-form message.
func (c *Client) SubmitContact(ctx context.Context, msg models.ContactMessage) error {
	return c.do(ctx, http.MethodPost, "/api/contact", msg, nil)
}
