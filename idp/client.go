package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/models"
)

var (
	// ErrNoSession is returned when the provider reports no authenticated session
	ErrNoSession = errors.New("no session")

	// ErrSessionExpired is returned when the session token is already expired
	ErrSessionExpired = errors.New("session expired")

	// ErrLookupFailed is returned when the provider could not be queried
	ErrLookupFailed = errors.New("identity provider lookup failed")
)

// User represents the identity provider's view of an authenticated user
type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone"`
	PhoneConfirmedAt *time.Time   `json:"phone_confirmed_at"`
	AppMetadata      AppMetadata  `json:"app_metadata"`
	UserMetadata     UserMetadata `json:"user_metadata"`
}

// AppMetadata carries provider-managed metadata
type AppMetadata struct {
	Provider string `json:"provider"`
}

// UserMetadata carries user-managed profile metadata
type UserMetadata struct {
	FullName      string `json:"full_name"`
	PhoneVerified bool   `json:"phone_verified"`
	ProviderID    string `json:"provider_id"`
}

// PhoneVerified reports whether the user's phone number has been confirmed,
// either by the provider's own confirmation flow or by the profile flag.
func (u *User) PhoneVerified() bool {
	return u.PhoneConfirmedAt != nil || u.UserMetadata.PhoneVerified
}

// Identity converts the provider user into a request identity.
func (u *User) Identity() *models.Identity {
	return &models.Identity{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.UserMetadata.FullName,
		PhoneVerified: u.PhoneVerified(),
		Provider:      u.AppMetadata.Provider,
		ProviderID:    u.UserMetadata.ProviderID,
		Source:        models.SourceSession,
	}
}

// Client queries the identity provider for the user behind a session token
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new identity provider client
func NewClient(cfg config.IdentityConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetUser fetches the user behind a session access token.
// A 401/403 from the provider means no session (ErrNoSession); transport and
// server failures are ErrLookupFailed and must never be treated as a session.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}

	// Cheap local screen: an already-expired token never reaches the provider.
	if expired, err := tokenExpired(accessToken); err == nil && expired {
		return nil, ErrSessionExpired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrNoSession
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status code %d", ErrLookupFailed, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrLookupFailed, err)
	}

	if user.ID == "" {
		return nil, ErrNoSession
	}

	return &user, nil
}

// tokenExpired inspects the token's exp claim without verifying the
// signature. Verification is the provider's job; this only rejects tokens
// that cannot possibly be valid.
func tokenExpired(tokenString string) (bool, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		// Not a JWT at all; let the provider decide.
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Before(time.Now()), nil
}
