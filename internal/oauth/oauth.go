// Package oauth implements the LinkedIn 3-legged authorization flow used to
// obtain an access token for the official job search API.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthBaseURL = "https://www.linkedin.com/oauth/v2"

	// scopes requested for job search access.
	requestedScope = "r_liteprofile r_emailaddress"

	exchangeTimeout = 15 * time.Second
)

// Token is the result of a successful code exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Error describes a failure in the authorization flow.
type Error struct {
	Step    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oauth %s: %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("oauth %s: %s", e.Step, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Client drives the authorization-code flow for one registered application.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	baseURL      string
	httpClient   *http.Client
}

// NewClient constructs a Client. baseURL overrides the LinkedIn endpoint
// for tests; pass "" for the real service.
func NewClient(clientID, clientSecret, redirectURI, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAuthBaseURL
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: exchangeTimeout},
	}
}

// Configured reports whether the application credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != "" && c.redirectURI != ""
}

// AuthorizationURL builds the URL the user must visit to grant access,
// along with the random state the caller must verify on callback.
func (c *Client) AuthorizationURL() (authURL, state string, err error) {
	if !c.Configured() {
		return "", "", &Error{Step: "authorize", Message: "client credentials not configured"}
	}

	state, err = randomState()
	if err != nil {
		return "", "", &Error{Step: "authorize", Message: "failed to generate state", Cause: err}
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("state", state)
	q.Set("scope", requestedScope)

	return c.baseURL + "/authorization?" + q.Encode(), state, nil
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	if !c.Configured() {
		return nil, &Error{Step: "exchange", Message: "client credentials not configured"}
	}
	if code == "" {
		return nil, &Error{Step: "exchange", Message: "authorization code is empty"}
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/accessToken", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Step: "exchange", Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Step: "exchange", Message: "token request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Step: "exchange", Message: "failed to read token response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Step: "exchange",
			Message: fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var tok Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, &Error{Step: "exchange", Message: "invalid token response", Cause: err}
	}
	if tok.AccessToken == "" {
		return nil, &Error{Step: "exchange", Message: "token response missing access_token"}
	}
	return &tok, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
