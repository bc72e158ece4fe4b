package server

import (
	"encoding/json"
	"net/http"
)

// AuthURLResponse represents the response for /auth/linkedin/url.
type AuthURLResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// CallbackRequest represents the request body for /auth/linkedin/callback.
type CallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

// handleAuthURL returns the LinkedIn authorization URL the user must visit.
// The returned state must be sent back verbatim by the frontend; this
// service is stateless, so state verification happens client-side against
// the callback redirect.
func (s *Server) handleAuthURL(w http.ResponseWriter, _ *http.Request) {
	if s.oauthClient == nil || !s.oauthClient.Configured() {
		s.errorResponse(w, http.StatusServiceUnavailable, "LinkedIn OAuth is not configured")
		return
	}

	authURL, state, err := s.oauthClient.AuthorizationURL()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to build authorization URL: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, AuthURLResponse{AuthURL: authURL, State: state})
}

// handleAuthCallback exchanges the authorization code for an access token
// and stores it for subsequent acquisition runs.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthClient == nil || !s.oauthClient.Configured() {
		s.errorResponse(w, http.StatusServiceUnavailable, "LinkedIn OAuth is not configured")
		return
	}

	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	tok, err := s.oauthClient.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Token exchange failed: "+err.Error())
		return
	}

	// Later acquisition runs pick up the token without a restart.
	s.setAccessToken(tok.AccessToken)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "authorized",
		"expires_in": tok.ExpiresIn,
	})
}
