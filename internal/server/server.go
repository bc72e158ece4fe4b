// Package server provides the HTTP REST API for browsing acquired postings
// and triggering acquisition runs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mrojasb/jobs-radar/internal/acquire"
	"github.com/mrojasb/jobs-radar/internal/oauth"
	"github.com/mrojasb/jobs-radar/internal/posting"
	"github.com/mrojasb/jobs-radar/internal/store"
)

// Catalog is the read surface the browsing handlers need.
type Catalog interface {
	ListPostings(ctx context.Context, f store.ListFilter) ([]posting.Posting, error)
	GetPosting(ctx context.Context, externalID string) (*posting.Posting, error)
	CountPostings(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*store.Stats, error)
	ListRuns(ctx context.Context, limit int) ([]store.AcquisitionRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*store.AcquisitionRun, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	catalog     Catalog
	acquirer    *acquire.Acquirer
	oauthClient *oauth.Client
	validate    *validator.Validate

	// credsMu guards creds: the OAuth callback updates the access token
	// while acquire requests read it, and handlers run concurrently.
	credsMu sync.Mutex
	creds   Credentials
}

// credentials returns a snapshot of the current credentials.
func (s *Server) credentials() Credentials {
	s.credsMu.Lock()
	defer s.credsMu.Unlock()
	return s.creds
}

// setAccessToken swaps in a freshly exchanged access token.
func (s *Server) setAccessToken(token string) {
	s.credsMu.Lock()
	s.creds.AccessToken = token
	s.credsMu.Unlock()
}

// Credentials are the LinkedIn credentials handed to triggered runs.
type Credentials struct {
	Username    string
	Secret      string
	AccessToken string
}

// Config holds server configuration.
type Config struct {
	Port        int
	Catalog     Catalog
	Acquirer    *acquire.Acquirer
	OAuthClient *oauth.Client
	Credentials Credentials
}

// New creates a new server instance.
func New(cfg Config) *Server {
	s := &Server{
		catalog:     cfg.Catalog,
		acquirer:    cfg.Acquirer,
		oauthClient: cfg.OAuthClient,
		creds:       cfg.Credentials,
		validate:    validator.New(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // acquisition runs are slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the routed handler with middleware applied. Exposed so
// tests can drive the full stack through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Acquisition
	mux.HandleFunc("POST /acquire", s.handleAcquire)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)

	// Browsing
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/stats", s.handleStats)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)

	// OAuth flow
	mux.HandleFunc("GET /auth/linkedin/url", s.handleAuthURL)
	mux.HandleFunc("POST /auth/linkedin/callback", s.handleAuthCallback)

	return s.withLogging(s.withCORS(mux))
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
