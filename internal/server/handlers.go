package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mrojasb/jobs-radar/internal/extract"
	"github.com/mrojasb/jobs-radar/internal/posting"
	"github.com/mrojasb/jobs-radar/internal/store"
)

// AcquireRequest represents the request body for /acquire.
type AcquireRequest struct {
	Term       string `json:"term" validate:"required,min=2,max=100"`
	Location   string `json:"location" validate:"omitempty,max=100"`
	MaxResults int    `json:"max_results" validate:"omitempty,min=1,max=200"`
}

// JobsResponse represents the response for /jobs.
type JobsResponse struct {
	Jobs  []JobItem `json:"jobs"`
	Count int       `json:"count"`
	Total int       `json:"total"`
}

// JobItem is one posting as exposed by the API.
type JobItem struct {
	ExternalID      string  `json:"external_id"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
	EmploymentType  string  `json:"employment_type"`
	SeniorityLevel  string  `json:"seniority_level"`
	SalaryRange     *string `json:"salary_range,omitempty"`
	SourceURL       string  `json:"source_url"`
	PostedAt        string  `json:"posted_at"`
	RequiresEnglish bool    `json:"requires_english"`
}

// handleAcquire triggers one acquisition run synchronously and returns its
// summary. Duplicates are not an error: a repeat run reports saved_count 0.
func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var req AcquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	creds := s.credentials()
	sum := s.acquirer.Acquire(r.Context(), extract.Params{
		Term:       req.Term,
		Location:   req.Location,
		MaxResults: req.MaxResults,
	}, extract.Credentials{
		Username:    creds.Username,
		Secret:      creds.Secret,
		AccessToken: creds.AccessToken,
	})

	status := http.StatusOK
	if !sum.Succeeded {
		status = http.StatusBadGateway
	}
	s.jsonResponse(w, status, sum)
}

// handleListJobs returns stored postings, newest first, honoring the
// query-string filters.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ListFilter{
		Company:  q.Get("company"),
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}

	if v := q.Get("no_english"); v != "" {
		noEnglish, err := strconv.ParseBool(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "no_english must be a boolean")
			return
		}
		filter.NoEnglish = &noEnglish
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset")); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	postings, err := s.catalog.ListPostings(r.Context(), filter)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	total, err := s.catalog.CountPostings(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	items := make([]JobItem, 0, len(postings))
	for _, p := range postings {
		items = append(items, toJobItem(p))
	}

	s.jsonResponse(w, http.StatusOK, JobsResponse{Jobs: items, Count: len(items), Total: total})
}

// handleGetJob returns one posting by its external ID.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	p, err := s.catalog.GetPosting(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, toJobItem(*p))
}

func toJobItem(p posting.Posting) JobItem {
	return JobItem{
		ExternalID:      p.ExternalID,
		Title:           p.Title,
		Company:         p.Company,
		Location:        p.Location,
		Description:     p.Description,
		EmploymentType:  p.EmploymentType,
		SeniorityLevel:  p.SeniorityLevel,
		SalaryRange:     p.SalaryRange,
		SourceURL:       p.SourceURL,
		PostedAt:        p.PostedAt.Format("2006-01-02"),
		RequiresEnglish: p.RequiresEnglish,
	}
}

// handleStats returns aggregate statistics over the stored postings.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.GetStats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleListRuns returns recent acquisition runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query().Get("limit"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	runs, err := s.catalog.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleGetRun returns one acquisition run record.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	run, err := s.catalog.GetRun(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
