package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mrojasb/jobs-radar/internal/fetch"
	"github.com/mrojasb/jobs-radar/internal/posting"
)

// apiVersion is the dated version header the REST job search endpoint
// requires.
const apiVersion = "202304"

// oauthSearchPageSize is the endpoint's maximum page size.
const oauthSearchPageSize = 50

// OAuthStrategy calls the source's public REST job search with a delegated
// access token. The token is an opaque pass-through obtained elsewhere (see
// the oauth package); this strategy never refreshes or validates it.
type OAuthStrategy struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewOAuthStrategy constructs the delegated-token strategy. An empty token
// makes Extract report ErrNotConfigured.
func NewOAuthStrategy(baseURL, accessToken string) *OAuthStrategy {
	return &OAuthStrategy{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: fetch.DefaultTimeout},
	}
}

func (s *OAuthStrategy) Name() string { return "oauth-api" }

// oauthSearchResponse mirrors the REST jobSearches payload.
type oauthSearchResponse struct {
	Elements []oauthJobElement `json:"elements"`
}

type oauthJobElement struct {
	JobPostingID   json.Number `json:"jobPostingId"`
	Title          string      `json:"title"`
	CompanyName    string      `json:"companyName"`
	Location       string      `json:"location"`
	Description    string      `json:"description"`
	JobPostingURL  string      `json:"jobPostingUrl"`
	EmploymentType string      `json:"employmentType"`
	SeniorityLevel string      `json:"seniorityLevel"`
	SalaryInsight  struct {
		MinSalary    int64  `json:"minSalary"`
		MaxSalary    int64  `json:"maxSalary"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"salaryInsight"`
}

// Extract implements Strategy. Non-2xx responses are this-strategy failures.
func (s *OAuthStrategy) Extract(ctx context.Context, params Params) ([]posting.RawRecord, error) {
	if s.accessToken == "" {
		return nil, fmt.Errorf("oauth-api: %w", ErrNotConfigured)
	}

	base := s.baseURL
	if base == "" {
		base = "https://api.linkedin.com"
	}

	count := params.MaxResults
	if count > oauthSearchPageSize {
		count = oauthSearchPageSize
	}

	q := url.Values{}
	q.Set("keywords", params.Term)
	q.Set("locationFallback", params.Location)
	q.Set("count", strconv.Itoa(count))
	q.Set("start", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/rest/jobSearches?"+q.Encode(), nil)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "request build failed", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("LinkedIn-Version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "response read failed", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StrategyError{Strategy: s.Name(), Message: fmt.Sprintf("API returned status %d", resp.StatusCode)}
	}

	var out oauthSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "response decode failed", Cause: err}
	}

	records := make([]posting.RawRecord, 0, len(out.Elements))
	for _, el := range out.Elements {
		records = append(records, &posting.OAuthRecord{
			JobPostingID:   el.JobPostingID.String(),
			Title:          el.Title,
			CompanyName:    el.CompanyName,
			Location:       el.Location,
			Description:    el.Description,
			JobPostingURL:  el.JobPostingURL,
			EmploymentType: el.EmploymentType,
			SeniorityLevel: el.SeniorityLevel,
			SalaryRange: formatSalary(
				el.SalaryInsight.CurrencyCode,
				el.SalaryInsight.MinSalary,
				el.SalaryInsight.MaxSalary,
			),
		})
	}
	return records, nil
}
