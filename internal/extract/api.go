package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrojasb/jobs-radar/internal/fetch"
	"github.com/mrojasb/jobs-radar/internal/posting"
)

// APIStrategy queries the source's private search API with a username and
// secret. It authenticates once per extraction to obtain a session cookie and
// then issues the search plus per-job detail lookups.
//
// Any transport or authentication error fails this strategy only; the chain
// falls through.
type APIStrategy struct {
	baseURL  string
	username string
	secret   string
	client   *http.Client

	// detailDelay paces per-job detail requests.
	detailDelay time.Duration
}

// apiDetailDelay is the fixed delay between consecutive detail lookups.
const apiDetailDelay = 2 * time.Second

// NewAPIStrategy constructs the authenticated-API strategy. Empty credentials
// make Extract report ErrNotConfigured.
func NewAPIStrategy(baseURL, username, secret string) *APIStrategy {
	jar, _ := cookiejar.New(nil)
	return &APIStrategy{
		baseURL:     baseURL,
		username:    username,
		secret:      secret,
		client:      &http.Client{Timeout: fetch.DefaultTimeout, Jar: jar},
		detailDelay: apiDetailDelay,
	}
}

func (s *APIStrategy) Name() string { return "auth-api" }

// Extract implements Strategy.
func (s *APIStrategy) Extract(ctx context.Context, params Params) ([]posting.RawRecord, error) {
	if s.username == "" || s.secret == "" {
		return nil, fmt.Errorf("auth-api: %w", ErrNotConfigured)
	}

	if err := s.login(ctx); err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "login failed", Cause: err}
	}

	hits, err := s.search(ctx, params)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "search failed", Cause: err}
	}

	records := make([]posting.RawRecord, 0, len(hits))
	for i, hit := range hits {
		rec, err := s.buildRecord(ctx, hit)
		if err != nil {
			// One bad hit never aborts the rest of the batch.
			continue
		}
		records = append(records, rec)
		if i < len(hits)-1 {
			select {
			case <-ctx.Done():
				return records, nil
			case <-time.After(s.detailDelay):
			}
		}
	}
	return records, nil
}

func (s *APIStrategy) base() string {
	if s.baseURL == "" {
		return defaultBaseURL
	}
	return s.baseURL
}

// login obtains a session cookie for subsequent API calls.
func (s *APIStrategy) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("session_key", s.username)
	form.Set("session_password", s.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.base()+"/uas/authenticate", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication returned status %d", resp.StatusCode)
	}
	return nil
}

// apiSearchResponse mirrors the private search API response shape.
type apiSearchResponse struct {
	Elements []apiSearchHit `json:"elements"`
}

type apiSearchHit struct {
	TrackingURN       string `json:"trackingUrn"`
	Title             string `json:"title"`
	FormattedLocation string `json:"formattedLocation"`
	ListedAt          int64  `json:"listedAt"` // unix milliseconds
	CompanyDetails    struct {
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
	} `json:"companyDetails"`
}

// apiJobDetail mirrors the per-job detail payload.
type apiJobDetail struct {
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	EmploymentType string `json:"employmentType"`
	SeniorityLevel string `json:"seniorityLevel"`
	SalaryInsights struct {
		BaseCompensationRange struct {
			Min          int64  `json:"min"`
			Max          int64  `json:"max"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"baseCompensationRange"`
	} `json:"salaryInsights"`
}

func (s *APIStrategy) search(ctx context.Context, params Params) ([]apiSearchHit, error) {
	q := url.Values{}
	q.Set("keywords", params.Term)
	q.Set("location", params.Location)
	q.Set("count", strconv.Itoa(params.MaxResults))

	var out apiSearchResponse
	if err := s.getJSON(ctx, s.base()+"/voyager/api/jobs/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Elements, nil
}

// buildRecord converts one search hit plus its best-effort detail lookup into
// an APIRecord.
func (s *APIStrategy) buildRecord(ctx context.Context, hit apiSearchHit) (*posting.APIRecord, error) {
	jobID := trackingID(hit.TrackingURN)

	rec := &posting.APIRecord{
		TrackingID: jobID,
		Title:      hit.Title,
		Company:    hit.CompanyDetails.Company.Name,
		Location:   hit.FormattedLocation,
	}
	if hit.ListedAt > 0 {
		rec.ListedAt = time.UnixMilli(hit.ListedAt).UTC()
	}
	if jobID != "" {
		rec.URL = s.base() + "/jobs/view/" + jobID

		// Detail lookup is best-effort: a failure leaves the record with
		// search-level fields only.
		var detail apiJobDetail
		if err := s.getJSON(ctx, s.base()+"/voyager/api/jobs/jobPostings/"+jobID, &detail); err == nil {
			rec.Description = detail.Description.Text
			rec.EmploymentType = detail.EmploymentType
			rec.SeniorityLevel = detail.SeniorityLevel
			rec.SalaryRange = formatSalary(
				detail.SalaryInsights.BaseCompensationRange.CurrencyCode,
				detail.SalaryInsights.BaseCompensationRange.Min,
				detail.SalaryInsights.BaseCompensationRange.Max,
			)
		}
	}
	if rec.Description == "" {
		rec.Description = fmt.Sprintf("Posición de %s en %s. Trabajo remoto disponible.", rec.Title, rec.Company)
	}
	return rec, nil
}

func (s *APIStrategy) getJSON(ctx context.Context, urlStr string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// trackingID extracts the job ID from a tracking URN such as
// "urn:li:jobPosting:4021337".
func trackingID(urn string) string {
	if urn == "" {
		return ""
	}
	if idx := strings.LastIndex(urn, ":"); idx >= 0 {
		return urn[idx+1:]
	}
	return urn
}

// formatSalary renders a compensation range as "CCY 2,500,000 - 3,500,000".
// It returns "" when the range is absent; salary is never inferred.
func formatSalary(currency string, minV, maxV int64) string {
	if minV <= 0 || maxV <= 0 {
		return ""
	}
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %s - %s", currency, groupDigits(minV), groupDigits(maxV))
}

// groupDigits inserts thousands separators into a non-negative integer.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
