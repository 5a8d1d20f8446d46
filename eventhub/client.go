package eventhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client defines the EventHub batch-persistence operations the import
// pipeline depends on. Every batch call returns the records the backend
// actually created plus per-item error strings; the two lists together
// cover the whole request batch.
type Client interface {
	CreateBooths(ctx context.Context, booths []Booth) ([]Booth, []string, error)
	CreateSessions(ctx context.Context, sessions []Session) ([]Session, []string, error)
	CreateCapacityLinks(ctx context.Context, links []CapacityLink) ([]CapacityLink, []string, error)
	FindOrCreateAttendees(ctx context.Context, attendees []Attendee) ([]Attendee, []string, error)
	MarkAttendeesAsVendor(ctx context.Context, attendeeIDs []int64) ([]int64, []string, error)
	CreateRegistrations(ctx context.Context, registrations []Registration) ([]Registration, []string, error)
	GetEvent(ctx context.Context) (Event, error)
	UpdateEventDateRange(ctx context.Context, start, end time.Time) error
	RefreshCachedViews(ctx context.Context) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIToken   string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	apiToken   string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiToken:   strings.TrimSpace(cfg.APIToken),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

type Booth struct {
	ID          int64  `json:"id,omitempty"`
	PhysicalID  string `json:"physicalId"`
	CompanyName string `json:"companyName"`
}

type Session struct {
	ID       int64     `json:"id,omitempty"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

type CapacityLink struct {
	ID        int64 `json:"id,omitempty"`
	SessionID int64 `json:"sessionId"`
	BoothID   int64 `json:"boothId"`
	Capacity  int   `json:"capacity"`
}

type Attendee struct {
	ID           int64  `json:"id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Organization string `json:"organization"`
	Vendor       bool   `json:"vendor,omitempty"`
}

type Registration struct {
	ID         int64  `json:"id,omitempty"`
	SessionID  int64  `json:"sessionId"`
	AttendeeID int64  `json:"attendeeId"`
	BoothID    *int64 `json:"boothId,omitempty"`
}

type Event struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

type boothBatchResponse struct {
	Created []Booth  `json:"created"`
	Errors  []string `json:"errors"`
}

type sessionBatchResponse struct {
	Created []Session `json:"created"`
	Errors  []string  `json:"errors"`
}

type capacityBatchResponse struct {
	Created []CapacityLink `json:"created"`
	Errors  []string       `json:"errors"`
}

type attendeeBatchResponse struct {
	Created []Attendee `json:"created"`
	Errors  []string   `json:"errors"`
}

type markVendorRequest struct {
	AttendeeIDs []int64 `json:"attendeeIds"`
}

type markVendorResponse struct {
	Marked []int64  `json:"marked"`
	Errors []string `json:"errors"`
}

type registrationBatchResponse struct {
	Created []Registration `json:"created"`
	Errors  []string       `json:"errors"`
}

type dateRangeRequest struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

func (c *HTTPClient) CreateBooths(ctx context.Context, booths []Booth) ([]Booth, []string, error) {
	var out boothBatchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/booths/batch", booths, &out); err != nil {
		return nil, nil, err
	}
	return out.Created, out.Errors, nil
}

func (c *HTTPClient) CreateSessions(ctx context.Context, sessions []Session) ([]Session, []string, error) {
	var out sessionBatchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/sessions/batch", sessions, &out); err != nil {
		return nil, nil, err
	}
	return out.Created, out.Errors, nil
}

func (c *HTTPClient) CreateCapacityLinks(ctx context.Context, links []CapacityLink) ([]CapacityLink, []string, error) {
	var out capacityBatchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/capacity-links/batch", links, &out); err != nil {
		return nil, nil, err
	}
	return out.Created, out.Errors, nil
}

func (c *HTTPClient) FindOrCreateAttendees(ctx context.Context, attendees []Attendee) ([]Attendee, []string, error) {
	var out attendeeBatchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/attendees/find-or-create", attendees, &out); err != nil {
		return nil, nil, err
	}
	return out.Created, out.Errors, nil
}

func (c *HTTPClient) MarkAttendeesAsVendor(ctx context.Context, attendeeIDs []int64) ([]int64, []string, error) {
	var out markVendorResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/attendees/mark-vendor", markVendorRequest{AttendeeIDs: attendeeIDs}, &out); err != nil {
		return nil, nil, err
	}
	return out.Marked, out.Errors, nil
}

func (c *HTTPClient) CreateRegistrations(ctx context.Context, registrations []Registration) ([]Registration, []string, error) {
	var out registrationBatchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/registrations/batch", registrations, &out); err != nil {
		return nil, nil, err
	}
	return out.Created, out.Errors, nil
}

func (c *HTTPClient) GetEvent(ctx context.Context) (Event, error) {
	var out Event
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/event", nil, &out); err != nil {
		return Event{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateEventDateRange(ctx context.Context, start, end time.Time) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/event/date-range", dateRangeRequest{StartsAt: start, EndsAt: end}, nil)
}

func (c *HTTPClient) RefreshCachedViews(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/views/refresh", nil, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	url := c.baseURL + endpointPath
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
