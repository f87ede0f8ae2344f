// Package client is a Go client for the duty schedule API together with the optimistic
// checklist, reorder board and background poller used by interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dutyroster/schedule-backend/internal/models"
)

// DefaultTimeout bounds every request made by a Client
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the /api surface of the server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sends the bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for a server such as "http://localhost:5000"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Login exchanges admin credentials for a token and uses it for later requests
func (c *Client) Login(ctx context.Context, id, password string) (*models.AdminLoginResponse, error) {
	var resp models.AdminLoginResponse
	req := models.AdminLoginRequest{ID: id, Password: password}
	if err := c.do(ctx, http.MethodPost, "/admin/login", nil, req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Today returns the duty schedule of the guest's unit for today
func (c *Client) Today(ctx context.Context, guestID int64, profileID *int64) (*models.TodaySchedule, error) {
	q := url.Values{"guest_id": {strconv.FormatInt(guestID, 10)}}
	if profileID != nil {
		q.Set("profile_id", strconv.FormatInt(*profileID, 10))
	}
	var schedule models.TodaySchedule
	if err := c.do(ctx, http.MethodGet, "/schedule/today", q, nil, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ProfileContent returns the Level → Mission → Step tree of a profile
func (c *Client) ProfileContent(ctx context.Context, profileID int64) ([]models.Level, error) {
	var tree []models.Level
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profiles/%d/content", profileID), nil, nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Progress returns the completed items of a guest; an empty date means today
func (c *Client) Progress(ctx context.Context, guestID int64, date string) (*models.ProgressResponse, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	var progress models.ProgressResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/progress/%d", guestID), q, nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// SetCompletion marks an item complete or incomplete
func (c *Client) SetCompletion(ctx context.Context, req *models.SetCompletionRequest) error {
	return c.do(ctx, http.MethodPost, "/progress", nil, req, nil)
}

// Assignments lists the duty assignments of a unit; empty bounds are open
func (c *Client) Assignments(ctx context.Context, unitID int64, start, end string) ([]models.AssignmentWithProgress, error) {
	q := url.Values{"unit_id": {strconv.FormatInt(unitID, 10)}}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	var rows []models.AssignmentWithProgress
	if err := c.do(ctx, http.MethodGet, "/assignments", q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Assign puts a guest on duty, replacing whoever held the slot
func (c *Client) Assign(ctx context.Context, req *models.AssignRequest) error {
	return c.do(ctx, http.MethodPost, "/assignments", nil, req, nil)
}

// ClearAssignment removes the assignment of a unit on a date
func (c *Client) ClearAssignment(ctx context.Context, unitID int64, date string) error {
	q := url.Values{"unit_id": {strconv.FormatInt(unitID, 10)}, "date": {date}}
	return c.do(ctx, http.MethodDelete, "/assignments", q, nil, nil)
}

// Reorder persists display positions of missions or steps
func (c *Client) Reorder(ctx context.Context, kind models.ItemKind, updates []models.OrderUpdate) error {
	if updates == nil {
		updates = []models.OrderUpdate{}
	}
	path := "/" + kind.String() + "s/reorder"
	return c.do(ctx, http.MethodPost, path, nil, models.ReorderRequest{Updates: updates}, nil)
}

// Stats returns the admin dashboard totals
func (c *Client) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PendingRequests returns guests waiting for membership approval
func (c *Client) PendingRequests(ctx context.Context) ([]models.GuestWithUnit, error) {
	var guests []models.GuestWithUnit
	if err := c.do(ctx, http.MethodGet, "/admin/requests", nil, nil, &guests); err != nil {
		return nil, err
	}
	return guests, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
