// Package sheets is the client for the spreadsheet script endpoint that holds
// the authoritative lead, follow-up and enquiry rows.
//
// Reads are GET requests with an action query parameter; writes are
// form-encoded POSTs. Every failure is classified as ErrTimeout,
// ErrUnavailable or ErrMalformedResponse so callers can degrade gracefully.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
)

var (
	// ErrUnavailable is returned when the endpoint cannot be reached or answers with a non-2xx status
	ErrUnavailable = errors.New("sheet endpoint unavailable")
	// ErrTimeout is returned when the request deadline expires
	ErrTimeout = errors.New("sheet endpoint timed out")
	// ErrMalformedResponse is returned for undecodable bodies, success:false and non-array data
	ErrMalformedResponse = errors.New("malformed sheet response")
	// ErrNotConfigured is returned when no script URL is set
	ErrNotConfigured = errors.New("sheet script URL not configured")

	// ErrInvalidUsername is returned by LoginUser for an unknown user
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned by LoginUser for a wrong password
	ErrInvalidPassword = errors.New("invalid password")
	// ErrLoginFailed is returned by LoginUser for any other rejection
	ErrLoginFailed = errors.New("login failed")
)

// Remote actions
const (
	ActionGetLeads       = "getLeads"
	ActionGetFollowUps   = "getFollowUps"
	ActionGetEnquiries   = "getEnquiries"
	ActionGetLastLeadNo  = "getLastLeadNo"
	ActionInsert         = "insert"
	ActionInsertFollowUp = "insertFollowUp"
	ActionLoginUser      = "loginUser"
)

// Config configures the client
type Config struct {
	ScriptURL      string
	Timeout        time.Duration
	LeadsSheet     string
	FollowUpsSheet string
	EnquiriesSheet string
	LoginSheet     string
}

// Observer is told about every remote call, e.g. to record metrics
type Observer func(action string, duration time.Duration, err error)

// Option customizes a Client
type Option func(*Client)

// WithObserver registers an observer for remote calls
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// Client talks to the script endpoint
type Client struct {
	cfg        Config
	httpClient *http.Client
	observe    Observer
}

// NewClient creates a new sheet client
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client configuration
func (c *Client) Config() Config { return c.cfg }

type rowsResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type writeResponse struct {
	Success  *bool  `json:"success"`
	Error    string `json:"error"`
	Username string `json:"username"`
}

// GetLeads fetches the raw leads rows
func (c *Client) GetLeads(ctx context.Context) ([][]string, error) {
	return c.getRows(ctx, ActionGetLeads, c.cfg.LeadsSheet)
}

// GetFollowUps fetches the raw follow-up rows
func (c *Client) GetFollowUps(ctx context.Context) ([][]string, error) {
	return c.getRows(ctx, ActionGetFollowUps, "")
}

// GetEnquiries fetches the raw enquiry rows
func (c *Client) GetEnquiries(ctx context.Context) ([][]string, error) {
	return c.getRows(ctx, ActionGetEnquiries, c.cfg.EnquiriesSheet)
}

// GetLastLeadNo returns the last lead number in the sheet, possibly blank
func (c *Client) GetLastLeadNo(ctx context.Context) (no string, err error) {
	defer c.track(ActionGetLastLeadNo, time.Now(), &err)

	body, err := c.get(ctx, ActionGetLastLeadNo, "")
	if err != nil {
		return "", err
	}
	var resp struct {
		LastLeadNo Cell `json:"lastLeadNo"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedResponse, ActionGetLastLeadNo, err)
	}
	return strings.TrimSpace(string(resp.LastLeadNo)), nil
}

// Insert appends row to sheetName
func (c *Client) Insert(ctx context.Context, sheetName string, row []string) (err error) {
	defer c.track(ActionInsert, time.Now(), &err)

	rowData, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	form := url.Values{}
	form.Set("action", ActionInsert)
	form.Set("sheetName", sheetName)
	form.Set("rowData", string(rowData))

	resp, err := c.post(ctx, ActionInsert, form)
	if err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		return fmt.Errorf("%w: %s rejected: %s", ErrMalformedResponse, ActionInsert, resp.Error)
	}
	return nil
}

// InsertFollowUp appends a follow-up; the script stamps the time itself
func (c *Client) InsertFollowUp(ctx context.Context, f models.FollowUp) (err error) {
	defer c.track(ActionInsertFollowUp, time.Now(), &err)

	form := url.Values{}
	form.Set("action", ActionInsertFollowUp)
	form.Set("sheetName", c.cfg.FollowUpsSheet)
	form.Set("leadNo", f.LeadNo)
	form.Set("leadStatus", string(f.LeadStatus))
	form.Set("nextFollowupDate", f.NextFollowupDate)
	form.Set("whatDidCustomerSay", f.WhatDidCustomerSay)

	resp, err := c.post(ctx, ActionInsertFollowUp, form)
	if err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		return fmt.Errorf("%w: %s rejected: %s", ErrMalformedResponse, ActionInsertFollowUp, resp.Error)
	}
	return nil
}

// LoginUser checks credentials against the login sheet and returns the
// username the sheet knows the user by
func (c *Client) LoginUser(ctx context.Context, username, password string) (name string, err error) {
	defer c.track(ActionLoginUser, time.Now(), &err)

	form := url.Values{}
	form.Set("action", ActionLoginUser)
	form.Set("sheetName", c.cfg.LoginSheet)
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.post(ctx, ActionLoginUser, form)
	if err != nil {
		return "", err
	}
	if resp.Success != nil && *resp.Success {
		if resp.Username == "" {
			return username, nil
		}
		return resp.Username, nil
	}

	switch resp.Error {
	case "invalid-username":
		return "", ErrInvalidUsername
	case "invalid-password":
		return "", ErrInvalidPassword
	default:
		return "", fmt.Errorf("%w: %s", ErrLoginFailed, resp.Error)
	}
}

func (c *Client) getRows(ctx context.Context, action, sheetName string) (rows [][]string, err error) {
	defer c.track(action, time.Now(), &err)

	body, err := c.get(ctx, action, sheetName)
	if err != nil {
		return nil, err
	}

	var resp rowsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, action, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s returned success=false %s", ErrMalformedResponse, action, resp.Error)
	}

	var data []Row
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %s data is not an array of rows", ErrMalformedResponse, action)
	}

	rows = make([][]string, len(data))
	for i, r := range data {
		rows[i] = r.Strings()
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, action, sheetName string) ([]byte, error) {
	if c.cfg.ScriptURL == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(c.cfg.ScriptURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad script URL: %v", ErrNotConfigured, err)
	}
	q := u.Query()
	q.Set("action", action)
	if sheetName != "" {
		q.Set("sheetName", sheetName)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, action)
}

func (c *Client) post(ctx context.Context, action string, form url.Values) (*writeResponse, error) {
	if c.cfg.ScriptURL == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ScriptURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, action)
	if err != nil {
		return nil, err
	}
	var resp writeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, action, err)
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, action string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(req.Context(), action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, classify(req.Context(), action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, action, resp.StatusCode)
	}
	return body, nil
}

func classify(ctx context.Context, action string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, action, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, action, err)
}

func (c *Client) track(action string, start time.Time, err *error) {
	if c.observe != nil {
		c.observe(action, time.Since(start), *err)
	}
}

// IsTransient reports whether err is a timeout or an unreachable endpoint
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotConfigured)
}
