// Package reservation talks to the third-party seat reservation service.
//
// Endpoints used:
//   - GET  /api/sites/{structure}/infos - room categories of a library
//   - GET  /api/resources/{structure}/available - per-seat slots for a day
//   - POST /api/reserve/{resource} - book one seat for a time range
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"seatkeeper/internal/availability"
	"seatkeeper/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://reservation.affluences.com"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second
)

// maxResponseSize limits response body reads.
const maxResponseSize = 10 * 1024 * 1024

var (
	ErrLookupFailed      = errors.New("lookup failed")
	ErrReservationFailed = errors.New("reservation failed")
)

// Config configures the client. Zero values fall back to the defaults.
type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            *logger.Logger
}

// Client is the reservation service HTTP client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(limit, burst),
		log:        cfg.Logger,
	}
}

// SiteInfo is the response of the site infos endpoint.
type SiteInfo struct {
	Types []availability.RoomCategory `json:"types"`
}

// SiteInfo fetches the room categories of a library structure.
func (c *Client) SiteInfo(ctx context.Context, structureID string) (*SiteInfo, error) {
	var info SiteInfo
	path := "/api/sites/" + url.PathEscape(structureID) + "/infos"
	if err := c.get(ctx, path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// AvailableQuery holds the query parameters of an availability lookup.
// Zero fields are not sent.
type AvailableQuery struct {
	Date         string
	ResourceType int
	Capacity     int
	Duration     int
	StartHour    string
}

func (q AvailableQuery) values() url.Values {
	v := url.Values{}
	v.Set("date", q.Date)
	if q.ResourceType != 0 {
		v.Set("type", strconv.Itoa(q.ResourceType))
	}
	if q.Capacity != 0 {
		v.Set("capacity", strconv.Itoa(q.Capacity))
	}
	if q.Duration != 0 {
		v.Set("duration", strconv.Itoa(q.Duration))
	}
	if q.StartHour != "" {
		v.Set("start_hour", q.StartHour)
	}
	return v
}

// Available fetches the per-slot state of every resource matching q.
func (c *Client) Available(ctx context.Context, structureID string, q AvailableQuery) ([]availability.Resource, error) {
	var resources []availability.Resource
	path := "/api/resources/" + url.PathEscape(structureID) + "/available"
	if err := c.get(ctx, path, q.values(), &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// ReserveRequest is the form body of a reservation.
type ReserveRequest struct {
	Email       string
	Date        string
	StartTime   string
	EndTime     string
	PersonCount int
}

func (r ReserveRequest) values() url.Values {
	count := r.PersonCount
	if count <= 0 {
		count = 1
	}
	v := url.Values{}
	v.Set("email", r.Email)
	v.Set("date", r.Date)
	v.Set("start_time", r.StartTime)
	v.Set("end_time", r.EndTime)
	v.Set("person_count", strconv.Itoa(count))
	return v
}

// Reserve books resourceID for the requested range.
func (c *Client) Reserve(ctx context.Context, resourceID int, req ReserveRequest) error {
	path := "/api/reserve/" + strconv.Itoa(resourceID)
	body := strings.NewReader(req.values().Encode())

	status, data, err := c.do(ctx, http.MethodPost, path, nil, body, "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReservationFailed, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: %s returned %d: %s", ErrReservationFailed, path, status, strings.TrimSpace(string(data)))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	status, data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: %s returned %d: %s", ErrLookupFailed, path, status, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrLookupFailed, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.LogUpstreamCall(ctx, method, path, 0, time.Since(start), err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.log.LogUpstreamCall(ctx, method, path, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
