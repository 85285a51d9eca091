package labapi

import (
	"bytes"
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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/labctl/labctl/internal/logging"
)

// Service defines the remote operations on labs.
// This interface is implemented by *Client and can be used for testing.
type Service interface {
	List(ctx context.Context, filter FilterKey) ([]Lab, error)
	Get(ctx context.Context, id string) (Lab, error)
	Create(ctx context.Context, draft CreateLabRequest) (Lab, error)
	Update(ctx context.Context, id string, draft CreateLabRequest) (Lab, error)
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (Lab, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the lab HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       logrus.FieldLogger
}

const (
	defaultBaseURL   = "http://127.0.0.1:8080"
	defaultUserAgent = "labctl/0.1"
	defaultTimeout   = 10 * time.Second
	resourcePath     = "/lab"
	maxErrorSnippet  = 256
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient builds a Client rooted at baseURL. A base path such as
// http://host/api is kept and /lab is appended to it.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List retrieves labs, optionally restricted by active status.
func (c *Client) List(ctx context.Context, filter FilterKey) ([]Lab, error) {
	query := url.Values{}
	if active, ok := filter.IsActive(); ok {
		query.Set("isActivate", strconv.FormatBool(active))
	}
	var labs []Lab
	if err := c.do(ctx, "list labs", http.MethodGet, "", query, nil, &labs); err != nil {
		return nil, err
	}
	if labs == nil {
		labs = []Lab{}
	}
	return labs, nil
}

// Get retrieves a single lab by id.
func (c *Client) Get(ctx context.Context, id string) (Lab, error) {
	path, err := labPath("get lab", http.MethodGet, id, "")
	if err != nil {
		return Lab{}, err
	}
	var lab Lab
	if err := c.do(ctx, "get lab", http.MethodGet, path, nil, nil, &lab); err != nil {
		return Lab{}, err
	}
	return lab, nil
}

// Create posts a new lab and returns the server's representation.
func (c *Client) Create(ctx context.Context, draft CreateLabRequest) (Lab, error) {
	var lab Lab
	if err := c.do(ctx, "create lab", http.MethodPost, "", nil, draft, &lab); err != nil {
		return Lab{}, err
	}
	return lab, nil
}

// Update overwrites the editable fields of a lab.
func (c *Client) Update(ctx context.Context, id string, draft CreateLabRequest) (Lab, error) {
	path, err := labPath("update lab", http.MethodPut, id, "")
	if err != nil {
		return Lab{}, err
	}
	var lab Lab
	if err := c.do(ctx, "update lab", http.MethodPut, path, nil, draft, &lab); err != nil {
		return Lab{}, err
	}
	return lab, nil
}

// Delete removes a lab. Any 2xx response counts as success.
func (c *Client) Delete(ctx context.Context, id string) error {
	path, err := labPath("delete lab", http.MethodDelete, id, "")
	if err != nil {
		return err
	}
	return c.do(ctx, "delete lab", http.MethodDelete, path, nil, nil, nil)
}

// ToggleStatus flips isActive and returns the updated lab, unwrapping the
// {"lab": ...} envelope the endpoint uses.
func (c *Client) ToggleStatus(ctx context.Context, id string) (Lab, error) {
	path, err := labPath("toggle lab status", http.MethodPut, id, "/toggle-status")
	if err != nil {
		return Lab{}, err
	}
	var payload toggleResponse
	if err := c.do(ctx, "toggle lab status", http.MethodPut, path, nil, nil, &payload); err != nil {
		return Lab{}, err
	}
	if payload.Lab == nil {
		return Lab{}, &TransportError{
			Op:     "toggle lab status",
			Method: http.MethodPut,
			Path:   resourcePath + path,
			Err:    errors.New("response missing lab envelope"),
		}
	}
	return *payload.Lab, nil
}

func labPath(op, method, id, suffix string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", &TransportError{Op: op, Method: method, Path: resourcePath, Err: ErrMissingID}
	}
	return "/" + url.PathEscape(trimmed) + suffix, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return errors.New("client is nil")
	}
	rel := resourcePath + path
	reqURL := strings.TrimRight(c.baseURL.String(), "/") + rel
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	fail := func(status int, err error) error {
		return &TransportError{Op: op, Method: method, Path: rel, StatusCode: status, Err: err}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"component":  "labapi",
		"method":     method,
		"path":       rel,
		"request_id": requestID,
	})
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return fail(0, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(started)})
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		log.WithField("body", strings.TrimSpace(string(snippet))).Warn("request rejected")
		return fail(resp.StatusCode, fmt.Errorf("api %s returned status %d", rel, resp.StatusCode))
	}
	log.Debug("request completed")
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fail(0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
