package httpx

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

// UserAgent is sent with every request to a remote instance.
const UserAgent = "fediscope/0.3"

const (
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 64 * 1024
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError describes a non-2xx response from an instance.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Is lets callers match on ErrNotFound and ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Options configure a Client.
type Options struct {
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
	// Pacer is shared by clients that should split one budget per host.
	// Without it each client paces itself at RequestsPerSecond.
	Pacer *Pacer
}

// Client is the transport shared by the platform API clients. It owns the
// base URL of one instance and optionally a bearer token for it.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	pacer   *Pacer
}

// Response carries the headers of a completed request.
type Response struct {
	Status int
	Header http.Header
}

// New builds a Client for the given instance host or URL.
func New(instance string, opts Options) (*Client, error) {
	base, err := ParseBaseURL(instance)
	if err != nil {
		return nil, err
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	pacer := opts.Pacer
	if pacer == nil {
		pacer = NewPacer(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL: base,
		http:    hc,
		token:   strings.TrimSpace(opts.Token),
		pacer:   pacer,
	}, nil
}

// Host returns the instance host, e.g. "mastodon.social".
func (c *Client) Host() string {
	return c.baseURL.Host
}

// BaseURL returns a copy of the instance base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Get issues a GET for path with the given query and decodes JSON into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) (Response, error) {
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	return c.Do(ctx, http.MethodGet, rel, nil, nil, dest)
}

// PostJSON issues a POST with a JSON body and decodes the JSON response into dest.
func (c *Client) PostJSON(ctx context.Context, path string, body any, header http.Header, dest any) (Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body, header, dest)
}

// PutJSON issues a PUT with a JSON body.
func (c *Client) PutJSON(ctx context.Context, path string, body any, dest any) (Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body, nil, dest)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any, header http.Header, dest any) (Response, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	h := http.Header{}
	for k, v := range header {
		h[k] = v
	}
	if payload != nil {
		h.Set("Content-Type", "application/json")
	}
	return c.Do(ctx, method, &url.URL{Path: path}, payload, h, dest)
}

// Do executes a request relative to the instance base URL.
func (c *Client) Do(ctx context.Context, method string, rel *url.URL, body io.Reader, header http.Header, dest any) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("client is nil")
	}
	if err := c.pacer.Wait(ctx, c.baseURL.Host); err != nil {
		return Response{}, fmt.Errorf("wait for rate limit: %w", err)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	out := Response{Status: resp.StatusCode, Header: resp.Header}
	if resp.StatusCode >= 400 {
		return out, newAPIError(rel.Path, resp)
	}
	if dest == nil {
		return out, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func newAPIError(path string, resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Path: path}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	// Mastodon uses "error", Lemmy uses "error" too but as a bare code.
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Error != "":
			apiErr.Message = payload.Error
		case payload.Message != "":
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

// ParseBaseURL turns an instance host ("lemmy.world") or URL into a base URL
// with the path, query and fragment stripped. The scheme defaults to https.
func ParseBaseURL(instance string) (*url.URL, error) {
	trimmed := strings.TrimSpace(instance)
	if trimmed == "" {
		return nil, fmt.Errorf("instance is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse instance %q: %w", instance, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse instance %q: missing host", instance)
	}
	u.Host = strings.ToLower(u.Host)
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u, nil
}

// SameHost reports whether two instance names refer to the same host.
func SameHost(a, b string) bool {
	ua, err := ParseBaseURL(a)
	if err != nil {
		return false
	}
	ub, err := ParseBaseURL(b)
	if err != nil {
		return false
	}
	return ua.Host == ub.Host
}

// HostOf returns the lower-cased host of a URL, or "" when it has none.
func HostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
