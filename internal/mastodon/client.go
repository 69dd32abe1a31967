package mastodon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fediscope/fediscope/internal/httpx"
)

// Client talks to one Mastodon instance.
type Client struct {
	api *httpx.Client
}

// NewClient builds a Client for instance. An empty token gives an
// unauthenticated client.
func NewClient(instance string, opts httpx.Options) (*Client, error) {
	api, err := httpx.New(instance, opts)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// Host returns the instance host.
func (c *Client) Host() string {
	return c.api.Host()
}

// Authenticated reports whether the client carries an access token.
func (c *Client) Authenticated() bool {
	return c.api.Authenticated()
}

// Status fetches a single status by instance-local ID.
func (c *Client) Status(ctx context.Context, id string) (*Status, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("status id required")
	}
	var payload Status
	if _, err := c.api.Get(ctx, "/api/v1/statuses/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// StatusContext fetches the ancestors and descendants of a status.
func (c *Client) StatusContext(ctx context.Context, id string) (*Context, error) {
	var payload Context
	if _, err := c.api.Get(ctx, "/api/v1/statuses/"+url.PathEscape(id)+"/context", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Account fetches an account by instance-local ID.
func (c *Client) Account(ctx context.Context, id string) (*Account, error) {
	var payload Account
	if _, err := c.api.Get(ctx, "/api/v1/accounts/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// LookupAccount resolves an acct ("alice" or "alice@example.com") known to
// the instance without authentication.
func (c *Client) LookupAccount(ctx context.Context, acct string) (*Account, error) {
	acct = strings.TrimPrefix(strings.TrimSpace(acct), "@")
	if acct == "" {
		return nil, fmt.Errorf("acct required")
	}
	var payload Account
	if _, err := c.api.Get(ctx, "/api/v1/accounts/lookup", url.Values{"acct": {acct}}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// VerifyCredentials returns the account that owns the access token.
func (c *Client) VerifyCredentials(ctx context.Context) (*Account, error) {
	var payload Account
	if _, err := c.api.Get(ctx, "/api/v1/accounts/verify_credentials", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PageQuery configures paginated list requests.
type PageQuery struct {
	MaxID   string
	SinceID string
	MinID   string
	Limit   int
}

func (q PageQuery) values() url.Values {
	values := url.Values{}
	if q.MaxID != "" {
		values.Set("max_id", q.MaxID)
	}
	if q.SinceID != "" {
		values.Set("since_id", q.SinceID)
	}
	if q.MinID != "" {
		values.Set("min_id", q.MinID)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// AccountStatuses lists statuses posted by an account.
func (c *Client) AccountStatuses(ctx context.Context, id string, q PageQuery) (*Timeline, error) {
	return c.timeline(ctx, "/api/v1/accounts/"+url.PathEscape(id)+"/statuses", q.values())
}

// HomeTimeline lists the authenticated user's home feed.
func (c *Client) HomeTimeline(ctx context.Context, q PageQuery) (*Timeline, error) {
	return c.timeline(ctx, "/api/v1/timelines/home", q.values())
}

// PublicTimeline lists the instance's public feed; local restricts it to
// accounts hosted on the instance.
func (c *Client) PublicTimeline(ctx context.Context, local bool, q PageQuery) (*Timeline, error) {
	values := q.values()
	if local {
		values.Set("local", "true")
	}
	return c.timeline(ctx, "/api/v1/timelines/public", values)
}

// TagTimeline lists public statuses carrying a hashtag.
func (c *Client) TagTimeline(ctx context.Context, tag string, q PageQuery) (*Timeline, error) {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	if tag == "" {
		return nil, fmt.Errorf("tag required")
	}
	return c.timeline(ctx, "/api/v1/timelines/tag/"+url.PathEscape(tag), q.values())
}

func (c *Client) timeline(ctx context.Context, path string, values url.Values) (*Timeline, error) {
	var statuses []Status
	resp, err := c.api.Get(ctx, path, values, &statuses)
	if err != nil {
		return nil, err
	}
	return &Timeline{Statuses: statuses, Page: ParseLinkHeader(resp.Header.Get("Link"))}, nil
}

// Notifications lists notifications for the authenticated user.
func (c *Client) Notifications(ctx context.Context, q PageQuery) ([]Notification, Page, error) {
	var payload []Notification
	resp, err := c.api.Get(ctx, "/api/v1/notifications", q.values(), &payload)
	if err != nil {
		return nil, Page{}, err
	}
	return payload, ParseLinkHeader(resp.Header.Get("Link")), nil
}

// SearchQuery configures /api/v2/search.
type SearchQuery struct {
	Q       string
	Type    string // accounts, statuses or hashtags; empty searches all
	Resolve bool
	Limit   int
}

// Search runs a v2 search. With Resolve set the instance fetches unknown
// remote URLs and accounts, which requires authentication on most instances.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	query := strings.TrimSpace(q.Q)
	if query == "" {
		return nil, fmt.Errorf("search query required")
	}
	values := url.Values{"q": {query}}
	if q.Type != "" {
		values.Set("type", q.Type)
	}
	if q.Resolve {
		values.Set("resolve", "true")
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	var payload SearchResults
	if _, err := c.api.Get(ctx, "/api/v2/search", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Action is a status interaction endpoint.
type Action string

const (
	ActionFavourite   Action = "favourite"
	ActionUnfavourite Action = "unfavourite"
	ActionReblog      Action = "reblog"
	ActionUnreblog    Action = "unreblog"
	ActionBookmark    Action = "bookmark"
	ActionUnbookmark  Action = "unbookmark"
)

// ParseAction validates an action name.
func ParseAction(name string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(name))); a {
	case ActionFavourite, ActionUnfavourite, ActionReblog, ActionUnreblog, ActionBookmark, ActionUnbookmark:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", name)
}

// Interact applies an action to a status by home-local ID and returns the
// updated status.
func (c *Client) Interact(ctx context.Context, id string, action Action) (*Status, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("status id required")
	}
	var payload Status
	path := "/api/v1/statuses/" + url.PathEscape(id) + "/" + string(action)
	if _, err := c.api.PostJSON(ctx, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	// A reblog returns the wrapping status; callers want the original.
	if payload.Reblog != nil {
		return payload.Reblog, nil
	}
	return &payload, nil
}

// NewStatus is the body of POST /api/v1/statuses.
type NewStatus struct {
	Status      string `json:"status"`
	InReplyToID string `json:"in_reply_to_id,omitempty"`
	SpoilerText string `json:"spoiler_text,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	Language    string `json:"language,omitempty"`
}

// PostStatus publishes a status. Each call carries a fresh Idempotency-Key so
// that a retried request from the same call does not post twice.
func (c *Client) PostStatus(ctx context.Context, s NewStatus) (*Status, error) {
	if strings.TrimSpace(s.Status) == "" {
		return nil, fmt.Errorf("status text required")
	}
	header := http.Header{}
	header.Set("Idempotency-Key", uuid.NewString())
	var payload Status
	if _, err := c.api.PostJSON(ctx, "/api/v1/statuses", s, header, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ParseLinkHeader extracts max_id (rel="next") and min_id (rel="prev")
// cursors from a Mastodon Link header.
func ParseLinkHeader(header string) Page {
	var page Page
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		open := strings.Index(part, "<")
		closing := strings.Index(part, ">")
		if open < 0 || closing <= open {
			continue
		}
		target, err := url.Parse(part[open+1 : closing])
		if err != nil {
			continue
		}
		params := part[closing+1:]
		switch {
		case strings.Contains(params, `rel="next"`):
			page.MaxID = target.Query().Get("max_id")
		case strings.Contains(params, `rel="prev"`):
			page.MinID = target.Query().Get("min_id")
			if page.MinID == "" {
				page.MinID = target.Query().Get("since_id")
			}
		}
	}
	return page
}
