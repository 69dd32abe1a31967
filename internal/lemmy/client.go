package lemmy

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fediscope/fediscope/internal/httpx"
)

const defaultCommentLimit = 50

// Client talks to one Lemmy instance through the v3 API.
type Client struct {
	api *httpx.Client
}

// NewClient builds a Client for instance. The token, when set, is the JWT of
// a logged-in user and is sent as a bearer token.
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

// Authenticated reports whether the client carries a JWT.
func (c *Client) Authenticated() bool {
	return c.api.Authenticated()
}

// Post fetches a post by instance-local ID.
func (c *Client) Post(ctx context.Context, id int64) (*PostDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("post id required")
	}
	var payload PostDetail
	values := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if _, err := c.api.Get(ctx, "/api/v3/post", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Comment fetches a comment by instance-local ID.
func (c *Client) Comment(ctx context.Context, id int64) (*CommentView, error) {
	if id <= 0 {
		return nil, fmt.Errorf("comment id required")
	}
	var payload struct {
		CommentView CommentView `json:"comment_view"`
	}
	values := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if _, err := c.api.Get(ctx, "/api/v3/comment", values, &payload); err != nil {
		return nil, err
	}
	return &payload.CommentView, nil
}

// CommentQuery configures GET /api/v3/comment/list.
type CommentQuery struct {
	PostID   int64
	ParentID int64
	Sort     string
	Limit    int
	Page     int
	MaxDepth int
}

// Comments lists comments of a post or below a parent comment.
func (c *Client) Comments(ctx context.Context, q CommentQuery) ([]CommentView, error) {
	values := url.Values{"type_": {"All"}}
	if q.PostID > 0 {
		values.Set("post_id", strconv.FormatInt(q.PostID, 10))
	}
	if q.ParentID > 0 {
		values.Set("parent_id", strconv.FormatInt(q.ParentID, 10))
	}
	sort := q.Sort
	if sort == "" {
		sort = "Hot"
	}
	values.Set("sort", sort)
	limit := q.Limit
	if limit <= 0 {
		limit = defaultCommentLimit
	}
	values.Set("limit", strconv.Itoa(limit))
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.MaxDepth > 0 {
		values.Set("max_depth", strconv.Itoa(q.MaxDepth))
	}
	var payload struct {
		Comments []CommentView `json:"comments"`
	}
	if _, err := c.api.Get(ctx, "/api/v3/comment/list", values, &payload); err != nil {
		return nil, err
	}
	return payload.Comments, nil
}

// Community fetches a community by name; remote communities use
// "name@host".
func (c *Client) Community(ctx context.Context, name string) (*CommunityView, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "!")
	if name == "" {
		return nil, fmt.Errorf("community name required")
	}
	var payload struct {
		CommunityView CommunityView `json:"community_view"`
	}
	if _, err := c.api.Get(ctx, "/api/v3/community", url.Values{"name": {name}}, &payload); err != nil {
		return nil, err
	}
	return &payload.CommunityView, nil
}

// Person fetches a user's profile with recent posts and comments; remote
// users use "name@host".
func (c *Client) Person(ctx context.Context, username string) (*PersonDetail, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	var payload PersonDetail
	values := url.Values{"username": {username}, "sort": {"New"}}
	if _, err := c.api.Get(ctx, "/api/v3/user", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PersonByID fetches a user's profile by their ID on this instance, as
// returned by ResolveObject.
func (c *Client) PersonByID(ctx context.Context, id int64) (*PersonDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("person id required")
	}
	var payload PersonDetail
	values := url.Values{"person_id": {strconv.FormatInt(id, 10)}, "sort": {"New"}}
	if _, err := c.api.Get(ctx, "/api/v3/user", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PostQuery configures GET /api/v3/post/list.
type PostQuery struct {
	CommunityName string
	Type          string // All, Local or Subscribed
	Sort          string
	Page          int
	Limit         int
}

// Posts lists posts of a community, or of the instance when CommunityName is
// empty.
func (c *Client) Posts(ctx context.Context, q PostQuery) (*PostList, error) {
	values := url.Values{}
	if name := strings.TrimSpace(q.CommunityName); name != "" {
		values.Set("community_name", name)
	}
	if q.Type != "" {
		values.Set("type_", q.Type)
	}
	sort := q.Sort
	if sort == "" {
		sort = "Hot"
	}
	values.Set("sort", sort)
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	var payload PostList
	if _, err := c.api.Get(ctx, "/api/v3/post/list", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Search runs a full-text search across the instance.
func (c *Client) Search(ctx context.Context, query, kind string) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query required")
	}
	if kind == "" {
		kind = "All"
	}
	values := url.Values{"q": {query}, "type_": {kind}, "listing_type": {"All"}}
	var payload SearchResults
	if _, err := c.api.Get(ctx, "/api/v3/search", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ResolveObject asks the instance to fetch a federated object by its URL and
// returns its local representation.
func (c *Client) ResolveObject(ctx context.Context, objectURL string) (*ResolvedObject, error) {
	objectURL = strings.TrimSpace(objectURL)
	if objectURL == "" {
		return nil, fmt.Errorf("object url required")
	}
	var payload ResolvedObject
	if _, err := c.api.Get(ctx, "/api/v3/resolve_object", url.Values{"q": {objectURL}}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// VotePost sets the viewer's vote on a post: 1, 0 or -1.
func (c *Client) VotePost(ctx context.Context, postID int64, score int) (*PostView, error) {
	if err := checkScore(score); err != nil {
		return nil, err
	}
	body := map[string]any{"post_id": postID, "score": score}
	var payload struct {
		PostView PostView `json:"post_view"`
	}
	if _, err := c.api.PostJSON(ctx, "/api/v3/post/like", body, nil, &payload); err != nil {
		return nil, err
	}
	return &payload.PostView, nil
}

// VoteComment sets the viewer's vote on a comment: 1, 0 or -1.
func (c *Client) VoteComment(ctx context.Context, commentID int64, score int) (*CommentView, error) {
	if err := checkScore(score); err != nil {
		return nil, err
	}
	body := map[string]any{"comment_id": commentID, "score": score}
	var payload struct {
		CommentView CommentView `json:"comment_view"`
	}
	if _, err := c.api.PostJSON(ctx, "/api/v3/comment/like", body, nil, &payload); err != nil {
		return nil, err
	}
	return &payload.CommentView, nil
}

// NewComment is the body of POST /api/v3/comment.
type NewComment struct {
	Content  string `json:"content"`
	PostID   int64  `json:"post_id"`
	ParentID int64  `json:"parent_id,omitempty"`
}

// CreateComment publishes a comment on a post, optionally as a reply.
func (c *Client) CreateComment(ctx context.Context, nc NewComment) (*CommentView, error) {
	if strings.TrimSpace(nc.Content) == "" {
		return nil, fmt.Errorf("comment text required")
	}
	if nc.PostID <= 0 {
		return nil, fmt.Errorf("post id required")
	}
	var payload struct {
		CommentView CommentView `json:"comment_view"`
	}
	if _, err := c.api.PostJSON(ctx, "/api/v3/comment", nc, nil, &payload); err != nil {
		return nil, err
	}
	return &payload.CommentView, nil
}

func checkScore(score int) error {
	if score < -1 || score > 1 {
		return fmt.Errorf("vote score %d out of range", score)
	}
	return nil
}
