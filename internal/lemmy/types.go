package lemmy

import "time"

// Person mirrors the Lemmy person entity.
type Person struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ActorID     string `json:"actor_id"`
	Local       bool   `json:"local"`
	Bio         string `json:"bio"`
	Published   string `json:"published"`
}

// Label returns the display name, falling back to the username.
func (p Person) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// Community mirrors the Lemmy community entity.
type Community struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ActorID     string `json:"actor_id"`
	Local       bool   `json:"local"`
	NSFW        bool   `json:"nsfw"`
}

// Post mirrors the Lemmy post entity. Body is markdown.
type Post struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Body        string `json:"body"`
	CreatorID   int64  `json:"creator_id"`
	CommunityID int64  `json:"community_id"`
	Published   string `json:"published"`
	ApID        string `json:"ap_id"`
	Local       bool   `json:"local"`
	NSFW        bool   `json:"nsfw"`
}

// ParsedPublished returns the parsed Published timestamp.
func (p Post) ParsedPublished() time.Time {
	return parseTime(p.Published)
}

// PostCounts aggregates votes and comments for a post.
type PostCounts struct {
	Comments  int `json:"comments"`
	Score     int `json:"score"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// PostView is a post with its creator and community.
type PostView struct {
	Post      Post       `json:"post"`
	Creator   Person     `json:"creator"`
	Community Community  `json:"community"`
	Counts    PostCounts `json:"counts"`
	MyVote    *int       `json:"my_vote,omitempty"`
}

// Comment mirrors the Lemmy comment entity. Path is the dotted ancestry,
// starting with "0".
type Comment struct {
	ID        int64  `json:"id"`
	CreatorID int64  `json:"creator_id"`
	PostID    int64  `json:"post_id"`
	Content   string `json:"content"`
	Published string `json:"published"`
	ApID      string `json:"ap_id"`
	Local     bool   `json:"local"`
	Path      string `json:"path"`
	Deleted   bool   `json:"deleted"`
	Removed   bool   `json:"removed"`
}

// Depth returns the nesting level of the comment, 0 for top-level comments.
func (c Comment) Depth() int {
	if c.Path == "" {
		return 0
	}
	depth := -1
	for _, r := range c.Path {
		if r == '.' {
			depth++
		}
	}
	if depth < 0 {
		return 0
	}
	return depth
}

// CommentCounts aggregates votes and replies for a comment.
type CommentCounts struct {
	Score      int `json:"score"`
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	ChildCount int `json:"child_count"`
}

// CommentView is a comment with its context.
type CommentView struct {
	Comment   Comment       `json:"comment"`
	Creator   Person        `json:"creator"`
	Post      Post          `json:"post"`
	Community Community     `json:"community"`
	Counts    CommentCounts `json:"counts"`
	MyVote    *int          `json:"my_vote,omitempty"`
}

// CommunityCounts aggregates community activity.
type CommunityCounts struct {
	Subscribers int `json:"subscribers"`
	Posts       int `json:"posts"`
	Comments    int `json:"comments"`
}

// CommunityView is a community with its counts.
type CommunityView struct {
	Community Community       `json:"community"`
	Counts    CommunityCounts `json:"counts"`
}

// PersonCounts aggregates a person's activity.
type PersonCounts struct {
	PostCount    int `json:"post_count"`
	CommentCount int `json:"comment_count"`
}

// PersonView is a person with their counts.
type PersonView struct {
	Person Person       `json:"person"`
	Counts PersonCounts `json:"counts"`
}

// PostDetail is the response of GET /api/v3/post.
type PostDetail struct {
	PostView      PostView      `json:"post_view"`
	CommunityView CommunityView `json:"community_view"`
	Comments      []CommentView `json:"comments,omitempty"`
}

// PersonDetail is the response of GET /api/v3/user.
type PersonDetail struct {
	PersonView PersonView    `json:"person_view"`
	Posts      []PostView    `json:"posts"`
	Comments   []CommentView `json:"comments"`
}

// CommunityDetail is a community with one page of posts.
type CommunityDetail struct {
	CommunityView CommunityView `json:"community_view"`
	Posts         []PostView    `json:"posts"`
	Page          int           `json:"page"`
}

// CommentThread is a comment with its direct replies.
type CommentThread struct {
	Comment CommentView   `json:"comment"`
	Replies []CommentView `json:"replies"`
}

// PostList is one page of posts.
type PostList struct {
	Posts    []PostView `json:"posts"`
	NextPage string     `json:"next_page,omitempty"`
}

// SearchResults mirrors GET /api/v3/search.
type SearchResults struct {
	Type        string          `json:"type_"`
	Comments    []CommentView   `json:"comments"`
	Posts       []PostView      `json:"posts"`
	Communities []CommunityView `json:"communities"`
	Users       []PersonView    `json:"users"`
}

// ResolvedObject mirrors GET /api/v3/resolve_object; exactly one field is set
// on success.
type ResolvedObject struct {
	Comment   *CommentView   `json:"comment,omitempty"`
	Post      *PostView      `json:"post,omitempty"`
	Community *CommunityView `json:"community,omitempty"`
	Person    *PersonView    `json:"person,omitempty"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
