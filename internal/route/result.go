package route

// Kind classifies what a Result holds.
type Kind string

const (
	KindTimeline      Kind = "timeline"
	KindThread        Kind = "thread"
	KindAccount       Kind = "account"
	KindNotifications Kind = "notifications"
	KindSearch        Kind = "search"
	KindPostList      Kind = "post_list"
	KindLemmyPost     Kind = "lemmy_post"
	KindLemmyComment  Kind = "lemmy_comment"
	KindCommunity     Kind = "community"
	KindPerson        Kind = "person"
	KindBlog          Kind = "blog"
)

// Result is what a route handler produced: the fetched document plus where
// it came from. Data holds one of the platform types (for instance
// *mastodon.Thread for KindThread).
type Result struct {
	Kind     Kind   `json:"kind"`
	Route    string `json:"route"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Instance string `json:"instance"`
	// Source names the resolver step that answered ("direct", "home-id",
	// "home-search") for federated lookups.
	Source string `json:"source,omitempty"`
	// Next is the router path of the following page, when there is one.
	Next string `json:"next,omitempty"`
	Data any    `json:"data"`
}
