// Package route maps client paths to content-fetch handlers.
//
// A Router holds an ordered list of regular expressions. Matching walks the
// list from the top and the first pattern that matches the whole path wins;
// overlaps between patterns are settled only by that order. Paths that match
// nothing go to the fallback handler given to New.
//
// Patterns are anchored for you and tolerate a trailing slash. Named groups
// become Params:
//
//	r := route.New(home)
//	r.MustHandle("lemmy-post", `/(?P<instance>[^/@]+)/post/(?P<id>\d+)`, lemmyPost)
//	res, err := r.Dispatch(ctx, "/lemmy.world/post/42")
//
// FromURL turns pasted web URLs, handles (@user@host, !community@host) and
// hashtags into router paths.
package route
