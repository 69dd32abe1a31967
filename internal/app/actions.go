package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/resolve"
	"github.com/fediscope/fediscope/internal/route"
)

// ErrUnsupported is returned for an action that does not apply to the target.
var ErrUnsupported = route.Invalidf("action not supported here")

// Action names accepted by Apply.
const (
	ActFavourite = "favourite"
	ActReblog    = "reblog"
	ActBookmark  = "bookmark"
)

func (a *App) match(target string) (route.Route, route.Params, error) {
	path, err := route.FromURL(target)
	if err != nil {
		return route.Route{}, route.Params{}, err
	}
	rt, p, ok := a.Router.Match(path)
	if !ok {
		return rt, p, route.Invalidf("%s is not a post", path)
	}
	return rt, p, nil
}

// Apply performs a favourite, reblog or bookmark on the post named by target
// through the home instance and returns a one-line summary. On a Lemmy post a
// favourite is an upvote.
func (a *App) Apply(ctx context.Context, target, name string) (string, error) {
	rt, p, err := a.match(target)
	if err != nil {
		return "", err
	}
	switch rt.Name {
	case "status", "status-bare":
		action, err := mastodon.ParseAction(name)
		if err != nil {
			return "", err
		}
		st, err := a.Interact(ctx, statusRef(p), action)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s (%d favourites, %d boosts)", past(action), st.Link(), st.FavouritesCount, st.ReblogsCount), nil
	case "lemmy-post":
		if name != ActFavourite {
			return "", fmt.Errorf("%s on a lemmy post: %w", name, ErrUnsupported)
		}
		id, err := parseID(p)
		if err != nil {
			return "", err
		}
		view, err := a.Upvote(ctx, p.Get("instance"), id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("upvoted %q (score %d)", view.Post.Name, view.Counts.Score), nil
	}
	return "", fmt.Errorf("%s on %s: %w", name, rt.Name, ErrUnsupported)
}

func past(action mastodon.Action) string {
	switch action {
	case mastodon.ActionFavourite:
		return "favourited"
	case mastodon.ActionReblog:
		return "boosted"
	case mastodon.ActionBookmark:
		return "bookmarked"
	}
	return string(action) + "d"
}

// Interact maps ref to its home-instance ID and applies action there.
func (a *App) Interact(ctx context.Context, ref resolve.StatusRef, action mastodon.Action) (*mastodon.Status, error) {
	if a.Mastodon == nil {
		return nil, ErrNoHome
	}
	id, err := a.Resolver.LocalStatusID(ctx, ref)
	if err != nil {
		return nil, err
	}
	st, err := a.Mastodon.Interact(ctx, id, action)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, ref.Link(), err)
	}
	return st, nil
}

// Upvote maps a Lemmy post to its home-instance ID and votes +1.
func (a *App) Upvote(ctx context.Context, instance string, id int64) (*lemmy.PostView, error) {
	if a.Lemmy == nil {
		return nil, ErrNoHome
	}
	local, err := a.Resolver.LocalLemmyPostID(ctx, instance, id)
	if err != nil {
		return nil, err
	}
	return a.Lemmy.VotePost(ctx, local, 1)
}

// Draft is a new post or reply.
type Draft struct {
	Text       string
	ReplyTo    string // router path or URL of the post being answered
	Visibility string
	Spoiler    string
}

// Publish posts d through the home instance and returns the link of the new
// post. A reply to a Lemmy post becomes a comment on the home Lemmy instance.
func (a *App) Publish(ctx context.Context, d Draft) (string, error) {
	if strings.TrimSpace(d.Text) == "" {
		return "", route.Invalidf("text required")
	}
	if d.ReplyTo == "" {
		return a.postStatus(ctx, d, "")
	}
	rt, p, err := a.match(d.ReplyTo)
	if err != nil {
		return "", err
	}
	switch rt.Name {
	case "status", "status-bare":
		if a.Mastodon == nil {
			return "", ErrNoHome
		}
		id, err := a.Resolver.LocalStatusID(ctx, statusRef(p))
		if err != nil {
			return "", err
		}
		return a.postStatus(ctx, d, id)
	case "lemmy-post":
		if a.Lemmy == nil {
			return "", ErrNoHome
		}
		id, err := parseID(p)
		if err != nil {
			return "", err
		}
		local, err := a.Resolver.LocalLemmyPostID(ctx, p.Get("instance"), id)
		if err != nil {
			return "", err
		}
		c, err := a.Lemmy.CreateComment(ctx, lemmy.NewComment{Content: d.Text, PostID: local})
		if err != nil {
			return "", fmt.Errorf("comment: %w", err)
		}
		return c.Comment.ApID, nil
	}
	return "", fmt.Errorf("reply to %s: %w", rt.Name, ErrUnsupported)
}

func (a *App) postStatus(ctx context.Context, d Draft, inReplyTo string) (string, error) {
	if a.Mastodon == nil {
		return "", ErrNoHome
	}
	if !a.Mastodon.Authenticated() {
		return "", resolve.ErrNoCredentials
	}
	st, err := a.Mastodon.PostStatus(ctx, mastodon.NewStatus{
		Status:      d.Text,
		InReplyToID: inReplyTo,
		SpoilerText: d.Spoiler,
		Visibility:  d.Visibility,
	})
	if err != nil {
		return "", fmt.Errorf("post: %w", err)
	}
	return st.Link(), nil
}

// WebURL returns the web page for target on the instance that hosts it,
// without any network access.
func (a *App) WebURL(target string) (string, error) {
	path, err := route.FromURL(target)
	if err != nil {
		return "", err
	}
	rt, p, _ := a.Router.Match(path)
	instance := p.Get("instance")
	web := func(host, rest string) string {
		return "https://" + host + rest
	}
	home := ""
	if a.Mastodon != nil {
		home = a.Mastodon.Host()
	} else if a.Lemmy != nil {
		home = a.Lemmy.Host()
	}

	switch rt.Name {
	case "status", "status-bare":
		return statusRef(p).Link(), nil
	case "lemmy-post":
		return web(instance, "/post/"+p.Get("id")), nil
	case "lemmy-comment":
		return web(instance, "/comment/"+p.Get("id")), nil
	case "lemmy-community":
		return web(instance, "/c/"+p.Get("name")), nil
	case "lemmy-person":
		return web(instance, "/u/"+p.Get("name")), nil
	case "public":
		return web(instance, "/public"), nil
	case "local":
		return web(instance, "/public/local"), nil
	case "account-remote", "account-on":
		return web(instance, "/@"+p.Get("user")), nil
	case "blog":
		return p.QueryValue("feed"), nil
	}
	if home == "" {
		return "", ErrNoHome
	}
	switch rt.Name {
	case "account-local":
		return web(home, "/@"+p.Get("user")), nil
	case "tag":
		return web(home, "/tags/"+p.Get("tag")), nil
	case "notifications":
		return web(home, "/notifications"), nil
	case "search":
		return web(home, "/search?q="+url.QueryEscape(p.QueryValue("q"))), nil
	}
	return web(home, "/"), nil
}
