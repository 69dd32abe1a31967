package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/resolve"
	"github.com/fediscope/fediscope/internal/route"
)

const (
	instanceRe = `(?P<instance>[^/@]+)`
	timelineSz = 20
)

// NewRouter installs the route table. Order matters: the first matching
// pattern wins and unmatched paths show the home timeline.
func NewRouter(a *App) *route.Router {
	r := route.New(a.home)
	r.MustHandle("home", `/`, a.home)
	r.MustHandle("notifications", `/notifications`, a.notifications)
	r.MustHandle("search", `/search`, a.search)
	r.MustHandle("tag", `/tags/(?P<tag>[^/]+)`, a.tag)
	r.MustHandle("public", `/`+instanceRe+`/public`, a.publicTimeline(false))
	r.MustHandle("local", `/`+instanceRe+`/local`, a.publicTimeline(true))
	r.MustHandle("lemmy-post", `/`+instanceRe+`/post/(?P<id>\d+)`, a.lemmyPost)
	r.MustHandle("lemmy-comment", `/`+instanceRe+`/comment/(?P<id>\d+)`, a.lemmyComment)
	r.MustHandle("lemmy-community", `/`+instanceRe+`/c/(?P<name>[^/]+)`, a.lemmyCommunity)
	r.MustHandle("lemmy-person", `/`+instanceRe+`/u/(?P<name>[^/]+)`, a.lemmyPerson)
	r.MustHandle("status", `/`+instanceRe+`/@(?P<user>[^/]+)/(?P<id>[^/]+)`, a.status)
	r.MustHandle("status-bare", `/`+instanceRe+`/statuses/(?P<id>[^/]+)`, a.status)
	r.MustHandle("account-remote", `/@(?P<user>[^/@]+)@`+instanceRe, a.account)
	r.MustHandle("account-on", `/`+instanceRe+`/@(?P<user>[^/]+)`, a.account)
	r.MustHandle("account-local", `/@(?P<user>[^/@]+)`, a.account)
	r.MustHandle("blog", `/blog`, a.blog)
	return r
}

func pageQuery(p route.Params) mastodon.PageQuery {
	return mastodon.PageQuery{MaxID: p.QueryValue("max_id"), Limit: timelineSz}
}

// nextPath returns path with the given cursor set, keeping the other query
// parameters.
func nextPath(p route.Params, key, value string) string {
	if value == "" {
		return ""
	}
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = append([]string(nil), v...)
	}
	q.Set(key, value)
	return p.Path + "?" + q.Encode()
}

func (a *App) home(ctx context.Context, p route.Params) (*route.Result, error) {
	switch {
	case a.Mastodon != nil:
		q := pageQuery(p)
		res := &route.Result{Kind: route.KindTimeline, Instance: a.Mastodon.Host()}
		var (
			tl  *mastodon.Timeline
			err error
		)
		if a.Mastodon.Authenticated() {
			res.Title = "Home"
			tl, err = a.Mastodon.HomeTimeline(ctx, q)
		} else {
			res.Title = "Local timeline"
			tl, err = a.Mastodon.PublicTimeline(ctx, true, q)
		}
		if err != nil {
			return nil, fmt.Errorf("home timeline: %w", err)
		}
		if a.Mastodon.Authenticated() && q.MaxID == "" {
			newest := ""
			if len(tl.Statuses) > 0 {
				newest = tl.Statuses[0].ID
			}
			a.Store.MarkRead(newest)
		}
		res.Data = tl
		res.Next = nextPath(p, "max_id", tl.Page.MaxID)
		return res, nil
	case a.Lemmy != nil:
		page := pageNumber(p)
		q := lemmy.PostQuery{Type: "All", Sort: "Active", Page: page}
		title := "All posts"
		if a.Lemmy.Authenticated() {
			q.Type = "Subscribed"
			title = "Subscribed"
		}
		list, err := a.Lemmy.Posts(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("lemmy front page: %w", err)
		}
		res := &route.Result{Kind: route.KindPostList, Title: title, Instance: a.Lemmy.Host(), Data: list}
		if len(list.Posts) > 0 {
			res.Next = nextPath(p, "page", strconv.Itoa(page+1))
		}
		return res, nil
	}
	return nil, ErrNoHome
}

func pageNumber(p route.Params) int {
	page, err := strconv.Atoi(p.QueryValue("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (a *App) notifications(ctx context.Context, p route.Params) (*route.Result, error) {
	if a.Mastodon == nil || !a.Mastodon.Authenticated() {
		return nil, resolve.ErrNoCredentials
	}
	items, page, err := a.Mastodon.Notifications(ctx, pageQuery(p))
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	return &route.Result{
		Kind:     route.KindNotifications,
		Title:    "Notifications",
		Instance: a.Mastodon.Host(),
		Data:     items,
		Next:     nextPath(p, "max_id", page.MaxID),
	}, nil
}

func (a *App) search(ctx context.Context, p route.Params) (*route.Result, error) {
	q := p.QueryValue("q")
	if q == "" {
		return nil, route.Invalidf("search needs ?q=")
	}
	res := &route.Result{Kind: route.KindSearch, Title: "Search: " + q}
	switch {
	case a.Mastodon != nil:
		found, err := a.Mastodon.Search(ctx, mastodon.SearchQuery{
			Q:       q,
			Type:    p.QueryValue("type"),
			Resolve: a.Mastodon.Authenticated(),
			Limit:   timelineSz,
		})
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		res.Instance = a.Mastodon.Host()
		res.Data = found
	case a.Lemmy != nil:
		found, err := a.Lemmy.Search(ctx, q, p.QueryValue("type"))
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		res.Instance = a.Lemmy.Host()
		res.Data = found
	default:
		return nil, ErrNoHome
	}
	return res, nil
}

func (a *App) tag(ctx context.Context, p route.Params) (*route.Result, error) {
	if a.Mastodon == nil {
		return nil, ErrNoHome
	}
	tag := p.Get("tag")
	if unescaped, err := url.PathUnescape(tag); err == nil {
		tag = unescaped
	}
	tl, err := a.Mastodon.TagTimeline(ctx, tag, pageQuery(p))
	if err != nil {
		return nil, fmt.Errorf("tag #%s: %w", tag, err)
	}
	return &route.Result{
		Kind:     route.KindTimeline,
		Title:    "#" + tag,
		Instance: a.Mastodon.Host(),
		Data:     tl,
		Next:     nextPath(p, "max_id", tl.Page.MaxID),
	}, nil
}

func (a *App) publicTimeline(local bool) route.Handler {
	return func(ctx context.Context, p route.Params) (*route.Result, error) {
		instance := p.Get("instance")
		c, err := a.mastodonClient(instance)
		if err != nil {
			return nil, err
		}
		tl, err := c.PublicTimeline(ctx, local, pageQuery(p))
		if err != nil {
			return nil, fmt.Errorf("timeline of %s: %w", instance, err)
		}
		title := "Federated timeline of " + instance
		if local {
			title = "Local timeline of " + instance
		}
		return &route.Result{
			Kind:     route.KindTimeline,
			Title:    title,
			Instance: instance,
			Data:     tl,
			Next:     nextPath(p, "max_id", tl.Page.MaxID),
		}, nil
	}
}

func parseID(p route.Params) (int64, error) {
	id, err := strconv.ParseInt(p.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, route.Invalidf("invalid id %q", p.Get("id"))
	}
	return id, nil
}

func (a *App) lemmyPost(ctx context.Context, p route.Params) (*route.Result, error) {
	id, err := parseID(p)
	if err != nil {
		return nil, err
	}
	instance := p.Get("instance")
	detail, src, err := a.Resolver.Post(ctx, instance, id, lemmy.CommentQuery{Sort: p.QueryValue("sort")})
	if err != nil {
		return nil, err
	}
	return &route.Result{
		Kind:     route.KindLemmyPost,
		Title:    detail.PostView.Post.Name,
		Instance: instance,
		Source:   string(src),
		Data:     detail,
	}, nil
}

func (a *App) lemmyComment(ctx context.Context, p route.Params) (*route.Result, error) {
	id, err := parseID(p)
	if err != nil {
		return nil, err
	}
	instance := p.Get("instance")
	thread, src, err := a.Resolver.Comment(ctx, instance, id)
	if err != nil {
		return nil, err
	}
	return &route.Result{
		Kind:     route.KindLemmyComment,
		Title:    "Comment by " + thread.Comment.Creator.Label(),
		Instance: instance,
		Source:   string(src),
		Data:     thread,
	}, nil
}

func (a *App) lemmyCommunity(ctx context.Context, p route.Params) (*route.Result, error) {
	instance := p.Get("instance")
	page := pageNumber(p)
	detail, src, err := a.Resolver.Community(ctx, instance, p.Get("name"), page)
	if err != nil {
		return nil, err
	}
	title := detail.CommunityView.Community.Title
	if title == "" {
		title = "!" + detail.CommunityView.Community.Name
	}
	res := &route.Result{
		Kind:     route.KindCommunity,
		Title:    title,
		Instance: instance,
		Source:   string(src),
		Data:     detail,
	}
	if len(detail.Posts) > 0 {
		res.Next = nextPath(p, "page", strconv.Itoa(page+1))
	}
	return res, nil
}

func (a *App) lemmyPerson(ctx context.Context, p route.Params) (*route.Result, error) {
	instance := p.Get("instance")
	detail, src, err := a.Resolver.Person(ctx, instance, p.Get("name"))
	if err != nil {
		return nil, err
	}
	return &route.Result{
		Kind:     route.KindPerson,
		Title:    detail.PersonView.Person.Label(),
		Instance: instance,
		Source:   string(src),
		Data:     detail,
	}, nil
}

func statusRef(p route.Params) resolve.StatusRef {
	return resolve.StatusRef{Instance: p.Get("instance"), User: p.Get("user"), ID: p.Get("id")}
}

func (a *App) status(ctx context.Context, p route.Params) (*route.Result, error) {
	ref := statusRef(p)
	thread, src, err := a.Resolver.Thread(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &route.Result{
		Kind:     route.KindThread,
		Title:    "Post by " + thread.Status.Account.Name(),
		Instance: ref.Instance,
		Source:   string(src),
		Data:     thread,
	}, nil
}

func (a *App) account(ctx context.Context, p route.Params) (*route.Result, error) {
	instance := p.Get("instance")
	user := p.Get("user")
	if instance == "" {
		if a.Mastodon == nil {
			return nil, ErrNoHome
		}
		instance = a.Mastodon.Host()
	}
	// /instance/@user@other names a remote account as seen from instance.
	if base, host, ok := strings.Cut(user, "@"); ok && host != "" && p.Get("instance") != "" {
		user, instance = base, host
	}
	page, src, err := a.Resolver.Account(ctx, instance, user, pageQuery(p))
	if err != nil {
		return nil, err
	}
	return &route.Result{
		Kind:     route.KindAccount,
		Title:    page.Account.Name() + " (@" + page.Account.Acct + ")",
		Instance: instance,
		Source:   string(src),
		Data:     page,
		Next:     nextPath(p, "max_id", page.Page.MaxID),
	}, nil
}

func (a *App) blog(ctx context.Context, p route.Params) (*route.Result, error) {
	feedURL := p.QueryValue("feed")
	if feedURL == "" {
		return nil, route.Invalidf("blog needs ?feed=")
	}
	feed, err := a.Blog.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	title := feed.Title
	if title == "" {
		title = feedURL
	}
	return &route.Result{
		Kind:     route.KindBlog,
		Title:    title,
		Instance: feedURL,
		Data:     feed,
	}, nil
}
