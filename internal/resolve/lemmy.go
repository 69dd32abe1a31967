package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fediscope/fediscope/internal/httpx"
	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/route"
)

type answeredPost struct {
	client LemmyAPI
	detail *lemmy.PostDetail
}

func lemmyURL(instance, kind string, id int64) string {
	return "https://" + instanceHost(instance) + "/" + kind + "/" + strconv.FormatInt(id, 10)
}

func instanceHost(instance string) string {
	if u, err := httpx.ParseBaseURL(instance); err == nil {
		return u.Host
	}
	return strings.TrimSpace(instance)
}

// apIs reports whether an ActivityPub ID is exactly instance's /kind/id, the
// object a home-id hit must be.
func apIs(apID, instance, kind string, id int64) bool {
	u, err := url.Parse(strings.TrimSpace(apID))
	if err != nil || u.Host == "" || !httpx.SameHost(u.Host, instance) {
		return false
	}
	return strings.TrimSuffix(u.Path, "/") == "/"+kind+"/"+strconv.FormatInt(id, 10)
}

// Post resolves a Lemmy post and loads its comments from whichever instance
// answered.
func (r *Resolver) Post(ctx context.Context, instance string, id int64, comments lemmy.CommentQuery) (*lemmy.PostDetail, Source, error) {
	if id <= 0 {
		return nil, "", route.Invalidf("post id required")
	}
	direct, err := r.lemmyFor(instance)
	if err != nil {
		return nil, "", err
	}
	steps := []step[answeredPost]{{
		source: SourceDirect,
		run: func(ctx context.Context) (answeredPost, error) {
			d, err := direct.Post(ctx, id)
			return answeredPost{client: direct, detail: d}, err
		},
	}}
	steps = append(steps, r.homePostSteps(instance, id)...)

	got, src, err := runChain(ctx, "post "+lemmyURL(instance, "post", id), steps)
	if err != nil {
		return nil, "", err
	}
	q := comments
	q.PostID = got.detail.PostView.Post.ID
	q.ParentID = 0
	if list, err := got.client.Comments(ctx, q); err == nil {
		got.detail.Comments = list
	} else if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	return got.detail, src, nil
}

// LocalLemmyPostID maps a post to its ID on the home Lemmy instance, which is
// what voting and replying need.
func (r *Resolver) LocalLemmyPostID(ctx context.Context, instance string, id int64) (int64, error) {
	home := r.cfg.LemmyHome
	if home == nil || !home.Authenticated() {
		return 0, ErrNoCredentials
	}
	if httpx.SameHost(home.Host(), instance) {
		return id, nil
	}
	got, _, err := runChain(ctx, "post "+lemmyURL(instance, "post", id), r.homePostSteps(instance, id))
	if err != nil {
		return 0, err
	}
	return got.detail.PostView.Post.ID, nil
}

func (r *Resolver) homePostSteps(instance string, id int64) []step[answeredPost] {
	home := r.cfg.LemmyHome
	return []step[answeredPost]{
		{
			source: SourceHomeID,
			run: func(ctx context.Context) (answeredPost, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return answeredPost{}, skipped(reason)
				}
				d, err := home.Post(ctx, id)
				if err != nil {
					return answeredPost{}, err
				}
				if !apIs(d.PostView.Post.ApID, instance, "post", id) {
					return answeredPost{}, fmt.Errorf("%w: %s", errMismatch, d.PostView.Post.ApID)
				}
				return answeredPost{client: home, detail: d}, nil
			},
		},
		{
			source: SourceHomeSearch,
			run: func(ctx context.Context) (answeredPost, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return answeredPost{}, skipped(reason)
				}
				obj, err := home.ResolveObject(ctx, lemmyURL(instance, "post", id))
				if err != nil {
					return answeredPost{}, err
				}
				if obj.Post == nil {
					return answeredPost{}, fmt.Errorf("resolve post %d: %w", id, ErrNotFound)
				}
				d, err := home.Post(ctx, obj.Post.Post.ID)
				if err != nil {
					return answeredPost{}, err
				}
				return answeredPost{client: home, detail: d}, nil
			},
		},
	}
}

type answeredComment struct {
	client  LemmyAPI
	comment *lemmy.CommentView
}

// Comment resolves a Lemmy comment and loads its direct replies.
func (r *Resolver) Comment(ctx context.Context, instance string, id int64) (*lemmy.CommentThread, Source, error) {
	if id <= 0 {
		return nil, "", route.Invalidf("comment id required")
	}
	direct, err := r.lemmyFor(instance)
	if err != nil {
		return nil, "", err
	}
	home := r.cfg.LemmyHome
	link := lemmyURL(instance, "comment", id)
	steps := []step[answeredComment]{
		{
			source: SourceDirect,
			run: func(ctx context.Context) (answeredComment, error) {
				c, err := direct.Comment(ctx, id)
				return answeredComment{client: direct, comment: c}, err
			},
		},
		{
			source: SourceHomeID,
			run: func(ctx context.Context) (answeredComment, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return answeredComment{}, skipped(reason)
				}
				c, err := home.Comment(ctx, id)
				if err != nil {
					return answeredComment{}, err
				}
				if !apIs(c.Comment.ApID, instance, "comment", id) {
					return answeredComment{}, fmt.Errorf("%w: %s", errMismatch, c.Comment.ApID)
				}
				return answeredComment{client: home, comment: c}, nil
			},
		},
		{
			source: SourceHomeSearch,
			run: func(ctx context.Context) (answeredComment, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return answeredComment{}, skipped(reason)
				}
				obj, err := home.ResolveObject(ctx, link)
				if err != nil {
					return answeredComment{}, err
				}
				if obj.Comment == nil {
					return answeredComment{}, fmt.Errorf("resolve comment %d: %w", id, ErrNotFound)
				}
				c, err := home.Comment(ctx, obj.Comment.Comment.ID)
				if err != nil {
					return answeredComment{}, err
				}
				return answeredComment{client: home, comment: c}, nil
			},
		},
	}

	got, src, err := runChain(ctx, "comment "+link, steps)
	if err != nil {
		return nil, "", err
	}
	thread := &lemmy.CommentThread{Comment: *got.comment}
	replies, err := got.client.Comments(ctx, lemmy.CommentQuery{ParentID: got.comment.Comment.ID, Sort: "Old"})
	if err == nil {
		for _, c := range replies {
			if c.Comment.ID != got.comment.Comment.ID {
				thread.Replies = append(thread.Replies, c)
			}
		}
	} else if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	return thread, src, nil
}

// splitActor splits "name@host" into its parts. A bare name belongs to
// instance.
func splitActor(name, instance string) (string, string) {
	name = strings.TrimLeft(strings.TrimSpace(name), "!@")
	if base, host, ok := strings.Cut(name, "@"); ok && host != "" {
		return base, instanceHost(host)
	}
	return name, instanceHost(instance)
}

// qualified returns name as seen from viewer: bare when origin is viewer,
// name@origin otherwise.
func qualified(base, origin, viewer string) string {
	if httpx.SameHost(origin, viewer) {
		return base
	}
	return base + "@" + origin
}

// Community resolves a community as seen from instance and loads one page of
// its posts. name may carry the community's own host ("golang@lemmy.ml").
func (r *Resolver) Community(ctx context.Context, instance, name string, page int) (*lemmy.CommunityDetail, Source, error) {
	base, origin := splitActor(name, instance)
	if base == "" {
		return nil, "", route.Invalidf("community name required")
	}
	direct, err := r.lemmyFor(instance)
	if err != nil {
		return nil, "", err
	}
	home := r.cfg.LemmyHome
	steps := []step[answeredCommunity]{
		{
			source: SourceDirect,
			run: func(ctx context.Context) (answeredCommunity, error) {
				v, err := direct.Community(ctx, qualified(base, origin, direct.Host()))
				return answeredCommunity{client: direct, view: v}, err
			},
		},
		{
			source: SourceHomeLookup,
			run: func(ctx context.Context) (answeredCommunity, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return answeredCommunity{}, skipped(reason)
				}
				v, err := home.Community(ctx, qualified(base, origin, home.Host()))
				return answeredCommunity{client: home, view: v}, err
			},
		},
		{
			source: SourceHomeSearch,
			run: func(ctx context.Context) (answeredCommunity, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return answeredCommunity{}, skipped(reason)
				}
				obj, err := home.ResolveObject(ctx, "https://"+origin+"/c/"+base)
				if err != nil {
					return answeredCommunity{}, err
				}
				if obj.Community == nil {
					return answeredCommunity{}, fmt.Errorf("resolve community %s@%s: %w", base, origin, ErrNotFound)
				}
				return answeredCommunity{client: home, view: obj.Community}, nil
			},
		},
	}

	got, src, err := runChain(ctx, "community !"+base+"@"+origin, steps)
	if err != nil {
		return nil, "", err
	}
	detail := &lemmy.CommunityDetail{CommunityView: *got.view, Page: page}
	list, err := got.client.Posts(ctx, lemmy.PostQuery{
		CommunityName: qualified(base, origin, got.client.Host()),
		Sort:          "New",
		Page:          page,
	})
	if err == nil {
		detail.Posts = list.Posts
	} else if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	return detail, src, nil
}

type answeredCommunity struct {
	client LemmyAPI
	view   *lemmy.CommunityView
}

// Person resolves a Lemmy user as seen from instance, with their recent
// posts and comments.
func (r *Resolver) Person(ctx context.Context, instance, name string) (*lemmy.PersonDetail, Source, error) {
	base, origin := splitActor(name, instance)
	if base == "" {
		return nil, "", route.Invalidf("username required")
	}
	direct, err := r.lemmyFor(instance)
	if err != nil {
		return nil, "", err
	}
	home := r.cfg.LemmyHome
	steps := []step[*lemmy.PersonDetail]{
		{
			source: SourceDirect,
			run: func(ctx context.Context) (*lemmy.PersonDetail, error) {
				return direct.Person(ctx, qualified(base, origin, direct.Host()))
			},
		},
		{
			source: SourceHomeLookup,
			run: func(ctx context.Context) (*lemmy.PersonDetail, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return nil, skipped(reason)
				}
				return home.Person(ctx, qualified(base, origin, home.Host()))
			},
		},
		{
			source: SourceHomeSearch,
			run: func(ctx context.Context) (*lemmy.PersonDetail, error) {
				if reason, ok := otherHome(home, home != nil, instance); !ok {
					return nil, skipped(reason)
				}
				obj, err := home.ResolveObject(ctx, "https://"+origin+"/u/"+base)
				if err != nil {
					return nil, err
				}
				if obj.Person == nil {
					return nil, fmt.Errorf("resolve person %s@%s: %w", base, origin, ErrNotFound)
				}
				return home.PersonByID(ctx, obj.Person.Person.ID)
			},
		},
	}
	return runChain(ctx, "person @"+base+"@"+origin, steps)
}
