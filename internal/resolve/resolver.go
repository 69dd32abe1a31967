package resolve

import (
	"context"
	"fmt"

	"github.com/fediscope/fediscope/internal/httpx"
	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/mastodon"
)

// MastodonAPI is the subset of *mastodon.Client the resolver uses.
type MastodonAPI interface {
	Host() string
	Authenticated() bool
	Status(ctx context.Context, id string) (*mastodon.Status, error)
	StatusContext(ctx context.Context, id string) (*mastodon.Context, error)
	LookupAccount(ctx context.Context, acct string) (*mastodon.Account, error)
	AccountStatuses(ctx context.Context, id string, q mastodon.PageQuery) (*mastodon.Timeline, error)
	Search(ctx context.Context, q mastodon.SearchQuery) (*mastodon.SearchResults, error)
}

// LemmyAPI is the subset of *lemmy.Client the resolver uses.
type LemmyAPI interface {
	Host() string
	Authenticated() bool
	Post(ctx context.Context, id int64) (*lemmy.PostDetail, error)
	Comment(ctx context.Context, id int64) (*lemmy.CommentView, error)
	Comments(ctx context.Context, q lemmy.CommentQuery) ([]lemmy.CommentView, error)
	Community(ctx context.Context, name string) (*lemmy.CommunityView, error)
	Person(ctx context.Context, username string) (*lemmy.PersonDetail, error)
	PersonByID(ctx context.Context, id int64) (*lemmy.PersonDetail, error)
	Posts(ctx context.Context, q lemmy.PostQuery) (*lemmy.PostList, error)
	ResolveObject(ctx context.Context, objectURL string) (*lemmy.ResolvedObject, error)
}

var (
	_ MastodonAPI = (*mastodon.Client)(nil)
	_ LemmyAPI    = (*lemmy.Client)(nil)
)

// Config wires a Resolver. The home clients carry the viewer's credentials
// and may be nil; the factories build unauthenticated clients for any
// instance named in a path.
type Config struct {
	MastodonHome MastodonAPI
	LemmyHome    LemmyAPI
	Mastodon     func(instance string) (MastodonAPI, error)
	Lemmy        func(instance string) (LemmyAPI, error)
}

// Resolver finds federated content, falling back to the viewer's home
// instance when the instance named in a path cannot serve it. It holds no
// cache: every call goes to the network.
type Resolver struct {
	cfg Config
}

// New returns a Resolver. Missing factories default to plain clients with
// the given transport options.
func New(cfg Config, opts httpx.Options) *Resolver {
	opts.Token = ""
	if cfg.Mastodon == nil {
		cfg.Mastodon = func(instance string) (MastodonAPI, error) {
			return mastodon.NewClient(instance, opts)
		}
	}
	if cfg.Lemmy == nil {
		cfg.Lemmy = func(instance string) (LemmyAPI, error) {
			return lemmy.NewClient(instance, opts)
		}
	}
	return &Resolver{cfg: cfg}
}

// MastodonHome returns the home Mastodon client, or nil.
func (r *Resolver) MastodonHome() MastodonAPI {
	return r.cfg.MastodonHome
}

// LemmyHome returns the home Lemmy client, or nil.
func (r *Resolver) LemmyHome() LemmyAPI {
	return r.cfg.LemmyHome
}

// mastodonFor returns the client for instance, reusing the home client when
// the instance is home so authenticated fields (favourited, ...) are filled.
func (r *Resolver) mastodonFor(instance string) (MastodonAPI, error) {
	if home := r.cfg.MastodonHome; home != nil && httpx.SameHost(home.Host(), instance) {
		return home, nil
	}
	c, err := r.cfg.Mastodon(instance)
	if err != nil {
		return nil, fmt.Errorf("mastodon client for %s: %w", instance, err)
	}
	return c, nil
}

func (r *Resolver) lemmyFor(instance string) (LemmyAPI, error) {
	if home := r.cfg.LemmyHome; home != nil && httpx.SameHost(home.Host(), instance) {
		return home, nil
	}
	c, err := r.cfg.Lemmy(instance)
	if err != nil {
		return nil, fmt.Errorf("lemmy client for %s: %w", instance, err)
	}
	return c, nil
}

// otherHome reports the home client when it is configured, authenticated and
// on a different host than instance. The reason explains a nil result.
func otherHome[T interface {
	Host() string
	Authenticated() bool
}](home T, present bool, instance string) (string, bool) {
	switch {
	case !present:
		return "no home instance configured", false
	case !home.Authenticated():
		return "no credentials for " + home.Host(), false
	case httpx.SameHost(home.Host(), instance):
		return "home instance is " + instance, false
	}
	return "", true
}
