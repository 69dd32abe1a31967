package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fediscope/fediscope/internal/blog"
	"github.com/fediscope/fediscope/internal/config"
	"github.com/fediscope/fediscope/internal/httpx"
	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/resolve"
	"github.com/fediscope/fediscope/internal/route"
	"github.com/fediscope/fediscope/internal/state"
	"github.com/fediscope/fediscope/internal/ui"
)

// ErrNoHome is returned by routes that need a home instance when none is
// configured.
var ErrNoHome = resolve.ErrNoHome

// App wires the clients, resolver, router and state of one session.
type App struct {
	Config   config.Config
	Mastodon *mastodon.Client // home instance; nil when not configured
	Lemmy    *lemmy.Client    // home instance; nil when not configured
	Resolver *resolve.Resolver
	Blog     *blog.Reader
	Store    *state.Store
	Router   *route.Router

	opts httpx.Options
}

// New builds an App from cfg. hc, when set, is used for every API request;
// tests pass the client of a TLS test server.
func New(cfg config.Config, hc *http.Client) (*App, error) {
	a := &App{
		Config: cfg,
		Blog:   blog.NewReader(cfg.Timeout),
		Store:  &state.Store{},
		opts: httpx.Options{
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			HTTPClient:        hc,
			Pacer:             httpx.NewPacer(cfg.RequestsPerSecond),
		},
	}

	rcfg := resolve.Config{
		Mastodon: func(instance string) (resolve.MastodonAPI, error) {
			return a.mastodonClient(instance)
		},
		Lemmy: func(instance string) (resolve.LemmyAPI, error) {
			return lemmy.NewClient(instance, a.opts)
		},
	}
	if cfg.Mastodon.Configured() {
		c, err := mastodon.NewClient(cfg.Mastodon.Instance, a.withToken(cfg.Mastodon.AccessToken))
		if err != nil {
			return nil, fmt.Errorf("init mastodon client: %w", err)
		}
		a.Mastodon = c
		rcfg.MastodonHome = c
	}
	if cfg.Lemmy.Configured() {
		c, err := lemmy.NewClient(cfg.Lemmy.Instance, a.withToken(cfg.Lemmy.AccessToken))
		if err != nil {
			return nil, fmt.Errorf("init lemmy client: %w", err)
		}
		a.Lemmy = c
		rcfg.LemmyHome = c
	}
	a.Resolver = resolve.New(rcfg, a.opts)
	a.Router = NewRouter(a)
	return a, nil
}

func (a *App) withToken(token string) httpx.Options {
	opts := a.opts
	opts.Token = token
	return opts
}

// mastodonClient returns the home client for the home instance and an
// anonymous client for any other.
func (a *App) mastodonClient(instance string) (*mastodon.Client, error) {
	if a.Mastodon != nil && httpx.SameHost(a.Mastodon.Host(), instance) {
		return a.Mastodon, nil
	}
	return mastodon.NewClient(instance, a.opts)
}

// Open normalizes target (a router path, web URL or handle), dispatches it
// and records the outcome in the store.
func (a *App) Open(ctx context.Context, target string) (*route.Result, error) {
	path, err := route.FromURL(target)
	if err != nil {
		a.Store.Fail(err)
		return nil, err
	}
	res, err := a.Router.Dispatch(ctx, path)
	if err != nil {
		log.Printf("open %s failed: %v", path, err)
		a.Store.Fail(err)
		return nil, err
	}
	a.Store.Navigate(res.Path, res)
	return res, nil
}

// Dispatch runs target through the router without touching the store.
func (a *App) Dispatch(ctx context.Context, target string) (*route.Result, error) {
	path, err := route.FromURL(target)
	if err != nil {
		return nil, err
	}
	return a.Router.Dispatch(ctx, path)
}

// Routes returns the route table in match order.
func (a *App) Routes() []route.Route {
	return a.Router.Routes()
}

// HomeName returns a label for the configured home instances.
func (a *App) HomeName() string {
	switch {
	case a.Mastodon != nil && a.Lemmy != nil:
		return a.Mastodon.Host() + " + " + a.Lemmy.Host()
	case a.Mastodon != nil:
		return a.Mastodon.Host()
	case a.Lemmy != nil:
		return a.Lemmy.Host()
	}
	return "anonymous"
}

// Options configure Run.
type Options struct {
	Config    config.Config
	Start     string        // first page; empty opens the home timeline
	PollEvery time.Duration // zero uses the configured interval
}

// Run boots the TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	a, err := New(cfg, nil)
	if err != nil {
		return err
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}
	if a.Mastodon != nil && a.Mastodon.Authenticated() {
		StartPoller(ctx, a.Store, a.Mastodon, interval)
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Backend:   a,
		Store:     a.Store,
		Start:     opts.Start,
		ThemeName: cfg.Theme,
		Wrap:      cfg.Wrap,
		Home:      a.HomeName(),
	})
}
