package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fediscope/fediscope/internal/httpx"
	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/route"
)

// StatusRef names a status as it appears in a path: the instance it was
// found on, the author's local username when known, and the ID on that
// instance. URL, when set, is the canonical link used for searching.
type StatusRef struct {
	Instance string
	User     string
	ID       string
	URL      string
}

// Link returns the web URL searched for in the home-search step.
func (r StatusRef) Link() string {
	if r.URL != "" {
		return r.URL
	}
	host := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(r.Instance, "https://"), "http://"), "/")
	if r.User != "" {
		return "https://" + host + "/@" + strings.TrimPrefix(r.User, "@") + "/" + r.ID
	}
	return "https://" + host + "/statuses/" + r.ID
}

type answeredStatus struct {
	client MastodonAPI
	status *mastodon.Status
}

// Thread resolves a status and loads its context from whichever instance
// answered. A failed context fetch leaves the thread without neighbours.
func (r *Resolver) Thread(ctx context.Context, ref StatusRef) (*mastodon.Thread, Source, error) {
	if strings.TrimSpace(ref.ID) == "" {
		return nil, "", route.Invalidf("status id required")
	}
	direct, err := r.mastodonFor(ref.Instance)
	if err != nil {
		return nil, "", err
	}
	steps := []step[answeredStatus]{{
		source: SourceDirect,
		run: func(ctx context.Context) (answeredStatus, error) {
			st, err := direct.Status(ctx, ref.ID)
			return answeredStatus{client: direct, status: st}, err
		},
	}}
	steps = append(steps, r.homeStatusSteps(ref)...)

	got, src, err := runChain(ctx, "status "+ref.Link(), steps)
	if err != nil {
		return nil, "", err
	}
	thread := &mastodon.Thread{Status: *got.status}
	if c, err := got.client.StatusContext(ctx, got.status.ID); err == nil {
		thread.Ancestors = c.Ancestors
		thread.Descendants = c.Descendants
	} else if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	return thread, src, nil
}

// LocalStatusID maps a status to its ID on the home instance, which is what
// favourite, reblog and bookmark need.
func (r *Resolver) LocalStatusID(ctx context.Context, ref StatusRef) (string, error) {
	home := r.cfg.MastodonHome
	if home == nil || !home.Authenticated() {
		return "", ErrNoCredentials
	}
	if httpx.SameHost(home.Host(), ref.Instance) {
		return ref.ID, nil
	}
	got, _, err := runChain(ctx, "status "+ref.Link(), r.homeStatusSteps(ref))
	if err != nil {
		return "", err
	}
	return got.status.ID, nil
}

// homeStatusSteps are the home-id and home-search steps for a status.
func (r *Resolver) homeStatusSteps(ref StatusRef) []step[answeredStatus] {
	home := r.cfg.MastodonHome
	return []step[answeredStatus]{
		{
			source: SourceHomeID,
			run: func(ctx context.Context) (answeredStatus, error) {
				if reason, ok := otherHome(home, home != nil, ref.Instance); !ok {
					return answeredStatus{}, skipped(reason)
				}
				st, err := home.Status(ctx, ref.ID)
				if err != nil {
					return answeredStatus{}, err
				}
				if !statusIs(st, ref) {
					return answeredStatus{}, fmt.Errorf("%w: %s", errMismatch, st.Link())
				}
				return answeredStatus{client: home, status: st}, nil
			},
		},
		{
			source: SourceHomeSearch,
			run: func(ctx context.Context) (answeredStatus, error) {
				if reason, ok := otherHome(home, home != nil, ref.Instance); !ok {
					return answeredStatus{}, skipped(reason)
				}
				res, err := home.Search(ctx, mastodon.SearchQuery{
					Q:       ref.Link(),
					Type:    "statuses",
					Resolve: true,
					Limit:   1,
				})
				if err != nil {
					return answeredStatus{}, err
				}
				if len(res.Statuses) == 0 {
					return answeredStatus{}, fmt.Errorf("search for %s: %w", ref.Link(), ErrNotFound)
				}
				st, err := home.Status(ctx, res.Statuses[0].ID)
				if err != nil {
					return answeredStatus{}, err
				}
				return answeredStatus{client: home, status: st}, nil
			},
		},
	}
}

// statusIs reports whether a status fetched by ID from the home instance is
// the one ref names: its URI is ref's /users/<user>/statuses/<id> or its URL
// is ref's /@<user>/<id>.
func statusIs(st *mastodon.Status, ref StatusRef) bool {
	if st == nil {
		return false
	}
	user := strings.TrimPrefix(strings.TrimSpace(ref.User), "@")
	sameUser := func(name string) bool {
		return name != "" && (user == "" || strings.EqualFold(name, user))
	}
	for _, link := range []string{st.URI, st.URL} {
		u, err := url.Parse(strings.TrimSpace(link))
		if err != nil || u.Host == "" || !httpx.SameHost(u.Host, ref.Instance) {
			continue
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case len(parts) == 4 && parts[0] == "users" && parts[2] == "statuses":
			if sameUser(parts[1]) && parts[3] == ref.ID {
				return true
			}
		case len(parts) == 2 && strings.HasPrefix(parts[0], "@"):
			if sameUser(strings.TrimPrefix(parts[0], "@")) && parts[1] == ref.ID {
				return true
			}
		}
	}
	return false
}

type answeredAccount struct {
	client  MastodonAPI
	account *mastodon.Account
}

// Account resolves user on instance and loads one page of their statuses
// from whichever instance answered. When instance is the home instance the
// direct step is the authenticated lookup.
func (r *Resolver) Account(ctx context.Context, instance, user string, q mastodon.PageQuery) (*mastodon.AccountPage, Source, error) {
	user = strings.TrimPrefix(strings.TrimSpace(user), "@")
	if user == "" {
		return nil, "", route.Invalidf("username required")
	}
	direct, err := r.mastodonFor(instance)
	if err != nil {
		return nil, "", err
	}
	acct := user + "@" + instance
	home := r.cfg.MastodonHome
	homeOnly := func(ctx context.Context, fn func(context.Context) (*mastodon.Account, error)) (answeredAccount, error) {
		if reason, ok := otherHome(home, home != nil, instance); !ok {
			return answeredAccount{}, skipped(reason)
		}
		a, err := fn(ctx)
		if err != nil {
			return answeredAccount{}, err
		}
		return answeredAccount{client: home, account: a}, nil
	}

	steps := []step[answeredAccount]{
		{
			source: SourceDirect,
			run: func(ctx context.Context) (answeredAccount, error) {
				a, err := direct.LookupAccount(ctx, user)
				return answeredAccount{client: direct, account: a}, err
			},
		},
		{
			source: SourceHomeLookup,
			run: func(ctx context.Context) (answeredAccount, error) {
				return homeOnly(ctx, func(ctx context.Context) (*mastodon.Account, error) {
					return home.LookupAccount(ctx, acct)
				})
			},
		},
		{
			source: SourceHomeSearch,
			run: func(ctx context.Context) (answeredAccount, error) {
				return homeOnly(ctx, func(ctx context.Context) (*mastodon.Account, error) {
					res, err := home.Search(ctx, mastodon.SearchQuery{Q: "@" + acct, Type: "accounts", Resolve: true, Limit: 5})
					if err != nil {
						return nil, err
					}
					for i := range res.Accounts {
						if strings.EqualFold(res.Accounts[i].Acct, acct) {
							return &res.Accounts[i], nil
						}
					}
					return nil, fmt.Errorf("search for @%s: %w", acct, ErrNotFound)
				})
			},
		},
	}

	got, src, err := runChain(ctx, "account @"+acct, steps)
	if err != nil {
		return nil, "", err
	}
	page := &mastodon.AccountPage{Account: *got.account}
	tl, err := got.client.AccountStatuses(ctx, got.account.ID, q)
	if err == nil {
		page.Statuses = tl.Statuses
		page.Page = tl.Page
	} else if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	return page, src, nil
}
