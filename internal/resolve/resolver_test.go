package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fediscope/fediscope/internal/httpx"
	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/mastodon"
)

// instance is a fake server that answers from a path -> JSON table and
// records every request path it saw.
type instance struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]any
	seen   []string
}

func newInstance(t *testing.T, routes map[string]any) *instance {
	t.Helper()
	in := &instance{routes: routes}
	in.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		in.mu.Lock()
		in.seen = append(in.seen, key)
		in.mu.Unlock()
		body, ok := routes[key]
		if !ok {
			body, ok = routes[r.URL.Path]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Record not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(in.Close)
	return in
}

func (in *instance) requests() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]string(nil), in.seen...)
}

func mastodonResolver(t *testing.T, remote, home *instance, token string) *Resolver {
	t.Helper()
	cfg := Config{
		Mastodon: func(name string) (MastodonAPI, error) {
			if name != "remote.example" {
				t.Fatalf("unexpected instance %q", name)
			}
			return mastodon.NewClient(remote.URL, httpx.Options{})
		},
	}
	if home != nil {
		c, err := mastodon.NewClient(home.URL, httpx.Options{Token: token})
		if err != nil {
			t.Fatalf("NewClient returned error: %v", err)
		}
		cfg.MastodonHome = c
	}
	return New(cfg, httpx.Options{})
}

const remoteURI = "https://remote.example/users/al/statuses/42"

func TestThread_DirectFetchLoadsContext(t *testing.T) {
	remote := newInstance(t, map[string]any{
		"/api/v1/statuses/42":         mastodon.Status{ID: "42", URI: remoteURI},
		"/api/v1/statuses/42/context": mastodon.Context{Ancestors: []mastodon.Status{{ID: "41"}}, Descendants: []mastodon.Status{{ID: "43"}}},
	})
	home := newInstance(t, nil)
	r := mastodonResolver(t, remote, home, "tok")

	thread, src, err := r.Thread(context.Background(), StatusRef{Instance: "remote.example", User: "al", ID: "42"})
	if err != nil {
		t.Fatalf("Thread returned error: %v", err)
	}
	if src != SourceDirect {
		t.Fatalf("source = %q, want direct", src)
	}
	if thread.Status.ID != "42" || len(thread.Ancestors) != 1 || len(thread.Descendants) != 1 {
		t.Fatalf("thread = %#v, want status with context", thread)
	}
	if got := home.requests(); len(got) != 0 {
		t.Fatalf("home instance was queried: %v", got)
	}
}

func TestThread_HomeIDAcceptedWhenURIMatches(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v1/statuses/42":         mastodon.Status{ID: "42", URI: remoteURI},
		"/api/v1/statuses/42/context": mastodon.Context{},
	})
	r := mastodonResolver(t, remote, home, "tok")

	thread, src, err := r.Thread(context.Background(), StatusRef{Instance: "remote.example", User: "al", ID: "42"})
	if err != nil {
		t.Fatalf("Thread returned error: %v", err)
	}
	if src != SourceHomeID || thread.Status.URI != remoteURI {
		t.Fatalf("Thread = %#v from %q, want home-id hit", thread.Status, src)
	}
}

func TestThread_HomeIDMismatchFallsThroughToSearch(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v1/statuses/42":  mastodon.Status{ID: "42", URI: "https://elsewhere.example/users/bo/statuses/42"},
		"/api/v2/search":       mastodon.SearchResults{Statuses: []mastodon.Status{{ID: "900"}}},
		"/api/v1/statuses/900": mastodon.Status{ID: "900", URI: remoteURI},
	})
	r := mastodonResolver(t, remote, home, "tok")

	thread, src, err := r.Thread(context.Background(), StatusRef{Instance: "remote.example", User: "al", ID: "42"})
	if err != nil {
		t.Fatalf("Thread returned error: %v", err)
	}
	if src != SourceHomeSearch || thread.Status.ID != "900" {
		t.Fatalf("Thread = %q from %q, want 900 from home-search", thread.Status.ID, src)
	}

	var searched bool
	for _, req := range home.requests() {
		if req == "/api/v2/search?limit=1&q=https%3A%2F%2Fremote.example%2F%40al%2F42&resolve=true&type=statuses" {
			searched = true
		}
	}
	if !searched {
		t.Fatalf("home search request not found in %v", home.requests())
	}
}

func TestThread_HomeIDSameHostOtherStatusIsRejected(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v1/statuses/42":  mastodon.Status{ID: "42", URI: "https://remote.example/users/zed/statuses/9999", Account: mastodon.Account{Acct: "zed@remote.example"}},
		"/api/v2/search":       mastodon.SearchResults{Statuses: []mastodon.Status{{ID: "900"}}},
		"/api/v1/statuses/900": mastodon.Status{ID: "900", URI: remoteURI},
	})
	r := mastodonResolver(t, remote, home, "tok")

	thread, src, err := r.Thread(context.Background(), StatusRef{Instance: "remote.example", User: "al", ID: "42"})
	if err != nil {
		t.Fatalf("Thread returned error: %v", err)
	}
	if src != SourceHomeSearch || thread.Status.ID != "900" {
		t.Fatalf("Thread = %q (%s) from %q, want 900 from home-search", thread.Status.ID, thread.Status.URI, src)
	}

	id, err := r.LocalStatusID(context.Background(), StatusRef{Instance: "remote.example", User: "al", ID: "42"})
	if err != nil || id != "900" {
		t.Fatalf("LocalStatusID = %q, %v; want 900", id, err)
	}
}

func TestStatusIs(t *testing.T) {
	ref := StatusRef{Instance: "remote.example", User: "al", ID: "42"}
	tests := []struct {
		name string
		st   mastodon.Status
		want bool
	}{
		{"uri", mastodon.Status{URI: "https://remote.example/users/al/statuses/42"}, true},
		{"web url", mastodon.Status{URL: "https://Remote.Example/@al/42"}, true},
		{"other id", mastodon.Status{URI: "https://remote.example/users/al/statuses/43"}, false},
		{"other user", mastodon.Status{URI: "https://remote.example/users/zed/statuses/42"}, false},
		{"other host", mastodon.Status{URI: "https://elsewhere.example/users/al/statuses/42"}, false},
		{"acct only", mastodon.Status{Account: mastodon.Account{Acct: "al@remote.example"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusIs(&tt.st, ref); got != tt.want {
				t.Fatalf("statusIs = %v, want %v", got, tt.want)
			}
		})
	}
	if !statusIs(&mastodon.Status{URI: "https://remote.example/users/bo/statuses/42"}, StatusRef{Instance: "remote.example", ID: "42"}) {
		t.Fatalf("a ref without a user should accept any author")
	}
}

func TestThread_TotalFailureIsNotFound(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v2/search": mastodon.SearchResults{},
	})
	r := mastodonResolver(t, remote, home, "tok")

	_, _, err := r.Thread(context.Background(), StatusRef{Instance: "remote.example", ID: "42"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Thread error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Thread error = %T, want *NotFoundError", err)
	}
	if len(nf.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3: %v", len(nf.Attempts), err)
	}
	want := []Source{SourceDirect, SourceHomeID, SourceHomeSearch}
	for i, a := range nf.Attempts {
		if a.Source != want[i] {
			t.Fatalf("attempt %d source = %q, want %q", i, a.Source, want[i])
		}
	}
}

func TestThread_SkipsHomeStepsWithoutCredentials(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v1/statuses/42": mastodon.Status{ID: "42", URI: remoteURI},
	})
	r := mastodonResolver(t, remote, home, "")

	_, _, err := r.Thread(context.Background(), StatusRef{Instance: "remote.example", ID: "42"})
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, errSkipped) {
		t.Fatalf("Thread error = %v, want not found with skipped steps", err)
	}
	if got := home.requests(); len(got) != 0 {
		t.Fatalf("unauthenticated home was queried: %v", got)
	}

	noHome := mastodonResolver(t, remote, nil, "")
	if _, _, err := noHome.Thread(context.Background(), StatusRef{Instance: "remote.example", ID: "42"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Thread without home error = %v, want ErrNotFound", err)
	}
}

func TestThread_StopsOnCancelledContext(t *testing.T) {
	remote := newInstance(t, nil)
	r := mastodonResolver(t, remote, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Thread(ctx, StatusRef{Instance: "remote.example", ID: "42"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Thread error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("cancelled chain should not report not found")
	}
	if got := remote.requests(); len(got) != 0 {
		t.Fatalf("remote was queried after cancel: %v", got)
	}
}

func TestLocalStatusID(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v2/search":       mastodon.SearchResults{Statuses: []mastodon.Status{{ID: "900"}}},
		"/api/v1/statuses/900": mastodon.Status{ID: "900", URI: remoteURI},
	})

	r := mastodonResolver(t, remote, home, "")
	if _, err := r.LocalStatusID(context.Background(), StatusRef{Instance: "remote.example", ID: "42"}); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("LocalStatusID without token error = %v, want ErrNoCredentials", err)
	}

	r = mastodonResolver(t, remote, home, "tok")
	id, err := r.LocalStatusID(context.Background(), StatusRef{Instance: "remote.example", URL: "https://remote.example/@al/42", ID: "42"})
	if err != nil {
		t.Fatalf("LocalStatusID returned error: %v", err)
	}
	if id != "900" {
		t.Fatalf("LocalStatusID = %q, want 900", id)
	}

	homeHost := r.MastodonHome().Host()
	id, err = r.LocalStatusID(context.Background(), StatusRef{Instance: homeHost, ID: "5"})
	if err != nil || id != "5" {
		t.Fatalf("LocalStatusID on home = %q, %v; want 5 unchanged", id, err)
	}
}

func TestThread_HomeInstanceUsesAuthenticatedClient(t *testing.T) {
	var (
		mu    sync.Mutex
		auths []string
	)
	home := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.URL.Path+" "+r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/statuses/42":
			st := mastodon.Status{ID: "42", URI: "https://home.example/users/me/statuses/42"}
			st.Favourited = r.Header.Get("Authorization") == "Bearer tok"
			_ = json.NewEncoder(w).Encode(st)
		case "/api/v1/statuses/42/context":
			_ = json.NewEncoder(w).Encode(mastodon.Context{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(home.Close)

	c, err := mastodon.NewClient(home.URL, httpx.Options{Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	r := New(Config{
		MastodonHome: c,
		Mastodon: func(name string) (MastodonAPI, error) {
			t.Fatalf("anonymous client built for %q", name)
			return nil, nil
		},
	}, httpx.Options{})

	thread, src, err := r.Thread(context.Background(), StatusRef{Instance: c.Host(), User: "me", ID: "42"})
	if err != nil {
		t.Fatalf("Thread returned error: %v", err)
	}
	if src != SourceDirect {
		t.Fatalf("source = %q, want direct", src)
	}
	if !thread.Status.Favourited {
		t.Fatal("viewer state missing: direct step did not use the home token")
	}
	mu.Lock()
	defer mu.Unlock()
	for _, got := range auths {
		if !strings.HasSuffix(got, " Bearer tok") {
			t.Fatalf("request without home token: %q", got)
		}
	}
	if len(auths) != 2 {
		t.Fatalf("home saw %d requests, want status and context only: %v", len(auths), auths)
	}
}

func TestAccount_FallsBackToHomeLookup(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v1/accounts/lookup?acct=al%40remote.example": mastodon.Account{ID: "77", Username: "al", Acct: "al@remote.example"},
		"/api/v1/accounts/77/statuses":                     []mastodon.Status{{ID: "1"}, {ID: "2"}},
	})
	r := mastodonResolver(t, remote, home, "tok")

	page, src, err := r.Account(context.Background(), "remote.example", "@al", mastodon.PageQuery{})
	if err != nil {
		t.Fatalf("Account returned error: %v", err)
	}
	if src != SourceHomeLookup || page.Account.ID != "77" || len(page.Statuses) != 2 {
		t.Fatalf("Account = %#v from %q, want home lookup with statuses", page, src)
	}
}

func TestAccount_HomeSearchMatchesAcct(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v2/search": mastodon.SearchResults{Accounts: []mastodon.Account{
			{ID: "1", Acct: "al@other.example"},
			{ID: "2", Acct: "AL@remote.example"},
		}},
		"/api/v1/accounts/2/statuses": []mastodon.Status{},
	})
	r := mastodonResolver(t, remote, home, "tok")

	page, src, err := r.Account(context.Background(), "remote.example", "al", mastodon.PageQuery{})
	if err != nil {
		t.Fatalf("Account returned error: %v", err)
	}
	if src != SourceHomeSearch || page.Account.ID != "2" {
		t.Fatalf("Account = %q from %q, want 2 from home-search", page.Account.ID, src)
	}
}

func lemmyResolver(t *testing.T, remote, home *instance) *Resolver {
	t.Helper()
	homeClient, err := lemmy.NewClient(home.URL, httpx.Options{Token: "jwt"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return New(Config{
		LemmyHome: homeClient,
		Lemmy: func(string) (LemmyAPI, error) {
			return lemmy.NewClient(remote.URL, httpx.Options{})
		},
	}, httpx.Options{})
}

func postDetail(id int64, apID string) lemmy.PostDetail {
	return lemmy.PostDetail{PostView: lemmy.PostView{Post: lemmy.Post{ID: id, ApID: apID, Name: "post " + strconv.FormatInt(id, 10)}}}
}

func TestPost_DirectWithComments(t *testing.T) {
	remote := newInstance(t, map[string]any{
		"/api/v3/post?id=42": postDetail(42, "https://remote.example/post/42"),
		"/api/v3/comment/list": map[string]any{"comments": []lemmy.CommentView{
			{Comment: lemmy.Comment{ID: 1, Path: "0.1"}},
		}},
	})
	home := newInstance(t, nil)
	r := lemmyResolver(t, remote, home)

	detail, src, err := r.Post(context.Background(), "remote.example", 42, lemmy.CommentQuery{})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if src != SourceDirect || detail.PostView.Post.ID != 42 || len(detail.Comments) != 1 {
		t.Fatalf("Post = %#v from %q, want direct hit with one comment", detail, src)
	}
}

func TestPost_HomeResolveObject(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v3/post?id=42": postDetail(42, "https://home.example/post/42"),
		"/api/v3/resolve_object?q=https%3A%2F%2Fremote.example%2Fpost%2F42": lemmy.ResolvedObject{
			Post: &lemmy.PostView{Post: lemmy.Post{ID: 77}},
		},
		"/api/v3/post?id=77":   postDetail(77, "https://remote.example/post/42"),
		"/api/v3/comment/list": map[string]any{"comments": []lemmy.CommentView{}},
	})
	r := lemmyResolver(t, remote, home)

	detail, src, err := r.Post(context.Background(), "remote.example", 42, lemmy.CommentQuery{})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if src != SourceHomeSearch || detail.PostView.Post.ID != 77 {
		t.Fatalf("Post = %d from %q, want 77 from home-search", detail.PostView.Post.ID, src)
	}

	id, err := r.LocalLemmyPostID(context.Background(), "remote.example", 42)
	if err != nil || id != 77 {
		t.Fatalf("LocalLemmyPostID = %d, %v; want 77", id, err)
	}
}

func TestPost_HomeIDSameHostOtherPostIsRejected(t *testing.T) {
	remote := newInstance(t, nil)
	other := postDetail(42, "https://remote.example/post/777")
	other.PostView.Post.Name = "some other post"
	home := newInstance(t, map[string]any{
		"/api/v3/post?id=42": other,
		"/api/v3/resolve_object?q=https%3A%2F%2Fremote.example%2Fpost%2F42": lemmy.ResolvedObject{
			Post: &lemmy.PostView{Post: lemmy.Post{ID: 77}},
		},
		"/api/v3/post?id=77":   postDetail(77, "https://remote.example/post/42"),
		"/api/v3/comment/list": map[string]any{"comments": []lemmy.CommentView{}},
	})
	r := lemmyResolver(t, remote, home)

	detail, src, err := r.Post(context.Background(), "remote.example", 42, lemmy.CommentQuery{})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if src != SourceHomeSearch || detail.PostView.Post.ID != 77 {
		t.Fatalf("Post = %d %q from %q, want 77 from home-search", detail.PostView.Post.ID, detail.PostView.Post.Name, src)
	}

	id, err := r.LocalLemmyPostID(context.Background(), "remote.example", 42)
	if err != nil || id != 77 {
		t.Fatalf("LocalLemmyPostID = %d, %v; want 77", id, err)
	}
}

func TestComment_HomeIDSameHostOtherCommentIsRejected(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v3/comment?id=9": map[string]any{"comment_view": lemmy.CommentView{Comment: lemmy.Comment{ID: 9, ApID: "https://remote.example/comment/19"}}},
		"/api/v3/resolve_object": lemmy.ResolvedObject{},
	})
	r := lemmyResolver(t, remote, home)

	_, _, err := r.Comment(context.Background(), "remote.example", 9)
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, errMismatch) {
		t.Fatalf("Comment error = %v, want not found after a mismatch", err)
	}
}

func TestComment_HomeIDGuard(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v3/comment?id=9": map[string]any{"comment_view": lemmy.CommentView{Comment: lemmy.Comment{ID: 9, ApID: "https://remote.example/comment/9"}}},
		"/api/v3/comment/list": map[string]any{"comments": []lemmy.CommentView{
			{Comment: lemmy.Comment{ID: 9}},
			{Comment: lemmy.Comment{ID: 10}},
		}},
	})
	r := lemmyResolver(t, remote, home)

	thread, src, err := r.Comment(context.Background(), "remote.example", 9)
	if err != nil {
		t.Fatalf("Comment returned error: %v", err)
	}
	if src != SourceHomeID || len(thread.Replies) != 1 || thread.Replies[0].Comment.ID != 10 {
		t.Fatalf("Comment = %#v from %q, want home-id with one reply", thread, src)
	}
}

func TestCommunity_QualifiesRemoteNames(t *testing.T) {
	remote := newInstance(t, map[string]any{
		"/api/v3/community?name=golang%40lemmy.ml": map[string]any{"community_view": lemmy.CommunityView{Community: lemmy.Community{ID: 3, Name: "golang"}}},
		"/api/v3/post/list":                        lemmy.PostList{Posts: []lemmy.PostView{{Post: lemmy.Post{ID: 1}}}},
	})
	home := newInstance(t, nil)
	r := lemmyResolver(t, remote, home)

	detail, src, err := r.Community(context.Background(), "remote.example", "golang@lemmy.ml", 2)
	if err != nil {
		t.Fatalf("Community returned error: %v", err)
	}
	if src != SourceDirect || detail.CommunityView.Community.ID != 3 || len(detail.Posts) != 1 || detail.Page != 2 {
		t.Fatalf("Community = %#v from %q", detail, src)
	}
	var listed bool
	for _, req := range remote.requests() {
		if req == "/api/v3/post/list?community_name=golang%40lemmy.ml&page=2&sort=New" {
			listed = true
		}
	}
	if !listed {
		t.Fatalf("post list request not found in %v", remote.requests())
	}
}

func TestPerson_HomeSearchLoadsResolvedID(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, map[string]any{
		"/api/v3/resolve_object": lemmy.ResolvedObject{
			Person: &lemmy.PersonView{Person: lemmy.Person{ID: 5, Name: "ann"}},
		},
		"/api/v3/user?person_id=5&sort=New": lemmy.PersonDetail{
			PersonView: lemmy.PersonView{Person: lemmy.Person{ID: 5, Name: "ann"}},
		},
	})
	r := lemmyResolver(t, remote, home)

	detail, src, err := r.Person(context.Background(), "remote.example", "ann")
	if err != nil {
		t.Fatalf("Person returned error: %v", err)
	}
	if src != SourceHomeSearch || detail.PersonView.Person.ID != 5 {
		t.Fatalf("Person = %#v from %q, want 5 from home-search", detail.PersonView.Person, src)
	}
	var byName int
	for _, req := range home.requests() {
		if strings.Contains(req, "username=") {
			byName++
		}
	}
	if byName != 1 {
		t.Fatalf("home looked up the username %d times, want once: %v", byName, home.requests())
	}
}

func TestPerson_NotFound(t *testing.T) {
	remote := newInstance(t, nil)
	home := newInstance(t, nil)
	r := lemmyResolver(t, remote, home)

	_, _, err := r.Person(context.Background(), "remote.example", "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Person error = %v, want ErrNotFound", err)
	}
}

func TestStatusRefLink(t *testing.T) {
	cases := []struct {
		ref  StatusRef
		want string
	}{
		{StatusRef{Instance: "m.example", User: "al", ID: "1"}, "https://m.example/@al/1"},
		{StatusRef{Instance: "m.example", ID: "1"}, "https://m.example/statuses/1"},
		{StatusRef{Instance: "m.example", ID: "1", URL: "https://x.example/p/1"}, "https://x.example/p/1"},
	}
	for _, tc := range cases {
		if got := tc.ref.Link(); got != tc.want {
			t.Fatalf("Link(%#v) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
