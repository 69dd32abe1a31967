package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/resolve"
	"github.com/fediscope/fediscope/internal/route"
	"github.com/fediscope/fediscope/internal/state"
)

type fakeBackend struct {
	mu      sync.Mutex
	store   *state.Store
	pages   map[string]*route.Result
	opened  []string
	applied []string
}

func (f *fakeBackend) Open(_ context.Context, target string) (*route.Result, error) {
	f.mu.Lock()
	f.opened = append(f.opened, target)
	res, ok := f.pages[target]
	f.mu.Unlock()
	if !ok {
		err := fmt.Errorf("%s: %w", target, resolve.ErrNotFound)
		f.store.Fail(err)
		return nil, err
	}
	f.store.Navigate(target, res)
	return res, nil
}

func (f *fakeBackend) Apply(_ context.Context, target, action string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, action+" "+target)
	return action + " done", nil
}

func (f *fakeBackend) WebURL(target string) (string, error) {
	return "https://web.test" + target, nil
}

func (f *fakeBackend) lastOpened() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.opened) == 0 {
		return ""
	}
	return f.opened[len(f.opened)-1]
}

func testStatus(id, user, text string) mastodon.Status {
	return mastodon.Status{
		ID:        id,
		URL:       "https://a.test/@" + user + "/" + id,
		CreatedAt: "2026-10-17T10:00:00Z",
		Content:   "<p>" + text + "</p>",
		Account:   mastodon.Account{Username: user, Acct: user},
	}
}

func homePage(next string, statuses ...mastodon.Status) *route.Result {
	return &route.Result{
		Kind:  route.KindTimeline,
		Title: "Home",
		Data:  &mastodon.Timeline{Statuses: statuses},
		Next:  next,
	}
}

type harness struct {
	t       *testing.T
	backend *fakeBackend
	store   *state.Store
	browsed []string
	m       Model
}

func newHarness(t *testing.T, pages map[string]*route.Result) *harness {
	t.Helper()
	store := &state.Store{}
	h := &harness{t: t, store: store, backend: &fakeBackend{store: store, pages: pages}}
	h.m = New(Options{
		Backend: h.backend,
		Store:   store,
		Home:    "a.test",
		OpenURL: func(u string) error {
			h.browsed = append(h.browsed, u)
			return nil
		},
	})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg and returns the command the model produced.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// run executes cmd and feeds its message back into the model.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		h.t.Fatalf("expected a command")
	}
	h.send(cmd())
}

func (h *harness) key(k string) tea.Cmd {
	h.t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return h.send(msg)
}

func (h *harness) open(target string) {
	h.t.Helper()
	h.run(h.m.openCmd(target))
}

func TestOpenShowsItems(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/": homePage("", testStatus("1", "bob", "first post"), testStatus("2", "zed", "second post")),
	})
	h.open("/")

	if h.m.loading {
		t.Fatalf("expected loading cleared")
	}
	if len(h.m.visible) != 2 {
		t.Fatalf("expected 2 visible items, got %d", len(h.m.visible))
	}
	view := h.m.View()
	for _, want := range []string{"fediscope", "Home", "first post", "a.test"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestEnterOpensThreadAndBackReturns(t *testing.T) {
	thread := &route.Result{Kind: route.KindThread, Title: "Thread", Data: &mastodon.Thread{Status: testStatus("2", "zed", "second post")}}
	h := newHarness(t, map[string]*route.Result{
		"/":              homePage("", testStatus("1", "bob", "first"), testStatus("2", "zed", "second")),
		"/a.test/@zed/2": thread,
	})
	h.open("/")

	h.key("j")
	h.run(h.key("enter"))
	if got := h.store.Snapshot().Path; got != "/a.test/@zed/2" {
		t.Fatalf("expected thread path, got %q", got)
	}
	if h.m.snapshot.Result.Kind != route.KindThread {
		t.Fatalf("expected thread result, got %s", h.m.snapshot.Result.Kind)
	}

	h.run(h.key("esc"))
	if got := h.store.Snapshot().Path; got != "/" {
		t.Fatalf("expected back at home, got %q", got)
	}
	if h.key("backspace") != nil {
		t.Fatalf("expected no command without history")
	}
	if h.m.flash != "no earlier page" {
		t.Fatalf("unexpected flash %q", h.m.flash)
	}
}

func TestNextPageFollowsCursor(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/":          homePage("/?max_id=1", testStatus("2", "bob", "newer")),
		"/?max_id=1": homePage("", testStatus("1", "bob", "older")),
	})
	h.open("/")

	h.run(h.key("n"))
	if h.backend.lastOpened() != "/?max_id=1" {
		t.Fatalf("expected next page opened, got %q", h.backend.lastOpened())
	}
	if h.key("n") != nil {
		t.Fatalf("expected no command on the last page")
	}
	if h.m.flash != "no more pages" {
		t.Fatalf("unexpected flash %q", h.m.flash)
	}
}

func TestFilterPrompt(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/": homePage("", testStatus("1", "bob", "gardening tips"), testStatus("2", "zed", "kernel news")),
	})
	h.open("/")

	h.key("/")
	if h.m.mode != modeFilter {
		t.Fatalf("expected filter mode")
	}
	h.key("krnl")
	if len(h.m.visible) != 1 || h.m.items[h.m.visible[0]].Body != "kernel news" {
		t.Fatalf("expected fuzzy match on kernel news, got %v", h.m.visible)
	}
	h.key("enter")
	if h.m.mode != modeList || h.m.filter != "krnl" {
		t.Fatalf("expected filter kept after enter, mode=%v filter=%q", h.m.mode, h.m.filter)
	}

	if cmd := h.key("esc"); cmd != nil {
		t.Fatalf("esc with a filter should only clear it")
	}
	if h.m.filter != "" || len(h.m.visible) != 2 {
		t.Fatalf("expected filter cleared, got %q %v", h.m.filter, h.m.visible)
	}
}

func TestGoToPromptOpensTarget(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/":   homePage(""),
		"#go": {Kind: route.KindTimeline, Title: "#go", Data: &mastodon.Timeline{}},
	})
	h.open("/")

	h.key("g")
	if h.m.mode != modeGoTo {
		t.Fatalf("expected go-to mode")
	}
	h.key("#go")
	h.run(h.key("enter"))
	if h.backend.lastOpened() != "#go" {
		t.Fatalf("expected #go opened, got %q", h.backend.lastOpened())
	}
	if h.m.snapshot.Result.Title != "#go" {
		t.Fatalf("expected tag page loaded, got %q", h.m.snapshot.Result.Title)
	}
}

func TestLoadErrorKeepsPage(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/": homePage("", testStatus("1", "bob", "still here")),
	})
	h.open("/")
	h.open("/missing")

	if !h.m.flashErr || !strings.Contains(h.m.flash, "not found") {
		t.Fatalf("expected not-found flash, got %q", h.m.flash)
	}
	if len(h.m.visible) != 1 || h.m.snapshot.Path != "/" {
		t.Fatalf("expected previous page kept, path=%q items=%d", h.m.snapshot.Path, len(h.m.visible))
	}
}

func TestActionsUseSelectedTarget(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/": homePage("", testStatus("7", "bob", "post")),
	})
	h.open("/")

	h.run(h.key("f"))
	h.run(h.key("b"))
	h.run(h.key("B"))
	want := []string{"favourite /a.test/@bob/7", "reblog /a.test/@bob/7", "bookmark /a.test/@bob/7"}
	if strings.Join(h.backend.applied, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected actions %v", h.backend.applied)
	}
	if h.m.flash != "bookmark done" {
		t.Fatalf("unexpected flash %q", h.m.flash)
	}
}

func TestBrowserOpensItemLink(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{
		"/": homePage("", testStatus("7", "bob", "post")),
	})
	h.open("/")

	h.run(h.key("o"))
	if len(h.browsed) != 1 || h.browsed[0] != "https://a.test/@bob/7" {
		t.Fatalf("unexpected browsed links %v", h.browsed)
	}
}

func TestSpoilerAndBoostToggles(t *testing.T) {
	hidden := testStatus("1", "bob", "secret soup")
	hidden.SpoilerText = "food"
	orig := testStatus("2", "zed", "boosted text")
	boost := mastodon.Status{ID: "3", Account: mastodon.Account{Username: "amy"}, Reblog: &orig}
	h := newHarness(t, map[string]*route.Result{
		"/": homePage("", hidden, boost),
	})
	h.open("/")

	if strings.Contains(h.m.detail.View(), "secret soup") {
		t.Fatalf("spoiler shown before toggle")
	}
	h.key("s")
	if !strings.Contains(h.m.detail.View(), "secret soup") {
		t.Fatalf("spoiler not shown after toggle:\n%s", h.m.detail.View())
	}

	h.key("v")
	if len(h.m.visible) != 1 {
		t.Fatalf("expected boosts hidden, got %d items", len(h.m.visible))
	}
	if h.store.Snapshot().ShowBoosts {
		t.Fatalf("expected toggle stored")
	}
}

func TestSourceFlashAndHelpAndQuit(t *testing.T) {
	res := &route.Result{Kind: route.KindThread, Source: "home-search", Data: &mastodon.Thread{Status: testStatus("1", "bob", "x")}}
	h := newHarness(t, map[string]*route.Result{"/b.test/@bob/1": res})
	h.open("/b.test/@bob/1")
	if h.m.flash != "found via home-search" {
		t.Fatalf("unexpected flash %q", h.m.flash)
	}

	h.key("?")
	if !h.m.showHelp || !strings.Contains(h.m.View(), "Keyboard Shortcuts") {
		t.Fatalf("expected help overlay")
	}
	h.key("x")
	if h.m.showHelp {
		t.Fatalf("expected any key to close help")
	}

	cmd := h.key("q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestCompactLayoutStacksPanes(t *testing.T) {
	h := newHarness(t, map[string]*route.Result{"/": homePage("", testStatus("1", "bob", "x"))})
	h.send(tea.WindowSizeMsg{Width: 80, Height: 30})
	if h.m.listWidth != 78 || h.m.detailWidth != 78 {
		t.Fatalf("expected full-width panes, got %d and %d", h.m.listWidth, h.m.detailWidth)
	}
	if h.m.listHeight+h.m.detailHeight != 24 {
		t.Fatalf("unexpected pane heights %d + %d", h.m.listHeight, h.m.detailHeight)
	}
}

