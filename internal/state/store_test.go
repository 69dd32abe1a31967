package state

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fediscope/fediscope/internal/route"
)

func TestStore_ZeroValueDefaults(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if !snap.ShowBoosts || snap.ShowSpoilers {
		t.Fatalf("toggles = boosts %v spoilers %v, want boosts shown and spoilers hidden", snap.ShowBoosts, snap.ShowSpoilers)
	}
	if snap.Result != nil || snap.Path != "" {
		t.Fatalf("zero store has page %q %#v", snap.Path, snap.Result)
	}
}

func TestStore_NavigateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Navigate("/", &route.Result{Kind: route.KindTimeline, Title: "Home", Next: "/?max_id=90"})

	snap := s.Snapshot()
	if snap.Path != "/" || snap.Result == nil || snap.Result.Title != "Home" {
		t.Fatalf("snapshot = %#v, want home page", snap)
	}
	if snap.Cursors["/"] != "/?max_id=90" {
		t.Fatalf("cursor = %q, want /?max_id=90", snap.Cursors["/"])
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	snap.Result.Title = "changed"
	snap.Cursors["/"] = "changed"
	again := s.Snapshot()
	if again.Result.Title != "Home" || again.Cursors["/"] != "/?max_id=90" {
		t.Fatalf("Snapshot should clone result header and cursors: %#v", again)
	}
}

func TestStore_NavigateClearsCursorOnLastPage(t *testing.T) {
	var s Store
	s.Navigate("/tags/go", &route.Result{Next: "/tags/go?max_id=1"})
	s.Navigate("/tags/go", &route.Result{})
	if _, ok := s.Cursor("/tags/go"); ok {
		t.Fatalf("cursor should be removed when the page has no next link")
	}
}

func TestStore_HistoryAndBack(t *testing.T) {
	var s Store
	s.Navigate("/", &route.Result{})
	s.Navigate("/a.example/@al/1", &route.Result{})
	s.Navigate("/a.example/@al/1", &route.Result{})
	s.Navigate("/tags/go", &route.Result{})

	snap := s.Snapshot()
	if want := []string{"/", "/a.example/@al/1"}; !reflect.DeepEqual(snap.History, want) {
		t.Fatalf("History = %v, want %v", snap.History, want)
	}

	prev, ok := s.Back()
	if !ok || prev != "/a.example/@al/1" {
		t.Fatalf("Back = %q, %v", prev, ok)
	}
	s.Navigate(prev, &route.Result{})
	if got := s.Snapshot().History; len(got) != 1 || got[0] != "/" {
		t.Fatalf("History after back = %v, want [/]", got)
	}

	if prev, ok := s.Back(); !ok || prev != "/" {
		t.Fatalf("Back = %q, %v; want /", prev, ok)
	}
	if _, ok := s.Back(); ok {
		t.Fatalf("Back on empty history returned ok")
	}
}

func TestStore_HistoryIsBounded(t *testing.T) {
	var s Store
	for i := 0; i < maxHistory+10; i++ {
		s.Navigate("/p/"+strconv.Itoa(i), &route.Result{})
	}
	if got := len(s.Snapshot().History); got != maxHistory {
		t.Fatalf("len(History) = %d, want %d", got, maxHistory)
	}
}

func TestStore_FailKeepsPage(t *testing.T) {
	var s Store
	s.Navigate("/", &route.Result{Title: "Home"})

	origErr := errors.New("boom")
	s.Fail(origErr)

	snap := s.Snapshot()
	if snap.Result.Title != "Home" || snap.Path != "/" {
		t.Fatalf("page changed on failure: %#v", snap)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should wrap the original")
	}

	s.Navigate("/tags/go", &route.Result{})
	if s.Snapshot().LastError != nil {
		t.Fatalf("Navigate should clear LastError")
	}
}

func TestStore_Toggles(t *testing.T) {
	var s Store
	if !s.ToggleSpoilers() {
		t.Fatalf("ToggleSpoilers = false, want true")
	}
	if s.ToggleBoosts() {
		t.Fatalf("ToggleBoosts = true, want false")
	}
	snap := s.Snapshot()
	if !snap.ShowSpoilers || snap.ShowBoosts {
		t.Fatalf("toggles = %v/%v", snap.ShowSpoilers, snap.ShowBoosts)
	}
}

func TestStore_PollBookkeeping(t *testing.T) {
	var s Store
	s.MarkRead("100")
	if s.SinceID() != "100" {
		t.Fatalf("SinceID = %q, want 100", s.SinceID())
	}

	s.RecordPoll("105", 3, nil)
	s.RecordPoll("", 0, nil)
	snap := s.Snapshot()
	if snap.Unread != 3 || snap.NewestSeen != "105" {
		t.Fatalf("after polls unread=%d newest=%q, want 3/105", snap.Unread, snap.NewestSeen)
	}

	s.RecordPoll("", 0, errors.New("offline"))
	if s.Snapshot().IsOffline() {
		t.Fatalf("IsOffline() = true after one failure")
	}
	s.RecordPoll("", 0, errors.New("offline"))
	snap = s.Snapshot()
	if !snap.IsOffline() || snap.ConsecutiveFailures != 2 || snap.Unread != 3 {
		t.Fatalf("after failures = %#v, want offline with unread kept", snap)
	}

	s.RecordPoll("106", 1, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.Unread != 4 {
		t.Fatalf("success should reset failures: %#v", snap)
	}

	s.MarkRead("")
	if snap := s.Snapshot(); snap.Unread != 0 || snap.NewestSeen != "106" {
		t.Fatalf("MarkRead = %d/%q, want 0/106", snap.Unread, snap.NewestSeen)
	}
}

func TestStore_StalePollDoesNotRewindNewest(t *testing.T) {
	var s Store
	s.MarkRead("100")
	// A poll that began with since_id 100 lands after the timeline was
	// reloaded and marked read up to 120.
	s.MarkRead("120")
	s.RecordPoll("110", 2, nil)
	snap := s.Snapshot()
	if snap.NewestSeen != "120" || snap.Unread != 0 {
		t.Fatalf("after stale poll newest=%q unread=%d, want 120/0", snap.NewestSeen, snap.Unread)
	}

	s.MarkRead("99")
	if got := s.SinceID(); got != "120" {
		t.Fatalf("older MarkRead moved SinceID to %q", got)
	}

	s.RecordPoll("1000", 1, nil)
	if snap := s.Snapshot(); snap.NewestSeen != "1000" || snap.Unread != 1 {
		t.Fatalf("longer id should be newer: %q/%d", snap.NewestSeen, snap.Unread)
	}
}

func TestNewerID(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"110", "120", false},
		{"121", "120", true},
		{"1000", "999", true},
		{"99", "100", false},
		{"5", "", true},
		{"120", "120", false},
	}
	for _, tt := range tests {
		if got := newerID(tt.a, tt.b); got != tt.want {
			t.Fatalf("newerID(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Navigate("/", &route.Result{Next: "/?max_id=1"})
				s.RecordPoll("1", 1, nil)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Snapshot()
				_, _ = s.Cursor("/")
			}
		}()
	}
	wg.Wait()
	if got := s.Snapshot().Unread; got != 800 {
		t.Fatalf("Unread = %d, want 800", got)
	}
}
