package state

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/fediscope/fediscope/internal/route"
)

const maxHistory = 50

// Snapshot is a copy of the shared state for the UI and the gateway.
type Snapshot struct {
	Path    string
	Result  *route.Result
	History []string
	Cursors map[string]string

	ShowSpoilers bool
	ShowBoosts   bool

	Unread     int
	NewestSeen string
	LastPolled time.Time

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the home instance has been unreachable for
// multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the state shared between the UI, the poller and the gateway.
// The zero value is ready to use with boosts shown and spoilers hidden.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	once     sync.Once
}

func (s *Store) lazyInit() {
	s.once.Do(func() {
		s.snapshot.ShowBoosts = true
		s.snapshot.Cursors = make(map[string]string)
	})
}

// Navigate records a successful load of path. The previous path is pushed
// onto the history unless it is the same page, and the result's next-page
// cursor is stored under path.
func (s *Store) Navigate(path string, res *route.Result) {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.snapshot.Path; prev != "" && prev != path {
		s.snapshot.History = append(s.snapshot.History, prev)
		if len(s.snapshot.History) > maxHistory {
			s.snapshot.History = s.snapshot.History[len(s.snapshot.History)-maxHistory:]
		}
	}
	s.snapshot.Path = path
	s.snapshot.Result = res
	if res != nil {
		if res.Next != "" {
			s.snapshot.Cursors[path] = res.Next
		} else {
			delete(s.snapshot.Cursors, path)
		}
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
}

// Fail records a failed load. The current page stays as it was.
func (s *Store) Fail(err error) {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
}

// Back pops the history and returns the previous path.
func (s *Store) Back() (string, bool) {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.snapshot.History)
	if n == 0 {
		return "", false
	}
	prev := s.snapshot.History[n-1]
	s.snapshot.History = s.snapshot.History[:n-1]
	// Navigate(prev) will then not push the page being left.
	s.snapshot.Path = prev
	return prev, true
}

// Cursor returns the next-page path recorded for path.
func (s *Store) Cursor(path string) (string, bool) {
	s.lazyInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	next, ok := s.snapshot.Cursors[path]
	return next, ok
}

// ToggleSpoilers flips spoiler display and returns the new value.
func (s *Store) ToggleSpoilers() bool {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.ShowSpoilers = !s.snapshot.ShowSpoilers
	return s.snapshot.ShowSpoilers
}

// ToggleBoosts flips whether boosts are listed and returns the new value.
func (s *Store) ToggleBoosts() bool {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.ShowBoosts = !s.snapshot.ShowBoosts
	return s.snapshot.ShowBoosts
}

// SinceID returns the newest home status ID seen so far.
func (s *Store) SinceID() string {
	s.lazyInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.NewestSeen
}

// RecordPoll stores the outcome of one poll of the home timeline. On error
// the unread count is kept and the failure is counted.
func (s *Store) RecordPoll(newest string, fresh int, err error) {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastPolled = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.ConsecutiveFailures = 0
	// A poll that started before MarkRead can finish after it; its statuses
	// are then already read.
	if newest != "" && newerID(newest, s.snapshot.NewestSeen) {
		s.snapshot.NewestSeen = newest
		s.snapshot.Unread += fresh
	}
}

// MarkRead clears the unread count after the home timeline was shown.
// newest, when set, becomes the poller's since_id.
func (s *Store) MarkRead(newest string) {
	s.lazyInit()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Unread = 0
	if newest != "" && newerID(newest, s.snapshot.NewestSeen) {
		s.snapshot.NewestSeen = newest
	}
}

// newerID reports whether status ID a sorts after b. Mastodon IDs are
// numeric strings without padding, so a longer ID is newer.
func newerID(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

// Snapshot returns a copy of the current state. The Result header is copied;
// its Data payload is shared and must be treated as read-only.
func (s *Store) Snapshot() Snapshot {
	s.lazyInit()
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.Result != nil {
		res := *s.snapshot.Result
		snap.Result = &res
	}
	if len(s.snapshot.History) > 0 {
		snap.History = append([]string(nil), s.snapshot.History...)
	} else {
		snap.History = nil
	}
	snap.Cursors = maps.Clone(s.snapshot.Cursors)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
