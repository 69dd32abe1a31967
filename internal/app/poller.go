package app

import (
	"context"
	"log"
	"time"

	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/state"
)

const (
	defaultPollInterval = 60 * time.Second
	maxBackoff          = 15 * time.Minute
	pollLimit           = 40
)

// HomeTimeline is the part of the Mastodon client the poller needs.
type HomeTimeline interface {
	HomeTimeline(ctx context.Context, q mastodon.PageQuery) (*mastodon.Timeline, error)
}

// StartPoller launches a background goroutine that checks the home timeline
// for new statuses and counts them as unread. Failures are logged and slow
// the cadence down; polling never stops before ctx is done. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, source HomeTimeline, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			poll(ctx, store, source)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// poll runs one check. Without a since_id it only records the newest status
// so the next poll has a baseline.
func poll(ctx context.Context, store *state.Store, source HomeTimeline) {
	since := store.SinceID()
	q := mastodon.PageQuery{SinceID: since, Limit: pollLimit}
	if since == "" {
		q.Limit = 1
	}
	tl, err := source.HomeTimeline(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("home timeline poll failed: %v", err)
		store.RecordPoll("", 0, err)
		return
	}
	newest := ""
	if len(tl.Statuses) > 0 {
		newest = tl.Statuses[0].ID
	}
	fresh := len(tl.Statuses)
	if since == "" {
		fresh = 0
	}
	store.RecordPoll(newest, fresh, nil)
}

// calculateBackoff doubles the interval per consecutive failure up to
// maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
