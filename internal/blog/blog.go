// Package blog reads RSS and Atom feeds of blog backends.
package blog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/fediscope/fediscope/internal/httpx"
)

const defaultTimeout = 15 * time.Second

// Entry is one post of a blog feed.
type Entry struct {
	GUID      string    `json:"guid"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Author    string    `json:"author"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"`
}

// Feed is a parsed blog feed.
type Feed struct {
	Title   string  `json:"title"`
	Link    string  `json:"link"`
	FeedURL string  `json:"feed_url"`
	Entries []Entry `json:"entries"`
}

// Reader fetches and parses feeds.
type Reader struct {
	parser *gofeed.Parser
}

// NewReader builds a Reader whose requests time out after timeout.
func NewReader(timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	parser := gofeed.NewParser()
	parser.UserAgent = httpx.UserAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &Reader{parser: parser}
}

// Fetch downloads and parses the feed at feedURL. A missing scheme defaults
// to https.
func (r *Reader) Fetch(ctx context.Context, feedURL string) (*Feed, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url required")
	}
	if !strings.Contains(feedURL, "://") {
		feedURL = "https://" + feedURL
	}
	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return convert(parsed, feedURL), nil
}

// Parse reads a feed document that was already downloaded.
func (r *Reader) Parse(body string, feedURL string) (*Feed, error) {
	parsed, err := r.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return convert(parsed, feedURL), nil
}

func convert(parsed *gofeed.Feed, feedURL string) *Feed {
	now := time.Now()
	out := &Feed{Title: parsed.Title, Link: parsed.Link, FeedURL: feedURL}
	for _, item := range parsed.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		if guid == "" {
			continue
		}
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}
		summary := item.Content
		if summary == "" {
			summary = item.Description
		}
		entry := Entry{
			GUID:      guid,
			Title:     item.Title,
			Link:      item.Link,
			Published: published,
			Summary:   summary,
		}
		if item.Author != nil {
			entry.Author = item.Author.Name
		} else if len(item.Authors) > 0 && item.Authors[0] != nil {
			entry.Author = item.Authors[0].Name
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}
