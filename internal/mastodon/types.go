package mastodon

import "time"

// Account mirrors the Mastodon account entity.
type Account struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Acct           string `json:"acct"`
	DisplayName    string `json:"display_name"`
	URL            string `json:"url"`
	Note           string `json:"note"`
	Avatar         string `json:"avatar"`
	Bot            bool   `json:"bot"`
	Locked         bool   `json:"locked"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	StatusesCount  int    `json:"statuses_count"`
	CreatedAt      string `json:"created_at"`
}

// Name returns the display name, falling back to the username.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// Attachment is a media attachment on a status.
type Attachment struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	RemoteURL   string `json:"remote_url"`
	Description string `json:"description"`
}

// Status mirrors the Mastodon status entity.
type Status struct {
	ID               string       `json:"id"`
	URI              string       `json:"uri"`
	URL              string       `json:"url"`
	CreatedAt        string       `json:"created_at"`
	Account          Account      `json:"account"`
	Content          string       `json:"content"`
	SpoilerText      string       `json:"spoiler_text"`
	Sensitive        bool         `json:"sensitive"`
	Visibility       string       `json:"visibility"`
	InReplyToID      string       `json:"in_reply_to_id"`
	RepliesCount     int          `json:"replies_count"`
	ReblogsCount     int          `json:"reblogs_count"`
	FavouritesCount  int          `json:"favourites_count"`
	Favourited       bool         `json:"favourited"`
	Reblogged        bool         `json:"reblogged"`
	Bookmarked       bool         `json:"bookmarked"`
	Reblog           *Status      `json:"reblog"`
	MediaAttachments []Attachment `json:"media_attachments"`
	Language         string       `json:"language"`
}

// Original returns the boosted status for reblogs and the status itself otherwise.
func (s *Status) Original() *Status {
	if s == nil {
		return nil
	}
	if s.Reblog != nil {
		return s.Reblog
	}
	return s
}

// Link returns the best web link for the status: url, then uri.
func (s Status) Link() string {
	if s.URL != "" {
		return s.URL
	}
	return s.URI
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (s Status) ParsedCreatedAt() time.Time {
	return parseTime(s.CreatedAt)
}

// Context holds the thread around a status.
type Context struct {
	Ancestors   []Status `json:"ancestors"`
	Descendants []Status `json:"descendants"`
}

// Thread is a status with its context, in display order.
type Thread struct {
	Ancestors   []Status `json:"ancestors"`
	Status      Status   `json:"status"`
	Descendants []Status `json:"descendants"`
}

// Tag is a hashtag search result.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SearchResults mirrors /api/v2/search.
type SearchResults struct {
	Accounts []Account `json:"accounts"`
	Statuses []Status  `json:"statuses"`
	Hashtags []Tag     `json:"hashtags"`
}

// Notification mirrors the notification entity.
type Notification struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
	Account   Account `json:"account"`
	Status    *Status `json:"status"`
}

// Page carries the pagination cursors from a Link header.
type Page struct {
	MaxID string `json:"max_id,omitempty"`
	MinID string `json:"min_id,omitempty"`
}

// Timeline is one page of statuses.
type Timeline struct {
	Statuses []Status `json:"statuses"`
	Page     Page     `json:"page"`
}

// AccountPage is an account with one page of its statuses.
type AccountPage struct {
	Account  Account  `json:"account"`
	Statuses []Status `json:"statuses"`
	Page     Page     `json:"page"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
