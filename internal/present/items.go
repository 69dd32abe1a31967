// Package present turns route results into plain-text items, tables and
// detail views for the terminal.
package present

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fediscope/fediscope/internal/blog"
	"github.com/fediscope/fediscope/internal/content"
	"github.com/fediscope/fediscope/internal/lemmy"
	"github.com/fediscope/fediscope/internal/mastodon"
	"github.com/fediscope/fediscope/internal/route"
)

// Item is one row of a result list.
type Item struct {
	Author  string
	When    time.Time
	Title   string // optional headline (Lemmy posts, blog entries, accounts)
	Body    string // plain text
	Spoiler string
	Stats   string
	Note    string // "boosted by ...", "mention", ...
	Depth   int    // reply nesting in threads
	Focus   bool   // the post the thread was opened for
	Link    string // web URL
	Target  string // router path to open the item, when it has one

	// Status is set for Mastodon statuses so actions can use its state.
	Status *mastodon.Status
}

// Options filter what Items returns.
type Options struct {
	HideBoosts bool
}

// Items flattens res into list rows.
func Items(res *route.Result, opts Options) []Item {
	if res == nil {
		return nil
	}
	switch d := res.Data.(type) {
	case *mastodon.Timeline:
		return statusItems(d.Statuses, opts)
	case *mastodon.Thread:
		return threadItems(d)
	case *mastodon.AccountPage:
		return append([]Item{accountItem(d.Account)}, statusItems(d.Statuses, opts)...)
	case []mastodon.Notification:
		return notificationItems(d)
	case *mastodon.SearchResults:
		return mastodonSearchItems(d)
	case *lemmy.PostList:
		return postItems(d.Posts)
	case *lemmy.PostDetail:
		out := []Item{postItem(d.PostView, true)}
		return append(out, commentItems(d.Comments, 0)...)
	case *lemmy.CommentThread:
		root := commentItem(d.Comment, 0)
		root.Focus = true
		return append([]Item{root}, commentItems(d.Replies, d.Comment.Comment.Depth()+1)...)
	case *lemmy.CommunityDetail:
		return append([]Item{communityItem(d.CommunityView)}, postItems(d.Posts)...)
	case *lemmy.PersonDetail:
		out := []Item{personItem(d.PersonView)}
		out = append(out, postItems(d.Posts)...)
		return append(out, commentItems(d.Comments, -1)...)
	case *lemmy.SearchResults:
		return lemmySearchItems(d)
	case *blog.Feed:
		return blogItems(d)
	}
	return nil
}

func statusItems(statuses []mastodon.Status, opts Options) []Item {
	out := make([]Item, 0, len(statuses))
	for i := range statuses {
		st := &statuses[i]
		if st.Reblog != nil && opts.HideBoosts {
			continue
		}
		out = append(out, statusItem(st))
	}
	return out
}

func statusItem(st *mastodon.Status) Item {
	orig := st.Original()
	it := Item{
		Author:  orig.Account.Name() + " @" + orig.Account.Acct,
		When:    orig.ParsedCreatedAt(),
		Body:    content.PlainText(orig.Content),
		Spoiler: orig.SpoilerText,
		Stats:   fmt.Sprintf("↩ %d  ⟳ %d  ★ %d", orig.RepliesCount, orig.ReblogsCount, orig.FavouritesCount),
		Link:    orig.Link(),
		Target:  ItemTarget(orig),
		Status:  orig,
	}
	if st.Reblog != nil {
		it.Note = "boosted by " + st.Account.Name()
	}
	if n := len(orig.MediaAttachments); n > 0 {
		it.Body = strings.TrimSpace(it.Body + "\n\n" + attachmentsLine(orig.MediaAttachments))
	}
	return it
}

func attachmentsLine(media []mastodon.Attachment) string {
	parts := make([]string, 0, len(media))
	for _, m := range media {
		label := "[" + m.Type + "]"
		if m.Description != "" {
			label += " " + m.Description
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "\n")
}

// threadItems lists ancestors, the focused status and descendants with the
// nesting taken from in_reply_to_id.
func threadItems(t *mastodon.Thread) []Item {
	depth := map[string]int{}
	out := make([]Item, 0, len(t.Ancestors)+1+len(t.Descendants))
	for i := range t.Ancestors {
		it := statusItem(&t.Ancestors[i])
		out = append(out, it)
	}
	focus := statusItem(&t.Status)
	focus.Focus = true
	out = append(out, focus)
	depth[t.Status.ID] = 0
	for i := range t.Descendants {
		st := &t.Descendants[i]
		d := 1
		if parent, ok := depth[st.InReplyToID]; ok {
			d = parent + 1
		}
		depth[st.ID] = d
		it := statusItem(st)
		it.Depth = d
		out = append(out, it)
	}
	return out
}

func accountItem(a mastodon.Account) Item {
	return Item{
		Author: a.Name() + " @" + a.Acct,
		Title:  a.Name(),
		Body:   content.PlainText(a.Note),
		Stats:  fmt.Sprintf("%d posts  %d following  %d followers", a.StatusesCount, a.FollowingCount, a.FollowersCount),
		Link:   a.URL,
		When:   parseTime(a.CreatedAt),
	}
}

func notificationItems(items []mastodon.Notification) []Item {
	out := make([]Item, 0, len(items))
	for _, n := range items {
		var it Item
		if n.Status != nil {
			it = statusItem(n.Status)
		} else {
			it = accountItem(n.Account)
			it.Title = ""
			it.Target = ItemTarget(n.Account)
		}
		it.Note = n.Type + " from " + n.Account.Name()
		if t := parseTime(n.CreatedAt); !t.IsZero() {
			it.When = t
		}
		out = append(out, it)
	}
	return out
}

func mastodonSearchItems(r *mastodon.SearchResults) []Item {
	var out []Item
	for _, a := range r.Accounts {
		it := accountItem(a)
		it.Target = ItemTarget(a)
		out = append(out, it)
	}
	for _, tag := range r.Hashtags {
		out = append(out, Item{Title: "#" + tag.Name, Link: tag.URL, Target: "/tags/" + url.PathEscape(tag.Name)})
	}
	return append(out, statusItems(r.Statuses, Options{})...)
}

func postItems(posts []lemmy.PostView) []Item {
	out := make([]Item, 0, len(posts))
	for _, p := range posts {
		out = append(out, postItem(p, false))
	}
	return out
}

func postItem(p lemmy.PostView, focus bool) Item {
	body := strings.TrimSpace(p.Post.Body)
	if p.Post.URL != "" {
		body = strings.TrimSpace(p.Post.URL + "\n\n" + body)
	}
	return Item{
		Author: p.Creator.Label() + " in !" + p.Community.Name,
		When:   p.Post.ParsedPublished(),
		Title:  p.Post.Name,
		Body:   body,
		Stats:  fmt.Sprintf("▲ %d  💬 %d", p.Counts.Score, p.Counts.Comments),
		Focus:  focus,
		Link:   p.Post.ApID,
		Target: ItemTarget(p),
	}
}

// commentItems lists comments. base < 0 means the comments are unrelated
// (a person's history) and are not indented.
func commentItems(comments []lemmy.CommentView, base int) []Item {
	out := make([]Item, 0, len(comments))
	for _, c := range comments {
		depth := 0
		if base >= 0 {
			depth = c.Comment.Depth()
			if depth < base {
				depth = base
			}
		}
		out = append(out, commentItem(c, depth))
	}
	return out
}

func commentItem(c lemmy.CommentView, depth int) Item {
	body := c.Comment.Content
	switch {
	case c.Comment.Removed:
		body = "[removed]"
	case c.Comment.Deleted:
		body = "[deleted]"
	}
	return Item{
		Author: c.Creator.Label(),
		When:   parseTime(c.Comment.Published),
		Body:   body,
		Stats:  fmt.Sprintf("▲ %d  ↩ %d", c.Counts.Score, c.Counts.ChildCount),
		Depth:  depth,
		Link:   c.Comment.ApID,
		Target: ItemTarget(c),
	}
}

func communityItem(v lemmy.CommunityView) Item {
	return Item{
		Title: "!" + v.Community.Name + " " + v.Community.Title,
		Body:  strings.TrimSpace(v.Community.Description),
		Stats: fmt.Sprintf("%d subscribers  %d posts  %d comments", v.Counts.Subscribers, v.Counts.Posts, v.Counts.Comments),
		Link:  v.Community.ActorID,
	}
}

func personItem(v lemmy.PersonView) Item {
	return Item{
		Author: v.Person.Label(),
		Title:  v.Person.Label(),
		Body:   strings.TrimSpace(v.Person.Bio),
		When:   parseTime(v.Person.Published),
		Stats:  fmt.Sprintf("%d posts  %d comments", v.Counts.PostCount, v.Counts.CommentCount),
		Link:   v.Person.ActorID,
	}
}

func lemmySearchItems(r *lemmy.SearchResults) []Item {
	var out []Item
	for _, c := range r.Communities {
		it := communityItem(c)
		if host := hostOf(c.Community.ActorID); host != "" {
			it.Target = "/" + host + "/c/" + c.Community.Name
		}
		out = append(out, it)
	}
	for _, u := range r.Users {
		it := personItem(u)
		if host := hostOf(u.Person.ActorID); host != "" {
			it.Target = "/" + host + "/u/" + u.Person.Name
		}
		out = append(out, it)
	}
	out = append(out, postItems(r.Posts)...)
	return append(out, commentItems(r.Comments, -1)...)
}

func blogItems(f *blog.Feed) []Item {
	out := make([]Item, 0, len(f.Entries))
	for _, e := range f.Entries {
		out = append(out, Item{
			Author: e.Author,
			When:   e.Published,
			Title:  e.Title,
			Body:   content.PlainText(e.Summary),
			Link:   e.Link,
		})
	}
	return out
}

// ItemTarget returns the router path that opens item: a status, a Lemmy post
// or comment, or an account. It returns "" when the item has no page.
func ItemTarget(item any) string {
	switch v := item.(type) {
	case mastodon.Status:
		return statusTarget(v.Original())
	case *mastodon.Status:
		return statusTarget(v.Original())
	case mastodon.Account:
		return "/@" + accountHandle(v)
	case lemmy.PostView:
		return apTarget(v.Post.ApID, "post")
	case lemmy.CommentView:
		return apTarget(v.Comment.ApID, "comment")
	}
	return ""
}

func statusTarget(st *mastodon.Status) string {
	if st == nil {
		return ""
	}
	for _, link := range []string{st.URL, st.URI} {
		if link == "" {
			continue
		}
		if path, err := route.FromURL(link); err == nil {
			return path
		}
	}
	return ""
}

func accountHandle(acct mastodon.Account) string {
	if strings.Contains(acct.Acct, "@") {
		return acct.Acct
	}
	if host := hostOf(acct.URL); host != "" {
		return acct.Acct + "@" + host
	}
	return acct.Acct
}

// apTarget maps a Lemmy ActivityPub ID like https://lemmy.ml/post/123 to the
// router path on its origin instance.
func apTarget(apID, kind string) string {
	u, err := url.Parse(apID)
	if err != nil || u.Host == "" {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != kind {
		return ""
	}
	if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
		return ""
	}
	return "/" + strings.ToLower(u.Host) + "/" + kind + "/" + parts[1]
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func parseTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
