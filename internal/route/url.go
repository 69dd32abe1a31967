package route

import (
	"net/url"
	"strings"
)

// FromURL converts user input into a router path. Accepted forms:
//
//	https://mastodon.social/@alice/1099   -> /mastodon.social/@alice/1099
//	https://lemmy.world/post/42           -> /lemmy.world/post/42
//	@alice@mastodon.social                -> /@alice@mastodon.social
//	!golang@lemmy.ml                      -> /lemmy.ml/c/golang
//	#caturday                             -> /tags/caturday
//	/search?q=go                          -> unchanged
//
// Mastodon's ActivityPub form /users/alice/statuses/1099 is rewritten to the
// web form so it hits the status route.
func FromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "/", nil
	}
	switch {
	case strings.HasPrefix(raw, "/"):
		return raw, nil
	case strings.HasPrefix(raw, "#"):
		tag := strings.TrimPrefix(raw, "#")
		if tag == "" {
			return "", Invalidf("empty hashtag")
		}
		return "/tags/" + url.PathEscape(tag), nil
	case strings.HasPrefix(raw, "!"):
		name, host, ok := strings.Cut(strings.TrimPrefix(raw, "!"), "@")
		if !ok || name == "" || host == "" {
			return "", Invalidf("community %q needs the form !name@instance", raw)
		}
		return "/" + host + "/c/" + name, nil
	case strings.HasPrefix(raw, "@"):
		return "/" + raw, nil
	}

	if !strings.Contains(raw, "://") {
		return "/" + raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", Invalidf("parse url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", Invalidf("url %q has no host", raw)
	}
	path := rewriteActivityPubPath(u.EscapedPath())
	out := "/" + strings.ToLower(u.Host) + path
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out, nil
}

// rewriteActivityPubPath maps /users/NAME/statuses/ID to /@NAME/ID and
// /users/NAME to /@NAME.
func rewriteActivityPubPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "users" {
		switch {
		case len(parts) == 2:
			return "/@" + parts[1]
		case len(parts) == 4 && parts[2] == "statuses":
			return "/@" + parts[1] + "/" + parts[3]
		}
	}
	return path
}
