package route

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Handler fetches the content for a matched path.
type Handler func(ctx context.Context, p Params) (*Result, error)

// Route is one entry of the routing table.
type Route struct {
	Name    string
	Pattern string
	re      *regexp.Regexp
	handler Handler
}

// Params carries the named capture groups of a match along with the
// normalized path and its query.
type Params struct {
	Path   string
	Query  url.Values
	values map[string]string
}

// Get returns a named capture group, or "" when it did not participate.
func (p Params) Get(name string) string {
	return p.values[name]
}

// QueryValue returns the first value of a query parameter.
func (p Params) QueryValue(name string) string {
	if p.Query == nil {
		return ""
	}
	return strings.TrimSpace(p.Query.Get(name))
}

// Target rebuilds the path with its query, e.g. "/search?q=go".
func (p Params) Target() string {
	if len(p.Query) == 0 {
		return p.Path
	}
	return p.Path + "?" + p.Query.Encode()
}

// Router matches paths against an ordered list of patterns. The first match
// wins; anything unmatched goes to the fallback handler.
type Router struct {
	routes   []Route
	fallback Handler
}

// New returns an empty Router using fallback for unmatched paths.
func New(fallback Handler) *Router {
	return &Router{fallback: fallback}
}

// Handle appends a route. Patterns are anchored automatically and may use
// named groups, e.g. `/(?P<instance>[^/]+)/post/(?P<id>\d+)`.
func (r *Router) Handle(name, pattern string, h Handler) error {
	if h == nil {
		return fmt.Errorf("route %s: nil handler", name)
	}
	re, err := regexp.Compile("^" + strings.TrimSuffix(strings.TrimPrefix(pattern, "^"), "$") + "/?$")
	if err != nil {
		return fmt.Errorf("route %s: %w", name, err)
	}
	r.routes = append(r.routes, Route{Name: name, Pattern: pattern, re: re, handler: h})
	return nil
}

// MustHandle is Handle for static tables; it panics on a bad pattern.
func (r *Router) MustHandle(name, pattern string, h Handler) {
	if err := r.Handle(name, pattern, h); err != nil {
		panic(err)
	}
}

// Routes returns the table in match order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Match finds the first route matching target, which may carry a query.
func (r *Router) Match(target string) (Route, Params, bool) {
	params := parseTarget(target)
	for _, rt := range r.routes {
		m := rt.re.FindStringSubmatch(params.Path)
		if m == nil {
			continue
		}
		for i, name := range rt.re.SubexpNames() {
			if name != "" && i < len(m) {
				params.values[name] = m[i]
			}
		}
		return rt, params, true
	}
	return Route{Name: "default"}, params, false
}

// Dispatch runs the handler of the first matching route, or the fallback.
// The returned Result always carries the normalized target and route name.
func (r *Router) Dispatch(ctx context.Context, target string) (*Result, error) {
	rt, params, ok := r.Match(target)
	h := rt.handler
	if !ok {
		h = r.fallback
	}
	if h == nil {
		return nil, fmt.Errorf("no route for %s", params.Path)
	}
	res, err := h(ctx, params)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("route %s returned no result", rt.Name)
	}
	res.Route = rt.Name
	if res.Path == "" {
		res.Path = params.Target()
	}
	return res, nil
}

func parseTarget(target string) Params {
	target = strings.TrimSpace(target)
	p := Params{values: make(map[string]string)}
	u, err := url.Parse(target)
	if err != nil {
		p.Path = normalizePath(target)
		return p
	}
	p.Path = normalizePath(u.Path)
	if q := u.Query(); len(q) > 0 {
		p.Query = q
	}
	return p
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
