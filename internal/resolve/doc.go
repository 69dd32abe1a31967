// Package resolve finds Mastodon and Lemmy content that the instance named in
// a path may not serve. Every lookup runs the same chain: fetch from the named
// instance, then the same ID on the viewer's home instance (accepted only when
// the object really comes from the named instance), then a resolving search
// on the home instance followed by a fetch of the local copy. The first step
// that answers wins and its Source is reported; when all fail the error
// matches ErrNotFound and carries every step's failure.
package resolve
