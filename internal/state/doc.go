// Package state holds the mutable state shared by the TUI, the background
// poller and the local gateway.
//
// Store guards the current page (path and route.Result), the back history,
// next-page cursors keyed by route path, the spoiler and boost toggles, and
// the poller's bookkeeping (since_id, unread count, consecutive failures).
// Everything goes through a sync.RWMutex; Snapshot returns copies of the maps
// and slices so readers never race with writers. The zero Store is ready to
// use.
package state
