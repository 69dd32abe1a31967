// Package mastodon is a client for the Mastodon REST API (/api/v1 and
// /api/v2/search).
//
// A Client is bound to one instance. Clients without an access token can read
// public statuses, accounts and timelines of that instance; the home instance
// client carries the viewer's token and is used for the home timeline,
// notifications, resolving search and interactions.
//
// IDs are instance-local: the same post has a different ID on every instance
// that knows it. Use the resolve package to map a remote post to its ID on the
// home instance.
//
// Errors for non-2xx responses are *httpx.APIError values; use
// errors.Is(err, httpx.ErrNotFound) to detect missing records.
//
// Timeline methods return the max_id/min_id cursors parsed from the Link
// header so callers can page without inspecting status IDs.
package mastodon
