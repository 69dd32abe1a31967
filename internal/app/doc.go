// Package app is the composition root of fediscope.
//
// # Overview
//
// New turns a config.Config into an App: home Mastodon and Lemmy clients
// (when configured), the federated resolver, the blog reader, the shared
// state.Store and the route table. The TUI, the one-shot CLI commands and the
// local gateway all drive the same App.
//
// # Route table
//
// NewRouter installs the routes in match order; the first pattern that
// matches wins and anything else shows the home timeline:
//
//	/                            home timeline (local timeline without a token)
//	/notifications               notifications (token required)
//	/search?q=                   search on the home instance, resolving URLs
//	/tags/{tag}                  hashtag timeline
//	/{instance}/public           federated timeline of instance
//	/{instance}/local            local timeline of instance
//	/{instance}/post/{id}        Lemmy post with comments
//	/{instance}/comment/{id}     Lemmy comment with replies
//	/{instance}/c/{name}[@host]  Lemmy community with posts
//	/{instance}/u/{name}[@host]  Lemmy user
//	/{instance}/@{user}/{id}     Mastodon thread
//	/{instance}/statuses/{id}    Mastodon thread
//	/@{user}@{instance}          Mastodon account
//	/{instance}/@{user}          Mastodon account
//	/@{user}                     account on the home instance
//	/blog?feed=                  RSS or Atom feed
//
// Handlers for posts, comments, accounts, communities and people go through
// the resolve package, so content the named instance refuses to serve is
// looked up through the home instance. Timeline handlers read max_id (or
// page for Lemmy) from the query and put the following page in Result.Next.
//
// # Actions
//
// Apply, Publish and WebURL accept the same paths and URLs as Open. Actions
// always run on the home instance after mapping the target to its local ID.
//
// # Polling
//
// StartPoller checks the home timeline with since_id every poll interval and
// adds new statuses to the unread count in the store. Errors are logged and
// double the delay up to maxBackoff; polling stops only with the context.
package app
