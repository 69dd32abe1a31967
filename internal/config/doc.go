// Package config loads the fediscope configuration file.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fediscope/config.toml
//  3. If the file doesn't exist, use defaults
//  4. Empty or zero fields also fall back to defaults
//
// Values are trimmed and tilde paths are expanded.
//
// # TOML Format
//
//	[mastodon]
//	instance = "mastodon.social"
//	access_token = "..."
//
//	[lemmy]
//	instance = "lemmy.world"
//	access_token = "..."
//
//	[client]
//	timeout_seconds = 10
//	requests_per_second = 5
//
//	[ui]
//	theme = "Dracula"
//	poll_seconds = 60
//	wrap = 100
//
//	[server]
//	bind = "127.0.0.1:7788"
//
//	[log]
//	file = "~/.local/state/fediscope/fediscope.log"
//	max_size_mb = 5
//	max_backups = 3
//
// # Environment
//
// FEDISCOPE_MASTODON_INSTANCE, FEDISCOPE_MASTODON_TOKEN,
// FEDISCOPE_LEMMY_INSTANCE and FEDISCOPE_LEMMY_TOKEN override the file. They
// are read from the process environment first and then from a .env file in
// the config directory, so tokens can live outside config.toml.
//
// The configuration is read-only: fediscope never writes it back.
package config
