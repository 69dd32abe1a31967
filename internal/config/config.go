package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Account is one home instance and the token used for it.
type Account struct {
	Instance    string
	AccessToken string
}

// Configured reports whether an instance is set.
func (a Account) Configured() bool {
	return a.Instance != ""
}

// Authenticated reports whether an instance and a token are set.
func (a Account) Authenticated() bool {
	return a.Instance != "" && a.AccessToken != ""
}

// Config is the fediscope configuration after defaults and environment
// overrides have been applied.
type Config struct {
	Path string

	Mastodon Account
	Lemmy    Account

	Timeout           time.Duration
	RequestsPerSecond float64

	Theme        string
	PollInterval time.Duration
	Wrap         int

	ServerBind string

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

const (
	defaultConfigPath        = "~/.config/fediscope/config.toml"
	defaultLogFile           = "~/.local/state/fediscope/fediscope.log"
	defaultServerBind        = "127.0.0.1:7788"
	defaultTheme             = "Dracula"
	defaultTimeout           = 10 * time.Second
	defaultRequestsPerSecond = 5
	defaultPollInterval      = 60 * time.Second
	defaultWrap              = 100
	defaultLogMaxSizeMB      = 5
	defaultLogMaxBackups     = 3
)

// Environment variables that override the file.
const (
	EnvMastodonInstance = "FEDISCOPE_MASTODON_INSTANCE"
	EnvMastodonToken    = "FEDISCOPE_MASTODON_TOKEN"
	EnvLemmyInstance    = "FEDISCOPE_LEMMY_INSTANCE"
	EnvLemmyToken       = "FEDISCOPE_LEMMY_TOKEN"
)

type rawAccount struct {
	Instance    string `toml:"instance"`
	AccessToken string `toml:"access_token"`
}

type rawConfig struct {
	Mastodon rawAccount `toml:"mastodon"`
	Lemmy    rawAccount `toml:"lemmy"`
	Client   struct {
		TimeoutSeconds    int     `toml:"timeout_seconds"`
		RequestsPerSecond float64 `toml:"requests_per_second"`
	} `toml:"client"`
	UI struct {
		Theme       string `toml:"theme"`
		PollSeconds int    `toml:"poll_seconds"`
		Wrap        int    `toml:"wrap"`
	} `toml:"ui"`
	Server struct {
		Bind string `toml:"bind"`
	} `toml:"server"`
	Log struct {
		File       string `toml:"file"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups"`
	} `toml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Timeout:           defaultTimeout,
		RequestsPerSecond: defaultRequestsPerSecond,
		Theme:             defaultTheme,
		PollInterval:      defaultPollInterval,
		Wrap:              defaultWrap,
		ServerBind:        defaultServerBind,
		LogFile:           mustExpand(defaultLogFile),
		LogMaxSizeMB:      defaultLogMaxSizeMB,
		LogMaxBackups:     defaultLogMaxBackups,
	}
}

// Load reads the config file at path (or the default location), falling back
// to defaults when it does not exist. A .env file next to the config file is
// read for the FEDISCOPE_* variables; the process environment wins over it.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}

	env, err := readEnvFile(filepath.Join(filepath.Dir(resolved), ".env"))
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(env)
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	c.Mastodon = Account{
		Instance:    strings.TrimSpace(raw.Mastodon.Instance),
		AccessToken: strings.TrimSpace(raw.Mastodon.AccessToken),
	}
	c.Lemmy = Account{
		Instance:    strings.TrimSpace(raw.Lemmy.Instance),
		AccessToken: strings.TrimSpace(raw.Lemmy.AccessToken),
	}

	if raw.Client.TimeoutSeconds < 0 {
		return fmt.Errorf("client.timeout_seconds must not be negative")
	}
	if raw.Client.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(raw.Client.TimeoutSeconds) * time.Second
	}
	if raw.Client.RequestsPerSecond < 0 {
		return fmt.Errorf("client.requests_per_second must not be negative")
	}
	if raw.Client.RequestsPerSecond > 0 {
		c.RequestsPerSecond = raw.Client.RequestsPerSecond
	}

	if theme := strings.TrimSpace(raw.UI.Theme); theme != "" {
		c.Theme = theme
	}
	if raw.UI.PollSeconds < 0 {
		return fmt.Errorf("ui.poll_seconds must not be negative")
	}
	if raw.UI.PollSeconds > 0 {
		c.PollInterval = time.Duration(raw.UI.PollSeconds) * time.Second
	}
	if raw.UI.Wrap > 0 {
		c.Wrap = raw.UI.Wrap
	}

	if bind := strings.TrimSpace(raw.Server.Bind); bind != "" {
		c.ServerBind = bind
	}

	if file := strings.TrimSpace(raw.Log.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("log.file: %w", err)
		}
		c.LogFile = expanded
	}
	if raw.Log.MaxSizeMB > 0 {
		c.LogMaxSizeMB = raw.Log.MaxSizeMB
	}
	if raw.Log.MaxBackups > 0 {
		c.LogMaxBackups = raw.Log.MaxBackups
	}
	return nil
}

func (c *Config) applyEnv(file map[string]string) {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v), true
		}
		v, ok := file[key]
		return strings.TrimSpace(v), ok
	}
	if v, ok := lookup(EnvMastodonInstance); ok && v != "" {
		c.Mastodon.Instance = v
	}
	if v, ok := lookup(EnvMastodonToken); ok && v != "" {
		c.Mastodon.AccessToken = v
	}
	if v, ok := lookup(EnvLemmyInstance); ok && v != "" {
		c.Lemmy.Instance = v
	}
	if v, ok := lookup(EnvLemmyToken); ok && v != "" {
		c.Lemmy.AccessToken = v
	}
}

func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// LogDir returns the directory holding the log file.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.LogFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
