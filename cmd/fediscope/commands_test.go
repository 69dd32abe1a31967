package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// execute runs the CLI with a config that keeps the log inside a temp dir.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
	for _, key := range []string{"FEDISCOPE_MASTODON_INSTANCE", "FEDISCOPE_MASTODON_TOKEN", "FEDISCOPE_LEMMY_INSTANCE", "FEDISCOPE_LEMMY_TOKEN"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	logFile := filepath.Join(dir, "fediscope.log")
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "[log]\nfile = \"" + filepath.ToSlash(logFile) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	c := newCLI(&out)
	defer c.close()
	root := c.root()
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), logFile, err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if strings.TrimSpace(out) != "fediscope dev" {
		t.Fatalf("output = %q", out)
	}
}

func TestRoutes(t *testing.T) {
	out, _, err := execute(t, "routes")
	if err != nil {
		t.Fatalf("routes returned error: %v", err)
	}
	for _, want := range []string{"NAME", "PATTERN", "lemmy-community", "account-remote", "blog"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOpen_PrintsBlogFeed(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Notes</title><link>https://b.example</link>
<item><title>First post</title><link>https://b.example/1</link><guid>1</guid><description>Hello</description></item>
</channel></rss>`))
	}))
	t.Cleanup(feed.Close)

	out, logFile, err := execute(t, "open", "/blog?feed="+feed.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	if !strings.Contains(out, "Notes") || !strings.Contains(out, "First post") {
		t.Fatalf("output missing feed:\n%s", out)
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestOpen_JSON(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Notes</title></channel></rss>`))
	}))
	t.Cleanup(feed.Close)

	out, _, err := execute(t, "open", "--json", "/blog?feed="+feed.URL)
	if err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	if !strings.Contains(out, `"kind": "blog"`) {
		t.Fatalf("output is not the JSON result:\n%s", out)
	}
}

func TestOpen_RequiresTarget(t *testing.T) {
	if _, _, err := execute(t, "open"); err == nil {
		t.Fatal("open without a target succeeded")
	}
}

func TestPrepare_WritesLogFile(t *testing.T) {
	// The first run creates the log file through the logger.
	_, logFile, err := execute(t, "routes")
	if err != nil {
		t.Fatalf("routes returned error: %v", err)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "fediscope dev starting") {
		t.Fatalf("log = %q", data)
	}
}

func TestLogs_EmptyFile(t *testing.T) {
	out, _, err := execute(t, "logs", "--grep", "nothing-matches-this")
	if err != nil {
		t.Fatalf("logs returned error: %v", err)
	}
	if !strings.Contains(out, "no log lines") {
		t.Fatalf("output = %q", out)
	}
}
