package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/fediscope/fediscope/internal/app"
	"github.com/fediscope/fediscope/internal/config"
	"github.com/fediscope/fediscope/internal/logging"
	"github.com/fediscope/fediscope/internal/logtail"
	"github.com/fediscope/fediscope/internal/present"
	"github.com/fediscope/fediscope/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type cli struct {
	out io.Writer

	configPath string
	verbose    bool

	cfg    config.Config
	logger io.Closer
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out}
}

func (c *cli) close() {
	if c.logger != nil {
		c.logger.Close()
		c.logger = nil
	}
}

// prepare loads the config and starts file logging. The TUI owns the
// terminal, so interactive runs never mirror the log to stderr.
func (c *cli) prepare(interactive bool) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg

	closer, err := logging.Setup(logging.Options{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Verbose:    c.verbose && !interactive,
	})
	if err != nil {
		return err
	}
	c.logger = closer
	log.Printf("fediscope %s starting (config %s)", version, cfg.Path)
	return nil
}

func (c *cli) newApp() (*app.App, error) {
	if err := c.prepare(false); err != nil {
		return nil, err
	}
	return app.New(c.cfg, nil)
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "fediscope [path|url]",
		Short: "Browse Mastodon, Lemmy and blogs from the terminal",
		Long: `fediscope opens fediverse links in a terminal browser.

Give it a router path such as /@user@host, /host/c/community or
/tags/golang, or paste any Mastodon, Lemmy or blog URL. Without an
argument it opens your home timeline.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.prepare(true); err != nil {
				return err
			}
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			return app.Run(cmd.Context(), app.Options{Config: c.cfg, Start: start})
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ~/.config/fediscope/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "also write the log to stderr")

	root.AddCommand(
		c.openCmd(),
		c.routesCmd(),
		c.serveCmd(),
		c.actionCmd("fav", "Favourite a post (upvote on Lemmy)", app.ActFavourite),
		c.actionCmd("boost", "Boost a post", app.ActReblog),
		c.actionCmd("bookmark", "Bookmark a post", app.ActBookmark),
		c.postCmd(),
		c.browseCmd(),
		c.logsCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) openCmd() *cobra.Command {
	var (
		asJSON     bool
		hideBoosts bool
	)
	cmd := &cobra.Command{
		Use:   "open <path|url>",
		Short: "Fetch a page and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			res, err := a.Dispatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return present.Fprint(c.out, res, present.Options{HideBoosts: hideBoosts}, time.Now())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	cmd.Flags().BoolVar(&hideBoosts, "no-boosts", false, "hide boosts from timelines")
	return cmd
}

func (c *cli) routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the paths fediscope understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, present.RoutesTable(a.Routes()))
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var (
		bind string
		rps  float64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the router as a local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			if bind == "" {
				bind = c.cfg.ServerBind
			}
			fmt.Fprintf(c.out, "listening on %s\n", color.New(color.FgCyan).Sprint("http://"+bind))
			return server.New(a, rps).Start(cmd.Context(), bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (default from config)")
	cmd.Flags().Float64Var(&rps, "rps", 0, "requests per second accepted from clients (0 for the default)")
	return cmd
}

func (c *cli) actionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path|url>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			summary, err := a.Apply(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, color.New(color.FgGreen).Sprint(summary))
			return nil
		},
	}
}

func (c *cli) postCmd() *cobra.Command {
	var draft app.Draft
	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Post a status, or reply with --reply-to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			draft.Text = strings.Join(args, " ")
			link, err := a.Publish(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s %s\n", color.New(color.FgGreen).Sprint("posted"), link)
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.ReplyTo, "reply-to", "", "path or URL of the post to answer")
	cmd.Flags().StringVar(&draft.Visibility, "visibility", "", "public, unlisted, private or direct")
	cmd.Flags().StringVar(&draft.Spoiler, "spoiler", "", "content warning")
	return cmd
}

func (c *cli) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <path|url>",
		Short: "Open a page in the web browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			url, err := a.WebURL(args[0])
			if err != nil {
				return err
			}
			if err := browser.OpenURL(url); err != nil {
				log.Printf("open browser: %v", err)
				fmt.Fprintf(c.out, "Open this link in your browser:\n\n%s\n", color.New(color.FgCyan, color.Bold).Sprint(url))
				return nil
			}
			fmt.Fprintln(c.out, url)
			return nil
		},
	}
}

func (c *cli) logsCmd() *cobra.Command {
	var (
		lines int
		grep  string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out, err := logtail.Read(cfg.LogFile, lines)
			if err != nil {
				return err
			}
			if grep != "" {
				out = logtail.Grep(out, grep)
			}
			if len(out) == 0 {
				fmt.Fprintf(c.out, "no log lines in %s\n", cfg.LogFile)
				return nil
			}
			for _, line := range logtail.ColorizeLines(out) {
				fmt.Fprintln(c.out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines (0 for all)")
	cmd.Flags().StringVar(&grep, "grep", "", "only lines containing this text")
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.out, "fediscope", version)
		},
	}
}
