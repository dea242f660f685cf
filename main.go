package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"snapmd/internal/api"
	"snapmd/internal/browser"
	"snapmd/internal/config"
	"snapmd/internal/fetch"
	"snapmd/internal/inline"
	"snapmd/internal/markdown"
	"snapmd/internal/platform"
	"snapmd/internal/progress"
	"snapmd/internal/resolver"
	"snapmd/internal/scraper"
	_ "snapmd/internal/sites/devto"
	_ "snapmd/internal/sites/juejin"
	_ "snapmd/internal/sites/substack"
	_ "snapmd/internal/sites/zhihu"
)

var version = "dev"

var (
	configPath string
	outputDir  string
	cookies    []string
	logLevel   string
	proxyURL   string
	dryRun     bool
	login      bool
	listPages  bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "snapmd [URL]",
		Short:   "Save articles from publishing platforms as Markdown",
		Version: version,
		Long: `snapmd downloads the content behind a page URL and writes it as a
single self-contained Markdown file, images inlined as data URLs.
Single posts are saved directly; question, people and collection pages
are harvested entry by entry.`,
		Example: `  # Save one answer
  snapmd https://www.zhihu.com/question/12345/answer/67890

  # Save a column article with session cookies
  snapmd --cookie "www.zhihu.com=z_c0=...; d_c0=..." https://zhuanlan.zhihu.com/p/424242

  # Harvest a user's posts into a directory
  snapmd -o ./posts https://www.zhihu.com/people/someone/posts

  # Log in first, then harvest a collection with the live session
  snapmd --login https://www.zhihu.com/collection/98765

  # Preview the Markdown without writing a file
  snapmd --dry-run https://dev.to/someone/a-post-slug`,
		Args: func(cmd *cobra.Command, args []string) error {
			if listPages && len(args) == 0 {
				return nil
			}
			if len(args) == 0 {
				cmd.Help()
				os.Exit(0)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to write Markdown files to")
	rootCmd.Flags().StringSliceVar(&cookies, "cookie", nil, `Session cookies as "host=k1=v1; k2=v2" (repeatable)`)
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("SNAPMD_PROXY"), "Proxy URL for the browser, defaults to SNAPMD_PROXY env var")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the Markdown to stdout instead of writing a file")
	rootCmd.Flags().BoolVar(&login, "login", false, "Open a browser window to log in before processing")
	rootCmd.Flags().BoolVar(&listPages, "list", false, "List supported page types and exit")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if listPages {
		for _, h := range scraper.Handlers() {
			fmt.Println(h.Name())
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}

	target, err := parseTarget(args[0])
	if err != nil {
		return err
	}
	handler, ok := scraper.Dispatch(target)
	if !ok {
		return fmt.Errorf("%w: %s (see --list for supported page types)", scraper.ErrUnsupportedPage, target)
	}
	log.Debug().Str("handler", handler.Name()).Str("url", target.String()).Msg("dispatched")

	f := fetch.New(fetch.Options{
		Referers: platform.Referers(),
		Logger:   log.With().Str("component", "fetch").Logger(),
	})
	if err := applyCookies(f, cfg); err != nil {
		return err
	}

	env := &scraper.Env{
		Fetch: f,
		Resolver: resolver.New(resolver.Config{
			Fetch:         f,
			API:           api.New(f, "", log.With().Str("component", "api").Logger()),
			MinContentLen: cfg.MinContentLen,
			Logger:        log.With().Str("component", "resolver").Logger(),
		}),
		Inliner:   inline.New(f, log.With().Str("component", "inline").Logger()),
		Converter: markdown.New(log.With().Str("component", "markdown").Logger()),
		Progress:  progress.New(os.Stderr),
		Config:    cfg,
		Log:       log,
		ProxyURL:  proxyURL,
		DryRun:    dryRun,
	}
	defer env.Close()

	if login {
		if err := interactiveLogin(env, target); err != nil {
			return err
		}
	}

	return handler.Run(cmd.Context(), target, env)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// applyCookies installs cookies from the config file and the --cookie
// flags, flag values last so they win.
func applyCookies(f *fetch.Client, cfg *config.Config) error {
	set := func(host, raw string) error {
		origin := host
		if !strings.Contains(origin, "://") {
			origin = "https://" + origin
		}
		return f.SetCookies(origin, raw)
	}
	for host, raw := range cfg.Cookies {
		if err := set(host, raw); err != nil {
			return err
		}
	}
	for _, c := range cookies {
		parts := strings.SplitN(c, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid --cookie value %q, want host=cookies", c)
		}
		if err := set(parts[0], parts[1]); err != nil {
			return err
		}
	}
	return nil
}

// interactiveLogin opens a headed browser on the target's origin, waits
// for the user to finish logging in, and copies the session into the
// fetch client. The browser stays open for the harvest handlers.
func interactiveLogin(env *scraper.Env, target *url.URL) error {
	b, err := browser.New(browser.Options{ProxyURL: proxyURL, Headed: true})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	env.Browser = b

	page, err := b.NewPage()
	if err != nil {
		return err
	}
	defer page.Close()
	if err := page.Navigate(target.Scheme + "://" + target.Host + "/"); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Log in in the browser window, then press Enter to continue.")
	bufio.NewReader(os.Stdin).ReadString('\n')

	if err := b.ExportCookies(env.Fetch); err != nil {
		return fmt.Errorf("failed to copy session cookies: %w", err)
	}
	return nil
}

func parseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(raw), "http://") && !strings.HasPrefix(strings.ToLower(raw), "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	return u, nil
}
