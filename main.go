package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/briandowns/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/metascrape/internal/meta"
	"github.com/go-scripts/metascrape/internal/server"
	"github.com/go-scripts/metascrape/internal/store"
	"github.com/go-scripts/metascrape/internal/writer"
	"github.com/go-scripts/metascrape/pkg/client"
	"github.com/go-scripts/metascrape/pkg/common"
	"github.com/go-scripts/metascrape/ui"
)

var version = "dev"

// output of the non-interactive commands; replaced in tests
var stdout io.Writer = os.Stdout

// Globals are the flags shared by every command
type Globals struct {
	Config   kong.ConfigFlag  `help:"Path to a JSON configuration file"`
	API      string           `help:"Base URL of the scrape service" default:"http://localhost:8000" env:"METASCRAPE_API"`
	Timeout  time.Duration    `help:"Request timeout, 0 keeps the transport default" default:"0s" env:"METASCRAPE_TIMEOUT"`
	LogLevel string           `help:"Log level" default:"info" enum:"debug,info,warn,error" env:"METASCRAPE_LOG_LEVEL"`
	LogFile  string           `help:"Write logs to this file instead of stderr" type:"path" env:"METASCRAPE_LOG_FILE"`
	Version  kong.VersionFlag `help:"Print version and exit"`
}

// CLI flags structure
type CLI struct {
	Globals

	Browse BrowseCmd `cmd:"" default:"withargs" help:"Interactive UI (default)"`
	Submit SubmitCmd `cmd:"" help:"Submit one URL for scraping"`
	List   ListCmd   `cmd:"" help:"Print everything scraped so far"`
	Serve  ServeCmd  `cmd:"" help:"Run the scrape service locally"`
}

// newLogger builds the logger for a command. fallback is used when --log-file is unset.
func (g *Globals) newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	out, closer := fallback, func() {}
	if g.LogFile != "" {
		f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "metascrape",
	})
	return logger, closer, nil
}

func (g *Globals) newClient(logger *log.Logger) (*client.Client, error) {
	return client.New(g.API,
		client.WithTimeout(g.Timeout),
		client.WithLogger(logger),
		client.WithUserAgent("metascrape/"+version),
	)
}

// BrowseCmd runs the interactive page
type BrowseCmd struct {
	Notice    ui.NoticeMode `help:"How feedback is shown: toast or inline" default:"toast" enum:"toast,inline" env:"METASCRAPE_NOTICE"`
	NoticeTTL time.Duration `help:"How long a toast stays on screen" default:"4s"`
}

func (b *BrowseCmd) Run(g *Globals) error {
	// the TUI owns the terminal; logs only go to --log-file
	logger, closeLog, err := g.newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := g.newClient(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page := ui.NewPage(ctx, c, ui.PageOptions{
		Logger:     logger,
		NoticeMode: b.Notice,
		NoticeTTL:  b.NoticeTTL,
		Endpoint:   c.BaseURL(),
	})

	logger.Info("Starting UI", "api", c.BaseURL())
	p := tea.NewProgram(page, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// SubmitCmd submits a single URL from the command line
type SubmitCmd struct {
	URL string `arg:"" help:"URL to scrape"`
}

func (s *SubmitCmd) Run(g *Globals) error {
	logger, closeLog, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := g.newClient(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " Scraping " + s.URL
	sp.Start()
	status, err := c.Submit(ctx, s.URL)
	sp.Stop()

	switch {
	case errors.Is(err, common.ErrEmptyInput):
		return errors.New("please enter a URL")
	case err != nil:
		logger.Error("Failed to submit URL", "url", s.URL, "error", err)
		return errors.New("failed to submit URL")
	}

	switch status {
	case common.StatusCreated:
		fmt.Fprintln(stdout, "URL submitted and data scraped successfully.")
		items, err := c.List(ctx)
		if err != nil {
			logger.Warn("Failed to fetch scraped data", "error", err)
			return nil
		}
		for _, item := range items {
			if item.URL == s.URL {
				printItems(stdout, []common.ScrapedItem{item})
			}
		}
	case common.StatusAlreadyExists:
		fmt.Fprintln(stdout, "URL already exists.")
	}
	return nil
}

// ListCmd prints the scraped items
type ListCmd struct {
	JSON   bool   `help:"Print JSON instead of a table"`
	Output string `help:"Also write a JSON export to this file" short:"o" type:"path"`
}

func (l *ListCmd) Run(g *Globals) error {
	logger, closeLog, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := g.newClient(logger)
	if err != nil {
		return err
	}

	items, err := c.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch scraped data: %w", err)
	}

	if l.Output != "" {
		if err := writer.WriteItems(l.Output, c.BaseURL(), items); err != nil {
			return err
		}
		logger.Info("Wrote export", "path", l.Output, "count", len(items))
	}

	if l.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if items == nil {
			items = []common.ScrapedItem{}
		}
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(stdout, "No scraped data yet.")
		return nil
	}
	printItems(stdout, items)
	return nil
}

func printItems(w io.Writer, items []common.ScrapedItem) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "DESCRIPTION", "URL")
	for _, item := range items {
		t.Row(strconv.FormatInt(item.ID, 10), item.Title, clip(item.Description, 60), item.URL)
	}
	fmt.Fprintln(w, t.Render())
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ServeCmd runs the reference scrape service
type ServeCmd struct {
	Addr          string        `help:"Listen address" default:":8000" env:"METASCRAPE_ADDR"`
	DB            string        `help:"SQLite database path; in-memory when empty" type:"path" env:"METASCRAPE_DB"`
	Origins       []string      `help:"Allowed CORS origins" default:"*" env:"METASCRAPE_ORIGINS"`
	RenderJS      bool          `help:"Render pages in headless Chrome before extracting" name:"render-js"`
	WaitTime      time.Duration `help:"Extra wait after page load when rendering" default:"0s"`
	ScrapeTimeout time.Duration `help:"Timeout for fetching one page" default:"15s"`
	ScrapeRate    float64       `help:"Outbound scrapes per second, 0 for unlimited" default:"2"`
	ScrapeBurst   int           `help:"Burst size for outbound scrapes" default:"4"`
	UserAgent     string        `help:"User-Agent for outbound scrapes" default:"Mozilla/5.0 (compatible; metascrape/1.0)"`
}

func (s *ServeCmd) Run(g *Globals) error {
	logger, closeLog, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, s.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	var fetcher meta.Fetcher
	if s.RenderJS {
		bf := meta.NewBrowserFetcher(s.ScrapeTimeout, s.WaitTime, s.UserAgent)
		defer bf.Close()
		fetcher = bf
	} else {
		fetcher = meta.NewHTTPFetcher(s.ScrapeTimeout, s.UserAgent)
	}
	scraper := meta.NewScraper(fetcher, meta.NewLimiter(s.ScrapeRate, s.ScrapeBurst), logger)

	mode := "release"
	if g.LogLevel == "debug" {
		mode = "debug"
	}
	srv := server.New(server.Config{
		Addr:           s.Addr,
		AllowedOrigins: s.Origins,
		Mode:           mode,
	}, st, scraper, logger)

	logger.Info("Scrape service configured",
		"addr", s.Addr,
		"db", s.DB,
		"render_js", s.RenderJS,
		"rate", s.ScrapeRate)
	return srv.Run(ctx)
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("metascrape"),
		kong.Description("Submit URLs for metadata scraping and browse the results."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/metascrape/config.json"),
		kong.Vars{"version": version},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		fmt.Printf("Error building CLI: %v\n", err)
		os.Exit(1)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
