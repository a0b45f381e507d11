// Command recipecrawl harvests recipe data from a site's sitemaps into a
// CSV dataset, with reason logs for every page that was skipped or failed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/recipecrawl"
	"github.com/fwojciec/recipecrawl/crawl"
	"github.com/fwojciec/recipecrawl/fs"
	"github.com/fwojciec/recipecrawl/goquery"
	rchttp "github.com/fwojciec/recipecrawl/http"
	"github.com/fwojciec/recipecrawl/rod"
	rcslog "github.com/fwojciec/recipecrawl/slog"
	"github.com/fwojciec/recipecrawl/sqlite"
)

func main() {
	// A first SIGINT/SIGTERM cancels the run cooperatively; in-flight
	// pages finish and partial results are written. A second one kills
	// the process the usual way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Overridable services for end-to-end testing. When nil, Run wires
	// the real implementations.
	Sitemaps recipecrawl.SitemapService
	Fetcher  recipecrawl.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	SitemapURLs []string `arg:"" name:"sitemap-url" required:"" help:"Sitemap URLs to harvest (page URLs are unioned across all of them)"`

	OutDir  string `short:"o" default:"." help:"Output directory for recipes.csv, skipped.txt, and failed.txt"`
	DB      string `help:"Optional SQLite database path; successful records are also persisted there"`
	Browser bool   `help:"Fetch pages with a headless Chrome browser instead of plain HTTP"`

	Concurrency int           `short:"c" default:"3" help:"Concurrent fetch limit"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	DelayMin    time.Duration `default:"1s" help:"Minimum politeness delay before each fetch"`
	DelayMax    time.Duration `default:"3s" help:"Maximum politeness delay before each fetch"`
	RPS         float64       `default:"1" help:"Maximum requests per second per host"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("recipecrawl"),
		kong.Description("Harvest recipe data from a site's sitemaps into a CSV dataset"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}
	if cli.DelayMax < cli.DelayMin {
		return fmt.Errorf("--delay-max must not be less than --delay-min")
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Wire dependencies
	sitemaps := m.Sitemaps
	if sitemaps == nil {
		sitemaps = rchttp.NewSitemapService(nil)
	}

	fetcher := m.Fetcher
	if fetcher == nil {
		if cli.Browser {
			rodFetcher, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = rodFetcher
		} else {
			fetcher = rchttp.NewFetcher(rchttp.WithTimeout(cli.Timeout))
		}
	}
	defer fetcher.Close()

	var recipes recipecrawl.RecipeWriter
	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		recipes = sqlite.NewRecipeService(db)
	}

	harvester := &crawl.Harvester{
		Sitemaps:    rcslog.NewLoggingSitemapService(sitemaps, logger),
		Fetcher:     rcslog.NewLoggingFetcher(fetcher, logger),
		Extractor:   goquery.NewExtractor(),
		Recipes:     recipes,
		Limiter:     crawl.NewHostLimiter(cli.RPS),
		Concurrency: cli.Concurrency,
		DelayMin:    cli.DelayMin,
		DelayMax:    cli.DelayMax,
		Logger:      logger,
	}

	result, runErr := harvester.Run(ctx, cli.SitemapURLs)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if err := fs.NewWriter(cli.OutDir).WriteResult(result); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if runErr != nil {
		fmt.Fprintln(stderr, "harvest interrupted; partial results written")
	}

	success, skipped, failed := result.Counts()
	fmt.Fprintf(stdout, "Successful scrapes: %d\n", success)
	fmt.Fprintf(stdout, "Skipped pages: %d\n", skipped)
	fmt.Fprintf(stdout, "Failed scrapes: %d\n", failed)

	return nil
}
