package commands

import (
	"context"
	"fmt"
	"log/slog"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/internal/config"
	"scripture-scraper/internal/db"
	"scripture-scraper/internal/export"
	"scripture-scraper/internal/scrapers/scripture"
	"scripture-scraper/lib/restyutil"
	"scripture-scraper/lib/serviceutil"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var noCache *bool
var dumpHttp *string

func init() {
	noCache = scrapeCmd.Flags().Bool("no-cache", false, "Fetch every page even if a cached copy exists.")
	dumpHttp = scrapeCmd.Flags().String("dump-http", "", "Write every http exchange into this directory (it is emptied first).")
	rootCmd.AddCommand(scrapeCmd)
}

func collectionNames() []string {
	names := make([]string, len(config.Collections))
	for i, c := range config.Collections {
		names[i] = c.Name
	}
	return names
}

var scrapeCmd = &cobra.Command{
	Use:       fmt.Sprintf("scrape <%s|all> [--no-cache]", strings.Join(collectionNames(), "|")),
	Short:     "Scrapes a collection and writes its tables to the output directory.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: append(collectionNames(), "all"),
	Run: func(cmd *cobra.Command, args []string) {
		var targets []config.Collection
		if args[0] == "all" {
			targets = config.Collections
		} else {
			c, err := config.LookupCollection(args[0])
			if err != nil {
				serviceutil.Fatal("invalid collection", err)
			}
			targets = []config.Collection{c}
		}

		cfg, err := config.Load()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		// stores are closed by runScrape before a failure exits the process
		err = runScrape(cmd.Context(), cfg, targets)
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
	},
}

func runScrape(ctx context.Context, cfg config.Config, targets []config.Collection) error {
	var cache *badger.DB
	if cfg.CachePath != "" && !*noCache {
		var err error
		cache, err = badger.Open(badger.DefaultOptions(cfg.CachePath).WithLogger(nil))
		if err != nil {
			return fmt.Errorf("open page cache: %w", err)
		}
		defer cache.Close()
	}

	var makeTx db.MakeTx
	if cfg.DatabasePath != "" {
		out, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer out.Close()
		makeTx = db.NewMakeTx(out)
	}

	var dump restyutil.Output
	if *dumpHttp != "" {
		dir, err := restyutil.NewDirectoryOutput(*dumpHttp)
		if err != nil {
			return fmt.Errorf("prepare http dump directory: %w", err)
		}
		dump = dir
	}

	tel := telemetry.SlogAPI{}
	client, err := scripture.NewClient(scripture.ClientOptions{
		BaseUrl:           cfg.BaseUrl,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.RateLimit(),
		MaxAttempts:       cfg.Retry.MaxAttempts,
		BaseDelay:         cfg.BaseDelay(),
		Cache:             cache,
		CacheLifetime:     cfg.CacheLifetime(),
		Dump:              dump,
	}, tel)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	scraper := scripture.NewScraper(client, scripture.ScraperOptions{
		TableRefColumn: cfg.RefColumn(),
	}, tel)

	summary := newTable()
	summary.AppendHeader(table.Row{
		"Collection", "Pages", "Verses", "Footnotes",
		"Footnote refs", "Footnote styles", "Styles", "Refs", "Seconds",
	})
	for _, c := range targets {
		t1 := time.Now()
		stats, err := scrapeCollection(ctx, scraper, cfg, makeTx, c)
		if err != nil {
			return fmt.Errorf("scrape %s: %w", c.Name, err)
		}
		seconds := time.Since(t1).Seconds()
		slog.Info("scraping time", "collection", c.Name, "seconds", seconds)

		summary.AppendRow(table.Row{
			c.Name, stats.Pages, stats.Verses, stats.Footnotes,
			stats.FootnoteRefs, stats.FootnoteStyles, stats.Styles, stats.Refs,
			fmt.Sprintf("%.1f", seconds),
		})
	}
	summary.Render()
	return nil
}

func scrapeCollection(
	ctx context.Context,
	scraper scripture.Scraper,
	cfg config.Config,
	makeTx db.MakeTx,
	c config.Collection,
) (scripture.Stats, error) {
	addresses, err := scripture.ReadAddressList(cfg.ListPath(c))
	if err != nil {
		return scripture.Stats{}, err
	}
	slog.Info("scraping collection", "collection", c.Name, "pages", len(addresses))

	book, err := scraper.ScrapeBook(ctx, c.Name, addresses)
	if err != nil {
		return scripture.Stats{}, err
	}

	tables := export.Flatten(book)
	paths, err := export.WriteCsv(cfg.OutputDir, tables, cfg.Header())
	if err != nil {
		return scripture.Stats{}, err
	}
	slog.Info("wrote tables", "collection", c.Name, "files", paths)

	if makeTx != nil {
		err = export.WriteDatabase(ctx, makeTx, tables)
		if err != nil {
			return scripture.Stats{}, fmt.Errorf("write database: %w", err)
		}
		slog.Info("wrote database", "collection", c.Name, "path", cfg.DatabasePath)
	}

	return book.Stats(), nil
}
