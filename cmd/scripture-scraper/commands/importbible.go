package commands

import (
	"context"
	"fmt"
	"log/slog"
	"scripture-scraper/internal/bibletext"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/internal/config"
	"scripture-scraper/internal/db"
	"scripture-scraper/internal/export"
	"scripture-scraper/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importBibleCmd)
}

var importBibleCmd = &cobra.Command{
	Use:       "import-bible <old|new|all>",
	Short:     "Converts the plain text bible in bible_dir into verse tables.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"old", "new", "all"},
	Run: func(cmd *cobra.Command, args []string) {
		var targets []bibletext.Testament
		if args[0] == "all" {
			targets = bibletext.Testaments
		} else {
			t, err := bibletext.LookupTestament(args[0])
			if err != nil {
				serviceutil.Fatal("invalid testament", err)
			}
			targets = []bibletext.Testament{t}
		}

		cfg, err := config.Load()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		err = runImportBible(cmd.Context(), cfg, targets)
		if err != nil {
			serviceutil.Fatal("import failed", err)
		}
	},
}

func runImportBible(ctx context.Context, cfg config.Config, targets []bibletext.Testament) error {
	var makeTx db.MakeTx
	if cfg.DatabasePath != "" {
		out, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer out.Close()
		makeTx = db.NewMakeTx(out)
	}

	reader := bibletext.NewReader(cfg.BibleDir, cfg.BibleEncoding, telemetry.SlogAPI{})

	summary := newTable()
	summary.AppendHeader(table.Row{"Testament", "Books", "Chapters", "Verses"})
	for _, t := range targets {
		book, err := reader.ReadTestament(ctx, t)
		if err != nil {
			return fmt.Errorf("read %s: %w", t.Name, err)
		}

		tables := export.Flatten(book)
		paths, err := export.WriteCsv(cfg.OutputDir, tables, cfg.Header())
		if err != nil {
			return err
		}
		slog.Info("wrote tables", "testament", t.Name, "files", paths)

		if makeTx != nil {
			err = export.WriteDatabase(ctx, makeTx, tables)
			if err != nil {
				return fmt.Errorf("write database: %w", err)
			}
		}

		stats := book.Stats()
		summary.AppendRow(table.Row{t.Name, t.Last - t.First + 1, stats.Pages, stats.Verses})
	}
	summary.Render()
	return nil
}
