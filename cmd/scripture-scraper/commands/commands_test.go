package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"scripture-scraper/internal/bibletext"
	"scripture-scraper/internal/config"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func testConfig(t testing.TB) (config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ListDir = dir
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.CachePath = filepath.Join(dir, "cache")
	cfg.DatabasePath = filepath.Join(dir, "scriptures.db")
	cfg.BibleDir = filepath.Join(dir, "bomdata")
	return cfg, dir
}

func TestRunScrapeClosesStoresOnFailure(t *testing.T) {
	cfg, _ := testConfig(t)

	// there is no address list for ot
	err := runScrape(context.Background(), cfg, []config.Collection{config.Collections[0]})
	require.ErrorIs(t, err, os.ErrNotExist)

	// badger keeps a directory lock until it is closed
	cache, err := badger.Open(badger.DefaultOptions(cfg.CachePath).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	cache.Close()
}

func TestRunImportBible(t *testing.T) {
	cfg, _ := testConfig(t)
	err := os.MkdirAll(cfg.BibleDir, 0o755)
	if err != nil {
		t.Fatal(err)
	}
	testament, err := bibletext.LookupTestament("new")
	if err != nil {
		t.Fatal(err)
	}
	for number := testament.First; number <= testament.Last; number++ {
		contents := fmt.Sprintf("1:1 book %d\n", number)
		err = os.WriteFile(filepath.Join(cfg.BibleDir, bibletext.FileName(number)), []byte(contents), 0600)
		if err != nil {
			t.Fatal(err)
		}
	}

	err = runImportBible(context.Background(), cfg, []bibletext.Testament{testament})
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(cfg.OutputDir, "new.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, rows, 28)
	require.Equal(t, []string{"27", "26", "1", "", "66", "1", "", "1", "verse", "book 66"}, rows[27])

	// the old testament files are missing
	old, err := bibletext.LookupTestament("old")
	if err != nil {
		t.Fatal(err)
	}
	err = runImportBible(context.Background(), cfg, []bibletext.Testament{old})
	require.ErrorIs(t, err, os.ErrNotExist)
}
