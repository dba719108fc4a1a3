package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string `json:"base_url"`
	Retry   struct {
		MaxAttempts int `json:"max_attempts"`
	} `json:"retry"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{
		// comments are allowed
		base_url: "https://www.lds.org",
		retry: { max_attempts: 5 },
	}`)
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{
		retry: { max_attempts: 2 },
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://www.lds.org", cfg.BaseUrl)
	require.Equal(t, 2, cfg.Retry.MaxAttempts)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "scraper.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadRecursivelyFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	err := os.MkdirAll(nested, 0777)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "scraper.json5"), `{ base_url: "http://localhost" }`)

	cfg, err := ReadRecursivelyFrom[testConfig](nested, "scraper.json5")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "http://localhost", cfg.BaseUrl)
}
