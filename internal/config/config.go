package config

import (
	"fmt"
	"os"
	"path/filepath"
	"scripture-scraper/lib/configutil"
	"time"
)

const FileName = "scraper.json5"

type Retry struct {
	MaxAttempts int `json:"max_attempts"`
	BaseDelayMs int `json:"base_delay_ms"`
}

type Config struct {
	BaseUrl   string `json:"base_url"`
	ListDir   string `json:"list_dir"`
	OutputDir string `json:"output_dir"`

	// badger directory for fetched pages, empty disables caching
	CachePath string `json:"cache_path"`
	// 0 means cached pages never expire
	CacheTtlHours int `json:"cache_ttl_hours"`
	// sqlite file the tables are also written to, empty disables it
	DatabasePath string `json:"database_path"`

	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// 0 means unlimited
	RequestsPerSecond *float64 `json:"requests_per_second"`
	Retry             Retry    `json:"retry"`

	TableRefColumn *int  `json:"table_ref_column"`
	WriteHeader    *bool `json:"write_header"`

	// directory of bibleNN.txt files read by import-bible
	BibleDir string `json:"bible_dir"`
	// any label the html charset sniffer accepts, like "shift_jis"
	BibleEncoding string `json:"bible_encoding"`
}

const (
	DefaultBaseUrl           = "https://www.lds.org"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimeoutSeconds    = 30
	DefaultRequestsPerSecond = 2
	DefaultMaxAttempts       = 5
	DefaultBaseDelayMs       = 1000
	DefaultTableRefColumn    = 2
	DefaultBibleDir          = "bomdata"
	DefaultBibleEncoding     = "utf-8"
)

// Defaults is the configuration used when no file is found.
func Defaults() Config {
	return Config{}.withDefaults()
}

// withDefaults fills every field left unset.
func (c Config) withDefaults() Config {
	if c.BaseUrl == "" {
		c.BaseUrl = DefaultBaseUrl
	}
	if c.ListDir == "" {
		c.ListDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.RequestsPerSecond == nil {
		rps := float64(DefaultRequestsPerSecond)
		c.RequestsPerSecond = &rps
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.BaseDelayMs <= 0 {
		c.Retry.BaseDelayMs = DefaultBaseDelayMs
	}
	if c.TableRefColumn == nil {
		column := DefaultTableRefColumn
		c.TableRefColumn = &column
	}
	if c.BibleDir == "" {
		c.BibleDir = DefaultBibleDir
	}
	if c.BibleEncoding == "" {
		c.BibleEncoding = DefaultBibleEncoding
	}
	if c.WriteHeader == nil {
		header := true
		c.WriteHeader = &header
	}
	return c
}

// Load reads scraper.json5 (and scraper.local.json5) from the working
// directory or the closest parent that has one.
func Load() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config](FileName)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}
	return cfg.withDefaults(), nil
}

// LoadFrom is Load starting the search at dir.
func LoadFrom(dir string) (Config, error) {
	cfg, err := configutil.ReadRecursivelyFrom[Config](dir, FileName)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) BaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMs) * time.Millisecond
}

func (c Config) CacheLifetime() time.Duration {
	return time.Duration(c.CacheTtlHours) * time.Hour
}

// RateLimit is the requests per second to allow, 0 means unlimited.
func (c Config) RateLimit() float64 {
	if c.RequestsPerSecond == nil {
		return DefaultRequestsPerSecond
	}
	return max(0, *c.RequestsPerSecond)
}

func (c Config) RefColumn() int {
	if c.TableRefColumn == nil {
		return DefaultTableRefColumn
	}
	return *c.TableRefColumn
}

func (c Config) Header() bool {
	return c.WriteHeader == nil || *c.WriteHeader
}

// ListPath is the address list of a collection.
func (c Config) ListPath(collection Collection) string {
	return filepath.Join(c.ListDir, collection.Name+".txt")
}
