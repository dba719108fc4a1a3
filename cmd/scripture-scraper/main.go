package main

import (
	"log/slog"
	"os"
	"scripture-scraper/cmd/scripture-scraper/commands"
	"scripture-scraper/lib/serviceutil"
	"time"

	"github.com/lmittmann/tint"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("SCRIPTURE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	commands.ExecuteContext(serviceutil.SignalContext())
}
