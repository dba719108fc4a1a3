package commands

import (
	"os"
	"scripture-scraper/internal/config"
	"scripture-scraper/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Prints the known collections and their address lists.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Collection", "Title", "Address list", "Found"})
		for _, c := range config.Collections {
			path := cfg.ListPath(c)
			_, err := os.Stat(path)
			t.AppendRow(table.Row{c.Name, c.Title, path, err == nil})
		}
		t.Render()
	},
}
