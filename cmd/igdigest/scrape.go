package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <username-or-url>",
	Short: "Run one digest from the command line",
	Long: `Run the full pipeline once for a creator and print the digest to
stdout. Useful for cron jobs and for testing credentials without the
web front end.`,
	Example: `  # By username
  igdigest scrape someuser

  # By profile URL
  igdigest scrape https://instagram.com/someuser/`,
	Args: cobra.ExactArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	p, closeRepo, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to build pipeline")
		os.Exit(1)
	}
	defer closeRepo()

	text, err := p.Run(ctx, args[0])
	if err != nil {
		log.WithError(err).Error("digest run failed")
		fmt.Fprintln(os.Stderr, "digest run failed:", err)
		os.Exit(1)
	}

	if text == "" {
		fmt.Fprintln(os.Stderr, "no media found for this profile; nothing to digest")
		return
	}
	fmt.Println(text)
}
