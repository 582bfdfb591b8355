package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"igdigest/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the digest web server",
	Long: `Start the web front end. The page serves a single form: submit a
username or profile URL and the whole pipeline runs inside the request,
rendering the digest (or an error) on the same page.`,
	Example: `  # Serve on the configured address (default :8080)
  igdigest serve

  # Serve on a different port
  PORT=3000 igdigest serve`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
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

	p, closeRepo, err := buildPipeline(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to build pipeline")
		os.Exit(1)
	}
	defer closeRepo()

	server := web.NewServer(&cfg.Server, p, log)
	if err := server.Start(); err != nil {
		log.WithError(err).Error("web server stopped")
		os.Exit(1)
	}
}
