package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igdigest/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igdigest configuration.

Configuration is layered, highest priority first:
  - Environment variables
  - Configuration file (.igdigest.yaml)
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Run:   runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after applying all layers.

Sensitive values are masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

const exampleConfig = `# igdigest configuration file
#
# Secrets (apify.token, gemini.api_key) are better kept out of this file:
# use 'igdigest auth set' or the APIFY_TOKEN / GEMINI_API_KEY environment
# variables.

apify:
  # Hosted actor that scrapes a profile's recent posts
  actor_id: "apify~instagram-post-scraper"
  # Posts fetched per run
  results_limit: 7

gemini:
  model: "gemini-1.5-pro"

storage:
  # "local" keeps everything under data_dir; "cloud" uses Postgres + GCS
  backend: "local"
  data_dir: "./data"
  # bucket: "my-bucket"

server:
  addr: ":8080"

logging:
  level: "info"
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".igdigest.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "configuration file already exists: %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write configuration file:", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s.\n", configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	// Mask secrets before printing.
	display := *cfg
	if display.Apify.Token != "" {
		display.Apify.Token = redact(display.Apify.Token)
	}
	if display.Gemini.APIKey != "" {
		display.Gemini.APIKey = redact(display.Gemini.APIKey)
	}

	out, err := yaml.Marshal(&display)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to render configuration:", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}
