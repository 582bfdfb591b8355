package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igdigest/pkg/config"
	"igdigest/pkg/logger"
	"igdigest/pkg/secrets"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igdigest",
	Short: "Turn an Instagram creator's recent posts into a newsletter digest",
	Long: `igdigest scrapes a creator's recent Instagram posts through a hosted
actor, downloads the attached media, summarizes each item with a
generative model, and assembles the summaries into one newsletter-style
digest.

Commands:
  serve    run the web front end (form in, digest out)
  scrape   run one digest from the command line
  auth     manage stored API credentials
  config   inspect the effective configuration`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .igdigest.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`igdigest {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig builds the effective config for a command run: file and env
// layers, secret resolution, then validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	store := secrets.DefaultStore()
	cfg.Apify.Token = secrets.Resolve(store, cfg.Apify.Token, secrets.KeyApifyToken)
	cfg.Gemini.APIKey = secrets.Resolve(store, cfg.Gemini.APIKey, secrets.KeyGeminiAPIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger sets up the global logger from the loaded config.
func initLogger(cfg *config.Config) (logger.Logger, error) {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	return logger.GetLogger(), nil
}
