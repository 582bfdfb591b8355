package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"igdigest/pkg/secrets"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored API credentials",
	Long: `Store, inspect, and remove the API credentials the pipeline uses.

Secrets are kept in the system keychain when one is available. In
containerized deployments, set the APIFY_TOKEN and GEMINI_API_KEY
environment variables instead.

Recognized secret names:
  apify_token      token for the hosted scraping actor
  gemini_api_key   API key for the inference backend`,
}

var authSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a credential",
	Example: `  # Prompted for the value
  igdigest auth set apify_token

  # Piped in
  echo "$GEMINI_API_KEY" | igdigest auth set gemini_api_key`,
	Args: cobra.ExactArgs(1),
	Run:  runAuthSet,
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which credentials are stored",
	Run:   runAuthShow,
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored credential",
	Args:  cobra.ExactArgs(1),
	Run:   runAuthDelete,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authDeleteCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) {
	name := args[0]

	fmt.Printf("Value for %s: ", name)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read value:", err)
		os.Exit(1)
	}
	value := strings.TrimSpace(input)
	if value == "" {
		fmt.Fprintln(os.Stderr, "value must not be empty")
		os.Exit(1)
	}

	if err := secrets.DefaultStore().Set(name, value); err != nil {
		if stderrors.Is(err, secrets.ErrReadOnly) {
			fmt.Fprintln(os.Stderr, "no system keychain available; set the matching environment variable instead")
		} else {
			fmt.Fprintln(os.Stderr, "failed to store secret:", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Stored %s.\n", name)
}

func runAuthShow(cmd *cobra.Command, args []string) {
	store := secrets.DefaultStore()
	for _, name := range []string{secrets.KeyApifyToken, secrets.KeyGeminiAPIKey} {
		value, err := store.Get(name)
		switch {
		case err == nil && value != "":
			fmt.Printf("  %-16s %s\n", name, redact(value))
		default:
			fmt.Printf("  %-16s (not set)\n", name)
		}
	}
}

func runAuthDelete(cmd *cobra.Command, args []string) {
	name := args[0]
	if err := secrets.DefaultStore().Delete(name); err != nil {
		if stderrors.Is(err, secrets.ErrNotFound) {
			fmt.Printf("%s was not stored.\n", name)
			return
		}
		fmt.Fprintln(os.Stderr, "failed to delete secret:", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s.\n", name)
}

func redact(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + strings.Repeat("*", 8) + value[len(value)-4:]
}
