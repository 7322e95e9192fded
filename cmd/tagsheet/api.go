package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running tagsheet server via HTTP.

These commands require a running server (tagsheet serve).
Use --server to specify a custom server URL.

Examples:
  tagsheet api health                  # Check server health
  tagsheet api extract unit-100.pdf    # Extract on the server
  tagsheet api tagsheet unit-100.pdf   # Download the workbook
  tagsheet api runs list               # Recent extraction runs
  tagsheet api runs get <id>           # A specific run`,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Extraction run history commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Pipeline
	apiCmd.AddCommand((&endpoints.ExtractEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.TagSheetEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	// Runs as subcommand group
	runsCmd.AddCommand((&endpoints.ListRunsEndpoint{}).Command(getServerURL))
	runsCmd.AddCommand((&endpoints.GetRunEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(apiCmd)
}
