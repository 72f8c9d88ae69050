// Package cli provides the archivist command line.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/core/services"
	"github.com/custodia-labs/archivist/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose bool
	logJSON bool
)

// Services injected by main.
var (
	ingestService    driving.IngestService
	documentService  driving.DocumentService
	searchService    driving.SearchService
	redactionService driving.RedactionService
	exportService    driving.ExportService
	settingsService  driving.SettingsService
	derivedFiles     httpapi.DerivedReader
	scheduler        *services.Scheduler
)

// Services groups everything the commands need.
type Services struct {
	Ingest    driving.IngestService
	Documents driving.DocumentService
	Search    driving.SearchService
	Redaction driving.RedactionService
	Export    driving.ExportService
	Settings  driving.SettingsService

	// Derived reads redaction and extraction artifacts back by name.
	Derived httpapi.DerivedReader

	// Scheduler runs periodic maintenance while serving.
	Scheduler *services.Scheduler
}

// ErrServiceNotConfigured is returned by commands whose service was not injected.
var ErrServiceNotConfigured = errors.New("service not configured")

var rootCmd = &cobra.Command{
	Use:   "archivist",
	Short: "Document archive with OCR, translation and redaction",
	Long: `Archivist ingests documents, canonicalises them to PDF, extracts and
translates their text, and keeps a full-text index in sync.

Run 'archivist serve' for the HTTP API, or use the subcommands to work
with the archive from the shell.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	documentService = s.Documents
	searchService = s.Search
	redactionService = s.Redaction
	exportService = s.Export
	settingsService = s.Settings
	derivedFiles = s.Derived
	scheduler = s.Scheduler
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
