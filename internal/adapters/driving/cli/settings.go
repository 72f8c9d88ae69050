package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure search, OCR, translation, archiving and server
settings.

Use 'settings set' for individual keys, or the mode and embedding
subcommands for guided setup.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Stores one dotted key, e.g.

  archivist settings set ocr.languages eng+deu
  archivist settings set translation.provider argos,libretranslate
  archivist settings set server.tokens secret1=editor,secret2=viewer

Run 'archivist settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.SettingKeys() {
			cmd.Println(k)
		}
	},
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Set search mode",
	Long: `Set the search mode to control how searches are performed.

Available modes:
  text_only - Full-text search only (no setup required)
  hybrid    - Full-text hits re-ranked semantically (requires embedding provider)`,
	RunE: runSettingsMode,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider for semantic search.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Mode: %s\n", settings.Search.Mode.Description())
	cmd.Printf("  Limit: %d\n", settings.Search.Limit)
	cmd.Println()

	cmd.Println("[Embedding]")
	if settings.Embedding.Provider.IsValid() {
		cmd.Printf("  Provider: %s\n", settings.Embedding.Provider)
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
		if settings.Embedding.Provider.IsLocal() {
			cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
		}
		if settings.Embedding.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", secretLabel(settings.Embedding.APIKey))
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[OCR]")
	cmd.Printf("  Languages: %s\n", strings.Join(settings.OCR.Languages, "+"))
	cmd.Printf("  DPI: %d\n", settings.OCR.DPI)
	cmd.Printf("  Workers: %d\n", settings.OCR.Workers)
	cmd.Println()

	cmd.Println("[Conversion]")
	cmd.Printf("  Office binary: %s\n", settings.Conversion.Office)
	cmd.Printf("  Timeout: %s\n", settings.Conversion.Timeout)
	cmd.Printf("  Font: %s\n", valueOr(settings.Conversion.Font, "(built-in, Latin only)"))
	cmd.Println()

	cmd.Println("[Translation]")
	if len(settings.Translation.Providers) == 0 {
		cmd.Println("  Providers: (disabled)")
	} else {
		names := make([]string, len(settings.Translation.Providers))
		for i, p := range settings.Translation.Providers {
			names[i] = string(p)
		}
		cmd.Printf("  Providers: %s\n", strings.Join(names, " -> "))
		cmd.Printf("  Target: %s\n", settings.Translation.Target)
		if settings.Translation.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.Translation.BaseURL)
		}
		if settings.Translation.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Translation.APIKey))
		}
	}
	cmd.Println()

	cmd.Println("[Redaction]")
	cmd.Printf("  Mode: %s\n", settings.Redaction.Mode)
	cmd.Printf("  DPI: %d\n", settings.Redaction.DPI)
	cmd.Println()

	cmd.Println("[Archive]")
	cmd.Printf("  Provider: %s\n", settings.Archive.Provider)
	if settings.Archive.Provider != domain.ArchiveNone {
		if settings.Archive.Folder != "" {
			cmd.Printf("  Folder: %s\n", settings.Archive.Folder)
		}
		if settings.Archive.URL != "" {
			cmd.Printf("  URL: %s\n", settings.Archive.URL)
		}
		cmd.Printf("  Token: %s\n", secretLabel(settings.Archive.Token))
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  CORS origins: %s\n", strings.Join(settings.Server.CORSOrigins, ", "))
	cmd.Printf("  Upload limit: %d bytes\n", settings.Server.UploadLimit)
	if len(settings.Server.Tokens) == 0 {
		cmd.Println("  Auth: disabled")
	} else {
		cmd.Printf("  Auth: %s\n", tokenSummary(settings.Server.Tokens))
	}
	if settings.InboxDir != "" {
		cmd.Printf("  Inbox: %s\n", settings.InboxDir)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'archivist settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s.\n", strings.ToLower(args[0]))
	return nil
}

func runSettingsMode(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Search Mode")
	cmd.Println("------------------")
	modes := domain.AllSearchModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selectedMode := modes[idx-1]
	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}

	cmd.Printf("Search mode set to: %s\n", selectedMode.Description())

	if selectedMode.RequiresEmbedding() {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && !settings.Embedding.IsConfigured() {
			cmd.Println("\nNote: This mode requires an embedding provider.")
			cmd.Println("Run 'archivist settings embedding' to configure.")
		}
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider, model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal, otherwise from reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func secretLabel(s string) string {
	if s == "" {
		return "(not set)"
	}
	return maskAPIKey(s)
}

// tokenSummary counts tokens per role without printing them.
func tokenSummary(tokens map[string]domain.Role) string {
	counts := make(map[domain.Role]int)
	for _, role := range tokens {
		counts[role]++
	}
	roles := make([]string, 0, len(counts))
	for role, n := range counts {
		roles = append(roles, fmt.Sprintf("%d %s", n, role))
	}
	sort.Strings(roles)
	return strings.Join(roles, ", ")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
