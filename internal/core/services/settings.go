package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchMode  = "search.mode"
	keySearchLimit = "search.limit"

	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keyOCRLanguages = "ocr.languages"
	keyOCRDPI       = "ocr.dpi"
	keyOCRWorkers   = "ocr.workers"

	keyConvTimeout  = "conversion.timeout"
	keyConvOffice   = "conversion.soffice"
	keyConvImageDPI = "conversion.image_dpi"
	keyConvFont     = "conversion.font"

	keyTrProvider = "translation.provider"
	keyTrTarget   = "translation.target"
	keyTrBaseURL  = "translation.base_url"
	keyTrAPIKey   = "translation.api_key"
	keyTrTimeout  = "translation.timeout"

	keyRedactMode = "redaction.mode"
	keyRedactDPI  = "redaction.dpi"

	keyArchiveProvider     = "archive.provider"
	keyArchiveFolder       = "archive.folder"
	keyArchiveToken        = "archive.token"
	keyArchiveRefreshToken = "archive.refresh_token"
	keyArchiveClientID     = "archive.client_id"
	keyArchiveClientSecret = "archive.client_secret"
	keyArchiveURL          = "archive.url"
	keyArchiveTimeout      = "archive.timeout"

	keyServerAddr        = "server.addr"
	keyServerCORS        = "server.cors_origins"
	keyServerTokens      = "server.tokens"
	keyServerUploadLimit = "server.upload_limit"

	keyInboxDir = "inbox.dir"
)

// valueKind says how Set parses a textual value.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindDuration
	kindList
)

// settingKey describes one settable key.
type settingKey struct {
	kind     valueKind
	validate func(string) error
}

var settingKeys = map[string]settingKey{
	keySearchMode:  {kind: kindString, validate: validSearchMode},
	keySearchLimit: {kind: kindInt},

	keyEmbedProvider: {kind: kindString, validate: validAIProvider},
	keyEmbedModel:    {kind: kindString},
	keyEmbedBaseURL:  {kind: kindString},
	keyEmbedAPIKey:   {kind: kindString},

	keyOCRLanguages: {kind: kindList},
	keyOCRDPI:       {kind: kindInt, validate: minInt(150)},
	keyOCRWorkers:   {kind: kindInt, validate: minInt(1)},

	keyConvTimeout:  {kind: kindDuration},
	keyConvOffice:   {kind: kindString},
	keyConvImageDPI: {kind: kindInt, validate: minInt(1)},
	keyConvFont:     {kind: kindString},

	keyTrProvider: {kind: kindList, validate: validTranslators},
	keyTrTarget:   {kind: kindString},
	keyTrBaseURL:  {kind: kindString},
	keyTrAPIKey:   {kind: kindString},
	keyTrTimeout:  {kind: kindDuration},

	keyRedactMode: {kind: kindString, validate: validRedactionMode},
	keyRedactDPI:  {kind: kindInt, validate: minInt(72)},

	keyArchiveProvider:     {kind: kindString, validate: validArchiveProvider},
	keyArchiveFolder:       {kind: kindString},
	keyArchiveToken:        {kind: kindString},
	keyArchiveRefreshToken: {kind: kindString},
	keyArchiveClientID:     {kind: kindString},
	keyArchiveClientSecret: {kind: kindString},
	keyArchiveURL:          {kind: kindString},
	keyArchiveTimeout:      {kind: kindDuration},

	keyServerAddr:        {kind: kindString},
	keyServerCORS:        {kind: kindList},
	keyServerTokens:      {kind: kindList, validate: validTokens},
	keyServerUploadLimit: {kind: kindInt, validate: minInt(1)},

	keyInboxDir: {kind: kindString},
}

// SettingKeys returns every key Set accepts, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			Mode:  s.getSearchMode(d.Search.Mode),
			Limit: s.getInt(keySearchLimit, d.Search.Limit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		OCR: domain.OCRSettings{
			Languages: s.getList(keyOCRLanguages, d.OCR.Languages),
			DPI:       s.getInt(keyOCRDPI, d.OCR.DPI),
			Workers:   s.getInt(keyOCRWorkers, d.OCR.Workers),
		},
		Conversion: domain.ConversionSettings{
			Timeout:  s.getDuration(keyConvTimeout, d.Conversion.Timeout),
			Office:   s.getString(keyConvOffice, d.Conversion.Office),
			ImageDPI: s.getInt(keyConvImageDPI, d.Conversion.ImageDPI),
			Font:     s.getString(keyConvFont, d.Conversion.Font),
		},
		Translation: domain.TranslationSettings{
			Providers: s.getTranslators(),
			Target:    s.getString(keyTrTarget, d.Translation.Target),
			BaseURL:   s.configStore.GetString(keyTrBaseURL),
			APIKey:    s.configStore.GetString(keyTrAPIKey),
			Timeout:   s.getDuration(keyTrTimeout, d.Translation.Timeout),
		},
		Redaction: domain.RedactionSettings{
			Mode: s.getRedactionMode(d.Redaction.Mode),
			DPI:  s.getInt(keyRedactDPI, d.Redaction.DPI),
		},
		Archive: domain.ArchiveSettings{
			Provider:     s.getArchiveProvider(d.Archive.Provider),
			Folder:       s.configStore.GetString(keyArchiveFolder),
			Token:        s.configStore.GetString(keyArchiveToken),
			RefreshToken: s.configStore.GetString(keyArchiveRefreshToken),
			ClientID:     s.configStore.GetString(keyArchiveClientID),
			ClientSecret: s.configStore.GetString(keyArchiveClientSecret),
			URL:          s.configStore.GetString(keyArchiveURL),
			Timeout:      s.getDuration(keyArchiveTimeout, d.Archive.Timeout),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, d.Server.Addr),
			CORSOrigins: s.getList(keyServerCORS, d.Server.CORSOrigins),
			Tokens:      s.getTokens(),
			UploadLimit: int64(s.getInt(keyServerUploadLimit, int(d.Server.UploadLimit))),
		},
		InboxDir: s.configStore.GetString(keyInboxDir),
	}

	return settings, nil
}

// Set parses and stores one dotted key. Unknown keys and invalid values are
// rejected with domain.ErrInvalidInput.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	spec, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)
	if spec.validate != nil && value != "" {
		if err := spec.validate(value); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
	}

	var stored any
	switch spec.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindDuration:
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		stored = d.String()
	case kindList:
		seps := ","
		if key == keyOCRLanguages {
			seps = ",+"
		}
		stored = splitList(value, seps)
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetSearchMode updates the search mode.
func (s *SettingsService) SetSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", mode)
	}
	if err := s.configStore.Set(keySearchMode, mode.String()); err != nil {
		return fmt.Errorf("save search mode: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Set model - use provided or default
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	baseURL := ""
	if provider.IsLocal() {
		baseURL = settings.Embedding.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
	}

	values := []struct {
		key string
		val string
	}{
		{keyEmbedProvider, provider.String()},
		{keyEmbedModel, model},
		{keyEmbedBaseURL, baseURL},
		{keyEmbedAPIKey, apiKey},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks if current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Search.Mode.RequiresEmbedding() && !settings.Embedding.IsConfigured() {
		return fmt.Errorf(
			"search mode %q requires embedding provider to be configured",
			settings.Search.Mode.Description(),
		)
	}

	for _, p := range settings.Translation.Providers {
		switch p {
		case domain.TranslatorGoogle:
			if settings.Translation.APIKey == "" {
				return fmt.Errorf("translator %s requires translation.api_key", p)
			}
		case domain.TranslatorLibreTranslate:
			if settings.Translation.BaseURL == "" {
				return fmt.Errorf("translator %s requires translation.base_url", p)
			}
		}
	}

	a := settings.Archive
	switch a.Provider {
	case domain.ArchiveGDrive, domain.ArchiveDropbox:
		if a.Token == "" && a.RefreshToken == "" {
			return fmt.Errorf("archive provider %s requires archive.token", a.Provider)
		}
	case domain.ArchiveWebDAV:
		if a.URL == "" {
			return fmt.Errorf("archive provider %s requires archive.url", a.Provider)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := s.configStore.GetString(key)
	if raw == "" {
		if n := s.configStore.GetInt(key); n > 0 {
			return time.Duration(n) * time.Second
		}
		return defaultVal
	}
	d, err := parseDuration(raw)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	mode := domain.SearchMode(s.configStore.GetString(keySearchMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getRedactionMode(defaultVal domain.RedactionMode) domain.RedactionMode {
	mode := domain.RedactionMode(s.configStore.GetString(keyRedactMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getArchiveProvider(defaultVal domain.ArchiveProvider) domain.ArchiveProvider {
	p := domain.ArchiveProvider(s.configStore.GetString(keyArchiveProvider))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

// getTranslators keeps the recognised providers in their configured order.
func (s *SettingsService) getTranslators() []domain.TranslatorKind {
	var out []domain.TranslatorKind
	for _, name := range s.configStore.GetStringSlice(keyTrProvider) {
		if k := domain.TranslatorKind(strings.ToLower(name)); k.IsValid() {
			out = append(out, k)
		}
	}
	return out
}

// getTokens reads "token=role" entries. A bare token grants the editor role.
func (s *SettingsService) getTokens() map[string]domain.Role {
	entries := s.configStore.GetStringSlice(keyServerTokens)
	if len(entries) == 0 {
		return nil
	}
	tokens := make(map[string]domain.Role, len(entries))
	for _, e := range entries {
		token, role, ok := parseTokenEntry(e)
		if ok {
			tokens[token] = role
		}
	}
	return tokens
}

func parseTokenEntry(entry string) (string, domain.Role, bool) {
	token, role, found := strings.Cut(strings.TrimSpace(entry), "=")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", false
	}
	if !found {
		return token, domain.RoleEditor, true
	}
	r := domain.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.IsValid() {
		return "", "", false
	}
	return token, r, true
}

// parseDuration accepts Go durations ("90s", "3m") and bare seconds ("180").
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v, seps string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return strings.ContainsRune(seps, r) }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validators for Set.

func validSearchMode(v string) error {
	if !domain.SearchMode(v).IsValid() {
		return fmt.Errorf("unknown search mode %q", v)
	}
	return nil
}

func validAIProvider(v string) error {
	if !domain.AIProvider(v).IsValid() {
		return fmt.Errorf("unknown provider %q", v)
	}
	return nil
}

func validRedactionMode(v string) error {
	if !domain.RedactionMode(v).IsValid() {
		return fmt.Errorf("unknown redaction mode %q", v)
	}
	return nil
}

func validArchiveProvider(v string) error {
	if !domain.ArchiveProvider(v).IsValid() {
		return fmt.Errorf("unknown archive provider %q", v)
	}
	return nil
}

func validTranslators(v string) error {
	for _, name := range splitList(v, ",") {
		if !domain.TranslatorKind(strings.ToLower(name)).IsValid() {
			return fmt.Errorf("unknown translator %q", name)
		}
	}
	return nil
}

func validTokens(v string) error {
	for _, e := range splitList(v, ",") {
		if _, _, ok := parseTokenEntry(e); !ok {
			return fmt.Errorf("bad token entry %q", e)
		}
	}
	return nil
}

func minInt(lo int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q is not an integer", v)
		}
		if n < lo {
			return fmt.Errorf("must be at least %d", lo)
		}
		return nil
	}
}
