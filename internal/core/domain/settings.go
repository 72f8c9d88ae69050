package domain

import "time"

const unknownDescription = "Unknown"

// SearchMode defines how search combines full-text and semantic retrieval.
type SearchMode string

// Available search modes.
const (
	// SearchModeTextOnly uses only the full-text index.
	SearchModeTextOnly SearchMode = "text_only"

	// SearchModeHybrid re-ranks full-text hits with embedding similarity.
	SearchModeHybrid SearchMode = "hybrid"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeTextOnly, SearchModeHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeHybrid
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeTextOnly:
		return "Text Only (full-text search)"
	case SearchModeHybrid:
		return "Hybrid (full-text + semantic re-ranking)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings configures page rendering and text recognition.
type OCRSettings struct {
	// Languages are Tesseract language codes tried on every page.
	Languages []string

	// DPI is the page render resolution fed to OCR.
	DPI int

	// Workers bounds how many pages are recognised concurrently.
	Workers int
}

// ConversionSettings configures canonicalisation.
type ConversionSettings struct {
	// Timeout bounds a single external conversion.
	Timeout time.Duration

	// Office is the headless office binary used for non-native formats.
	Office string

	// ImageDPI is the resolution assumed when wrapping a raster as a page.
	ImageDPI int

	// Font is a TrueType font used to typeset text documents. Empty limits
	// built-in typesetting to Windows-1252 text.
	Font string
}

// TranslatorKind names a translation backend.
type TranslatorKind string

// Available translation backends.
const (
	TranslatorArgos          TranslatorKind = "argos"
	TranslatorGoogle         TranslatorKind = "google"
	TranslatorLibreTranslate TranslatorKind = "libretranslate"
)

// IsValid returns true if the translator kind is recognised.
func (k TranslatorKind) IsValid() bool {
	switch k {
	case TranslatorArgos, TranslatorGoogle, TranslatorLibreTranslate:
		return true
	default:
		return false
	}
}

// TranslationSettings configures the translator chain.
type TranslationSettings struct {
	// Providers are tried in order; the first success wins. Empty disables translation.
	Providers []TranslatorKind

	// Target is the language every document is translated into.
	Target string

	// BaseURL is the LibreTranslate endpoint.
	BaseURL string

	// APIKey is used by Google Translate and LibreTranslate.
	APIKey string

	// Timeout bounds a single remote translation.
	Timeout time.Duration
}

// RedactionMode selects how page redactions are flattened.
type RedactionMode string

// Available redaction modes.
const (
	// RedactionRasterize replaces every redacted page with a rendered image
	// of itself with the regions painted out, so no text survives under them.
	RedactionRasterize RedactionMode = "rasterize"

	// RedactionOverlay paints opaque boxes into the page content stream.
	RedactionOverlay RedactionMode = "overlay"
)

// IsValid returns true if the redaction mode is recognised.
func (m RedactionMode) IsValid() bool {
	return m == RedactionRasterize || m == RedactionOverlay
}

// RedactionSettings configures the redaction engine.
type RedactionSettings struct {
	Mode RedactionMode
	DPI  int
}

// ArchiveProvider names a best-effort archive backend.
type ArchiveProvider string

// Available archive providers.
const (
	ArchiveNone    ArchiveProvider = "none"
	ArchiveGDrive  ArchiveProvider = "gdrive"
	ArchiveDropbox ArchiveProvider = "dropbox"
	ArchiveWebDAV  ArchiveProvider = "webdav"
)

// IsValid returns true if the archive provider is recognised.
func (p ArchiveProvider) IsValid() bool {
	switch p {
	case ArchiveNone, ArchiveGDrive, ArchiveDropbox, ArchiveWebDAV:
		return true
	default:
		return false
	}
}

// ArchiveSettings configures the archive push.
type ArchiveSettings struct {
	Provider ArchiveProvider

	// Folder is the remote folder (Drive folder ID, Dropbox path prefix).
	Folder string

	// Token is an access token (Dropbox, Drive) or a bearer token (WebDAV).
	Token string

	// RefreshToken, ClientID and ClientSecret let the Drive sink renew
	// expired access tokens. Token alone is used when they are empty.
	RefreshToken string
	ClientID     string
	ClientSecret string

	// URL is the WebDAV collection URL.
	URL string

	// Timeout bounds a single push.
	Timeout time.Duration
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr        string
	CORSOrigins []string

	// Tokens maps an API token to the role it grants. Empty disables auth.
	Tokens map[string]Role

	// UploadLimit is the maximum accepted upload size in bytes.
	UploadLimit int64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Search      SearchSettings
	Embedding   EmbeddingSettings
	OCR         OCRSettings
	Conversion  ConversionSettings
	Translation TranslationSettings
	Redaction   RedactionSettings
	Archive     ArchiveSettings
	Server      ServerSettings

	// InboxDir is watched for files to ingest. Empty disables the watcher.
	InboxDir string
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	Mode  SearchMode
	Limit int
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding, translation and archiving are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Mode:  SearchModeTextOnly,
			Limit: DefaultSearchLimit,
		},
		OCR: OCRSettings{
			Languages: []string{"eng", "ara", "rus", "fra"},
			DPI:       200,
			Workers:   4,
		},
		Conversion: ConversionSettings{
			Timeout:  180 * time.Second,
			Office:   "soffice",
			ImageDPI: 72,
		},
		Translation: TranslationSettings{
			Target:  CanonicalLang,
			Timeout: 30 * time.Second,
		},
		Redaction: RedactionSettings{
			Mode: RedactionRasterize,
			DPI:  150,
		},
		Archive: ArchiveSettings{
			Provider: ArchiveNone,
			Timeout:  60 * time.Second,
		},
		Server: ServerSettings{
			Addr:        "127.0.0.1:8080",
			CORSOrigins: []string{"*"},
			UploadLimit: 100 << 20,
		},
	}
}

// AllSearchModes returns all available search modes.
func AllSearchModes() []SearchMode {
	return []SearchMode{SearchModeTextOnly, SearchModeHybrid}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
