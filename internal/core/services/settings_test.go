package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err  error
	seen *domain.EmbeddingSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.seen = cfg
	return m.err
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Search, settings.Search)
	assert.Equal(t, defaults.OCR, settings.OCR)
	assert.Equal(t, defaults.Conversion, settings.Conversion)
	assert.Equal(t, defaults.Redaction, settings.Redaction)
	assert.Equal(t, domain.ArchiveNone, settings.Archive.Provider)
	assert.Empty(t, settings.Translation.Providers)
	assert.Nil(t, settings.Server.Tokens)
	assert.Equal(t, defaults.Server.Addr, settings.Server.Addr)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("ocr.languages", "eng+deu"))
	require.NoError(t, service.Set("ocr.dpi", "300"))
	require.NoError(t, service.Set("conversion.timeout", "90"))
	require.NoError(t, service.Set("conversion.font", "/fonts/NotoSans.ttf"))
	require.NoError(t, service.Set("translation.timeout", "2m"))
	require.NoError(t, service.Set("translation.provider", "argos, libretranslate"))
	require.NoError(t, service.Set("redaction.mode", "overlay"))
	require.NoError(t, service.Set("archive.provider", "webdav"))
	require.NoError(t, service.Set("server.tokens", "s3cret=viewer, adm1n"))
	require.NoError(t, service.Set(" Inbox.Dir ", "/srv/inbox"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "deu"}, settings.OCR.Languages)
	assert.Equal(t, 300, settings.OCR.DPI)
	assert.Equal(t, 90*time.Second, settings.Conversion.Timeout)
	assert.Equal(t, "/fonts/NotoSans.ttf", settings.Conversion.Font)
	assert.Equal(t, 2*time.Minute, settings.Translation.Timeout)
	assert.Equal(t, []domain.TranslatorKind{domain.TranslatorArgos, domain.TranslatorLibreTranslate},
		settings.Translation.Providers)
	assert.Equal(t, domain.RedactionOverlay, settings.Redaction.Mode)
	assert.Equal(t, domain.ArchiveWebDAV, settings.Archive.Provider)
	assert.Equal(t, map[string]domain.Role{"s3cret": domain.RoleViewer, "adm1n": domain.RoleEditor},
		settings.Server.Tokens)
	assert.Equal(t, "/srv/inbox", settings.InboxDir)
}

func TestSettingsService_SetRejectsBadInput(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	tests := []struct{ key, value string }{
		{"no.such.key", "x"},
		{"search.mode", "llm"},
		{"ocr.dpi", "96"},
		{"ocr.workers", "many"},
		{"conversion.timeout", "soon"},
		{"translation.provider", "argos,deepl"},
		{"redaction.mode", "blur"},
		{"archive.provider", "s3"},
		{"server.tokens", "tok=admin"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_InvalidStoredValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("search.mode", "invalid_mode")
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("redaction.mode", "blur")
	_ = store.Set("conversion.timeout", "later")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Search.Mode, settings.Search.Mode)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Redaction.Mode, settings.Redaction.Mode)
	assert.Equal(t, defaults.Conversion.Timeout, settings.Conversion.Timeout)
}

func TestSettingsService_SetSearchMode(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	require.NoError(t, service.SetSearchMode(domain.SearchModeHybrid))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.SearchModeHybrid, settings.Search.Mode)
	assert.Error(t, service.SetSearchMode("bogus"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)

	assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), "API key required")

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-x"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, "sk-x", settings.Embedding.APIKey)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]string
		wantErr bool
	}{
		{name: "defaults"},
		{name: "hybrid without embedding", set: map[string]string{"search.mode": "hybrid"}, wantErr: true},
		{name: "google without key", set: map[string]string{"translation.provider": "google"}, wantErr: true},
		{name: "libretranslate with url", set: map[string]string{
			"translation.provider": "libretranslate", "translation.base_url": "http://lt:5000"}},
		{name: "webdav without url", set: map[string]string{"archive.provider": "webdav"}, wantErr: true},
		{name: "dropbox with token", set: map[string]string{"archive.provider": "dropbox", "archive.token": "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)
			for k, v := range tt.set {
				require.NoError(t, service.Set(k, v))
			}
			err := service.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).ValidateEmbeddingConfig())

	validator := &mockAIValidator{err: errors.New("unreachable")}
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	service := NewSettingsService(store, validator)

	assert.Error(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.seen)
	assert.Equal(t, domain.AIProviderOllama, validator.seen.Provider)
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Contains(t, keys, "ocr.languages")
	assert.Contains(t, keys, "archive.provider")
	assert.Contains(t, keys, "conversion.font")
	assert.IsIncreasing(t, keys)
}
