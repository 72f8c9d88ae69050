package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Coercion(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("ocr.dpi", "300"))
	require.NoError(t, s.Set("ocr.workers", 2))
	require.NoError(t, s.Set("ocr.languages", "eng, fra"))
	require.NoError(t, s.Set("feature.on", "true"))

	assert.Equal(t, 300, s.GetInt("ocr.dpi"))
	assert.Equal(t, "2", s.GetString("ocr.workers"))
	assert.Equal(t, []string{"eng", "fra"}, s.GetStringSlice("ocr.languages"))
	assert.True(t, s.GetBool("feature.on"))
	assert.Equal(t, []string{"feature.on", "ocr.dpi", "ocr.languages", "ocr.workers"}, s.Keys())
}

func TestConfigStore_Missing(t *testing.T) {
	s := NewConfigStore()
	_, ok := s.Get("nope")
	assert.False(t, ok)
	assert.Empty(t, s.GetString("nope"))
	assert.Zero(t, s.GetInt("nope"))
	assert.Nil(t, s.GetStringSlice("nope"))
	assert.Equal(t, ":memory:", s.Path())
}
