package textpdf

import (
	"bytes"
	"context"
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestConvert_ProducesPDF(t *testing.T) {
	out, err := New("").Convert(context.Background(), []byte("Hello archive"), "note.txt")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	r, err := lpdf.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
}

func TestConvert_LongTextPaginates(t *testing.T) {
	text := strings.Repeat("a line of text that fills the page\n", 400)
	out, err := New("").Convert(context.Background(), []byte(text), "long.txt")
	require.NoError(t, err)

	r, err := lpdf.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Greater(t, r.NumPage(), 1)
}

func TestConvert_Deterministic(t *testing.T) {
	c := New("")
	a, err := c.Convert(context.Background(), []byte("same"), "x.txt")
	require.NoError(t, err)
	b, err := c.Convert(context.Background(), []byte("same"), "x.txt")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvert_MissingFont(t *testing.T) {
	_, err := New("/nonexistent/font.ttf").Convert(context.Background(), []byte("x"), "x.txt")
	assert.Error(t, err)
}

func TestConvert_NonLatinNeedsUnicodeFont(t *testing.T) {
	for _, text := range []string{"Привет мир hello", "مرحبا بالعالم"} {
		_, err := New("").Convert(context.Background(), []byte(text), "note.txt")
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat, text)
	}

	out, err := New("").Convert(context.Background(), []byte("Café “quoted” – €5"), "note.txt")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestOutsideCP1252(t *testing.T) {
	r, ok := outsideCP1252("line one\nzwei Straße\tПривет")
	assert.True(t, ok)
	assert.Equal(t, 'П', r)

	_, ok = outsideCP1252("naïve façade\r\n")
	assert.False(t, ok)
}
