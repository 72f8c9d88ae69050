package libreoffice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// mockRunner is a test double for CommandRunner. It imitates soffice by
// writing output into the --outdir it is given.
type mockRunner struct {
	output []byte
	err    error
	args   []string
	input  []byte
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.RunIn(ctx, "", name, args...)
}

func (m *mockRunner) RunIn(_ context.Context, _, _ string, args ...string) ([]byte, error) {
	m.args = args
	if m.err != nil {
		return nil, m.err
	}
	m.input, _ = os.ReadFile(args[len(args)-1])
	var outDir string
	for i, a := range args {
		if a == "--outdir" {
			outDir = args[i+1]
		}
	}
	if m.output != nil {
		if err := os.MkdirAll(outDir, 0700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(outDir, "input.pdf"), m.output, 0600); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func TestConvert_Success(t *testing.T) {
	runner := &mockRunner{output: []byte("%PDF-1.7 converted")}
	c := NewWithRunner("soffice", runner)

	out, err := c.Convert(context.Background(), []byte("docx bytes"), "Report.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 converted", string(out))
	assert.Equal(t, "docx bytes", string(runner.input))
	assert.Contains(t, runner.args, "--headless")
	assert.Contains(t, runner.args, "pdf")
	assert.Equal(t, ".docx", filepath.Ext(runner.args[len(runner.args)-1]))
}

func TestConvert_RunnerError(t *testing.T) {
	c := NewWithRunner("soffice", &mockRunner{err: errors.New("exit 1")})

	_, err := c.Convert(context.Background(), []byte("x"), "a.xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soffice convert a.xyz")
}

func TestConvert_NoOutput(t *testing.T) {
	c := NewWithRunner("soffice", &mockRunner{})

	_, err := c.Convert(context.Background(), []byte("x"), "a.odt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestConvert_OutputNotPDF(t *testing.T) {
	c := NewWithRunner("soffice", &mockRunner{output: []byte("oops")})

	_, err := c.Convert(context.Background(), []byte("x"), "a.odt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestNew_DefaultBinary(t *testing.T) {
	c := NewWithRunner("", &mockRunner{})
	assert.Equal(t, "soffice", c.binary)
}

func TestCheckAvailable_Missing(t *testing.T) {
	c := New("no-such-soffice-binary")
	assert.ErrorIs(t, c.CheckAvailable(), ErrSofficeNotFound)
}
