package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "report.docx", want: "report"},
		{in: "Quarterly Report (final).pdf", want: "Quarterly_Report__final"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\x\scan 01.tiff`, want: "scan_01"},
		{in: "тест.png", want: "document"},
		{in: "", want: "document"},
		{in: "archive.tar.gz", want: "archive.tar"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeBase(tt.in))
		})
	}
}

func TestSanitizeBase_LengthCapped(t *testing.T) {
	got := SanitizeBase(strings.Repeat("a", 300) + ".txt")
	assert.Len(t, got, MaxFilenameBase)
}

func TestCanonicalFilename_Deterministic(t *testing.T) {
	assert.Equal(t, "scan.pdf", CanonicalFilename("scan.jpg"))
	assert.Equal(t, CanonicalFilename("a b.doc"), CanonicalFilename("a b.doc"))
}

func TestFileExt(t *testing.T) {
	assert.Equal(t, ".pdf", FileExt("A.PDF"))
	assert.Equal(t, "", FileExt("README"))
}
