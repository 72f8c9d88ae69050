package textpdf

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestExtractPlain(t *testing.T) {
	c, err := extract([]byte("line one\r\nline two\n"), "meeting_notes-2024.txt")
	require.NoError(t, err)
	assert.Equal(t, "meeting notes 2024", c.Title)
	assert.Equal(t, "line one\nline two", c.Body)

	_, err = extract([]byte{0xff, 0xfe, 0x00}, "bad.txt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestExtractMarkdown(t *testing.T) {
	src := "# Project Plan\n\nSee the [docs](http://x) and **bold** text.\n\n- first\n- second\n\n```\ncode stays\n```\n"
	c, err := extract([]byte(src), "plan.md")
	require.NoError(t, err)
	assert.Equal(t, "Project Plan", c.Title)
	assert.Contains(t, c.Body, "See the docs and bold text.")
	assert.Contains(t, c.Body, "• first")
	assert.Contains(t, c.Body, "code stays")
	assert.NotContains(t, c.Body, "```")
}

func TestExtractHTML(t *testing.T) {
	src := `<html><head><title>Invoice &amp; Receipt</title><style>p{}</style></head>
<body><script>alert(1)</script><h1>Total</h1><p>Amount:&nbsp;42</p><table><tr><td>a</td><td>b</td></tr></table></body></html>`
	c, err := extract([]byte(src), "page.html")
	require.NoError(t, err)
	assert.Equal(t, "Invoice & Receipt", c.Title)
	assert.Contains(t, c.Body, "Total\n")
	assert.Contains(t, c.Body, "Amount:")
	assert.NotContains(t, c.Body, "alert")
	assert.NotContains(t, c.Body, "p{}")
}

func TestExtractEmail_Multipart(t *testing.T) {
	src := "From: Alice <alice@example.com>\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: =?UTF-8?B?UXVhcnRlcmx5IHJlcG9ydA==?=\r\n" +
		"Content-Type: multipart/alternative; boundary=XYZ\r\n\r\n" +
		"--XYZ\r\nContent-Type: text/html\r\n\r\n<p>html version</p>\r\n" +
		"--XYZ\r\nContent-Type: text/plain\r\n\r\nplain version\r\n" +
		"--XYZ\r\nContent-Type: application/pdf\r\nContent-Disposition: attachment; filename=a.pdf\r\n\r\n%PDF\r\n" +
		"--XYZ--\r\n"
	c, err := extract([]byte(src), "mail.eml")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report", c.Title)
	assert.Contains(t, c.Body, "From: Alice <alice@example.com>")
	assert.Contains(t, c.Body, "plain version")
	assert.NotContains(t, c.Body, "html version")
	assert.NotContains(t, c.Body, "%PDF")
}

func TestExtractEmail_Base64Body(t *testing.T) {
	src := "Subject: hi\r\nContent-Type: text/plain\r\nContent-Transfer-Encoding: base64\r\n\r\naGVsbG8g\r\nd29ybGQ=\r\n"
	c, err := extract([]byte(src), "x.eml")
	require.NoError(t, err)
	assert.Contains(t, c.Body, "hello world")
}

func TestExtractEmail_CorruptBase64Body(t *testing.T) {
	src := "Subject: hi\r\nContent-Type: text/plain\r\nContent-Transfer-Encoding: base64\r\n\r\n!!not base64!!\r\n"
	_, err := extract([]byte(src), "x.eml")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestBase64Reader_PropagatesReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := io.ReadAll(newBase64Reader(iotest.ErrReader(boom)))
	assert.ErrorIs(t, err, boom)
}

func docxBytes(t *testing.T, body, core string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	if core != "" {
		w, err = zw.Create("docProps/core.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(core))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	body := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>world</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p></w:body></w:document>`
	core := `<?xml version="1.0"?><cp:coreProperties xmlns:cp="x" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Contract</dc:title><dc:creator>Jane</dc:creator></cp:coreProperties>`

	c, err := extract(docxBytes(t, body, core), "c.docx")
	require.NoError(t, err)
	assert.Equal(t, "Contract", c.Title)
	assert.Equal(t, "Hello world\nSecond", c.Body)

	_, err = extract([]byte("not a zip"), "c.docx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("a.TXT"))
	assert.True(t, Supports("a.eml"))
	assert.False(t, Supports("a.xlsx"))
	_, err := extract(nil, "a.xlsx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
