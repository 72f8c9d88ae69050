package textpdf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// content is the text pulled out of a source file.
type content struct {
	Title string
	Body  string
}

// extractor turns raw bytes into title and body text.
type extractor func(data []byte, filename string) (*content, error)

// extractors by lower-case file extension.
var extractors = map[string]extractor{
	".txt":      extractPlain,
	".text":     extractPlain,
	".log":      extractPlain,
	".csv":      extractPlain,
	".tsv":      extractPlain,
	".json":     extractPlain,
	".xml":      extractPlain,
	".yaml":     extractPlain,
	".yml":      extractPlain,
	".md":       extractMarkdown,
	".markdown": extractMarkdown,
	".html":     extractHTML,
	".htm":      extractHTML,
	".xhtml":    extractHTML,
	".eml":      extractEmail,
	".docx":     extractDOCX,
}

// Supports reports whether filename's extension has an extractor.
func Supports(filename string) bool {
	_, ok := extractors[domain.FileExt(filename)]
	return ok
}

func extract(data []byte, filename string) (*content, error) {
	fn, ok := extractors[domain.FileExt(filename)]
	if !ok {
		return nil, fmt.Errorf("%w: no text extractor for %q", domain.ErrUnsupportedFormat, domain.FileExt(filename))
	}
	return fn(data, filename)
}

func extractPlain(data []byte, filename string) (*content, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrUnsupportedFormat, filename)
	}
	body := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &content{Title: titleFromName(filename), Body: strings.TrimSpace(body)}, nil
}

var (
	mdHeading      = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	mdCodeFence    = regexp.MustCompile("(?m)^```.*$")
	mdImage        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	mdLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdEmphasis     = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	mdBlockquote   = regexp.MustCompile(`(?m)^>\s?`)
	mdRule         = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)
	mdListMarker   = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	mdInlineCode   = regexp.MustCompile("`([^`]+)`")
	blankLineRuns  = regexp.MustCompile(`\n{3,}`)
	horizontalRuns = regexp.MustCompile(`[ \t]+`)
)

// extractMarkdown keeps code block contents and link text, since they are
// searchable content, and drops only the markup.
func extractMarkdown(data []byte, filename string) (*content, error) {
	c, err := extractPlain(data, filename)
	if err != nil {
		return nil, err
	}
	body := c.Body
	if m := mdHeading.FindStringSubmatch(body); m != nil {
		c.Title = strings.TrimSpace(m[1])
	}
	body = mdCodeFence.ReplaceAllString(body, "")
	body = mdImage.ReplaceAllString(body, "$1")
	body = mdLink.ReplaceAllString(body, "$1")
	body = mdHeading.ReplaceAllString(body, "$1")
	body = mdEmphasis.ReplaceAllString(body, "$2")
	body = mdInlineCode.ReplaceAllString(body, "$1")
	body = mdBlockquote.ReplaceAllString(body, "")
	body = mdRule.ReplaceAllString(body, "")
	body = mdListMarker.ReplaceAllString(body, "$1• ")
	body = blankLineRuns.ReplaceAllString(body, "\n\n")
	c.Body = strings.TrimSpace(body)
	return c, nil
}

var (
	htmlTitle      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlDropBlocks = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg|template)[^>]*>.*?</(script|style|noscript|head|svg|template)>`)
	htmlComments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlBlockOpen  = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|header|footer)[^>]*>`)
	htmlBlockClose = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|header|footer)>`)
	htmlBreak      = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	htmlCell       = regexp.MustCompile(`(?i)</t[dh]>`)
	htmlTags       = regexp.MustCompile(`<[^>]+>`)
)

func extractHTML(data []byte, filename string) (*content, error) {
	raw := string(data)
	title := titleFromName(filename)
	if m := htmlTitle.FindStringSubmatch(raw); m != nil {
		if t := strings.TrimSpace(html.UnescapeString(m[1])); t != "" {
			title = t
		}
	}
	return &content{Title: title, Body: htmlToText(raw)}, nil
}

// htmlToText strips markup while keeping block structure as line breaks.
func htmlToText(s string) string {
	s = htmlDropBlocks.ReplaceAllString(s, "")
	s = htmlComments.ReplaceAllString(s, "")
	s = htmlBlockOpen.ReplaceAllString(s, "\n")
	s = htmlBlockClose.ReplaceAllString(s, "\n")
	s = htmlBreak.ReplaceAllString(s, "\n")
	s = htmlCell.ReplaceAllString(s, "\t")
	s = htmlTags.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = horizontalRuns.ReplaceAllString(s, " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func extractEmail(data []byte, filename string) (*content, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing e-mail: %v", domain.ErrUnsupportedFormat, err)
	}

	dec := new(mime.WordDecoder)
	header := func(name string) string {
		v := msg.Header.Get(name)
		if d, err := dec.DecodeHeader(v); err == nil {
			return d
		}
		return v
	}

	title := header("Subject")
	if title == "" {
		title = titleFromName(filename)
	}

	var b strings.Builder
	for _, name := range []string{"From", "To", "Cc", "Date", "Subject"} {
		if v := header(name); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, v)
		}
	}
	b.WriteString("\n")

	body, err := emailBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, err
	}
	b.WriteString(body)
	return &content{Title: title, Body: strings.TrimSpace(b.String())}, nil
}

// emailBody prefers text/plain parts and falls back to stripped HTML.
func emailBody(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartBody(r, params["boundary"])
	}

	raw, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", fmt.Errorf("%w: reading e-mail body: %v", domain.ErrUnsupportedFormat, err)
	}
	if mediaType == "text/html" {
		return htmlToText(string(raw)), nil
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n"), nil
}

func multipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}
	mr := multipart.NewReader(r, boundary)
	var plain, htmlParts []string
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		mediaType, params, perr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if perr != nil {
			mediaType = "text/plain"
		}
		if disp, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition")); disp == "attachment" {
			part.Close()
			continue
		}

		switch {
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested, err := multipartBody(part, params["boundary"]); err == nil && nested != "" {
				plain = append(plain, nested)
			}
		case mediaType == "text/plain" || mediaType == "text/html":
			raw, err := io.ReadAll(part)
			if err != nil {
				break
			}
			if mediaType == "text/html" {
				htmlParts = append(htmlParts, htmlToText(string(raw)))
			} else {
				plain = append(plain, strings.ReplaceAll(string(raw), "\r\n", "\n"))
			}
		}
		part.Close()
	}
	if len(plain) > 0 {
		return strings.Join(plain, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}

// decodeTransfer handles top-level base64 bodies. multipart.Reader already
// decodes quoted-printable parts.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	if strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		return newBase64Reader(r)
	}
	return r
}

type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text []struct {
			Content string `xml:",chardata"`
		} `xml:"t"`
	} `xml:"r"`
}

type docxCore struct {
	Title string `xml:"title"`
}

func extractDOCX(data []byte, filename string) (*content, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx: %v", domain.ErrUnsupportedFormat, err)
	}

	c := &content{Title: titleFromName(filename)}
	found := false
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			var doc docxDocument
			if err := readZipXML(f, &doc); err != nil {
				return nil, fmt.Errorf("%w: parsing docx body: %v", domain.ErrUnsupportedFormat, err)
			}
			var paras []string
			for _, p := range doc.Body.Paragraphs {
				var b strings.Builder
				for _, r := range p.Runs {
					for _, t := range r.Text {
						b.WriteString(t.Content)
					}
				}
				paras = append(paras, b.String())
			}
			c.Body = strings.TrimSpace(strings.Join(paras, "\n"))
			found = true
		case "docProps/core.xml":
			// The core properties carry the author and title; only the
			// title is used, for the heading.
			var core docxCore
			if readZipXML(f, &core) == nil && strings.TrimSpace(core.Title) != "" {
				c.Title = strings.TrimSpace(core.Title)
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: docx has no word/document.xml", domain.ErrUnsupportedFormat)
	}
	return c, nil
}

func readZipXML(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(io.LimitReader(rc, 64<<20)).Decode(v)
}

// titleFromName derives a heading from a file name: "q3_report-final.txt"
// becomes "q3 report final".
func titleFromName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}
