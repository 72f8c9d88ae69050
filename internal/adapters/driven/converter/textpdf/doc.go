// Package textpdf converts text-bearing formats (plain text, Markdown, HTML,
// e-mail and DOCX) into a typeset PDF without any external tools.
//
// It is the fallback when LibreOffice is not installed, and the preferred
// path for e-mail, which LibreOffice does not open. Layout is plain: one text
// column, a bold heading, no images.
package textpdf
