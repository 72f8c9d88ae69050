package domain

import (
	"path"
	"strings"
)

const (
	// MaxFilenameBase caps the sanitised basename, extension excluded.
	MaxFilenameBase = 100

	fallbackBase = "document"
)

// SanitizeBase reduces an uploaded filename to a safe basename without its
// extension. Directory components are discarded, every character outside
// [A-Za-z0-9._-] becomes '_', and the result is capped at MaxFilenameBase.
func SanitizeBase(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if ext := path.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if len(out) > MaxFilenameBase {
		out = out[:MaxFilenameBase]
	}
	if out == "" {
		return fallbackBase
	}
	return out
}

// CanonicalFilename is the stored name for an upload: its sanitised basename
// with a .pdf extension. The same upload name always maps to the same file.
func CanonicalFilename(original string) string {
	return SanitizeBase(original) + ".pdf"
}

// FileExt returns the lower-cased extension of name including the dot.
func FileExt(name string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
}
