package textutil

import (
	"path/filepath"
	"strings"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizeToken converts a string to a filesystem-safe token. ASCII letters,
// digits, dots, hyphens, and underscores are kept; everything else becomes an
// underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SiblingPath returns mediaPath with its extension replaced by ext.
func SiblingPath(mediaPath, ext string) string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return base + ext
}

// SessionFileName derives an output file name from a session name.
func SessionFileName(session, ext string) string {
	name := SanitizeFileName(session)
	if name == "" {
		name = "captions"
	}
	return name + ext
}

// Snippet collapses whitespace and truncates to limit runes for log and
// error text.
func Snippet(text string, limit int) string {
	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return "<empty>"
	}
	if runes := []rune(clean); limit > 0 && len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
