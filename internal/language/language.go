package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// English word forms users commonly type instead of a tag.
var words = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
	"turkish":    "tr",
	"vietnamese": "vi",
	"indonesian": "id",
	"thai":       "th",
	"ukrainian":  "uk",
	"greek":      "el",
	"hebrew":     "he",
}

var namer = display.English.Languages()

// Normalize converts a BCP 47 tag, ISO 639 code, or English language word into
// its canonical tag string ("pt-BR", "es", "zh-Hant").
func Normalize(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("language: empty value")
	}
	if code, ok := words[strings.ToLower(trimmed)]; ok {
		trimmed = code
	}
	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("language %q: %w", value, err)
	}
	if tag == language.Und {
		return "", fmt.Errorf("language %q: undetermined", value)
	}
	return tag.String(), nil
}

// DisplayName returns the English name of a language tag, falling back to the
// uppercased input when the tag cannot be parsed or has no name.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	normalized, err := Normalize(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	tag := language.Make(normalized)
	if name := namer.Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}
