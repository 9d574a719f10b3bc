// Package locale holds the supported locale allow-list and the English
// catalog for notification message ids.
package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Default is used whenever a requested locale is not supported
const Default = "en-US"

// supported is the allow-list of locale codes, in display order
var supported = []string{"en-US", "de-DE", "fr-FR", "es-ES", "ja-JP", "zh-CN"}

// Supported returns the allow-listed locale codes
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether code is in the allow-list (exact match)
func IsSupported(code string) bool {
	for _, s := range supported {
		if s == code {
			return true
		}
	}
	return false
}

// Resolve returns code when it is supported and Default otherwise
func Resolve(code string) string {
	if IsSupported(code) {
		return code
	}
	return Default
}

// messages maps notification ids to their English text
var messages = map[string]string{
	"organization-created":          "Home organization imported",
	"organization-not-created":      "Home organization could not be imported",
	"projects-not-loaded":           "Projects could not be loaded",
	"untokenized-units-not-loaded":  "Untokenized units could not be loaded",
	"tokens-not-loaded":             "Tokens could not be loaded",
	"unit-was-tokenized":            "Unit was tokenized",
	"unit-not-tokenized":            "Unit could not be tokenized",
	"detok-file-parsed":             "Detokenization file parsed",
	"detok-file-not-parsed":         "Detokenization file could not be parsed",
	"detokanization-successful":     "Detokenization confirmed",
	"detokanization-not-successful": "Detokenization could not be confirmed",
}

var cat = mustCatalog(messages)

func buildCatalog(msgs map[string]string) (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	for id, text := range msgs {
		if err := b.SetString(language.AmericanEnglish, id, text); err != nil {
			return nil, fmt.Errorf("locale: message %q: %w", id, err)
		}
	}
	return b, nil
}

func mustCatalog(msgs map[string]string) catalog.Catalog {
	c, err := buildCatalog(msgs)
	if err != nil {
		panic(err)
	}
	return c
}

// Message returns the display text for a notification id in the given
// locale. Unknown ids are returned unchanged, which is also how literal
// messages built from API error bodies pass through.
func Message(code, id string) string {
	if _, ok := messages[id]; !ok {
		return id
	}
	tag, err := language.Parse(Resolve(code))
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag, message.Catalog(cat))
	return p.Sprintf(id)
}
