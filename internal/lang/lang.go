// Package lang defines the fixed set of languages a user can pick for speech
// synthesis and the matching of free-text replies against that set.
package lang

import "strings"

// Selection maps a user-facing language choice to the locale code and neural
// voice used for synthesis. Selections are immutable and defined at process
// start.
type Selection struct {
	// Key is the reply shortcut offered to the user (e.g., "1").
	Key string

	// Label is the human-readable language name (e.g., "Ukrainian").
	Label string

	// Locale is the BCP-47 locale code embedded in the speech markup
	// (e.g., "uk-UA").
	Locale string

	// Voice is the synthesis voice identifier (e.g., "uk-UA-PolinaNeural").
	Voice string
}

// Catalog is an ordered set of selectable languages.
type Catalog []Selection

// Default returns the built-in catalogue: Ukrainian, Russian, English.
func Default() Catalog {
	return Catalog{
		{Key: "1", Label: "Ukrainian", Locale: "uk-UA", Voice: "uk-UA-PolinaNeural"},
		{Key: "2", Label: "Russian", Locale: "ru-RU", Voice: "ru-RU-SvetlanaNeural"},
		{Key: "3", Label: "English", Locale: "en-US", Voice: "en-US-JennyNeural"},
	}
}

// Match resolves a user reply to a Selection. A reply matches on the key
// ("1"), the label ("ukrainian"), or the locale's language subtag ("uk"),
// all case-insensitively and ignoring surrounding whitespace. The second
// return value reports whether the reply was recognised.
func (c Catalog) Match(reply string) (Selection, bool) {
	reply = strings.ToLower(strings.TrimSpace(reply))
	if reply == "" {
		return Selection{}, false
	}
	for _, s := range c {
		if reply == strings.ToLower(s.Key) ||
			reply == strings.ToLower(s.Label) ||
			reply == subtag(s.Locale) {
			return s, true
		}
	}
	return Selection{}, false
}

// subtag returns the lower-cased language part of a locale code
// ("uk-UA" → "uk").
func subtag(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}
