package pipeline

import (
	"fmt"
	"strings"

	"github.com/voxpage/voxpage/pkg/provider/speech"
)

// xmlEscaper escapes the XML reserved characters so OCR output containing
// markup characters cannot break or inject into the SSML document.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// buildSSML wraps the normalized text in a speech-markup document tagged with
// the selected locale and voice. The text is escaped as markup content.
func buildSSML(text string, voice speech.Voice) string {
	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		voice.Locale, voice.Name, xmlEscaper.Replace(text),
	)
}
