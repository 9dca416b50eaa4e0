package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/voxpage/voxpage/internal/lang"
	"github.com/voxpage/voxpage/internal/pipeline"
)

// User-facing reply texts. Failure texts are deliberately generic: backend
// error detail stays in the operator logs and never reaches the chat.
const (
	msgWelcome = "📸 Send me a photo or PDF, and I'll read it back to you as a voice message!"

	msgSendFile = "Send me a photo or PDF to get started."

	msgUnsupportedType = "I can only read PDFs and images (JPEG, PNG, TIFF, BMP, WebP). Please send one of those."

	msgDownloadFailed = "I couldn't fetch that file. Please try sending it again."

	msgNoText = "I couldn't find any text in that document."

	msgProcessingFailed = "Something went wrong while converting your document. Please try again."

	msgProcessing = "Working on it… this can take a little while for long documents."
)

// helpMessage builds the /help text with the effective upload ceiling.
func helpMessage(sizeLimit int64) string {
	return fmt.Sprintf("Send a PDF or an image (JPEG, PNG, TIFF, BMP, WebP) up to %s. "+
		"I'll extract the text, ask which language to speak it in, and reply "+
		"with a voice message. Commands: /start, /help.", formatMiB(sizeLimit))
}

// fileTooLargeMessage builds the size-rejection text with the effective
// upload ceiling.
func fileTooLargeMessage(sizeLimit int64) string {
	return fmt.Sprintf("That file is too large for me — the limit is %s. Please send a smaller one.", formatMiB(sizeLimit))
}

// formatMiB renders a byte count in MiB, dropping the fraction for whole
// values ("17 MiB", "2.5 MiB").
func formatMiB(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%d MiB", n>>20)
	}
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}

// languagePrompt builds the choose-a-language prompt from the catalogue.
func languagePrompt(catalog lang.Catalog) string {
	var b strings.Builder
	b.WriteString("Which language should I speak?\n")
	for _, s := range catalog {
		fmt.Fprintf(&b, "%s — %s\n", s.Key, s.Label)
	}
	b.WriteString("Reply with the number.")
	return b.String()
}

// invalidSelectionPrompt re-prompts after an unrecognised language reply.
func invalidSelectionPrompt(catalog lang.Catalog) string {
	return "I didn't catch that. " + languagePrompt(catalog)
}

// userMessage translates a pipeline error into the generic user-facing reply.
// The raw error is for operator logs only.
func userMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrNoText):
		return msgNoText
	default:
		return msgProcessingFailed
	}
}
