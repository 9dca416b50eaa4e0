// Package textnorm converts raw line-oriented OCR output into prose suitable
// for speech synthesis.
//
// OCR services report text line by line, wrapped for the physical page layout
// rather than for prosody. Feeding that text unmodified into a synthesizer
// degrades phrasing: mid-paragraph line wraps become hard breaks, words split
// across lines keep their hyphens, and paragraphs without terminal punctuation
// lose their pause. Normalize undoes the page layout while preserving
// paragraph structure.
//
// Normalize is a pure function: deterministic, no I/O, and idempotent on its
// own output.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// terminalPunctuation is the set of runes that already force a synthesizer
// pause at the end of a paragraph.
const terminalPunctuation = ".!?…:;"

var (
	lineEndings = regexp.MustCompile(`\r\n?`)
	// The captured rune keeps the match anchored to a lone line wrap: a
	// hyphen at a paragraph boundary is not a split word.
	hyphenBreak  = regexp.MustCompile(`-[ \t]*\n[ \t]*(\S)`)
	newlineRuns  = regexp.MustCompile(`\n+`)
	excessBreaks = regexp.MustCompile(`\n{3,}`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
)

// Normalize rewrites raw OCR text for speech synthesis. Steps are applied in
// order; each depends on the previous step's output:
//
//  1. Normalize CRLF and CR line endings to a single LF.
//  2. Delete a trailing hyphen followed by a single line break, rejoining
//     words that were split across a line wrap. A hyphen before a blank
//     line sits at a paragraph boundary and is left alone.
//  3. Collapse a lone line break (a mid-paragraph wrap) into a space.
//  4. Collapse runs of three or more line breaks down to exactly two; a
//     double break is the paragraph separator.
//  5. Collapse runs of horizontal whitespace to a single space.
//  6. Trim every paragraph and append a period to any paragraph that does
//     not already end in terminal punctuation, so the synthesizer pauses at
//     paragraph boundaries.
//  7. Rejoin paragraphs with a double line break and trim the result.
func Normalize(text string) string {
	text = lineEndings.ReplaceAllString(text, "\n")
	text = hyphenBreak.ReplaceAllString(text, "$1")

	// A single newline is a line wrap, not a paragraph boundary. Runs of two
	// or more are left for the paragraph pass below.
	text = newlineRuns.ReplaceAllStringFunc(text, func(run string) string {
		if run == "\n" {
			return " "
		}
		return run
	})
	text = excessBreaks.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")

	paragraphs := strings.Split(text, "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !endsInTerminalPunctuation(p) {
			p += "."
		}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}

func endsInTerminalPunctuation(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(s)
	return strings.ContainsRune(terminalPunctuation, last)
}
