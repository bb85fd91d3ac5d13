package render

import (
	"strings"
	"unicode/utf8"
)

// TextBounds is the estimated size of rendered text.
type TextBounds struct {
	Width  int
	Height int
}

// estimateTextBounds approximates the bounding box of a single line of
// text. Average character width is 0.7 * fontSize and line height
// 1.5 * fontSize, which errs on the wide side.
func estimateTextBounds(text string, fontSize int) TextBounds {
	avgCharWidth := float64(fontSize) * 0.7
	lineHeight := float64(fontSize) * 1.5

	return TextBounds{
		Width:  int(float64(utf8.RuneCountInString(text)) * avgCharWidth),
		Height: int(lineHeight),
	}
}

// charsFor is how many characters fit into width pixels.
func charsFor(width float64, fontSize int) int {
	if fontSize <= 0 {
		return 0
	}
	return int(width / (float64(fontSize) * 0.7))
}

// wrapText wraps words into lines of at most maxWidth characters. Words
// are never broken; a word longer than maxWidth gets its own line.
func wrapText(words []string, maxWidth int) []string {
	if len(words) == 0 {
		return []string{}
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if utf8.RuneCountInString(currentLine.String())+1+utf8.RuneCountInString(word) <= maxWidth {
			currentLine.WriteString(" " + word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return lines
}

// truncate shortens text to at most maxChars characters, ending with an
// ellipsis when something was cut.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	if maxChars == 1 {
		return "…"
	}
	return string(runes[:maxChars-1]) + "…"
}

// escapeXML replaces the XML special characters &, <, >, " and ' with
// entity references so labels cannot break the document.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
