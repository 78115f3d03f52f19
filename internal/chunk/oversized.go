package chunk

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const breakSearchPercent = 30

// splitOversized splits chunk into overlapping strides when its text
// exceeds maxChars bytes (spec §4.3 "Oversized chunk splitting (striding)").
// maxChars == 0 disables splitting entirely.
func splitOversized(c Chunk, maxChars, overlapChars int) []Chunk {
	if len(c.Text) <= maxChars || maxChars == 0 {
		return []Chunk{c}
	}

	var result []Chunk
	text := c.Text
	start := 0
	strideIdx := 0
	baseLine := c.Metadata.StartLine

	linesToPrevEnd := 0
	prevEnd := 0

	for start < len(text) {
		rawEnd := start + maxChars
		if rawEnd > len(text) {
			rawEnd = len(text)
		}
		end := findSafeBoundary(text, rawEnd)
		if end <= start {
			end = start + 1
			if end > len(text) {
				end = len(text)
			}
		}

		strideText := text[start:end]

		var strideBreadcrumb string
		if c.Metadata.Breadcrumb != "" {
			strideBreadcrumb = breadcrumbStride(c.Metadata.Breadcrumb, strideIdx)
		}

		var leading string
		if strideIdx == 0 {
			leading = c.Metadata.LeadingTrivia
		}

		isLast := end >= len(text)
		var trailing string
		if isLast {
			trailing = c.Metadata.TrailingTrivia
		}

		linesToPrevEnd += strings.Count(text[prevEnd:end], "\n")
		endLine := baseLine + linesToPrevEnd
		linesInStride := strings.Count(text[start:end], "\n")
		startLine := endLine - linesInStride

		result = append(result, Chunk{
			Text:     strideText,
			Kind:     c.Kind,
			Hash:     ComputeHash(strideText, leading, trailing),
			Position: c.Position + start,
			Metadata: Metadata{
				LeadingTrivia:  leading,
				TrailingTrivia: trailing,
				Breadcrumb:     strideBreadcrumb,
				Language:       c.Metadata.Language,
				StartLine:      startLine,
				EndLine:        endLine,
			},
		})

		if end >= len(text) {
			break
		}

		prevEnd = end
		prevStart := start
		next := end - overlapChars
		if next < 0 {
			next = 0
		}
		start = findSafeBoundaryForward(text, next)
		if start <= prevStart {
			start = prevStart + 1
		}

		strideIdx++
	}

	return result
}

// splitAllOversized applies splitOversized to every chunk in chunks.
func splitAllOversized(chunks []Chunk, maxChars, overlapChars int) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, splitOversized(c, maxChars, overlapChars)...)
	}
	return out
}

func breadcrumbStride(breadcrumb string, idx int) string {
	return breadcrumb + "[" + strconv.Itoa(idx) + "]"
}

// findSafeBoundary finds a rune boundary at or before index, preferring a
// nearby "\n\n", then "\n", then " " within the last breakSearchPercent% of
// the search window.
func findSafeBoundary(s string, index int) int {
	if index >= len(s) {
		return len(s)
	}

	i := index
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}

	searchStart := i - i*breakSearchPercent/100
	if searchStart >= i {
		return i
	}

	window := s[searchStart:i]
	if pos := strings.LastIndex(window, "\n\n"); pos != -1 {
		return searchStart + pos + 2
	}
	if pos := strings.LastIndex(window, "\n"); pos != -1 {
		return searchStart + pos + 1
	}
	if pos := strings.LastIndex(window, " "); pos != -1 {
		return searchStart + pos + 1
	}

	return i
}

// findSafeBoundaryForward finds a rune boundary at or after index.
func findSafeBoundaryForward(s string, index int) int {
	if index >= len(s) {
		return len(s)
	}
	i := index
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// isOversized reports whether chunk's text exceeds maxChars bytes.
func isOversized(c Chunk, maxChars int) bool {
	return len(c.Text) > maxChars
}
