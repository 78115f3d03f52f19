package content

import "strings"

// maxSnippetChars bounds the display window Snippet centers on a match
// (spec §6: "Center a window of <=500 characters").
const maxSnippetChars = 500

// Snippet extracts a display excerpt of body around query's first match, for
// presentation only (the stored/indexed body is never truncated). It first
// looks for an exact case-insensitive match of the whole query string, then
// falls back to the first query term at least three characters long, then
// to position 0 if neither is found. The returned window is centered on that
// position, widened to maxSnippetChars, and its edges are pulled out to the
// nearest whitespace so words aren't cut mid-token (an edge with no
// whitespace between it and the body boundary stays where it is); "..." is
// prefixed/suffixed wherever the window doesn't reach a body boundary.
func Snippet(body, query string) string {
	if len(body) <= maxSnippetChars {
		return body
	}

	pos := matchPosition(body, query)

	half := maxSnippetChars / 2
	start := pos - half
	end := pos + half
	if start < 0 {
		end -= start
		start = 0
	}
	if end > len(body) {
		start -= end - len(body)
		end = len(body)
	}
	if start < 0 {
		start = 0
	}

	start = expandToWhitespace(body, start, -1)
	end = expandToWhitespace(body, end, 1)

	snippet := body[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(body) {
		snippet = snippet + "..."
	}
	return snippet
}

// matchPosition locates where the display window should center: the query's
// first exact (case-insensitive) occurrence, else its first term of three or
// more characters, else 0.
func matchPosition(body, query string) int {
	lowerBody := strings.ToLower(body)
	lowerQuery := strings.ToLower(strings.TrimSpace(query))

	if lowerQuery != "" {
		if i := strings.Index(lowerBody, lowerQuery); i >= 0 {
			return i
		}
		for _, term := range strings.Fields(lowerQuery) {
			if len(term) < 3 {
				continue
			}
			if i := strings.Index(lowerBody, term); i >= 0 {
				return i
			}
		}
	}
	return 0
}

// expandToWhitespace walks pos in dir (-1 or 1) to the nearest whitespace
// byte, so a window edge doesn't split a word. If no whitespace lies between
// pos and the body's edge, pos is returned unchanged.
func expandToWhitespace(body string, pos, dir int) int {
	for p := pos; p > 0 && p < len(body); p += dir {
		if body[p] == ' ' || body[p] == '\n' || body[p] == '\t' {
			return p
		}
	}
	return pos
}
