package lexical

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// Bleve analyzer component names for the code-aware analyzer the chunk FTS
// mirror (ChunkIndex) registers; the document-level documents_fts table uses
// SQLite's unicode61 tokenizer instead (spec §4.6: lexical search must
// tokenize identifiers the way a reader would — splitting camelCase and
// snake_case rather than treating "getUserById" as one opaque term).
const (
	CodeTokenizerName  = "code_tokenizer"
	CodeStopFilterName = "code_stop"
	CodeAnalyzerName   = "code_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(CodeTokenizerName, codeTokenizerConstructor)
	_ = registry.RegisterTokenFilter(CodeStopFilterName, codeStopFilterConstructor)
}

// tokenRegex matches alphanumeric runs (including underscores, for the
// snake_case split that follows).
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// DefaultCodeStopWords are common identifier/keyword fragments that carry no
// search signal on their own.
var DefaultCodeStopWords = []string{
	"var", "let", "const", "func", "function", "def", "class",
	"return", "if", "else", "for", "while",
	"data", "result", "value", "item", "key", "err", "ctx", "tmp",
}

// TokenizeCode splits text with code-aware rules: camelCase, PascalCase, and
// snake_case identifiers are split into their constituent words, every token
// is lowercased, and tokens shorter than two characters are dropped.
func TokenizeCode(text string) []string {
	var tokens []string

	for _, word := range tokenRegex.FindAllString(text, -1) {
		for _, t := range SplitCodeToken(word) {
			if lower := strings.ToLower(t); len(lower) >= 2 {
				tokens = append(tokens, lower)
			}
		}
	}

	return tokens
}

// SplitCodeToken splits a single identifier on snake_case boundaries first,
// then camelCase boundaries within each part.
func SplitCodeToken(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, SplitCamelCase(part)...)
			}
		}
		return result
	}
	return SplitCamelCase(token)
}

// SplitCamelCase splits camelCase and PascalCase identifiers, keeping runs of
// capitals together (so "HTTPHandler" splits as "HTTP"/"Handler", not
// letter-by-letter).
func SplitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// FilterStopWords drops tokens present in stopWords (case-insensitively).
func FilterStopWords(tokens []string, stopWords map[string]struct{}) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := stopWords[strings.ToLower(token)]; !isStop {
			result = append(result, token)
		}
	}
	return result
}

// BuildStopWordMap converts a stop word list into a lookup set.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}

// codeTokenizerConstructor adapts TokenizeCode to Bleve's analysis.Tokenizer.
func codeTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &codeTokenizer{}, nil
}

type codeTokenizer struct{}

func (t *codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := TokenizeCode(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0

	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), strings.ToLower(token))
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}

	return result
}

// codeStopFilterConstructor adapts FilterStopWords to Bleve's analysis.TokenFilter.
func codeStopFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return &codeStopFilter{stopWords: BuildStopWordMap(DefaultCodeStopWords)}, nil
}

type codeStopFilter struct {
	stopWords map[string]struct{}
}

func (f *codeStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		if _, isStop := f.stopWords[strings.ToLower(string(token.Term))]; !isStop {
			result = append(result, token)
		}
	}
	return result
}
