package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeCode_SplitsOnWhitespace(t *testing.T) {
	tokens := TokenizeCode("hello world")
	require.Len(t, tokens, 2)
	assert.Equal(t, "hello", tokens[0])
	assert.Equal(t, "world", tokens[1])
}

func TestTokenizeCode_SplitsOnDelimiters(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"parentheses", "func(arg)", []string{"func", "arg"}},
		{"brackets", "array[index]", []string{"array", "index"}},
		{"dots", "object.method", []string{"object", "method"}},
		{"mixed delimiters", "foo.bar(baz, qux)", []string{"foo", "bar", "baz", "qux"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, TokenizeCode(tt.input))
		})
	}
}

func TestTokenizeCode_SplitsCamelCase(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"simple camelCase", "getUserById", []string{"get", "user", "by", "id"}},
		{"PascalCase", "UserAuthManager", []string{"user", "auth", "manager"}},
		{"with acronym", "parseHTTPRequest", []string{"parse", "http", "request"}},
		{"acronym at start", "HTTPHandler", []string{"http", "handler"}},
		{"single word", "hello", []string{"hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, TokenizeCode(tt.input))
		})
	}
}

func TestTokenizeCode_SplitsSnakeCase(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"simple snake_case", "get_user_by_id", []string{"get", "user", "by", "id"}},
		{"double underscore", "foo__bar", []string{"foo", "bar"}},
		{"leading underscore", "_private_method", []string{"private", "method"}},
		{"mixed snake and camel", "get_UserById", []string{"get", "user", "by", "id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, TokenizeCode(tt.input))
		})
	}
}

func TestTokenizeCode_FiltersShortTokens(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"filters single char", "a getUserById b", []string{"get", "user", "by", "id"}},
		{"keeps 2+ char tokens", "go is ok", []string{"go", "is", "ok"}},
		{"handles numbers", "item1 item2", []string{"item1", "item2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, TokenizeCode(tt.input))
		})
	}
}

func TestSplitCamelCase(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"empty string", "", []string{}},
		{"all lowercase", "hello", []string{"hello"}},
		{"camelCase", "camelCase", []string{"camel", "Case"}},
		{"PascalCase", "PascalCase", []string{"Pascal", "Case"}},
		{"multiple words", "getUserById", []string{"get", "User", "By", "Id"}},
		{"acronym in middle", "parseHTTPRequest", []string{"parse", "HTTP", "Request"}},
		{"acronym at start", "HTTPHandler", []string{"HTTP", "Handler"}},
		{"all caps", "HTTP", []string{"HTTP"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, SplitCamelCase(tt.input))
		})
	}
}

func TestSplitCodeToken(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"simple word", "hello", []string{"hello"}},
		{"snake_case", "get_user", []string{"get", "user"}},
		{"camelCase", "getUser", []string{"get", "User"}},
		{"mixed", "get_UserById", []string{"get", "User", "By", "Id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, SplitCodeToken(tt.input))
		})
	}
}

func TestFilterStopWords(t *testing.T) {
	tokens := []string{"func", "getUserById", "return", "data", "user", "name"}
	stopWords := map[string]struct{}{"func": {}, "return": {}, "data": {}}

	result := FilterStopWords(tokens, stopWords)

	assert.Equal(t, []string{"getUserById", "user", "name"}, result)
}

func BenchmarkTokenizeCode(b *testing.B) {
	input := "func getUserById(ctx context.Context, id string) (*User, error)"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TokenizeCode(input)
	}
}
