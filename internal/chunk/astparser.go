package chunk

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// parse parses source into a tree-sitter AST for the given language.
func parse(ctx context.Context, source []byte, lang Language) (*sitter.Tree, error) {
	grammar, ok := grammarFor(lang)
	if !ok {
		return nil, agenterr.Newf(agenterr.Parse, "unsupported language: %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Parse, err, "parse source")
	}
	if tree == nil {
		return nil, agenterr.New(agenterr.Parse, "parse produced no tree")
	}
	return tree, nil
}
