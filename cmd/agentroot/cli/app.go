package cli

import (
	"context"

	"github.com/epappas/agentroot-go/internal/rootconfig"
	agentroot "github.com/epappas/agentroot-go"
)

// openApp loads the configured (or default) config and opens the library
// facade with no collaborators attached — this CLI is a thin runnability
// shim, not a place to wire embedder/reranker credentials; a host program
// embedding the library directly is expected to attach those.
func openApp(ctx context.Context) (*agentroot.App, error) {
	cfg := rootconfig.New()
	if configPath != "" {
		loaded, err := rootconfig.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return agentroot.Open(ctx, cfg, agentroot.Collaborators{}, nil)
}
