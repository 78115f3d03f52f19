// Package session implements session-aware ranking support (C11): a
// lightweight, TTL-bounded scope that lets successive queries from the same
// agent demote results it has already been shown rather than repeat them.
// The catalog owns the underlying sessions/session_queries/session_seen
// tables (internal/catalog/sessions.go); this package is the behavior layer
// on top, mirroring the original's search/session_aware.rs.
package session

import (
	"context"

	"github.com/epappas/agentroot-go/internal/catalog"
	"github.com/epappas/agentroot-go/internal/ranking"
	"github.com/epappas/agentroot-go/internal/rootconfig"
)

// seenTopN is how many top results get marked seen per query, matching
// log_session_results' results.iter().take(10).
const seenTopN = 10

// Manager wraps a Catalog's session tables with the operations search needs:
// starting a session, demoting already-seen results, and recording what a
// query returned.
type Manager struct {
	catalog    *catalog.Catalog
	cfg        rootconfig.SessionConfig
	rankingCfg rootconfig.RankingConfig
}

func NewManager(cat *catalog.Catalog, cfg rootconfig.SessionConfig, rankingCfg rootconfig.RankingConfig) *Manager {
	return &Manager{catalog: cat, cfg: cfg, rankingCfg: rankingCfg}
}

// Start creates a new session using the configured TTL and returns its id.
func (m *Manager) Start(ctx context.Context) (string, error) {
	return m.catalog.CreateSession(ctx, m.cfg.TTLSeconds)
}

// Resolve looks up sessionID, returning ok=false if it's absent or expired.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (catalog.SessionInfo, bool, error) {
	if sessionID == "" {
		return catalog.SessionInfo{}, false, nil
	}
	return m.catalog.GetSession(ctx, sessionID)
}

// Demote fetches sessionID's seen hashes and applies session-aware demotion
// to results in place (original's apply_session_awareness). A no-op if
// sessionID is empty or unknown.
func (m *Manager) Demote(ctx context.Context, sessionID string, results []ranking.Item) error {
	if sessionID == "" {
		return nil
	}
	seen, err := m.catalog.GetSeenHashes(ctx, sessionID)
	if err != nil {
		return err
	}
	ranking.ApplySessionDemotion(results, seen, m.rankingCfg)
	return nil
}

// LogResults touches the session, logs the query, and marks its top results
// seen (original's log_session_results). A no-op if sessionID is empty.
func (m *Manager) LogResults(ctx context.Context, sessionID, query string, results []ranking.Item, detailLevel string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.catalog.TouchSession(ctx, sessionID); err != nil {
		return err
	}
	if err := m.catalog.LogSessionQuery(ctx, sessionID, query, len(results)); err != nil {
		return err
	}
	top := results
	if len(top) > seenTopN {
		top = top[:seenTopN]
	}
	for _, r := range top {
		if err := m.catalog.MarkSeen(ctx, sessionID, r.Hash, "", detailLevel); err != nil {
			return err
		}
	}
	return nil
}

// Expire removes sessions whose TTL has elapsed since they were last used.
// Returns the number of sessions removed.
func (m *Manager) Expire(ctx context.Context) (int, error) {
	return m.catalog.ExpireSessions(ctx)
}
