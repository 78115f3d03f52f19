package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// SessionInfo is a registered search session (spec §4.11's session-aware
// ranking support): a TTL-bounded scope an agent's successive queries share,
// so results it has already seen can be demoted rather than repeated.
type SessionInfo struct {
	ID         string
	CreatedAt  time.Time
	LastUsed   time.Time
	TTLSeconds int
}

// SessionQuery is one logged query within a session.
type SessionQuery struct {
	Query       string
	ResultCount int
	CreatedAt   time.Time
}

// CreateSession starts a new session with the given TTL (0 means the
// session never expires) and returns its generated id.
func (c *Catalog) CreateSession(ctx context.Context, ttlSeconds int) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, last_used, ttl_seconds) VALUES (?, ?, ?, ?)`,
		id, now, now, ttlSeconds,
	)
	if err != nil {
		return "", agenterr.Wrap(agenterr.Catalog, err, "create session")
	}
	return id, nil
}

// TouchSession bumps a session's last_used to now.
func (c *Catalog) TouchSession(ctx context.Context, sessionID string) error {
	_, err := c.db.ExecContext(ctx, `UPDATE sessions SET last_used = ? WHERE id = ?`, time.Now().UTC(), sessionID)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "touch session")
	}
	return nil
}

// GetSession looks up a session by id. ok is false if absent or expired.
func (c *Catalog) GetSession(ctx context.Context, sessionID string) (info SessionInfo, ok bool, err error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, created_at, last_used, ttl_seconds FROM sessions WHERE id = ?`, sessionID)
	err = row.Scan(&info.ID, &info.CreatedAt, &info.LastUsed, &info.TTLSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, false, nil
	}
	if err != nil {
		return SessionInfo{}, false, agenterr.Wrap(agenterr.Catalog, err, "get session")
	}
	if info.TTLSeconds > 0 && time.Since(info.LastUsed) > time.Duration(info.TTLSeconds)*time.Second {
		return SessionInfo{}, false, nil
	}
	return info, true, nil
}

// LogSessionQuery records one query against a session.
func (c *Catalog) LogSessionQuery(ctx context.Context, sessionID, query string, resultCount int) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO session_queries (session_id, query, result_count, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, query, resultCount, time.Now().UTC(),
	)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "log session query")
	}
	return nil
}

// GetSessionQueries returns every query logged for sessionID, oldest first.
func (c *Catalog) GetSessionQueries(ctx context.Context, sessionID string) ([]SessionQuery, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT query, result_count, created_at FROM session_queries WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "get session queries")
	}
	defer rows.Close()

	var out []SessionQuery
	for rows.Next() {
		var q SessionQuery
		if err := rows.Scan(&q.Query, &q.ResultCount, &q.CreatedAt); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan session query row")
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// MarkSeen records that docHash (optionally narrowed to chunkHash) was shown
// to the agent in this session at detailLevel.
func (c *Catalog) MarkSeen(ctx context.Context, sessionID, docHash, chunkHash, detailLevel string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO session_seen (session_id, doc_hash, chunk_hash, detail_level, seen_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, doc_hash, chunk_hash) DO UPDATE SET detail_level = excluded.detail_level, seen_at = excluded.seen_at`,
		sessionID, docHash, chunkHash, detailLevel, time.Now().UTC(),
	)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "mark seen")
	}
	return nil
}

// GetSeenHashes returns every doc/chunk hash marked seen in sessionID. A
// chunk hash is returned in preference to its parent doc hash when both are
// present on the same row, matching how ranking demotion keys on whichever
// hash identifies the more specific unit actually shown.
func (c *Catalog) GetSeenHashes(ctx context.Context, sessionID string) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT doc_hash, chunk_hash FROM session_seen WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "get seen hashes")
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var docHash, chunkHash string
		if err := rows.Scan(&docHash, &chunkHash); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan seen hash row")
		}
		if chunkHash != "" {
			seen[chunkHash] = struct{}{}
		} else {
			seen[docHash] = struct{}{}
		}
	}
	return seen, rows.Err()
}

// ExpireSessions deletes sessions (and their queries/seen rows) whose TTL
// has elapsed since last_used. Returns the number of sessions removed.
func (c *Catalog) ExpireSessions(ctx context.Context) (int, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE ttl_seconds > 0 AND (julianday('now') - julianday(last_used)) * 86400 > ttl_seconds`)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "find expired sessions")
	}
	var expired []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, agenterr.Wrap(agenterr.Catalog, err, "scan expired session row")
		}
		expired = append(expired, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "iterate expired sessions")
	}

	for _, id := range expired {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM session_seen WHERE session_id = ?`, id); err != nil {
			return 0, agenterr.Wrap(agenterr.Catalog, err, "delete expired session_seen")
		}
		if _, err := c.db.ExecContext(ctx, `DELETE FROM session_queries WHERE session_id = ?`, id); err != nil {
			return 0, agenterr.Wrap(agenterr.Catalog, err, "delete expired session_queries")
		}
		if _, err := c.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return 0, agenterr.Wrap(agenterr.Catalog, err, "delete expired session")
		}
	}
	return len(expired), nil
}
