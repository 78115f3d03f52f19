package graph

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE documents (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			active INTEGER NOT NULL,
			importance_score REAL NOT NULL DEFAULT 0
		);
		CREATE TABLE document_links (
			source_id INTEGER NOT NULL,
			target_id INTEGER NOT NULL
		);
	`)
	require.NoError(t, err)
	return db
}

func insertDoc(t *testing.T, db *sql.DB, id int64, path string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO documents (id, path, active) VALUES (?, ?, 1)`, id, path)
	require.NoError(t, err)
}

func TestComputeImportanceEmptyCatalog(t *testing.T) {
	db := newTestDB(t)
	scores, err := ComputeImportance(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestComputeImportanceNoLinksUsesBaseWeight(t *testing.T) {
	db := newTestDB(t)
	insertDoc(t, db, 1, "doc1.md")

	scores, err := ComputeImportance(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 0.6, scores[1], 0.0001)
}

func TestComputeImportanceClassifiesReadmeDocsAndCode(t *testing.T) {
	db := newTestDB(t)
	insertDoc(t, db, 1, "README.md")
	insertDoc(t, db, 2, "nested/README.md")
	insertDoc(t, db, 3, "docs/guide.md")
	insertDoc(t, db, 4, "CHANGELOG.md")
	insertDoc(t, db, 5, "src/lib.rs")

	scores, err := ComputeImportance(context.Background(), db)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, scores[1], 0.0001)
	assert.InDelta(t, 2.0, scores[2], 0.0001)
	assert.InDelta(t, 1.8, scores[3], 0.0001)
	assert.InDelta(t, 0.6, scores[4], 0.0001)
	assert.InDelta(t, 1.0, scores[5], 0.0001)
}

func TestComputeImportanceAppliesInboundBonusCappedAt2(t *testing.T) {
	db := newTestDB(t)
	insertDoc(t, db, 1, "README.md")
	for i := int64(2); i <= 11; i++ {
		_, err := db.Exec(`INSERT INTO document_links (source_id, target_id) VALUES (?, 1)`, i)
		require.NoError(t, err)
	}

	scores, err := ComputeImportance(context.Background(), db)
	require.NoError(t, err)
	// 10 inbound links -> bonus = min(2.0, 10*0.3) = 2.0 -> 2.0 * (1+2.0) = 6.0
	assert.InDelta(t, 6.0, scores[1], 0.0001)
}

func TestComputeAndStorePersistsScores(t *testing.T) {
	db := newTestDB(t)
	insertDoc(t, db, 1, "README.md")
	insertDoc(t, db, 2, "src/lib.rs")
	_, err := db.Exec(`INSERT INTO document_links (source_id, target_id) VALUES (2, 1)`)
	require.NoError(t, err)

	n, err := ComputeAndStore(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var score float64
	require.NoError(t, db.QueryRow(`SELECT importance_score FROM documents WHERE id = 1`).Scan(&score))
	assert.InDelta(t, 2.6, score, 0.0001)
}
