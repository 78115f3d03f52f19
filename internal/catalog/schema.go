package catalog

import "database/sql"

// schemaSQL creates every table the catalog owns (spec §4.6): the single
// source of truth every other component reads through a shared *sql.DB
// handle. Statements are idempotent (CREATE TABLE/INDEX IF NOT EXISTS) so
// opening an existing catalog file is a no-op migration.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS collections (
	name             TEXT PRIMARY KEY,
	path             TEXT NOT NULL,
	pattern          TEXT NOT NULL,
	provider         TEXT NOT NULL DEFAULT 'file',
	provider_options TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
	hash       TEXT PRIMARY KEY,
	bytes      BLOB NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	collection       TEXT NOT NULL,
	path             TEXT NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	hash             TEXT NOT NULL,
	active           INTEGER NOT NULL DEFAULT 1,
	importance_score REAL NOT NULL DEFAULT 0,
	llm_summary      TEXT NOT NULL DEFAULT '',
	llm_title        TEXT NOT NULL DEFAULT '',
	llm_keywords     TEXT NOT NULL DEFAULT '',
	llm_intent       TEXT NOT NULL DEFAULT '',
	llm_concepts     TEXT NOT NULL DEFAULT '',
	llm_category     TEXT NOT NULL DEFAULT '',
	llm_difficulty   TEXT NOT NULL DEFAULT '',
	user_metadata    TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	modified_at      TEXT NOT NULL,
	FOREIGN KEY (hash) REFERENCES content(hash)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection_path_active
	ON documents(collection, path, active);

CREATE TABLE IF NOT EXISTS document_chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	hash        TEXT NOT NULL,
	text        TEXT NOT NULL,
	breadcrumb  TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT '',
	start_line  INTEGER NOT NULL DEFAULT 0,
	end_line    INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (document_id) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id ON document_chunks(document_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_document_chunks_hash ON document_chunks(document_id, hash);

CREATE TABLE IF NOT EXISTS content_embeddings (
	chunk_hash TEXT NOT NULL,
	model      TEXT NOT NULL,
	dimensions INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (chunk_hash, model)
);

CREATE TABLE IF NOT EXISTS document_links (
	source_id  INTEGER NOT NULL,
	target_id  INTEGER NOT NULL,
	link_type  TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (source_id, target_id)
);
CREATE INDEX IF NOT EXISTS idx_document_links_target ON document_links(target_id);

CREATE TABLE IF NOT EXISTS contexts (
	path       TEXT PRIMARY KEY,
	context    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS llm_cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	expires_at TEXT
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	last_used  TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_queries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	query        TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);
CREATE INDEX IF NOT EXISTS idx_session_queries_session ON session_queries(session_id);

CREATE TABLE IF NOT EXISTS session_seen (
	session_id   TEXT NOT NULL,
	doc_hash     TEXT NOT NULL,
	chunk_hash   TEXT NOT NULL DEFAULT '',
	detail_level TEXT NOT NULL DEFAULT '',
	seen_at      TEXT NOT NULL,
	PRIMARY KEY (session_id, doc_hash, chunk_hash)
);

CREATE TABLE IF NOT EXISTS concepts (
	name       TEXT PRIMARY KEY,
	count      INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	filepath, title, body, llm_summary, llm_title, llm_keywords,
	llm_intent, llm_concepts, user_metadata, modified_at,
	tokenize='unicode61'
);
`

func migrate(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
