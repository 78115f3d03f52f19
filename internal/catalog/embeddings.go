package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// StoreEmbedding persists a normalized embedding vector for chunkHash under
// model, replacing any existing row for that (chunk, model) pair. Core
// normalizes before storing (spec §4.7: "Vectors passed in and out are
// L2-normalized"); callers pass whatever the embedder returned, and this
// normalizes defensively if it isn't already unit length.
func (c *Catalog) StoreEmbedding(ctx context.Context, chunkHash, model string, vector []float32) error {
	normalizeL2(vector)
	blob, err := encodeVector(vector)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "encode embedding vector")
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO content_embeddings (chunk_hash, model, dimensions, vector, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_hash, model) DO UPDATE SET dimensions = excluded.dimensions,
			vector = excluded.vector, created_at = excluded.created_at
	`, chunkHash, model, len(vector), blob, time.Now().UTC())
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "store embedding")
	}
	return nil
}

// GetEmbedding fetches the embedding stored for chunkHash/model.
func (c *Catalog) GetEmbedding(ctx context.Context, chunkHash, model string) (vector []float32, ok bool, err error) {
	var blob []byte
	var dims int
	row := c.db.QueryRowContext(ctx,
		`SELECT dimensions, vector FROM content_embeddings WHERE chunk_hash = ? AND model = ?`,
		chunkHash, model)
	if err := row.Scan(&dims, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, agenterr.Wrap(agenterr.Catalog, err, "get embedding")
	}
	vec, err := decodeVector(blob, dims)
	if err != nil {
		return nil, false, agenterr.Wrap(agenterr.Catalog, err, "decode embedding vector")
	}
	return vec, true, nil
}

// AllEmbeddings returns every stored embedding for model, keyed by chunk
// hash (spec §4.7: the vector index is materialized wholesale from these).
func (c *Catalog) AllEmbeddings(ctx context.Context, model string) (map[string][]float32, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT chunk_hash, dimensions, vector FROM content_embeddings WHERE model = ?`, model)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "list embeddings")
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var hash string
		var dims int
		var blob []byte
		if err := rows.Scan(&hash, &dims, &blob); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan embedding row")
		}
		vec, err := decodeVector(blob, dims)
		if err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "decode embedding vector")
		}
		out[hash] = vec
	}
	return out, rows.Err()
}

// CountEmbeddings returns the number of stored embeddings for model.
func (c *Catalog) CountEmbeddings(ctx context.Context, model string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_embeddings WHERE model = ?`, model).Scan(&n)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "count embeddings")
	}
	return n, nil
}

func encodeVector(v []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, f := range v {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte, dims int) ([]float32, error) {
	v := make([]float32, dims)
	r := bytes.NewReader(blob)
	for i := range v {
		if err := binary.Read(r, binary.LittleEndian, &v[i]); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func normalizeL2(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i, f := range v {
		v[i] = float32(float64(f) / norm)
	}
}
