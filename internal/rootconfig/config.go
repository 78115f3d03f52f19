// Package rootconfig loads and validates agentroot-go's configuration: catalog
// location, chunking parameters, ranking constants, session defaults, and the
// collaborator connection settings consumed by out-of-core embedder/LLM
// clients.
package rootconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete agentroot-go configuration. It mirrors the schema
// implied by spec §6 (external interfaces) and §4.9 (ranking constants).
type Config struct {
	Version    int              `yaml:"version"`
	Paths      PathsConfig      `yaml:"paths"`
	Chunk      ChunkConfig      `yaml:"chunk"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Embedding  CollaboratorURL  `yaml:"embedding"`
	LLM        CollaboratorURL  `yaml:"llm"`
	Session    SessionConfig    `yaml:"session"`
	Vector     VectorConfig     `yaml:"vector"`
}

// PathsConfig controls where the catalog and content live on disk.
type PathsConfig struct {
	// CatalogPath overrides the computed default (under the user cache dir).
	CatalogPath string `yaml:"catalog_path"`
	// Exclude is merged with the scanner's built-in default exclusions.
	Exclude []string `yaml:"exclude"`
}

// ChunkConfig configures the AST chunker (C3), including oversized-chunk striding.
type ChunkConfig struct {
	// MaxChars is the target maximum chunk size in characters (spec default 3200).
	MaxChars int `yaml:"max_chars"`
	// OverlapChars is the stride overlap when splitting an oversized chunk (spec default 480).
	OverlapChars int `yaml:"overlap_chars"`
	// BreakSearchPercent is how far into the tail of a stride to search for a safe
	// boundary (newline, then space), as a percentage of stride length (spec default 30).
	BreakSearchPercent int `yaml:"break_search_percent"`
}

// DefaultChunkConfig returns the spec's default striding parameters.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxChars: 3200, OverlapChars: 480, BreakSearchPercent: 30}
}

// RankingConfig exposes the ranking pipeline's numeric constants (spec §4.9,
// §9 Open Question 2: the strong-signal threshold is empirical and must be
// configurable rather than hardcoded).
type RankingConfig struct {
	// StrongSignalScore is the minimum top BM25 score for the short-circuit.
	StrongSignalScore float64 `yaml:"strong_signal_score"`
	// StrongSignalGap is the minimum gap to the second BM25 result for the short-circuit.
	StrongSignalGap float64 `yaml:"strong_signal_gap"`
	// RRFConstant is K in 1/(K+rank).
	RRFConstant float64 `yaml:"rrf_constant"`
	// BM25Weight and VectorWeight scale each pool's RRF contribution.
	BM25Weight   float64 `yaml:"bm25_weight"`
	VectorWeight float64 `yaml:"vector_weight"`
	// RankBonusTop3 and RankBonusTop10 are additive RRF bonuses by rank position.
	RankBonusTop3  float64 `yaml:"rank_bonus_top3"`
	RankBonusTop10 float64 `yaml:"rank_bonus_top10"`
	// MaxRerankDocs caps the fused pool size before an optional rerank call.
	MaxRerankDocs int `yaml:"max_rerank_docs"`
	// BlendWeightTop3, BlendWeightTop10, BlendWeightRest weight the fused RRF
	// score against the reranker's score by the document's fused rank.
	BlendWeightTop3  float64 `yaml:"blend_weight_top3"`
	BlendWeightTop10 float64 `yaml:"blend_weight_top10"`
	BlendWeightRest  float64 `yaml:"blend_weight_rest"`
	// DirectoryBoostFactor and DirectoryBoostTopN configure the post-ranking
	// directory boost; SessionSeenMultiplier configures session demotion.
	DirectoryBoostFactor     float64 `yaml:"directory_boost_factor"`
	DirectoryBoostTopN       int     `yaml:"directory_boost_top_n"`
	SessionSeenMultiplier    float64 `yaml:"session_seen_multiplier"`
	// DefaultMaxResults is the result cap App.Search/SmartSearch apply when the
	// caller passes a Limit of 0 (FinalFilter itself treats a limit of 0 as
	// unlimited).
	DefaultMaxResults int `yaml:"default_max_results"`
}

// DefaultRankingConfig returns the constants pinned by SPEC_FULL.md's
// supplemented-feature 8, taken from original_source's hybrid.rs/session_aware.rs.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		StrongSignalScore:       0.85,
		StrongSignalGap:         0.15,
		RRFConstant:             60.0,
		BM25Weight:              2.0,
		VectorWeight:            1.0,
		RankBonusTop3:           0.05,
		RankBonusTop10:          0.02,
		MaxRerankDocs:           40,
		BlendWeightTop3:         0.75,
		BlendWeightTop10:        0.60,
		BlendWeightRest:         0.40,
		DirectoryBoostFactor:    1.15,
		DirectoryBoostTopN:      3,
		SessionSeenMultiplier:   0.3,
		DefaultMaxResults:       20,
	}
}

// CollaboratorURL names the connection settings for an external Embedder or
// LLM collaborator (spec §6: AGENTROOT_EMBEDDING_*/AGENTROOT_LLM_*). Core
// never dials these itself — it only threads them through to whatever
// collaborator a caller constructs.
type CollaboratorURL struct {
	URL        string `yaml:"url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SessionConfig configures the session store (C11).
type SessionConfig struct {
	// TTLSeconds is how long a session survives without being touched.
	TTLSeconds int `yaml:"ttl_seconds"`
}

// DefaultSessionConfig returns a one-hour TTL.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{TTLSeconds: 3600}
}

// VectorConfig configures the vector index (C7).
type VectorConfig struct {
	// HNSWThreshold is the embedding count at or above which an HNSW graph is built;
	// below it, search falls back to exact cosine scan (spec default 1000).
	HNSWThreshold int `yaml:"hnsw_threshold"`
}

// DefaultVectorConfig returns the spec's default ANN threshold.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{HNSWThreshold: 1000}
}

// New returns a Config populated with every section's defaults.
func New() *Config {
	return &Config{
		Version:   1,
		Paths:     PathsConfig{Exclude: DefaultExcludePatterns()},
		Chunk:     DefaultChunkConfig(),
		Ranking:   DefaultRankingConfig(),
		Session:   DefaultSessionConfig(),
		Vector:    DefaultVectorConfig(),
	}
}

// DefaultExcludePatterns mirrors the scanner's built-in directory exclusions
// (spec §4.2) so a config file can extend, not replace, them.
func DefaultExcludePatterns() []string {
	return []string{
		"node_modules", ".git", ".cache", "vendor", "dist", "build",
		"__pycache__", ".venv", "target",
	}
}

// DefaultCatalogPath returns <user cache dir>/agentroot/catalog.db, matching
// spec §6's "under the user cache directory under a fixed subdirectory name".
func DefaultCatalogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "agentroot", "catalog.db")
}

// Load reads YAML from path (if it exists), merges it onto the defaults, then
// applies environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var parsed Config
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
			cfg.mergeWith(&parsed)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if cfg.Paths.CatalogPath == "" {
		cfg.Paths.CatalogPath = DefaultCatalogPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Paths.CatalogPath != "" {
		c.Paths.CatalogPath = other.Paths.CatalogPath
	}
	if len(other.Paths.Exclude) > 0 {
		c.Paths.Exclude = append(c.Paths.Exclude, other.Paths.Exclude...)
	}
	if other.Chunk.MaxChars != 0 {
		c.Chunk.MaxChars = other.Chunk.MaxChars
	}
	if other.Chunk.OverlapChars != 0 {
		c.Chunk.OverlapChars = other.Chunk.OverlapChars
	}
	if other.Chunk.BreakSearchPercent != 0 {
		c.Chunk.BreakSearchPercent = other.Chunk.BreakSearchPercent
	}
	mergeRanking(&c.Ranking, &other.Ranking)
	if other.Embedding.URL != "" {
		c.Embedding.URL = other.Embedding.URL
	}
	if other.Embedding.Model != "" {
		c.Embedding.Model = other.Embedding.Model
	}
	if other.Embedding.Dimensions != 0 {
		c.Embedding.Dimensions = other.Embedding.Dimensions
	}
	if other.LLM.URL != "" {
		c.LLM.URL = other.LLM.URL
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.Dimensions != 0 {
		c.LLM.Dimensions = other.LLM.Dimensions
	}
	if other.Session.TTLSeconds != 0 {
		c.Session.TTLSeconds = other.Session.TTLSeconds
	}
	if other.Vector.HNSWThreshold != 0 {
		c.Vector.HNSWThreshold = other.Vector.HNSWThreshold
	}
}

func mergeRanking(c, other *RankingConfig) {
	if other.StrongSignalScore != 0 {
		c.StrongSignalScore = other.StrongSignalScore
	}
	if other.StrongSignalGap != 0 {
		c.StrongSignalGap = other.StrongSignalGap
	}
	if other.RRFConstant != 0 {
		c.RRFConstant = other.RRFConstant
	}
	if other.BM25Weight != 0 {
		c.BM25Weight = other.BM25Weight
	}
	if other.VectorWeight != 0 {
		c.VectorWeight = other.VectorWeight
	}
	if other.MaxRerankDocs != 0 {
		c.MaxRerankDocs = other.MaxRerankDocs
	}
	if other.RankBonusTop3 != 0 {
		c.RankBonusTop3 = other.RankBonusTop3
	}
	if other.RankBonusTop10 != 0 {
		c.RankBonusTop10 = other.RankBonusTop10
	}
	if other.BlendWeightTop3 != 0 {
		c.BlendWeightTop3 = other.BlendWeightTop3
	}
	if other.BlendWeightTop10 != 0 {
		c.BlendWeightTop10 = other.BlendWeightTop10
	}
	if other.BlendWeightRest != 0 {
		c.BlendWeightRest = other.BlendWeightRest
	}
	if other.DirectoryBoostFactor != 0 {
		c.DirectoryBoostFactor = other.DirectoryBoostFactor
	}
	if other.DirectoryBoostTopN != 0 {
		c.DirectoryBoostTopN = other.DirectoryBoostTopN
	}
	if other.SessionSeenMultiplier != 0 {
		c.SessionSeenMultiplier = other.SessionSeenMultiplier
	}
	if other.DefaultMaxResults != 0 {
		c.DefaultMaxResults = other.DefaultMaxResults
	}
}

// applyEnvOverrides applies the environment variables named in spec §6.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AGENTROOT_DB"); v != "" {
		c.Paths.CatalogPath = v
	}
	if v := os.Getenv("AGENTROOT_EMBEDDING_URL"); v != "" {
		c.Embedding.URL = v
	}
	if v := os.Getenv("AGENTROOT_EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("AGENTROOT_EMBEDDING_DIMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("AGENTROOT_LLM_URL"); v != "" {
		c.LLM.URL = v
	}
	if v := os.Getenv("AGENTROOT_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("AGENTROOT_LLM_DIMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.Dimensions = n
		}
	}
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.Chunk.MaxChars <= 0 {
		return fmt.Errorf("chunk.max_chars must be positive, got %d", c.Chunk.MaxChars)
	}
	if c.Chunk.OverlapChars < 0 || c.Chunk.OverlapChars >= c.Chunk.MaxChars {
		return fmt.Errorf("chunk.overlap_chars must be in [0, max_chars), got %d", c.Chunk.OverlapChars)
	}
	if c.Chunk.BreakSearchPercent < 0 || c.Chunk.BreakSearchPercent > 100 {
		return fmt.Errorf("chunk.break_search_percent must be in [0,100], got %d", c.Chunk.BreakSearchPercent)
	}
	if c.Ranking.StrongSignalScore < 0 || c.Ranking.StrongSignalScore > 1 {
		return fmt.Errorf("ranking.strong_signal_score must be in [0,1], got %f", c.Ranking.StrongSignalScore)
	}
	if c.Ranking.RRFConstant <= 0 {
		return fmt.Errorf("ranking.rrf_constant must be positive, got %f", c.Ranking.RRFConstant)
	}
	if c.Vector.HNSWThreshold < 0 {
		return fmt.Errorf("vector.hnsw_threshold must be non-negative, got %d", c.Vector.HNSWThreshold)
	}
	if c.Session.TTLSeconds <= 0 {
		return fmt.Errorf("session.ttl_seconds must be positive, got %d", c.Session.TTLSeconds)
	}
	return nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
