package config

// Config represents the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store"`
	Dedup         DedupConfig         `yaml:"dedup"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StoreConfig configures the fingerprint store.
type StoreConfig struct {
	// Path is the SQLite database location. Use ":memory:" for an
	// ephemeral store.
	Path string `yaml:"path"`
}

// DedupConfig tunes the deduplication engine defaults. Values here seed
// the per-call options; callers can still override per batch.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	IncludeResolved     bool    `yaml:"includeResolved"`
	IncludeAcknowledged bool    `yaml:"includeAcknowledged"`
	RecencyWindow       string  `yaml:"recencyWindow"` // Go duration string, e.g. "24h"
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // "debug", "info", "error"
	Format  string `yaml:"format"` // "human" or "json"
}
