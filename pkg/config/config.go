package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Lexicon   LexiconConfig   `yaml:"lexicon"`
	SRS       SRSConfig       `yaml:"srs"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// DatabaseConfig selects the SQL driver and connection settings.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"            env:"DATABASE_DRIVER"            env-default:"sqlite3"`
	DSN              string        `yaml:"dsn"               env:"DATABASE_DSN"               env-default:"vocabforge.db"`
	MaxOpenConns     int           `yaml:"max_open_conns"    env:"DATABASE_MAX_OPEN_CONNS"    env-default:"8"`
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s"`
}

// IngestionConfig holds orchestrator limits. Times are whole seconds, sizes are bytes.
type IngestionConfig struct {
	MaxProcessingTime       int `yaml:"max_processing_time"       env:"MAX_PROCESSING_TIME"       env-default:"300"`
	SyncProcessingTimeout   int `yaml:"sync_processing_timeout"   env:"SYNC_PROCESSING_TIMEOUT"   env-default:"60"`
	MaxSyncProcessingSize   int `yaml:"max_sync_processing_size"  env:"MAX_SYNC_PROCESSING_SIZE"  env-default:"102400"`
	MaxConcurrentProcessing int `yaml:"max_concurrent_processing" env:"MAX_CONCURRENT_PROCESSING" env-default:"2"`
	StatusCleanupInterval   int `yaml:"status_cleanup_interval"   env:"STATUS_CLEANUP_INTERVAL"   env-default:"600"`
	MaxStatusAge            int `yaml:"max_status_age"            env:"MAX_STATUS_AGE"            env-default:"3600"`
	AcquireTimeoutMillis    int `yaml:"acquire_timeout_ms"        env:"INGEST_ACQUIRE_TIMEOUT_MS" env-default:"500"`
	BatchSize               int `yaml:"batch_size"                env:"INGEST_BATCH_SIZE"         env-default:"5000"`
	StreamThreshold         int `yaml:"stream_threshold"          env:"INGEST_STREAM_THRESHOLD"   env-default:"307200"`
	ChunkBytes              int `yaml:"chunk_bytes"               env:"INGEST_CHUNK_BYTES"        env-default:"102400"`
	QueueSize               int `yaml:"queue_size"                env:"INGEST_QUEUE_SIZE"         env-default:"64"`
	Workers                 int `yaml:"workers"                   env:"INGEST_WORKERS"            env-default:"2"`
}

// LexiconConfig points at the static word sets loaded at boot.
// An empty VocabPath falls back to the built-in lemma dictionary.
type LexiconConfig struct {
	VocabPath     string `yaml:"vocab_path"      env:"LEXICON_VOCAB_PATH"`
	VocabURL      string `yaml:"vocab_url"       env:"LEXICON_VOCAB_URL"`
	BrownPath     string `yaml:"brown_path"      env:"LEXICON_BROWN_PATH"`
	StopWordsPath string `yaml:"stop_words_path" env:"LEXICON_STOP_WORDS_PATH"`
}

// SRSConfig holds spaced-repetition parameters.
type SRSConfig struct {
	NewCardsPerDay   int `yaml:"new_cards_per_day"  env:"NEW_CARDS_PER_DAY"  env-default:"10"`
	LearnedThreshold int `yaml:"learned_threshold"  env:"LEARNED_THRESHOLD"  env-default:"7"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"90s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES" env-default:"67108864"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// MaxProcessing returns the async per-book deadline.
func (c IngestionConfig) MaxProcessing() time.Duration {
	return time.Duration(c.MaxProcessingTime) * time.Second
}

// SyncTimeout returns the inline processing deadline.
func (c IngestionConfig) SyncTimeout() time.Duration {
	return time.Duration(c.SyncProcessingTimeout) * time.Second
}

// CleanupInterval returns the janitor period.
func (c IngestionConfig) CleanupInterval() time.Duration {
	return time.Duration(c.StatusCleanupInterval) * time.Second
}

// StatusAge returns how long terminal status entries are retained.
func (c IngestionConfig) StatusAge() time.Duration {
	return time.Duration(c.MaxStatusAge) * time.Second
}

// AcquireTimeout returns how long a request waits for a processing permit.
func (c IngestionConfig) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutMillis) * time.Millisecond
}

// Addr returns host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is determined by CONFIG_PATH env (fallback "./config.yaml").
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite3 or pgx, got %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	in := c.Ingestion
	if in.MaxProcessingTime <= 0 {
		errs = append(errs, errors.New("ingestion.max_processing_time must be positive"))
	}
	if in.SyncProcessingTimeout <= 0 {
		errs = append(errs, errors.New("ingestion.sync_processing_timeout must be positive"))
	}
	if in.MaxSyncProcessingSize < 0 {
		errs = append(errs, errors.New("ingestion.max_sync_processing_size must not be negative"))
	}
	if in.MaxConcurrentProcessing < 1 {
		errs = append(errs, errors.New("ingestion.max_concurrent_processing must be at least 1"))
	}
	if in.StatusCleanupInterval <= 0 || in.MaxStatusAge <= 0 {
		errs = append(errs, errors.New("ingestion status cleanup interval and age must be positive"))
	}
	if in.BatchSize < 1 || in.BatchSize > 5000 {
		errs = append(errs, fmt.Errorf("ingestion.batch_size must be in [1, 5000], got %d", in.BatchSize))
	}
	if in.ChunkBytes < 1024 {
		errs = append(errs, errors.New("ingestion.chunk_bytes must be at least 1024"))
	}

	if c.SRS.NewCardsPerDay < 0 {
		errs = append(errs, errors.New("srs.new_cards_per_day must not be negative"))
	}
	if c.SRS.LearnedThreshold < 1 {
		errs = append(errs, errors.New("srs.learned_threshold must be at least 1"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
