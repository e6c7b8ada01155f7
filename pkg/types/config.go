package types

import "time"

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// DataConfig holds settings for locating and reading the raw dataset.
type DataConfig struct {
	// Dir holds the dated dataset files
	// (all-school-scores-final-<Month>-<day>-<year>.json).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// BackupDir holds the last rotated dataset file, used when no current
	// file can be read.
	BackupDir string `json:"backup_dir" yaml:"backup_dir" mapstructure:"backup_dir"`

	// MaxAge is how old a dataset file may be before a remote refresh is
	// attempted (default 30 days).
	MaxAge time.Duration `json:"max_age" yaml:"max_age" mapstructure:"max_age"`

	// ReadAttempts caps the retries while waiting for the current file to
	// appear (default 3).
	ReadAttempts int `json:"read_attempts" yaml:"read_attempts" mapstructure:"read_attempts"`

	// ReadBackoff is the first retry delay; it doubles each attempt (default 1s).
	ReadBackoff time.Duration `json:"read_backoff" yaml:"read_backoff" mapstructure:"read_backoff"`

	// URL is an optional HTTP(S) location of a dataset document. When set it
	// is used as the remote source instead of the object store.
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
}

// ObjectStoreConfig holds settings for the S3-compatible remote dataset store.
type ObjectStoreConfig struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	Bucket          string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Region          string `json:"region" yaml:"region" mapstructure:"region"`
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	UseSSL          bool   `json:"use_ssl" yaml:"use_ssl" mapstructure:"use_ssl"`

	// CurrentPrefix is the folder holding the single newest dataset object
	// (default "current/").
	CurrentPrefix string `json:"current_prefix" yaml:"current_prefix" mapstructure:"current_prefix"`

	// BackupPrefix receives the object after it has been downloaded
	// (default "backup/").
	BackupPrefix string `json:"backup_prefix" yaml:"backup_prefix" mapstructure:"backup_prefix"`
}

// Enabled reports whether enough settings are present to contact the store.
func (c ObjectStoreConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// RankingConfig holds pipeline settings.
type RankingConfig struct {
	// ProximityPct is how close (in percent of the maximum) an area score
	// must be to count as a top area (default 5).
	ProximityPct float64 `json:"proximity_pct" yaml:"proximity_pct" mapstructure:"proximity_pct"`

	// FirstYear is the lower bound of the unfiltered all-time selection
	// (default 1970).
	FirstYear int `json:"first_year" yaml:"first_year" mapstructure:"first_year"`
}

// SnapshotConfig holds settings for the unfiltered ranking snapshot.
type SnapshotConfig struct {
	// Path is the JSON snapshot file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// IndexPath is the SQLite database indexing the snapshot by
	// institution and author.
	IndexPath string `json:"index_path" yaml:"index_path" mapstructure:"index_path"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// RateLimit is the sustained requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// Burst is the token bucket size for RateLimit.
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// CacheConfig holds settings for the optional ranking response cache.
type CacheConfig struct {
	// RedisAddr enables the cache when non-empty (host:port).
	RedisAddr string        `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	Password  string        `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB        int           `json:"db" yaml:"db" mapstructure:"db"`
	TTL       time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// Config groups every stage configuration.
type Config struct {
	Log         LogConfig         `json:"log" yaml:"log" mapstructure:"log"`
	Data        DataConfig        `json:"data" yaml:"data" mapstructure:"data"`
	ObjectStore ObjectStoreConfig `json:"object_store" yaml:"object_store" mapstructure:"object_store"`
	Ranking     RankingConfig     `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Snapshot    SnapshotConfig    `json:"snapshot" yaml:"snapshot" mapstructure:"snapshot"`
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `json:"cache" yaml:"cache" mapstructure:"cache"`
}
