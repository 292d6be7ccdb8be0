// Package config assembles runtime configuration: built-in defaults, an
// optional YAML file, then environment variables, later sources winning.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the repository stack.
type Config struct {
	// StorageDriver selects the row engine: memory, sqlite, or postgres.
	StorageDriver string `env:"TRC_STORAGE_DRIVER" yaml:"storageDriver"`
	SQLitePath    string `env:"TRC_SQLITE_PATH" yaml:"sqlitePath"`
	PostgresDSN   string `env:"TRC_POSTGRES_DSN" yaml:"postgresDSN"`

	// VersionDriver selects the snapshot log: none, memory, sqlite, or
	// archive (blob-backed).
	VersionDriver     string `env:"TRC_VERSION_DRIVER" yaml:"versionDriver"`
	VersionSQLitePath string `env:"TRC_VERSION_SQLITE_PATH" yaml:"versionSqlitePath"`
	VersionPrefix     string `env:"TRC_VERSION_PREFIX" yaml:"versionPrefix"`

	// BlobDriver selects the archive backend: fs, s3, or memory.
	BlobDriver     string `env:"TRC_BLOB_DRIVER" yaml:"blobDriver"`
	BlobFSRoot     string `env:"TRC_BLOB_FS_ROOT" yaml:"blobFsRoot"`
	S3Bucket       string `env:"TRC_BLOB_S3_BUCKET" yaml:"s3Bucket"`
	S3Region       string `env:"TRC_BLOB_S3_REGION" yaml:"s3Region"`
	S3Endpoint     string `env:"TRC_BLOB_S3_ENDPOINT" yaml:"s3Endpoint"`
	S3PathStyle    bool   `env:"TRC_BLOB_S3_PATH_STYLE" yaml:"s3PathStyle"`
	S3AccessKeyID  string `env:"TRC_BLOB_S3_ACCESS_KEY_ID" yaml:"s3AccessKeyId"`
	S3SecretKey    string `env:"TRC_BLOB_S3_SECRET_ACCESS_KEY" yaml:"s3SecretAccessKey"`
	S3SessionToken string `env:"TRC_BLOB_S3_SESSION_TOKEN" yaml:"s3SessionToken"`

	CacheSize   int           `env:"TRC_CACHE_SIZE" yaml:"cacheSize"`
	CacheTTL    time.Duration `env:"TRC_CACHE_TTL" yaml:"cacheTtl"`
	PageSize    int           `env:"TRC_PAGE_SIZE" yaml:"pageSize"`
	LoadTimeout time.Duration `env:"TRC_LOAD_TIMEOUT" yaml:"loadTimeout"`
	IOWorkers   int           `env:"TRC_IO_WORKERS" yaml:"ioWorkers"`
	IOQueue     int           `env:"TRC_IO_QUEUE" yaml:"ioQueue"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StorageDriver: "sqlite",
		SQLitePath:    "trc.db",
		VersionDriver: "sqlite",
		BlobDriver:    "fs",
		CacheSize:     512,
		CacheTTL:      10 * time.Minute,
		PageSize:      50,
		LoadTimeout:   10 * time.Second,
		IOWorkers:     4,
		IOQueue:       64,
	}
}

// Load builds configuration from defaults, the YAML file at path (skipped
// when path is empty or the file does not exist), and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
