// Package versions selects a version store backend from configuration.
package versions

import (
	"context"
	"fmt"

	"github.com/tcat-tamu/trc-sub000/internal/blob"
	"github.com/tcat-tamu/trc-sub000/internal/config"
	"github.com/tcat-tamu/trc-sub000/internal/infra/versions/archive"
	"github.com/tcat-tamu/trc-sub000/internal/infra/versions/memory"
	"github.com/tcat-tamu/trc-sub000/internal/infra/versions/sqlite"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// Driver identifies a concrete version store backend.
type Driver string

const (
	DriverNone    Driver = "none"    // history disabled
	DriverMemory  Driver = "memory"  // in-memory (tests)
	DriverSQLite  Driver = "sqlite"  // embedded sqlite table
	DriverArchive Driver = "archive" // blob-backed snapshot objects
)

// Open builds the configured version store. It returns a nil store when
// history is disabled.
func Open(ctx context.Context, cfg config.Config, table string) (repo.VersionStore, error) {
	switch Driver(cfg.VersionDriver) {
	case DriverNone, "":
		return nil, nil
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.Open(cfg.VersionSQLitePath, table)
	case DriverArchive:
		blobs, err := openBlob(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return archive.New(blobs, cfg.VersionPrefix), nil
	default:
		return nil, fmt.Errorf("unknown version driver %s", cfg.VersionDriver)
	}
}

func openBlob(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch blob.Driver(cfg.BlobDriver) {
	case blob.DriverFilesystem, "":
		return blob.NewFS(cfg.BlobFSRoot)
	case blob.DriverMemory:
		return blob.NewMemory(), nil
	case blob.DriverS3:
		return blob.NewS3(ctx, blob.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			SessionToken:    cfg.S3SessionToken,
			PathStyle:       cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.BlobDriver)
	}
}
