// Package blob selects and re-exports the archive storage backends.
package blob

import (
	"context"
	"fmt"
	"os"

	"creaturecore/internal/infra/blob/core"
	"creaturecore/internal/infra/blob/fs"
	"creaturecore/internal/infra/blob/memory"
	"creaturecore/internal/infra/blob/s3"
)

// Aliases so callers depend on a single package.
type (
	Store      = core.Store
	Driver     = core.Driver
	Info       = core.Info
	PutOptions = core.PutOptions
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// NewFilesystem returns a filesystem-backed store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewMemory returns an in-memory store.
func NewMemory() Store { return memory.New() }

// Open selects a Store implementation using environment variables.
//
//	CREATURECORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	CREATURECORE_BLOB_FS_ROOT: directory root when driver=fs (default ./archive)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("CREATURECORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("CREATURECORE_BLOB_FS_ROOT"))
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
