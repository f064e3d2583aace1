package core

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries deployment settings parsed from the environment.
type Config struct {
	// MaxOwned caps the number of creatures any single account may hold.
	// Zero disables the cap.
	MaxOwned uint32 `env:"CREATURECORE_MAX_OWNED" envDefault:"0"`

	// StorageDriver selects the persistence backend: memory, sqlite, or
	// postgres.
	StorageDriver string `env:"CREATURECORE_STORAGE_DRIVER" envDefault:"sqlite"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `env:"CREATURECORE_SQLITE_PATH" envDefault:"creaturecore.db"`

	// PostgresDSN is the connection string used by the postgres driver.
	PostgresDSN string `env:"CREATURECORE_POSTGRES_DSN"`

	// BlobDriver selects the snapshot archive backend: fs, s3, or memory.
	// Empty leaves archive selection to the blob factory defaults.
	BlobDriver string `env:"CREATURECORE_BLOB_DRIVER"`

	// BlobFSRoot is the directory root used when BlobDriver is fs.
	BlobFSRoot string `env:"CREATURECORE_BLOB_FS_ROOT"`
}

// LoadConfig parses Config from process environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown driver selections early.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case "", "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	return nil
}
