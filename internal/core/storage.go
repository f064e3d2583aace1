package core

import (
	"fmt"

	"creaturecore/internal/infra/persistence/memory"
	"creaturecore/internal/infra/persistence/postgres"
	"creaturecore/internal/infra/persistence/sqlite"
	"creaturecore/pkg/domain"
)

// Storage driver identifiers accepted by Config.StorageDriver.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// OpenPersistentStore selects and opens the persistence backend named by the
// configuration, with the standard registry rules registered. An empty driver
// falls back to sqlite.
func OpenPersistentStore(cfg Config) (domain.PersistentStore, error) {
	engine := DefaultRulesEngine(cfg.MaxOwned)
	switch cfg.StorageDriver {
	case StorageMemory:
		return memory.NewStore(engine, cfg.MaxOwned), nil
	case StorageSQLite, "":
		return sqlite.NewStore(cfg.SQLitePath, engine, cfg.MaxOwned)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine, cfg.MaxOwned)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
