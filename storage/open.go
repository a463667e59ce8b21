package storage

import (
	"fmt"

	"github.com/richinex/tinytales/config"
)

// Open builds the store and counter selected by cfg.Backend.
// Callers own the returned Store and must Close it.
func Open(cfg config.Storage) (Store, Counter, error) {
	switch cfg.Backend {
	case "", "json":
		opt := WithAtomicWrites(cfg.AtomicWrites)
		return NewJSONStore(cfg.StoriesPath(), opt), NewJSONCounter(cfg.CounterPath(), opt), nil
	case "sqlite":
		db, err := OpenSQLite(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
