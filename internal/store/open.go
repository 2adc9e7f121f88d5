package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/ircweather/internal/config"
	"github.com/i474232898/ircweather/internal/weather"
)

// LocationStoreCloser is a LocationStore holding resources until Close.
type LocationStoreCloser interface {
	weather.LocationStore
	Close() error
}

// Open builds the location store selected by cfg.Driver.
func Open(cfg config.StoreConfig, logger *zap.Logger) (LocationStoreCloser, error) {
	switch cfg.Driver {
	case config.StoreMemory, "":
		return NewMemoryLocationStore(), nil
	case config.StoreSQLite:
		s, err := NewSQLiteLocationStore(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreValkey:
		client, err := NewValkeyClient(cfg.ValkeyAddr)
		if err != nil {
			return nil, fmt.Errorf("connect valkey %s: %w", cfg.ValkeyAddr, err)
		}
		return NewValkeyLocationStore(client, cfg.ValkeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
