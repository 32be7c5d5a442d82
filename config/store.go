package config

import (
	"context"

	"civicconnect-be/repository"
)

// OpenStore connects to the backing database selected by STORE_DRIVER and
// prepares its indexes or tables.
func OpenStore(ctx context.Context, cfg *Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		db, err := ConnectPostgres(cfg.PostgresDSN, false)
		if err != nil {
			return nil, err
		}
		s := repository.NewPostgresStore(db, cfg.RequestTimeout)
		if err := s.Migrate(); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil
	default:
		db, err := ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		s := repository.NewMongoStore(db, cfg.RequestTimeout)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil
	}
}
