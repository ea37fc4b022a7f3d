package provider

import (
	"log/slog"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/dataprovider/postgres"
	"github.com/sho-platform/sho-core/pkg/logger"
)

// Factory builds data providers from validated configurations.
type Factory interface {
	Build(cfg Config) (dataprovider.DataProvider, error)
}

type factory struct {
	log *slog.Logger
}

func NewFactory(log *slog.Logger) Factory {
	return &factory{log: log.With(logger.Scope("provider.factory"))}
}

// Build constructs a provider for the configured kind. Kinds that have no
// implementation yet fail with ProviderInitError; the configuration itself
// may still be valid and storable.
func (f *factory) Build(cfg Config) (dataprovider.DataProvider, error) {
	switch cfg.Kind {
	case KindPostgres:
		if cfg.Postgres == nil || cfg.Postgres.DB == nil {
			return nil, &ProviderInitError{Kind: KindPostgres, Reason: "database handle is missing"}
		}
		return postgres.New(cfg.Postgres.DB, f.log, postgres.Options{
			CacheEnabled: cfg.Cache.Enabled,
			CacheTTL:     cfg.Cache.TTL,
		}), nil
	case KindNotion, KindAirtable, KindSanity:
		return nil, &ProviderInitError{Kind: cfg.Kind, Reason: "backend is not implemented yet"}
	default:
		return nil, &ProviderInitError{Kind: cfg.Kind, Reason: "unknown provider kind"}
	}
}
