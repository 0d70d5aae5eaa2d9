package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/h2hmarketing/site/internal/config"
	"github.com/h2hmarketing/site/pkg/logger"
)

// New builds the configured backend, wrapped with metrics and logging.
// Missing Supabase secrets select the Disabled store with a warning
// rather than failing startup.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		s, err = NewSQLiteStore(cfg.SQLitePath)
	case config.BackendDisabled:
		s = Disabled{}
	case config.BackendSupabase:
		if !cfg.PersistenceConfigured() {
			log.Warn(ctx, "supabase environment variables not configured; database features will be disabled")
			s = Disabled{}
			break
		}
		s, err = NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseAnonKey,
			WithRequestTimeout(time.Duration(cfg.RequestTimeoutMS)*time.Millisecond))
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "record store ready", logger.String("backend", s.Name()))
	return Instrument(s, WithLogger(log)), nil
}
