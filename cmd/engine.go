package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kasuboski/medialink/config"
	mhttp "github.com/kasuboski/medialink/pkg/http"
	mio "github.com/kasuboski/medialink/pkg/io"
	"github.com/kasuboski/medialink/pkg/manager"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite"
	"github.com/kasuboski/medialink/pkg/tmdb"
	"github.com/spf13/viper"
)

// engine is everything a command needs to run reconciliation
type engine struct {
	provider *config.Provider
	store    storage.Storage
	manager  *manager.MediaManager
	metrics  *manager.Metrics
}

func (e *engine) Close() error {
	if c, ok := e.store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	store, err := sqlite.New(ctx, cfg.Storage.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage connection: %w", err)
	}

	if err := store.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func newTmdbClient(cfg config.TMDB) (*tmdb.Client, error) {
	tmdbURL := url.URL{
		Scheme: cfg.Scheme,
		Host:   cfg.Host,
	}

	httpClient := mhttp.NewRateLimitedClient(
		mhttp.WithMaxRetries(cfg.MaxRetries),
		mhttp.WithBaseBackoff(cfg.BaseBackoff),
	)

	return tmdb.New(tmdbURL.String(), cfg.APIKey, tmdb.WithHTTPClient(httpClient))
}

// newEngine reads the configuration and wires storage, the provider client
// and the manager. Events go to notifier.
func newEngine(ctx context.Context, notifier notify.Notifier) (*engine, error) {
	provider, err := config.NewProvider(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to read configurations: %w", err)
	}
	cfg := provider.Current()

	tmdbClient, err := newTmdbClient(cfg.TMDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create tmdb client: %w", err)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	metrics := manager.NewMetrics(manager.NewRegistry())
	m := manager.New(
		tmdbClient,
		&mio.MediaFileSystem{},
		store,
		notifier,
		provider,
		manager.WithMetrics(metrics),
	)

	return &engine{
		provider: provider,
		store:    store,
		manager:  m,
		metrics:  metrics,
	}, nil
}
