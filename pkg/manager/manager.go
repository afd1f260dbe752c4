package manager

import (
	"path/filepath"
	"strings"

	"github.com/kasuboski/medialink/config"
	"github.com/kasuboski/medialink/pkg/identity"
	mio "github.com/kasuboski/medialink/pkg/io"
	"github.com/kasuboski/medialink/pkg/ledger"
	"github.com/kasuboski/medialink/pkg/library"
	"github.com/kasuboski/medialink/pkg/metadata"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/symlink"
	"github.com/kasuboski/medialink/pkg/tmdb"
)

const defaultWorkers = 8

// ConfigSource supplies the configuration snapshot read at the start of each tick
type ConfigSource interface {
	Current() config.Config
}

type staticConfig config.Config

func (s staticConfig) Current() config.Config {
	return config.Config(s)
}

// StaticConfig serves a fixed configuration
func StaticConfig(c config.Config) ConfigSource {
	return staticConfig(c)
}

type MediaManager struct {
	tmdb     tmdb.ITmdb
	metadata *metadata.Cache
	resolver *identity.Resolver
	library  library.Library
	fs       mio.FileIO
	links    *symlink.Manager
	storage  storage.Storage
	ledger   *ledger.Ledger
	config   ConfigSource
	metrics  *Metrics
}

type Option func(*MediaManager)

// WithMetadataCache replaces the default metadata cache
func WithMetadataCache(c *metadata.Cache) Option {
	return func(m *MediaManager) {
		m.metadata = c
	}
}

// WithLibrary pins file discovery to lib instead of building it from the
// configured extensions on every tick.
func WithLibrary(lib library.Library) Option {
	return func(m *MediaManager) {
		m.library = lib
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *MediaManager) {
		m.metrics = metrics
	}
}

func New(tmdbClient tmdb.ITmdb, fileIO mio.FileIO, store storage.Storage, notifier notify.Notifier, cfg ConfigSource, opts ...Option) *MediaManager {
	m := &MediaManager{
		tmdb:    tmdbClient,
		fs:      fileIO,
		links:   symlink.New(fileIO),
		storage: store,
		ledger:  ledger.New(store, notifier),
		config:  cfg,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.metadata == nil {
		ttl := cacheTTL(cfg.Current().Manager.Cache)
		m.metadata = metadata.New(tmdbClient, metadata.WithTTL(ttl), metadata.WithObserver(m.metrics))
	}
	m.resolver = identity.New(store, tmdbClient, m.metadata)

	return m
}

// Metadata exposes the cache so it can be invalidated
func (m *MediaManager) Metadata() *metadata.Cache {
	return m.metadata
}

func (m *MediaManager) Ledger() *ledger.Ledger {
	return m.ledger
}

func (m *MediaManager) mediaLibrary(cfg config.Config) library.Library {
	if m.library != nil {
		return m.library
	}
	return library.New(cfg.Library.Extensions...)
}

func cacheTTL(c config.CacheTTL) metadata.TTL {
	ttl := metadata.DefaultTTL()
	if c.Movie > 0 {
		ttl.Movie = c.Movie
	}
	if c.Show > 0 {
		ttl.Show = c.Show
	}
	if c.Season > 0 {
		ttl.Season = c.Season
	}
	if c.Episode > 0 {
		ttl.Episode = c.Episode
	}
	return ttl
}

// mapping is a folder mapping with cleaned absolute paths
type mapping struct {
	source      string
	destination string
	mediaType   storage.MediaType
}

func newMapping(fm config.FolderMapping) mapping {
	return mapping{
		source:      absPath(fm.Source),
		destination: absPath(fm.Destination),
		mediaType:   storage.MediaType(fm.MediaType),
	}
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func mappings(cfg config.Config) []mapping {
	out := make([]mapping, 0, len(cfg.Library.Mappings))
	for _, fm := range cfg.Library.Mappings {
		out = append(out, newMapping(fm))
	}
	return out
}

// mappingFor finds the mapping whose source folder holds sourceFile. The
// deepest source folder wins when mappings are nested.
func mappingFor(cfg config.Config, sourceFile string) (mapping, bool) {
	var best mapping
	found := false
	for _, mp := range mappings(cfg) {
		if !isUnder(sourceFile, mp.source) {
			continue
		}
		if !found || len(mp.source) > len(best.source) {
			best = mp
			found = true
		}
	}
	return best, found
}

func isUnder(path, folder string) bool {
	return strings.HasPrefix(path, strings.TrimRight(folder, string(filepath.Separator))+string(filepath.Separator))
}

func workers(cfg config.Config) int {
	if cfg.Manager.Workers > 0 {
		return cfg.Manager.Workers
	}
	return defaultWorkers
}
