// Package metadata caches provider lookups with a time-to-live per lookup
// kind. The cache only saves provider calls; a cold cache returns the same
// results.
package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kasuboski/medialink/pkg/cache"
	"github.com/kasuboski/medialink/pkg/tmdb"
	"golang.org/x/sync/singleflight"
)

type Kind string

const (
	KindMovie    Kind = "movie"
	KindShow     Kind = "tv"
	KindExternal Kind = "tv-external"
	KindSeason   Kind = "season"
	KindEpisode  Kind = "episode"
)

// TTL is how long entries of each kind stay valid
type TTL struct {
	Movie   time.Duration
	Show    time.Duration
	Season  time.Duration
	Episode time.Duration
}

func DefaultTTL() TTL {
	return TTL{
		Movie:   7 * 24 * time.Hour,
		Show:    3 * 24 * time.Hour,
		Season:  24 * time.Hour,
		Episode: 6 * time.Hour,
	}
}

// Observer is told about every lookup so hit rates can be exported
type Observer interface {
	Hit(kind Kind)
	Miss(kind Kind)
}

type nopObserver struct{}

func (nopObserver) Hit(Kind)  {}
func (nopObserver) Miss(Kind) {}

type Cache struct {
	client   tmdb.ITmdb
	entries  *cache.Cache[string, any]
	group    singleflight.Group
	ttl      TTL
	observer Observer
}

type Option func(*Cache)

func WithTTL(ttl TTL) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithClock replaces the time source used for expiry
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.entries.WithClock(now)
	}
}

func New(client tmdb.ITmdb, opts ...Option) *Cache {
	c := &Cache{
		client:   client,
		entries:  cache.New[string, any](),
		ttl:      DefaultTTL(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func MovieKey(id int32) string {
	return fmt.Sprintf("%s:%d", KindMovie, id)
}

func ShowKey(id int32) string {
	return fmt.Sprintf("%s:%d", KindShow, id)
}

func ExternalIDsKey(id int32) string {
	return fmt.Sprintf("%s:%d", KindExternal, id)
}

func SeasonKey(id, season int32) string {
	return fmt.Sprintf("%s:%d:%d", KindSeason, id, season)
}

func EpisodeKey(id, season, episode int32) string {
	return fmt.Sprintf("%s:%d:%d:%d", KindEpisode, id, season, episode)
}

func (c *Cache) Movie(ctx context.Context, id int32) (tmdb.MovieDetails, error) {
	return getOrFetch(ctx, c, KindMovie, MovieKey(id), c.ttl.Movie, func(ctx context.Context) (tmdb.MovieDetails, error) {
		return c.client.GetMovie(ctx, id)
	})
}

func (c *Cache) Show(ctx context.Context, id int32) (tmdb.TvDetails, error) {
	return getOrFetch(ctx, c, KindShow, ShowKey(id), c.ttl.Show, func(ctx context.Context) (tmdb.TvDetails, error) {
		return c.client.GetTvShow(ctx, id)
	})
}

// ExternalIDs shares the show lifetime since both change together
func (c *Cache) ExternalIDs(ctx context.Context, id int32) (tmdb.ExternalIDs, error) {
	return getOrFetch(ctx, c, KindExternal, ExternalIDsKey(id), c.ttl.Show, func(ctx context.Context) (tmdb.ExternalIDs, error) {
		return c.client.GetTvExternalIds(ctx, id)
	})
}

func (c *Cache) Season(ctx context.Context, id, season int32) (tmdb.SeasonDetails, error) {
	return getOrFetch(ctx, c, KindSeason, SeasonKey(id, season), c.ttl.Season, func(ctx context.Context) (tmdb.SeasonDetails, error) {
		return c.client.GetTvSeason(ctx, id, season)
	})
}

func (c *Cache) Episode(ctx context.Context, id, season, episode int32) (tmdb.EpisodeDetails, error) {
	return getOrFetch(ctx, c, KindEpisode, EpisodeKey(id, season, episode), c.ttl.Episode, func(ctx context.Context) (tmdb.EpisodeDetails, error) {
		return c.client.GetTvEpisode(ctx, id, season, episode)
	})
}

// Invalidate drops a single key and reports whether it was cached
func (c *Cache) Invalidate(key string) bool {
	_, ok := c.entries.Get(key)
	c.entries.Delete(key)
	return ok
}

// InvalidateAll empties the cache and returns how many entries were dropped
func (c *Cache) InvalidateAll() int {
	n := c.entries.Size()
	c.entries.Clear()
	return n
}

// InvalidateShow drops every entry belonging to a show
func (c *Cache) InvalidateShow(id int32) int {
	show := ShowKey(id)
	external := ExternalIDsKey(id)
	season := cache.HasPrefix(fmt.Sprintf("%s:%d:", KindSeason, id))
	episode := cache.HasPrefix(fmt.Sprintf("%s:%d:", KindEpisode, id))

	return c.entries.DeleteFunc(func(key string) bool {
		return key == show || key == external || season(key) || episode(key)
	})
}

// Keys lists the live cache keys
func (c *Cache) Keys() []string {
	return c.entries.Keys()
}

// Purge drops expired entries
func (c *Cache) Purge() int {
	return c.entries.Purge()
}

func getOrFetch[T any](ctx context.Context, c *Cache, kind Kind, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := lookup[T](c, key); ok {
		c.observer.Hit(kind)
		return v, nil
	}
	c.observer.Miss(kind)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// a flight that finished between our miss and Do already stored it
		if v, ok := lookup[T](c, key); ok {
			return v, nil
		}

		res, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.SetWithTTL(key, res, ttl)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to fetch %s: %w", strings.ReplaceAll(key, ":", " "), err)
	}

	return v.(T), nil
}

func lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.entries.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
