// Package identity maps the many names a show is released under onto one
// canonical series identity. Resolve only reads; Commit persists what a
// resolution learned.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/normalize"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/tmdb"
)

var ErrNoMatch = errors.New("no series identity matched")

// popularityWeight keeps popularity a tiebreak below any similarity difference
const popularityWeight = 1.0 / 10000

type Searcher interface {
	SearchTv(ctx context.Context, query string) ([]tmdb.TvResult, error)
}

type ExternalIDLookup interface {
	ExternalIDs(ctx context.Context, id int32) (tmdb.ExternalIDs, error)
}

type Source string

const (
	SourceAlias    Source = "alias"
	SourceIdentity Source = "identity"
	SourceProvider Source = "provider"
)

// Query holds the raw names a file offers for its show, most specific first
type Query struct {
	Candidates []string
	YearHint   *int32
}

// Resolution is the outcome of Resolve. Identity has no ID when it came from
// the provider and has not been committed yet.
type Resolution struct {
	Identity   model.SeriesIdentity
	NewAliases []model.SeriesAlias
	Source     Source
}

type Resolver struct {
	store    storage.SeriesIdentityStorage
	searcher Searcher
	ids      ExternalIDLookup
	now      func() time.Time
}

func New(store storage.SeriesIdentityStorage, searcher Searcher, ids ExternalIDLookup) *Resolver {
	return &Resolver{
		store:    store,
		searcher: searcher,
		ids:      ids,
		now:      time.Now,
	}
}

type candidate struct {
	raw        string
	normalized string
}

// Resolve finds the identity for a query without writing anything. Local
// aliases are tried first, then stored identities, then a provider search.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	log := logger.FromCtx(ctx)

	candidates := prepare(q.Candidates)
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}

	for _, c := range candidates {
		matches, err := r.store.ListSeriesIdentitiesByAlias(ctx, c.normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to look up alias %q: %w", c.normalized, err)
		}
		if identity := pickIdentity(matches, q.YearHint); identity != nil {
			log.Debugw("series resolved by alias", "alias", c.normalized, "tmdb_id", identity.TmdbID)
			return &Resolution{Identity: *identity, Source: SourceAlias}, nil
		}
	}

	for _, c := range candidates {
		identity, err := r.store.FindSeriesIdentity(ctx, c.normalized, q.YearHint)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up identity %q: %w", c.normalized, err)
		}

		log.Debugw("series resolved by identity", "title", c.normalized, "tmdb_id", identity.TmdbID)
		return &Resolution{
			Identity:   *identity,
			NewAliases: aliases(candidates),
			Source:     SourceIdentity,
		}, nil
	}

	return r.search(ctx, candidates)
}

func (r *Resolver) search(ctx context.Context, candidates []candidate) (*Resolution, error) {
	log := logger.FromCtx(ctx)

	var results []tmdb.TvResult
	for _, c := range candidates {
		res, err := r.searcher.SearchTv(ctx, c.normalized)
		if err != nil {
			log.Warnw("series search failed", "query", c.normalized, "error", err)
			continue
		}
		results = append(results, res...)
	}

	best, ok := rank(candidates, results)
	if !ok {
		return nil, ErrNoMatch
	}

	identity := model.SeriesIdentity{
		NormalizedTitle: normalize.Title(best.Name),
		Year:            best.Year(),
		TmdbID:          best.ID,
		CanonicalTitle:  best.Name,
	}
	if identity.NormalizedTitle == "" {
		identity.NormalizedTitle = candidates[0].normalized
	}
	verified := r.now().UTC()
	identity.LastVerifiedAt = &verified

	external, err := r.ids.ExternalIDs(ctx, best.ID)
	if err != nil {
		log.Warnw("failed to get series external ids", "tmdb_id", best.ID, "error", err)
	} else if imdb := external.Imdb(); imdb != "" {
		identity.ImdbID = &imdb
	}

	learned := aliases(append(candidates, candidate{raw: best.Name, normalized: normalize.Title(best.Name)}))

	log.Debugw("series resolved by search", "title", best.Name, "tmdb_id", best.ID)
	return &Resolution{
		Identity:   identity,
		NewAliases: learned,
		Source:     SourceProvider,
	}, nil
}

// Commit stores the identity and aliases a resolution produced and returns
// the persisted identity.
func (r *Resolver) Commit(ctx context.Context, res *Resolution) (*model.SeriesIdentity, error) {
	identity := res.Identity

	if res.Source == SourceProvider {
		stored, err := r.store.UpsertSeriesIdentity(ctx, identity)
		if err != nil {
			return nil, fmt.Errorf("failed to store series identity: %w", err)
		}
		identity = *stored
	}

	if len(res.NewAliases) > 0 {
		added, err := r.store.AddSeriesAliases(ctx, identity.ID, res.NewAliases...)
		if err != nil {
			return nil, fmt.Errorf("failed to store series aliases: %w", err)
		}
		if added > 0 {
			logger.FromCtx(ctx).Debugw("learned series aliases", "identity_id", identity.ID, "added", added)
		}
	}

	return &identity, nil
}

// ResolveAndCommit is Resolve followed by Commit
func (r *Resolver) ResolveAndCommit(ctx context.Context, q Query) (*model.SeriesIdentity, error) {
	res, err := r.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	return r.Commit(ctx, res)
}

func prepare(raw []string) []candidate {
	seen := make(map[string]struct{}, len(raw))
	out := make([]candidate, 0, len(raw))
	for _, s := range raw {
		n := normalize.Title(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, candidate{raw: s, normalized: n})
	}
	return out
}

func aliases(candidates []candidate) []model.SeriesAlias {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]model.SeriesAlias, 0, len(candidates))
	for _, c := range candidates {
		if c.normalized == "" {
			continue
		}
		if _, ok := seen[c.normalized]; ok {
			continue
		}
		seen[c.normalized] = struct{}{}
		out = append(out, model.SeriesAlias{AliasRaw: c.raw, AliasNormalized: c.normalized})
	}
	return out
}

// pickIdentity chooses among identities sharing an alias. The identity whose
// year matches the hint wins, otherwise the oldest one.
func pickIdentity(matches []*model.SeriesIdentity, yearHint *int32) *model.SeriesIdentity {
	if len(matches) == 0 {
		return nil
	}
	if yearHint != nil {
		for _, m := range matches {
			if m.Year != nil && *m.Year == *yearHint {
				return m
			}
		}
	}

	lowest := matches[0]
	for _, m := range matches[1:] {
		if m.ID < lowest.ID {
			lowest = m
		}
	}
	return lowest
}

// rank scores every result by its best title similarity to any candidate plus
// a popularity tiebreak. Equal scores keep the first result seen.
func rank(candidates []candidate, results []tmdb.TvResult) (tmdb.TvResult, bool) {
	var best tmdb.TvResult
	bestScore := -1.0
	found := false

	for _, res := range results {
		names := []string{normalize.Title(res.Name)}
		if res.OriginalName != "" && res.OriginalName != res.Name {
			names = append(names, normalize.Title(res.OriginalName))
		}

		similarity := 0.0
		for _, c := range candidates {
			for _, n := range names {
				similarity = max(similarity, normalize.Similarity(c.normalized, n))
			}
		}

		score := similarity + res.Popularity*popularityWeight
		if score > bestScore {
			best = res
			bestScore = score
			found = true
		}
	}

	return best, found
}
