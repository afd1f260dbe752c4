package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kasuboski/medialink/pkg/metadata"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/tmdb"
	"github.com/kasuboski/medialink/pkg/tmdb/mocks"
	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ptr[T any](v T) *T {
	return &v
}

func newResolver(t *testing.T) (*Resolver, storage.Storage, *mocks.MockITmdb) {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(ctx))

	client := mocks.NewMockITmdb(gomock.NewController(t))
	return New(store, client, metadata.New(client)), store, client
}

func TestResolve_AliasConvergence(t *testing.T) {
	ctx := context.Background()
	r, _, client := newResolver(t)

	client.EXPECT().SearchTv(gomock.Any(), "the show").Return([]tmdb.TvResult{
		{ID: 7, Name: "The Show Must Go On", FirstAirDate: "2011-03-01", Popularity: 50},
		{ID: 42, Name: "The Show", FirstAirDate: "2020-01-05", Popularity: 10},
	}, nil).Times(1)
	client.EXPECT().GetTvExternalIds(gomock.Any(), int32(42)).Return(tmdb.ExternalIDs{ID: 42, ImdbID: nullable.NewNullableWithValue("tt42")}, nil).Times(1)

	first, err := r.ResolveAndCommit(ctx, Query{Candidates: []string{"The Show"}})
	require.NoError(t, err)
	assert.Equal(t, int32(42), first.TmdbID)
	assert.Equal(t, "The Show", first.CanonicalTitle)
	assert.Equal(t, "tt42", *first.ImdbID)
	assert.Equal(t, int32(2020), *first.Year)

	for _, variant := range []string{"the.show", "THE SHOW (2020)"} {
		res, err := r.Resolve(ctx, Query{Candidates: []string{variant}})
		require.NoError(t, err)
		assert.Equal(t, SourceAlias, res.Source, variant)
		assert.Equal(t, int32(42), res.Identity.TmdbID, variant)
		assert.Equal(t, first.ID, res.Identity.ID, variant)
	}
}

func TestResolve_IdentityHitLearnsAliases(t *testing.T) {
	ctx := context.Background()
	r, store, _ := newResolver(t)

	stored, err := store.UpsertSeriesIdentity(ctx, model.SeriesIdentity{
		NormalizedTitle: "the office",
		TmdbID:          2316,
		CanonicalTitle:  "The Office",
	})
	require.NoError(t, err)

	res, err := r.Resolve(ctx, Query{Candidates: []string{"The.Office.", "Season 02", "The Office"}})
	require.NoError(t, err)
	assert.Equal(t, SourceIdentity, res.Source)
	assert.Equal(t, stored.ID, res.Identity.ID)
	require.Len(t, res.NewAliases, 1)
	assert.Equal(t, "the office", res.NewAliases[0].AliasNormalized)
	assert.Equal(t, "The.Office.", res.NewAliases[0].AliasRaw)

	aliases, err := store.ListSeriesAliases(ctx, stored.ID)
	require.NoError(t, err)
	assert.Empty(t, aliases, "resolve must not write")

	committed, err := r.Commit(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, committed.ID)

	aliases, err = store.ListSeriesAliases(ctx, stored.ID)
	require.NoError(t, err)
	assert.Len(t, aliases, 1)

	res, err = r.Resolve(ctx, Query{Candidates: []string{"the office"}})
	require.NoError(t, err)
	assert.Equal(t, SourceAlias, res.Source)
}

func TestResolve_ProviderLearnsCandidatesAndTitle(t *testing.T) {
	ctx := context.Background()
	r, store, client := newResolver(t)
	verifiedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return verifiedAt }

	client.EXPECT().SearchTv(gomock.Any(), "brba").Return(nil, nil)
	client.EXPECT().SearchTv(gomock.Any(), "breaking bad").Return([]tmdb.TvResult{
		{ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20", Popularity: 300},
	}, nil)
	client.EXPECT().GetTvExternalIds(gomock.Any(), int32(1396)).Return(tmdb.ExternalIDs{}, errors.New("unavailable"))

	res, err := r.Resolve(ctx, Query{Candidates: []string{"BrBa", "Breaking.Bad.1080p"}})
	require.NoError(t, err)
	assert.Equal(t, SourceProvider, res.Source)
	assert.Zero(t, res.Identity.ID)
	assert.Nil(t, res.Identity.ImdbID)

	var learned []string
	for _, a := range res.NewAliases {
		learned = append(learned, a.AliasNormalized)
	}
	assert.Equal(t, []string{"brba", "breaking bad"}, learned)

	identity, err := r.Commit(ctx, res)
	require.NoError(t, err)
	assert.NotZero(t, identity.ID)
	require.NotNil(t, identity.LastVerifiedAt)
	assert.True(t, verifiedAt.Equal(*identity.LastVerifiedAt))

	matches, err := store.ListSeriesIdentitiesByAlias(ctx, "brba")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int32(1396), matches[0].TmdbID)
}

func TestResolve_SearchErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	r, _, client := newResolver(t)

	client.EXPECT().SearchTv(gomock.Any(), "unknown show").Return(nil, errors.New("rate limited"))

	_, err := r.Resolve(ctx, Query{Candidates: []string{"Unknown Show"}})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolve_NoCandidates(t *testing.T) {
	r, _, _ := newResolver(t)

	_, err := r.Resolve(context.Background(), Query{Candidates: []string{"", "Season 1", "1080p"}})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestPickIdentity(t *testing.T) {
	us := &model.SeriesIdentity{ID: 2, Year: ptr(int32(2005)), TmdbID: 2316}
	uk := &model.SeriesIdentity{ID: 1, Year: ptr(int32(2001)), TmdbID: 2996}
	matches := []*model.SeriesIdentity{us, uk}

	assert.Nil(t, pickIdentity(nil, nil))
	assert.Equal(t, us, pickIdentity(matches, ptr(int32(2005))))
	assert.Equal(t, uk, pickIdentity(matches, ptr(int32(2001))))
	assert.Equal(t, uk, pickIdentity(matches, ptr(int32(1999))))
	assert.Equal(t, uk, pickIdentity(matches, nil))
}

func TestRank(t *testing.T) {
	candidates := prepare([]string{"The Office"})

	t.Run("similarity beats popularity", func(t *testing.T) {
		best, ok := rank(candidates, []tmdb.TvResult{
			{ID: 1, Name: "The Office Party", Popularity: 900},
			{ID: 2, Name: "The Office", Popularity: 1},
		})
		require.True(t, ok)
		assert.Equal(t, int32(2), best.ID)
	})

	t.Run("popularity breaks similarity ties", func(t *testing.T) {
		best, ok := rank(candidates, []tmdb.TvResult{
			{ID: 1, Name: "The Office", Popularity: 5},
			{ID: 2, Name: "The Office", Popularity: 80},
		})
		require.True(t, ok)
		assert.Equal(t, int32(2), best.ID)
	})

	t.Run("equal scores keep the first result", func(t *testing.T) {
		best, ok := rank(candidates, []tmdb.TvResult{
			{ID: 3, Name: "The Office", Popularity: 20},
			{ID: 4, Name: "The Office", Popularity: 20},
		})
		require.True(t, ok)
		assert.Equal(t, int32(3), best.ID)
	})

	t.Run("original name counts", func(t *testing.T) {
		best, ok := rank(prepare([]string{"La Casa de Papel"}), []tmdb.TvResult{
			{ID: 5, Name: "Money Heist", OriginalName: "La Casa de Papel"},
			{ID: 6, Name: "Papel", Popularity: 10},
		})
		require.True(t, ok)
		assert.Equal(t, int32(5), best.ID)
	})

	t.Run("no results", func(t *testing.T) {
		_, ok := rank(candidates, nil)
		assert.False(t, ok)
	})
}
