package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/machine"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.EventType
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newLedger(t *testing.T) (*Ledger, storage.Storage, *recorder) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(ctx))

	rec := &recorder{}
	return New(store, rec), store, rec
}

func ptr[T any](v T) *T {
	return &v
}

func TestLedger_Lifecycle(t *testing.T) {
	ctx := context.Background()
	l, store, rec := newLedger(t)

	file, err := l.CreateProcessingEntry(ctx, "/src/movies/Heat.1995.mkv", 2<<30, storage.MediaTypeMovies)
	require.NoError(t, err)
	assert.NotZero(t, file.ID)
	assert.Equal(t, string(storage.FileStatusProcessing), file.Status)

	outcome := Success("/dst/movies/Heat (1995)/Heat (1995) {imdb-tt0113277}.mkv")
	outcome.TmdbID = ptr(int32(949))
	outcome.ImdbID = ptr("tt0113277")
	outcome.Title = ptr("Heat")
	outcome.Year = ptr(int32(1995))
	outcome.Genres = []string{"Action", "Crime", "Drama"}

	update, err := l.UpdateProcessed(ctx, *file, outcome)
	require.NoError(t, err)
	assert.False(t, update.Downgraded)
	assert.Equal(t, string(storage.FileStatusSuccess), update.File.Status)
	assert.Equal(t, int32(1), update.File.VersionUpdated)
	assert.Equal(t, int32(1), update.File.UpdateToVersion)
	assert.Nil(t, update.File.Reason)

	stored, err := store.GetScannedFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, outcome.DestFile, stored.DestFile)
	assert.Equal(t, []string{"Action", "Crime", "Drama"}, DecodeGenres(stored.Genres))

	n, err := l.Remove(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, []notify.EventType{notify.FileAdded, notify.FileUpdated, notify.FileRemoved}, rec.types())
}

func TestLedger_FailedClearsDestination(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	file, err := l.CreateProcessingEntry(ctx, "/src/movies/unknown.mkv", 10, storage.MediaTypeMovies)
	require.NoError(t, err)

	update, err := l.UpdateProcessed(ctx, *file, Success("/dst/a.mkv"))
	require.NoError(t, err)

	update, err = l.UpdateProcessed(ctx, *update.File, Failed(ReasonMovieSearchNoMatch))
	require.NoError(t, err)
	assert.Nil(t, update.File.DestFile)
	require.NotNil(t, update.File.Reason)
	assert.Equal(t, string(ReasonMovieSearchNoMatch), *update.File.Reason)
	assert.Equal(t, int32(2), update.File.VersionUpdated)
}

func TestLedger_DestinationConflictDowngrades(t *testing.T) {
	ctx := context.Background()
	l, store, _ := newLedger(t)

	dest := "/dst/movies/Heat (1995)/Heat (1995).mkv"

	first, err := l.CreateProcessingEntry(ctx, "/src/a/Heat.1995.mkv", 1, storage.MediaTypeMovies)
	require.NoError(t, err)
	_, err = l.UpdateProcessed(ctx, *first, Success(dest))
	require.NoError(t, err)

	second, err := l.CreateProcessingEntry(ctx, "/src/b/Heat.1995.720p.mkv", 1, storage.MediaTypeMovies)
	require.NoError(t, err)
	update, err := l.UpdateProcessed(ctx, *second, Success(dest))
	require.NoError(t, err)
	assert.True(t, update.Downgraded)
	assert.Equal(t, string(storage.FileStatusDuplicate), update.File.Status)
	assert.Nil(t, update.File.DestFile)
	require.NotNil(t, update.File.Reason)
	assert.Equal(t, string(ReasonDestinationConflict), *update.File.Reason)

	stored, err := store.GetScannedFile(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(storage.FileStatusSuccess), stored.Status)
	assert.Equal(t, dest, *stored.DestFile)
}

func TestLedger_RejectsProcessingTarget(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newLedger(t)

	file, err := l.CreateProcessingEntry(ctx, "/src/a.mkv", 1, storage.MediaTypeExtras)
	require.NoError(t, err)

	_, err = l.UpdateProcessed(ctx, *file, Outcome{Status: storage.FileStatusProcessing})
	assert.ErrorIs(t, err, machine.ErrInvalidTransition)
}

func TestLedger_CompleteResync(t *testing.T) {
	ctx := context.Background()
	l, store, _ := newLedger(t)

	file, err := l.CreateProcessingEntry(ctx, "/src/tv/Show.S01E01.mkv", 1, storage.MediaTypeTvShows)
	require.NoError(t, err)
	update, err := l.UpdateProcessed(ctx, *file, Success("/dst/tv/old.mkv"))
	require.NoError(t, err)

	require.NoError(t, store.RequestResync(ctx, file.ID, storage.ResyncRequest{TmdbID: ptr(int32(5))}))
	require.NoError(t, store.RequestResync(ctx, file.ID, storage.ResyncRequest{}))

	due, err := store.ListResyncDue(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, update.File.VersionUpdated+1, due[0].UpdateToVersion)

	resynced, err := l.CompleteResync(ctx, *due[0], Success("/dst/tv/new.mkv"))
	require.NoError(t, err)
	assert.Equal(t, resynced.File.UpdateToVersion, resynced.File.VersionUpdated)

	due, err = store.ListResyncDue(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestLedger_PanickingNotifierDoesNotFailWrites(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(ctx))

	l := New(store, notify.NotifierFunc(func(context.Context, notify.Event) { panic("sink down") }))

	file, err := l.CreateProcessingEntry(ctx, "/src/a.mkv", 1, storage.MediaTypeUnknown)
	require.NoError(t, err)
	_, err = l.UpdateProcessed(ctx, *file, Outcome{Status: storage.FileStatusSuccess})
	require.NoError(t, err)
	_, err = l.Remove(ctx, file)
	require.NoError(t, err)
}

func TestLedger_OutcomeLogFieldsAreUnique(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar().With("source", "/src/movies/Heat.1995.mkv")
	ctx := logger.WithCtx(context.Background(), log)
	l, _, _ := newLedger(t)

	file, err := l.CreateProcessingEntry(ctx, "/src/movies/Heat.1995.mkv", 1024, storage.MediaTypeMovies)
	require.NoError(t, err)
	_, err = l.UpdateProcessed(ctx, *file, Failed(ReasonMovieDetectionFailed))
	require.NoError(t, err)

	entries := logs.FilterMessage("file processed").All()
	require.Len(t, entries, 1)

	seen := map[string]int{}
	for _, f := range entries[0].Context {
		seen[f.Key]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "field %q logged %d times", key, n)
	}
	assert.Equal(t, 1, seen["source"])
	assert.Equal(t, 1, seen["id"])
	assert.EqualValues(t, file.ID, entries[0].ContextMap()["id"])
}

func TestGenres(t *testing.T) {
	assert.Nil(t, DecodeGenres(nil))
	assert.Nil(t, DecodeGenres(ptr("not json")))
	assert.Equal(t, []string{"Sci-Fi & Fantasy"}, DecodeGenres(EncodeGenres([]string{"Sci-Fi & Fantasy"})))
	assert.Empty(t, DecodeGenres(EncodeGenres([]string{})))
}

