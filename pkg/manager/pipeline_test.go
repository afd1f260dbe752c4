package manager

import (
	"testing"

	"github.com/kasuboski/medialink/config"
	"github.com/kasuboski/medialink/pkg/ledger"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickMovie(t *testing.T) {
	results := []tmdb.MovieResult{
		{ID: 1, Title: "Dune", ReleaseDate: "1984-12-14", Popularity: 20},
		{ID: 2, Title: "Dune", ReleaseDate: "2021-09-15", Popularity: 90},
		{ID: 3, Title: "Dune Drifter", ReleaseDate: "2020-06-01", Popularity: 5},
		{ID: 4, Title: "Dune Remastered", ReleaseDate: "1984-01-01", Popularity: 40},
	}

	tests := []struct {
		name string
		year *int32
		want int32
		ok   bool
	}{
		{name: "year filter then popularity", year: ptr(int32(1984)), want: 4, ok: true},
		{name: "no year picks most popular", want: 2, ok: true},
		{name: "year filter empty falls back to first", year: ptr(int32(1999)), want: 1, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickMovie(results, tt.year)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}

	_, ok := pickMovie(nil, nil)
	assert.False(t, ok)
}

func TestPickMovie_StableOnTies(t *testing.T) {
	results := []tmdb.MovieResult{
		{ID: 10, Popularity: 5},
		{ID: 11, Popularity: 5},
	}
	got, ok := pickMovie(results, nil)
	require.True(t, ok)
	assert.Equal(t, int32(10), got.ID)
}

func TestShowCandidates(t *testing.T) {
	tests := []struct {
		name   string
		source string
		hint   string
		root   string
		want   []string
	}{
		{
			name:   "show and season folders",
			source: "/src/tv/Severance (2022)/Season 1/Severance.S01E01.mkv",
			hint:   "Severance",
			root:   "/src/tv",
			want:   []string{"Severance", "Season 1", "Severance (2022)"},
		},
		{
			name:   "stops at mapping root",
			source: "/src/tv/Severance/Severance.S01E01.mkv",
			hint:   "Severance",
			root:   "/src/tv",
			want:   []string{"Severance", "Severance"},
		},
		{
			name:   "file directly in root",
			source: "/src/tv/Severance.S01E01.mkv",
			hint:   "Severance",
			root:   "/src/tv",
			want:   []string{"Severance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, showCandidates(tt.source, tt.hint, tt.root))
		})
	}
}

func TestYearHint(t *testing.T) {
	assert.Equal(t, ptr(int32(2022)), yearHint([]string{"Severance", "Season 1", "Severance (2022)"}))
	assert.Nil(t, yearHint([]string{"Severance", "Season 1"}))
}

func TestDetect(t *testing.T) {
	det, reason := detect(storage.MediaTypeMovies, "/src/movies/Heat.1995.mkv")
	assert.Equal(t, ledger.ReasonNone, reason)
	movie, ok := det.(movieDetection)
	require.True(t, ok)
	assert.Equal(t, "Heat", movie.hint.Title)

	det, reason = detect(storage.MediaTypeTvShows, "/src/tv/Show/Show.S02E03.mkv")
	assert.Equal(t, ledger.ReasonNone, reason)
	episode, ok := det.(episodeDetection)
	require.True(t, ok)
	assert.Equal(t, int32(2), episode.hint.Season)
	assert.Equal(t, int32(3), episode.hint.Episode)

	_, reason = detect(storage.MediaTypeTvShows, "/src/tv/Show/Bloopers.mkv")
	assert.Equal(t, ledger.ReasonEpisodeDetectionFailed, reason)

	det, reason = detect(storage.MediaTypeExtras, "/src/extras/anything.mkv")
	assert.Equal(t, ledger.ReasonNone, reason)
	assert.IsType(t, extraDetection{}, det)
}

func TestMappingFor(t *testing.T) {
	cfg := config.Config{Library: config.Library{Mappings: []config.FolderMapping{
		{Source: "/src", Destination: "/dst/all", MediaType: config.MediaTypeExtras},
		{Source: "/src/tv", Destination: "/dst/tv", MediaType: config.MediaTypeTvShows},
		{Source: "/src/movies/", Destination: "/dst/movies", MediaType: config.MediaTypeMovies},
	}}}

	mp, ok := mappingFor(cfg, "/src/tv/Show/Show.S01E01.mkv")
	require.True(t, ok)
	assert.Equal(t, "/dst/tv", mp.destination)
	assert.Equal(t, storage.MediaTypeTvShows, mp.mediaType)

	mp, ok = mappingFor(cfg, "/src/movies/Heat.1995.mkv")
	require.True(t, ok)
	assert.Equal(t, "/src/movies", mp.source)

	mp, ok = mappingFor(cfg, "/src/other.mkv")
	require.True(t, ok)
	assert.Equal(t, "/dst/all", mp.destination)

	_, ok = mappingFor(cfg, "/elsewhere/file.mkv")
	assert.False(t, ok)

	_, ok = mappingFor(cfg, "/src/tvshows/file.mkv")
	require.True(t, ok)
}

func TestDiff(t *testing.T) {
	processing := string(storage.FileStatusProcessing)
	success := string(storage.FileStatusSuccess)
	tracked := []*model.ScannedFile{
		{ID: 1, SourceFile: "/src/a.mkv", Status: success},
		{ID: 2, SourceFile: "/src/b.mkv", Status: success},
		{ID: 3, SourceFile: "/src/b.mkv", Status: processing},
		{ID: 4, SourceFile: "/src/d.mkv", Status: processing},
	}
	untracked, vanished, stalled := diff(tracked, []string{"/src/a.mkv", "/src/c.mkv", "/src/d.mkv"})
	assert.Equal(t, []string{"/src/c.mkv"}, untracked)
	require.Len(t, vanished, 2)
	assert.Equal(t, int32(2), vanished[0].ID)
	assert.Equal(t, int32(3), vanished[1].ID)
	require.Len(t, stalled, 1)
	assert.Equal(t, int32(4), stalled[0].ID)
}

func TestSplitSlots(t *testing.T) {
	rows := []*model.ScannedFile{
		{ID: 1, MediaType: string(storage.MediaTypeMovies), TmdbID: ptr(int32(5))},
		{ID: 2, MediaType: string(storage.MediaTypeMovies), TmdbID: ptr(int32(5))},
		{ID: 3, MediaType: string(storage.MediaTypeTvShows), TmdbID: ptr(int32(5)), SeasonNumber: ptr(int32(1)), EpisodeNumber: ptr(int32(1))},
		{ID: 4, MediaType: string(storage.MediaTypeTvShows), TmdbID: ptr(int32(5)), SeasonNumber: ptr(int32(1)), EpisodeNumber: ptr(int32(2))},
		{ID: 5, MediaType: string(storage.MediaTypeMovies)},
		{ID: 6, MediaType: string(storage.MediaTypeMovies)},
	}

	primaries, duplicates := splitSlots(rows)

	ids := func(rows []*model.ScannedFile) []int32 {
		var out []int32
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []int32{1, 3, 4, 5, 6}, ids(primaries))
	assert.Equal(t, []int32{2}, ids(duplicates))
}

func TestShowFolder(t *testing.T) {
	assert.Equal(t, "/src/tv/Show", showFolder("/src/tv/Show/Season 01/Show.S01E01.mkv"))
	assert.Equal(t, "/src/tv/Show", showFolder("/src/tv/Show/Specials/Show.S00E01.mkv"))
	assert.Equal(t, "/src/tv/Show", showFolder("/src/tv/Show/Show.S01E01.mkv"))
}
