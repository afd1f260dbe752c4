package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestDetectMovie(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     MovieHint
	}{
		{
			name:     "dotted release",
			fileName: "The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv",
			want:     MovieHint{Title: "The Matrix", NormalizedTitle: "the matrix", Year: ptr(int32(1999))},
		},
		{
			name:     "parenthesized year",
			fileName: "Batman Begins (2005).mp4",
			want:     MovieHint{Title: "Batman Begins", NormalizedTitle: "batman begins", Year: ptr(int32(2005))},
		},
		{
			name:     "title that is a number",
			fileName: "1917.2019.2160p.mkv",
			want:     MovieHint{Title: "1917", NormalizedTitle: "", Year: ptr(int32(2019))},
		},
		{
			name:     "year-like title keeps its own year",
			fileName: "2001.A.Space.Odyssey.1968.mkv",
			want:     MovieHint{Title: "2001 A Space Odyssey", NormalizedTitle: "a space odyssey", Year: ptr(int32(1968))},
		},
		{
			name:     "year at end of stem",
			fileName: "Heat_1995.avi",
			want:     MovieHint{Title: "Heat", NormalizedTitle: "heat", Year: ptr(int32(1995))},
		},
		{
			name:     "no year falls back to stem",
			fileName: "Some.Movie.mkv",
			want:     MovieHint{Title: "Some Movie", NormalizedTitle: "some movie"},
		},
		{
			name:     "path is reduced to base name",
			fileName: "/mnt/source/Movies/Alien.1979.mkv",
			want:     MovieHint{Title: "Alien", NormalizedTitle: "alien", Year: ptr(int32(1979))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectMovie(tt.fileName)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectMovie_NoTitle(t *testing.T) {
	_, ok := DetectMovie("....mkv")
	assert.False(t, ok)

	_, ok = DetectMovie("")
	assert.False(t, ok)
}

func TestDetectTvEpisode(t *testing.T) {
	tests := []struct {
		name string
		path string
		want EpisodeHint
	}{
		{
			name: "single episode",
			path: "/src/The Show/Season 1/The.Show.S01E02.720p.mkv",
			want: EpisodeHint{TitleHint: "The Show", Season: 1, Episode: 2},
		},
		{
			name: "lower case marker",
			path: "the.show.s03e10.mkv",
			want: EpisodeHint{TitleHint: "the show", Season: 3, Episode: 10},
		},
		{
			name: "double episode",
			path: "The.Show.S01E02E03.mkv",
			want: EpisodeHint{TitleHint: "The Show", Season: 1, Episode: 2, Episode2: ptr(int32(3))},
		},
		{
			name: "dashed double episode",
			path: "The Show - S01E02-E03 - Title.mkv",
			want: EpisodeHint{TitleHint: "The Show", Season: 1, Episode: 2, Episode2: ptr(int32(3))},
		},
		{
			name: "second episode not after first is ignored",
			path: "The.Show.S01E05E02.mkv",
			want: EpisodeHint{TitleHint: "The Show", Season: 1, Episode: 5},
		},
		{
			name: "marker only",
			path: "/src/The Show/S02E01.mkv",
			want: EpisodeHint{TitleHint: "", Season: 2, Episode: 1},
		},
		{
			name: "cross notation",
			path: "The Show 2x05.mkv",
			want: EpisodeHint{TitleHint: "The Show", Season: 2, Episode: 5},
		},
		{
			name: "three digit episode",
			path: "Anime.S01E105.mkv",
			want: EpisodeHint{TitleHint: "Anime", Season: 1, Episode: 105},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectTvEpisode(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectTvEpisode_NoMarker(t *testing.T) {
	for _, p := range []string{
		"The.Matrix.1999.mkv",
		"Season 1 Extras.mkv",
		"Besso1e2.mkv",
	} {
		_, ok := DetectTvEpisode(p)
		assert.False(t, ok, p)
	}
}
