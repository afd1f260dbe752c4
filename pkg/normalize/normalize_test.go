package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "The Show", want: "the show"},
		{name: "dotted", input: "the.show", want: "the show"},
		{name: "year in parens", input: "THE SHOW (2020)", want: "the show"},
		{name: "bare year", input: "The Show 2020", want: "the show"},
		{name: "release noise", input: "The.Show.S01.1080p.WEB-DL.x264-GROUP", want: "the show group"},
		{name: "bracket group", input: "[SubsPlease] The Show [1080p]", want: "the show"},
		{name: "season folder", input: "The Show Season 2 Complete", want: "the show"},
		{name: "apostrophe", input: "Grey's Anatomy", want: "greys anatomy"},
		{name: "accents", input: "Amélie", want: "amelie"},
		{name: "colon", input: "Star Wars: Andor", want: "star wars andor"},
		{name: "empty", input: "", want: ""},
		{name: "only noise", input: "1080p BluRay", want: ""},
		{name: "noise inside word kept", input: "Webster", want: "webster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.input))
		})
	}
}

func TestTitle_VariantsConverge(t *testing.T) {
	want := Title("The Show")
	for _, v := range []string{"the.show", "THE SHOW (2020)", "The_Show"} {
		assert.Equal(t, want, Title(v), v)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("the show", "the show"))
	assert.Equal(t, 1.0, Similarity("show the", "the show"))
	assert.Equal(t, 0.5, Similarity("the show", "the show returns again"))
	assert.Equal(t, 0.5, Similarity("the show returns again", "the show"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("", "the show"))
}

func TestSimilarity_Asymmetric(t *testing.T) {
	// duplicate tokens in a are counted once
	assert.Equal(t, 1.0/3.0, Similarity("show show", "the show again"))
	assert.Equal(t, 1.0/3.0, Similarity("the show again", "show show"))
}

func TestYear(t *testing.T) {
	tests := []struct {
		input  string
		want   int32
		wantOK bool
	}{
		{"Movie.2020.1080p", 2020, true},
		{"Movie (1999)", 1999, true},
		{"Movie 2001 2010", 2001, true},
		{"Movie.1080p", 0, false},
		{"Movie.12020", 0, false},
		{"2160p", 0, false},
		{"1850", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Year(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
