package tmdb

import (
	"strconv"
	"strings"

	"github.com/oapi-codegen/nullable"
)

type MovieResult struct {
	ID            int32   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Popularity    float64 `json:"popularity"`
}

func (r MovieResult) Year() *int32 {
	return yearFromDate(r.ReleaseDate)
}

type TvResult struct {
	ID           int32   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

func (r TvResult) Year() *int32 {
	return yearFromDate(r.FirstAirDate)
}

type Genre struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type MovieDetails struct {
	ID          int32                     `json:"id"`
	Title       string                    `json:"title"`
	ReleaseDate string                    `json:"release_date"`
	ImdbID      nullable.Nullable[string] `json:"imdb_id,omitempty"`
	Genres      []Genre                   `json:"genres"`
	Runtime     int32                     `json:"runtime"`
	Overview    string                    `json:"overview"`
	Popularity  float64                   `json:"popularity"`
}

func (d MovieDetails) Year() *int32 {
	return yearFromDate(d.ReleaseDate)
}

func (d MovieDetails) Imdb() string {
	return stringValue(d.ImdbID)
}

type TvDetails struct {
	ID              int32   `json:"id"`
	Name            string  `json:"name"`
	OriginalName    string  `json:"original_name"`
	FirstAirDate    string  `json:"first_air_date"`
	Genres          []Genre `json:"genres"`
	NumberOfSeasons int32   `json:"number_of_seasons"`
	Overview        string  `json:"overview"`
	Popularity      float64 `json:"popularity"`
}

func (d TvDetails) Year() *int32 {
	return yearFromDate(d.FirstAirDate)
}

type ExternalIDs struct {
	ID     int32                     `json:"id"`
	ImdbID nullable.Nullable[string] `json:"imdb_id,omitempty"`
	TvdbID nullable.Nullable[int32]  `json:"tvdb_id,omitempty"`
}

func (e ExternalIDs) Imdb() string {
	return stringValue(e.ImdbID)
}

type EpisodeDetails struct {
	ID            int32  `json:"id"`
	Name          string `json:"name"`
	SeasonNumber  int32  `json:"season_number"`
	EpisodeNumber int32  `json:"episode_number"`
	AirDate       string `json:"air_date"`
	Overview      string `json:"overview"`
}

type SeasonDetails struct {
	ID           int32            `json:"id"`
	Name         string           `json:"name"`
	SeasonNumber int32            `json:"season_number"`
	AirDate      string           `json:"air_date"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

// GenreNames flattens genres to their names, preserving order.
func GenreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func stringValue(n nullable.Nullable[string]) string {
	if !n.IsSpecified() || n.IsNull() {
		return ""
	}
	v, err := n.Get()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func yearFromDate(date string) *int32 {
	if len(date) < 4 {
		return nil
	}
	y, err := strconv.ParseInt(date[:4], 10, 32)
	if err != nil || y == 0 {
		return nil
	}
	year := int32(y)
	return &year
}
