package library

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kasuboski/medialink/pkg/normalize"
)

var (
	movieYearRegex = regexp.MustCompile(`^(.+?)[\s._\-\[\](){}]+((?:19|20)\d{2})(?:[\s._\-\[\](){}]|$)`)
	episodeRegex   = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,2})[\s._-]?e(\d{1,3})(?:[\s._-]?-?[\s._-]?e(\d{1,3}))?(?:[^0-9]|$)`)
	crossRegex     = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{1,2})x(\d{2,3})(?:-(\d{2,3}))?(?:[^0-9]|$)`)
	separatorRegex = regexp.MustCompile(`[._\[\](){}]+`)
	spaceRegex     = regexp.MustCompile(`\s+`)
)

// MovieHint is what a movie file name says about itself.
type MovieHint struct {
	Title           string
	NormalizedTitle string
	Year            *int32
}

// EpisodeHint is what an episode file name says about itself.
type EpisodeHint struct {
	TitleHint string
	Season    int32
	Episode   int32
	Episode2  *int32
}

// DetectMovie extracts a title and year from a movie file name. When no year
// is present the whole stem is used as the title.
func DetectMovie(fileName string) (MovieHint, bool) {
	stem := stripExtension(filepath.Base(fileName))

	if m := movieYearRegex.FindStringSubmatch(stem); m != nil {
		title := cleanTitle(m[1])
		if title != "" {
			year, err := strconv.ParseInt(m[2], 10, 32)
			if err == nil {
				y := int32(year)
				return MovieHint{
					Title:           title,
					NormalizedTitle: normalize.Title(title),
					Year:            &y,
				}, true
			}
		}
	}

	title := cleanTitle(stem)
	if title == "" {
		return MovieHint{}, false
	}

	return MovieHint{
		Title:           title,
		NormalizedTitle: normalize.Title(title),
	}, true
}

// DetectTvEpisode finds a season and episode marker (S01E02, S01E02E03,
// S01E02-E03 or 1x02) in the file name of the path.
func DetectTvEpisode(filePath string) (EpisodeHint, bool) {
	name := stripExtension(filepath.Base(filePath))

	loc := episodeRegex.FindStringSubmatchIndex(name)
	if loc == nil {
		loc = crossRegex.FindStringSubmatchIndex(name)
	}
	if loc == nil {
		return EpisodeHint{}, false
	}

	season, err := strconv.ParseInt(name[loc[2]:loc[3]], 10, 32)
	if err != nil {
		return EpisodeHint{}, false
	}
	episode, err := strconv.ParseInt(name[loc[4]:loc[5]], 10, 32)
	if err != nil {
		return EpisodeHint{}, false
	}

	hint := EpisodeHint{
		TitleHint: cleanTitle(name[:loc[0]]),
		Season:    int32(season),
		Episode:   int32(episode),
	}

	if loc[6] >= 0 {
		second, err := strconv.ParseInt(name[loc[6]:loc[7]], 10, 32)
		if err == nil && int32(second) > hint.Episode {
			e2 := int32(second)
			hint.Episode2 = &e2
		}
	}

	return hint, true
}

func cleanTitle(s string) string {
	s = separatorRegex.ReplaceAllString(s, " ")
	s = spaceRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, " -")
}

func stripExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, " ") {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
