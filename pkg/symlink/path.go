package symlink

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	illegalChars     = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	repeatedDashes   = regexp.MustCompile(`-{2,}`)
	repeatedSpaces   = regexp.MustCompile(`\s{2,}`)
	unknownSegment   = "Unknown"
	seasonDirPattern = "Season %02d"
)

// Metadata is either MovieMetadata or EpisodeMetadata.
type Metadata interface {
	segments(ext string) []string
}

type MovieMetadata struct {
	Title  string
	Year   *int32
	ImdbID string
	TmdbID int32
}

type EpisodeMetadata struct {
	ShowTitle    string
	ShowYear     *int32
	Season       int32
	Episode      int32
	Episode2     *int32
	EpisodeTitle string
}

// BuildDestinationPath returns where the link for sourceFile belongs inside
// destinationFolder.
func BuildDestinationPath(sourceFile, destinationFolder string, metadata Metadata) string {
	ext := strings.ToLower(filepath.Ext(sourceFile))
	parts := append([]string{destinationFolder}, metadata.segments(ext)...)
	return filepath.Join(parts...)
}

func (m MovieMetadata) segments(ext string) []string {
	folder := titleWithYear(m.Title, m.Year)

	name := folder
	switch {
	case m.ImdbID != "":
		name = fmt.Sprintf("%s {imdb-%s}", name, m.ImdbID)
	case m.TmdbID != 0:
		name = fmt.Sprintf("%s {tmdb-%d}", name, m.TmdbID)
	}

	return []string{SanitizeSegment(folder), SanitizeSegment(name) + ext}
}

func (m EpisodeMetadata) segments(ext string) []string {
	marker := fmt.Sprintf("S%02dE%02d", m.Season, m.Episode)
	if m.Episode2 != nil {
		marker = fmt.Sprintf("%sE%02d", marker, *m.Episode2)
	}

	name := fmt.Sprintf("%s - %s", m.ShowTitle, marker)
	if strings.TrimSpace(m.EpisodeTitle) != "" {
		name = fmt.Sprintf("%s - %s", name, m.EpisodeTitle)
	}

	return []string{
		SanitizeSegment(titleWithYear(m.ShowTitle, m.ShowYear)),
		fmt.Sprintf(seasonDirPattern, m.Season),
		SanitizeSegment(name) + ext,
	}
}

func titleWithYear(title string, year *int32) string {
	if year == nil || *year == 0 {
		return title
	}
	return fmt.Sprintf("%s (%d)", title, *year)
}

// SanitizeSegment makes s safe to use as a single path segment.
func SanitizeSegment(s string) string {
	s = illegalChars.ReplaceAllString(s, "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = repeatedSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ". ")
	if s == "" {
		return unknownSegment
	}
	return s
}
