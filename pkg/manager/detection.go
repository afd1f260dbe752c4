package manager

import (
	"path/filepath"

	"github.com/kasuboski/medialink/pkg/ledger"
	"github.com/kasuboski/medialink/pkg/library"
	"github.com/kasuboski/medialink/pkg/storage"
)

// detection is what a file's name says it is. Exactly one of the concrete
// types below is produced for every tracked file.
type detection interface {
	detection()
}

type movieDetection struct {
	hint library.MovieHint
}

type episodeDetection struct {
	hint library.EpisodeHint
}

// extraDetection is for files that are tracked but never linked
type extraDetection struct{}

func (movieDetection) detection()   {}
func (episodeDetection) detection() {}
func (extraDetection) detection()   {}

// detect classifies a source file according to its mapping media type. A
// non-empty reason means detection failed.
func detect(mediaType storage.MediaType, sourceFile string) (detection, ledger.Reason) {
	switch mediaType {
	case storage.MediaTypeMovies:
		hint, ok := library.DetectMovie(filepath.Base(sourceFile))
		if !ok {
			return nil, ledger.ReasonMovieDetectionFailed
		}
		return movieDetection{hint: hint}, ledger.ReasonNone
	case storage.MediaTypeTvShows:
		hint, ok := library.DetectTvEpisode(sourceFile)
		if !ok {
			return nil, ledger.ReasonEpisodeDetectionFailed
		}
		return episodeDetection{hint: hint}, ledger.ReasonNone
	default:
		return extraDetection{}, ledger.ReasonNone
	}
}
