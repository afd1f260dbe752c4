package manager

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kasuboski/medialink/pkg/identity"
	mio "github.com/kasuboski/medialink/pkg/io"
	"github.com/kasuboski/medialink/pkg/ledger"
	"github.com/kasuboski/medialink/pkg/library"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/normalize"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/symlink"
	"github.com/kasuboski/medialink/pkg/tmdb"
	"go.uber.org/zap"
)

// processFile takes a newly observed source file through detection,
// metadata resolution and linking, leaving its ledger row in a terminal state.
func (m *MediaManager) processFile(ctx context.Context, sourceFile string, mp mapping) error {
	log := logger.FromCtx(ctx, "source", sourceFile)
	ctx = logger.WithCtx(ctx, log)

	info, err := m.fs.Stat(sourceFile)
	if mio.IsNotExist(err) {
		log.Debug("source vanished before processing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	file, err := m.ledger.CreateProcessingEntry(ctx, sourceFile, info.Size(), mp.mediaType)
	if err != nil {
		return err
	}

	return m.process(ctx, *file, mp)
}

// resumeFile finishes a row an earlier tick left in processing. The second
// half of a combined episode copies its first half, anything else runs
// through the pipeline again on the same row.
func (m *MediaManager) resumeFile(ctx context.Context, file model.ScannedFile, mp mapping) error {
	log := logger.FromCtx(ctx, "source", file.SourceFile)
	ctx = logger.WithCtx(ctx, log)

	info, err := m.fs.Stat(file.SourceFile)
	if mio.IsNotExist(err) {
		log.Debug("source vanished before resuming")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	file.FileSize = info.Size()

	rows, err := m.storage.ListScannedFiles(ctx, storage.ScannedFileFilter{SourceFile: file.SourceFile})
	if err != nil {
		return fmt.Errorf("failed to list rows of source: %w", err)
	}
	for _, first := range rows {
		if first.ID == file.ID || first.EpisodeNumber2 == nil || first.DestFile == nil ||
			storage.FileStatus(first.Status) != storage.FileStatusSuccess {
			continue
		}
		log.Infow("resuming second episode of combined file", "id", file.ID, "first_id", first.ID)
		_, err := m.finish(ctx, file, secondEpisode(*first), false)
		return err
	}

	log.Infow("resuming file left in processing", "id", file.ID)
	return m.process(ctx, file, mp)
}

// process detects what a processing row holds and settles it
func (m *MediaManager) process(ctx context.Context, file model.ScannedFile, mp mapping) error {
	det, reason := detect(mp.mediaType, file.SourceFile)
	if reason != ledger.ReasonNone {
		_, err := m.finish(ctx, file, ledger.Failed(reason), false)
		return err
	}

	switch d := det.(type) {
	case extraDetection:
		_, err := m.finish(ctx, file, ledger.Outcome{Status: storage.FileStatusSuccess}, false)
		return err
	case movieDetection:
		return m.processMovie(ctx, file, d.hint, mp)
	case episodeDetection:
		return m.processEpisode(ctx, file, d.hint, mp)
	default:
		return fmt.Errorf("unhandled detection %T", det)
	}
}

func (m *MediaManager) processMovie(ctx context.Context, file model.ScannedFile, hint library.MovieHint, mp mapping) error {
	log := logger.FromCtx(ctx)

	result, ok := m.searchMovie(ctx, hint)
	if !ok {
		_, err := m.finish(ctx, file, ledger.Failed(ledger.ReasonMovieSearchNoMatch), false)
		return err
	}

	details, err := m.metadata.Movie(ctx, result.ID)
	if err != nil {
		log.Warnw("failed to get movie details", zap.Int32("tmdb_id", result.ID), zap.Error(err))
		outcome := ledger.Failed(ledger.ReasonMovieDetailsFailed)
		outcome.TmdbID = &result.ID
		_, err := m.finish(ctx, file, outcome, false)
		return err
	}

	meta := movieMetadata(details, hint.Year)
	dest := symlink.BuildDestinationPath(file.SourceFile, mp.destination, meta)

	outcome, created := m.link(ctx, file.SourceFile, dest)
	withMovie(&outcome, details, meta)

	_, err = m.finish(ctx, file, outcome, created)
	return err
}

func (m *MediaManager) searchMovie(ctx context.Context, hint library.MovieHint) (tmdb.MovieResult, bool) {
	results := m.searchMovieTitle(ctx, hint.Title)
	if len(results) == 0 && hint.NormalizedTitle != "" && !strings.EqualFold(hint.NormalizedTitle, hint.Title) {
		results = m.searchMovieTitle(ctx, hint.NormalizedTitle)
	}
	return pickMovie(results, hint.Year)
}

func (m *MediaManager) searchMovieTitle(ctx context.Context, title string) []tmdb.MovieResult {
	results, err := m.tmdb.SearchMovie(ctx, title)
	if err != nil {
		logger.FromCtx(ctx).Warnw("movie search failed", zap.String("query", title), zap.Error(err))
		return nil
	}
	return results
}

// pickMovie keeps results released in the detected year and takes the most
// popular. When the year filter leaves nothing the first result is used.
func pickMovie(results []tmdb.MovieResult, year *int32) (tmdb.MovieResult, bool) {
	if len(results) == 0 {
		return tmdb.MovieResult{}, false
	}

	candidates := results
	if year != nil {
		candidates = make([]tmdb.MovieResult, 0, len(results))
		for _, r := range results {
			if y := r.Year(); y != nil && *y == *year {
				candidates = append(candidates, r)
			}
		}
	}

	if len(candidates) == 0 {
		return results[0], true
	}

	candidates = slices.Clone(candidates)
	slices.SortStableFunc(candidates, func(a, b tmdb.MovieResult) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
	return candidates[0], true
}

func movieMetadata(details tmdb.MovieDetails, detectedYear *int32) symlink.MovieMetadata {
	year := details.Year()
	if year == nil {
		year = detectedYear
	}
	return symlink.MovieMetadata{
		Title:  details.Title,
		Year:   year,
		ImdbID: details.Imdb(),
		TmdbID: details.ID,
	}
}

func withMovie(outcome *ledger.Outcome, details tmdb.MovieDetails, meta symlink.MovieMetadata) {
	outcome.TmdbID = &details.ID
	outcome.Title = &details.Title
	outcome.Year = meta.Year
	outcome.Genres = tmdb.GenreNames(details.Genres)
	if meta.ImdbID != "" {
		imdb := meta.ImdbID
		outcome.ImdbID = &imdb
	}
}

func (m *MediaManager) processEpisode(ctx context.Context, file model.ScannedFile, hint library.EpisodeHint, mp mapping) error {
	show, series, reason := m.resolveShow(ctx, file.SourceFile, hint.TitleHint, mp)
	if reason != ledger.ReasonNone {
		_, err := m.finish(ctx, file, ledger.Failed(reason), false)
		return err
	}

	meta := symlink.EpisodeMetadata{
		ShowTitle:    show.Name,
		ShowYear:     show.Year(),
		Season:       hint.Season,
		Episode:      hint.Episode,
		Episode2:     hint.Episode2,
		EpisodeTitle: m.episodeTitle(ctx, show.ID, hint.Season, hint.Episode),
	}
	dest := symlink.BuildDestinationPath(file.SourceFile, mp.destination, meta)

	outcome, created := m.link(ctx, file.SourceFile, dest)
	withShow(&outcome, show, series, hint.Season)
	outcome.EpisodeNumber = &hint.Episode
	outcome.EpisodeNumber2 = hint.Episode2

	update, err := m.finish(ctx, file, outcome, created)
	if err != nil || hint.Episode2 == nil {
		return err
	}
	if storage.FileStatus(update.File.Status) != storage.FileStatusSuccess {
		return nil
	}

	return m.addSecondEpisode(ctx, *update.File, show, series, *hint.Episode2)
}

// addSecondEpisode records the second half of a combined episode file as its
// own row sharing the first row's link.
func (m *MediaManager) addSecondEpisode(ctx context.Context, first model.ScannedFile, show tmdb.TvDetails, series *model.SeriesIdentity, episode int32) error {
	second, err := m.ledger.CreateProcessingEntry(ctx, first.SourceFile, first.FileSize, storage.MediaType(first.MediaType))
	if err != nil {
		return err
	}

	outcome := ledger.Success(*first.DestFile)
	withShow(&outcome, show, series, *first.SeasonNumber)
	outcome.EpisodeNumber = &episode

	_, err = m.finish(ctx, *second, outcome, false)
	return err
}

// secondEpisode is the outcome of a combined file's second row, taken from
// the first row.
func secondEpisode(first model.ScannedFile) ledger.Outcome {
	outcome := ledger.Success(*first.DestFile)
	outcome.TmdbID = first.TmdbID
	outcome.ImdbID = first.ImdbID
	outcome.Title = first.Title
	outcome.Year = first.Year
	outcome.Genres = ledger.DecodeGenres(first.Genres)
	outcome.SeasonNumber = first.SeasonNumber
	outcome.EpisodeNumber = first.EpisodeNumber2
	return outcome
}

func (m *MediaManager) resolveShow(ctx context.Context, sourceFile, titleHint string, mp mapping) (tmdb.TvDetails, *model.SeriesIdentity, ledger.Reason) {
	log := logger.FromCtx(ctx)

	candidates := showCandidates(sourceFile, titleHint, mp.source)
	series, err := m.resolver.ResolveAndCommit(ctx, identity.Query{
		Candidates: candidates,
		YearHint:   yearHint(candidates),
	})
	if err != nil {
		if !errors.Is(err, identity.ErrNoMatch) {
			log.Warnw("failed to resolve series", zap.Strings("candidates", candidates), zap.Error(err))
		}
		return tmdb.TvDetails{}, nil, ledger.ReasonSeriesNoMatch
	}

	show, err := m.metadata.Show(ctx, series.TmdbID)
	if err != nil {
		log.Warnw("failed to get show details", zap.Int32("tmdb_id", series.TmdbID), zap.Error(err))
		return tmdb.TvDetails{}, series, ledger.ReasonShowDetailsFailed
	}

	return show, series, ledger.ReasonNone
}

// episodeTitle is optional in the link name so lookup failures only drop it
func (m *MediaManager) episodeTitle(ctx context.Context, showID, season, episode int32) string {
	details, err := m.metadata.Episode(ctx, showID, season, episode)
	if err != nil {
		logger.FromCtx(ctx).Debugw("episode details unavailable", zap.Int32("tmdb_id", showID), zap.Error(err))
		return ""
	}
	return details.Name
}

func withShow(outcome *ledger.Outcome, show tmdb.TvDetails, series *model.SeriesIdentity, season int32) {
	outcome.TmdbID = &show.ID
	outcome.Title = &show.Name
	outcome.Year = show.Year()
	outcome.Genres = tmdb.GenreNames(show.Genres)
	outcome.SeasonNumber = &season
	if series != nil && series.ImdbID != nil {
		outcome.ImdbID = series.ImdbID
	}
}

// showCandidates lists the names a file offers for its show: the title hint
// followed by up to two enclosing folders below the mapping root.
func showCandidates(sourceFile, titleHint, root string) []string {
	candidates := []string{titleHint}

	dir := filepath.Dir(sourceFile)
	for range 2 {
		if !isUnder(dir, root) {
			break
		}
		candidates = append(candidates, filepath.Base(dir))
		dir = filepath.Dir(dir)
	}

	return candidates
}

func yearHint(candidates []string) *int32 {
	for _, c := range candidates {
		if y, ok := normalize.Year(c); ok {
			return &y
		}
	}
	return nil
}

// link places the link for source at dest. The second return reports whether
// this call created the link.
func (m *MediaManager) link(ctx context.Context, source, dest string) (ledger.Outcome, bool) {
	log := logger.FromCtx(ctx)

	res, err := m.links.CreateSymlinkAt(ctx, source, dest)
	switch {
	case errors.Is(err, symlink.ErrDestinationConflict):
		log.Infow("destination occupied by a regular file", zap.String("destination", dest))
		return ledger.Duplicate(), false
	case err != nil:
		log.Warnw("failed to create symlink", zap.String("destination", dest), zap.Error(err))
		return ledger.Failed(ledger.ReasonLinkFailed), false
	case res == symlink.LinkExists && !m.links.PointsTo(dest, source):
		log.Infow("destination already linked to another source", zap.String("destination", dest))
		return ledger.Duplicate(), false
	}

	log.Debugw("symlink ready", zap.String("destination", dest), zap.Stringer("result", res))
	return ledger.Success(dest), res != symlink.LinkExists
}

// finish writes a terminal outcome. If the ledger downgraded the write to a
// duplicate, a link created for it is taken back.
func (m *MediaManager) finish(ctx context.Context, file model.ScannedFile, outcome ledger.Outcome, created bool) (ledger.Update, error) {
	update, err := m.ledger.UpdateProcessed(ctx, file, outcome)
	if err != nil {
		return update, err
	}
	m.afterWrite(ctx, update, outcome, created)
	return update, nil
}

func (m *MediaManager) afterWrite(ctx context.Context, update ledger.Update, outcome ledger.Outcome, created bool) {
	if update.Downgraded && created && outcome.DestFile != nil && m.links.PointsTo(*outcome.DestFile, update.File.SourceFile) {
		if err := m.links.RemoveSymlinkIfExists(ctx, *outcome.DestFile); err != nil {
			logger.FromCtx(ctx).Warnw("failed to remove link of duplicate", zap.String("destination", *outcome.DestFile), zap.Error(err))
		}
	}
	m.metrics.fileProcessed(update.File)
}
