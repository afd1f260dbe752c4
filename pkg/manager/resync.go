package manager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/kasuboski/medialink/config"
	"github.com/kasuboski/medialink/pkg/ledger"
	"github.com/kasuboski/medialink/pkg/library"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/normalize"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/symlink"
	"go.uber.org/zap"
)

var (
	ErrNoMapping     = errors.New("no folder mapping contains the source file")
	seasonFolderExpr = regexp.MustCompile(`(?i)^(?:season\s*\d+|specials)$`)
)

// ResyncDue relinks every row whose target version is ahead of its applied
// version. Rows claiming the same canonical slot are resolved to the first
// row and the rest become duplicates. Duplicates are settled first so their
// links do not block the row that keeps the slot.
func (m *MediaManager) ResyncDue(ctx context.Context) (int, error) {
	log := logger.FromCtx(ctx)

	due, err := m.storage.ListResyncDue(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list files due for resync: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	primaries, duplicates := splitSlots(due)
	done := 0

	for _, row := range duplicates {
		if err := m.resyncDuplicate(ctx, *row); err != nil {
			log.Errorw("failed to mark resync duplicate", zap.Int32("id", row.ID), zap.Error(err))
			continue
		}
		done++
	}

	cfg := m.config.Current()
	relinked := make(map[string]struct{}, len(primaries))
	for _, row := range primaries {
		// rows of a combined episode file are relinked together
		if _, ok := relinked[row.SourceFile]; ok {
			done++
			continue
		}

		current, err := m.storage.GetScannedFile(ctx, row.ID)
		if err != nil {
			log.Errorw("failed to reload file for resync", zap.Int32("id", row.ID), zap.Error(err))
			continue
		}

		err = m.resync(ctx, cfg, *current)
		if errors.Is(err, ErrNoMapping) {
			log.Warnw("skipping resync", zap.Int32("id", row.ID), zap.String("source", row.SourceFile), zap.Error(err))
			continue
		}
		if err != nil {
			log.Errorw("failed to resync file", zap.Int32("id", row.ID), zap.Error(err))
			continue
		}
		relinked[row.SourceFile] = struct{}{}
		done++
	}

	return done, nil
}

// splitSlots keeps the first row of every canonical slot and returns the
// others as duplicates. rows must be ordered by id.
func splitSlots(rows []*model.ScannedFile) ([]*model.ScannedFile, []*model.ScannedFile) {
	seen := make(map[string]struct{}, len(rows))
	var primaries, duplicates []*model.ScannedFile
	for _, row := range rows {
		key, ok := slotKey(row)
		if !ok {
			primaries = append(primaries, row)
			continue
		}
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, row)
			continue
		}
		seen[key] = struct{}{}
		primaries = append(primaries, row)
	}
	return primaries, duplicates
}

// ResyncFile rebinds a single row to new metadata ids if given and relinks it
func (m *MediaManager) ResyncFile(ctx context.Context, id int32, req storage.ResyncRequest) (*model.ScannedFile, error) {
	if err := m.storage.RequestResync(ctx, id, req); err != nil {
		return nil, err
	}

	row, err := m.storage.GetScannedFile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := m.resync(ctx, m.config.Current(), *row); err != nil {
		return nil, err
	}

	return m.storage.GetScannedFile(ctx, id)
}

// slotKey identifies the canonical slot a row claims. Rows without a
// provider id claim nothing.
func slotKey(row *model.ScannedFile) (string, bool) {
	if row.TmdbID == nil {
		return "", false
	}
	switch storage.MediaType(row.MediaType) {
	case storage.MediaTypeMovies:
		return fmt.Sprintf("movie:%d", *row.TmdbID), true
	case storage.MediaTypeTvShows:
		if row.SeasonNumber == nil || row.EpisodeNumber == nil {
			return "", false
		}
		return fmt.Sprintf("tv:%d:%d:%d", *row.TmdbID, *row.SeasonNumber, *row.EpisodeNumber), true
	}
	return "", false
}

func (m *MediaManager) resyncDuplicate(ctx context.Context, row model.ScannedFile) error {
	ctx = logger.WithCtx(ctx, logger.FromCtx(ctx, zap.String("source", row.SourceFile)))
	m.removeOwnLink(ctx, row)
	update, err := m.ledger.CompleteResync(ctx, row, ledger.Duplicate())
	if err != nil {
		return err
	}
	m.metrics.fileProcessed(update.File)
	return nil
}

// resync recomputes the link of a tracked row from its stored metadata ids
func (m *MediaManager) resync(ctx context.Context, cfg config.Config, row model.ScannedFile) error {
	log := logger.FromCtx(ctx, zap.String("source", row.SourceFile))
	ctx = logger.WithCtx(ctx, log)

	mp, ok := mappingFor(cfg, row.SourceFile)
	if !ok {
		return ErrNoMapping
	}

	var (
		meta    symlink.Metadata
		outcome ledger.Outcome
		err     error
	)

	switch storage.MediaType(row.MediaType) {
	case storage.MediaTypeMovies:
		meta, outcome, err = m.resyncMovie(ctx, row)
	case storage.MediaTypeTvShows:
		group, gerr := m.episodeGroup(ctx, row)
		if gerr != nil {
			return gerr
		}
		if len(group) > 1 {
			return m.resyncCombined(ctx, mp, row, group)
		}
		meta, outcome, err = m.resyncEpisode(ctx, row)
	default:
		m.removeOwnLink(ctx, row)
		return m.completeResync(ctx, row, ledger.Outcome{Status: storage.FileStatusSuccess}, false)
	}
	if err != nil {
		log.Warnw("failed to resolve resync metadata", zap.Int32("id", row.ID), zap.Error(err))
		m.removeOwnLink(ctx, row)
		return m.completeResync(ctx, row, ledger.Failed(ledger.ReasonResyncMetadataFailed), false)
	}

	dest := symlink.BuildDestinationPath(row.SourceFile, mp.destination, meta)
	m.removeOwnLink(ctx, row)

	linked, created := m.link(ctx, row.SourceFile, dest)
	linked.TmdbID, linked.ImdbID, linked.Title, linked.Year, linked.Genres = outcome.TmdbID, outcome.ImdbID, outcome.Title, outcome.Year, outcome.Genres
	linked.SeasonNumber, linked.EpisodeNumber = outcome.SeasonNumber, outcome.EpisodeNumber

	return m.completeResync(ctx, row, linked, created)
}

// episodeGroup lists the rows that track row's source file, row included.
// Rows already settled as duplicates of another file are left out.
func (m *MediaManager) episodeGroup(ctx context.Context, row model.ScannedFile) ([]*model.ScannedFile, error) {
	rows, err := m.storage.ListScannedFiles(ctx, storage.ScannedFileFilter{
		SourceFile: row.SourceFile,
		MediaType:  storage.MediaTypeTvShows,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rows of source: %w", err)
	}

	group := make([]*model.ScannedFile, 0, len(rows))
	for _, r := range rows {
		if r.ID != row.ID && storage.FileStatus(r.Status) == storage.FileStatusDuplicate {
			continue
		}
		if r.ID == row.ID {
			r = &row
		}
		group = append(group, r)
	}
	return group, nil
}

// resyncCombined relinks a file holding several episodes once and rewrites
// every row tracking it. Show and season come from row, the episode range
// from the row carrying the second episode number.
func (m *MediaManager) resyncCombined(ctx context.Context, mp mapping, row model.ScannedFile, group []*model.ScannedFile) error {
	log := logger.FromCtx(ctx)

	first := group[0]
	for _, r := range group {
		if r.EpisodeNumber2 != nil {
			first = r
			break
		}
	}

	bound := row
	bound.EpisodeNumber, bound.EpisodeNumber2 = first.EpisodeNumber, first.EpisodeNumber2
	meta, outcome, err := m.resyncEpisode(ctx, bound)

	for _, r := range group {
		m.unlink(ctx, *r)
	}

	if err != nil {
		log.Warnw("failed to resolve resync metadata", zap.Int32("id", row.ID), zap.Error(err))
		for _, r := range group {
			if err := m.completeResync(ctx, *r, ledger.Failed(ledger.ReasonResyncMetadataFailed), false); err != nil {
				return err
			}
		}
		return nil
	}

	dest := symlink.BuildDestinationPath(row.SourceFile, mp.destination, meta)
	linked, created := m.link(ctx, row.SourceFile, dest)

	ordered := append([]*model.ScannedFile{first}, slices.DeleteFunc(slices.Clone(group), func(r *model.ScannedFile) bool {
		return r.ID == first.ID
	})...)
	for _, r := range ordered {
		o := linked
		o.TmdbID, o.ImdbID, o.Title, o.Year, o.Genres = outcome.TmdbID, outcome.ImdbID, outcome.Title, outcome.Year, outcome.Genres
		o.SeasonNumber, o.EpisodeNumber = outcome.SeasonNumber, r.EpisodeNumber
		if r.ID == first.ID {
			o.EpisodeNumber2 = first.EpisodeNumber2
		}
		if err := m.completeResync(ctx, *r, o, created && r.ID == first.ID); err != nil {
			return err
		}
	}

	return nil
}

func (m *MediaManager) completeResync(ctx context.Context, row model.ScannedFile, outcome ledger.Outcome, created bool) error {
	update, err := m.ledger.CompleteResync(ctx, row, outcome)
	if err != nil {
		return err
	}
	m.afterWrite(ctx, update, outcome, created)
	return nil
}

func (m *MediaManager) resyncMovie(ctx context.Context, row model.ScannedFile) (symlink.Metadata, ledger.Outcome, error) {
	if row.TmdbID == nil {
		return nil, ledger.Outcome{}, errors.New("movie has no tmdb id")
	}

	details, err := m.metadata.Movie(ctx, *row.TmdbID)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}

	meta := movieMetadata(details, row.Year)
	var outcome ledger.Outcome
	withMovie(&outcome, details, meta)
	return meta, outcome, nil
}

func (m *MediaManager) resyncEpisode(ctx context.Context, row model.ScannedFile) (symlink.Metadata, ledger.Outcome, error) {
	if row.TmdbID == nil || row.SeasonNumber == nil || row.EpisodeNumber == nil {
		return nil, ledger.Outcome{}, errors.New("episode has no tmdb id, season or episode")
	}

	show, err := m.metadata.Show(ctx, *row.TmdbID)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}

	meta := symlink.EpisodeMetadata{
		ShowTitle:    show.Name,
		ShowYear:     show.Year(),
		Season:       *row.SeasonNumber,
		Episode:      *row.EpisodeNumber,
		Episode2:     row.EpisodeNumber2,
		EpisodeTitle: m.episodeTitle(ctx, show.ID, *row.SeasonNumber, *row.EpisodeNumber),
	}

	var outcome ledger.Outcome
	withShow(&outcome, show, m.seriesFor(ctx, show.ID), *row.SeasonNumber)
	outcome.EpisodeNumber = row.EpisodeNumber
	return meta, outcome, nil
}

func (m *MediaManager) seriesFor(ctx context.Context, tmdbID int32) *model.SeriesIdentity {
	identities, err := m.storage.ListSeriesIdentitiesByTmdbID(ctx, tmdbID)
	if err != nil || len(identities) == 0 {
		return nil
	}
	return identities[0]
}

// removeOwnLink removes the row's current link when it still points at the
// row's source and no other row of the same source still claims it.
func (m *MediaManager) removeOwnLink(ctx context.Context, row model.ScannedFile) {
	if row.DestFile == nil {
		return
	}

	rows, err := m.storage.ListScannedFiles(ctx, storage.ScannedFileFilter{SourceFile: row.SourceFile})
	if err != nil {
		logger.FromCtx(ctx).Warnw("failed to list rows of source, keeping link", zap.String("destination", *row.DestFile), zap.Error(err))
		return
	}
	for _, r := range rows {
		if r.ID != row.ID && r.DestFile != nil && *r.DestFile == *row.DestFile {
			return
		}
	}

	m.unlink(ctx, row)
}

// unlink removes the row's current link when it still points at the row's source
func (m *MediaManager) unlink(ctx context.Context, row model.ScannedFile) {
	if row.DestFile == nil || !m.links.PointsTo(*row.DestFile, row.SourceFile) {
		return
	}
	if err := m.links.RemoveSymlinkIfExists(ctx, *row.DestFile); err != nil {
		logger.FromCtx(ctx).Warnw("failed to remove old symlink", zap.String("destination", *row.DestFile), zap.Error(err))
	}
}

// RebuildSummary reports what a show rebuild touched
type RebuildSummary struct {
	TmdbID      int32 `json:"tmdbId"`
	Removed     int64 `json:"removed"`
	Reprocessed int   `json:"reprocessed"`
	Invalidated int   `json:"invalidated"`
}

// RebuildTvShow deletes and reprocesses every row that plausibly belongs to a
// show: rows bound to its id, rows sharing a source folder with those, and
// rows whose names match one of the show's aliases.
func (m *MediaManager) RebuildTvShow(ctx context.Context, tmdbID int32) (RebuildSummary, error) {
	log := logger.FromCtx(ctx, zap.Int32("tmdb_id", tmdbID))
	ctx = logger.WithCtx(ctx, log)
	cfg := m.config.Current()

	summary := RebuildSummary{TmdbID: tmdbID}

	rows, err := m.gatherShowRows(ctx, tmdbID)
	if err != nil {
		return summary, err
	}

	for _, row := range rows {
		m.unlink(ctx, *row)
	}

	summary.Removed, err = m.ledger.Remove(ctx, rows...)
	if err != nil {
		return summary, err
	}

	summary.Invalidated = m.metadata.InvalidateShow(tmdbID)

	bySource := make(map[string]mapping)
	var order []string
	for _, row := range rows {
		if _, ok := bySource[row.SourceFile]; ok {
			continue
		}
		mp, ok := mappingFor(cfg, row.SourceFile)
		if !ok {
			log.Warnw("no mapping for source, not reprocessing", zap.String("source", row.SourceFile))
			continue
		}
		bySource[row.SourceFile] = mp
		order = append(order, row.SourceFile)
	}

	destinations := make(map[string]struct{})
	for _, source := range order {
		mp := bySource[source]
		if err := m.processFile(ctx, source, mp); err != nil {
			log.Errorw("failed to reprocess file", zap.String("source", source), zap.Error(err))
			continue
		}
		summary.Reprocessed++
		destinations[mp.destination] = struct{}{}
	}

	for dest := range destinations {
		if _, err := m.links.CleanupDeadSymlinks(ctx, dest); err != nil {
			log.Warnw("failed to sweep dead symlinks", zap.String("destination", dest), zap.Error(err))
		}
	}

	log.Infow("rebuilt show", "removed", summary.Removed, "reprocessed", summary.Reprocessed)
	return summary, nil
}

func (m *MediaManager) gatherShowRows(ctx context.Context, tmdbID int32) ([]*model.ScannedFile, error) {
	found := make(map[int32]*model.ScannedFile)
	add := func(rows ...*model.ScannedFile) {
		for _, r := range rows {
			found[r.ID] = r
		}
	}

	direct, err := m.storage.ListScannedFiles(ctx, storage.ScannedFileFilter{
		MediaType: storage.MediaTypeTvShows,
		TmdbID:    &tmdbID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list show files: %w", err)
	}
	add(direct...)

	folders := make(map[string]struct{})
	for _, row := range direct {
		folders[showFolder(row.SourceFile)] = struct{}{}
	}
	for folder := range folders {
		rows, err := m.storage.ListScannedFilesUnder(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("failed to list files under %s: %w", folder, err)
		}
		for _, r := range rows {
			if storage.MediaType(r.MediaType) == storage.MediaTypeTvShows {
				add(r)
			}
		}
	}

	aliases, err := m.showAliases(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	if len(aliases) > 0 {
		cfg := m.config.Current()
		tvRows, err := m.storage.ListScannedFiles(ctx, storage.ScannedFileFilter{MediaType: storage.MediaTypeTvShows})
		if err != nil {
			return nil, fmt.Errorf("failed to list tv files: %w", err)
		}
		for _, r := range tvRows {
			if matchesAlias(cfg, r.SourceFile, aliases) {
				add(r)
			}
		}
	}

	rows := make([]*model.ScannedFile, 0, len(found))
	for _, r := range found {
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b *model.ScannedFile) int {
		return int(a.ID - b.ID)
	})
	return rows, nil
}

func (m *MediaManager) showAliases(ctx context.Context, tmdbID int32) (map[string]struct{}, error) {
	identities, err := m.storage.ListSeriesIdentitiesByTmdbID(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to list show identities: %w", err)
	}

	aliases := make(map[string]struct{})
	for _, identity := range identities {
		aliases[identity.NormalizedTitle] = struct{}{}
		known, err := m.storage.ListSeriesAliases(ctx, identity.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list aliases: %w", err)
		}
		for _, a := range known {
			aliases[a.AliasNormalized] = struct{}{}
		}
	}
	delete(aliases, "")
	return aliases, nil
}

// showFolder is the folder holding a show's files, skipping a season folder
func showFolder(sourceFile string) string {
	dir := filepath.Dir(sourceFile)
	if seasonFolderExpr.MatchString(filepath.Base(dir)) {
		return filepath.Dir(dir)
	}
	return dir
}

func matchesAlias(cfg config.Config, sourceFile string, aliases map[string]struct{}) bool {
	titleHint := ""
	if hint, ok := library.DetectTvEpisode(sourceFile); ok {
		titleHint = hint.TitleHint
	}

	root := filepath.Dir(sourceFile)
	if mp, ok := mappingFor(cfg, sourceFile); ok {
		root = mp.source
	}

	for _, c := range showCandidates(sourceFile, titleHint, root) {
		if _, ok := aliases[normalize.Title(c)]; ok {
			return true
		}
	}
	return false
}

