package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
)

// Reason is a stable failure code stored with a scanned file
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonMovieDetectionFailed   Reason = "movie-title-detection-failed"
	ReasonMovieSearchNoMatch     Reason = "movie-tmdb-search-no-match"
	ReasonMovieDetailsFailed     Reason = "movie-tmdb-details-failed"
	ReasonEpisodeDetectionFailed Reason = "tv-episode-detection-failed"
	ReasonSeriesNoMatch          Reason = "tv-series-identity-no-match"
	ReasonShowDetailsFailed      Reason = "tv-tmdb-show-details-failed"
	ReasonDestinationConflict    Reason = "destination-conflict"
	ReasonLinkFailed             Reason = "link-failed"
	ReasonResyncMetadataFailed   Reason = "resync-metadata-failed"
)

var ErrUnresolvedConflict = errors.New("write conflict could not be resolved")

// Outcome is the terminal state and resolved metadata applied to a row
type Outcome struct {
	Status         storage.FileStatus
	Reason         Reason
	DestFile       *string
	TmdbID         *int32
	ImdbID         *string
	Title          *string
	Year           *int32
	Genres         []string
	SeasonNumber   *int32
	EpisodeNumber  *int32
	EpisodeNumber2 *int32
}

func Success(dest string) Outcome {
	return Outcome{Status: storage.FileStatusSuccess, DestFile: &dest}
}

func Failed(reason Reason) Outcome {
	return Outcome{Status: storage.FileStatusFailed, Reason: reason}
}

func Duplicate() Outcome {
	return Outcome{Status: storage.FileStatusDuplicate, Reason: ReasonDestinationConflict}
}

// Update is the row as stored after a terminal write
type Update struct {
	File *model.ScannedFile
	// Downgraded is set when the requested outcome collided on the destination
	// and the row was stored as a duplicate instead.
	Downgraded bool
}

// Ledger owns every state transition of scanned files and emits an event for
// each write.
type Ledger struct {
	store    storage.ScannedFileStorage
	notifier notify.Notifier
}

func New(store storage.ScannedFileStorage, notifier notify.Notifier) *Ledger {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Ledger{
		store:    store,
		notifier: notifier,
	}
}

// CreateProcessingEntry records a newly observed source file
func (l *Ledger) CreateProcessingEntry(ctx context.Context, sourceFile string, size int64, mediaType storage.MediaType) (*model.ScannedFile, error) {
	file := model.ScannedFile{
		SourceFile: sourceFile,
		FileSize:   size,
		MediaType:  string(mediaType),
		Status:     string(storage.FileStatusProcessing),
	}

	res, err := l.store.CreateScannedFile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanned file: %w", err)
	}
	if res.IsConflict() {
		return nil, fmt.Errorf("%w: %s on %q", ErrUnresolvedConflict, sourceFile, res.Field)
	}

	file.ID = res.ID
	l.emit(ctx, notify.FileAdded, file)
	return &file, nil
}

// UpdateProcessed applies a terminal outcome and advances the applied version
// by one, raising the target version to match.
func (l *Ledger) UpdateProcessed(ctx context.Context, file model.ScannedFile, outcome Outcome) (Update, error) {
	return l.write(ctx, file, outcome, func(f model.ScannedFile) (int32, int32) {
		next := f.VersionUpdated + 1
		return next, max(f.UpdateToVersion, next)
	})
}

// CompleteResync applies a resync outcome and closes the version gap
func (l *Ledger) CompleteResync(ctx context.Context, file model.ScannedFile, outcome Outcome) (Update, error) {
	return l.write(ctx, file, outcome, func(f model.ScannedFile) (int32, int32) {
		next := max(f.VersionUpdated+1, f.UpdateToVersion)
		return next, max(f.UpdateToVersion, next)
	})
}

func (l *Ledger) write(ctx context.Context, file model.ScannedFile, outcome Outcome, version func(model.ScannedFile) (int32, int32)) (Update, error) {
	if err := (storage.ScannedFile{ScannedFile: file}).Machine().ToState(outcome.Status); err != nil {
		return Update{}, err
	}

	next := apply(file, outcome)
	next.VersionUpdated, next.UpdateToVersion = version(file)

	res, err := l.store.UpdateScannedFile(ctx, next)
	if err != nil {
		return Update{}, fmt.Errorf("failed to update scanned file %d: %w", file.ID, err)
	}

	downgraded := false
	if res.IsConflict() {
		if res.Field != storage.ConflictDestFile {
			return Update{}, fmt.Errorf("%w: scanned file %d on %q", ErrUnresolvedConflict, file.ID, res.Field)
		}

		next = apply(next, Duplicate())
		downgraded = outcome.Status != storage.FileStatusDuplicate

		res, err = l.store.UpdateScannedFile(ctx, next)
		if err != nil {
			return Update{}, fmt.Errorf("failed to mark scanned file %d duplicate: %w", file.ID, err)
		}
		if res.IsConflict() {
			return Update{}, fmt.Errorf("%w: scanned file %d on %q", ErrUnresolvedConflict, file.ID, res.Field)
		}
	}

	l.emit(ctx, notify.FileUpdated, next)
	logOutcome(ctx, next)

	return Update{File: &next, Downgraded: downgraded}, nil
}

// Remove deletes rows and emits a removal event for each deleted row
func (l *Ledger) Remove(ctx context.Context, files ...*model.ScannedFile) (int64, error) {
	if len(files) == 0 {
		return 0, nil
	}

	ids := make([]int32, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}

	n, err := l.store.DeleteScannedFiles(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete scanned files: %w", err)
	}

	for _, f := range files {
		l.emit(ctx, notify.FileRemoved, *f)
	}

	return n, nil
}

func (l *Ledger) emit(ctx context.Context, t notify.EventType, file model.ScannedFile) {
	notify.Safe(ctx, l.notifier, notify.NewEvent(t, file))
}

func apply(file model.ScannedFile, outcome Outcome) model.ScannedFile {
	file.Status = string(outcome.Status)
	file.Reason = nil
	if outcome.Reason != ReasonNone {
		reason := string(outcome.Reason)
		file.Reason = &reason
	}

	file.DestFile = outcome.DestFile
	if outcome.Status == storage.FileStatusDuplicate {
		file.DestFile = nil
	}

	if outcome.TmdbID != nil {
		file.TmdbID = outcome.TmdbID
	}
	if outcome.ImdbID != nil {
		file.ImdbID = outcome.ImdbID
	}
	if outcome.Title != nil {
		file.Title = outcome.Title
	}
	if outcome.Year != nil {
		file.Year = outcome.Year
	}
	if outcome.Genres != nil {
		file.Genres = EncodeGenres(outcome.Genres)
	}
	if outcome.SeasonNumber != nil {
		file.SeasonNumber = outcome.SeasonNumber
	}
	if outcome.EpisodeNumber != nil {
		file.EpisodeNumber = outcome.EpisodeNumber
	}
	if outcome.EpisodeNumber2 != nil {
		file.EpisodeNumber2 = outcome.EpisodeNumber2
	}

	return file
}

// logOutcome reports a terminal write. The source file is expected on the
// context logger.
func logOutcome(ctx context.Context, file model.ScannedFile) {
	log := logger.FromCtx(ctx)
	fields := []any{
		"id", file.ID,
		"status", file.Status,
		"destination", deref(file.DestFile),
		"tmdb_id", deref(file.TmdbID),
		"imdb_id", deref(file.ImdbID),
		"reason", deref(file.Reason),
		"size", humanize.Bytes(uint64(max(file.FileSize, 0))),
	}

	switch storage.FileStatus(file.Status) {
	case storage.FileStatusFailed:
		log.Warnw("file processed", fields...)
	default:
		log.Infow("file processed", fields...)
	}
}

// EncodeGenres stores an ordered genre list as a JSON array
func EncodeGenres(genres []string) *string {
	b, err := json.Marshal(genres)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// DecodeGenres reads a genre list written by EncodeGenres
func DecodeGenres(s *string) []string {
	if s == nil || *s == "" {
		return nil
	}
	var genres []string
	if err := json.Unmarshal([]byte(*s), &genres); err != nil {
		return nil
	}
	return genres
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
