package storage

import (
	"context"
	"errors"
	"time"

	"github.com/kasuboski/medialink/pkg/machine"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
)

var ErrNotFound = errors.New("not found in storage")

type Storage interface {
	RunMigrations(ctx context.Context) error
	ScannedFileStorage
	SeriesIdentityStorage
}

type MediaType string

const (
	MediaTypeMovies  MediaType = "Movies"
	MediaTypeTvShows MediaType = "TvShows"
	MediaTypeExtras  MediaType = "Extras"
	MediaTypeUnknown MediaType = "Unknown"
)

type FileStatus string

const (
	FileStatusProcessing FileStatus = "Processing"
	FileStatusSuccess    FileStatus = "Success"
	FileStatusFailed     FileStatus = "Failed"
	FileStatusDuplicate  FileStatus = "Duplicate"
)

// WriteOutcome classifies the effect of a write that may hit a uniqueness constraint.
type WriteOutcome int

const (
	Inserted WriteOutcome = iota
	Updated
	Conflict
)

func (o WriteOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// ConflictField names the constrained value a rejected write collided on.
type ConflictField string

const (
	ConflictDestFile   ConflictField = "dest_file"
	ConflictSourceFile ConflictField = "source_file"
	ConflictIdentity   ConflictField = "normalized_title"
	ConflictOther      ConflictField = ""
)

// WriteResult is returned by writes where a uniqueness violation is an
// expected outcome rather than a failure.
type WriteResult struct {
	Outcome WriteOutcome
	Field   ConflictField
	ID      int32
}

func InsertedRow(id int32) WriteResult {
	return WriteResult{Outcome: Inserted, ID: id}
}

func UpdatedRow(id int32) WriteResult {
	return WriteResult{Outcome: Updated, ID: id}
}

func ConflictOn(field ConflictField) WriteResult {
	return WriteResult{Outcome: Conflict, Field: field}
}

func (r WriteResult) IsConflict() bool {
	return r.Outcome == Conflict
}

type ScannedFile struct {
	model.ScannedFile
}

// Machine returns the status transitions a scanned file may take
func (f ScannedFile) Machine() *machine.StateMachine[FileStatus] {
	return machine.New(FileStatus(f.Status),
		machine.From(FileStatusProcessing).To(FileStatusSuccess, FileStatusFailed, FileStatusDuplicate),
		machine.From(FileStatusSuccess).To(FileStatusSuccess, FileStatusFailed, FileStatusDuplicate),
		machine.From(FileStatusFailed).To(FileStatusSuccess, FileStatusFailed, FileStatusDuplicate),
		machine.From(FileStatusDuplicate).To(FileStatusSuccess, FileStatusFailed, FileStatusDuplicate),
	)
}

// ScannedFileFilter narrows listings. Zero values match everything.
type ScannedFileFilter struct {
	Status     FileStatus
	MediaType  MediaType
	TmdbID     *int32
	// SourceFile matches one file exactly
	SourceFile string
	Limit      int
}

// ResyncRequest rebinds a scanned file to new metadata and marks it due.
type ResyncRequest struct {
	TmdbID        *int32
	SeasonNumber  *int32
	EpisodeNumber *int32
}

type ScannedFileStorage interface {
	CreateScannedFile(ctx context.Context, file model.ScannedFile) (WriteResult, error)
	UpdateScannedFile(ctx context.Context, file model.ScannedFile) (WriteResult, error)
	GetScannedFile(ctx context.Context, id int32) (*model.ScannedFile, error)
	ListScannedFiles(ctx context.Context, filter ScannedFileFilter) ([]*model.ScannedFile, error)
	ListScannedFilesUnder(ctx context.Context, folder string) ([]*model.ScannedFile, error)
	ListResyncDue(ctx context.Context) ([]*model.ScannedFile, error)
	RequestResync(ctx context.Context, id int32, req ResyncRequest) error
	DeleteScannedFiles(ctx context.Context, ids ...int32) (int64, error)
}

type SeriesIdentityStorage interface {
	GetSeriesIdentity(ctx context.Context, id int32) (*model.SeriesIdentity, error)
	FindSeriesIdentity(ctx context.Context, normalizedTitle string, year *int32) (*model.SeriesIdentity, error)
	ListSeriesIdentitiesByAlias(ctx context.Context, aliasNormalized string) ([]*model.SeriesIdentity, error)
	ListSeriesIdentitiesByTmdbID(ctx context.Context, tmdbID int32) ([]*model.SeriesIdentity, error)
	UpsertSeriesIdentity(ctx context.Context, identity model.SeriesIdentity) (*model.SeriesIdentity, error)
	AddSeriesAliases(ctx context.Context, identityID int32, aliases ...model.SeriesAlias) (int64, error)
	ListSeriesAliases(ctx context.Context, identityID int32) ([]*model.SeriesAlias, error)
	TouchSeriesIdentity(ctx context.Context, id int32, verifiedAt time.Time) error
}
