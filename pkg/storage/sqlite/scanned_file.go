package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/table"
)

// CreateScannedFile inserts a new scanned file row. A uniqueness violation is
// reported as a conflict result rather than an error.
func (s *SQLite) CreateScannedFile(ctx context.Context, file model.ScannedFile) (storage.WriteResult, error) {
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now
	if file.Status == "" {
		file.Status = string(storage.FileStatusProcessing)
	}

	stmt := table.ScannedFile.
		INSERT(table.ScannedFile.MutableColumns).
		MODEL(file)

	result, err := s.handleStatement(ctx, stmt)
	if err != nil {
		return classifyWriteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.WriteResult{}, err
	}

	return storage.InsertedRow(int32(id)), nil
}

// UpdateScannedFile replaces every mutable column of an existing row
func (s *SQLite) UpdateScannedFile(ctx context.Context, file model.ScannedFile) (storage.WriteResult, error) {
	file.UpdatedAt = time.Now().UTC()

	stmt := table.ScannedFile.
		UPDATE(table.ScannedFile.MutableColumns.Except(table.ScannedFile.CreatedAt)).
		MODEL(file).
		WHERE(table.ScannedFile.ID.EQ(sqlite.Int32(file.ID)))

	result, err := s.handleStatement(ctx, stmt)
	if err != nil {
		return classifyWriteError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storage.WriteResult{}, err
	}
	if rows == 0 {
		return storage.WriteResult{}, storage.ErrNotFound
	}

	return storage.UpdatedRow(file.ID), nil
}

// GetScannedFile looks up a scanned file by id
func (s *SQLite) GetScannedFile(ctx context.Context, id int32) (*model.ScannedFile, error) {
	stmt := table.ScannedFile.
		SELECT(table.ScannedFile.AllColumns).
		FROM(table.ScannedFile).
		WHERE(table.ScannedFile.ID.EQ(sqlite.Int32(id)))

	var file model.ScannedFile
	if err := stmt.QueryContext(ctx, s.db, &file); err != nil {
		return nil, notFound(err)
	}

	return &file, nil
}

// ListScannedFiles lists scanned files matching the filter ordered by id
func (s *SQLite) ListScannedFiles(ctx context.Context, filter storage.ScannedFileFilter) ([]*model.ScannedFile, error) {
	where := sqlite.Bool(true)
	if filter.Status != "" {
		where = where.AND(table.ScannedFile.Status.EQ(sqlite.String(string(filter.Status))))
	}
	if filter.MediaType != "" {
		where = where.AND(table.ScannedFile.MediaType.EQ(sqlite.String(string(filter.MediaType))))
	}
	if filter.TmdbID != nil {
		where = where.AND(table.ScannedFile.TmdbID.EQ(sqlite.Int32(*filter.TmdbID)))
	}
	if filter.SourceFile != "" {
		where = where.AND(table.ScannedFile.SourceFile.EQ(sqlite.String(filter.SourceFile)))
	}

	stmt := table.ScannedFile.
		SELECT(table.ScannedFile.AllColumns).
		FROM(table.ScannedFile).
		WHERE(where).
		ORDER_BY(table.ScannedFile.ID.ASC())

	if filter.Limit > 0 {
		stmt = stmt.LIMIT(int64(filter.Limit))
	}

	files := make([]*model.ScannedFile, 0)
	err := stmt.QueryContext(ctx, s.db, &files)
	return files, err
}

// ListScannedFilesUnder lists every row whose source file lives anywhere
// beneath folder. The range is bounded by the byte after '/' so sibling
// folders sharing a prefix are excluded.
func (s *SQLite) ListScannedFilesUnder(ctx context.Context, folder string) ([]*model.ScannedFile, error) {
	folder = strings.TrimRight(folder, "/")
	if folder == "" {
		return nil, fmt.Errorf("folder is required")
	}

	lower := folder + "/"
	upper := folder + "0"

	stmt := table.ScannedFile.
		SELECT(table.ScannedFile.AllColumns).
		FROM(table.ScannedFile).
		WHERE(
			table.ScannedFile.SourceFile.GT_EQ(sqlite.String(lower)).
				AND(table.ScannedFile.SourceFile.LT(sqlite.String(upper))),
		).
		ORDER_BY(table.ScannedFile.ID.ASC())

	files := make([]*model.ScannedFile, 0)
	err := stmt.QueryContext(ctx, s.db, &files)
	return files, err
}

// ListResyncDue lists rows whose target version is ahead of their applied version
func (s *SQLite) ListResyncDue(ctx context.Context) ([]*model.ScannedFile, error) {
	stmt := table.ScannedFile.
		SELECT(table.ScannedFile.AllColumns).
		FROM(table.ScannedFile).
		WHERE(table.ScannedFile.UpdateToVersion.GT(table.ScannedFile.VersionUpdated)).
		ORDER_BY(table.ScannedFile.ID.ASC())

	files := make([]*model.ScannedFile, 0)
	err := stmt.QueryContext(ctx, s.db, &files)
	return files, err
}

// RequestResync marks a row due for resync and optionally rebinds its metadata ids
func (s *SQLite) RequestResync(ctx context.Context, id int32, req storage.ResyncRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var file model.ScannedFile
	err = table.ScannedFile.
		SELECT(table.ScannedFile.AllColumns).
		FROM(table.ScannedFile).
		WHERE(table.ScannedFile.ID.EQ(sqlite.Int32(id))).
		QueryContext(ctx, tx, &file)
	if err != nil {
		return notFound(err)
	}

	columns := sqlite.ColumnList{table.ScannedFile.UpdateToVersion, table.ScannedFile.UpdatedAt}
	file.UpdateToVersion = file.VersionUpdated + 1
	file.UpdatedAt = time.Now().UTC()

	if req.TmdbID != nil {
		file.TmdbID = req.TmdbID
		columns = append(columns, table.ScannedFile.TmdbID)
	}
	if req.SeasonNumber != nil {
		file.SeasonNumber = req.SeasonNumber
		columns = append(columns, table.ScannedFile.SeasonNumber)
	}
	if req.EpisodeNumber != nil {
		file.EpisodeNumber = req.EpisodeNumber
		columns = append(columns, table.ScannedFile.EpisodeNumber)
	}

	_, err = table.ScannedFile.
		UPDATE(columns).
		MODEL(file).
		WHERE(table.ScannedFile.ID.EQ(sqlite.Int32(id))).
		ExecContext(ctx, tx)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteScannedFiles removes the given rows and reports how many were deleted
func (s *SQLite) DeleteScannedFiles(ctx context.Context, ids ...int32) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	exprs := make([]sqlite.Expression, len(ids))
	for i, id := range ids {
		exprs[i] = sqlite.Int32(id)
	}

	stmt := table.ScannedFile.
		DELETE().
		WHERE(table.ScannedFile.ID.IN(exprs...))

	result, err := s.handleStatement(ctx, stmt)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
