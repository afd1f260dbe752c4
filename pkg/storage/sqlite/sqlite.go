package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const defaultBusyTimeoutMS = "5000"

type SQLite struct {
	db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New creates a new sqlite database given a path to the database file
func New(ctx context.Context, filePath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", filePath+"?_busy_timeout="+defaultBusyTimeoutMS+"&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// a single connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{
		db: db,
	}, nil
}

// RunMigrations applies any pending schema migrations
func (s *SQLite) RunMigrations(ctx context.Context) error {
	logger.FromCtx(ctx).Debug("running database migrations")
	return runMigrations(s.db)
}

// Close releases the database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) handleStatement(ctx context.Context, stmt sqlite.Statement) (sql.Result, error) {
	log := logger.FromCtx(ctx)
	var result sql.Result

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Debugw("failed to init transaction", zap.Error(err))
		return result, err
	}

	result, err = stmt.ExecContext(ctx, tx)
	if err != nil {
		log.Debugw("failed to execute statement", zap.String("query", stmt.DebugSql()), zap.Error(err))
		tx.Rollback()
		return result, err
	}

	return result, tx.Commit()
}

// classifyWriteError turns uniqueness violations into a conflict result so
// callers can branch on them without inspecting driver errors.
func classifyWriteError(err error) (storage.WriteResult, error) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return storage.WriteResult{}, err
	}

	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return storage.WriteResult{}, err
	}

	return storage.ConflictOn(conflictField(sqliteErr.Error())), nil
}

func conflictField(msg string) storage.ConflictField {
	switch {
	case strings.Contains(msg, "dest_file"):
		return storage.ConflictDestFile
	case strings.Contains(msg, "normalized_title"), strings.Contains(msg, "title_year"):
		return storage.ConflictIdentity
	case strings.Contains(msg, "source_file"):
		return storage.ConflictSourceFile
	}
	return storage.ConflictOther
}

func notFound(err error) error {
	if errors.Is(err, qrm.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
