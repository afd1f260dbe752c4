package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/table"
)

// GetSeriesIdentity looks up a series identity by id
func (s *SQLite) GetSeriesIdentity(ctx context.Context, id int32) (*model.SeriesIdentity, error) {
	stmt := table.SeriesIdentity.
		SELECT(table.SeriesIdentity.AllColumns).
		FROM(table.SeriesIdentity).
		WHERE(table.SeriesIdentity.ID.EQ(sqlite.Int32(id)))

	var identity model.SeriesIdentity
	if err := stmt.QueryContext(ctx, s.db, &identity); err != nil {
		return nil, notFound(err)
	}

	return &identity, nil
}

// FindSeriesIdentity finds the identity keyed by normalized title and year. A
// nil year only matches identities without a year.
func (s *SQLite) FindSeriesIdentity(ctx context.Context, normalizedTitle string, year *int32) (*model.SeriesIdentity, error) {
	return findSeriesIdentity(ctx, s.db, normalizedTitle, year)
}

func findSeriesIdentity(ctx context.Context, db qrm.Queryable, normalizedTitle string, year *int32) (*model.SeriesIdentity, error) {
	stmt := table.SeriesIdentity.
		SELECT(table.SeriesIdentity.AllColumns).
		FROM(table.SeriesIdentity).
		WHERE(
			table.SeriesIdentity.NormalizedTitle.EQ(sqlite.String(normalizedTitle)).
				AND(yearCondition(year)),
		).
		LIMIT(1)

	var identity model.SeriesIdentity
	if err := stmt.QueryContext(ctx, db, &identity); err != nil {
		return nil, notFound(err)
	}

	return &identity, nil
}

func yearCondition(year *int32) sqlite.BoolExpression {
	if year == nil {
		return table.SeriesIdentity.Year.IS_NULL()
	}
	return table.SeriesIdentity.Year.EQ(sqlite.Int32(*year))
}

// ListSeriesIdentitiesByAlias lists every identity that has recorded the alias
func (s *SQLite) ListSeriesIdentitiesByAlias(ctx context.Context, aliasNormalized string) ([]*model.SeriesIdentity, error) {
	stmt := table.SeriesIdentity.
		SELECT(table.SeriesIdentity.AllColumns).
		DISTINCT().
		FROM(
			table.SeriesIdentity.
				INNER_JOIN(table.SeriesAlias, table.SeriesAlias.IdentityID.EQ(table.SeriesIdentity.ID)),
		).
		WHERE(table.SeriesAlias.AliasNormalized.EQ(sqlite.String(aliasNormalized))).
		ORDER_BY(table.SeriesIdentity.ID.ASC())

	identities := make([]*model.SeriesIdentity, 0)
	err := stmt.QueryContext(ctx, s.db, &identities)
	return identities, err
}

// ListSeriesIdentitiesByTmdbID lists identities resolved to the given show
func (s *SQLite) ListSeriesIdentitiesByTmdbID(ctx context.Context, tmdbID int32) ([]*model.SeriesIdentity, error) {
	stmt := table.SeriesIdentity.
		SELECT(table.SeriesIdentity.AllColumns).
		FROM(table.SeriesIdentity).
		WHERE(table.SeriesIdentity.TmdbID.EQ(sqlite.Int32(tmdbID))).
		ORDER_BY(table.SeriesIdentity.ID.ASC())

	identities := make([]*model.SeriesIdentity, 0)
	err := stmt.QueryContext(ctx, s.db, &identities)
	return identities, err
}

// UpsertSeriesIdentity creates the identity for (normalized title, year) or
// updates the existing one in place, returning the stored row.
func (s *SQLite) UpsertSeriesIdentity(ctx context.Context, identity model.SeriesIdentity) (*model.SeriesIdentity, error) {
	stored, err := s.upsertSeriesIdentity(ctx, identity)
	if err == nil {
		return stored, nil
	}

	// another writer may have created the row between our read and insert
	result, classifyErr := classifyWriteError(err)
	if classifyErr != nil || !result.IsConflict() {
		return nil, err
	}

	return s.upsertSeriesIdentity(ctx, identity)
}

func (s *SQLite) upsertSeriesIdentity(ctx context.Context, identity model.SeriesIdentity) (*model.SeriesIdentity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	identity.UpdatedAt = now

	existing, err := findSeriesIdentity(ctx, tx, identity.NormalizedTitle, identity.Year)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		identity.CreatedAt = now
		result, err := table.SeriesIdentity.
			INSERT(table.SeriesIdentity.MutableColumns).
			MODEL(identity).
			ExecContext(ctx, tx)
		if err != nil {
			return nil, err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		identity.ID = int32(id)
	case err != nil:
		return nil, err
	default:
		identity.ID = existing.ID

		// unknown imdb ids and verification times keep what is stored
		columns := sqlite.ColumnList{
			table.SeriesIdentity.TmdbID,
			table.SeriesIdentity.CanonicalTitle,
			table.SeriesIdentity.UpdatedAt,
		}
		if identity.ImdbID != nil {
			columns = append(columns, table.SeriesIdentity.ImdbID)
		}
		if identity.LastVerifiedAt != nil {
			columns = append(columns, table.SeriesIdentity.LastVerifiedAt)
		}

		_, err = table.SeriesIdentity.
			UPDATE(columns).
			MODEL(identity).
			WHERE(table.SeriesIdentity.ID.EQ(sqlite.Int32(existing.ID))).
			ExecContext(ctx, tx)
		if err != nil {
			return nil, err
		}
	}

	var stored model.SeriesIdentity
	err = table.SeriesIdentity.
		SELECT(table.SeriesIdentity.AllColumns).
		FROM(table.SeriesIdentity).
		WHERE(table.SeriesIdentity.ID.EQ(sqlite.Int32(identity.ID))).
		QueryContext(ctx, tx, &stored)
	if err != nil {
		return nil, err
	}

	return &stored, tx.Commit()
}

// AddSeriesAliases records aliases for an identity. Aliases already recorded
// are skipped and the number of new rows is returned.
func (s *SQLite) AddSeriesAliases(ctx context.Context, identityID int32, aliases ...model.SeriesAlias) (int64, error) {
	if len(aliases) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range aliases {
		aliases[i].IdentityID = identityID
		aliases[i].CreatedAt = now
	}

	stmt := table.SeriesAlias.
		INSERT(table.SeriesAlias.MutableColumns).
		MODELS(aliases).
		ON_CONFLICT(table.SeriesAlias.IdentityID, table.SeriesAlias.AliasNormalized).
		DO_NOTHING()

	result, err := s.handleStatement(ctx, stmt)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// ListSeriesAliases lists the aliases recorded for an identity
func (s *SQLite) ListSeriesAliases(ctx context.Context, identityID int32) ([]*model.SeriesAlias, error) {
	stmt := table.SeriesAlias.
		SELECT(table.SeriesAlias.AllColumns).
		FROM(table.SeriesAlias).
		WHERE(table.SeriesAlias.IdentityID.EQ(sqlite.Int32(identityID))).
		ORDER_BY(table.SeriesAlias.ID.ASC())

	aliases := make([]*model.SeriesAlias, 0)
	err := stmt.QueryContext(ctx, s.db, &aliases)
	return aliases, err
}

// TouchSeriesIdentity records when an identity was last confirmed against TMDB
func (s *SQLite) TouchSeriesIdentity(ctx context.Context, id int32, verifiedAt time.Time) error {
	verifiedAt = verifiedAt.UTC()
	stmt := table.SeriesIdentity.
		UPDATE(table.SeriesIdentity.LastVerifiedAt).
		MODEL(model.SeriesIdentity{LastVerifiedAt: &verifiedAt}).
		WHERE(table.SeriesIdentity.ID.EQ(sqlite.Int32(id)))

	result, err := s.handleStatement(ctx, stmt)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
