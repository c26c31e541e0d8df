// Package sqlstore keeps the registry in PostgreSQL or SQLite through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/config"
	"github.com/yigit/ssis/internal/db"
	"github.com/yigit/ssis/internal/pkg/dberrors"
	"github.com/yigit/ssis/internal/pkg/logger"
)

var _ repositories.Store = (*Store)(nil)

// Store is a SQL-backed repositories.Store
type Store struct {
	db   *db.Database
	sb   squirrel.StatementBuilderType
	like string
	mode models.CascadeMode
}

// New creates a store over an open database. The schema must already be migrated.
func New(database *db.Database, mode models.CascadeMode) *Store {
	s := &Store{
		db:   database,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		like: "LIKE",
		mode: mode,
	}
	if database.Driver == config.DriverPostgres {
		s.sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		s.like = "ILIKE"
	}
	return s
}

// CascadeMode returns the configured cascade mode.
func (s *Store) CascadeMode() models.CascadeMode {
	return s.mode
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// mapper converts one entity between its record type and a table row
type mapper[T any] struct {
	entity models.Entity
	values func(*T) []interface{}
	scan   func(scanner) (*T, error)
}

// constraintError translates a constraint violation raised while writing values
// of e, or returns nil for any other error.
func constraintError(e models.Entity, values []interface{}, err error) error {
	if dberrors.IsUniqueViolation(err) {
		return e.AlreadyExists()
	}
	if dberrors.IsForeignKeyViolation(err) {
		if rel, ok := models.ParentOf(e); ok {
			fk := values[models.SchemaFor(e).Index(rel.Column)]
			if ns, ok := fk.(sql.NullString); ok {
				return rel.MissingParent(ns.String)
			}
		}
	}
	return nil
}

func create[T any](ctx context.Context, s *Store, m mapper[T], rec *T) error {
	schema := models.SchemaFor(m.entity)
	values := m.values(rec)

	query, args, err := s.sb.Insert(schema.Table).
		Columns(schema.Columns()...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create %s query: %w", m.entity, err)
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if mapped := constraintError(m.entity, values, err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Str("entity", string(m.entity)).Msg("Error executing create query")
			return fmt.Errorf("error creating %s: %w", m.entity, err)
		}
		return nil
	})
}

func get[T any](ctx context.Context, s *Store, m mapper[T], key string) (*T, error) {
	schema := models.SchemaFor(m.entity)

	query, args, err := s.sb.Select(schema.Columns()...).
		From(schema.Table).
		Where(squirrel.Eq{schema.Key(): key}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get %s query: %w", m.entity, err)
	}

	rec, err := m.scan(s.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, m.entity.NotFound()
		}
		logger.Error().Err(err).Str("entity", string(m.entity)).Str("key", key).Msg("Error scanning row")
		return nil, fmt.Errorf("error getting %s: %w", m.entity, err)
	}
	return rec, nil
}

func update[T any](ctx context.Context, s *Store, m mapper[T], oldKey string, rec *T) error {
	schema := models.SchemaFor(m.entity)
	values := m.values(rec)
	newKey := values[0].(string)

	set := make(map[string]interface{}, len(values))
	for i, col := range schema.Columns() {
		set[col] = values[i]
	}
	query, args, err := s.sb.Update(schema.Table).
		SetMap(set).
		Where(squirrel.Eq{schema.Key(): oldKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update %s query: %w", m.entity, err)
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if mapped := constraintError(m.entity, values, err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Str("entity", string(m.entity)).Str("key", oldKey).Msg("Error executing update query")
			return fmt.Errorf("error updating %s: %w", m.entity, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error reading affected rows: %w", err)
		}
		if n == 0 {
			return m.entity.NotFound()
		}

		if newKey == oldKey {
			return nil
		}
		// ON UPDATE CASCADE has already moved the dependents; this keeps
		// schemas without it consistent.
		for _, rel := range models.Dependents(m.entity) {
			if _, err := s.setForeignKey(ctx, tx, rel, []string{oldKey}, newKey); err != nil {
				return err
			}
		}
		return nil
	})
}

// setForeignKey sets rel.Column to value on every child row referencing one of keys.
func (s *Store) setForeignKey(ctx context.Context, q querier, rel models.Relation, keys []string, value interface{}) (int64, error) {
	query, args, err := s.sb.Update(models.SchemaFor(rel.Child).Table).
		Set(rel.Column, value).
		Where(squirrel.Eq{rel.Column: keys}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s foreign key update: %w", rel.Child, err)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("entity", string(rel.Child)).Msg("Error updating foreign keys")
		return 0, fmt.Errorf("error updating %s foreign keys: %w", rel.Child, err)
	}
	return res.RowsAffected()
}

func (s *Store) remove(ctx context.Context, e models.Entity, key string) (*models.CascadeResult, error) {
	schema := models.SchemaFor(e)
	result := models.NewCascadeResult(e, key, s.mode)

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		keys, err := s.selectKeys(ctx, tx, e, squirrel.Eq{schema.Key(): key})
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return e.NotFound()
		}

		if err := s.cascade(ctx, tx, e, keys, result); err != nil {
			return err
		}
		n, err := s.deleteKeys(ctx, tx, e, keys)
		if err != nil {
			return err
		}
		result.AddDeleted(e, int(n))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cascade applies the cascade mode to every dependent of the parent rows in keys.
// Dependents are handled deepest first.
func (s *Store) cascade(ctx context.Context, tx *sql.Tx, parent models.Entity, keys []string, result *models.CascadeResult) error {
	for _, rel := range models.Dependents(parent) {
		if s.mode == models.CascadeNullify {
			n, err := s.setForeignKey(ctx, tx, rel, keys, nil)
			if err != nil {
				return err
			}
			result.AddNullified(rel.Child, int(n))
			continue
		}

		childKeys, err := s.selectKeys(ctx, tx, rel.Child, squirrel.Eq{rel.Column: keys})
		if err != nil {
			return err
		}
		if len(childKeys) == 0 {
			continue
		}
		if err := s.cascade(ctx, tx, rel.Child, childKeys, result); err != nil {
			return err
		}
		n, err := s.deleteKeys(ctx, tx, rel.Child, childKeys)
		if err != nil {
			return err
		}
		result.AddDeleted(rel.Child, int(n))
	}
	return nil
}

func (s *Store) selectKeys(ctx context.Context, q querier, e models.Entity, where squirrel.Sqlizer) ([]string, error) {
	schema := models.SchemaFor(e)
	query, args, err := s.sb.Select(schema.Key()).
		From(schema.Table).
		Where(where).
		OrderBy(schema.Key() + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s key query: %w", e, err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("entity", string(e)).Msg("Error querying keys")
		return nil, fmt.Errorf("error querying %s keys: %w", e, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("error scanning %s key: %w", e, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s keys: %w", e, err)
	}
	return keys, nil
}

func (s *Store) deleteKeys(ctx context.Context, q querier, e models.Entity, keys []string) (int64, error) {
	schema := models.SchemaFor(e)
	query, args, err := s.sb.Delete(schema.Table).
		Where(squirrel.Eq{schema.Key(): keys}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete %s query: %w", e, err)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("entity", string(e)).Msg("Error executing delete query")
		return 0, fmt.Errorf("error deleting %s: %w", e, err)
	}
	return res.RowsAffected()
}
