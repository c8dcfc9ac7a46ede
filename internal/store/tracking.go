package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Operations below change the tracking table itself and are
// meant for the internal migrations only

func (s *Store) CreateTable(ctx context.Context) error {
	return s.exec(ctx, s.dialect.CreateTableQuery())
}

func (s *Store) DropTable(ctx context.Context) error {
	return s.exec(ctx, s.dialect.DropTableQuery())
}

func (s *Store) AddClassColumn(ctx context.Context) error {
	return s.exec(ctx, s.dialect.AddClassColumnQuery())
}

func (s *Store) DropClassColumn(ctx context.Context) error {
	return s.exec(ctx, s.dialect.DropClassColumnQuery())
}

// Namespaces that have at least one applied row
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT type FROM %s ORDER BY type", s.Table())

	s.lg.SQL(q)

	var namespaces []string
	if err := s.db.SelectContext(ctx, &namespaces, q); err != nil {
		return nil, errors.Wrap(err, "could not read namespaces")
	}

	return namespaces, nil
}

// FillClass sets the class of rows recorded by version only
func (s *Store) FillClass(ctx context.Context, namespace string, version int, className string) (int64, error) {
	q := s.db.Rebind(fmt.Sprintf(
		"UPDATE %s SET %s = ? WHERE type = ? AND %s = ?",
		s.Table(), classColumn, versionColumn,
	))

	return s.update(ctx, q, className, namespace, version)
}

// FillVersion sets the version of rows recorded by class only
func (s *Store) FillVersion(ctx context.Context, namespace string, className string, version int) (int64, error) {
	q := s.db.Rebind(fmt.Sprintf(
		"UPDATE %s SET %s = ? WHERE type = ? AND %s = ?",
		s.Table(), versionColumn, classColumn,
	))

	return s.update(ctx, q, version, namespace, className)
}

func (s *Store) exec(ctx context.Context, q string) error {
	s.lg.SQL(q)

	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return errors.Wrapf(err, "could not alter tracking table [%s]", s.Table())
	}

	return nil
}

func (s *Store) update(ctx context.Context, q string, args ...interface{}) (int64, error) {
	s.lg.SQL(q, args...)

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "could not update tracking table [%s]", s.Table())
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "could not count updated rows")
	}

	return n, nil
}
