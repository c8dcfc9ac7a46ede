package store

import (
	"context"
	"fmt"
	"time"

	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/migration"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrUnknownIdentity = errors.New("unknown identity mode")

type Option func(*Store)

// Store persists which migrations have been applied, per namespace
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	lg      logger.Logger
	clock   migration.ClockFunc
}

var _ migration.Executor = (*Store)(nil)

type appliedRow struct {
	Ident   string    `db:"ident"`
	Created time.Time `db:"created"`
}

func WithLogger(lg logger.Logger) Option {
	return func(s *Store) {
		s.lg = lg
	}
}

func WithClock(clock migration.ClockFunc) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

func New(db *sqlx.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		lg:      logger.NullLogger{},
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Table() string {
	return s.dialect.MigrationsTable()
}

// Exists reports whether the tracking table is present
func (s *Store) Exists(ctx context.Context) (bool, error) {
	var tables []string
	q := s.dialect.ShowTablesQuery()

	s.lg.SQL(q)
	if err := s.db.SelectContext(ctx, &tables, q); err != nil {
		return false, errors.Wrap(err, "could not list tables")
	}

	for i := range tables {
		if tables[i] == s.Table() {
			return true, nil
		}
	}

	return false, nil
}

// DetectIdentity inspects the tracking table columns, tables
// that have a class column use the class identity
func (s *Store) DetectIdentity(ctx context.Context) (Identity, error) {
	q := fmt.Sprintf("SELECT * FROM %s LIMIT 0", s.Table())

	s.lg.SQL(q)
	rows, err := s.db.QueryxContext(ctx, q)
	if err != nil {
		return 0, errors.Wrapf(err, "could not inspect table [%s]", s.Table())
	}

	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, errors.Wrapf(err, "could not read columns of [%s]", s.Table())
	}

	for _, c := range columns {
		if c == classColumn {
			return ClassIdentity, nil
		}
	}

	return VersionIdentity, nil
}

// FindApplied returns the time each migration of the namespace was applied,
// keyed the way Identity.Key keys entries
func (s *Store) FindApplied(ctx context.Context, id Identity, namespace string) (map[string]time.Time, error) {
	if err := validate(id); err != nil {
		return nil, err
	}

	col := id.Column()
	q := s.db.Rebind(fmt.Sprintf(
		"SELECT %s AS ident, created FROM %s WHERE type = ? AND %s IS NOT NULL",
		col, s.Table(), col,
	))

	s.lg.SQL(q, namespace)

	var rows []appliedRow
	if err := s.db.SelectContext(ctx, &rows, q, namespace); err != nil {
		return nil, errors.Wrapf(err, "could not read applied migrations of [%s]", namespace)
	}

	result := make(map[string]time.Time, len(rows))
	for i := range rows {
		result[rows[i].Ident] = rows[i].Created
	}

	return result, nil
}

// MarkApplied inserts a row for the entry, uniqueness is not enforced here
func (s *Store) MarkApplied(ctx context.Context, id Identity, e migration.Entry) error {
	if err := validate(id); err != nil {
		return err
	}

	q := s.db.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s, type, created) VALUES (?, ?, ?)",
		s.Table(), id.Column(),
	))

	args := []interface{}{id.Value(e), e.Namespace, s.clock().UTC()}
	s.lg.SQL(q, args...)

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrapf(err, "could not mark [%s] of [%s] as applied", e.Name, e.Namespace)
	}

	return nil
}

// MarkUnapplied removes the rows of the entry and returns how many were removed,
// removing nothing is not an error
func (s *Store) MarkUnapplied(ctx context.Context, id Identity, e migration.Entry) (int64, error) {
	if err := validate(id); err != nil {
		return 0, err
	}

	q := s.db.Rebind(fmt.Sprintf(
		"DELETE FROM %s WHERE %s = ? AND type = ?",
		s.Table(), id.Column(),
	))

	args := []interface{}{id.Value(e), e.Namespace}
	s.lg.SQL(q, args...)

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "could not mark [%s] of [%s] as unapplied", e.Name, e.Namespace)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "could not count removed rows")
	}

	return n, nil
}

func (s *Store) Exec(ctx context.Context, statements ...string) error {
	if len(statements) == 0 {
		return nil
	}

	return s.InTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		for _, stmt := range statements {
			s.lg.SQL(stmt)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "statement failed: %s", stmt)
			}
		}

		return nil
	})
}

func validate(id Identity) error {
	if id != VersionIdentity && id != ClassIdentity {
		return errors.Wrapf(ErrUnknownIdentity, "%d", id)
	}

	return nil
}
