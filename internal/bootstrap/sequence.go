package bootstrap

import (
	"context"
	"embed"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/internal/runner"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

// Namespace of the migrations that maintain the tracking table itself
const Namespace = "migrations"

const definitionsFolder = "migrations"

//go:embed migrations/*.yml
var definitions embed.FS

// Catalog of the internal migrations, embedded into the binary
func Catalog(lg logger.Logger) catalog.Catalog {
	return catalog.NewFolder(
		definitions,
		catalog.WithLogger(lg),
		catalog.WithLayout(func(string) string { return definitionsFolder }),
	)
}

type TableChecker interface {
	Exists(ctx context.Context) (bool, error)
}

// Sequence creates the tracking table when it is missing and brings
// it up to date, running it again changes nothing
type Sequence struct {
	tables  TableChecker
	catalog catalog.Catalog
	runner  *runner.Runner
	lg      logger.Logger
}

func NewSequence(t TableChecker, c catalog.Catalog, r *runner.Runner, lg logger.Logger) *Sequence {
	return &Sequence{tables: t, catalog: c, runner: r, lg: lg}
}

func (s *Sequence) Run(ctx context.Context) error {
	exists, err := s.tables.Exists(ctx)
	if err != nil {
		return errors.Wrap(err, "could not check the tracking table")
	}

	if !exists {
		if err := s.init(ctx); err != nil {
			return err
		}
	}

	mapping, err := s.runner.Mapping(ctx, Namespace)
	if err != nil {
		return err
	}

	if len(mapping) > 1 {
		latest := mapping.Latest()
		report, err := s.runner.Run(ctx, Namespace, runner.Options{Version: &latest})
		if err != nil {
			return errors.Wrap(err, "could not upgrade the tracking table")
		}

		if len(report.Executed) > 0 {
			s.lg.Successf("tracking table upgraded to version %d", report.To)
		}
	}

	return nil
}

func (s *Sequence) init(ctx context.Context) error {
	defs, err := s.catalog.Enumerate(ctx, Namespace)
	if err != nil {
		return err
	}

	def, ok := defs[1]
	if !ok {
		return errors.Wrap(migration.ErrDefinitionNotFound, "initial tracking table migration is missing")
	}

	s.lg.Debugf("tracking table not found, running [%s]", def.Name)

	return s.runner.Execute(ctx, migration.NewEntry(def, nil), migration.Up)
}
