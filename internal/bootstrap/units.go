package bootstrap

import (
	"context"

	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

const (
	initMigrationsClass        = "InitMigrations"
	convertVersionToClassClass = "ConvertVersionToClass"
)

// TrackingStore is the part of the store the internal migrations work with
type TrackingStore interface {
	CreateTable(ctx context.Context) error
	DropTable(ctx context.Context) error
	AddClassColumn(ctx context.Context) error
	DropClassColumn(ctx context.Context) error
	Namespaces(ctx context.Context) ([]string, error)
	FillClass(ctx context.Context, namespace string, version int, className string) (int64, error)
	FillVersion(ctx context.Context, namespace string, className string, version int) (int64, error)
}

// Register makes the internal migrations loadable by class name
func Register(r *migration.Registry, s TrackingStore, lg logger.Logger) error {
	if err := r.Register(initMigrationsClass, func() migration.Unit {
		return &InitMigrations{store: s}
	}); err != nil {
		return err
	}

	return r.Register(convertVersionToClassClass, func() migration.Unit {
		return &ConvertVersionToClass{store: s, lg: lg}
	})
}

type InitMigrations struct {
	store TrackingStore
}

var _ migration.TrackingChanger = (*InitMigrations)(nil)

func (m *InitMigrations) Up(ctx context.Context, _ migration.Env) error {
	return m.store.CreateTable(ctx)
}

func (m *InitMigrations) Down(ctx context.Context, _ migration.Env) error {
	return m.store.DropTable(ctx)
}

func (m *InitMigrations) ChangesTracking() bool {
	return true
}

// ConvertVersionToClass adds the class column and fills it for every
// applied row, rows are matched with definitions through the catalog
type ConvertVersionToClass struct {
	store TrackingStore
	lg    logger.Logger
}

var _ migration.TrackingChanger = (*ConvertVersionToClass)(nil)

func (m *ConvertVersionToClass) Up(ctx context.Context, env migration.Env) error {
	if err := m.store.AddClassColumn(ctx); err != nil {
		return err
	}

	return m.eachApplied(ctx, env, func(e migration.Entry) (int64, error) {
		return m.store.FillClass(ctx, e.Namespace, e.Version, e.ClassName)
	})
}

func (m *ConvertVersionToClass) Down(ctx context.Context, env migration.Env) error {
	err := m.eachApplied(ctx, env, func(e migration.Entry) (int64, error) {
		return m.store.FillVersion(ctx, e.Namespace, e.ClassName, e.Version)
	})

	if err != nil {
		return err
	}

	return m.store.DropClassColumn(ctx)
}

func (m *ConvertVersionToClass) ChangesTracking() bool {
	return true
}

func (m *ConvertVersionToClass) eachApplied(
	ctx context.Context,
	env migration.Env,
	fill func(e migration.Entry) (int64, error),
) error {
	namespaces, err := m.store.Namespaces(ctx)
	if err != nil {
		return err
	}

	for _, ns := range namespaces {
		mapping, err := env.Versioner.Mapping(ctx, ns)
		if err != nil {
			return errors.Wrapf(err, "could not resolve namespace [%s]", ns)
		}

		if len(mapping) == 0 {
			m.lg.Debugf("namespace [%s] has applied rows but no definitions, left as is", ns)
			continue
		}

		for _, v := range mapping.Versions() {
			e := mapping[v]
			if !e.Migrated() {
				continue
			}

			n, err := fill(e)
			if err != nil {
				return err
			}

			m.lg.Debugf("converted %d row(s) of [%s] version %d [%s]", n, ns, v, e.ClassName)
		}
	}

	return nil
}
