package mversion

import (
	"context"

	"github.com/denismitr/mversion/internal/bootstrap"
	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/internal/resolver"
	"github.com/denismitr/mversion/internal/runner"
	"github.com/denismitr/mversion/internal/store"
	"github.com/denismitr/mversion/internal/unit"
	"github.com/denismitr/mversion/migration"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrStoreNotInitialized = errors.New("migrations store has not been initialized")

type CloserFunc func() error

type Migrator struct {
	lg             logger.Logger
	db             *sqlx.DB
	dialect        store.Dialect
	connectOptions *store.ConnectOptions
	clock          migration.ClockFunc
	catalogFn      func(lg logger.Logger) catalog.Catalog
	registry       *migration.Registry
	closerFns      []CloserFunc

	store        *store.Store
	runner       *runner.Runner
	sequence     *bootstrap.Sequence
	bootstrapped bool
}

// NewMigrator creates a migrator using the option callbacks, a database
// option is required, everything else falls back to defaults: a local
// ./migrations folder, an empty registry and a silent logger
func NewMigrator(opts ...OptionFunc) (*Migrator, CloserFunc, error) {
	m := new(Migrator)
	m.lg = logger.NullLogger{}

	for _, oFunc := range opts {
		if err := oFunc(m); err != nil {
			return nil, nil, err
		}
	}

	if m.db == nil || m.dialect == nil {
		return nil, nil, ErrStoreNotInitialized
	}

	if m.catalogFn == nil {
		m.catalogFn = func(lg logger.Logger) catalog.Catalog {
			return catalog.NewLocalFolder(".", catalog.WithLogger(lg))
		}
	}

	if m.registry == nil {
		m.registry = migration.NewRegistry()
	}

	if m.connectOptions == nil {
		m.connectOptions = store.NewDefaultConnectOptions()
	}

	storeOpts := []store.Option{store.WithLogger(m.lg)}
	if m.clock != nil {
		storeOpts = append(storeOpts, store.WithClock(m.clock))
	}

	m.store = store.New(m.db, m.dialect, storeOpts...)

	internalRegistry := migration.NewRegistry()
	if err := bootstrap.Register(internalRegistry, m.store, m.lg); err != nil {
		return nil, nil, errors.Wrap(err, "could not register internal migrations")
	}

	internal := bootstrap.Catalog(m.lg)
	router := catalog.NewRouter(m.catalogFn(m.lg)).Route(bootstrap.Namespace, internal)

	m.runner = runner.New(
		resolver.New(router, m.store, m.lg),
		unit.NewLoader(m.registry, router, m.lg).Route(bootstrap.Namespace, internalRegistry),
		m.store,
		m.store,
		m.lg,
	)

	m.sequence = bootstrap.NewSequence(m.store, internal, m.runner, m.lg)

	return m, m.close, nil
}

// Bootstrap makes sure the tracking table exists and is up to date,
// the other operations call it on first use
func (m *Migrator) Bootstrap(ctx context.Context) error {
	if err := m.store.Connect(ctx, m.connectOptions); err != nil {
		m.lg.Error(err)
		return err
	}

	if err := m.sequence.Run(ctx); err != nil {
		m.lg.Error(err)
		return err
	}

	m.bootstrapped = true

	return nil
}

// Run migrates the namespace up or down, the action configurators decide
// the target version and the direction
func (m *Migrator) Run(ctx context.Context, namespace string, cfs ...ActionConfigurator) (*migration.Report, error) {
	if err := m.ensureBootstrapped(ctx); err != nil {
		return nil, err
	}

	act := new(Action)
	for _, f := range cfs {
		f(act)
	}

	report, err := m.runner.Run(ctx, namespace, runner.Options{
		Version:   act.version,
		Direction: act.direction,
	})

	if err != nil {
		m.lg.Error(err)
		return report, err
	}

	if len(report.Executed) == 0 {
		m.lg.Successf("namespace [%s] is already at version %d", namespace, report.To)
	} else {
		m.lg.Successf(
			"namespace [%s] moved %s from version %d to %d, %d migration(s) executed",
			namespace, report.Direction, report.From, report.To, len(report.Executed),
		)
	}

	return report, nil
}

// Version is the highest applied version of the namespace
func (m *Migrator) Version(ctx context.Context, namespace string) (int, error) {
	if err := m.ensureBootstrapped(ctx); err != nil {
		return 0, err
	}

	return m.runner.Version(ctx, namespace)
}

// Mapping lists every known migration of the namespace with the time
// it was applied, if it was. The result belongs to the caller.
func (m *Migrator) Mapping(ctx context.Context, namespace string) (migration.Mapping, error) {
	if err := m.ensureBootstrapped(ctx); err != nil {
		return nil, err
	}

	mapping, err := m.runner.Mapping(ctx, namespace)
	if err != nil {
		return nil, err
	}

	return mapping.Clone(), nil
}

func (m *Migrator) ensureBootstrapped(ctx context.Context) error {
	if m.bootstrapped {
		return nil
	}

	return m.Bootstrap(ctx)
}

// Close the migrator
func (m *Migrator) close() error {
	var result error
	for i := len(m.closerFns) - 1; i >= 0; i-- {
		if err := m.closerFns[i](); err != nil {
			m.lg.Error(err)
			if result == nil {
				result = err
			}
		}
	}

	m.closerFns = nil

	return result
}
