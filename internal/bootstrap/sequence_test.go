package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/internal/resolver"
	"github.com/denismitr/mversion/internal/runner"
	"github.com/denismitr/mversion/internal/store"
	"github.com/denismitr/mversion/internal/store/sqlite"
	"github.com/denismitr/mversion/internal/unit"
	"github.com/denismitr/mversion/migration"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	db       *sqlx.DB
	store    *store.Store
	runner   *runner.Runner
	sequence *Sequence
}

func setup(t *testing.T) *env {
	t.Helper()

	db, err := sqlx.Open(sqlite.DriverName, filepath.Join(t.TempDir(), "bootstrap.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	lg := logger.NullLogger{}
	s := store.New(db, sqlite.NewDialect(""))

	internal := migration.NewRegistry()
	require.NoError(t, Register(internal, s, lg))

	app := catalog.NewInMemory().
		Add(catalog.AppNamespace, "1_create_users.yml", []byte("class: CreateUsers")).
		Add(catalog.AppNamespace, "2_add_email_index.yml", []byte("class: AddEmailIndex"))

	c := catalog.NewRouter(app).Route(Namespace, Catalog(lg))
	run := runner.New(resolver.New(c, s, lg), unit.NewLoader(migration.NewRegistry(), c, lg).Route(Namespace, internal), s, s, lg)

	return &env{
		db:       db,
		store:    s,
		runner:   run,
		sequence: NewSequence(s, Catalog(lg), run, lg),
	}
}

func countRows(t *testing.T, db *sqlx.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM schema_migrations"))

	return n
}

func TestCatalog_InternalDefinitions(t *testing.T) {
	defs, err := Catalog(logger.NullLogger{}).Enumerate(context.Background(), Namespace)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "InitMigrations", defs[1].ClassName)
	assert.Equal(t, "ConvertVersionToClass", defs[2].ClassName)
}

func TestSequence_FreshDatabase(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	require.NoError(t, e.sequence.Run(ctx))

	exists, err := e.store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	id, err := e.store.DetectIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.ClassIdentity, id)

	applied, err := e.store.FindApplied(ctx, store.ClassIdentity, Namespace)
	require.NoError(t, err)
	assert.Contains(t, applied, "InitMigrations")
	assert.Contains(t, applied, "ConvertVersionToClass")

	v, err := e.runner.Version(ctx, Namespace)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	t.Run("running it again changes nothing", func(t *testing.T) {
		rows := countRows(t, e.db)

		require.NoError(t, e.sequence.Run(ctx))
		require.NoError(t, e.sequence.Run(ctx))

		assert.Equal(t, rows, countRows(t, e.db))
	})
}

func TestSequence_LegacyTable(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	require.NoError(t, e.store.CreateTable(ctx))
	for _, ent := range []migration.Entry{
		{Definition: migration.Definition{Version: 1, ClassName: "InitMigrations", Namespace: Namespace}},
		{Definition: migration.Definition{Version: 1, ClassName: "CreateUsers", Namespace: catalog.AppNamespace}},
		{Definition: migration.Definition{Version: 2, ClassName: "AddEmailIndex", Namespace: catalog.AppNamespace}},
	} {
		require.NoError(t, e.store.MarkApplied(ctx, store.VersionIdentity, ent))
	}

	require.NoError(t, e.sequence.Run(ctx))

	t.Run("applied rows of every namespace get their class", func(t *testing.T) {
		applied, err := e.store.FindApplied(ctx, store.ClassIdentity, catalog.AppNamespace)
		require.NoError(t, err)
		assert.Len(t, applied, 2)
		assert.Contains(t, applied, "CreateUsers")
		assert.Contains(t, applied, "AddEmailIndex")

		v, err := e.runner.Version(ctx, catalog.AppNamespace)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("conversion can be rolled back", func(t *testing.T) {
		report, err := e.runner.Run(ctx, Namespace, runner.Options{Version: intPtr(1)})
		require.NoError(t, err)
		require.Len(t, report.Executed, 1)
		assert.Equal(t, "ConvertVersionToClass", report.Executed[0].ClassName)

		id, err := e.store.DetectIdentity(ctx)
		require.NoError(t, err)
		assert.Equal(t, store.VersionIdentity, id)

		legacy, err := e.store.FindApplied(ctx, store.VersionIdentity, catalog.AppNamespace)
		require.NoError(t, err)
		assert.Len(t, legacy, 2)

		v, err := e.runner.Version(ctx, Namespace)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("and applied again on the next start", func(t *testing.T) {
		require.NoError(t, e.sequence.Run(ctx))

		id, err := e.store.DetectIdentity(ctx)
		require.NoError(t, err)
		assert.Equal(t, store.ClassIdentity, id)

		v, err := e.runner.Version(ctx, catalog.AppNamespace)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})
}

func intPtr(v int) *int {
	return &v
}
