package catalog

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseFilename(t *testing.T) {
	extensions := extensionSet(DefaultExtensions)

	tt := []struct {
		filename  string
		ok        bool
		version   int
		name      string
		className string
	}{
		{filename: "001_create_users.yml", ok: true, version: 1, name: "001_create_users", className: "CreateUsers"},
		{filename: "2_add_email_index.yaml", ok: true, version: 2, name: "2_add_email_index", className: "AddEmailIndex"},
		{filename: "15_create_orders.go", ok: true, version: 15, name: "15_create_orders", className: "CreateOrders"},
		{filename: "0_zero.yml", ok: false},
		{filename: "-3_negative.yml", ok: false},
		{filename: "abc_users.yml", ok: false},
		{filename: "7_.yml", ok: false},
		{filename: "7.yml", ok: false},
		{filename: "3_create_users.sql", ok: false},
		{filename: "README.md", ok: false},
	}

	for _, tc := range tt {
		t.Run(tc.filename, func(t *testing.T) {
			def, ok := ParseFilename(tc.filename, extensions)
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}

			assert.Equal(t, tc.version, def.Version)
			assert.Equal(t, tc.name, def.Name)
			assert.Equal(t, tc.className, def.ClassName)
		})
	}
}

func Test_DefaultLayout(t *testing.T) {
	assert.Equal(t, "migrations", DefaultLayout("app"))
	assert.Equal(t, "plugins/Billing/migrations", DefaultLayout("billing"))
	assert.Equal(t, "plugins/UserAccounts/migrations", DefaultLayout("user_accounts"))
}

func Test_FolderEnumerate(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/001_create_users.yml":               {Data: []byte("class: CreateUsers")},
		"migrations/002_add_email_index.yml":            {Data: []byte("class: AddEmailIndex")},
		"migrations/003_create_orders.yml":              {Data: []byte("class: CreateOrders")},
		"migrations/notes.txt":                          {Data: []byte("ignored")},
		"migrations/draft_something.yml":                {Data: []byte("ignored")},
		"migrations/nested/004_nested.yml":              {Data: []byte("ignored")},
		"plugins/Billing/migrations/001_invoices.yml":   {Data: []byte("class: Invoices")},
		"plugins/Broken/migrations/001_first.yml":       {Data: []byte("class: First")},
		"plugins/Broken/migrations/01_first_again.yaml": {Data: []byte("class: FirstAgain")},
	}

	c := NewFolder(fsys)
	ctx := context.Background()

	t.Run("application namespace", func(t *testing.T) {
		defs, err := c.Enumerate(ctx, AppNamespace)
		require.NoError(t, err)
		require.Len(t, defs, 3)
		assert.Equal(t, []int{1, 2, 3}, defs.Versions())

		assert.Equal(t, migration.Definition{
			Version:   2,
			Name:      "002_add_email_index",
			ClassName: "AddEmailIndex",
			Namespace: "app",
			Path:      "migrations/002_add_email_index.yml",
		}, defs[2])
	})

	t.Run("plugin namespace", func(t *testing.T) {
		defs, err := c.Enumerate(ctx, "billing")
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "Invoices", defs[1].ClassName)
		assert.Equal(t, "billing", defs[1].Namespace)
	})

	t.Run("missing folder is not an error", func(t *testing.T) {
		defs, err := c.Enumerate(ctx, "unknown")
		require.NoError(t, err)
		assert.Len(t, defs, 0)
	})

	t.Run("duplicate versions are rejected", func(t *testing.T) {
		_, err := c.Enumerate(ctx, "broken")
		require.Error(t, err)
		assert.True(t, errors.Is(err, migration.ErrDuplicateVersion))
		assert.Contains(t, err.Error(), "001_first.yml")
		assert.Contains(t, err.Error(), "01_first_again.yaml")
	})

	t.Run("file can be read", func(t *testing.T) {
		defs, err := c.Enumerate(ctx, AppNamespace)
		require.NoError(t, err)

		b, err := c.ReadFile(ctx, defs[3])
		require.NoError(t, err)
		assert.Equal(t, "class: CreateOrders", string(b))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := c.ReadFile(ctx, migration.Definition{
			Version:   9,
			Name:      "009_gone",
			Namespace: AppNamespace,
			Path:      "migrations/009_gone.yml",
		})

		assert.True(t, errors.Is(err, migration.ErrDefinitionNotFound))
	})

	t.Run("custom layout and extensions", func(t *testing.T) {
		custom := NewFolder(fsys, WithExtensions("yaml"), WithLayout(func(ns string) string {
			return "plugins/Broken/migrations"
		}))

		defs, err := custom.Enumerate(ctx, "anything")
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "FirstAgain", defs[1].ClassName)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.Enumerate(cctx, AppNamespace)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func Test_InMemoryAndRouter(t *testing.T) {
	ctx := context.Background()

	internal := NewInMemory().
		Add("migrations", "001_init_migrations.yml", []byte("class: InitMigrations"))

	app := NewInMemory().
		Add(AppNamespace, "001_create_users.yml", []byte("class: CreateUsers")).
		Add(AppNamespace, "002_add_email_index.yml", []byte("class: AddEmailIndex"))

	r := NewRouter(app).Route("migrations", internal)

	defs, err := r.Enumerate(ctx, "migrations")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "InitMigrations", defs[1].ClassName)

	defs, err = r.Enumerate(ctx, AppNamespace)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	b, err := r.ReadFile(ctx, defs[2])
	require.NoError(t, err)
	assert.Equal(t, "class: AddEmailIndex", string(b))

	_, err = r.ReadFile(ctx, migration.Definition{Namespace: AppNamespace, Name: "003_x", Path: "app/003_x.yml"})
	assert.True(t, errors.Is(err, migration.ErrDefinitionNotFound))

	empty, err := r.Enumerate(ctx, "billing")
	require.NoError(t, err)
	assert.Len(t, empty, 0)
}
