package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/internal/store"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	applied map[string]map[string]time.Time
	reads   int
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{applied: make(map[string]map[string]time.Time)}
}

func (s *fakeStore) FindApplied(_ context.Context, _ store.Identity, ns string) (map[string]time.Time, error) {
	s.reads++
	result := make(map[string]time.Time)
	for k, v := range s.applied[ns] {
		result[k] = v
	}
	return result, nil
}

func (s *fakeStore) MarkApplied(_ context.Context, id store.Identity, e migration.Entry) error {
	if s.failOn == e.ClassName {
		return errors.New("connection lost")
	}

	if s.applied[e.Namespace] == nil {
		s.applied[e.Namespace] = make(map[string]time.Time)
	}
	s.applied[e.Namespace][id.Key(e)] = time.Now()
	return nil
}

func (s *fakeStore) MarkUnapplied(_ context.Context, id store.Identity, e migration.Entry) (int64, error) {
	if _, ok := s.applied[e.Namespace][id.Key(e)]; !ok {
		return 0, nil
	}
	delete(s.applied[e.Namespace], id.Key(e))
	return 1, nil
}

func newCatalog() catalog.Catalog {
	return catalog.NewInMemory().
		Add("app", "1_create_users.yml", nil).
		Add("app", "3_create_orders.yml", nil).
		Add("app", "2_add_email_index.yml", nil)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.applied["app"] = map[string]time.Time{"1": created, "2": created}

	r := New(newCatalog(), s, logger.NullLogger{})

	t.Run("definitions are joined with applied rows", func(t *testing.T) {
		m, err := r.Resolve(ctx, store.VersionIdentity, "app", false)
		require.NoError(t, err)
		require.Len(t, m, 3)
		assert.Equal(t, []int{1, 2, 3}, m.Versions())

		require.NotNil(t, m[1].MigratedAt)
		assert.Equal(t, created, *m[1].MigratedAt)
		assert.True(t, m[2].Migrated())
		assert.False(t, m[3].Migrated())
		assert.Equal(t, "CreateOrders", m[3].ClassName)
		assert.Equal(t, "app", m[3].Namespace)
	})

	t.Run("class identity matches on class names", func(t *testing.T) {
		s.applied["app"] = map[string]time.Time{"CreateOrders": created}

		m, err := r.Resolve(ctx, store.ClassIdentity, "app", false)
		require.NoError(t, err)
		assert.False(t, m[1].Migrated())
		assert.True(t, m[3].Migrated())
	})

	t.Run("namespace without definitions", func(t *testing.T) {
		reads := s.reads

		m, err := r.Resolve(ctx, store.VersionIdentity, "billing", true)
		require.NoError(t, err)
		assert.Len(t, m, 0)
		assert.Equal(t, reads, s.reads, "store must not be queried")

		v, err := r.Current(ctx, store.VersionIdentity, "billing")
		require.NoError(t, err)
		assert.Equal(t, 0, v)
	})
}

func TestResolver_Cache(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	r := New(newCatalog(), s, logger.NullLogger{})
	id := store.VersionIdentity

	m, err := r.Resolve(ctx, id, "app", true)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Current())
	assert.Equal(t, 1, s.reads)

	t.Run("cached mapping is reused", func(t *testing.T) {
		_, err := r.Resolve(ctx, id, "app", true)
		require.NoError(t, err)
		assert.Equal(t, 1, s.reads)
	})

	t.Run("cache can be bypassed", func(t *testing.T) {
		_, err := r.Resolve(ctx, id, "app", false)
		require.NoError(t, err)
		assert.Equal(t, 2, s.reads)
	})

	t.Run("writes invalidate the cache", func(t *testing.T) {
		require.NoError(t, r.SetVersion(ctx, id, m[1], true))

		v, err := r.Current(ctx, id, "app")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, 3, s.reads)

		require.NoError(t, r.SetVersion(ctx, id, m[1], false))

		v, err = r.Current(ctx, id, "app")
		require.NoError(t, err)
		assert.Equal(t, 0, v)
	})

	t.Run("removing an absent row is not an error", func(t *testing.T) {
		assert.NoError(t, r.SetVersion(ctx, id, m[2], false))
	})

	t.Run("failed write still invalidates the cache", func(t *testing.T) {
		_, err := r.Resolve(ctx, id, "app", true)
		require.NoError(t, err)
		reads := s.reads

		s.failOn = "CreateOrders"
		assert.Error(t, r.SetVersion(ctx, id, m[3], true))

		_, err = r.Resolve(ctx, id, "app", true)
		require.NoError(t, err)
		assert.Equal(t, reads+1, s.reads)
	})

	t.Run("reset drops everything", func(t *testing.T) {
		_, err := r.Resolve(ctx, id, "app", true)
		require.NoError(t, err)
		reads := s.reads

		r.Reset()

		_, err = r.Resolve(ctx, id, "app", true)
		require.NoError(t, err)
		assert.Equal(t, reads+1, s.reads)
	})
}
