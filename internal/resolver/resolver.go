package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/internal/store"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

type StateStore interface {
	FindApplied(ctx context.Context, id store.Identity, namespace string) (map[string]time.Time, error)
	MarkApplied(ctx context.Context, id store.Identity, e migration.Entry) error
	MarkUnapplied(ctx context.Context, id store.Identity, e migration.Entry) (int64, error)
}

// Resolver joins the definitions of a namespace with its applied state
// and keeps the result until the namespace is written to
type Resolver struct {
	sync.Mutex
	catalog catalog.Catalog
	store   StateStore
	lg      logger.Logger
	cache   map[string]migration.Mapping
}

func New(c catalog.Catalog, s StateStore, lg logger.Logger) *Resolver {
	return &Resolver{
		catalog: c,
		store:   s,
		lg:      lg,
		cache:   make(map[string]migration.Mapping),
	}
}

// Resolve returns the mapping of the namespace ordered by version.
// A namespace without definitions resolves to an empty mapping.
func (r *Resolver) Resolve(
	ctx context.Context,
	id store.Identity,
	namespace string,
	useCache bool,
) (migration.Mapping, error) {
	if useCache {
		if m, ok := r.cached(namespace); ok {
			return m, nil
		}
	}

	defs, err := r.catalog.Enumerate(ctx, namespace)
	if err != nil {
		return nil, errors.Wrapf(err, "could not enumerate migrations of [%s]", namespace)
	}

	if len(defs) == 0 {
		return migration.Mapping{}, nil
	}

	applied, err := r.store.FindApplied(ctx, id, namespace)
	if err != nil {
		return nil, err
	}

	mapping := make(migration.Mapping, len(defs))
	for _, v := range defs.Versions() {
		e := migration.NewEntry(defs[v], nil)
		if created, ok := applied[id.Key(e)]; ok {
			migratedAt := created
			e.MigratedAt = &migratedAt
		}

		mapping[v] = e
	}

	r.Lock()
	r.cache[namespace] = mapping
	r.Unlock()

	return mapping, nil
}

// Current is the highest migrated version of the namespace, 0 when none
func (r *Resolver) Current(ctx context.Context, id store.Identity, namespace string) (int, error) {
	m, err := r.Resolve(ctx, id, namespace, true)
	if err != nil {
		return 0, err
	}

	return m.Current(), nil
}

// SetVersion records the entry as applied or not, the cached mapping of
// its namespace is dropped whatever the outcome
func (r *Resolver) SetVersion(ctx context.Context, id store.Identity, e migration.Entry, migrated bool) error {
	defer r.Evict(e.Namespace)

	if migrated {
		return r.store.MarkApplied(ctx, id, e)
	}

	n, err := r.store.MarkUnapplied(ctx, id, e)
	if err != nil {
		return err
	}

	if n == 0 {
		r.lg.Debugf("no applied rows removed for [%s] of [%s]", e.Name, e.Namespace)
	}

	return nil
}

func (r *Resolver) Evict(namespace string) {
	r.Lock()
	defer r.Unlock()

	delete(r.cache, namespace)
}

// Reset drops every cached mapping
func (r *Resolver) Reset() {
	r.Lock()
	defer r.Unlock()

	r.cache = make(map[string]migration.Mapping)
}

func (r *Resolver) cached(namespace string) (migration.Mapping, bool) {
	r.Lock()
	defer r.Unlock()

	m, ok := r.cache[namespace]
	if !ok || len(m) == 0 {
		return nil, false
	}

	return m, true
}
