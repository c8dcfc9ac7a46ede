package catalog

import (
	"context"

	"github.com/denismitr/mversion/migration"
)

// Router dispatches namespaces to dedicated catalogs and
// falls back to a default one for everything else
type Router struct {
	routes   map[string]Catalog
	fallback Catalog
}

var _ Catalog = (*Router)(nil)

func NewRouter(fallback Catalog) *Router {
	return &Router{routes: make(map[string]Catalog), fallback: fallback}
}

func (r *Router) Route(namespace string, c Catalog) *Router {
	r.routes[namespace] = c
	return r
}

func (r *Router) Enumerate(ctx context.Context, namespace string) (migration.Definitions, error) {
	return r.catalogFor(namespace).Enumerate(ctx, namespace)
}

func (r *Router) ReadFile(ctx context.Context, def migration.Definition) ([]byte, error) {
	return r.catalogFor(def.Namespace).ReadFile(ctx, def)
}

func (r *Router) catalogFor(namespace string) Catalog {
	if c, ok := r.routes[namespace]; ok {
		return c
	}

	return r.fallback
}
