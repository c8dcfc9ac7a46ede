package unit

import (
	"context"
	"path"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

var scriptExtensions = map[string]bool{".yml": true, ".yaml": true}

// Loader instantiates the unit behind a definition. Registered classes
// are used as is, otherwise the definition file must describe the class.
type Loader struct {
	fallback *migration.Registry
	routes   map[string]*migration.Registry
	catalog  catalog.Catalog
	lg       logger.Logger
}

func NewLoader(r *migration.Registry, c catalog.Catalog, lg logger.Logger) *Loader {
	return &Loader{
		fallback: r,
		routes:   make(map[string]*migration.Registry),
		catalog:  c,
		lg:       lg,
	}
}

// Route makes r the only registry consulted for the namespace,
// its classes are invisible to every other namespace
func (l *Loader) Route(namespace string, r *migration.Registry) *Loader {
	l.routes[namespace] = r
	return l
}

func (l *Loader) registryFor(namespace string) *migration.Registry {
	if r, ok := l.routes[namespace]; ok {
		return r
	}

	return l.fallback
}

func (l *Loader) Load(ctx context.Context, def migration.Definition) (migration.Unit, error) {
	if factory, ok := l.registryFor(def.Namespace).Lookup(def.Namespace, def.ClassName); ok {
		l.lg.Debugf("using registered class [%s] for [%s]", def.ClassName, def.Name)
		return factory(), nil
	}

	b, err := l.catalog.ReadFile(ctx, def)
	if err != nil {
		return nil, err
	}

	if !scriptExtensions[path.Ext(def.Path)] {
		return nil, errors.Wrapf(
			migration.ErrIdentifierNotFound,
			"class [%s] is not registered for file [%s] of namespace [%s]",
			def.ClassName, def.Path, def.Namespace,
		)
	}

	s, err := ParseScript(b)
	if err != nil {
		return nil, errors.Wrapf(err, "file [%s]", def.Path)
	}

	if s.Class != def.ClassName {
		return nil, errors.Wrapf(
			migration.ErrIdentifierNotFound,
			"class [%s] not found in file [%s] of namespace [%s], found [%s]",
			def.ClassName, def.Path, def.Namespace, s.Class,
		)
	}

	return s, nil
}
