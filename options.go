package mversion

import (
	"io/fs"

	"github.com/denismitr/mversion/internal/catalog"
	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

type OptionFunc func(*Migrator) error

func UseColorLogger(p logger.Printer, printSQL, printDebug bool) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewColorLogger(p, printSQL, printDebug)
		return nil
	}
}

func UseBWLogger(p logger.Printer, printSQL, printDebug bool) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewBWLogger(p, printSQL, printDebug)
		return nil
	}
}

func UseLogger(lg logger.Logger) OptionFunc {
	return func(m *Migrator) error {
		if lg == nil {
			return errors.New("logger must not be nil")
		}

		m.lg = lg
		return nil
	}
}

// UseLocalFolderCatalog reads definitions from root/migrations for the
// application and from root/plugins/<Plugin>/migrations for plugins
func UseLocalFolderCatalog(root string, extensions ...string) OptionFunc {
	return func(m *Migrator) error {
		if root == "" {
			return errors.New("migrations root folder must not be empty")
		}

		m.catalogFn = func(lg logger.Logger) catalog.Catalog {
			opts := []catalog.FolderOption{catalog.WithLogger(lg)}
			if len(extensions) > 0 {
				opts = append(opts, catalog.WithExtensions(extensions...))
			}

			return catalog.NewLocalFolder(root, opts...)
		}

		return nil
	}
}

// UseFSCatalog reads definitions from any file system, an embed.FS for example
func UseFSCatalog(fsys fs.FS, layout catalog.PathFunc) OptionFunc {
	return func(m *Migrator) error {
		m.catalogFn = func(lg logger.Logger) catalog.Catalog {
			opts := []catalog.FolderOption{catalog.WithLogger(lg)}
			if layout != nil {
				opts = append(opts, catalog.WithLayout(layout))
			}

			return catalog.NewFolder(fsys, opts...)
		}

		return nil
	}
}

func UseCatalog(c catalog.Catalog) OptionFunc {
	return func(m *Migrator) error {
		if c == nil {
			return errors.New("catalog must not be nil")
		}

		m.catalogFn = func(logger.Logger) catalog.Catalog { return c }
		return nil
	}
}

// UseRegistry provides the Go units referenced by class name,
// the internal migrations keep a registry of their own
func UseRegistry(r *migration.Registry) OptionFunc {
	return func(m *Migrator) error {
		m.registry = r
		return nil
	}
}

func WithClock(clock migration.ClockFunc) OptionFunc {
	return func(m *Migrator) error {
		m.clock = clock
		return nil
	}
}
