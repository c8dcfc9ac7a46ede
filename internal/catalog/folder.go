package catalog

import (
	"context"
	"io/fs"
	"os"
	"path"

	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

type FolderOption func(*Folder)

// Folder reads definitions from a file tree, one folder per namespace
type Folder struct {
	fsys       fs.FS
	layout     PathFunc
	extensions map[string]bool
	lg         logger.Logger
}

var _ Catalog = (*Folder)(nil)

func WithLayout(layout PathFunc) FolderOption {
	return func(f *Folder) {
		f.layout = layout
	}
}

func WithExtensions(extensions ...string) FolderOption {
	return func(f *Folder) {
		f.extensions = extensionSet(extensions)
	}
}

func WithLogger(lg logger.Logger) FolderOption {
	return func(f *Folder) {
		f.lg = lg
	}
}

func NewFolder(fsys fs.FS, opts ...FolderOption) *Folder {
	f := &Folder{
		fsys:       fsys,
		layout:     DefaultLayout,
		extensions: extensionSet(DefaultExtensions),
		lg:         logger.NullLogger{},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// NewLocalFolder creates a catalog rooted at a directory on disk
func NewLocalFolder(root string, opts ...FolderOption) *Folder {
	return NewFolder(os.DirFS(root), opts...)
}

func (f *Folder) Enumerate(ctx context.Context, namespace string) (migration.Definitions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := f.layout(namespace)
	defs := make(migration.Definitions)

	entries, err := fs.ReadDir(f.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.lg.Debugf("no migrations folder [%s] for namespace [%s]", dir, namespace)
			return defs, nil
		}

		return nil, errors.Wrapf(err, "could not read migrations folder [%s]", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		def, ok := ParseFilename(entry.Name(), f.extensions)
		if !ok {
			f.lg.Debugf("skipping [%s], not a migration file", entry.Name())
			continue
		}

		def.Namespace = namespace
		def.Path = path.Join(dir, entry.Name())

		if err := addDefinition(defs, def); err != nil {
			return nil, err
		}
	}

	return defs, nil
}

func (f *Folder) ReadFile(ctx context.Context, def migration.Definition) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if def.Path == "" {
		return nil, errors.Wrapf(migration.ErrDefinitionNotFound, "[%s] has no file", def.Name)
	}

	b, err := fs.ReadFile(f.fsys, def.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(
				migration.ErrDefinitionNotFound,
				"file [%s] not found for namespace [%s]", def.Path, def.Namespace,
			)
		}

		return nil, errors.Wrapf(err, "could not read [%s]", def.Path)
	}

	return b, nil
}
