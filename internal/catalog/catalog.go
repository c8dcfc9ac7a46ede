package catalog

import (
	"context"
	"path"
	"strconv"
	"strings"

	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

const (
	AppNamespace  = "app"
	DefaultFolder = "migrations"
	pluginsFolder = "plugins"
)

var DefaultExtensions = []string{".yml", ".yaml", ".go"}

type Catalog interface {
	// Enumerate lists the definitions of a namespace keyed by version,
	// a namespace without a folder has no definitions
	Enumerate(ctx context.Context, namespace string) (migration.Definitions, error)
	ReadFile(ctx context.Context, def migration.Definition) ([]byte, error)
}

// PathFunc resolves the folder that holds the definitions of a namespace
type PathFunc func(namespace string) string

// DefaultLayout keeps application migrations in migrations/ and the ones
// of a plugin in plugins/<Plugin>/migrations/
func DefaultLayout(namespace string) string {
	if namespace == AppNamespace {
		return DefaultFolder
	}

	return path.Join(pluginsFolder, migration.Camelize(namespace), DefaultFolder)
}

// ParseFilename extracts a definition from <version>_<name>.<ext>,
// false is returned for files that are not migrations
func ParseFilename(filename string, extensions map[string]bool) (migration.Definition, bool) {
	ext := path.Ext(filename)
	if !extensions[ext] {
		return migration.Definition{}, false
	}

	base := strings.TrimSuffix(filename, ext)
	segments := strings.SplitN(base, "_", 2)
	if len(segments) != 2 {
		return migration.Definition{}, false
	}

	version, err := strconv.Atoi(segments[0])
	if err != nil || version <= 0 {
		return migration.Definition{}, false
	}

	if segments[1] == "" {
		return migration.Definition{}, false
	}

	return migration.Definition{
		Version:   version,
		Name:      base,
		ClassName: migration.Camelize(segments[1]),
	}, true
}

func extensionSet(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}

	return set
}

func addDefinition(defs migration.Definitions, def migration.Definition) error {
	if existing, ok := defs[def.Version]; ok {
		return errors.Wrapf(
			migration.ErrDuplicateVersion,
			"version %d is used by both [%s] and [%s] in namespace [%s]",
			def.Version, path.Base(existing.Path), path.Base(def.Path), def.Namespace,
		)
	}

	defs[def.Version] = def

	return nil
}
