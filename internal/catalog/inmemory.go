package catalog

import (
	"context"
	"path"
	"sync"

	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

// InMemory holds definitions registered in code, keyed by namespace and file name
type InMemory struct {
	sync.RWMutex
	files      map[string]map[string][]byte
	extensions map[string]bool
}

var _ Catalog = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		files:      make(map[string]map[string][]byte),
		extensions: extensionSet(DefaultExtensions),
	}
}

func (c *InMemory) Add(namespace, filename string, contents []byte) *InMemory {
	c.Lock()
	defer c.Unlock()

	if c.files[namespace] == nil {
		c.files[namespace] = make(map[string][]byte)
	}

	c.files[namespace][filename] = contents

	return c
}

func (c *InMemory) Enumerate(_ context.Context, namespace string) (migration.Definitions, error) {
	c.RLock()
	defer c.RUnlock()

	defs := make(migration.Definitions)
	for filename := range c.files[namespace] {
		def, ok := ParseFilename(filename, c.extensions)
		if !ok {
			continue
		}

		def.Namespace = namespace
		def.Path = path.Join(namespace, filename)

		if err := addDefinition(defs, def); err != nil {
			return nil, err
		}
	}

	return defs, nil
}

func (c *InMemory) ReadFile(_ context.Context, def migration.Definition) ([]byte, error) {
	c.RLock()
	defer c.RUnlock()

	contents, ok := c.files[def.Namespace][path.Base(def.Path)]
	if !ok || def.Path == "" {
		return nil, errors.Wrapf(
			migration.ErrDefinitionNotFound,
			"[%s] not found for namespace [%s]", def.Name, def.Namespace,
		)
	}

	return contents, nil
}
