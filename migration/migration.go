package migration

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type (
	Direction string

	// Definition is a migration discovered in a namespace folder,
	// before it is joined with the applied state
	Definition struct {
		Version   int
		Name      string
		ClassName string
		Namespace string
		Path      string
	}

	Definitions map[int]Definition

	// Entry is a definition enriched with the time it was applied,
	// MigratedAt is nil for pending migrations
	Entry struct {
		Definition
		MigratedAt *time.Time
	}

	Mapping map[int]Entry

	ClockFunc func() time.Time
)

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}

	return "", errors.Wrapf(ErrInvalidDirection, "[%s]", s)
}

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

func (d Direction) String() string {
	return string(d)
}

// Versions sorted in ascending order
func (d Definitions) Versions() []int {
	versions := make([]int, 0, len(d))
	for v := range d {
		versions = append(versions, v)
	}

	sort.Ints(versions)

	return versions
}

func NewEntry(d Definition, migratedAt *time.Time) Entry {
	return Entry{Definition: d, MigratedAt: migratedAt}
}

func (e Entry) Migrated() bool {
	return e.MigratedAt != nil
}

// Clone copies the mapping together with the applied timestamps
func (m Mapping) Clone() Mapping {
	c := make(Mapping, len(m))
	for v, e := range m {
		if e.MigratedAt != nil {
			migratedAt := *e.MigratedAt
			e.MigratedAt = &migratedAt
		}

		c[v] = e
	}

	return c
}

// Versions sorted in ascending order
func (m Mapping) Versions() []int {
	versions := make([]int, 0, len(m))
	for v := range m {
		versions = append(versions, v)
	}

	sort.Ints(versions)

	return versions
}

// Latest known version, migrated or not, 0 for an empty mapping
func (m Mapping) Latest() int {
	latest := 0
	for v := range m {
		if v > latest {
			latest = v
		}
	}

	return latest
}

// Current is the highest migrated version or 0 when nothing is migrated
func (m Mapping) Current() int {
	versions := m.Versions()
	for i := len(versions) - 1; i >= 0; i-- {
		if m[versions[i]].Migrated() {
			return versions[i]
		}
	}

	return 0
}

// Pending entries in ascending order
func (m Mapping) Pending() []Entry {
	var result []Entry
	for _, v := range m.Versions() {
		if !m[v].Migrated() {
			result = append(result, m[v])
		}
	}

	return result
}
