package store

import (
	"strconv"

	"github.com/denismitr/mversion/migration"
)

// Identity is the way applied rows are matched with definitions.
// Legacy tables only know the version, current ones record the class name.
type Identity int

const (
	VersionIdentity Identity = iota + 1
	ClassIdentity
)

const (
	versionColumn = "version"
	classColumn   = "class"
)

func (id Identity) Column() string {
	if id == ClassIdentity {
		return classColumn
	}

	return versionColumn
}

// Value is what gets written to the identity column
func (id Identity) Value(e migration.Entry) interface{} {
	if id == ClassIdentity {
		return e.ClassName
	}

	return e.Version
}

// Key is how an entry is looked up among applied rows
func (id Identity) Key(e migration.Entry) string {
	if id == ClassIdentity {
		return e.ClassName
	}

	return strconv.Itoa(e.Version)
}

func (id Identity) String() string {
	switch id {
	case VersionIdentity:
		return "legacy (version)"
	case ClassIdentity:
		return "current (class)"
	}

	return "unknown"
}
