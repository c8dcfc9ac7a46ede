package mversion

import (
	"strconv"
	"strings"

	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
)

type ActionConfigurator func(a *Action)

type Action struct {
	version   *int
	direction migration.Direction
}

// WithVersion sets the target version, the direction is derived from it
func WithVersion(version int) ActionConfigurator {
	return func(a *Action) {
		a.version = &version
	}
}

func WithDirection(d migration.Direction) ActionConfigurator {
	return func(a *Action) {
		a.direction = d
	}
}

// CreateConfigurators turns raw command line values into configurators,
// empty strings are ignored
func CreateConfigurators(version, direction string) ([]ActionConfigurator, error) {
	var configurators []ActionConfigurator

	if v := strings.TrimSpace(version); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errors.Errorf("version must be a non negative integer, got [%s]", version)
		}

		configurators = append(configurators, WithVersion(n))
	}

	if strings.TrimSpace(direction) != "" {
		d, err := migration.ParseDirection(direction)
		if err != nil {
			return nil, err
		}

		configurators = append(configurators, WithDirection(d))
	}

	return configurators, nil
}
