package migration

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDefinitionNotFound    = errors.New("migration definition not found")
	ErrIdentifierNotFound    = errors.New("migration identifier not found")
	ErrDuplicateVersion      = errors.New("duplicate migration version")
	ErrDirectionNotSpecified = errors.New("neither target version nor direction specified")
	ErrInvalidDirection      = errors.New("invalid migration direction")
	ErrRecordFailed          = errors.New("migration ran but its state could not be recorded")
	ErrUnitAlreadyRegistered = errors.New("migration unit already registered")
)

// Error is returned when a migration unit fails while running up or down
type Error struct {
	Namespace string
	Version   int
	ClassName string
	Op        Direction
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf(
		"migration %d [%s] of namespace [%s] failed on %s: %s",
		e.Version, e.ClassName, e.Namespace, e.Op, e.Err.Error(),
	)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RecordError is returned when a unit ran but its new state could not be
// written, the tracking table has to be reconciled by hand
type RecordError struct {
	Entry Entry
	Op    Direction
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf(
		"%s of [%s] version %d in [%s] succeeded but was not recorded: %s",
		e.Op, e.Entry.ClassName, e.Entry.Version, e.Entry.Namespace, e.Err.Error(),
	)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return target == ErrRecordFailed
}
