package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFlow    = errors.New("unknown flow")
	ErrUnknownStep    = errors.New("unknown step")
	ErrDuplicateStep  = errors.New("duplicate step")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Error wraps catalog errors with the offending flow or step name.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func IsUnknownFlow(err error) bool {
	return errors.Is(err, ErrUnknownFlow)
}
