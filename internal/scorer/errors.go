package scorer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a fragment has no scorable text.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned by New when the pattern set or tunables are malformed.
	ErrConfiguration = errors.New("invalid configuration")
)

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
