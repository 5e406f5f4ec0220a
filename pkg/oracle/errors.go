package oracle

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is returned when no oracle binary can be located.
	ErrToolNotFound = errors.New("oracle tool not found")

	// ErrUnknownMode is returned for a mode name missing from the mode set.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrPositionRequired is returned when a mode needs -pos and none was given.
	ErrPositionRequired = errors.New("position required")

	// ErrInvalidPosition is returned for a position that cannot be parsed or
	// does not fall inside its file.
	ErrInvalidPosition = errors.New("invalid position")
)

// ExitError reports that the oracle ran but exited with a non-zero status.
// Its output has already been delivered to the line handler.
type ExitError struct {
	Mode     string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("oracle %s exited with status %d", e.Mode, e.ExitCode)
}
