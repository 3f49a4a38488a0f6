// Package apperr holds the error taxonomy shared by the scene packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSelection reports a selection with the wrong cardinality for an operation.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrEntityNotFound reports an id that no longer exists.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrEmptyCropArea reports a crop rectangle that misses the target bounds.
	ErrEmptyCropArea = errors.New("empty crop area")
	ErrInvalidValue  = errors.New("invalid value")
	ErrInvalidScene  = errors.New("invalid scene")
)

// Outcome is the result of a well-formed operation.
type Outcome int

const (
	// NoOp means the operation was accepted but changed nothing; nothing was recorded.
	NoOp Outcome = iota
	// Applied means the scene changed and one history entry was recorded.
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "noop"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "noop":
		*o = NoOp
	case "applied":
		*o = Applied
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Code returns a stable machine-readable name for err's category, for use in
// wire responses. Unknown errors map to "internal".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ErrEntityNotFound):
		return "not_found"
	case errors.Is(err, ErrEmptyCropArea):
		return "empty_crop_area"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ErrInvalidScene):
		return "invalid_scene"
	}
	return "internal"
}
