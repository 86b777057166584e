package form

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is matched by errors for capabilities a form lacks.
	ErrUnsupported = errors.New("form unsupported")
	// ErrUnsupportedKey is matched by errors for unknown object keys.
	ErrUnsupportedKey = errors.New("unsupported key")
	// ErrDuplicateAnnex is returned when a form declares two annex fields.
	ErrDuplicateAnnex = errors.New("duplicate annex")
)

// UnsupportedError reports a form that lacks the capability for Shape.
type UnsupportedError struct {
	Form  Form
	Shape Shape
}

// Unsupported returns an UnsupportedError.
func Unsupported(f Form, s Shape) *UnsupportedError {
	return &UnsupportedError{Form: f, Shape: s}
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("form unsupported: %T has no %s capability", e.Form, e.Shape)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// KeyError reports an object key no field accepts.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("unsupported key %q", e.Key)
}

func (e *KeyError) Is(target error) bool { return target == ErrUnsupportedKey }
