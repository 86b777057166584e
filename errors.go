package waml

import (
	"reflect"

	"github.com/KimNorgaard/go-waml/errors"
	"github.com/KimNorgaard/go-waml/form"
)

// Diagnostic is the error returned for every parse and write failure.
type Diagnostic = errors.Diagnostic

var (
	// ErrTruncated is matched by errors of writes whose output was closed
	// early.
	ErrTruncated = errors.ErrTruncated
	// ErrComment is matched by errors of documents read with
	// RejectComments that contain a comment.
	ErrComment = errors.ErrComment
	// ErrUnsupported is matched by errors of forms lacking a capability.
	ErrUnsupported = form.ErrUnsupported
	// ErrUnsupportedKey is matched by errors of unknown object keys.
	ErrUnsupportedKey = form.ErrUnsupportedKey
)

// A TypeError reports a Go type whose form could not be resolved.
type TypeError struct {
	Type reflect.Type
	Err  error
}

func (e *TypeError) Error() string {
	return "waml: no form for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *TypeError) Unwrap() error { return e.Err }
