package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeUnknownMutation indicates a commit of an unregistered type.
	ErrCodeUnknownMutation ErrorCode = "UNKNOWN_MUTATION"

	// ErrCodeUnknownAction indicates a dispatch of an unregistered type.
	ErrCodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// ErrCodeNamespaceCollision indicates two modules resolved to the
	// same namespace prefix.
	ErrCodeNamespaceCollision ErrorCode = "NAMESPACE_COLLISION"

	// ErrCodeDuplicateGetter indicates two getters resolved to the same
	// fully-qualified name. The first registration wins.
	ErrCodeDuplicateGetter ErrorCode = "DUPLICATE_GETTER"

	// ErrCodeDepthExceeded indicates nested dispatch depth passed the
	// configured maximum (runaway action recursion).
	ErrCodeDepthExceeded ErrorCode = "DISPATCH_DEPTH_EXCEEDED"

	// ErrCodeOutOfBandWrite indicates strict mode observed a state write
	// that happened outside a commit window.
	ErrCodeOutOfBandWrite ErrorCode = "STATE_WRITE_OUTSIDE_COMMIT"

	// ErrCodePathUnresolved indicates a module path did not resolve
	// during installation or a structural operation.
	ErrCodePathUnresolved ErrorCode = "PATH_UNRESOLVED"
)

// Error is a structured store error. Structural codes are diagnostics:
// the store reports them and keeps running; dispatch-miss codes are also
// returned to the caller so Go code can branch on them.
type Error struct {
	Code    ErrorCode
	Message string

	// Type is the fully-qualified operation name, when relevant.
	Type string

	// Path is the module path involved, when relevant.
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Type != "" && e.Path != "":
		return fmt.Sprintf("%s: %s (type=%s, module=%s)", e.Code, e.Message, e.Type, e.Path)
	case e.Type != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (module=%s)", e.Code, e.Message, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// NewUnknownMutationError creates an Error for a commit miss.
func NewUnknownMutationError(typ string) *Error {
	return &Error{Code: ErrCodeUnknownMutation, Message: "no mutation registered for type", Type: typ}
}

// NewUnknownActionError creates an Error for a dispatch miss.
func NewUnknownActionError(typ string) *Error {
	return &Error{Code: ErrCodeUnknownAction, Message: "no action registered for type", Type: typ}
}

// NewNamespaceCollisionError creates an Error for a duplicate namespace.
func NewNamespaceCollisionError(namespace, path string) *Error {
	return &Error{
		Code:    ErrCodeNamespaceCollision,
		Message: fmt.Sprintf("namespace %q already registered by another module", namespace),
		Path:    path,
	}
}

// NewDuplicateGetterError creates an Error for a getter name collision.
func NewDuplicateGetterError(name, path string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateGetter,
		Message: "getter name already registered, first registration wins",
		Type:    name,
		Path:    path,
	}
}

// NewDepthExceededError creates an Error for runaway nested dispatch.
func NewDepthExceededError(typ string, max int) *Error {
	return &Error{
		Code:    ErrCodeDepthExceeded,
		Message: fmt.Sprintf("nested dispatch exceeded max depth %d", max),
		Type:    typ,
	}
}

// NewOutOfBandWriteError creates an Error for a strict-mode violation.
func NewOutOfBandWriteError(observedAt string) *Error {
	return &Error{
		Code:    ErrCodeOutOfBandWrite,
		Message: fmt.Sprintf("state changed outside a commit window (observed at %s); use mutations to write state", observedAt),
	}
}

// NewPathUnresolvedError creates an Error for a path resolution failure.
func NewPathUnresolvedError(path string) *Error {
	return &Error{Code: ErrCodePathUnresolved, Message: "module path did not resolve", Path: path}
}

// codeIs reports whether err is a store Error with the given code.
// Uses errors.As to handle wrapped errors.
func codeIs(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsUnknownMutation reports whether err is a commit miss.
func IsUnknownMutation(err error) bool { return codeIs(err, ErrCodeUnknownMutation) }

// IsUnknownAction reports whether err is a dispatch miss.
func IsUnknownAction(err error) bool { return codeIs(err, ErrCodeUnknownAction) }

// IsDepthExceeded reports whether err is a dispatch depth violation.
func IsDepthExceeded(err error) bool { return codeIs(err, ErrCodeDepthExceeded) }

// IsOutOfBandWrite reports whether err is a strict-mode fence violation.
func IsOutOfBandWrite(err error) bool { return codeIs(err, ErrCodeOutOfBandWrite) }
