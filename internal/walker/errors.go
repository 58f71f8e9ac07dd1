package walker

import (
	"errors"
	"fmt"
)

// ErrorKind classifies traversal errors
type ErrorKind int

const (
	// KindOther is any error not covered below
	KindOther ErrorKind = iota
	// KindNotFound means a non-symlink entry does not exist
	KindNotFound
	// KindPermission means an entry could not be inspected or listed
	KindPermission
)

// String returns a human-readable representation of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermission:
		return "permission denied"
	default:
		return "other"
	}
}

// NotFoundError is returned when the scan root, or an entry listed during
// the scan, does not exist
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path invalid: %s does not exist", e.Path)
}

// PermissionError records an entry that could not be inspected. It is
// collected in Result.Errors and never aborts a walk.
type PermissionError struct {
	Path string
	Op   string // "stat" or "list"
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, looking through wrapped errors
func KindOf(err error) ErrorKind {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return KindNotFound
	}
	var pe *PermissionError
	if errors.As(err, &pe) {
		return KindPermission
	}
	return KindOther
}
