package scene

import (
	"errors"
	"fmt"

	"github.com/msalah0e/nodeweave/internal/ident"
)

var (
	// ErrMalformedDocument is returned when a document is missing a required
	// field, carries a value of the wrong type or breaks a structural rule.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDanglingReference is returned when an edge names a socket that is
	// not part of the document being loaded.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrSocketOccupied is returned when a second edge would be bound to a
	// single-edge socket.
	ErrSocketOccupied = errors.New("socket already holds an edge")

	// ErrSameSocket is returned when an edge would start and end on the same
	// socket.
	ErrSameSocket = errors.New("edge cannot connect a socket to itself")

	// ErrDetached is returned when an operation targets an entity that has
	// already been removed from its scene.
	ErrDetached = errors.New("entity is not attached to a scene")
)

// MalformedError describes which part of a document was rejected.
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed document: %s: %s", e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedDocument }

// DanglingReferenceError names the edge and the unresolved socket id.
type DanglingReferenceError struct {
	EdgeID   ident.ID
	SocketID ident.ID
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: edge %s references unknown socket %s", e.EdgeID, e.SocketID)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrDanglingReference }

func malformed(field, format string, args ...any) error {
	return &MalformedError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
