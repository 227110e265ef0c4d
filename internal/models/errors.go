package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrDuplicate indicates a unique constraint (authority, ref_id, order_id) was violated
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conditional update found the record outside the expected states
	ErrConflict = errors.New("status conflict")
)
