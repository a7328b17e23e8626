package types

import "errors"

// Store operation errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidReference = errors.New("referenced epic does not exist")
	ErrDuplicateID      = errors.New("record id already in use")
	ErrInvalidKind      = errors.New("invalid record kind")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrNilRecord        = errors.New("record is nil")
)

// Persistence errors.
var (
	ErrMalformedRecord = errors.New("malformed record line")
	ErrPersistence     = errors.New("persistence failure")
)
