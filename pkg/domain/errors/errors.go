package errors

import "errors"

// ErrMissing means the requested entity does not exist.
var ErrMissing = errors.New("missing")

// ErrConflict means the operation collides with an existing entity.
var ErrConflict = errors.New("conflict")
