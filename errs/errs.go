package errs

import "errors"

var ErrInvalidArgument = errors.New("invalid argument")

var ErrUnauthorized = errors.New("unauthorized")

var ErrNotFound = errors.New("not found")

var ErrConflict = errors.New("already exists")

var ErrInsufficientShares = errors.New("insufficient shares")

// ErrUnavailable marks failures of an upstream dependency (quote provider).
var ErrUnavailable = errors.New("service unavailable")

var ErrInternal = errors.New("internal error")
