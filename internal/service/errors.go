package service

import "errors"

// ErrInvalidArgument flags a request that is well formed but semantically
// unacceptable, such as writing a read-only configuration entry.
var ErrInvalidArgument = errors.New("invalid argument")
