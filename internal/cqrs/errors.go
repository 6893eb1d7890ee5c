package cqrs

import "errors"

// ErrForbidden signals that the requesting user does not own the account the
// command or query targets.
var ErrForbidden = errors.New("forbidden")
