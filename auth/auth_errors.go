package auth

import "errors"

// ErrAuthFailure deliberately merges "unknown email", "wrong password", and
// "well-formed refresh token that does not match the stored value" so
// callers cannot enumerate accounts or tell which check failed.
var ErrAuthFailure = errors.New("authentication failed")
