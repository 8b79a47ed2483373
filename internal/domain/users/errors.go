package users

import "errors"

// ErrNotFound indicates no account exists with the requested username.
var ErrNotFound = errors.New("user not found")
