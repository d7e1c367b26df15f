package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in a store.
var ErrSessionNotFound = errors.New("session not found")

// ErrCardNotFound is returned by directory operations when the card does not
// exist for the user.
var ErrCardNotFound = errors.New("card not found")

// ErrAddressNotFound is returned by FetchAddress when the card exists but has
// no delivery address on file. The engine degrades to manual entry in this
// case; any other error is treated as a directory failure.
var ErrAddressNotFound = errors.New("no address on file")
