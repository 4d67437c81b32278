package model

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMissingKeyIdentifier is returned when a key identifier required
	// for encryption or decryption is empty. It is a caller error and is
	// never silently defaulted.
	ErrMissingKeyIdentifier = errors.New("missing key identifier")
)
