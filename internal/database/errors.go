// Package database holds the errors shared by every record store implementation.
package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a record with a short code that is already taken.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when no record matches the given short code.
	ErrURLNotFound = errors.New("url not found")
)
