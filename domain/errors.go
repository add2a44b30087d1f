package domain

import "errors"

var (
	// ErrNotFound marks operations on a missing or soft-deleted entity.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor marks a pagination cursor that does not resolve to a
	// message in the requested team.
	ErrInvalidCursor = errors.New("invalid cursor")
)
