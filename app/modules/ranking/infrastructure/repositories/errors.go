package rankingdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested snapshot row does not exist.
	ErrNotFound = errors.New("ranking snapshot not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
