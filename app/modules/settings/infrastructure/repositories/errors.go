package settingsdb

import "errors"

var (
	// ErrNotFound indicates the requested setting does not exist.
	ErrNotFound = errors.New("setting not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
