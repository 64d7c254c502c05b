package roster

import "errors"

var (
	ErrEmptyRoster = errors.New("roster has no members")
)
