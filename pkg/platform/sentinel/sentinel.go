package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and brokers return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrAlreadyUsed: a unique key (owner, team name, email) is already taken
//   - ErrConflict: a concurrent unit of work won; the caller may retry
//   - ErrUnavailable: the store or broker could not be reached in time
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
