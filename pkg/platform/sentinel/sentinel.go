package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Data store backends and
// repositories return these (optionally wrapped) so services can translate them
// into coded domain errors.
//
//   - ErrNotFound: key or record does not exist
//   - ErrAlreadyUsed: key is already taken (create-only writes)
//   - ErrUnavailable: backend temporarily unreachable
//   - ErrClosed: the store was closed and can no longer be used
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
