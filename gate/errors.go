package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	// ErrUnauthenticated is returned when the subject is the zero value.
	ErrUnauthenticated = errors.New("gate: unauthenticated")
	// ErrForbidden is returned when the subject is known but lacks the permission
	// or a resource policy rejects it.
	ErrForbidden = errors.New("gate: forbidden")
)
