package domain

import "errors"

// Error kinds form the service-wide taxonomy. Services wrap these with
// fmt.Errorf("%w: ...") so callers can classify with errors.Is while
// the HTTP layer emits the stable kind string to clients.
var (
	// ErrValidation covers malformed or missing input; recoverable by
	// the caller correcting the request.
	ErrValidation = errors.New("validation_failed")

	// ErrConflict covers uniqueness or referential constraint violations.
	ErrConflict = errors.New("conflict")

	// ErrForbidden covers authorization policy and root-role protection
	// violations.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers absent users, roles or identities.
	ErrNotFound = errors.New("not_found")

	// ErrUnauthenticated covers missing or unverifiable credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTransient covers collaborator timeouts and unavailability.
	// The only kind a caller may safely retry.
	ErrTransient = errors.New("transient")

	// ErrInternal covers unexpected failures; details are logged and
	// never echoed to clients.
	ErrInternal = errors.New("internal_error")
)

// ErrorKind returns the stable machine-readable kind for err, or
// "internal_error" when the error carries no known kind.
func ErrorKind(err error) string {
	for _, kind := range []error{
		ErrValidation,
		ErrConflict,
		ErrForbidden,
		ErrNotFound,
		ErrUnauthenticated,
		ErrTransient,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ErrInternal.Error()
}
