/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: Connection Registry Errors
const (
	// ErrDuplicateConnection indicates that a connection id was registered twice.
	// The gateway assigns a fresh id per connection, so this is an internal
	// invariant violation and is logged as a system fault.
	ErrDuplicateConnection = 2001

	// ErrConnectionNotFound indicates that an event referenced a connection id
	// that is not (or no longer) registered. Routing treats this as a silent
	// no-op; the code exists for internal bookkeeping only.
	ErrConnectionNotFound = 2002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
