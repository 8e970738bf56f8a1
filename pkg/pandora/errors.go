package pandora

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package for a protocol-level
// failure wraps exactly one of these, so callers can match with errors.Is.
var (
	// ErrServiceUnavailable is returned when the licensing check reports
	// that the caller's region is not supported.
	ErrServiceUnavailable = errors.New("pandora: service unavailable in this region")

	// ErrInvalidPartner is returned when a partner profile name is not in
	// the registry.
	ErrInvalidPartner = errors.New("pandora: invalid partner")

	// ErrPartnerLogin is returned when the partner handshake is rejected or
	// its response cannot be used.
	ErrPartnerLogin = errors.New("pandora: partner login failed")

	// ErrUserLogin is returned when the user credential exchange is rejected.
	ErrUserLogin = errors.New("pandora: user login failed")

	// ErrSequence is returned when a login step is invoked before the step
	// it depends on has completed.
	ErrSequence = errors.New("pandora: login steps out of order")

	// ErrMissingCredentials is returned when user login is attempted without
	// a username or password.
	ErrMissingCredentials = errors.New("pandora: username and password required")

	// ErrCSRFNotFound is returned when the CSRF probe response carries no
	// csrftoken cookie.
	ErrCSRFNotFound = errors.New("pandora: csrf token not found")

	// ErrNotAuthenticated is returned when an authenticated request is
	// attempted before both the CSRF and auth tokens are set.
	ErrNotAuthenticated = errors.New("pandora: not authenticated")

	// ErrUnhealthy is returned when the radio health probe does not report OK.
	ErrUnhealthy = errors.New("pandora: service unhealthy")

	// ErrProtocol is returned when a response does not match the expected
	// envelope or shape.
	ErrProtocol = errors.New("pandora: protocol error")

	// ErrAPI is returned when a REST call is rejected by the server.
	ErrAPI = errors.New("pandora: api error")
)

// Error describes a failed operation.
//
// Kind is one of the Err* sentinels above. Code and Message carry whatever
// the server reported, if anything. Err is the underlying cause, such as a
// transport or decoding error.
type Error struct {
	Op      string // Operation that failed, e.g. "auth.userLogin"
	Kind    error  // One of the Err* sentinels
	Code    int    // Server error code (0 if none)
	Message string // Server error message
	Err     error  // Underlying cause
}

// Error returns the error message.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" [code %d]", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error.
//
// This allows errors.Is(err, pandora.ErrUserLogin) to work on *Error values.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, kind error, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Known tuner API error codes.
const (
	ErrCodeInternal              = 0
	ErrCodeMaintenanceMode       = 1
	ErrCodeLicensingRestrictions = 12
	ErrCodeInvalidSyncTime       = 13
	ErrCodeReadOnlyMode          = 1000
	ErrCodeInvalidAuthToken      = 1001
	ErrCodeInvalidLogin          = 1002
	ErrCodeListenerNotAuthorized = 1003
	ErrCodeUserNotAuthorized     = 1004
)
