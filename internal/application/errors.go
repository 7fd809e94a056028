package application

import "errors"

// Business and authentication errors. Anything else returned by Service is
// an unexpected (server) failure.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredential  = errors.New("missing credential")
	ErrInvalidAssertion   = errors.New("invalid identity assertion")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrVerifierUnavailable = errors.New("google sign-in is not configured")
)

// AssertionError carries the verifier's reason for rejecting an identity assertion.
// errors.Is(err, ErrInvalidAssertion) holds for it.
type AssertionError struct {
	Reason error
}

func (e *AssertionError) Error() string {
	return ErrInvalidAssertion.Error() + ": " + e.Reason.Error()
}

func (e *AssertionError) Unwrap() error { return e.Reason }

func (e *AssertionError) Is(target error) bool { return target == ErrInvalidAssertion }
