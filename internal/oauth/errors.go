package oauth

import "errors"

var (
	// ErrProviderNotFound is returned for unknown, disabled or credential-less
	// providers. All three cases share one error on purpose: the login surface
	// must not reveal which providers exist or how far they are configured.
	ErrProviderNotFound = errors.New("oauth provider not found")

	// ErrInvalidState is returned when the state nonce of the callback does
	// not match the one issued at redirect time. Recoverable: the user is sent
	// back to the login page to try again.
	ErrInvalidState = errors.New("invalid or expired sign-in state")

	// ErrEmailMissing is returned when the provider did not supply an email
	// address for the authenticated identity. Recoverable: no account is
	// created or modified.
	ErrEmailMissing = errors.New("provider did not return an email address")
)
