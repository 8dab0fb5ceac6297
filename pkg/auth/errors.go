package auth

import "errors"

var (
	// ErrAuthFailed is returned for any credential mismatch during login.
	// It carries no detail on purpose: unknown username and wrong password
	// produce the same error and the same response.
	ErrAuthFailed = errors.New("auth: invalid credentials")

	// ErrUsernameTaken is returned when signup collides with an existing
	// username.
	ErrUsernameTaken = errors.New("auth: username already taken")

	// ErrInvalidToken is returned when a session token fails verification
	// for any reason: bad signature, malformed payload, or expiry.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrNotFound is returned when an account lookup matches no row.
	ErrNotFound = errors.New("auth: account not found")
)
