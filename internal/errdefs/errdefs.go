// Package errdefs defines the error taxonomy shared by the vault services.
//
// Every error surfaced by the identity, secrets, access, and gateway services
// wraps exactly one of these sentinels so that transport layers can map
// outcomes to wire status without string matching. Authentication and access
// failures intentionally carry no detail about which credential or bit was
// at fault.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers bad or unknown credentials. It never
	// distinguishes an unknown client id from a wrong secret.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAccessDenied covers a valid identity lacking the required permission.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound covers a missing secret, client, or grant reached with
	// valid access.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed permission bits and empty labels/keys.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers unique-constraint collisions (client id generation).
	ErrConflict = errors.New("conflict")

	// ErrConnection covers an unreachable persistence backend. Surfaced,
	// never retried by the core.
	ErrConnection = errors.New("storage unavailable")
)

// NotFoundf returns an ErrNotFound wrapping the formatted detail.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validationf returns an ErrValidation wrapping the formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf returns an ErrConflict wrapping the formatted detail.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
