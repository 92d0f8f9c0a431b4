// Package errs contains the error taxonomy shared by the API client, facades and pages.
package errs

import "errors"

// Common sentinels across session/service/page layers.
var (
	// ErrNotAuthenticated indicates the session holds no token.
	ErrNotAuthenticated = errors.New("login required")

	// ErrForbidden indicates an admin operation requested from a non-admin session.
	ErrForbidden = errors.New("admin role required")

	// ErrNoToken indicates a login response without a token.
	ErrNoToken = errors.New("login response carries no token")

	// ErrPurchaseFailed indicates a purchase response without a policy id.
	ErrPurchaseFailed = errors.New("Failed to process the purchase") //nolint:staticcheck // shown to users verbatim
)
