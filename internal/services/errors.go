// internal/services/errors.go
package services

import "errors"

var (
	// ErrInvalidArgument indicates a malformed request (non-positive amount, empty token)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientEntitlements indicates a removal asked for more unused licenses than exist
	ErrInsufficientEntitlements = errors.New("insufficient unused licenses")

	// ErrNoEntitlement indicates there is neither a bound nor an available license to activate
	ErrNoEntitlement = errors.New("no active license")

	// ErrNotFound is what callers of an activation see for ErrNoEntitlement
	ErrNotFound = errors.New("you do not have active licenses")

	// ErrLicensingServiceUnavailable indicates the external licensing service failed or timed out
	ErrLicensingServiceUnavailable = errors.New("problems with the licensing service")

	// ErrCatalogUnavailable indicates the product catalog could not be fetched
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrForbidden indicates the caller's role does not allow the operation
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials indicates the directory rejected a username/password pair
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrUnauthorized indicates a missing, invalid or expired session token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates an activation kept losing races and gave up
	ErrConflict = errors.New("too many concurrent activations, try again")
)
