// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthAccessDenied       = "auth.access_denied"

	// Licenses
	KeyLicenseIssued                = "license.issued"
	KeyLicenseRemoved               = "license.removed"
	KeyLicenseNotFound              = "license.not_found"
	KeyLicenseInsufficient          = "license.insufficient"
	KeyLicenseTokenRequired         = "license.token_required"
	KeyLicenseServiceUnavailable    = "license.service_unavailable"
	KeyLicenseCatalogUnavailable    = "license.catalog_unavailable"
	KeyLicenseConcurrentActivations = "license.concurrent_activations"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationPositive = "validation.positive"

	// Internal
	KeyInternalError = "internal.error"
)
