// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/i18n"
	"github.com/javajoker/license-server/internal/services"
	"github.com/javajoker/license-server/internal/utils"
)

// respondError maps a service error onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "request"), err.Error())
	case errors.Is(err, services.ErrInsufficientEntitlements):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_LICENSES", i18n.T(lang, i18n.KeyLicenseInsufficient), nil)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrNoEntitlement):
		utils.NotFoundResponse(c, i18n.KeyLicenseNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_CREDENTIALS", i18n.T(lang, i18n.KeyAuthInvalidCredentials), nil)
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyLicenseConcurrentActivations))
	case errors.Is(err, services.ErrLicensingServiceUnavailable):
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyLicenseServiceUnavailable))
	case errors.Is(err, services.ErrCatalogUnavailable):
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyLicenseCatalogUnavailable))
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		utils.InternalErrorResponse(c, "")
	}
}
