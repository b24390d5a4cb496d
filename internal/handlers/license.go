// internal/handlers/license.go
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/license-server/internal/i18n"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/services"
	"github.com/javajoker/license-server/internal/utils"
)

// Entitlements is what the license endpoints need from the service layer.
type Entitlements interface {
	Issue(ctx context.Context, req *services.IssueOrRemoveRequest) ([]models.License, error)
	Remove(ctx context.Context, req *services.IssueOrRemoveRequest) error
	ListEntitlements(ctx context.Context, userID uint) ([]models.ProductEntitlement, error)
	Activate(ctx context.Context, token string, caller *models.Identity) (string, error)
	ActivateWithCredentials(ctx context.Context, token string) (string, error)
}

type LicenseHandler struct {
	entitlements Entitlements
}

func NewLicenseHandler(entitlements Entitlements) *LicenseHandler {
	return &LicenseHandler{
		entitlements: entitlements,
	}
}

// GET /licenses/manual-activation?token=
func (h *LicenseHandler) ManualActivation(c *gin.Context) {
	token, ok := requireToken(c)
	if !ok {
		return
	}

	caller, ok := utils.GetIdentityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	code, err := h.entitlements.Activate(c.Request.Context(), token, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, code)
}

// GET /licenses/automatic-activation?token=
func (h *LicenseHandler) AutomaticActivation(c *gin.Context) {
	token, ok := requireToken(c)
	if !ok {
		return
	}

	code, err := h.entitlements.ActivateWithCredentials(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, code)
}

// POST /licenses
func (h *LicenseHandler) IssueLicenses(c *gin.Context) {
	req, ok := bindIssueOrRemove(c)
	if !ok {
		return
	}

	licenses, err := h.entitlements.Issue(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, licenses)
}

// DELETE /licenses
func (h *LicenseHandler) RemoveLicenses(c *gin.Context) {
	req, ok := bindIssueOrRemove(c)
	if !ok {
		return
	}

	if err := h.entitlements.Remove(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyLicenseRemoved),
	})
}

// GET /licenses/:userId
func (h *LicenseHandler) GetUserLicenses(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "userId"), nil)
		return
	}

	caller, ok := utils.GetIdentityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	if caller.Role != models.RoleAdministrator && caller.ID != uint(userID) {
		utils.ForbiddenResponse(c, "")
		return
	}

	entitlements, err := h.entitlements.ListEntitlements(c.Request.Context(), uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, entitlements)
}

func requireToken(c *gin.Context) (string, bool) {
	token := c.Query("token")
	if token == "" {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyLicenseTokenRequired), nil)
		return "", false
	}
	return token, true
}

func bindIssueOrRemove(c *gin.Context) (*services.IssueOrRemoveRequest, bool) {
	lang := utils.GetLangFromContext(c)

	var req services.IssueOrRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return nil, false
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return nil, false
	}

	return &req, true
}
