// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/i18n"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/utils"
)

// SessionResolver turns a bearer token into the caller's identity.
type SessionResolver interface {
	Resolve(sessionToken string) (*models.Identity, error)
}

func AuthRequired(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		identity, err := resolver.Resolve(strings.TrimSpace(parts[1]))
		if err != nil {
			logrus.WithError(err).Debug("Rejected session token")
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", identity.ID)
		c.Set("username", identity.Username)
		c.Set("role", string(identity.Role))
		c.Next()
	}
}

// RolesRequired lets the request through only for the given roles. It must
// run after AuthRequired.
func RolesRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetString("role"))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c, "")
		c.Abort()
	}
}
