package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/license-server/internal/models"
)

type staticResolver map[string]*models.Identity

func (r staticResolver) Resolve(token string) (*models.Identity, error) {
	if identity, ok := r[token]; ok {
		return identity, nil
	}
	return nil, errors.New("unknown session")
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	resolver := staticResolver{
		"admin":  {ID: 1, Username: "root", Role: models.RoleAdministrator},
		"member": {ID: 2, Username: "bob", Role: models.RoleMember},
	}

	r := gin.New()
	r.GET("/me", AuthRequired(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.MustGet("user_id"),
			"username": c.GetString("username"),
			"role":     c.GetString("role"),
		})
	})
	r.POST("/issue", AuthRequired(resolver), RolesRequired(models.RoleAdministrator, models.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer member", http.StatusOK},
		{"case insensitive scheme", "bearer member", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":2,"username":"bob","role":"member"}`, w.Body.String())
			}
		})
	}
}

func TestRolesRequired(t *testing.T) {
	r := newAuthRouter()

	for token, status := range map[string]int{
		"admin":  http.StatusNoContent,
		"member": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/issue", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, status, w.Code, token)
	}
}
