package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/services"
)

type mockEntitlements struct {
	mock.Mock
}

func (m *mockEntitlements) Issue(ctx context.Context, req *services.IssueOrRemoveRequest) ([]models.License, error) {
	args := m.Called(ctx, req)
	if licenses, ok := args.Get(0).([]models.License); ok {
		return licenses, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEntitlements) Remove(ctx context.Context, req *services.IssueOrRemoveRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockEntitlements) ListEntitlements(ctx context.Context, userID uint) ([]models.ProductEntitlement, error) {
	args := m.Called(ctx, userID)
	if entitlements, ok := args.Get(0).([]models.ProductEntitlement); ok {
		return entitlements, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEntitlements) Activate(ctx context.Context, token string, caller *models.Identity) (string, error) {
	args := m.Called(ctx, token, caller)
	return args.String(0), args.Error(1)
}

func (m *mockEntitlements) ActivateWithCredentials(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// asCaller stands in for the auth middleware.
func asCaller(identity *models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity != nil {
			c.Set("user_id", identity.ID)
			c.Set("username", identity.Username)
			c.Set("role", string(identity.Role))
		}
		c.Next()
	}
}
