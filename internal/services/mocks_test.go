package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/javajoker/license-server/internal/models"
)

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) UnpackToken(ctx context.Context, token string) (*UnpackedToken, error) {
	args := m.Called(ctx, token)
	if tok, ok := args.Get(0).(*UnpackedToken); ok {
		return tok, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) MintLicenseCode(ctx context.Context, token, expireDate string) (string, error) {
	args := m.Called(ctx, token, expireDate)
	return args.String(0), args.Error(1)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) ResolveByCredentials(ctx context.Context, username, passwordHash string) (*models.Identity, error) {
	args := m.Called(ctx, username, passwordHash)
	if id, ok := args.Get(0).(*models.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDirectory) ResolveByPassword(ctx context.Context, username, password string) (*models.Identity, error) {
	args := m.Called(ctx, username, password)
	if id, ok := args.Get(0).(*models.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if products, ok := args.Get(0).([]Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}
