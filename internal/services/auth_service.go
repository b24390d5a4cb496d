// internal/services/auth_service.go
package services

import (
	"context"
	"fmt"

	"github.com/javajoker/license-server/internal/config"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/utils"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=60"`
	PassHash string `json:"passHash" validate:"required"`
}

type AuthResponse struct {
	User        *models.Identity `json:"user"`
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int              `json:"expires_in"` // in seconds
}

// AuthService exchanges directory credentials for session tokens and
// resolves session tokens back into identities.
type AuthService struct {
	directory IdentityDirectory
	cfg       *config.Config
}

func NewAuthService(directory IdentityDirectory, cfg *config.Config) *AuthService {
	return &AuthService{
		directory: directory,
		cfg:       cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	identity, err := s.directory.ResolveByCredentials(ctx, req.Username, req.PassHash)
	if err != nil {
		return nil, err
	}

	accessToken, err := utils.GenerateJWT(identity.ID, identity.Username, string(identity.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        identity,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}

// Resolve validates a session token and returns the identity it carries.
func (s *AuthService) Resolve(sessionToken string) (*models.Identity, error) {
	if sessionToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := utils.ValidateJWT(sessionToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthorized, claims.Role)
	}

	return &models.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}

