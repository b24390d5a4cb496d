// internal/services/directory_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/utils"
)

// IdentityDirectory resolves directory users by their credentials.
type IdentityDirectory interface {
	// ResolveByCredentials matches the stored password hash exactly.
	ResolveByCredentials(ctx context.Context, username, passwordHash string) (*models.Identity, error)
	// ResolveByPassword checks a plaintext password against the stored hash.
	ResolveByPassword(ctx context.Context, username, password string) (*models.Identity, error)
}

// DirectoryService reads users and roles from a WordPress database. It
// never writes to it.
type DirectoryService struct {
	db     *gorm.DB
	prefix string
}

var _ IdentityDirectory = (*DirectoryService)(nil)

func NewDirectoryService(db *gorm.DB, tablePrefix string) *DirectoryService {
	return &DirectoryService{db: db, prefix: tablePrefix}
}

func (s *DirectoryService) ResolveByCredentials(ctx context.Context, username, passwordHash string) (*models.Identity, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" || !utils.ConstantTimeEqual(user.UserPass, passwordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.identity(ctx, user)
}

func (s *DirectoryService) ResolveByPassword(ctx context.Context, username, password string) (*models.Identity, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if !utils.CheckWordPressPassword(password, user.UserPass) {
		return nil, ErrInvalidCredentials
	}
	return s.identity(ctx, user)
}

func (s *DirectoryService) findUser(ctx context.Context, username string) (*models.DirectoryUser, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.DirectoryUser
	if err := s.db.WithContext(ctx).
		Table(s.prefix+"users").
		Where("user_login = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("directory error: %w", err)
	}
	return &user, nil
}

func (s *DirectoryService) identity(ctx context.Context, user *models.DirectoryUser) (*models.Identity, error) {
	var meta models.DirectoryUserMeta
	err := s.db.WithContext(ctx).
		Table(s.prefix+"usermeta").
		Where("user_id = ? AND meta_key = ?", user.ID, s.prefix+"capabilities").
		First(&meta).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("directory error: %w", err)
	}

	return &models.Identity{
		ID:       user.ID,
		Username: user.UserLogin,
		Role:     models.ParseRole(capabilityRole(meta.MetaValue)),
	}, nil
}

// capabilityRole extracts the first role name from a PHP-serialized
// capabilities array such as a:1:{s:13:"administrator";b:1;}.
func capabilityRole(serialized string) string {
	parts := strings.SplitN(serialized, `"`, 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}
