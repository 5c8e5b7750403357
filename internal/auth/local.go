package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

// LocalProvider handles local database authentication and the admin-side
// user lifecycle (create, update, delete).
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user by email and password.
// OAuth-only accounts (null password) never match.
func (p *LocalProvider) Authenticate(email, password string) (*models.User, error) {
	var user models.User

	err := p.db.Where("email = ?", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// CreateUser creates a new password-authenticated user.
// The email must be unique; the unique constraint backs the pre-check so a
// concurrent registration with the same email fails instead of racing.
func (p *LocalProvider) CreateUser(name, email, password string) (*models.User, error) {
	var existing models.User

	err := p.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed := models.HashPassword(password)

	user := models.User{
		Name:     name,
		Email:    email,
		Password: &hashed,
	}

	if err := p.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// UpdateUser updates a user's profile fields. An empty password leaves the
// stored credential unchanged; a non-empty one is re-hashed.
func (p *LocalProvider) UpdateUser(userID uint64, name, email, password string) error {
	updates := map[string]interface{}{
		"name":       name,
		"email":      email,
		"updated_at": time.Now(),
	}

	if password != "" {
		updates["password"] = models.HashPassword(password)
	}

	err := p.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailExists
		}

		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// DeleteUser deletes the target user on behalf of the acting administrator.
// Self-deletion is always rejected, regardless of roles; this guard keeps the
// last administrator from locking everyone out by accident.
func (p *LocalProvider) DeleteUser(actorID, targetID uint64) error {
	if actorID == targetID {
		return ErrSelfDeletion
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		var user models.User

		if err := tx.First(&user, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}

			return fmt.Errorf("failed to load user: %w", err)
		}

		if err := tx.Where("user_id = ?", targetID).
			Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to remove role assignments: %w", err)
		}

		if err := tx.Where("user_id = ?", targetID).
			Delete(&models.UserPermission{}).Error; err != nil {
			return fmt.Errorf("failed to remove direct grants: %w", err)
		}

		return tx.Delete(&user).Error
	})
}
