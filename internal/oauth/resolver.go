package oauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

// Resolver materializes a local account from an external identity.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver over the given store.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve finds or creates the local account for an external identity:
//
//  1. An exact (provider, provider_id) match wins and is returned unchanged.
//  2. Otherwise an account with the same email gets the provider identity
//     linked onto it in place. Note that this merges a password account with
//     an OAuth identity purely on email equality, without re-proving control
//     of that address through the original channel. Deliberately preserved
//     behavior, pending a product decision; see DESIGN.md.
//  3. Otherwise a fresh account is created: display name falls back to the
//     nickname and then to the local part of the email, the email counts as
//     verified by the provider, and the password stays null.
func (r *Resolver) Resolve(provider string, identity *Identity) (*models.User, error) {
	if identity == nil || identity.Email == "" {
		return nil, ErrEmailMissing
	}

	var user models.User

	err := r.db.Where("provider = ? AND provider_id = ?", provider, identity.ID).
		First(&user).Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query user by provider identity: %w", err)
	}

	err = r.db.Where("email = ?", identity.Email).First(&user).Error

	switch {
	case err == nil:
		// Link the OAuth identity onto the existing account
		updates := map[string]interface{}{
			"provider":    provider,
			"provider_id": identity.ID,
			"updated_at":  time.Now(),
		}
		if identity.Avatar != "" {
			updates["avatar"] = identity.Avatar
		}

		if err := r.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to link provider identity: %w", err)
		}

		return &user, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		now := time.Now()

		user = models.User{
			Name:            displayName(identity),
			Email:           identity.Email,
			EmailVerifiedAt: &now,
			Provider:        &provider,
			ProviderID:      &identity.ID,
		}
		if identity.Avatar != "" {
			user.Avatar = &identity.Avatar
		}

		if err := r.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		return &user, nil

	default:
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
}

// displayName picks the account name: provider display name, then nickname,
// then the local part of the email address.
func displayName(identity *Identity) string {
	if identity.Name != "" {
		return identity.Name
	}

	if identity.Nickname != "" {
		return identity.Nickname
	}

	name, _, _ := strings.Cut(identity.Email, "@")

	return name
}
