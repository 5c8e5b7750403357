package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a user account in the system.
// Users either authenticate with a local password or via an external OAuth
// provider. A password-authenticated user has no provider linkage; a user
// created through OAuth may have a null password. An OAuth identity can also
// be linked onto an existing password account sharing the same email.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the user's display name.
	Name string `gorm:"size:255;not null"`
	// Email is the user's email address, unique across all accounts.
	Email string `gorm:"size:255;not null;uniqueIndex"`
	// EmailVerifiedAt is when the email was verified (nil if unverified).
	// Accounts created via OAuth are considered verified by the provider.
	EmailVerifiedAt *time.Time
	// Password is the Argon2id hashed password.
	// Nil for accounts created through an OAuth provider.
	Password *string `gorm:"size:255"`
	// Avatar is the URL of the user's avatar image, if any.
	Avatar *string `gorm:"size:2048"`
	// Provider is the OAuth provider this account is linked to (e.g. "github").
	// Nil for password-only accounts.
	Provider *string `gorm:"size:50;uniqueIndex:idx_provider_identity"`
	// ProviderID is the user's identifier at the OAuth provider.
	// Unique together with Provider when both are present.
	ProviderID *string `gorm:"size:255;uniqueIndex:idx_provider_identity"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// TableName specifies the database table name for the User model.
// This overrides GORM's default pluralized table naming.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating local user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns false for accounts without a password (OAuth-only accounts).
func (u *User) VerifyPassword(password string) bool {
	if u.Password == nil {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, *u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// IsVerified reports whether the user's email address has been verified.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
