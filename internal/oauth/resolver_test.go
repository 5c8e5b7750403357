package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

func TestResolve_ProviderMatch(t *testing.T) {
	db := setupTestDB(t)
	r := NewResolver(db)

	provider := "github"
	providerID := "42"
	existing := models.User{
		Name:       "Existing",
		Email:      "existing@example.com",
		Provider:   &provider,
		ProviderID: &providerID,
	}
	require.NoError(t, db.Create(&existing).Error)

	// the provider identity wins even when the reported email differs
	user, err := r.Resolve("github", &Identity{
		ID:    "42",
		Email: "changed@example.com",
		Name:  "Changed Name",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "Existing", user.Name)
	assert.Equal(t, "existing@example.com", user.Email)
}

func TestResolve_EmailLink(t *testing.T) {
	db := setupTestDB(t)
	r := NewResolver(db)

	hashed := models.HashPassword("local-pass")
	existing := models.User{
		Name:     "Local Account",
		Email:    "shared@example.com",
		Password: &hashed,
	}
	require.NoError(t, db.Create(&existing).Error)

	user, err := r.Resolve("gitlab", &Identity{
		ID:     "777",
		Email:  "shared@example.com",
		Avatar: "https://gitlab.example.com/avatar.png",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, existing.ID).Error)
	require.NotNil(t, reloaded.Provider)
	assert.Equal(t, "gitlab", *reloaded.Provider)
	require.NotNil(t, reloaded.ProviderID)
	assert.Equal(t, "777", *reloaded.ProviderID)
	require.NotNil(t, reloaded.Avatar)
	assert.Equal(t, "https://gitlab.example.com/avatar.png", *reloaded.Avatar)

	// the local credential survives the link
	assert.True(t, reloaded.VerifyPassword("local-pass"))
}

func TestResolve_CreatesAccount(t *testing.T) {
	db := setupTestDB(t)
	r := NewResolver(db)

	user, err := r.Resolve("slack", &Identity{
		ID:     "U12345",
		Email:  "fresh@example.com",
		Name:   "Fresh User",
		Avatar: "https://slack.example.com/avatar.png",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	assert.Equal(t, "Fresh User", user.Name)
	assert.Equal(t, "fresh@example.com", user.Email)
	require.NotNil(t, user.Provider)
	assert.Equal(t, "slack", *user.Provider)
	require.NotNil(t, user.ProviderID)
	assert.Equal(t, "U12345", *user.ProviderID)

	// created via a provider: verified email, no local credential
	assert.True(t, user.IsVerified())
	assert.Nil(t, user.Password)
}

func TestResolve_DisplayNameFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
	}{
		{
			name:     "provider name preferred",
			identity: Identity{ID: "1", Email: "a@example.com", Name: "Full Name", Nickname: "handle"},
			want:     "Full Name",
		},
		{
			name:     "nickname when name missing",
			identity: Identity{ID: "2", Email: "b@example.com", Nickname: "handle"},
			want:     "handle",
		},
		{
			name:     "email local part as last resort",
			identity: Identity{ID: "3", Email: "carol.j@example.com"},
			want:     "carol.j",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			r := NewResolver(db)

			user, err := r.Resolve("github", &tc.identity)
			require.NoError(t, err)
			assert.Equal(t, tc.want, user.Name)
		})
	}
}

func TestResolve_RejectsEmptyIdentity(t *testing.T) {
	db := setupTestDB(t)
	r := NewResolver(db)

	_, err := r.Resolve("github", nil)
	assert.ErrorIs(t, err, ErrEmailMissing)

	_, err = r.Resolve("github", &Identity{ID: "42"})
	assert.ErrorIs(t, err, ErrEmailMissing)
}

func TestResolve_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	r := NewResolver(db)

	identity := &Identity{ID: "42", Email: "repeat@example.com", Name: "Repeat"}

	first, err := r.Resolve("bitbucket", identity)
	require.NoError(t, err)

	second, err := r.Resolve("bitbucket", identity)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
