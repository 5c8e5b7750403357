package oauth

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	settingctl "github.com/iambhavikmistry/starter-kit/internal/db/controller/setting"
	"github.com/iambhavikmistry/starter-kit/internal/uniuri"
)

// allowedProviders is the fixed provider allow-list, in display order.
// EnabledProviders iterates it in this order so the login page renders
// providers deterministically.
var allowedProviders = []string{
	"facebook",
	"twitter",
	"linkedin",
	"google",
	"github",
	"gitlab",
	"bitbucket",
	"slack",
}

// Providers returns a copy of the provider allow-list.
func Providers() []string {
	out := make([]string, len(allowedProviders))
	copy(out, allowedProviders)

	return out
}

// Credentials holds the per-provider OAuth client configuration resolved
// from the settings store.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Identity is what a provider reports about the authenticated user.
type Identity struct {
	// ID is the user's identifier at the provider.
	ID string
	// Email may be empty; the callback then fails recoverably.
	Email string
	// Name is the display name, may be empty.
	Name string
	// Nickname is the provider-side handle, may be empty.
	Nickname string
	// Avatar is the profile image URL, may be empty.
	Avatar string
}

// Client is the delegated OAuth client the gate hands the actual protocol to.
type Client interface {
	// AuthCodeURL builds the provider's authorization redirect URL.
	AuthCodeURL(provider string, creds Credentials, state string) (string, error)
	// FetchIdentity exchanges the callback code for the external identity.
	FetchIdentity(ctx context.Context, provider string, creds Credentials, code string) (*Identity, error)
}

// Gate decides whether a provider may be used and resolves its credentials
// from the settings store before delegating to the OAuth client.
type Gate struct {
	db      *gorm.DB
	client  Client
	baseURL string
}

// NewGate creates a gate over the given store and delegated client.
// baseURL is the externally visible origin of this deployment, used to derive
// canonical callback URLs when no redirect_uri setting is configured.
func NewGate(db *gorm.DB, client Client, baseURL string) *Gate {
	return &Gate{
		db:      db,
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CheckProvider validates the provider identifier against the allow-list
// (case-insensitively) and its enabled flag in the settings store.
// It returns the normalized provider name, or ErrProviderNotFound.
func (g *Gate) CheckProvider(provider string) (string, error) {
	normalized := strings.ToLower(provider)

	allowed := false
	for _, p := range allowedProviders {
		if p == normalized {
			allowed = true
			break
		}
	}

	if !allowed {
		return "", ErrProviderNotFound
	}

	if !settingctl.GetBool(g.db, "auth_"+normalized+"_enabled", false) {
		return "", ErrProviderNotFound
	}

	return normalized, nil
}

// Credentials resolves client_id and client_secret for an already checked
// provider. Either one missing terminates the flow with ErrProviderNotFound,
// indistinguishable from an unknown provider.
func (g *Gate) Credentials(provider string) (Credentials, error) {
	creds := Credentials{
		ClientID:     settingctl.GetString(g.db, "auth_"+provider+"_client_id", ""),
		ClientSecret: settingctl.GetString(g.db, "auth_"+provider+"_client_secret", ""),
		RedirectURL:  g.CallbackURL(provider),
	}

	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, ErrProviderNotFound
	}

	return creds, nil
}

// CallbackURL returns the callback URL for a provider: the configured
// redirect_uri setting when non-empty, otherwise the canonical
// /auth/<provider>/callback URL of this deployment.
func (g *Gate) CallbackURL(provider string) string {
	if configured := settingctl.GetString(g.db, "auth_"+provider+"_redirect_uri", ""); configured != "" {
		return configured
	}

	return fmt.Sprintf("%s/auth/%s/callback", g.baseURL, provider)
}

// EnabledProviders returns the subset of the allow-list whose enabled flag is
// truthy, in allow-list order. It never consults credentials, so the login
// page cannot leak whether a provider is fully configured.
func (g *Gate) EnabledProviders() []string {
	var enabled []string

	for _, provider := range allowedProviders {
		if settingctl.GetBool(g.db, "auth_"+provider+"_enabled", false) {
			enabled = append(enabled, provider)
		}
	}

	return enabled
}

// Redirect runs ProviderCheck and CredentialCheck for the given provider and
// returns the authorization URL to send the user to.
func (g *Gate) Redirect(provider, state string) (string, error) {
	normalized, err := g.CheckProvider(provider)
	if err != nil {
		return "", err
	}

	creds, err := g.Credentials(normalized)
	if err != nil {
		return "", err
	}

	return g.client.AuthCodeURL(normalized, creds, state)
}

// Callback re-runs the gating checks and exchanges the callback code for the
// external identity. An identity without an email address fails with
// ErrEmailMissing and leaves no trace; the state nonce is verified by the
// caller before the exchange via VerifyState.
func (g *Gate) Callback(ctx context.Context, provider, code string) (*Identity, error) {
	normalized, err := g.CheckProvider(provider)
	if err != nil {
		return nil, err
	}

	creds, err := g.Credentials(normalized)
	if err != nil {
		return nil, err
	}

	identity, err := g.client.FetchIdentity(ctx, normalized, creds, code)
	if err != nil {
		return nil, err
	}

	if identity.Email == "" {
		return nil, ErrEmailMissing
	}

	return identity, nil
}

// stateLen gives ~190 bits of entropy with the standard character set.
const stateLen = 32

// GenerateState generates a random state nonce for CSRF protection.
func GenerateState() (string, error) {
	return uniuri.NewLen(stateLen), nil
}

// VerifyState compares the state issued at redirect time with the one echoed
// back by the provider. Both empty counts as a failed round-trip.
func VerifyState(issued, echoed string) error {
	if issued == "" || echoed == "" || issued != echoed {
		return ErrInvalidState
	}

	return nil
}
