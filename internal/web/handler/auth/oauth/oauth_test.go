package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/config"
	settingctl "github.com/iambhavikmistry/starter-kit/internal/db/controller/setting"
	"github.com/iambhavikmistry/starter-kit/internal/db/models"
	coreoauth "github.com/iambhavikmistry/starter-kit/internal/oauth"
	websess "github.com/iambhavikmistry/starter-kit/internal/web/session"
)

// fakeClient satisfies the gate's client interface without provider traffic.
type fakeClient struct {
	identity *coreoauth.Identity
	fetchErr error
}

func (f *fakeClient) AuthCodeURL(provider string, _ coreoauth.Credentials, state string) (string, error) {
	return fmt.Sprintf("https://%s.example.com/authorize?state=%s", provider, state), nil
}

func (f *fakeClient) FetchIdentity(_ context.Context, _ string, _ coreoauth.Credentials, _ string) (*coreoauth.Identity, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	return f.identity, nil
}

type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, _ interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name)

	return nil
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Setting{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	if err := settingctl.Seed(db); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			URL:  "http://localhost:3000",
			Port: 3000,
			Session: config.Session{
				ExpiryTime:         time.Minute,
				RememberExpiryTime: time.Hour,
			},
		},
	}
}

func enableProvider(t *testing.T, db *gorm.DB, provider string) {
	t.Helper()

	for key, value := range map[string]any{
		"auth_" + provider + "_enabled":       true,
		"auth_" + provider + "_client_id":     provider + "-id",
		"auth_" + provider + "_client_secret": provider + "-secret",
	} {
		if _, err := settingctl.SetValue(db, key, value); err != nil {
			t.Fatalf("failed to set %s: %v", key, err)
		}
	}
}

// newTestService wires a complete handler over an in-memory stack.
func newTestService(t *testing.T, client coreoauth.Client) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	app := fiber.New(fiber.Config{Views: noOpViews{}})

	websess.Init(&testStorage{data: make(map[string][]byte)})

	gate := coreoauth.NewGate(db, client, cfg.Webserver.URL)

	var s Service
	s.Init(app, cfg, db, gate)

	return app, db
}

func performGet(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func TestRedirect_UnknownProviderIs404(t *testing.T) {
	app, _ := newTestService(t, &fakeClient{})

	resp := performGet(t, app, "/auth/myspace/redirect")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRedirect_DisabledProviderIs404(t *testing.T) {
	// github is on the allow-list but not enabled; the response must be
	// identical to the unknown-provider case
	app, _ := newTestService(t, &fakeClient{})

	resp := performGet(t, app, "/auth/github/redirect")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRedirect_EnabledProvider(t *testing.T) {
	app, db := newTestService(t, &fakeClient{})
	enableProvider(t, db, "github")

	resp := performGet(t, app, "/auth/github/redirect")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "https://github.example.com/authorize?state=") {
		t.Fatalf("unexpected authorization URL: %s", loc)
	}

	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(setCookie, "oauth_state=") {
		t.Fatalf("expected state cookie, got %q", setCookie)
	}

	// the state in the cookie matches the one sent to the provider
	state := strings.TrimPrefix(loc, "https://github.example.com/authorize?state=")
	if !strings.Contains(setCookie, "oauth_state="+state) {
		t.Fatalf("state cookie %q does not carry state %q", setCookie, state)
	}
}

func TestCallback_DisabledProviderIs404(t *testing.T) {
	app, _ := newTestService(t, &fakeClient{})

	resp := performGet(t, app, "/auth/github/callback?state=x&code=y")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCallback_StateMismatchRedirectsToLogin(t *testing.T) {
	app, db := newTestService(t, &fakeClient{})
	enableProvider(t, db, "github")

	resp := performGet(t, app, "/auth/github/callback?state=echoed&code=y",
		&http.Cookie{Name: "oauth_state", Value: "issued"})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/login?message=") {
		t.Fatalf("expected redirect to login with message, got %s", loc)
	}
}

func TestCallback_MissingCodeRedirectsToLogin(t *testing.T) {
	app, db := newTestService(t, &fakeClient{})
	enableProvider(t, db, "github")

	resp := performGet(t, app, "/auth/github/callback?state=abc",
		&http.Cookie{Name: "oauth_state", Value: "abc"})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login?message=") {
		t.Fatalf("expected redirect to login with message, got %s", loc)
	}
}

func TestCallback_Success(t *testing.T) {
	client := &fakeClient{
		identity: &coreoauth.Identity{
			ID:    "42",
			Email: "dev@example.com",
			Name:  "Dev",
		},
	}

	app, db := newTestService(t, client)
	enableProvider(t, db, "github")

	resp := performGet(t, app, "/auth/github/callback?state=abc&code=the-code",
		&http.Cookie{Name: "oauth_state", Value: "abc"})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %s", loc)
	}

	found := false
	for _, c := range resp.Cookies() {
		if c.Name == websess.CookieName && c.Value != "" {
			found = true
		}
	}

	if !found {
		t.Fatal("expected a session cookie on successful callback")
	}

	// the external identity materialized as a local account
	var user models.User
	if err := db.Where("email = ?", "dev@example.com").First(&user).Error; err != nil {
		t.Fatalf("expected user to be created: %v", err)
	}

	if user.Provider == nil || *user.Provider != "github" {
		t.Fatalf("expected provider github, got %v", user.Provider)
	}
}

func TestCallback_ExchangeFailureIsFatal(t *testing.T) {
	client := &fakeClient{fetchErr: errors.New("token endpoint returned 502")}

	app, db := newTestService(t, client)
	enableProvider(t, db, "github")

	resp := performGet(t, app, "/auth/github/callback?state=abc&code=the-code",
		&http.Cookie{Name: "oauth_state", Value: "abc"})
	defer func() { _ = resp.Body.Close() }()

	// a broken exchange is not a user-recoverable case, it must surface as a
	// server error rather than a redirect back to the login page
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		t.Fatalf("expected no redirect, got %s", loc)
	}

	for _, c := range resp.Cookies() {
		if c.Name == websess.CookieName && c.Value != "" {
			t.Fatal("no session may be issued on a failed exchange")
		}
	}
}

func TestCallback_EmailMissingRedirectsToLogin(t *testing.T) {
	client := &fakeClient{identity: &coreoauth.Identity{ID: "42"}}

	app, db := newTestService(t, client)
	enableProvider(t, db, "github")

	resp := performGet(t, app, "/auth/github/callback?state=abc&code=the-code",
		&http.Cookie{Name: "oauth_state", Value: "abc"})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login?message=") {
		t.Fatalf("expected redirect to login with message, got %s", loc)
	}

	// no account may be created for an identity without an email
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}

	if count != 0 {
		t.Fatalf("expected no users, got %d", count)
	}
}
