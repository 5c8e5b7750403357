package session

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
	"github.com/iambhavikmistry/starter-kit/internal/uniuri"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User models.User
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// Init initializes the session store with the provided storage backend.
func Init(storage storage.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// sessionIDLen gives ~256 bits of entropy with the standard character set.
const sessionIDLen = 44

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	return uniuri.NewLen(sessionIDLen), nil
}

// Cookie builds the session cookie for the given session ID and lifetime.
// With devMode set the Secure flag is dropped so plain http works locally.
func Cookie(sessionID string, exp time.Duration, devMode bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		MaxAge:   int(exp.Seconds()),
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// Login creates a session for the user, persists it and sets the cookie on the response.
func Login(c *fiber.Ctx, user models.User, exp time.Duration, devMode bool) error {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}

	userSession := &Data{User: user}
	if err = userSession.Write(sessionID, exp); err != nil {
		return err
	}

	c.Cookie(Cookie(sessionID, exp, devMode))

	return nil
}
