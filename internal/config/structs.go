package config

import (
	"time"

	"github.com/iambhavikmistry/starter-kit/internal/logger"
)

// Session settings.
type Session struct {
	// ExpiryTime is the lifetime of a regular session.
	ExpiryTime time.Duration
	// RememberExpiryTime is the lifetime of a "remember me" session,
	// used after OAuth sign-in.
	RememberExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // externally visible base url, also used for OAuth callback URLs
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings
}
