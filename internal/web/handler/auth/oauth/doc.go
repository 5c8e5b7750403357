// Package oauth provides handlers for the external provider login flow.
//
// This package implements the OAuth2 redirect and callback handlers for the
// providers managed by the oauth gate (google, github, gitlab, facebook,
// twitter, linkedin, bitbucket and slack).
//
// The flow includes:
//   - Redirect initiation with CSRF protection via a state cookie
//   - Authorization callback handling and identity fetching
//   - Automatic account resolution (match, link by email, or create)
//   - Session creation and cookie management
//
// Unknown and disabled providers are indistinguishable from the outside,
// both answer with a plain 404 on redirect and callback.
//
// Example usage:
//
//	// Initialize the handler
//	oauth.Handler.Init(app, cfg, db, gate)
//
//	// Users can then access:
//	// GET  /auth/:provider/redirect - Initiate the login flow
//	// GET  /auth/:provider/callback - Handle the provider callback
package oauth
