// Package oauth implements settings-gated sign-in with external OAuth providers.
//
// The package has three parts:
//
//   - Gate: decides per request whether a provider may be used at all. A
//     provider passes only if it is on the fixed allow-list, its
//     auth_<provider>_enabled setting is truthy, and both client credentials
//     are configured. Every gating failure is reported as ErrProviderNotFound
//     so an outside observer cannot enumerate which providers exist or are
//     half-configured.
//
//   - Client: the delegated OAuth client. The production implementation
//     (StandardClient) builds on golang.org/x/oauth2 with per-provider
//     endpoints; the google provider verifies the returned ID token through
//     github.com/coreos/go-oidc. Handlers and tests may substitute any other
//     implementation of the interface.
//
//   - Resolver: turns a fetched external identity into a local account,
//     matching by (provider, provider_id) first, then linking by email, and
//     creating a fresh account as the last resort.
//
// Provider credentials live in the settings table under the
// auth_<provider>_{enabled,client_id,client_secret,redirect_uri} keys, so an
// administrator changing them takes effect on the next sign-in attempt
// without a restart.
package oauth
