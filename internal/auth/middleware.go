package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/iambhavikmistry/starter-kit/internal/web/session"
)

// loginRedirectPath is where unauthenticated requests are sent.
const loginRedirectPath = "/login"

// currentUserID resolves the authenticated user from the session cookie.
// A zero return means the request is unauthenticated.
func currentUserID(c *fiber.Ctx) uint64 {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return 0
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return 0
	}

	return sessionData.User.ID
}

// RequireAdmin creates Fiber middleware that requires an admin-level role
// (super_admin, admin or manager). Unauthenticated requests are redirected
// to the login page; authenticated requests without an admin role get a 403.
func RequireAdmin(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		if userID == 0 {
			return c.Redirect(loginRedirectPath)
		}

		isAdmin, err := authService.UserHasAnyRole(userID, AdminRoles)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).
				Msg("Failed to check admin roles")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !isAdmin {
			log.Warn().Uint64("user_id", userID).
				Msg("User lacks admin role")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: Admin access required")
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// Unauthenticated requests are redirected to the login page; authenticated
// requests without the permission get a 403 so the caller can tell the two
// outcomes apart.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		if userID == 0 {
			return c.Redirect(loginRedirectPath)
		}

		hasPermission, err := authService.UserHasPermission(userID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", userID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// AddPermissionsToLocals is a Fiber middleware that adds the current user's
// permissions to fiber.Locals so templates can render conditionally.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		if userID == 0 {
			return c.Next()
		}

		permissions, err := authService.UserPermissions(userID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).
				Msg("Failed to get user permissions")

			return c.Next()
		}

		c.Locals("permissions", permissions)
		c.Locals("hasPermission", func(perm string) bool {
			if has, errHas := authService.UserHasPermission(userID, perm); errHas == nil {
				return has
			}

			return false
		})

		return c.Next()
	}
}
