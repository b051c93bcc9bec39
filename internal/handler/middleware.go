package handler

import (
	"strings"

	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SecurityHeadersMiddleware adds security-related headers to all responses
func SecurityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Prevent MIME type sniffing
		c.Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		c.Set("X-Frame-Options", "DENY")

		// Enable XSS protection in browsers
		c.Set("X-XSS-Protection", "1; mode=block")

		// Control referrer information
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Content Security Policy - restrictive for API
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Prevent caching of sensitive API responses
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")

		return c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if request ID already exists in headers
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Set request ID in response headers and locals
		c.Set("X-Request-ID", requestID)
		c.Locals("request_id", requestID)

		return c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. The second
// return distinguishes a missing header from a malformed one.
func bearerToken(c *fiber.Ctx) (token string, present bool, valid bool) {
	authHeader := strings.TrimSpace(c.Get("Authorization"))
	if authHeader == "" {
		return "", false, false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, false
	}
	return parts[1], true, true
}

// AuthMiddleware is the request gate for protected routes. The token subject
// is re-resolved against the live user record on every request, so a deleted
// or deactivated account is cut off immediately regardless of how long its
// session token remains formally valid.
func AuthMiddleware(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, valid := bearerToken(c)
		if !present {
			RecordAuthFailure("missing_header")
			return response.Unauthorized(c, "Missing Authorization header")
		}
		if !valid {
			RecordAuthFailure("invalid_header")
			return response.Unauthorized(c, "Invalid Authorization header")
		}

		claims, err := authSvc.VerifyToken(token)
		if err != nil {
			RecordAuthFailure("invalid_token")
			return response.FromError(c, err)
		}
		if claims.IsExpired {
			RecordAuthFailure("token_expired")
			return response.Unauthorized(c, "Token expired")
		}

		user, err := authSvc.GetUserByID(claims.ID)
		if err != nil || !user.IsActive {
			RecordAuthFailure("invalid_user")
			return response.Unauthorized(c, "Invalid User")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller's identity when a usable token
// is present and proceeds anonymously otherwise. It never rejects a request.
func OptionalAuthMiddleware(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		anonymous := func() error {
			c.Locals("user_id", "")
			c.Locals("user_role", "")
			return c.Next()
		}

		token, present, valid := bearerToken(c)
		if !present || !valid {
			return anonymous()
		}

		claims, err := authSvc.VerifyToken(token)
		if err != nil || claims.IsExpired {
			return anonymous()
		}

		user, err := authSvc.GetUserByID(claims.ID)
		if err != nil || !user.IsActive {
			return anonymous()
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		c.Locals("user_role", user.Role)
		return c.Next()
	}
}

// RequireRoles allows the request through when the caller holds one of the
// listed roles. Admins always pass. Must be chained after AuthMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok || role == "" {
			return response.Unauthorized(c, "Missing Authorization header")
		}

		if role == models.RoleAdmin {
			return c.Next()
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return response.Unauthorized(c, "insufficient role")
	}
}

// AdminOnlyMiddleware restricts a route to admins.
func AdminOnlyMiddleware() fiber.Handler {
	return RequireRoles(models.RoleAdmin)
}

// SelfOrAdminMiddleware restricts a route carrying a user id path param to
// that user or an admin. Must be chained after AuthMiddleware.
func SelfOrAdminMiddleware(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		role, _ := c.Locals("user_role").(string)
		if userID == "" {
			return response.Unauthorized(c, "Missing Authorization header")
		}

		if role == models.RoleAdmin || c.Params(param) == userID {
			return c.Next()
		}
		return response.Forbidden(c, "you cannot modify another user's profile")
	}
}

// currentUserID reads the authenticated user's id set by AuthMiddleware.
func currentUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", apperr.Unauthorized("Missing Authorization header")
	}
	return userID, nil
}
