package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/auth"
	"marketapi/internal/model"
	"marketapi/internal/service"
)

// ActorLocalKey is the key under which Authenticate stores the service.Actor.
const ActorLocalKey = "actor"

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the caller as a service.Actor in locals. Failures are 401.
func Authenticate(verifier auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed bearer token")
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		// An unknown role parses to "" and fails every RequireRole gate.
		role, _ := model.ParseRole(claims.Role)
		c.Locals(ActorLocalKey, service.Actor{ID: claims.Subject, Email: claims.Email, Role: role})
		return c.Next()
	}
}

// RequireRole lets the request through only when the authenticated actor holds
// one of roles. It must run after Authenticate. Failures are 403.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// ActorFrom returns the actor stored by Authenticate.
func ActorFrom(c *fiber.Ctx) (service.Actor, bool) {
	a, ok := c.Locals(ActorLocalKey).(service.Actor)
	return a, ok
}
