// Package middleware adapts Fiber's request pipeline to tagsvc's needs:
// JWT-derived AuthUser extraction, the internal shared-secret check, and
// error-taxonomy translation.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kheina-com/tagsvc/config"
	"github.com/kheina-com/tagsvc/internal/domain/entities"
)

const localsAuthUser = "auth_user"

// tokenClaims is the bearer-token payload: the caller's id plus the
// scopes this service authorizes against.
type tokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Scopes []string  `json:"scopes"`
	jwt.RegisteredClaims
}

// Auth extracts a bearer token when present and stores the resulting
// AuthUser in locals. A missing or malformed header is not an error here;
// handlers that require authentication call AuthGate.RequireAuthenticated
// against the resulting zero-value (unauthenticated) AuthUser themselves.
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsAuthUser, entities.AuthUser{})

		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Next()
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		secret := []byte(config.GetConfig().App.JWTSecret)
		claims := &tokenClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Next()
		}

		scopes := make([]entities.Scope, 0, len(claims.Scopes))
		for _, s := range claims.Scopes {
			scopes = append(scopes, entities.Scope(s))
		}

		c.Locals(localsAuthUser, entities.AuthUser{
			ID:            claims.UserID,
			Scopes:        entities.NewScopeSet(scopes...),
			Authenticated: true,
		})
		return c.Next()
	}
}

// UserFromCtx reads the AuthUser a prior Auth call stored in locals.
func UserFromCtx(c *fiber.Ctx) entities.AuthUser {
	user, _ := c.Locals(localsAuthUser).(entities.AuthUser)
	return user
}

// InternalOnly gates the i1 namespace behind a shared secret header.
func InternalOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		want := config.GetConfig().App.InternalScopeKey
		if want == "" || c.Get("X-Internal-Key") != want {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "internal access required"})
		}
		c.Locals(localsAuthUser, entities.AuthUser{
			Scopes:        entities.NewScopeSet(entities.ScopeInternal),
			Authenticated: true,
		})
		return c.Next()
	}
}
