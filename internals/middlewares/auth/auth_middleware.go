package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"gymku_backend/internals/configs"
	"gymku_backend/internals/constants"
	helperAuth "gymku_backend/internals/helpers/auth"
)

// AuthMiddleware verifies the bearer token and stores the derived tenant
// scope in Locals. Permission decisions beyond scoping stay with the caller.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := rawToken(c)
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(configs.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		scope, err := scopeFromClaims(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(helperAuth.LocScope, scope)
		return c.Next()
	}
}

// OnlyRoles gates a route group to the given roles.
func OnlyRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, err := helperAuth.ScopeFromCtx(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
		}
		for _, r := range roles {
			if sc.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}
}

func rawToken(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v
	}
	const p = "Bearer "
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, p) {
		return strings.TrimSpace(auth[len(p):])
	}
	return ""
}

func scopeFromClaims(claims jwt.MapClaims) (helperAuth.Scope, error) {
	sc := helperAuth.Scope{}

	if sub, ok := claims["sub"].(string); ok {
		if id, err := uuid.Parse(sub); err == nil {
			sc.UserID = id
		}
	}
	role, _ := claims["role"].(string)
	if !constants.IsKnownRole(role) {
		return sc, fiber.NewError(fiber.StatusUnauthorized, "unknown role")
	}
	sc.Role = role

	if v, ok := claims["brand_id"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			sc.BrandID = &id
		}
	}
	if v, ok := claims["store_id"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			sc.StoreID = &id
		}
	}
	return sc, nil
}
