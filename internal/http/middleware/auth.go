package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenCookie is read before the Authorization header.
	TokenCookie = "token"
	// PrincipalLocalKey holds the authenticated Principal in Fiber locals.
	PrincipalLocalKey = "principal"
	// RoleAdmin is the only role allowed to mutate content.
	RoleAdmin = "admin"
)

// Claims is the token payload the portal understands.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the caller established by Auth.
type Principal struct {
	Subject string
	Role    string
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

var errNoToken = errors.New("no token")

// Auth verifies an HS256 token taken from the "token" cookie or a Bearer header
// and stores the Principal. Missing or invalid tokens yield 401.
func Auth(secret []byte) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *fiber.Ctx) error {
		raw, err := tokenFrom(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(PrincipalLocalKey, Principal{Subject: claims.Subject, Role: claims.Role})
		return c.Next()
	}
}

// RequireAdmin must run after Auth; non-admin callers get 403.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !p.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by Auth.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(Principal)
	return p, ok
}

func tokenFrom(c *fiber.Ctx) (string, error) {
	if v := c.Cookies(TokenCookie); v != "" {
		return v, nil
	}
	h := c.Get(fiber.HeaderAuthorization)
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", errNoToken
	}
	return strings.TrimSpace(tok), nil
}
