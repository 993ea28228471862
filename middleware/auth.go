// middleware/auth.go
package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const adminTokenTTL = 24 * time.Hour

var (
	jwtSecret []byte
	tokenTTL  = 72 * time.Hour
)

// Configure sets the HMAC secret and lifetime of user tokens. It must be
// called before the first request.
func Configure(secret string, ttl time.Duration) {
	jwtSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
}

// SignToken issues a user token.
func SignToken(userID uint, username string) (string, int64, error) {
	return sign(userID, username, false, tokenTTL)
}

// SignAdminToken issues a short-lived token carrying is_admin.
func SignAdminToken(userID uint, username string) (string, int64, error) {
	return sign(userID, username, true, adminTokenTTL)
}

func sign(userID uint, username string, isAdmin bool, ttl time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(ttl).Unix()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      expiresAt,
		"iat":      time.Now().Unix(),
	}
	if isAdmin {
		claims["is_admin"] = true
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt, nil
}

func parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func bearer(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": err.Error()})
}

func AuthMiddleware(c *fiber.Ctx) error {
	tokenString, err := bearer(c)
	if err != nil {
		return unauthorized(c, err)
	}
	claims, err := parse(tokenString)
	if err != nil {
		return unauthorized(c, err)
	}
	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	return c.Next()
}

func AdminAuthMiddleware(c *fiber.Ctx) error {
	tokenString, err := bearer(c)
	if err != nil {
		return unauthorized(c, err)
	}
	claims, err := parse(tokenString)
	if err != nil {
		return unauthorized(c, err)
	}
	isAdmin, ok := claims["is_admin"].(bool)
	if !ok || !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Access denied. Admin privileges required.",
		})
	}
	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	c.Locals("isAdmin", true)
	return c.Next()
}

// WebSocketAuthMiddleware authenticates the upgrade request. Browsers cannot
// set headers on a websocket handshake, so the token may also come from the
// "token" query parameter.
func WebSocketAuthMiddleware(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		var err error
		if tokenString, err = bearer(c); err != nil {
			return unauthorized(c, err)
		}
	}
	claims, err := parse(tokenString)
	if err != nil {
		return unauthorized(c, err)
	}
	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	return c.Next()
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	userID := c.Locals("userId")
	if userID == nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}

	if id, ok := userID.(float64); ok {
		return uint(id), nil
	}

	if id, ok := userID.(uint); ok {
		return id, nil
	}

	return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID format")
}

func GetUsername(c *fiber.Ctx) string {
	if name, ok := c.Locals("username").(string); ok {
		return name
	}
	return ""
}
