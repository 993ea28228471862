package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"fithub/common"
	"fithub/middleware"
	"fithub/services"
)

var (
	svc *services.Services

	// Operator credentials from ADMIN_USERNAME / ADMIN_PASSWORD_HASH.
	operatorName string
	operatorHash string
)

// Init wires the admin handlers. An empty passwordHash disables the operator
// login and leaves only database admins.
func Init(s *services.Services, username, passwordHash string) {
	svc = s
	operatorName = username
	operatorHash = passwordHash
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login authenticates an admin user
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
	}

	var (
		userID   uint
		username = req.Username
	)
	if operatorHash != "" && req.Username == operatorName &&
		bcrypt.CompareHashAndPassword([]byte(operatorHash), []byte(req.Password)) == nil {
		log.WithField("username", username).Info("operator admin login")
	} else {
		user, err := svc.Users.AuthenticateAdmin(req.Username, req.Password)
		if errors.Is(err, common.ErrForbidden) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		if err != nil {
			return err
		}
		userID, username = user.ID, user.Username
	}

	token, expiresAt, err := middleware.SignAdminToken(userID, username)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(LoginResponse{Token: token, Username: username, ExpiresAt: expiresAt})
}

// VerifyToken verifies an admin JWT token
func VerifyToken(c *fiber.Ctx) error {
	// Token is already validated by middleware
	return c.JSON(fiber.Map{
		"valid":    true,
		"user_id":  c.Locals("userId"),
		"username": middleware.GetUsername(c),
		"is_admin": true,
	})
}
