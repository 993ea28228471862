// handlers/auth.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"fithub/middleware"
	"fithub/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Success   bool     `json:"success"`
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

func authResponse(user models.User) (AuthResponse, error) {
	token, expiresAt, err := middleware.SignToken(user.ID, user.Username)
	if err != nil {
		return AuthResponse{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to generate token")
	}
	info := UserInfo{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt}
	if user.Email != nil {
		info.Email = *user.Email
	}
	return AuthResponse{Success: true, Token: token, ExpiresAt: expiresAt, User: info}, nil
}

// Register creates a new user account
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	user, err := svc.Users.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	resp, err := authResponse(user)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login authenticates a registered user
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Username and password required")
	}
	user, err := svc.Users.Authenticate(req.Username, req.Password)
	if err != nil {
		return err
	}
	resp, err := authResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Me returns the profile with level and total EXP.
func Me(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	profile, err := svc.Users.Profile(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": profile})
}
