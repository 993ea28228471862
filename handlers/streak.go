// handlers/streak.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fithub/middleware"
)

func GetStreak(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	overview, err := svc.Streaks.Overview(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "streaks": overview})
}

// RecordLogin counts today toward the login streak without paying a bonus.
func RecordLogin(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	info, err := svc.Streaks.RecordLogin(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "login_streak": info})
}

func ClaimLoginBonus(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	result, err := svc.Rewards.ClaimLoginBonus(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "bonus": result})
}

type settingsRequest struct {
	GraceDaysAllowed *int `json:"grace_days_allowed"`
}

func GetSettings(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	grace, err := svc.Streaks.GetSettings(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "grace_days_allowed": grace})
}

func PutSettings(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if req.GraceDaysAllowed == nil {
		return fiber.NewError(fiber.StatusBadRequest, "grace_days_allowed is required")
	}
	grace, err := svc.Streaks.UpdateSettings(userID, *req.GraceDaysAllowed)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "grace_days_allowed": grace})
}
