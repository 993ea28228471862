// handlers/progression.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fithub/middleware"
)

// GetProgression returns level, EXP and both streaks in one payload.
func GetProgression(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	summary, err := svc.Accounts.Summary(userID)
	if err != nil {
		return err
	}
	streaks, err := svc.Streaks.Overview(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"progression": summary,
		"streaks":     streaks,
	})
}

// GetEvents lists the most recent progression events, newest first.
func GetEvents(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	events, err := svc.Events.Recent(userID, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}
