// handlers/rewards.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fithub/middleware"
)

// GetDailyRewards shows the 14-day calendar and today's claim state.
func GetDailyRewards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	status, err := svc.Rewards.DailyStatus(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "rewards": status})
}

func ClaimDailyReward(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	result, err := svc.Rewards.ClaimDaily(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "reward": result})
}
