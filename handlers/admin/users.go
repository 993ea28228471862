package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func userID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}
	return uint(id), nil
}

// GetUsers returns all users with pagination
func GetUsers(c *fiber.Ctx) error {
	page, err := svc.Users.List(c.QueryInt("page", 1), c.QueryInt("limit", 20), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetUser returns a single user by ID
func GetUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	profile, err := svc.Users.Profile(id)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetUserProgression shows a user's level, streaks and active pet.
func GetUserProgression(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	summary, err := svc.Accounts.Summary(id)
	if err != nil {
		return err
	}
	streaks, err := svc.Streaks.Overview(id)
	if err != nil {
		return err
	}
	pet, err := svc.Pets.Active(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"progression": summary,
		"streaks":     streaks,
		"pet":         pet,
	})
}

// UnlockCheck re-runs the unlock rules for a user, e.g. after a rule change.
func UnlockCheck(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	unlocked, err := svc.Unlocks.Evaluate(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "newly_unlocked": unlocked})
}
