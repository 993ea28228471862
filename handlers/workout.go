// handlers/workout.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fithub/middleware"
	"fithub/services"
)

// SaveRecord credits a workout and answers with the EXP breakdown.
func SaveRecord(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req services.SaveInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	result, err := svc.Workouts.Save(userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "record": result})
}

func ListRecords(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	page, err := svc.Workouts.ListRecords(userID, c.QueryInt("page", 1), c.QueryInt("size", 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": page})
}

func DeleteRecord(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := svc.Workouts.DeleteRecord(userID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "result": result})
}

// DeleteSet removes one set. EXP already credited stays.
func DeleteSet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := svc.Workouts.DeleteSet(userID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func ListExercises(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	catalog, err := svc.Workouts.ListExercises(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": catalog})
}

func CreateCustomExercise(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	ex, err := svc.Workouts.CreateCustomExercise(userID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "exercise": ex})
}

func DeleteCustomExercise(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := svc.Workouts.DeleteCustomExercise(userID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
