package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"fithub/middleware"
	"fithub/services"
)

func companionID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid companion type ID")
	}
	return uint(id), nil
}

// GetCompanionTypes lists every companion type, inactive ones included.
func GetCompanionTypes(c *fiber.Ctx) error {
	types, err := svc.Companions.List()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "companion_types": types})
}

func CreateCompanionType(c *fiber.Ctx) error {
	var req services.CompanionInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	ct, err := svc.Companions.Create(req)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"code": ct.Code, "admin": middleware.GetUsername(c)}).Info("companion type created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "companion_type": ct})
}

func UpdateCompanionType(c *fiber.Ctx) error {
	id, err := companionID(c)
	if err != nil {
		return err
	}
	var req services.CompanionInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	ct, err := svc.Companions.Update(id, req)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"code": ct.Code, "admin": middleware.GetUsername(c)}).Info("companion type updated")
	return c.JSON(fiber.Map{"success": true, "companion_type": ct})
}

// DeleteCompanionType retires a type. Owned pets and existing unlocks are kept.
func DeleteCompanionType(c *fiber.Ctx) error {
	id, err := companionID(c)
	if err != nil {
		return err
	}
	if err := svc.Companions.Deactivate(id); err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": id, "admin": middleware.GetUsername(c)}).Info("companion type deactivated")
	return c.JSON(fiber.Map{"success": true})
}
