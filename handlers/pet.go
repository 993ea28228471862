// handlers/pet.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fithub/middleware"
)

type adoptRequest struct {
	PetTypeID uint    `json:"pet_type_id"`
	Name      *string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func GetPetTypes(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	types, err := svc.Pets.Types(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "pet_types": types})
}

// GetPet returns the active pet, or has_pet=false when none is active.
func GetPet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	pet, err := svc.Pets.Active(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "has_pet": pet != nil, "pet": pet})
}

func GetBarn(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	barn, err := svc.Pets.Barn(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "barn": barn})
}

func AdoptPet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req adoptRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if req.PetTypeID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "pet_type_id is required")
	}
	pet, err := svc.Pets.Adopt(userID, req.PetTypeID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "pet": pet})
}

func ActivatePet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pet, err := svc.Pets.Activate(userID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "pet": pet})
}

func RenamePet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	pet, err := svc.Pets.Rename(userID, id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "pet": pet})
}

func RenameActivePet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	pet, err := svc.Pets.RenameActive(userID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "pet": pet})
}

func DeactivatePet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	if err := svc.Pets.Deactivate(userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// UnlockCheck re-evaluates the unlock rules for the caller.
func UnlockCheck(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	unlocked, err := svc.Unlocks.Evaluate(userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "newly_unlocked": unlocked})
}
