package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fithub/common"
	"fithub/models"
	"fithub/progression"
)

// CompanionService is the admin side of the companion type catalog.
type CompanionService struct {
	db *gorm.DB
}

func NewCompanionService(db *gorm.DB) *CompanionService {
	return &CompanionService{db: db}
}

// CompanionInput is the writable part of a companion type.
type CompanionInput struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ImageEgg        string `json:"image_egg"`
	ImageChild      string `json:"image_child"`
	ImageAdult      string `json:"image_adult"`
	BackgroundImage string `json:"background_image"`
	UnlockType      string `json:"unlock_type"`
	UnlockLevel     int    `json:"unlock_level"`
	UnlockPetCode   string `json:"unlock_pet_code"`
	IsStarter       bool   `json:"is_starter"`
	IsActive        *bool  `json:"is_active"`
	DisplayOrder    int    `json:"display_order"`
}

func (s *CompanionService) validate(tx *gorm.DB, in *CompanionInput) error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return common.Validation("code is required")
	}
	if in.Name == "" {
		return common.Validation("name is required")
	}
	if in.UnlockType == "" {
		in.UnlockType = progression.UnlockDefault
	}
	switch in.UnlockType {
	case progression.UnlockDefault:
	case progression.UnlockUserLevel:
		if in.UnlockLevel < 1 {
			return common.Validation("unlock_level must be at least 1 for user_level unlocks")
		}
	case progression.UnlockPetGrowth:
		if in.UnlockPetCode == "" {
			return common.Validation("unlock_pet_code is required for pet_growth unlocks")
		}
		if in.UnlockPetCode == in.Code {
			return common.Validation("a companion cannot require itself")
		}
		var n int64
		if err := tx.Model(&models.CompanionType{}).Where("code = ?", in.UnlockPetCode).Count(&n).Error; err != nil {
			return fmt.Errorf("check unlock_pet_code: %w", err)
		}
		if n == 0 {
			return common.Validation("unlock_pet_code %q does not exist", in.UnlockPetCode)
		}
	default:
		return common.Validation("unlock_type must be one of default, user_level, pet_growth")
	}
	return nil
}

func (s *CompanionService) codeTaken(tx *gorm.DB, code string, exceptID uint) error {
	var n int64
	if err := tx.Model(&models.CompanionType{}).Where("code = ? AND id <> ?", code, exceptID).Count(&n).Error; err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if n > 0 {
		return common.Conflict("code %q is already in use", code)
	}
	return nil
}

// List returns every companion type, inactive ones included.
func (s *CompanionService) List() ([]models.CompanionType, error) {
	var out []models.CompanionType
	if err := s.db.Order("display_order ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load companion types: %w", err)
	}
	return out, nil
}

func (s *CompanionService) Create(in CompanionInput) (models.CompanionType, error) {
	var ct models.CompanionType
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, &in); err != nil {
			return err
		}
		if err := s.codeTaken(tx, in.Code, 0); err != nil {
			return err
		}
		ct = models.CompanionType{IsActive: true}
		apply(&ct, in)
		if err := tx.Create(&ct).Error; err != nil {
			return fmt.Errorf("create companion type: %w", err)
		}
		return nil
	})
	return ct, err
}

func (s *CompanionService) Update(id uint, in CompanionInput) (models.CompanionType, error) {
	var ct models.CompanionType
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&ct, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("companion type")
		}
		if err != nil {
			return fmt.Errorf("load companion type: %w", err)
		}
		if err := s.validate(tx, &in); err != nil {
			return err
		}
		if err := s.codeTaken(tx, in.Code, id); err != nil {
			return err
		}
		apply(&ct, in)
		return tx.Model(&ct).Select("*").Omit("id", "created_at").Updates(&ct).Error
	})
	return ct, err
}

// Deactivate hides a companion type from adoption. Owned pets keep it.
func (s *CompanionService) Deactivate(id uint) error {
	res := s.db.Model(&models.CompanionType{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate companion type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFound("companion type")
	}
	return nil
}

func apply(ct *models.CompanionType, in CompanionInput) {
	ct.Code = in.Code
	ct.Name = in.Name
	ct.Description = in.Description
	ct.ImageEgg = in.ImageEgg
	ct.ImageChild = in.ImageChild
	ct.ImageAdult = in.ImageAdult
	ct.BackgroundImage = in.BackgroundImage
	ct.UnlockType = in.UnlockType
	ct.UnlockLevel = in.UnlockLevel
	ct.UnlockPetCode = in.UnlockPetCode
	ct.IsStarter = in.IsStarter
	ct.DisplayOrder = in.DisplayOrder
	if in.IsActive != nil {
		ct.IsActive = *in.IsActive
	}
}
