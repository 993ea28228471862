package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fithub/common"
	"fithub/models"
)

const minPasswordLength = 6

type UserService struct {
	db           *gorm.DB
	defaultGrace int
}

func NewUserService(db *gorm.DB, defaultGrace int) *UserService {
	return &UserService{db: db, defaultGrace: defaultGrace}
}

// Profile is the authenticated user plus their progression headline.
type Profile struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	Level       int       `json:"level"`
	TotalExp    int64     `json:"total_exp"`
	CreatedAt   time.Time `json:"created_at"`
}

// Register creates the user, their progression account and settings in one
// transaction.
func (s *UserService) Register(username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return models.User{}, common.Validation("username and password required")
	}
	if len(username) > 50 {
		return models.User{}, common.Validation("username must be at most 50 characters")
	}
	if len(password) < minPasswordLength {
		return models.User{}, common.Validation("password must be at least %d characters", minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, DisplayName: username, Password: string(hashed)}
	if email != "" {
		user.Email = &email
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if n > 0 {
			return common.Conflict("username already taken")
		}
		if user.Email != nil {
			if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if n > 0 {
				return common.Conflict("email already registered")
			}
		}

		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := tx.Create(&models.ProgressionAccount{UserID: user.ID, TotalExp: 0, Level: 1}).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if err := tx.Create(&models.UserSettings{UserID: user.ID, GraceDaysAllowed: s.defaultGrace}).Error; err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks a username and password. Any mismatch is reported as
// common.ErrUnauthorized so callers cannot probe for usernames.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, common.ErrUnauthorized
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, common.ErrUnauthorized
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		return models.User{}, fmt.Errorf("update last login: %w", err)
	}
	return user, nil
}

// AuthenticateAdmin is Authenticate restricted to users flagged is_admin.
func (s *UserService) AuthenticateAdmin(username, password string) (models.User, error) {
	user, err := s.Authenticate(username, password)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsAdmin {
		return models.User{}, common.ErrForbidden
	}
	return user, nil
}

func (s *UserService) Profile(userID uint) (Profile, error) {
	var user models.User
	err := s.db.Preload("Account").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, common.NotFound("user")
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load user: %w", err)
	}

	return toProfile(user), nil
}

func toProfile(user models.User) Profile {
	p := Profile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Level:       1,
		CreatedAt:   user.CreatedAt,
	}
	if user.Email != nil {
		p.Email = *user.Email
	}
	if user.Account != nil {
		p.TotalExp = user.Account.TotalExp
		p.Level = user.Account.Level
	}
	return p
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []Profile `json:"users"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// List pages through users, optionally filtered by a username or email
// substring.
func (s *UserService) List(page, limit int, search string) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return UserPage{}, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	if err := query.Preload("Account").Order("id").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}

	out := UserPage{Users: make([]Profile, len(users)), Total: total, Page: page, Limit: limit}
	for i, u := range users {
		out.Users[i] = toProfile(u)
	}
	return out, nil
}
