// handlers/routes.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"fithub/handlers/admin"
	"fithub/middleware"
)

// Routes mounts the API on app. authLimiter guards the credential endpoints
// and may be nil.
func Routes(app *fiber.App, authLimiter fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	app.Use("/ws", UpgradeEvents)
	app.Get("/ws/events", middleware.WebSocketAuthMiddleware, EventStream)

	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	if authLimiter != nil {
		authGroup.Post("/register", authLimiter, Register)
		authGroup.Post("/login", authLimiter, Login)
	} else {
		authGroup.Post("/register", Register)
		authGroup.Post("/login", Login)
	}
	authGroup.Get("/me", middleware.AuthMiddleware, Me)

	workoutGroup := api.Group("/workout", middleware.AuthMiddleware)
	workoutGroup.Post("/records", SaveRecord)
	workoutGroup.Get("/records", ListRecords)
	workoutGroup.Delete("/records/:id", DeleteRecord)
	workoutGroup.Delete("/sets/:id", DeleteSet)
	workoutGroup.Get("/exercises", ListExercises)
	workoutGroup.Post("/custom-exercises", CreateCustomExercise)
	workoutGroup.Delete("/custom-exercises/:id", DeleteCustomExercise)

	progressionGroup := api.Group("/progression", middleware.AuthMiddleware)
	progressionGroup.Get("/", GetProgression)
	progressionGroup.Get("/events", GetEvents)

	streakGroup := api.Group("/streak", middleware.AuthMiddleware)
	streakGroup.Get("/", GetStreak)
	streakGroup.Post("/record-login", RecordLogin)
	streakGroup.Post("/login-bonus", ClaimLoginBonus)

	api.Get("/settings", middleware.AuthMiddleware, GetSettings)
	api.Put("/settings", middleware.AuthMiddleware, PutSettings)

	rewardGroup := api.Group("/daily-rewards", middleware.AuthMiddleware)
	rewardGroup.Get("/", GetDailyRewards)
	rewardGroup.Post("/claim", ClaimDailyReward)

	api.Get("/pet-types", middleware.AuthMiddleware, GetPetTypes)

	petGroup := api.Group("/pet", middleware.AuthMiddleware)
	petGroup.Get("/", GetPet)
	petGroup.Post("/", AdoptPet)
	petGroup.Put("/", RenameActivePet)
	petGroup.Delete("/", DeactivatePet)
	petGroup.Get("/barn", GetBarn)
	petGroup.Post("/unlock-check", UnlockCheck)
	petGroup.Put("/:id/activate", ActivatePet)
	petGroup.Put("/:id", RenamePet)

	// Admin routes
	adminGroup := api.Group("/admin")
	if authLimiter != nil {
		adminGroup.Post("/login", authLimiter, admin.Login)
	} else {
		adminGroup.Post("/login", admin.Login)
	}

	// Protected admin routes
	adminProtected := adminGroup.Group("", middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Get("/users/:id/progression", admin.GetUserProgression)
	adminProtected.Post("/users/:id/unlock-check", admin.UnlockCheck)
	adminProtected.Get("/companion-types", admin.GetCompanionTypes)
	adminProtected.Post("/companion-types", admin.CreateCompanionType)
	adminProtected.Put("/companion-types/:id", admin.UpdateCompanionType)
	adminProtected.Delete("/companion-types/:id", admin.DeleteCompanionType)
}
