package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "gymku_backend/internals/databases"
	helper "gymku_backend/internals/helpers"
)

func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(); err != nil {
			return helper.JsonError(c, fiber.StatusServiceUnavailable, "database unreachable")
		}
		return helper.JsonOK(c, "ok", fiber.Map{"status": "healthy"})
	})
}
