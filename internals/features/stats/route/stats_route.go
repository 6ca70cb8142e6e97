package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gymku_backend/internals/constants"
	statsController "gymku_backend/internals/features/stats/controller"
	authMW "gymku_backend/internals/middlewares/auth"
)

func StatsRoutes(api fiber.Router, db *gorm.DB) {
	ctl := statsController.New(db)

	stats := api.Group("/stats", authMW.OnlyRoles(
		constants.RoleAdmin, constants.RoleBrandManager, constants.RoleStoreManager,
	))
	stats.Get("/bookings", ctl.Bookings)
	stats.Get("/schedules/occupancy", ctl.Occupancy)
	stats.Get("/cards/usage", ctl.CardUsage)
}
