package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bookingRoute "gymku_backend/internals/features/booking/bookings/route"
	scheduleRoute "gymku_backend/internals/features/booking/schedules/route"
	cardRoute "gymku_backend/internals/features/membership/cards/route"
	statsRoute "gymku_backend/internals/features/stats/route"
	authMW "gymku_backend/internals/middlewares/auth"
)

// SetupRoutes wires every feature group under /api/v1. Everything except
// the health endpoint sits behind the JWT scope middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	v := validator.New()

	BaseRoutes(app, db)

	api := app.Group("/api/v1", authMW.AuthMiddleware())
	bookingRoute.BookingRoutes(api, db, v)
	scheduleRoute.ScheduleRoutes(api, db, v)
	cardRoute.CardRoutes(api, db, v)
	statsRoute.StatsRoutes(api, db)
}
