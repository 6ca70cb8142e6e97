package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gymku_backend/internals/constants"
	scheduleController "gymku_backend/internals/features/booking/schedules/controller"
	"gymku_backend/internals/middlewares"
	authMW "gymku_backend/internals/middlewares/auth"
)

func ScheduleRoutes(api fiber.Router, db *gorm.DB, v *validator.Validate) {
	ctl := scheduleController.New(db, v)

	schedules := api.Group("/schedules")
	schedules.Get("/", ctl.List)
	schedules.Get("/:id", ctl.Get)
	schedules.Post("/:id/join", middlewares.BookingRateLimiter(), ctl.Join)
	schedules.Post("/:id/leave", middlewares.BookingRateLimiter(), ctl.Leave)

	manage := schedules.Group("", authMW.OnlyRoles(
		constants.RoleAdmin, constants.RoleBrandManager, constants.RoleStoreManager,
	))
	manage.Post("/", ctl.Create)
	manage.Post("/:id/cancel", ctl.Cancel)
	manage.Post("/:id/complete", ctl.Complete)
	manage.Delete("/:id", ctl.Delete)
}
