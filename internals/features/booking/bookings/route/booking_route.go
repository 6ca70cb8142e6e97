package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gymku_backend/internals/constants"
	bookingController "gymku_backend/internals/features/booking/bookings/controller"
	"gymku_backend/internals/middlewares"
	authMW "gymku_backend/internals/middlewares/auth"
)

func BookingRoutes(api fiber.Router, db *gorm.DB, v *validator.Validate) {
	ctl := bookingController.New(db, v)

	bookings := api.Group("/bookings")
	bookings.Get("/", ctl.List)
	bookings.Get("/:id", ctl.Get)

	write := bookings.Group("", middlewares.BookingRateLimiter())
	write.Post("/", ctl.Create)
	write.Post("/:id/cancel", ctl.Cancel)
	write.Post("/:id/review", ctl.Review)
	write.Patch("/:id/reschedule", ctl.Reschedule)

	staff := write.Group("", authMW.OnlyRoles(
		constants.RoleAdmin, constants.RoleBrandManager, constants.RoleStoreManager, constants.RoleCoach,
	))
	staff.Post("/:id/confirm", ctl.Confirm)
	staff.Post("/:id/complete", ctl.Complete)
	staff.Post("/:id/no-show", ctl.NoShow)
}
