package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gymku_backend/internals/constants"
	cardController "gymku_backend/internals/features/membership/cards/controller"
	authMW "gymku_backend/internals/middlewares/auth"
)

func CardRoutes(api fiber.Router, db *gorm.DB, v *validator.Validate) {
	ctl := cardController.New(db, v)

	cards := api.Group("/cards")
	cards.Get("/", ctl.List)
	cards.Get("/:id", ctl.Get)
	cards.Post("/:id/use", ctl.Use)

	manage := cards.Group("", authMW.OnlyRoles(
		constants.RoleAdmin, constants.RoleBrandManager, constants.RoleStoreManager,
	))
	manage.Post("/", ctl.Create)
	manage.Post("/:id/activate", ctl.Activate)
	manage.Post("/:id/freeze", ctl.Freeze)
	manage.Post("/:id/unfreeze", ctl.Unfreeze)
	manage.Post("/:id/refund", ctl.Refund)
	manage.Delete("/:id", ctl.Remove)
}
