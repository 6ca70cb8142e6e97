package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gymku_backend/internals/features/stats/service"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
)

type StatsController struct {
	Service *service.StatsService
}

func New(db *gorm.DB) *StatsController {
	return &StatsController{Service: service.NewStatsService(db)}
}

// parseWindow reads from/to query params; defaults to the trailing 30 days.
func parseWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from must be RFC3339")
		}
		from = ts
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to must be RFC3339")
		}
		to = ts
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from must be before to")
	}
	return from, to, nil
}

func (ctl *StatsController) Bookings(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	from, to, err := parseWindow(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	out, err := ctl.Service.BookingStats(c.UserContext(), sc, from, to)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "booking stats", out)
}

func (ctl *StatsController) Occupancy(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	from, to, err := parseWindow(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	out, err := ctl.Service.ScheduleOccupancy(c.UserContext(), sc, from, to)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "schedule occupancy", out)
}

func (ctl *StatsController) CardUsage(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	raw := strings.TrimSpace(c.Query("member_id"))
	if raw == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "member_id is required")
	}
	memberID, err := uuid.Parse(raw)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "member_id is not a valid uuid")
	}
	out, err := ctl.Service.CardUsage(c.UserContext(), sc, memberID)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "card usage", out)
}
