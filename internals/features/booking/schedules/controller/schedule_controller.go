package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDTO "gymku_backend/internals/features/booking/bookings/dto"
	"gymku_backend/internals/features/booking/schedules/dto"
	"gymku_backend/internals/features/booking/schedules/service"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
)

type ScheduleController struct {
	Service  *service.ScheduleService
	Validate *validator.Validate
}

func New(db *gorm.DB, v *validator.Validate) *ScheduleController {
	return &ScheduleController{Service: service.NewScheduleService(db), Validate: v}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid uuid")
	}
	return id, nil
}

/* ========================= Create ========================= */

func (ctl *ScheduleController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.CreateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	m, err := ctl.Service.Create(c.UserContext(), sc, &req)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonCreated(c, "schedule created", dto.NewScheduleResponse(m))
}

/* ========================= Transitions ========================= */

func (ctl *ScheduleController) Cancel(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	m, err := ctl.Service.Cancel(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "schedule cancelled", dto.NewScheduleResponse(m))
}

func (ctl *ScheduleController) Complete(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	m, err := ctl.Service.Complete(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "schedule completed", dto.NewScheduleResponse(m))
}

func (ctl *ScheduleController) Delete(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := ctl.Service.Delete(c.UserContext(), sc, id); err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "schedule deleted", nil)
}

func (ctl *ScheduleController) Join(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.JoinScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	b, err := ctl.Service.Join(c.UserContext(), sc, id, &req)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonCreated(c, "schedule joined", bookingDTO.NewBookingResponse(b))
}

func (ctl *ScheduleController) Leave(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.LeaveScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	b, err := ctl.Service.Leave(c.UserContext(), sc, id, &req)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "schedule left", bookingDTO.NewBookingResponse(b))
}

/* ========================= Queries ========================= */

func (ctl *ScheduleController) Get(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	m, err := ctl.Service.Get(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "schedule", dto.NewScheduleResponse(m))
}

func (ctl *ScheduleController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	f := dto.ListSchedulesFilter{Status: strings.TrimSpace(c.Query("status"))}
	if raw := strings.TrimSpace(c.Query("coach_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "coach_id is not a valid uuid")
		}
		f.CoachID = &id
	}
	if raw := strings.TrimSpace(c.Query("course_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "course_id is not a valid uuid")
		}
		f.CourseID = &id
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from must be RFC3339")
		}
		f.From = &ts
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to must be RFC3339")
		}
		f.To = &ts
	}

	p := helper.ParseFiber(c, "start", "asc", helper.DefaultOpts)
	items, total, err := ctl.Service.List(c.UserContext(), sc, &f, p)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonList(c, "schedules", dto.NewScheduleResponses(items), helper.BuildMeta(total, p))
}
