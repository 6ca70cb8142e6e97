package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gymku_backend/internals/features/booking/bookings/dto"
	"gymku_backend/internals/features/booking/bookings/model"
	"gymku_backend/internals/features/booking/bookings/service"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
)

type BookingController struct {
	Service  *service.BookingService
	Validate *validator.Validate
}

func New(db *gorm.DB, v *validator.Validate) *BookingController {
	return &BookingController{Service: service.NewBookingService(db), Validate: v}
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

func (ctl *BookingController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	b, err := ctl.Service.Create(c.UserContext(), sc, &req)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonCreated(c, "booking created", dto.NewBookingResponse(b))
}

/* ========================= Transitions ========================= */

type bookingOp func(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.BookingModel, error)

func (ctl *BookingController) transition(c *fiber.Ctx, op bookingOp, msg string) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	b, err := op(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, msg, dto.NewBookingResponse(b))
}

func (ctl *BookingController) Confirm(c *fiber.Ctx) error {
	return ctl.transition(c, ctl.Service.Confirm, "booking confirmed")
}

func (ctl *BookingController) Complete(c *fiber.Ctx) error {
	return ctl.transition(c, ctl.Service.Complete, "booking completed")
}

func (ctl *BookingController) NoShow(c *fiber.Ctx) error {
	return ctl.transition(c, ctl.Service.NoShow, "booking marked no-show")
}

func (ctl *BookingController) Cancel(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.CancelBookingRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	b, err := ctl.Service.Cancel(c.UserContext(), sc, id, req.Reason)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "booking cancelled", dto.NewBookingResponse(b))
}

func (ctl *BookingController) Review(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.ReviewBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	b, err := ctl.Service.Review(c.UserContext(), sc, id, req.Rating, req.Comment)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "booking reviewed", dto.NewBookingResponse(b))
}

func (ctl *BookingController) Reschedule(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.RescheduleBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	b, err := ctl.Service.Reschedule(c.UserContext(), sc, id, req.StartTime, req.EndTime)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "booking rescheduled", dto.NewBookingResponse(b))
}

/* ========================= Queries ========================= */

func (ctl *BookingController) Get(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	b, err := ctl.Service.Get(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "booking", dto.NewBookingResponse(b))
}

func (ctl *BookingController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	f := dto.ListBookingsFilter{Status: strings.TrimSpace(c.Query("status"))}
	if raw := strings.TrimSpace(c.Query("member_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "member_id is not a valid uuid")
		}
		f.MemberID = &id
	}
	if raw := strings.TrimSpace(c.Query("coach_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "coach_id is not a valid uuid")
		}
		f.CoachID = &id
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

	p := helper.ParseFiber(c, "start", "desc", helper.DefaultOpts)
	items, total, err := ctl.Service.List(c.UserContext(), sc, &f, p)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonList(c, "bookings", dto.NewBookingResponses(items), helper.BuildMeta(total, p))
}
