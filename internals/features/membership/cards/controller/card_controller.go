package controller

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gymku_backend/internals/features/membership/cards/dto"
	"gymku_backend/internals/features/membership/cards/model"
	"gymku_backend/internals/features/membership/cards/service"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
)

type CardController struct {
	Service  *service.CardService
	Validate *validator.Validate
}

func New(db *gorm.DB, v *validator.Validate) *CardController {
	return &CardController{Service: service.NewCardService(db), Validate: v}
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

func (ctl *CardController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	card, err := ctl.Service.Create(c.UserContext(), sc, &req)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonCreated(c, "card created", dto.NewCardResponse(card))
}

/* ========================= Lifecycle ========================= */

func (ctl *CardController) Activate(c *fiber.Ctx) error {
	return ctl.lifecycle(c, ctl.Service.Activate, "card activated")
}

func (ctl *CardController) Freeze(c *fiber.Ctx) error {
	return ctl.lifecycle(c, ctl.Service.Freeze, "card frozen")
}

func (ctl *CardController) Unfreeze(c *fiber.Ctx) error {
	return ctl.lifecycle(c, ctl.Service.Unfreeze, "card unfrozen")
}

func (ctl *CardController) Refund(c *fiber.Ctx) error {
	return ctl.lifecycle(c, ctl.Service.Refund, "card refunded")
}

func (ctl *CardController) Use(c *fiber.Ctx) error {
	return ctl.lifecycle(c, ctl.Service.Consume, "session consumed")
}

type cardOp func(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error)

func (ctl *CardController) lifecycle(c *fiber.Ctx, op cardOp, msg string) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	card, err := op(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, msg, dto.NewCardResponse(card))
}

func (ctl *CardController) Remove(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := ctl.Service.Remove(c.UserContext(), sc, id); err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "card removed", nil)
}

/* ========================= Queries ========================= */

func (ctl *CardController) Get(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	card, err := ctl.Service.Get(c.UserContext(), sc, id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, "card", dto.NewCardResponse(card))
}

func (ctl *CardController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ScopeFromCtx(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	f := dto.ListCardsFilter{
		Type:   strings.TrimSpace(c.Query("type")),
		Status: strings.TrimSpace(c.Query("status")),
	}
	if raw := strings.TrimSpace(c.Query("member_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "member_id is not a valid uuid")
		}
		f.MemberID = &id
	}
	if raw := strings.TrimSpace(c.Query("exhausted")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "exhausted must be a boolean")
		}
		f.Exhausted = &b
	}

	p := helper.ParseFiber(c, "created", "desc", helper.DefaultOpts)
	items, total, err := ctl.Service.List(c.UserContext(), sc, &f, p)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonList(c, "cards", dto.NewCardResponses(items), helper.BuildMeta(total, p))
}
