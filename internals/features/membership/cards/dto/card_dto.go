package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"gymku_backend/internals/features/membership/cards/model"
)

/* =========================
   Requests
   ========================= */

type CreateCardRequest struct {
	BrandID          uuid.UUID      `json:"brand_id" validate:"required"`
	StoreID          uuid.UUID      `json:"store_id" validate:"required"`
	MemberID         uuid.UUID      `json:"member_id" validate:"required"`
	Type             string         `json:"type" validate:"required,oneof=membership personal_training group_class"`
	TotalSessions    int            `json:"total_sessions" validate:"required,gt=0"`
	MembershipCardID *uuid.UUID     `json:"membership_card_id"`
	CoachID          *uuid.UUID     `json:"coach_id"`
	ValidityDays     *int           `json:"validity_days" validate:"omitempty,gt=0"`
	ExpiryDate       *time.Time     `json:"expiry_date"`
	Benefits         datatypes.JSON `json:"benefits"`
}

type ListCardsFilter struct {
	MemberID  *uuid.UUID
	Type      string
	Status    string
	Exhausted *bool
}

/* =========================
   Responses
   ========================= */

type CardResponse struct {
	ID                uuid.UUID      `json:"id"`
	BrandID           uuid.UUID      `json:"brand_id"`
	StoreID           uuid.UUID      `json:"store_id"`
	MemberID          uuid.UUID      `json:"member_id"`
	ParentID          *uuid.UUID     `json:"parent_id,omitempty"`
	CoachID           *uuid.UUID     `json:"coach_id,omitempty"`
	Type              string         `json:"type"`
	Number            string         `json:"number"`
	TotalSessions     int            `json:"total_sessions"`
	UsedSessions      int            `json:"used_sessions"`
	RemainingSessions int            `json:"remaining_sessions"`
	Exhausted         bool           `json:"exhausted"`
	Status            string         `json:"status"`
	IssueDate         time.Time      `json:"issue_date"`
	ActivationDate    *time.Time     `json:"activation_date,omitempty"`
	ExpiryDate        *time.Time     `json:"expiry_date,omitempty"`
	ValidityDays      *int           `json:"validity_days,omitempty"`
	Benefits          datatypes.JSON `json:"benefits,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

func NewCardResponse(m *model.CardModel) CardResponse {
	return CardResponse{
		ID:                m.CardID,
		BrandID:           m.CardBrandID,
		StoreID:           m.CardStoreID,
		MemberID:          m.CardMemberID,
		ParentID:          m.CardParentID,
		CoachID:           m.CardCoachID,
		Type:              string(m.CardType),
		Number:            m.CardNumber,
		TotalSessions:     m.CardTotalSessions,
		UsedSessions:      m.CardUsedSessions,
		RemainingSessions: m.RemainingSessions(),
		Exhausted:         m.IsExhausted(),
		Status:            string(m.CardStatus),
		IssueDate:         m.CardIssueDate,
		ActivationDate:    m.CardActivationDate,
		ExpiryDate:        m.CardExpiryDate,
		ValidityDays:      m.CardValidityDays,
		Benefits:          m.CardBenefits,
		CreatedAt:         m.CardCreatedAt,
	}
}

func NewCardResponses(ms []model.CardModel) []CardResponse {
	out := make([]CardResponse, 0, len(ms))
	for i := range ms {
		out = append(out, NewCardResponse(&ms[i]))
	}
	return out
}
