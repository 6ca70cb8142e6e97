package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================
   Enums
   ========================= */

type CardType string

const (
	CardTypeMembership       CardType = "membership"        // general, may parent other cards
	CardTypePersonalTraining CardType = "personal_training" // coach-bound
	CardTypeGroupClass       CardType = "group_class"       // parented by a membership card
)

type CardStatus string

const (
	CardInactive CardStatus = "inactive"
	CardActive   CardStatus = "active"
	CardFrozen   CardStatus = "frozen"
	CardExpired  CardStatus = "expired"
	CardRefunded CardStatus = "refunded"
)

func (s CardStatus) IsTerminal() bool {
	return s == CardExpired || s == CardRefunded
}

/* =========================
   Model: CardModel
   ========================= */

type CardModel struct {
	// PK
	CardID uuid.UUID `gorm:"type:uuid;primaryKey;column:card_id"`

	// Tenant
	CardBrandID uuid.UUID `gorm:"type:uuid;not null;column:card_brand_id;index"`
	CardStoreID uuid.UUID `gorm:"type:uuid;not null;column:card_store_id;index"`

	// Owner & bindings
	CardMemberID uuid.UUID  `gorm:"type:uuid;not null;column:card_member_id;index"`
	CardParentID *uuid.UUID `gorm:"type:uuid;column:card_parent_id;index"` // owning membership card
	CardCoachID  *uuid.UUID `gorm:"type:uuid;column:card_coach_id;index"`  // personal-training binding

	CardType   CardType `gorm:"type:varchar(24);not null;column:card_type;index"`
	CardNumber string   `gorm:"size:32;not null;uniqueIndex;column:card_number"`

	// Session counters
	CardTotalSessions int `gorm:"not null;column:card_total_sessions"`
	CardUsedSessions  int `gorm:"not null;default:0;column:card_used_sessions"`

	CardStatus CardStatus `gorm:"type:varchar(16);not null;default:'inactive';column:card_status;index"`

	// Lifecycle dates
	CardIssueDate      time.Time  `gorm:"not null;column:card_issue_date"`
	CardActivationDate *time.Time `gorm:"column:card_activation_date"`
	CardExpiryDate     *time.Time `gorm:"column:card_expiry_date;index"`
	CardValidityDays   *int       `gorm:"column:card_validity_days"`

	CardBenefits datatypes.JSON `gorm:"column:card_benefits"`

	// Optimistic concurrency guard for session consumption.
	CardVersion int64 `gorm:"not null;default:0;column:card_version"`

	CardCreatedAt time.Time      `gorm:"column:card_created_at;autoCreateTime"`
	CardUpdatedAt time.Time      `gorm:"column:card_updated_at;autoUpdateTime"`
	CardDeletedAt gorm.DeletedAt `gorm:"column:card_deleted_at;index"`
}

func (CardModel) TableName() string { return "member_cards" }

func (m *CardModel) BeforeCreate(tx *gorm.DB) error {
	if m.CardID == uuid.Nil {
		m.CardID = uuid.New()
	}
	return nil
}

// IsActiveAt: status active and not past expiry.
func (m *CardModel) IsActiveAt(now time.Time) bool {
	if m.CardStatus != CardActive {
		return false
	}
	if m.CardExpiryDate != nil && m.CardExpiryDate.Before(now) {
		return false
	}
	return true
}

// IsExhausted is a queryable fact, not a status: exhaustion never forces a
// transition by itself.
func (m *CardModel) IsExhausted() bool {
	return m.CardUsedSessions >= m.CardTotalSessions
}

func (m *CardModel) RemainingSessions() int {
	if r := m.CardTotalSessions - m.CardUsedSessions; r > 0 {
		return r
	}
	return 0
}
