package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Enum
   ========================= */

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingNoShow
}

/* =========================
   Model: BookingModel
   ========================= */

type BookingModel struct {
	// PK
	BookingID uuid.UUID `gorm:"type:uuid;primaryKey;column:booking_id"`

	// Tenant
	BookingBrandID uuid.UUID `gorm:"type:uuid;not null;column:booking_brand_id;index"`
	BookingStoreID uuid.UUID `gorm:"type:uuid;not null;column:booking_store_id;index"`

	// Participants & subject
	BookingMemberID uuid.UUID  `gorm:"type:uuid;not null;column:booking_member_id;index"`
	BookingCoachID  *uuid.UUID `gorm:"type:uuid;column:booking_coach_id;index"`
	BookingCourseID uuid.UUID  `gorm:"type:uuid;not null;column:booking_course_id;index"`

	// Set by the class-join path; nil for one-on-one bookings.
	BookingScheduleID *uuid.UUID `gorm:"type:uuid;column:booking_schedule_id;index"`

	// Entitlement consumed at creation, needed for refunds on cancel.
	BookingCardID *uuid.UUID `gorm:"type:uuid;column:booking_card_id;index"`

	BookingNumber string `gorm:"size:32;not null;uniqueIndex;column:booking_number"`

	BookingStartTime time.Time `gorm:"not null;column:booking_start_time;index"`
	BookingEndTime   time.Time `gorm:"not null;column:booking_end_time;index"`

	BookingStatus BookingStatus `gorm:"type:varchar(16);not null;default:'pending';column:booking_status;index"`

	// Cancellation
	BookingCancelledAt        *time.Time `gorm:"column:booking_cancelled_at"`
	BookingCancellationReason *string    `gorm:"size:255;column:booking_cancellation_reason"`

	// Review (once, after completion)
	BookingRating        *int       `gorm:"column:booking_rating"`
	BookingReviewComment *string    `gorm:"size:500;column:booking_review_comment"`
	BookingReviewedAt    *time.Time `gorm:"column:booking_reviewed_at"`

	BookingCreatedAt time.Time      `gorm:"column:booking_created_at;autoCreateTime"`
	BookingUpdatedAt time.Time      `gorm:"column:booking_updated_at;autoUpdateTime"`
	BookingDeletedAt gorm.DeletedAt `gorm:"column:booking_deleted_at;index"`
}

func (BookingModel) TableName() string { return "bookings" }

func (m *BookingModel) BeforeCreate(tx *gorm.DB) error {
	if m.BookingID == uuid.Nil {
		m.BookingID = uuid.New()
	}
	return nil
}

func (m *BookingModel) IsReviewed() bool { return m.BookingReviewedAt != nil }
