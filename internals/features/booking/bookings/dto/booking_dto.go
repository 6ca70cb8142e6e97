package dto

import (
	"time"

	"github.com/google/uuid"

	"gymku_backend/internals/features/booking/bookings/model"
)

/* =========================
   Requests
   ========================= */

type CreateBookingRequest struct {
	BrandID   uuid.UUID  `json:"brand_id" validate:"required"`
	StoreID   uuid.UUID  `json:"store_id" validate:"required"`
	MemberID  uuid.UUID  `json:"member_id" validate:"required"`
	CourseID  uuid.UUID  `json:"course_id" validate:"required"`
	CoachID   *uuid.UUID `json:"coach_id"`
	CardID    uuid.UUID  `json:"card_id" validate:"required"`
	StartTime time.Time  `json:"start_time" validate:"required"`
	EndTime   time.Time  `json:"end_time" validate:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

type ReviewBookingRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

type RescheduleBookingRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type ListBookingsFilter struct {
	MemberID *uuid.UUID
	CoachID  *uuid.UUID
	Status   string
	From     *time.Time
	To       *time.Time
}

/* =========================
   Responses
   ========================= */

type BookingResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Number             string     `json:"number"`
	BrandID            uuid.UUID  `json:"brand_id"`
	StoreID            uuid.UUID  `json:"store_id"`
	MemberID           uuid.UUID  `json:"member_id"`
	CoachID            *uuid.UUID `json:"coach_id,omitempty"`
	CourseID           uuid.UUID  `json:"course_id"`
	ScheduleID         *uuid.UUID `json:"schedule_id,omitempty"`
	CardID             *uuid.UUID `json:"card_id,omitempty"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	Rating             *int       `json:"rating,omitempty"`
	ReviewComment      *string    `json:"review_comment,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func NewBookingResponse(m *model.BookingModel) BookingResponse {
	return BookingResponse{
		ID:                 m.BookingID,
		Number:             m.BookingNumber,
		BrandID:            m.BookingBrandID,
		StoreID:            m.BookingStoreID,
		MemberID:           m.BookingMemberID,
		CoachID:            m.BookingCoachID,
		CourseID:           m.BookingCourseID,
		ScheduleID:         m.BookingScheduleID,
		CardID:             m.BookingCardID,
		StartTime:          m.BookingStartTime,
		EndTime:            m.BookingEndTime,
		Status:             string(m.BookingStatus),
		CancelledAt:        m.BookingCancelledAt,
		CancellationReason: m.BookingCancellationReason,
		Rating:             m.BookingRating,
		ReviewComment:      m.BookingReviewComment,
		ReviewedAt:         m.BookingReviewedAt,
		CreatedAt:          m.BookingCreatedAt,
	}
}

func NewBookingResponses(ms []model.BookingModel) []BookingResponse {
	out := make([]BookingResponse, 0, len(ms))
	for i := range ms {
		out = append(out, NewBookingResponse(&ms[i]))
	}
	return out
}
