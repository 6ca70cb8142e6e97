package dto

import (
	"time"

	"github.com/google/uuid"

	"gymku_backend/internals/features/booking/schedules/model"
)

/* =========================
   Requests
   ========================= */

type CreateScheduleRequest struct {
	BrandID         uuid.UUID `json:"brand_id" validate:"required"`
	StoreID         uuid.UUID `json:"store_id" validate:"required"`
	CourseID        uuid.UUID `json:"course_id" validate:"required"`
	CoachID         uuid.UUID `json:"coach_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required"`
	MaxParticipants int       `json:"max_participants" validate:"required,gt=0"`
}

type JoinScheduleRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	CardID   uuid.UUID `json:"card_id" validate:"required"`
}

type LeaveScheduleRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Reason   string    `json:"reason" validate:"max=500"`
}

type ListSchedulesFilter struct {
	CoachID  *uuid.UUID
	CourseID *uuid.UUID
	Status   string
	From     *time.Time
	To       *time.Time
}

/* =========================
   Responses
   ========================= */

type ScheduleResponse struct {
	ID                  uuid.UUID `json:"id"`
	BrandID             uuid.UUID `json:"brand_id"`
	StoreID             uuid.UUID `json:"store_id"`
	CourseID            uuid.UUID `json:"course_id"`
	CoachID             uuid.UUID `json:"coach_id"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

func NewScheduleResponse(m *model.CourseScheduleModel) ScheduleResponse {
	return ScheduleResponse{
		ID:                  m.CourseScheduleID,
		BrandID:             m.CourseScheduleBrandID,
		StoreID:             m.CourseScheduleStoreID,
		CourseID:            m.CourseScheduleCourseID,
		CoachID:             m.CourseScheduleCoachID,
		StartTime:           m.CourseScheduleStartTime,
		EndTime:             m.CourseScheduleEndTime,
		MaxParticipants:     m.CourseScheduleMaxParticipants,
		CurrentParticipants: m.CourseScheduleCurrentParticipants,
		Status:              string(m.CourseScheduleStatus),
		CreatedAt:           m.CourseScheduleCreatedAt,
	}
}

func NewScheduleResponses(ms []model.CourseScheduleModel) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(ms))
	for i := range ms {
		out = append(out, NewScheduleResponse(&ms[i]))
	}
	return out
}
