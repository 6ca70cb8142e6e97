package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Enum
   ========================= */

type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) IsTerminal() bool {
	return s == ScheduleCompleted || s == ScheduleCancelled
}

/* =========================
   Model: CourseScheduleModel
   ========================= */

type CourseScheduleModel struct {
	// PK
	CourseScheduleID uuid.UUID `gorm:"type:uuid;primaryKey;column:course_schedule_id"`

	// Tenant
	CourseScheduleBrandID uuid.UUID `gorm:"type:uuid;not null;column:course_schedule_brand_id;index"`
	CourseScheduleStoreID uuid.UUID `gorm:"type:uuid;not null;column:course_schedule_store_id;index"`

	CourseScheduleCourseID uuid.UUID `gorm:"type:uuid;not null;column:course_schedule_course_id;index"`
	CourseScheduleCoachID  uuid.UUID `gorm:"type:uuid;not null;column:course_schedule_coach_id;index"`

	CourseScheduleStartTime time.Time `gorm:"not null;column:course_schedule_start_time;index"`
	CourseScheduleEndTime   time.Time `gorm:"not null;column:course_schedule_end_time;index"`

	// Capacity: 0 <= current <= max, guarded at write time.
	CourseScheduleMaxParticipants     int `gorm:"not null;column:course_schedule_max_participants"`
	CourseScheduleCurrentParticipants int `gorm:"not null;default:0;column:course_schedule_current_participants"`

	CourseScheduleStatus ScheduleStatus `gorm:"type:varchar(16);not null;default:'scheduled';column:course_schedule_status;index"`

	CourseScheduleCreatedAt time.Time      `gorm:"column:course_schedule_created_at;autoCreateTime"`
	CourseScheduleUpdatedAt time.Time      `gorm:"column:course_schedule_updated_at;autoUpdateTime"`
	CourseScheduleDeletedAt gorm.DeletedAt `gorm:"column:course_schedule_deleted_at;index"`
}

func (CourseScheduleModel) TableName() string { return "course_schedules" }

func (m *CourseScheduleModel) BeforeCreate(tx *gorm.DB) error {
	if m.CourseScheduleID == uuid.Nil {
		m.CourseScheduleID = uuid.New()
	}
	return nil
}

func (m *CourseScheduleModel) HasHeadroom() bool {
	return m.CourseScheduleCurrentParticipants < m.CourseScheduleMaxParticipants
}
