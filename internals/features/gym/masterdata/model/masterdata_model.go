package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

/* =========================
   Brand & Store
   ========================= */

type BrandModel struct {
	BrandID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:brand_id"`
	BrandName      string         `gorm:"size:120;not null;column:brand_name"`
	BrandCreatedAt time.Time      `gorm:"column:brand_created_at;autoCreateTime"`
	BrandUpdatedAt time.Time      `gorm:"column:brand_updated_at;autoUpdateTime"`
	BrandDeletedAt gorm.DeletedAt `gorm:"column:brand_deleted_at;index"`
}

func (BrandModel) TableName() string { return "brands" }

func (m *BrandModel) BeforeCreate(tx *gorm.DB) error {
	if m.BrandID == uuid.Nil {
		m.BrandID = uuid.New()
	}
	return nil
}

type StoreModel struct {
	StoreID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:store_id"`
	StoreBrandID   uuid.UUID      `gorm:"type:uuid;not null;column:store_brand_id;index"`
	StoreName      string         `gorm:"size:120;not null;column:store_name"`
	StoreAddress   string         `gorm:"size:255;column:store_address"`
	StoreCreatedAt time.Time      `gorm:"column:store_created_at;autoCreateTime"`
	StoreUpdatedAt time.Time      `gorm:"column:store_updated_at;autoUpdateTime"`
	StoreDeletedAt gorm.DeletedAt `gorm:"column:store_deleted_at;index"`
}

func (StoreModel) TableName() string { return "stores" }

func (m *StoreModel) BeforeCreate(tx *gorm.DB) error {
	if m.StoreID == uuid.Nil {
		m.StoreID = uuid.New()
	}
	return nil
}

/* =========================
   Member & Coach
   ========================= */

type MemberModel struct {
	MemberID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:member_id"`
	MemberBrandID   uuid.UUID      `gorm:"type:uuid;not null;column:member_brand_id;index"`
	MemberStoreID   uuid.UUID      `gorm:"type:uuid;not null;column:member_store_id;index"`
	MemberName      string         `gorm:"size:120;not null;column:member_name"`
	MemberPhone     string         `gorm:"size:32;column:member_phone"`
	MemberCreatedAt time.Time      `gorm:"column:member_created_at;autoCreateTime"`
	MemberUpdatedAt time.Time      `gorm:"column:member_updated_at;autoUpdateTime"`
	MemberDeletedAt gorm.DeletedAt `gorm:"column:member_deleted_at;index"`
}

func (MemberModel) TableName() string { return "members" }

func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	return nil
}

type CoachModel struct {
	CoachID             uuid.UUID      `gorm:"type:uuid;primaryKey;column:coach_id"`
	CoachBrandID        uuid.UUID      `gorm:"type:uuid;not null;column:coach_brand_id;index"`
	CoachStoreID        uuid.UUID      `gorm:"type:uuid;not null;column:coach_store_id;index"`
	CoachName           string         `gorm:"size:120;not null;column:coach_name"`
	CoachSpecialization string         `gorm:"size:120;column:coach_specialization"`
	CoachCreatedAt      time.Time      `gorm:"column:coach_created_at;autoCreateTime"`
	CoachUpdatedAt      time.Time      `gorm:"column:coach_updated_at;autoUpdateTime"`
	CoachDeletedAt      gorm.DeletedAt `gorm:"column:coach_deleted_at;index"`
}

func (CoachModel) TableName() string { return "coaches" }

func (m *CoachModel) BeforeCreate(tx *gorm.DB) error {
	if m.CoachID == uuid.Nil {
		m.CoachID = uuid.New()
	}
	return nil
}

/* =========================
   Course
   ========================= */

type CourseModel struct {
	CourseID              uuid.UUID      `gorm:"type:uuid;primaryKey;column:course_id"`
	CourseBrandID         uuid.UUID      `gorm:"type:uuid;not null;column:course_brand_id;index"`
	CourseName            string         `gorm:"size:120;not null;column:course_name"`
	CourseDurationMinutes int            `gorm:"not null;default:60;column:course_duration_minutes"`
	CourseTags            pq.StringArray `gorm:"type:text[];column:course_tags"`
	CourseCreatedAt       time.Time      `gorm:"column:course_created_at;autoCreateTime"`
	CourseUpdatedAt       time.Time      `gorm:"column:course_updated_at;autoUpdateTime"`
	CourseDeletedAt       gorm.DeletedAt `gorm:"column:course_deleted_at;index"`
}

func (CourseModel) TableName() string { return "courses" }

func (m *CourseModel) BeforeCreate(tx *gorm.DB) error {
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	return nil
}
