// Existence checks for referenced master rows. Master-data CRUD itself lives
// with the caller; booking and card creation only need to know a reference
// resolves inside the request's tenant scope.
package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	mdModel "gymku_backend/internals/features/gym/masterdata/model"
	helperAuth "gymku_backend/internals/helpers/auth"
	"gymku_backend/internals/helpers/errs"
)

type LookupService struct {
	DB *gorm.DB
}

func NewLookupService(db *gorm.DB) *LookupService {
	return &LookupService{DB: db}
}

func (s *LookupService) StoreExists(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) error {
	var n int64
	q := s.DB.WithContext(ctx).Model(&mdModel.StoreModel{}).Where("store_id = ?", id)
	if err := sc.Apply(q, "store_brand_id", "store_id").Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("store %s not found", id)
	}
	return nil
}

func (s *LookupService) MemberExists(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) error {
	var n int64
	q := s.DB.WithContext(ctx).Model(&mdModel.MemberModel{}).Where("member_id = ?", id)
	if err := sc.Apply(q, "member_brand_id", "member_store_id").Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("member %s not found", id)
	}
	return nil
}

func (s *LookupService) CoachExists(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) error {
	var n int64
	q := s.DB.WithContext(ctx).Model(&mdModel.CoachModel{}).Where("coach_id = ?", id)
	if err := sc.Apply(q, "coach_brand_id", "coach_store_id").Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("coach %s not found", id)
	}
	return nil
}

// CourseExists is brand-scoped only; courses are shared across a brand's stores.
func (s *LookupService) CourseExists(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) error {
	var n int64
	q := s.DB.WithContext(ctx).Model(&mdModel.CourseModel{}).Where("course_id = ?", id)
	if err := sc.ApplyBrand(q, "course_brand_id").Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("course %s not found", id)
	}
	return nil
}
