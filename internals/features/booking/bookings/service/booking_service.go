package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gymku_backend/internals/configs"
	"gymku_backend/internals/features/booking/bookings/dto"
	"gymku_backend/internals/features/booking/bookings/model"
	"gymku_backend/internals/features/booking/conflict"
	mdService "gymku_backend/internals/features/gym/masterdata/service"
	cardService "gymku_backend/internals/features/membership/cards/service"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
	"gymku_backend/internals/helpers/errs"
	"gymku_backend/internals/helpers/metrics"
)

type BookingService struct {
	DB         *gorm.DB
	Lookup     *mdService.LookupService
	Cards      *cardService.CardService
	Checker    *conflict.Checker
	CancelLead time.Duration
	Now        func() time.Time
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{
		DB:         db,
		Lookup:     mdService.NewLookupService(db),
		Cards:      cardService.NewCardService(db),
		Checker:    conflict.NewChecker(),
		CancelLead: configs.BookingCancelLead,
		Now:        time.Now,
	}
}

/* =========================
   Create
   ========================= */

// Create runs the conflict check and the insert inside one transaction, with
// candidate rows locked, so two concurrent requests for the same coach and
// interval cannot both pass the check. A write-time constraint violation is
// treated as a late conflict signal and the whole check+insert is retried
// exactly once.
func (s *BookingService) Create(ctx context.Context, sc helperAuth.Scope, req *dto.CreateBookingRequest) (*model.BookingModel, error) {
	iv := conflict.Interval{Start: req.StartTime, End: req.EndTime}
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	if !sc.AllowsStore(req.BrandID, req.StoreID) {
		return nil, errs.NotFound("store %s not found", req.StoreID)
	}
	if err := s.Lookup.MemberExists(ctx, sc, req.MemberID); err != nil {
		return nil, err
	}
	if err := s.Lookup.CourseExists(ctx, sc, req.CourseID); err != nil {
		return nil, err
	}
	if req.CoachID != nil {
		if err := s.Lookup.CoachExists(ctx, sc, *req.CoachID); err != nil {
			return nil, err
		}
	}

	var booking *model.BookingModel
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		booking, err = s.createOnce(ctx, sc, iv, req)
		if err == nil || !errs.IsWriteConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, errs.FromPG(err)
	}
	metrics.BookingsCreated.Inc()
	return booking, nil
}

func (s *BookingService) createOnce(ctx context.Context, sc helperAuth.Scope, iv conflict.Interval, req *dto.CreateBookingRequest) (*model.BookingModel, error) {
	booking := &model.BookingModel{
		BookingBrandID:   req.BrandID,
		BookingStoreID:   req.StoreID,
		BookingMemberID:  req.MemberID,
		BookingCoachID:   req.CoachID,
		BookingCourseID:  req.CourseID,
		BookingCardID:    &req.CardID,
		BookingNumber:    newBookingNumber(s.Now()),
		BookingStartTime: req.StartTime,
		BookingEndTime:   req.EndTime,
		BookingStatus:    model.BookingPending,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkConflicts(ctx, tx, iv, req.MemberID, req.CoachID, nil); err != nil {
			return err
		}
		// Every booking is entitlement-backed: the card is resolved under the
		// caller's scope and checked against the member before the ledger burn.
		if _, err := s.Cards.ConsumeFor(ctx, tx, sc, req.CardID, req.MemberID, req.CoachID); err != nil {
			return err
		}
		metrics.SessionsConsumed.Inc()
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) checkConflicts(ctx context.Context, tx *gorm.DB, iv conflict.Interval, memberID uuid.UUID, coachID, excludeID *uuid.UUID) error {
	refs := []conflict.ResourceRef{{Dimension: conflict.DimensionMember, ID: memberID}}
	if coachID != nil {
		refs = append(refs, conflict.ResourceRef{Dimension: conflict.DimensionCoach, ID: *coachID})
	}
	res, err := s.Checker.Check(ctx, tx, iv, refs, excludeID)
	if err != nil {
		return err
	}
	if res.HasConflict() {
		for _, d := range []conflict.Dimension{conflict.DimensionCoach, conflict.DimensionMember} {
			if len(res.ByDimension(d)) > 0 {
				metrics.ConflictsDetected.WithLabelValues(string(d)).Inc()
			}
		}
		return errs.Conflict("time range overlaps %d existing reservation(s)", len(res.Hits))
	}
	return nil
}

/* =========================
   Status transitions
   ========================= */

func (s *BookingService) Confirm(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.BookingModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, b *model.BookingModel) error {
		if err := ApplyConfirm(b); err != nil {
			return err
		}
		return tx.Model(b).Update("booking_status", b.BookingStatus).Error
	})
}

// Cancel releases the schedule seat and refunds the consumed session when the
// booking came from the class-join path.
func (s *BookingService) Cancel(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, reason string) (*model.BookingModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, b *model.BookingModel) error {
		if err := ApplyCancel(b, reason, s.Now(), s.CancelLead); err != nil {
			return err
		}
		if err := tx.Model(b).Updates(map[string]interface{}{
			"booking_status":              b.BookingStatus,
			"booking_cancelled_at":        b.BookingCancelledAt,
			"booking_cancellation_reason": b.BookingCancellationReason,
		}).Error; err != nil {
			return err
		}
		if b.BookingScheduleID != nil {
			if err := releaseScheduleSeat(tx, *b.BookingScheduleID); err != nil {
				return err
			}
		}
		if b.BookingCardID != nil {
			if _, err := s.Cards.LedgerOn(tx).Release(ctx, *b.BookingCardID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BookingService) Complete(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.BookingModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, b *model.BookingModel) error {
		if err := ApplyComplete(b, s.Now()); err != nil {
			return err
		}
		return tx.Model(b).Update("booking_status", b.BookingStatus).Error
	})
}

func (s *BookingService) NoShow(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.BookingModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, b *model.BookingModel) error {
		if err := ApplyNoShow(b); err != nil {
			return err
		}
		return tx.Model(b).Update("booking_status", b.BookingStatus).Error
	})
}

func (s *BookingService) Review(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, rating int, comment string) (*model.BookingModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, b *model.BookingModel) error {
		if err := ApplyReview(b, rating, comment, s.Now()); err != nil {
			return err
		}
		return tx.Model(b).Updates(map[string]interface{}{
			"booking_rating":         b.BookingRating,
			"booking_review_comment": b.BookingReviewComment,
			"booking_reviewed_at":    b.BookingReviewedAt,
		}).Error
	})
}

// Reschedule re-runs the conflict check against the new interval, excluding
// the booking itself, inside the write transaction. Single retry on a
// write-time conflict signal, same as Create.
func (s *BookingService) Reschedule(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, start, end time.Time) (*model.BookingModel, error) {
	iv := conflict.Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return nil, err
	}

	var booking *model.BookingModel
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		booking, err = s.mutate(ctx, sc, id, func(tx *gorm.DB, b *model.BookingModel) error {
			if err := CheckReschedulable(b); err != nil {
				return err
			}
			if err := s.checkConflicts(ctx, tx, iv, b.BookingMemberID, b.BookingCoachID, &b.BookingID); err != nil {
				return err
			}
			b.BookingStartTime = start
			b.BookingEndTime = end
			return tx.Model(b).Updates(map[string]interface{}{
				"booking_start_time": start,
				"booking_end_time":   end,
			}).Error
		})
		if err == nil || !errs.IsWriteConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, errs.FromPG(err)
	}
	return booking, nil
}

/* =========================
   Queries
   ========================= */

func (s *BookingService) Get(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.BookingModel, error) {
	var b model.BookingModel
	q := s.DB.WithContext(ctx).Where("booking_id = ?", id)
	if err := sc.Apply(q, "booking_brand_id", "booking_store_id").First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("booking %s not found", id)
		}
		return nil, err
	}
	return &b, nil
}

func (s *BookingService) List(ctx context.Context, sc helperAuth.Scope, f *dto.ListBookingsFilter, p helper.Params) ([]model.BookingModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.BookingModel{})
	q = sc.Apply(q, "booking_brand_id", "booking_store_id")

	if f.MemberID != nil {
		q = q.Where("booking_member_id = ?", *f.MemberID)
	}
	if f.CoachID != nil {
		q = q.Where("booking_coach_id = ?", *f.CoachID)
	}
	if f.Status != "" {
		q = q.Where("booking_status = ?", f.Status)
	}
	if f.From != nil && f.To != nil {
		q = q.Where("booking_start_time < ? AND booking_end_time > ?", *f.To, *f.From)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := p.SafeOrderClause(map[string]string{
		"start":   "booking_start_time",
		"created": "booking_created_at",
	}, "start")
	if err != nil {
		return nil, 0, err
	}

	var items []model.BookingModel
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

/* =========================
   internals
   ========================= */

// mutate loads the booking FOR UPDATE under scope and applies fn in one
// transaction.
func (s *BookingService) mutate(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, fn func(tx *gorm.DB, b *model.BookingModel) error) (*model.BookingModel, error) {
	var booking *model.BookingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.BookingModel
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("booking_id = ?", id)
		if err := sc.Apply(q, "booking_brand_id", "booking_store_id").First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("booking %s not found", id)
			}
			return err
		}
		if err := fn(tx, &b); err != nil {
			return err
		}
		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// releaseScheduleSeat decrements the attendee counter, guarded at zero.
func releaseScheduleSeat(tx *gorm.DB, scheduleID uuid.UUID) error {
	return tx.Table("course_schedules").
		Where("course_schedule_id = ? AND course_schedule_current_participants > 0", scheduleID).
		Update("course_schedule_current_participants", gorm.Expr("course_schedule_current_participants - 1")).Error
}

func newBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "BK" + now.Format("20060102") + suffix
}
