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
	bookingModel "gymku_backend/internals/features/booking/bookings/model"
	bookingService "gymku_backend/internals/features/booking/bookings/service"
	"gymku_backend/internals/features/booking/conflict"
	"gymku_backend/internals/features/booking/schedules/dto"
	"gymku_backend/internals/features/booking/schedules/model"
	mdService "gymku_backend/internals/features/gym/masterdata/service"
	cardModel "gymku_backend/internals/features/membership/cards/model"
	cardService "gymku_backend/internals/features/membership/cards/service"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
	"gymku_backend/internals/helpers/errs"
	"gymku_backend/internals/helpers/metrics"
)

type ScheduleService struct {
	DB         *gorm.DB
	Lookup     *mdService.LookupService
	Cards      *cardService.CardService
	Checker    *conflict.Checker
	CancelLead time.Duration
	Now        func() time.Time
}

func NewScheduleService(db *gorm.DB) *ScheduleService {
	return &ScheduleService{
		DB:         db,
		Lookup:     mdService.NewLookupService(db),
		Cards:      cardService.NewCardService(db),
		Checker:    conflict.NewChecker(),
		CancelLead: configs.ScheduleCancelLead,
		Now:        time.Now,
	}
}

/* =========================
   Create
   ========================= */

// Create verifies references, interval rules, and a clean coach conflict
// check inside the write transaction; one retry on a write-time conflict.
func (s *ScheduleService) Create(ctx context.Context, sc helperAuth.Scope, req *dto.CreateScheduleRequest) (*model.CourseScheduleModel, error) {
	if err := ValidateNewSchedule(req.StartTime, req.EndTime, req.MaxParticipants, s.Now()); err != nil {
		return nil, err
	}
	if !sc.AllowsStore(req.BrandID, req.StoreID) {
		return nil, errs.NotFound("store %s not found", req.StoreID)
	}
	if err := s.Lookup.StoreExists(ctx, sc, req.StoreID); err != nil {
		return nil, err
	}
	if err := s.Lookup.CourseExists(ctx, sc, req.CourseID); err != nil {
		return nil, err
	}
	if err := s.Lookup.CoachExists(ctx, sc, req.CoachID); err != nil {
		return nil, err
	}

	iv := conflict.Interval{Start: req.StartTime, End: req.EndTime}
	var schedule *model.CourseScheduleModel
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		schedule, err = s.createOnce(ctx, iv, req)
		if err == nil || !errs.IsWriteConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, errs.FromPG(err)
	}
	return schedule, nil
}

func (s *ScheduleService) createOnce(ctx context.Context, iv conflict.Interval, req *dto.CreateScheduleRequest) (*model.CourseScheduleModel, error) {
	schedule := &model.CourseScheduleModel{
		CourseScheduleBrandID:         req.BrandID,
		CourseScheduleStoreID:         req.StoreID,
		CourseScheduleCourseID:        req.CourseID,
		CourseScheduleCoachID:         req.CoachID,
		CourseScheduleStartTime:       req.StartTime,
		CourseScheduleEndTime:         req.EndTime,
		CourseScheduleMaxParticipants: req.MaxParticipants,
		CourseScheduleStatus:          model.ScheduleScheduled,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.Checker.Check(ctx, tx, iv, []conflict.ResourceRef{
			{Dimension: conflict.DimensionCoach, ID: req.CoachID},
		}, nil)
		if err != nil {
			return err
		}
		if res.HasConflict() {
			metrics.ConflictsDetected.WithLabelValues(string(conflict.DimensionCoach)).Inc()
			return errs.Conflict("coach already has %d overlapping reservation(s)", len(res.Hits))
		}
		return tx.Create(schedule).Error
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

/* =========================
   Transitions
   ========================= */

// Cancel cascades over the attendees: every open booking on the schedule is
// cancelled and its consumed session released, in the same transaction.
func (s *ScheduleService) Cancel(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CourseScheduleModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, m *model.CourseScheduleModel) error {
		if err := ApplyCancelSchedule(m, s.Now(), s.CancelLead); err != nil {
			return err
		}
		if err := s.cancelAttendees(ctx, tx, m); err != nil {
			return err
		}
		m.CourseScheduleCurrentParticipants = 0
		return tx.Model(m).Updates(map[string]interface{}{
			"course_schedule_status":               m.CourseScheduleStatus,
			"course_schedule_current_participants": 0,
		}).Error
	})
}

func (s *ScheduleService) cancelAttendees(ctx context.Context, tx *gorm.DB, m *model.CourseScheduleModel) error {
	var attendees []bookingModel.BookingModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_schedule_id = ?", m.CourseScheduleID).
		Where("booking_status IN ?", []bookingModel.BookingStatus{
			bookingModel.BookingPending, bookingModel.BookingConfirmed,
		}).
		Find(&attendees).Error; err != nil {
		return err
	}

	now := s.Now()
	for i := range attendees {
		b := &attendees[i]
		if err := ApplyCancelAttendee(b, now); err != nil {
			return err
		}
		if err := tx.Model(b).Updates(map[string]interface{}{
			"booking_status":              b.BookingStatus,
			"booking_cancelled_at":        b.BookingCancelledAt,
			"booking_cancellation_reason": b.BookingCancellationReason,
		}).Error; err != nil {
			return err
		}
		if b.BookingCardID != nil {
			if _, err := s.Cards.LedgerOn(tx).Release(ctx, *b.BookingCardID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ScheduleService) Complete(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CourseScheduleModel, error) {
	return s.mutate(ctx, sc, id, func(tx *gorm.DB, m *model.CourseScheduleModel) error {
		if err := ApplyCompleteSchedule(m); err != nil {
			return err
		}
		return tx.Model(m).Update("course_schedule_status", m.CourseScheduleStatus).Error
	})
}

// Delete soft-deletes; blocked while attendee bookings remain.
func (s *ScheduleService) Delete(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) error {
	_, err := s.mutate(ctx, sc, id, func(tx *gorm.DB, m *model.CourseScheduleModel) error {
		if err := CheckDeletable(m); err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	return err
}

/* =========================
   Join / Leave (booking-acceptance path)
   ========================= */

// Join admits a member: guarded headroom increment, member-dimension
// conflict check, group-card consumption, and the attendee booking, all in
// one transaction.
func (s *ScheduleService) Join(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, req *dto.JoinScheduleRequest) (*bookingModel.BookingModel, error) {
	if err := s.Lookup.MemberExists(ctx, sc, req.MemberID); err != nil {
		return nil, err
	}

	var booking *bookingModel.BookingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.lockSchedule(ctx, tx, sc, id)
		if err != nil {
			return err
		}
		if err := CheckJoinable(m); err != nil {
			return err
		}

		iv := conflict.Interval{Start: m.CourseScheduleStartTime, End: m.CourseScheduleEndTime}
		res, err := s.Checker.Check(ctx, tx, iv, []conflict.ResourceRef{
			{Dimension: conflict.DimensionMember, ID: req.MemberID},
		}, nil)
		if err != nil {
			return err
		}
		if res.HasConflict() {
			metrics.ConflictsDetected.WithLabelValues(string(conflict.DimensionMember)).Inc()
			return errs.Conflict("member already has an overlapping reservation")
		}

		// Joining always burns a group session; the card is resolved under
		// the caller's scope and checked against the joining member first.
		card, err := s.Cards.ConsumeFor(ctx, tx, sc, req.CardID, req.MemberID, nil)
		if err != nil {
			return err
		}
		if card.CardType != cardModel.CardTypeGroupClass {
			return errs.Validation("schedule join requires a group class card")
		}
		metrics.SessionsConsumed.Inc()

		// Headroom verified against the row again at write time: the counter
		// update itself is the capacity guard.
		inc := tx.Model(&model.CourseScheduleModel{}).
			Where("course_schedule_id = ?", m.CourseScheduleID).
			Where("course_schedule_status = ?", model.ScheduleScheduled).
			Where("course_schedule_current_participants < course_schedule_max_participants").
			Update("course_schedule_current_participants",
				gorm.Expr("course_schedule_current_participants + 1"))
		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			return errs.Conflict("schedule is full (%d/%d)",
				m.CourseScheduleCurrentParticipants, m.CourseScheduleMaxParticipants)
		}

		scheduleID := m.CourseScheduleID
		booking = &bookingModel.BookingModel{
			BookingBrandID:    m.CourseScheduleBrandID,
			BookingStoreID:    m.CourseScheduleStoreID,
			BookingMemberID:   req.MemberID,
			BookingCoachID:    &m.CourseScheduleCoachID,
			BookingCourseID:   m.CourseScheduleCourseID,
			BookingScheduleID: &scheduleID,
			BookingCardID:     &req.CardID,
			BookingNumber:     newClassBookingNumber(s.Now()),
			BookingStartTime:  m.CourseScheduleStartTime,
			BookingEndTime:    m.CourseScheduleEndTime,
			BookingStatus:     bookingModel.BookingPending,
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, errs.FromPG(err)
	}
	metrics.BookingsCreated.Inc()
	return booking, nil
}

// Leave is the inverse of Join: cancels the member's attendee booking,
// releases the seat (guarded at zero) and refunds the consumed session.
func (s *ScheduleService) Leave(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, req *dto.LeaveScheduleRequest) (*bookingModel.BookingModel, error) {
	var booking *bookingModel.BookingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.lockSchedule(ctx, tx, sc, id)
		if err != nil {
			return err
		}

		var b bookingModel.BookingModel
		q := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_schedule_id = ?", m.CourseScheduleID).
			Where("booking_member_id = ?", req.MemberID).
			Where("booking_status IN ?", []bookingModel.BookingStatus{
				bookingModel.BookingPending, bookingModel.BookingConfirmed,
			})
		if err := q.First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("member %s has no open booking on this schedule", req.MemberID)
			}
			return err
		}

		if err := bookingService.ApplyCancel(&b, req.Reason, s.Now(), configs.BookingCancelLead); err != nil {
			return err
		}
		if err := tx.Model(&b).Updates(map[string]interface{}{
			"booking_status":              b.BookingStatus,
			"booking_cancelled_at":        b.BookingCancelledAt,
			"booking_cancellation_reason": b.BookingCancellationReason,
		}).Error; err != nil {
			return err
		}

		dec := tx.Model(&model.CourseScheduleModel{}).
			Where("course_schedule_id = ?", m.CourseScheduleID).
			Where("course_schedule_current_participants > 0").
			Update("course_schedule_current_participants",
				gorm.Expr("course_schedule_current_participants - 1"))
		if dec.Error != nil {
			return dec.Error
		}

		if b.BookingCardID != nil {
			if _, err := s.Cards.LedgerOn(tx).Release(ctx, *b.BookingCardID); err != nil {
				return err
			}
		}

		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

/* =========================
   Queries
   ========================= */

func (s *ScheduleService) Get(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CourseScheduleModel, error) {
	var m model.CourseScheduleModel
	q := s.DB.WithContext(ctx).Where("course_schedule_id = ?", id)
	if err := sc.Apply(q, "course_schedule_brand_id", "course_schedule_store_id").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("schedule %s not found", id)
		}
		return nil, err
	}
	return &m, nil
}

func (s *ScheduleService) List(ctx context.Context, sc helperAuth.Scope, f *dto.ListSchedulesFilter, p helper.Params) ([]model.CourseScheduleModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.CourseScheduleModel{})
	q = sc.Apply(q, "course_schedule_brand_id", "course_schedule_store_id")

	if f.CoachID != nil {
		q = q.Where("course_schedule_coach_id = ?", *f.CoachID)
	}
	if f.CourseID != nil {
		q = q.Where("course_schedule_course_id = ?", *f.CourseID)
	}
	if f.Status != "" {
		q = q.Where("course_schedule_status = ?", f.Status)
	}
	if f.From != nil && f.To != nil {
		q = q.Where("course_schedule_start_time < ? AND course_schedule_end_time > ?", *f.To, *f.From)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := p.SafeOrderClause(map[string]string{
		"start":   "course_schedule_start_time",
		"created": "course_schedule_created_at",
	}, "start")
	if err != nil {
		return nil, 0, err
	}

	var items []model.CourseScheduleModel
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

/* =========================
   internals
   ========================= */

func (s *ScheduleService) mutate(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, fn func(tx *gorm.DB, m *model.CourseScheduleModel) error) (*model.CourseScheduleModel, error) {
	var schedule *model.CourseScheduleModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.lockSchedule(ctx, tx, sc, id)
		if err != nil {
			return err
		}
		if err := fn(tx, m); err != nil {
			return err
		}
		schedule = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) lockSchedule(ctx context.Context, tx *gorm.DB, sc helperAuth.Scope, id uuid.UUID) (*model.CourseScheduleModel, error) {
	var m model.CourseScheduleModel
	q := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("course_schedule_id = ?", id)
	if err := sc.Apply(q, "course_schedule_brand_id", "course_schedule_store_id").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("schedule %s not found", id)
		}
		return nil, err
	}
	return &m, nil
}

func newClassBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "CB" + now.Format("20060102") + suffix
}
