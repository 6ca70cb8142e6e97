// Time-conflict checker. Reports overlapping non-terminal reservations per
// resource dimension. The check alone is not race-safe: creation paths must
// run it inside the same transaction as their write, on the transaction
// handle passed in, so candidate rows stay locked until commit.
package conflict

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gymku_backend/internals/helpers/errs"
)

type Dimension string

const (
	DimensionCoach  Dimension = "coach"
	DimensionMember Dimension = "member"
)

// Interval is half-open: [Start, End). Touching endpoints do not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return errs.Validation("start time must be before end time")
	}
	return nil
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

type ResourceRef struct {
	Dimension Dimension
	ID        uuid.UUID
}

type Hit struct {
	Dimension Dimension `json:"dimension"`
	Kind      string    `json:"kind"` // booking | schedule
	RecordID  uuid.UUID `json:"record_id"`
	Interval  Interval  `json:"interval"`
}

type Result struct {
	Hits []Hit
}

func (r Result) HasConflict() bool { return len(r.Hits) > 0 }

func (r Result) ByDimension(d Dimension) []Hit {
	var out []Hit
	for _, h := range r.Hits {
		if h.Dimension == d {
			out = append(out, h)
		}
	}
	return out
}

type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

// Check scans each dimension independently: a coach-only conflict is reported
// even when the member dimension is clear. Only non-terminal rows participate
// (pending/confirmed bookings, scheduled class sessions); soft-deleted rows
// are excluded by the gorm soft-delete scope. excludeBookingID skips the row
// being rescheduled.
func (ck *Checker) Check(ctx context.Context, tx *gorm.DB, iv Interval, refs []ResourceRef, excludeBookingID *uuid.UUID) (Result, error) {
	if err := iv.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	for _, ref := range refs {
		switch ref.Dimension {
		case DimensionCoach:
			if err := ck.scanBookings(ctx, tx, iv, "booking_coach_id", ref, excludeBookingID, &res); err != nil {
				return Result{}, err
			}
			if err := ck.scanSchedules(ctx, tx, iv, ref, &res); err != nil {
				return Result{}, err
			}
		case DimensionMember:
			if err := ck.scanBookings(ctx, tx, iv, "booking_member_id", ref, excludeBookingID, &res); err != nil {
				return Result{}, err
			}
		default:
			return Result{}, errs.Validation("unknown conflict dimension %q", ref.Dimension)
		}
	}
	return res, nil
}

type bookingRow struct {
	BookingID        uuid.UUID `gorm:"column:booking_id"`
	BookingStartTime time.Time `gorm:"column:booking_start_time"`
	BookingEndTime   time.Time `gorm:"column:booking_end_time"`
}

type scheduleRow struct {
	CourseScheduleID        uuid.UUID `gorm:"column:course_schedule_id"`
	CourseScheduleStartTime time.Time `gorm:"column:course_schedule_start_time"`
	CourseScheduleEndTime   time.Time `gorm:"column:course_schedule_end_time"`
}

func (ck *Checker) scanBookings(ctx context.Context, tx *gorm.DB, iv Interval, col string, ref ResourceRef, excludeID *uuid.UUID, res *Result) error {
	q := tx.WithContext(ctx).
		Table("bookings").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(col+" = ?", ref.ID).
		Where("booking_status IN ?", []string{"pending", "confirmed"}).
		Where("booking_start_time < ? AND booking_end_time > ?", iv.End, iv.Start).
		Where("booking_deleted_at IS NULL")
	if excludeID != nil {
		q = q.Where("booking_id <> ?", *excludeID)
	}

	var rows []bookingRow
	if err := q.Find(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		res.Hits = append(res.Hits, Hit{
			Dimension: ref.Dimension,
			Kind:      "booking",
			RecordID:  r.BookingID,
			Interval:  Interval{Start: r.BookingStartTime, End: r.BookingEndTime},
		})
	}
	return nil
}

func (ck *Checker) scanSchedules(ctx context.Context, tx *gorm.DB, iv Interval, ref ResourceRef, res *Result) error {
	var rows []scheduleRow
	err := tx.WithContext(ctx).
		Table("course_schedules").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_schedule_coach_id = ?", ref.ID).
		Where("course_schedule_status = ?", "scheduled").
		Where("course_schedule_start_time < ? AND course_schedule_end_time > ?", iv.End, iv.Start).
		Where("course_schedule_deleted_at IS NULL").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, r := range rows {
		res.Hits = append(res.Hits, Hit{
			Dimension: ref.Dimension,
			Kind:      "schedule",
			RecordID:  r.CourseScheduleID,
			Interval:  Interval{Start: r.CourseScheduleStartTime, End: r.CourseScheduleEndTime},
		})
	}
	return nil
}
