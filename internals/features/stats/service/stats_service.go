package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingModel "gymku_backend/internals/features/booking/bookings/model"
	scheduleModel "gymku_backend/internals/features/booking/schedules/model"
	cardModel "gymku_backend/internals/features/membership/cards/model"
	"gymku_backend/internals/features/stats/dto"
	helperAuth "gymku_backend/internals/helpers/auth"
)

// StatsService serves read-only aggregates; it adds no state rules of its
// own, everything is a scope-filtered GROUP BY.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

func (s *StatsService) BookingStats(ctx context.Context, sc helperAuth.Scope, from, to time.Time) (*dto.BookingStatsResponse, error) {
	q := s.DB.WithContext(ctx).Model(&bookingModel.BookingModel{}).
		Where("booking_start_time >= ? AND booking_start_time < ?", from, to)
	q = sc.Apply(q, "booking_brand_id", "booking_store_id")

	var rows []dto.BookingStatusCount
	if err := q.
		Select("booking_status AS status, COUNT(*) AS count").
		Group("booking_status").
		Order("booking_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := &dto.BookingStatsResponse{
		Window: dto.StatsWindow{From: from, To: to},
		Counts: rows,
	}
	for _, r := range rows {
		out.Total += r.Count
	}
	return out, nil
}

func (s *StatsService) ScheduleOccupancy(ctx context.Context, sc helperAuth.Scope, from, to time.Time) (*dto.ScheduleOccupancyResponse, error) {
	q := s.DB.WithContext(ctx).Model(&scheduleModel.CourseScheduleModel{}).
		Where("course_schedule_start_time >= ? AND course_schedule_start_time < ?", from, to).
		Where("course_schedule_status <> ?", scheduleModel.ScheduleCancelled)
	q = sc.Apply(q, "course_schedule_brand_id", "course_schedule_store_id")

	var agg struct {
		Schedules     int64
		TotalCapacity int64
		TotalBooked   int64
	}
	if err := q.
		Select("COUNT(*) AS schedules, " +
			"COALESCE(SUM(course_schedule_max_participants), 0) AS total_capacity, " +
			"COALESCE(SUM(course_schedule_current_participants), 0) AS total_booked").
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	out := &dto.ScheduleOccupancyResponse{
		Window:        dto.StatsWindow{From: from, To: to},
		Schedules:     agg.Schedules,
		TotalCapacity: agg.TotalCapacity,
		TotalBooked:   agg.TotalBooked,
	}
	if agg.TotalCapacity > 0 {
		out.OccupancyRate = float64(agg.TotalBooked) / float64(agg.TotalCapacity)
	}
	return out, nil
}

func (s *StatsService) CardUsage(ctx context.Context, sc helperAuth.Scope, memberID uuid.UUID) (*dto.CardUsageResponse, error) {
	q := s.DB.WithContext(ctx).Model(&cardModel.CardModel{}).
		Where("card_member_id = ?", memberID)
	q = sc.Apply(q, "card_brand_id", "card_store_id")

	var rows []dto.CardUsageRow
	if err := q.
		Select("card_type, COUNT(*) AS cards, " +
			"COALESCE(SUM(card_total_sessions), 0) AS total_sessions, " +
			"COALESCE(SUM(card_used_sessions), 0) AS used_sessions").
		Group("card_type").
		Order("card_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &dto.CardUsageResponse{MemberID: memberID.String(), Rows: rows}, nil
}
