// Pure schedule state rules, DB-free.
package service

import (
	"time"

	bookingModel "gymku_backend/internals/features/booking/bookings/model"
	bookingService "gymku_backend/internals/features/booking/bookings/service"
	"gymku_backend/internals/features/booking/schedules/model"
	"gymku_backend/internals/helpers/errs"
)

var scheduleTransitions = map[model.ScheduleStatus][]model.ScheduleStatus{
	model.ScheduleScheduled: {model.ScheduleCompleted, model.ScheduleCancelled},
	model.ScheduleCompleted: {},
	model.ScheduleCancelled: {},
}

func CanTransitionSchedule(from, to model.ScheduleStatus) bool {
	for _, t := range scheduleTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func scheduleTransitionErr(from, to model.ScheduleStatus) error {
	return errs.InvalidTransition("schedule", string(from), string(to))
}

// ApplyCancelSchedule: a class affects every attendee, so its lead time is
// longer than a booking's.
func ApplyCancelSchedule(m *model.CourseScheduleModel, now time.Time, lead time.Duration) error {
	if !CanTransitionSchedule(m.CourseScheduleStatus, model.ScheduleCancelled) {
		return scheduleTransitionErr(m.CourseScheduleStatus, model.ScheduleCancelled)
	}
	if !now.Add(lead).Before(m.CourseScheduleStartTime) {
		return errs.Validation("schedule can only be cancelled more than %s before start", lead)
	}
	m.CourseScheduleStatus = model.ScheduleCancelled
	return nil
}

const attendeeCancelReason = "schedule cancelled"

// ApplyCancelAttendee cancels one attendee booking as part of a schedule
// cancellation. The schedule-level lead gate already ran, so the per-booking
// lead check does not apply here.
func ApplyCancelAttendee(b *bookingModel.BookingModel, now time.Time) error {
	if !bookingService.CanTransitionBooking(b.BookingStatus, bookingModel.BookingCancelled) {
		return errs.InvalidTransition("booking", string(b.BookingStatus), string(bookingModel.BookingCancelled))
	}
	reason := attendeeCancelReason
	b.BookingStatus = bookingModel.BookingCancelled
	b.BookingCancelledAt = &now
	b.BookingCancellationReason = &reason
	return nil
}

func ApplyCompleteSchedule(m *model.CourseScheduleModel) error {
	if m.CourseScheduleStatus != model.ScheduleScheduled {
		return scheduleTransitionErr(m.CourseScheduleStatus, model.ScheduleCompleted)
	}
	m.CourseScheduleStatus = model.ScheduleCompleted
	return nil
}

// CheckJoinable gates the booking-acceptance path before the guarded
// increment runs.
func CheckJoinable(m *model.CourseScheduleModel) error {
	if m.CourseScheduleStatus != model.ScheduleScheduled {
		return errs.InvalidTransition("schedule", string(m.CourseScheduleStatus), "joined")
	}
	if !m.HasHeadroom() {
		return errs.Conflict("schedule is full (%d/%d)",
			m.CourseScheduleCurrentParticipants, m.CourseScheduleMaxParticipants)
	}
	return nil
}

// CheckDeletable: attendee bookings must be resolved before a schedule row
// can be removed.
func CheckDeletable(m *model.CourseScheduleModel) error {
	if m.CourseScheduleCurrentParticipants > 0 {
		return errs.Conflict("schedule still has %d participant(s)", m.CourseScheduleCurrentParticipants)
	}
	return nil
}

// ValidateNewSchedule checks the creation-time interval rules.
func ValidateNewSchedule(start, end time.Time, maxParticipants int, now time.Time) error {
	if !start.Before(end) {
		return errs.Validation("start time must be before end time")
	}
	if !start.After(now) {
		return errs.Validation("start time must be in the future")
	}
	if maxParticipants <= 0 {
		return errs.Validation("max participants must be positive")
	}
	return nil
}
