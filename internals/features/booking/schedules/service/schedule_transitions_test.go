package service

import (
	"testing"
	"time"

	bookingModel "gymku_backend/internals/features/booking/bookings/model"
	"gymku_backend/internals/features/booking/schedules/model"
	"gymku_backend/internals/helpers/errs"
)

const scheduleLead = 3 * time.Hour

func newScheduled(start time.Time, maxP, current int) *model.CourseScheduleModel {
	return &model.CourseScheduleModel{
		CourseScheduleStartTime:           start,
		CourseScheduleEndTime:             start.Add(time.Hour),
		CourseScheduleMaxParticipants:     maxP,
		CourseScheduleCurrentParticipants: current,
		CourseScheduleStatus:              model.ScheduleScheduled,
	}
}

func TestCanTransitionSchedule(t *testing.T) {
	cases := []struct {
		from, to model.ScheduleStatus
		want     bool
	}{
		{model.ScheduleScheduled, model.ScheduleCompleted, true},
		{model.ScheduleScheduled, model.ScheduleCancelled, true},
		{model.ScheduleScheduled, model.ScheduleScheduled, false},
		{model.ScheduleCompleted, model.ScheduleCancelled, false},
		{model.ScheduleCompleted, model.ScheduleScheduled, false},
		{model.ScheduleCancelled, model.ScheduleCompleted, false},
		{model.ScheduleCancelled, model.ScheduleScheduled, false},
	}
	for _, tc := range cases {
		if got := CanTransitionSchedule(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionSchedule(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestApplyCancelScheduleLeadBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		startIn    time.Duration
		wantCancel bool
	}{
		{"well before lead", scheduleLead + time.Minute, true},
		{"exactly at lead", scheduleLead, false},
		{"inside lead", scheduleLead - time.Minute, false},
		{"already started", -time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newScheduled(now.Add(tc.startIn), 10, 3)
			err := ApplyCancelSchedule(m, now, scheduleLead)
			if tc.wantCancel {
				if err != nil {
					t.Fatalf("ApplyCancelSchedule: %v", err)
				}
				if m.CourseScheduleStatus != model.ScheduleCancelled {
					t.Fatalf("status = %s, want cancelled", m.CourseScheduleStatus)
				}
				return
			}
			if !errs.IsKind(err, errs.KindValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
			if m.CourseScheduleStatus != model.ScheduleScheduled {
				t.Fatalf("status changed on rejected cancel: %s", m.CourseScheduleStatus)
			}
		})
	}
}

func TestApplyCancelScheduleTerminal(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := newScheduled(now.Add(24*time.Hour), 10, 0)
	m.CourseScheduleStatus = model.ScheduleCompleted

	err := ApplyCancelSchedule(m, now, scheduleLead)
	if !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}
}

// Cancelling a schedule cascades over its attendees: open bookings are
// cancelled with the schedule's reason, terminal ones are left alone.
func TestApplyCancelAttendee(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for _, status := range []bookingModel.BookingStatus{
		bookingModel.BookingPending, bookingModel.BookingConfirmed,
	} {
		b := &bookingModel.BookingModel{BookingStatus: status}
		if err := ApplyCancelAttendee(b, now); err != nil {
			t.Fatalf("cancel %s attendee: %v", status, err)
		}
		if b.BookingStatus != bookingModel.BookingCancelled {
			t.Errorf("status = %s, want cancelled", b.BookingStatus)
		}
		if b.BookingCancelledAt == nil || !b.BookingCancelledAt.Equal(now) {
			t.Errorf("cancelled_at not set")
		}
		if b.BookingCancellationReason == nil || *b.BookingCancellationReason != attendeeCancelReason {
			t.Errorf("reason = %v, want %q", b.BookingCancellationReason, attendeeCancelReason)
		}
	}

	for _, status := range []bookingModel.BookingStatus{
		bookingModel.BookingCancelled, bookingModel.BookingCompleted, bookingModel.BookingNoShow,
	} {
		b := &bookingModel.BookingModel{BookingStatus: status}
		if err := ApplyCancelAttendee(b, now); !errs.IsKind(err, errs.KindInvalidTransition) {
			t.Errorf("cancel %s attendee: err = %v, want invalid transition", status, err)
		}
	}
}

func TestApplyCompleteSchedule(t *testing.T) {
	m := newScheduled(time.Now(), 10, 5)
	if err := ApplyCompleteSchedule(m); err != nil {
		t.Fatalf("ApplyCompleteSchedule: %v", err)
	}
	if m.CourseScheduleStatus != model.ScheduleCompleted {
		t.Fatalf("status = %s, want completed", m.CourseScheduleStatus)
	}

	// completed is terminal
	if err := ApplyCompleteSchedule(m); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Fatalf("second complete: err = %v, want invalid transition", err)
	}
}

func TestCheckJoinable(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)

	t.Run("open seat", func(t *testing.T) {
		if err := CheckJoinable(newScheduled(start, 10, 9)); err != nil {
			t.Fatalf("CheckJoinable: %v", err)
		}
	})

	t.Run("full", func(t *testing.T) {
		err := CheckJoinable(newScheduled(start, 10, 10))
		if !errs.IsKind(err, errs.KindConflict) {
			t.Fatalf("err = %v, want conflict", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		m := newScheduled(start, 10, 0)
		m.CourseScheduleStatus = model.ScheduleCancelled
		err := CheckJoinable(m)
		if !errs.IsKind(err, errs.KindInvalidTransition) {
			t.Fatalf("err = %v, want invalid transition", err)
		}
	})
}

func TestCheckDeletable(t *testing.T) {
	m := newScheduled(time.Now(), 10, 2)
	if err := CheckDeletable(m); !errs.IsKind(err, errs.KindConflict) {
		t.Fatalf("err = %v, want conflict while participants remain", err)
	}

	m.CourseScheduleCurrentParticipants = 0
	if err := CheckDeletable(m); err != nil {
		t.Fatalf("CheckDeletable on empty schedule: %v", err)
	}
}

func TestValidateNewSchedule(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	start := now.Add(48 * time.Hour)

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		maxP    int
		wantErr bool
	}{
		{"valid", start, start.Add(time.Hour), 20, false},
		{"start equals end", start, start, 20, true},
		{"start after end", start.Add(time.Hour), start, 20, true},
		{"start in the past", now.Add(-time.Hour), now.Add(time.Hour), 20, true},
		{"zero capacity", start, start.Add(time.Hour), 0, true},
		{"negative capacity", start, start.Add(time.Hour), -1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNewSchedule(tc.start, tc.end, tc.maxP, now)
			if tc.wantErr {
				if !errs.IsKind(err, errs.KindValidation) {
					t.Fatalf("err = %v, want validation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateNewSchedule: %v", err)
			}
		})
	}
}
