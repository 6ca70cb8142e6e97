package service

import (
	"testing"
	"time"

	"gymku_backend/internals/features/booking/bookings/model"
	"gymku_backend/internals/helpers/errs"
)

var testNow = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

const bookingLead = 2 * time.Hour

func futureBooking(status model.BookingStatus, startsIn time.Duration) *model.BookingModel {
	return &model.BookingModel{
		BookingNumber:    "BK20260309TEST0001",
		BookingStartTime: testNow.Add(startsIn),
		BookingEndTime:   testNow.Add(startsIn + time.Hour),
		BookingStatus:    status,
	}
}

/* =========================
   Exhaustive transition table
   ========================= */

func TestBookingTransitionTable(t *testing.T) {
	statuses := []model.BookingStatus{
		model.BookingPending, model.BookingConfirmed,
		model.BookingCancelled, model.BookingCompleted, model.BookingNoShow,
	}
	allowed := map[model.BookingStatus][]model.BookingStatus{
		model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
		model.BookingConfirmed: {model.BookingCompleted, model.BookingCancelled, model.BookingNoShow},
	}
	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := CanTransitionBooking(from, to); got != want {
				t.Errorf("CanTransitionBooking(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestApplyConfirm(t *testing.T) {
	b := futureBooking(model.BookingPending, 3*time.Hour)
	if err := ApplyConfirm(b); err != nil {
		t.Fatalf("confirm pending: %v", err)
	}
	if b.BookingStatus != model.BookingConfirmed {
		t.Errorf("status = %s, want confirmed", b.BookingStatus)
	}

	for _, from := range []model.BookingStatus{
		model.BookingConfirmed, model.BookingCancelled, model.BookingCompleted, model.BookingNoShow,
	} {
		b := futureBooking(from, 3*time.Hour)
		if err := ApplyConfirm(b); !errs.IsKind(err, errs.KindInvalidTransition) {
			t.Errorf("confirm from %s: err = %v, want InvalidTransition", from, err)
		}
	}
}

/* =========================
   Cancellation lead time
   ========================= */

func TestApplyCancelLeadBoundary(t *testing.T) {
	tests := []struct {
		name     string
		startsIn time.Duration
		wantOK   bool
	}{
		{"121 minutes out is cancellable", 121 * time.Minute, true},
		{"120 minutes out is not", 120 * time.Minute, false},
		{"119 minutes out is not", 119 * time.Minute, false},
		{"already started", -10 * time.Minute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := futureBooking(model.BookingConfirmed, tt.startsIn)
			err := ApplyCancel(b, "member request", testNow, bookingLead)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("cancel: %v", err)
				}
				if b.BookingStatus != model.BookingCancelled {
					t.Errorf("status = %s, want cancelled", b.BookingStatus)
				}
				if b.BookingCancelledAt == nil || b.BookingCancellationReason == nil {
					t.Error("cancellation metadata not recorded")
				}
			} else {
				if !errs.IsKind(err, errs.KindValidation) {
					t.Errorf("err = %v, want Validation (lead time)", err)
				}
				if b.BookingStatus == model.BookingCancelled {
					t.Error("booking was cancelled past the lead time")
				}
			}
		})
	}
}

func TestApplyCancelFromTerminal(t *testing.T) {
	for _, from := range []model.BookingStatus{
		model.BookingCancelled, model.BookingCompleted, model.BookingNoShow,
	} {
		b := futureBooking(from, 5*time.Hour)
		if err := ApplyCancel(b, "", testNow, bookingLead); !errs.IsKind(err, errs.KindInvalidTransition) {
			t.Errorf("cancel from %s: err = %v, want InvalidTransition", from, err)
		}
	}
}

/* =========================
   Completion
   ========================= */

func TestApplyComplete(t *testing.T) {
	past := futureBooking(model.BookingConfirmed, -2*time.Hour) // ended an hour ago
	if err := ApplyComplete(past, testNow); err != nil {
		t.Fatalf("complete ended booking: %v", err)
	}

	future := futureBooking(model.BookingConfirmed, time.Hour)
	if err := ApplyComplete(future, testNow); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("complete future booking: err = %v, want Validation", err)
	}

	pending := futureBooking(model.BookingPending, -2*time.Hour)
	if err := ApplyComplete(pending, testNow); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("complete pending: err = %v, want InvalidTransition", err)
	}
}

func TestApplyNoShow(t *testing.T) {
	b := futureBooking(model.BookingConfirmed, -time.Hour)
	if err := ApplyNoShow(b); err != nil {
		t.Fatalf("no-show confirmed: %v", err)
	}
	pending := futureBooking(model.BookingPending, -time.Hour)
	if err := ApplyNoShow(pending); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("no-show pending: err = %v, want InvalidTransition", err)
	}
}

/* =========================
   Review once
   ========================= */

func TestApplyReviewOnce(t *testing.T) {
	b := futureBooking(model.BookingCompleted, -3*time.Hour)

	if err := ApplyReview(b, 5, "great session", testNow); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if b.BookingRating == nil || *b.BookingRating != 5 {
		t.Error("rating not recorded")
	}

	if err := ApplyReview(b, 4, "again", testNow); !errs.IsKind(err, errs.KindAlreadyReviewed) {
		t.Errorf("second review: err = %v, want AlreadyReviewed", err)
	}
	if *b.BookingRating != 5 {
		t.Error("second review overwrote the first")
	}
}

func TestApplyReviewGuards(t *testing.T) {
	confirmed := futureBooking(model.BookingConfirmed, -3*time.Hour)
	if err := ApplyReview(confirmed, 5, "", testNow); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("review non-completed: err = %v, want InvalidTransition", err)
	}

	completed := futureBooking(model.BookingCompleted, -3*time.Hour)
	for _, rating := range []int{0, 6, -1} {
		if err := ApplyReview(completed, rating, "", testNow); !errs.IsKind(err, errs.KindValidation) {
			t.Errorf("rating %d: err = %v, want Validation", rating, err)
		}
	}
}

func TestCheckReschedulable(t *testing.T) {
	for _, from := range []model.BookingStatus{model.BookingPending, model.BookingConfirmed} {
		if err := CheckReschedulable(futureBooking(from, time.Hour)); err != nil {
			t.Errorf("reschedule %s: %v", from, err)
		}
	}
	for _, from := range []model.BookingStatus{
		model.BookingCancelled, model.BookingCompleted, model.BookingNoShow,
	} {
		if err := CheckReschedulable(futureBooking(from, time.Hour)); !errs.IsKind(err, errs.KindInvalidTransition) {
			t.Errorf("reschedule %s: err = %v, want InvalidTransition", from, err)
		}
	}
}
