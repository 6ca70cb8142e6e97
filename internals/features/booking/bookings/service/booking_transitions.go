// Pure booking state rules. Everything here operates on values, so the
// transition table is unit-testable without a database.
package service

import (
	"time"

	"gymku_backend/internals/features/booking/bookings/model"
	"gymku_backend/internals/helpers/errs"
)

var bookingTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCompleted, model.BookingCancelled, model.BookingNoShow},
	model.BookingCancelled: {},
	model.BookingCompleted: {},
	model.BookingNoShow:    {},
}

func CanTransitionBooking(from, to model.BookingStatus) bool {
	for _, t := range bookingTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func bookingTransitionErr(from, to model.BookingStatus) error {
	return errs.InvalidTransition("booking", string(from), string(to))
}

func ApplyConfirm(b *model.BookingModel) error {
	if b.BookingStatus != model.BookingPending {
		return bookingTransitionErr(b.BookingStatus, model.BookingConfirmed)
	}
	b.BookingStatus = model.BookingConfirmed
	return nil
}

// ApplyCancel enforces both the transition table and the cancellation lead
// time: cancelling is allowed only while now is more than `lead` before the
// booking starts.
func ApplyCancel(b *model.BookingModel, reason string, now time.Time, lead time.Duration) error {
	if !CanTransitionBooking(b.BookingStatus, model.BookingCancelled) {
		return bookingTransitionErr(b.BookingStatus, model.BookingCancelled)
	}
	if !now.Add(lead).Before(b.BookingStartTime) {
		return errs.Validation("booking can only be cancelled more than %s before start", lead)
	}
	b.BookingStatus = model.BookingCancelled
	b.BookingCancelledAt = &now
	if reason != "" {
		b.BookingCancellationReason = &reason
	}
	return nil
}

// ApplyComplete: confirmed only, and never before the booking has ended.
func ApplyComplete(b *model.BookingModel, now time.Time) error {
	if b.BookingStatus != model.BookingConfirmed {
		return bookingTransitionErr(b.BookingStatus, model.BookingCompleted)
	}
	if now.Before(b.BookingEndTime) {
		return errs.Validation("booking has not ended yet")
	}
	b.BookingStatus = model.BookingCompleted
	return nil
}

func ApplyNoShow(b *model.BookingModel) error {
	if b.BookingStatus != model.BookingConfirmed {
		return bookingTransitionErr(b.BookingStatus, model.BookingNoShow)
	}
	b.BookingStatus = model.BookingNoShow
	return nil
}

// ApplyReview records the one-and-only review of a completed booking.
func ApplyReview(b *model.BookingModel, rating int, comment string, now time.Time) error {
	if b.IsReviewed() {
		return errs.AlreadyReviewed()
	}
	if b.BookingStatus != model.BookingCompleted {
		return errs.InvalidTransition("booking", string(b.BookingStatus), "reviewed")
	}
	if rating < 1 || rating > 5 {
		return errs.Validation("rating must be between 1 and 5")
	}
	b.BookingRating = &rating
	if comment != "" {
		b.BookingReviewComment = &comment
	}
	b.BookingReviewedAt = &now
	return nil
}

// CheckReschedulable gates time updates: terminal bookings keep their slot.
func CheckReschedulable(b *model.BookingModel) error {
	if b.BookingStatus.IsTerminal() {
		return errs.InvalidTransition("booking", string(b.BookingStatus), "rescheduled")
	}
	return nil
}
