package dto

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Every booking is entitlement-backed, so the card is not optional on create.
func TestCreateBookingRequestRequiresCard(t *testing.T) {
	v := validator.New()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	valid := CreateBookingRequest{
		BrandID:   uuid.New(),
		StoreID:   uuid.New(),
		MemberID:  uuid.New(),
		CourseID:  uuid.New(),
		CardID:    uuid.New(),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
	if err := v.Struct(&valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	missingCard := valid
	missingCard.CardID = uuid.Nil
	if err := v.Struct(&missingCard); err == nil {
		t.Fatal("request without card accepted")
	}
}
