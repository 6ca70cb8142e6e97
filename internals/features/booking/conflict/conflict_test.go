package conflict

import (
	"testing"
	"time"

	"gymku_backend/internals/helpers/errs"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 9, h, m, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
		{"contained", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 15), at(9, 45)}, true},
		{"partial overlap", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 30), at(10, 30)}, true},
		{"touching end-start", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"touching start-end", Interval{at(10, 0), at(11, 0)}, Interval{at(9, 0), at(10, 0)}, false},
		{"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"one minute overlap", Interval{at(9, 0), at(10, 1)}, Interval{at(10, 0), at(11, 0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// symmetry: conflict(A,B) == conflict(B,A)
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestIntervalValidate(t *testing.T) {
	if err := (Interval{at(9, 0), at(10, 0)}).Validate(); err != nil {
		t.Fatalf("valid interval rejected: %v", err)
	}
	for _, iv := range []Interval{
		{at(10, 0), at(9, 0)},
		{at(9, 0), at(9, 0)},
	} {
		err := iv.Validate()
		if err == nil {
			t.Fatalf("Validate(%v) = nil, want validation error", iv)
		}
		if !errs.IsKind(err, errs.KindValidation) {
			t.Fatalf("Validate(%v) kind = %v, want KindValidation", iv, errs.KindOf(err))
		}
	}
}

// Coach C1 holds 09:00-10:00: a 09:30-10:30 session conflicts, a 10:00-11:00
// session does not.
func TestCoachScheduleScenario(t *testing.T) {
	scheduleA := Interval{at(9, 0), at(10, 0)}

	if !scheduleA.Overlaps(Interval{at(9, 30), at(10, 30)}) {
		t.Error("09:30-10:30 should conflict with 09:00-10:00")
	}
	if scheduleA.Overlaps(Interval{at(10, 0), at(11, 0)}) {
		t.Error("10:00-11:00 should not conflict with 09:00-10:00 (touching boundary)")
	}
}

func TestResultByDimension(t *testing.T) {
	res := Result{Hits: []Hit{
		{Dimension: DimensionCoach, Kind: "booking"},
		{Dimension: DimensionCoach, Kind: "schedule"},
		{Dimension: DimensionMember, Kind: "booking"},
	}}
	if !res.HasConflict() {
		t.Fatal("expected HasConflict")
	}
	if got := len(res.ByDimension(DimensionCoach)); got != 2 {
		t.Errorf("coach hits = %d, want 2", got)
	}
	if got := len(res.ByDimension(DimensionMember)); got != 1 {
		t.Errorf("member hits = %d, want 1", got)
	}
	if (Result{}).HasConflict() {
		t.Error("empty result should not conflict")
	}
}
