package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"gymku_backend/internals/features/membership/cards/model"
	"gymku_backend/internals/helpers/errs"
)

var testNow = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

func activeCard(total, used int) *model.CardModel {
	return &model.CardModel{
		CardID:            uuid.New(),
		CardNumber:        "MC20260309TESTCARD",
		CardType:          model.CardTypeMembership,
		CardTotalSessions: total,
		CardUsedSessions:  used,
		CardStatus:        model.CardActive,
		CardIssueDate:     testNow.AddDate(0, -1, 0),
	}
}

/* =========================
   Transition table
   ========================= */

func TestCardTransitionTable(t *testing.T) {
	statuses := []model.CardStatus{
		model.CardInactive, model.CardActive, model.CardFrozen,
		model.CardExpired, model.CardRefunded,
	}
	allowed := map[model.CardStatus][]model.CardStatus{
		model.CardInactive: {model.CardActive, model.CardExpired, model.CardRefunded},
		model.CardActive:   {model.CardFrozen, model.CardExpired, model.CardRefunded},
		model.CardFrozen:   {model.CardActive, model.CardExpired, model.CardRefunded},
		model.CardExpired:  {},
		model.CardRefunded: {},
	}
	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := CanTransitionCard(from, to); got != want {
				t.Errorf("CanTransitionCard(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

/* =========================
   Activation
   ========================= */

func TestApplyActivate(t *testing.T) {
	card := activeCard(10, 0)
	card.CardStatus = model.CardInactive
	days := 30
	card.CardValidityDays = &days

	if err := ApplyActivate(card, nil, testNow); err != nil {
		t.Fatalf("activate inactive card: %v", err)
	}
	if card.CardStatus != model.CardActive {
		t.Errorf("status = %s, want active", card.CardStatus)
	}
	if card.CardActivationDate == nil || !card.CardActivationDate.Equal(testNow) {
		t.Errorf("activation date not set to now")
	}
	if card.CardExpiryDate == nil || !card.CardExpiryDate.Equal(testNow.AddDate(0, 0, 30)) {
		t.Errorf("expiry not derived from validity days")
	}

	// second activation is an invalid transition
	if err := ApplyActivate(card, nil, testNow); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("re-activate: err = %v, want InvalidTransition", err)
	}
}

func TestApplyActivateParentGate(t *testing.T) {
	parentID := uuid.New()

	child := activeCard(10, 0)
	child.CardStatus = model.CardInactive
	child.CardType = model.CardTypeGroupClass
	child.CardParentID = &parentID

	if err := ApplyActivate(child, nil, testNow); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("missing parent: err = %v, want NotFound", err)
	}

	parent := activeCard(20, 0)
	parent.CardID = parentID
	parent.CardStatus = model.CardInactive
	if err := ApplyActivate(child, parent, testNow); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("inactive parent: err = %v, want InvalidTransition", err)
	}

	parent.CardStatus = model.CardActive
	if err := ApplyActivate(child, parent, testNow); err != nil {
		t.Errorf("active parent: err = %v, want nil", err)
	}
}

/* =========================
   Freeze / unfreeze
   ========================= */

func TestFreezeUnfreezeRoundTrip(t *testing.T) {
	card := activeCard(10, 4)

	if err := ApplyFreeze(card); err != nil {
		t.Fatalf("freeze active: %v", err)
	}
	if err := ApplyFreeze(card); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("freeze frozen: err = %v, want InvalidTransition", err)
	}
	if err := ApplyUnfreeze(card); err != nil {
		t.Fatalf("unfreeze frozen: %v", err)
	}
	if card.CardStatus != model.CardActive {
		t.Errorf("status after round trip = %s, want active", card.CardStatus)
	}
	if card.CardUsedSessions != 4 || card.CardTotalSessions != 10 {
		t.Errorf("counters changed by freeze round trip: %d/%d", card.CardUsedSessions, card.CardTotalSessions)
	}

	card.CardStatus = model.CardInactive
	if err := ApplyUnfreeze(card); !errs.IsKind(err, errs.KindInvalidTransition) {
		t.Errorf("unfreeze inactive: err = %v, want InvalidTransition", err)
	}
}

/* =========================
   Consumption gate
   ========================= */

func TestCheckConsumable(t *testing.T) {
	past := testNow.AddDate(0, 0, -1)
	future := testNow.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		mutate  func(*model.CardModel)
		wantErr bool
	}{
		{"active with headroom", func(c *model.CardModel) {}, false},
		{"exhausted", func(c *model.CardModel) { c.CardUsedSessions = c.CardTotalSessions }, true},
		{"inactive", func(c *model.CardModel) { c.CardStatus = model.CardInactive }, true},
		{"frozen", func(c *model.CardModel) { c.CardStatus = model.CardFrozen }, true},
		{"expired status", func(c *model.CardModel) { c.CardStatus = model.CardExpired }, true},
		{"past expiry date", func(c *model.CardModel) { c.CardExpiryDate = &past }, true},
		{"future expiry date", func(c *model.CardModel) { c.CardExpiryDate = &future }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := activeCard(10, 3)
			tt.mutate(card)
			err := CheckConsumable(card, testNow)
			if tt.wantErr {
				if !errs.IsKind(err, errs.KindInsufficientEntitlement) {
					t.Errorf("err = %v, want InsufficientEntitlement", err)
				}
			} else if err != nil {
				t.Errorf("err = %v, want nil", err)
			}
		})
	}
}

func TestConsumeExhaustedLeavesCounterUntouched(t *testing.T) {
	card := activeCard(10, 10)
	store := newFakeStore(card)
	ledger := &Ledger{Store: store, Now: func() time.Time { return testNow }}

	_, err := ledger.Consume(context.Background(), card.CardID)
	if !errs.IsKind(err, errs.KindInsufficientEntitlement) {
		t.Fatalf("err = %v, want InsufficientEntitlement", err)
	}
	if got := store.get(card.CardID).CardUsedSessions; got != 10 {
		t.Errorf("used sessions = %d, want 10 (unchanged)", got)
	}
}

func TestCheckCardUsableBy(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	boundCoach := uuid.New()
	otherCoach := uuid.New()

	tests := []struct {
		name     string
		mutate   func(*model.CardModel)
		memberID uuid.UUID
		coachID  *uuid.UUID
		wantKind errs.Kind
	}{
		{"owner with membership card", func(c *model.CardModel) {}, owner, nil, errs.KindUnknown},
		{"owner with membership card and any coach", func(c *model.CardModel) {}, owner, &otherCoach, errs.KindUnknown},
		{"another member's card reads as absent", func(c *model.CardModel) {}, stranger, nil, errs.KindNotFound},
		{"pt card with bound coach", func(c *model.CardModel) {
			c.CardType = model.CardTypePersonalTraining
			c.CardCoachID = &boundCoach
		}, owner, &boundCoach, errs.KindUnknown},
		{"pt card with another coach", func(c *model.CardModel) {
			c.CardType = model.CardTypePersonalTraining
			c.CardCoachID = &boundCoach
		}, owner, &otherCoach, errs.KindValidation},
		{"pt card without a coach on the booking", func(c *model.CardModel) {
			c.CardType = model.CardTypePersonalTraining
			c.CardCoachID = &boundCoach
		}, owner, nil, errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := activeCard(10, 0)
			card.CardMemberID = owner
			tt.mutate(card)
			err := CheckCardUsableBy(card, tt.memberID, tt.coachID)
			if tt.wantKind == errs.KindUnknown {
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
				return
			}
			if !errs.IsKind(err, tt.wantKind) {
				t.Errorf("err = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

/* =========================
   Concurrency: one session left, many consumers
   ========================= */

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	const total = 10
	const k = 8

	card := activeCard(total, total-1)
	store := newFakeStore(card)
	ledger := &Ledger{Store: store, Now: func() time.Time { return testNow }}

	var wg sync.WaitGroup
	results := make(chan error, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Consume(context.Background(), card.CardID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, insufficient int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errs.IsKind(err, errs.KindInsufficientEntitlement):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if insufficient != k-1 {
		t.Errorf("insufficient = %d, want %d", insufficient, k-1)
	}
	if got := store.get(card.CardID).CardUsedSessions; got != total {
		t.Errorf("used sessions = %d, want %d", got, total)
	}
}

// A status transition that lands between the ledger's read and its CAS write
// bumps the version, so the stale counter write misses and the re-read sees
// the new status.
func TestConsumeLosesToConcurrentFreeze(t *testing.T) {
	card := activeCard(10, 3)
	store := newFakeStore(card)
	freezing := &freezeOnFirstWrite{fakeStore: store, cardID: card.CardID}
	ledger := &Ledger{Store: freezing, Now: func() time.Time { return testNow }}

	_, err := ledger.Consume(context.Background(), card.CardID)
	if !errs.IsKind(err, errs.KindInsufficientEntitlement) {
		t.Fatalf("err = %v, want InsufficientEntitlement", err)
	}
	stored := store.get(card.CardID)
	if stored.CardUsedSessions != 3 {
		t.Errorf("used = %d, want 3 (no session consumed on a frozen card)", stored.CardUsedSessions)
	}
	if stored.CardStatus != model.CardFrozen {
		t.Errorf("status = %s, want frozen", stored.CardStatus)
	}
}

// freezeOnFirstWrite freezes the card, version bump included, right before
// the ledger's first CAS attempt — the same write the status transitions
// issue.
type freezeOnFirstWrite struct {
	*fakeStore
	cardID uuid.UUID
	froze  bool
}

func (s *freezeOnFirstWrite) UpdateIfVersion(ctx context.Context, card *model.CardModel, expectedVersion int64) (bool, error) {
	if !s.froze {
		s.froze = true
		s.mu.Lock()
		stored := s.cards[s.cardID]
		stored.CardStatus = model.CardFrozen
		stored.CardVersion++
		s.mu.Unlock()
	}
	return s.fakeStore.UpdateIfVersion(ctx, card, expectedVersion)
}

func TestRelease(t *testing.T) {
	card := activeCard(10, 2)
	store := newFakeStore(card)
	ledger := &Ledger{Store: store, Now: func() time.Time { return testNow }}

	if _, err := ledger.Release(context.Background(), card.CardID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := store.get(card.CardID).CardUsedSessions; got != 1 {
		t.Errorf("used = %d, want 1", got)
	}

	store.get(card.CardID).CardUsedSessions = 0
	if _, err := ledger.Release(context.Background(), card.CardID); err != nil {
		t.Fatalf("release at zero: %v", err)
	}
	if got := store.get(card.CardID).CardUsedSessions; got != 0 {
		t.Errorf("used = %d, want 0 (never below zero)", got)
	}
}

/* =========================
   In-memory CardStore with CAS semantics
   ========================= */

type fakeStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*model.CardModel
}

func newFakeStore(cards ...*model.CardModel) *fakeStore {
	s := &fakeStore{cards: make(map[uuid.UUID]*model.CardModel)}
	for _, c := range cards {
		s.cards[c.CardID] = c
	}
	return s
}

func (s *fakeStore) get(id uuid.UUID) *model.CardModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id]
}

func (s *fakeStore) GetCard(ctx context.Context, id uuid.UUID) (*model.CardModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, errs.NotFound("card %s not found", id)
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) UpdateIfVersion(ctx context.Context, card *model.CardModel, expectedVersion int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.cards[card.CardID]
	if !ok {
		return false, errs.NotFound("card %s not found", card.CardID)
	}
	if stored.CardVersion != expectedVersion {
		return false, nil
	}
	stored.CardUsedSessions = card.CardUsedSessions
	stored.CardVersion = expectedVersion + 1
	card.CardVersion = stored.CardVersion
	return true, nil
}
