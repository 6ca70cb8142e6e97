// Pure entitlement rules plus the consumption ledger. Transitions are plain
// functions over CardModel values so they stay unit-testable without a
// database; the Ledger drives session consumption through a compare-and-swap
// store port so two readers of used=N can never both commit N+1.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gymku_backend/internals/features/membership/cards/model"
	"gymku_backend/internals/helpers/errs"
)

/* =========================
   Transition table
   ========================= */

var cardTransitions = map[model.CardStatus][]model.CardStatus{
	model.CardInactive: {model.CardActive, model.CardExpired, model.CardRefunded},
	model.CardActive:   {model.CardFrozen, model.CardExpired, model.CardRefunded},
	model.CardFrozen:   {model.CardActive, model.CardExpired, model.CardRefunded},
	model.CardExpired:  {},
	model.CardRefunded: {},
}

func CanTransitionCard(from, to model.CardStatus) bool {
	for _, t := range cardTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func cardTransitionErr(from, to model.CardStatus) error {
	return errs.InvalidTransition("card", string(from), string(to))
}

/* =========================
   Pure transition functions
   ========================= */

// ApplyActivate moves an inactive card to active. A card scoped under a
// parent membership card activates only while the parent itself is active.
func ApplyActivate(card, parent *model.CardModel, now time.Time) error {
	if !CanTransitionCard(card.CardStatus, model.CardActive) || card.CardStatus != model.CardInactive {
		return cardTransitionErr(card.CardStatus, model.CardActive)
	}
	if card.CardParentID != nil {
		if parent == nil {
			return errs.NotFound("parent card %s not found", *card.CardParentID)
		}
		if !parent.IsActiveAt(now) {
			return errs.InvalidTransition("card", string(card.CardStatus), string(model.CardActive))
		}
	}
	card.CardStatus = model.CardActive
	card.CardActivationDate = &now
	if card.CardExpiryDate == nil && card.CardValidityDays != nil {
		exp := now.AddDate(0, 0, *card.CardValidityDays)
		card.CardExpiryDate = &exp
	}
	return nil
}

func ApplyFreeze(card *model.CardModel) error {
	if card.CardStatus == model.CardFrozen {
		return errs.InvalidTransition("card", string(model.CardFrozen), string(model.CardFrozen))
	}
	if !CanTransitionCard(card.CardStatus, model.CardFrozen) {
		return cardTransitionErr(card.CardStatus, model.CardFrozen)
	}
	card.CardStatus = model.CardFrozen
	return nil
}

func ApplyUnfreeze(card *model.CardModel) error {
	if card.CardStatus != model.CardFrozen {
		return cardTransitionErr(card.CardStatus, model.CardActive)
	}
	card.CardStatus = model.CardActive
	return nil
}

func ApplyExpire(card *model.CardModel) error {
	if card.CardStatus.IsTerminal() {
		return cardTransitionErr(card.CardStatus, model.CardExpired)
	}
	card.CardStatus = model.CardExpired
	return nil
}

func ApplyRefund(card *model.CardModel) error {
	if card.CardStatus.IsTerminal() {
		return cardTransitionErr(card.CardStatus, model.CardRefunded)
	}
	card.CardStatus = model.CardRefunded
	return nil
}

// CheckConsumable is the gate for session consumption: active, unexpired,
// and not exhausted. Exhaustion leaves the status untouched.
func CheckConsumable(card *model.CardModel, now time.Time) error {
	if !card.IsActiveAt(now) {
		return errs.InsufficientEntitlement("card %s is not active", card.CardNumber)
	}
	if card.IsExhausted() {
		return errs.InsufficientEntitlement("card %s has no sessions left", card.CardNumber)
	}
	return nil
}

// CheckCardUsableBy verifies ownership before consumption: the card must
// belong to the booking's member, and a personal-training card only serves
// its bound coach. A foreign card reads as absent, never as forbidden.
func CheckCardUsableBy(card *model.CardModel, memberID uuid.UUID, coachID *uuid.UUID) error {
	if card.CardMemberID != memberID {
		return errs.NotFound("card %s not found", card.CardID)
	}
	if card.CardType == model.CardTypePersonalTraining {
		if card.CardCoachID == nil || coachID == nil || *card.CardCoachID != *coachID {
			return errs.Validation("personal training card is bound to a different coach")
		}
	}
	return nil
}

/* =========================
   Consumption ledger
   ========================= */

// CardStore is the persistence port for consumption. UpdateIfVersion must
// persist the card's mutated counters only when the stored version still
// equals expectedVersion, bumping the version on success.
type CardStore interface {
	GetCard(ctx context.Context, id uuid.UUID) (*model.CardModel, error)
	UpdateIfVersion(ctx context.Context, card *model.CardModel, expectedVersion int64) (bool, error)
}

const maxCASAttempts = 4

type Ledger struct {
	Store CardStore
	Now   func() time.Time
}

func NewLedger(store CardStore) *Ledger {
	return &Ledger{Store: store, Now: time.Now}
}

// Consume burns one session. A CAS miss means a concurrent consumer won the
// race; re-read and retry while entitlement remains.
func (l *Ledger) Consume(ctx context.Context, cardID uuid.UUID) (*model.CardModel, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		card, err := l.Store.GetCard(ctx, cardID)
		if err != nil {
			return nil, err
		}
		if err := CheckConsumable(card, l.Now()); err != nil {
			return nil, err
		}

		expected := card.CardVersion
		card.CardUsedSessions++
		ok, err := l.Store.UpdateIfVersion(ctx, card, expected)
		if err != nil {
			return nil, err
		}
		if ok {
			return card, nil
		}
	}
	return nil, errs.Conflict("card %s is under contention, try again", cardID)
}

// Release returns one previously consumed session (booking cancellation
// path). Never decrements below zero.
func (l *Ledger) Release(ctx context.Context, cardID uuid.UUID) (*model.CardModel, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		card, err := l.Store.GetCard(ctx, cardID)
		if err != nil {
			return nil, err
		}
		if card.CardUsedSessions == 0 {
			return card, nil
		}

		expected := card.CardVersion
		card.CardUsedSessions--
		ok, err := l.Store.UpdateIfVersion(ctx, card, expected)
		if err != nil {
			return nil, err
		}
		if ok {
			return card, nil
		}
	}
	return nil, errs.Conflict("card %s is under contention, try again", cardID)
}
