package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gymku_backend/internals/features/membership/cards/dto"
	"gymku_backend/internals/features/membership/cards/model"
	helper "gymku_backend/internals/helpers"
	helperAuth "gymku_backend/internals/helpers/auth"
	"gymku_backend/internals/helpers/errs"
	"gymku_backend/internals/helpers/metrics"
)

type CardService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCardService(db *gorm.DB) *CardService {
	return &CardService{DB: db, Now: time.Now}
}

/* =========================
   gorm-backed CardStore
   ========================= */

type gormCardStore struct {
	db *gorm.DB
}

func (s gormCardStore) GetCard(ctx context.Context, id uuid.UUID) (*model.CardModel, error) {
	var card model.CardModel
	if err := s.db.WithContext(ctx).First(&card, "card_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("card %s not found", id)
		}
		return nil, err
	}
	return &card, nil
}

// UpdateIfVersion is the optimistic write: the version predicate makes the
// counter update lost-update-proof without holding row locks across reads.
func (s gormCardStore) UpdateIfVersion(ctx context.Context, card *model.CardModel, expectedVersion int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.CardModel{}).
		Where("card_id = ? AND card_version = ?", card.CardID, expectedVersion).
		Updates(map[string]interface{}{
			"card_used_sessions": card.CardUsedSessions,
			"card_version":       gorm.Expr("card_version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	card.CardVersion = expectedVersion + 1
	return true, nil
}

// LedgerOn builds a consumption ledger bound to the given handle, so booking
// creation can consume inside its own transaction.
func (s *CardService) LedgerOn(db *gorm.DB) *Ledger {
	return &Ledger{Store: gormCardStore{db: db}, Now: s.Now}
}

// ConsumeFor is the consumption entry point for booking paths: it resolves
// the card under the caller's tenant scope, verifies the member (and PT
// coach) binding, then burns one session through the ledger on the given
// handle. A card outside the scope or owned by another member is NotFound.
func (s *CardService) ConsumeFor(ctx context.Context, tx *gorm.DB, sc helperAuth.Scope, cardID, memberID uuid.UUID, coachID *uuid.UUID) (*model.CardModel, error) {
	var card model.CardModel
	q := tx.WithContext(ctx).Where("card_id = ?", cardID)
	if err := sc.Apply(q, "card_brand_id", "card_store_id").First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("card %s not found", cardID)
		}
		return nil, err
	}
	if err := CheckCardUsableBy(&card, memberID, coachID); err != nil {
		return nil, err
	}
	return s.LedgerOn(tx).Consume(ctx, cardID)
}

/* =========================
   Purchase / lifecycle
   ========================= */

func (s *CardService) Create(ctx context.Context, sc helperAuth.Scope, req *dto.CreateCardRequest) (*model.CardModel, error) {
	if !sc.AllowsStore(req.BrandID, req.StoreID) {
		return nil, errs.NotFound("store %s not found", req.StoreID)
	}
	if req.TotalSessions <= 0 {
		return nil, errs.Validation("total sessions must be positive")
	}

	cardType := model.CardType(req.Type)
	switch cardType {
	case model.CardTypeMembership:
	case model.CardTypePersonalTraining:
		if req.CoachID == nil {
			return nil, errs.Validation("personal training card requires a coach")
		}
	case model.CardTypeGroupClass:
		if req.MembershipCardID == nil {
			return nil, errs.Validation("group class card requires a parent membership card")
		}
	default:
		return nil, errs.Validation("unknown card type %q", req.Type)
	}

	card := &model.CardModel{
		CardBrandID:       req.BrandID,
		CardStoreID:       req.StoreID,
		CardMemberID:      req.MemberID,
		CardParentID:      req.MembershipCardID,
		CardCoachID:       req.CoachID,
		CardType:          cardType,
		CardNumber:        newCardNumber(cardType, s.Now()),
		CardTotalSessions: req.TotalSessions,
		CardStatus:        model.CardInactive,
		CardIssueDate:     s.Now(),
		CardExpiryDate:    req.ExpiryDate,
		CardValidityDays:  req.ValidityDays,
		CardBenefits:      req.Benefits,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if card.CardParentID != nil {
			var parent model.CardModel
			if err := tx.First(&parent, "card_id = ?", *card.CardParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.NotFound("parent card %s not found", *card.CardParentID)
				}
				return err
			}
			if parent.CardType != model.CardTypeMembership {
				return errs.Validation("parent card must be a membership card")
			}
			if parent.CardMemberID != card.CardMemberID {
				return errs.Validation("parent card belongs to a different member")
			}
		}
		return errs.FromPG(tx.Create(card).Error)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// Activate: inactive only; any parent membership card must itself be active.
func (s *CardService) Activate(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	var card *model.CardModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		card, err = s.lockCard(ctx, tx, sc, id)
		if err != nil {
			return err
		}

		var parent *model.CardModel
		if card.CardParentID != nil {
			var p model.CardModel
			if err := tx.First(&p, "card_id = ?", *card.CardParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.NotFound("parent card %s not found", *card.CardParentID)
				}
				return err
			}
			parent = &p
		}

		if err := ApplyActivate(card, parent, s.Now()); err != nil {
			return err
		}
		// Status writes bump the version so an in-flight consume CAS-misses
		// and re-reads the new status.
		return tx.Model(card).Updates(map[string]interface{}{
			"card_status":          card.CardStatus,
			"card_activation_date": card.CardActivationDate,
			"card_expiry_date":     card.CardExpiryDate,
			"card_version":         gorm.Expr("card_version + 1"),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) Freeze(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	return s.applyStatus(ctx, sc, id, ApplyFreeze)
}

func (s *CardService) Unfreeze(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	return s.applyStatus(ctx, sc, id, ApplyUnfreeze)
}

func (s *CardService) Refund(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	return s.applyStatus(ctx, sc, id, ApplyRefund)
}

func (s *CardService) applyStatus(ctx context.Context, sc helperAuth.Scope, id uuid.UUID, apply func(*model.CardModel) error) (*model.CardModel, error) {
	var card *model.CardModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		card, err = s.lockCard(ctx, tx, sc, id)
		if err != nil {
			return err
		}
		if err := apply(card); err != nil {
			return err
		}
		return tx.Model(card).Updates(map[string]interface{}{
			"card_status":  card.CardStatus,
			"card_version": gorm.Expr("card_version + 1"),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// Consume burns one session from the card through the optimistic ledger.
func (s *CardService) Consume(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	if _, err := s.Get(ctx, sc, id); err != nil {
		return nil, err
	}
	card, err := s.LedgerOn(s.DB).Consume(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.SessionsConsumed.Inc()
	return card, nil
}

// Remove soft-deletes a card. A card with consumed sessions can never be
// removed directly; it must go through the refund workflow.
func (s *CardService) Remove(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.lockCard(ctx, tx, sc, id)
		if err != nil {
			return err
		}
		if card.CardUsedSessions > 0 {
			return errs.Conflict("card %s has used sessions, refund it instead", card.CardNumber)
		}
		return tx.Delete(card).Error
	})
}

/* =========================
   Queries
   ========================= */

func (s *CardService) Get(ctx context.Context, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	var card model.CardModel
	q := s.DB.WithContext(ctx).Where("card_id = ?", id)
	if err := sc.Apply(q, "card_brand_id", "card_store_id").First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("card %s not found", id)
		}
		return nil, err
	}
	return &card, nil
}

func (s *CardService) List(ctx context.Context, sc helperAuth.Scope, f *dto.ListCardsFilter, p helper.Params) ([]model.CardModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.CardModel{})
	q = sc.Apply(q, "card_brand_id", "card_store_id")

	if f.MemberID != nil {
		q = q.Where("card_member_id = ?", *f.MemberID)
	}
	if f.Type != "" {
		q = q.Where("card_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("card_status = ?", f.Status)
	}
	if f.Exhausted != nil {
		if *f.Exhausted {
			q = q.Where("card_used_sessions >= card_total_sessions")
		} else {
			q = q.Where("card_used_sessions < card_total_sessions")
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := p.SafeOrderClause(map[string]string{
		"issued":  "card_issue_date",
		"created": "card_created_at",
		"expiry":  "card_expiry_date",
	}, "created")
	if err != nil {
		return nil, 0, err
	}

	var items []model.CardModel
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

/* =========================
   internals
   ========================= */

func (s *CardService) lockCard(ctx context.Context, tx *gorm.DB, sc helperAuth.Scope, id uuid.UUID) (*model.CardModel, error) {
	var card model.CardModel
	q := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("card_id = ?", id)
	if err := sc.Apply(q, "card_brand_id", "card_store_id").First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("card %s not found", id)
		}
		return nil, err
	}
	return &card, nil
}

func newCardNumber(t model.CardType, now time.Time) string {
	prefix := "MC"
	switch t {
	case model.CardTypePersonalTraining:
		prefix = "PT"
	case model.CardTypeGroupClass:
		prefix = "GC"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + now.Format("20060102") + suffix
}
