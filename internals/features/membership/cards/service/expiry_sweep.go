package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"gymku_backend/internals/features/membership/cards/model"
	"gymku_backend/internals/helpers/metrics"
)

// SweepExpired expires every non-terminal card whose expiry date has passed.
// Time-driven, so it bypasses the scope predicate: the sweep is a platform
// collaborator, not a tenant request.
func (s *CardService) SweepExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&model.CardModel{}).
		Where("card_status IN ?", []model.CardStatus{model.CardInactive, model.CardActive, model.CardFrozen}).
		Where("card_expiry_date IS NOT NULL AND card_expiry_date < ?", s.Now()).
		Updates(map[string]interface{}{
			"card_status":  model.CardExpired,
			"card_version": gorm.Expr("card_version + 1"),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		metrics.CardsExpired.Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// StartExpirySweep registers the sweep on the shared cron runner.
func StartExpirySweep(c *cron.Cron, spec string, s *CardService) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := s.SweepExpired(ctx)
		if err != nil {
			log.Printf("card expiry sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("card expiry sweep: expired %d cards", n)
		}
	})
	return err
}
