package sqlstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"currencies-app/internal/domain/currency"
	"currencies-app/internal/domain/subscription"
)

// subscriptionRow is the result of joining user_currency with currency.
type subscriptionRow struct {
	SubscriptionID int64
	ID             int64
	NumCode        string
	CharCode       string
	Name           string
	Value          float64
	Nominal        int
}

// AddSubscription links a user to a currency and returns the link id.
// A repeated pair is reported as AlreadyExistsError, an unknown side as NotFoundError.
func (s *Store) AddSubscription(ctx context.Context, userID, currencyID int64) (int64, error) {
	model := UserCurrencySchema{UserID: userID, CurrencyID: currencyID}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&model).Error
	})
	if err != nil {
		s.log.Error("failed to create subscription in db", zap.Error(err),
			zap.Int64("user_id", userID), zap.Int64("currency_id", currencyID))
		return 0, fmt.Errorf("failed to add subscription: %w",
			translateError(err, "subscription", "user is already subscribed to this currency"))
	}

	s.log.Info("subscription created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// ListSubscriptions returns the currencies a user is subscribed to, with the link ids.
func (s *Store) ListSubscriptions(ctx context.Context, userID int64) ([]subscription.Record, error) {
	var rows []subscriptionRow
	err := s.db.WithContext(ctx).
		Table("currency").
		Select("user_currency.id AS subscription_id, currency.id, currency.num_code, currency.char_code, currency.name, currency.value, currency.nominal").
		Joins("JOIN user_currency ON user_currency.currency_id = currency.id").
		Where("user_currency.user_id = ?", userID).
		Order("currency.char_code").
		Scan(&rows).Error
	if err != nil {
		s.log.Error("failed to list subscriptions from db", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	records := make([]subscription.Record, len(rows))
	for i, r := range rows {
		records[i] = subscription.Record{
			ID: r.SubscriptionID,
			Currency: currency.Record{
				ID: r.ID,
				Fields: currency.Fields{
					NumCode:  r.NumCode,
					CharCode: r.CharCode,
					Name:     r.Name,
					Value:    r.Value,
					Nominal:  r.Nominal,
				},
			},
		}
	}
	return records, nil
}

// RemoveSubscription deletes a link by id. It reports false when absent.
func (s *Store) RemoveSubscription(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&UserCurrencySchema{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.log.Error("failed to delete subscription in db", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}

	s.log.Info("subscription deleted in db", zap.Int64("id", id), zap.Bool("found", affected > 0))
	return affected > 0, nil
}
