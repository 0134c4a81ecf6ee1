package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"currencies-app/internal/domain/currency"
)

func currencyModel(f currency.Fields) CurrencySchema {
	return CurrencySchema{
		NumCode:  f.NumCode,
		CharCode: f.CharCode,
		Name:     f.Name,
		Value:    f.Value,
		Nominal:  f.Nominal,
	}
}

func (m CurrencySchema) record() currency.Record {
	return currency.Record{
		ID: m.ID,
		Fields: currency.Fields{
			NumCode:  m.NumCode,
			CharCode: m.CharCode,
			Name:     m.Name,
			Value:    m.Value,
			Nominal:  m.Nominal,
		},
	}
}

// CreateCurrency inserts a new currency and returns its identifier.
// A duplicate char code is reported as AlreadyExistsError.
func (s *Store) CreateCurrency(ctx context.Context, f currency.Fields) (int64, error) {
	model := currencyModel(f)

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		s.log.Error("failed to create currency in db", zap.Error(err), zap.String("char_code", f.CharCode))
		return 0, fmt.Errorf("failed to create currency: %w",
			translateError(err, "currency", fmt.Sprintf("currency %s already exists", f.CharCode)))
	}

	s.log.Info("currency created in db", zap.Int64("id", model.ID), zap.String("char_code", model.CharCode))
	return model.ID, nil
}

// ListCurrencies returns every currency ordered by char code.
func (s *Store) ListCurrencies(ctx context.Context) ([]currency.Record, error) {
	var models []CurrencySchema
	if err := s.db.WithContext(ctx).Order("char_code").Find(&models).Error; err != nil {
		s.log.Error("failed to list currencies from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	records := make([]currency.Record, len(models))
	for i, m := range models {
		records[i] = m.record()
	}
	return records, nil
}

// GetCurrency returns the currency with the given id, or nil when absent.
func (s *Store) GetCurrency(ctx context.Context, id int64) (*currency.Record, error) {
	return s.findCurrency(ctx, "id = ?", id)
}

// GetCurrencyByCharCode returns the currency with the given char code, or nil when absent.
func (s *Store) GetCurrencyByCharCode(ctx context.Context, charCode string) (*currency.Record, error) {
	return s.findCurrency(ctx, "char_code = ?", charCode)
}

func (s *Store) findCurrency(ctx context.Context, query string, arg any) (*currency.Record, error) {
	var model CurrencySchema
	if err := s.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("currency not found", zap.Any("key", arg))
			return nil, nil
		}
		s.log.Error("failed to get currency from db", zap.Error(err), zap.Any("key", arg))
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}

	r := model.record()
	return &r, nil
}

// UpdateCurrency overwrites every attribute of the currency.
// It reports false when no row has the given id.
func (s *Store) UpdateCurrency(ctx context.Context, id int64, f currency.Fields) (bool, error) {
	var affected int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&CurrencySchema{}).Where("id = ?", id).Updates(map[string]any{
			"num_code":  f.NumCode,
			"char_code": f.CharCode,
			"name":      f.Name,
			"value":     f.Value,
			"nominal":   f.Nominal,
		})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.log.Error("failed to update currency in db", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to update currency: %w",
			translateError(err, "currency", fmt.Sprintf("currency %s already exists", f.CharCode)))
	}

	s.log.Info("currency updated in db", zap.Int64("id", id), zap.Bool("found", affected > 0))
	return affected > 0, nil
}

// UpdateCurrencyValue replaces only the rate of the currency.
// It reports false when no row has the given id.
func (s *Store) UpdateCurrencyValue(ctx context.Context, id int64, value float64) (bool, error) {
	var affected int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&CurrencySchema{}).Where("id = ?", id).Update("value", value)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.log.Error("failed to update currency value in db", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to update currency value: %w", err)
	}

	s.log.Debug("currency value updated in db", zap.Int64("id", id), zap.Float64("value", value))
	return affected > 0, nil
}

// DeleteCurrency removes the currency and, through the cascade, its subscriptions.
// It reports false when no row has the given id.
func (s *Store) DeleteCurrency(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&CurrencySchema{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.log.Error("failed to delete currency in db", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to delete currency: %w", err)
	}

	s.log.Info("currency deleted in db", zap.Int64("id", id), zap.Bool("found", affected > 0))
	return affected > 0, nil
}
