package currency

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "currencies-app/internal/domain/currency"
	apperrors "currencies-app/pkg/errors"
)

// Repository defines the storage operations the currency service relies on.
type Repository interface {
	CreateCurrency(ctx context.Context, f domain.Fields) (int64, error)             // Insert a row, returns its id
	ListCurrencies(ctx context.Context) ([]domain.Record, error)                    // All rows ordered by char code
	GetCurrency(ctx context.Context, id int64) (*domain.Record, error)              // nil when absent
	GetCurrencyByCharCode(ctx context.Context, code string) (*domain.Record, error) // nil when absent
	UpdateCurrency(ctx context.Context, id int64, f domain.Fields) (bool, error)    // false when absent
	UpdateCurrencyValue(ctx context.Context, id int64, value float64) (bool, error) // false when absent
	DeleteCurrency(ctx context.Context, id int64) (bool, error)                     // false when absent
}

// RateSource looks up current rates for a set of char codes.
// Codes the source does not know are left out of the result.
type RateSource interface {
	Rates(ctx context.Context, codes []string) (map[string]float64, error)
}

// Service turns stored rows into validated currencies and back.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// New creates a currency Service.
func New(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) fromRecord(r domain.Record) (*domain.Currency, error) {
	c, err := domain.FromRecord(r)
	if err != nil {
		s.log.Error("stored currency is invalid", zap.Int64("id", r.ID), zap.Error(err))
		return nil, apperrors.NewInternalError(fmt.Sprintf("stored currency %d is invalid", r.ID), err)
	}
	return c, nil
}

// ListCurrencies returns every stored currency ordered by char code.
func (s *Service) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	records, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	currencies := make([]*domain.Currency, 0, len(records))
	for _, r := range records {
		c, err := s.fromRecord(r)
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, c)
	}
	return currencies, nil
}

// GetCurrency returns the currency with the given id, or nil when it does not exist.
func (s *Service) GetCurrency(ctx context.Context, id int64) (*domain.Currency, error) {
	r, err := s.repo.GetCurrency(ctx, id)
	if err != nil || r == nil {
		return nil, err
	}
	return s.fromRecord(*r)
}

// GetCurrencyByCharCode looks a currency up by its letter code, case-insensitively.
func (s *Service) GetCurrencyByCharCode(ctx context.Context, code string) (*domain.Currency, error) {
	r, err := s.repo.GetCurrencyByCharCode(ctx, strings.ToUpper(code))
	if err != nil || r == nil {
		return nil, err
	}
	return s.fromRecord(*r)
}

// CreateCurrency validates f, stores it and returns the currency with its new id.
func (s *Service) CreateCurrency(ctx context.Context, f domain.Fields) (*domain.Currency, error) {
	s.log.Info("creating currency", zap.String("char_code", f.CharCode))

	c, err := domain.New(f)
	if err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	id, err := s.repo.CreateCurrency(ctx, c.Fields())
	if err != nil {
		return nil, err
	}
	c.SetID(id)
	return c, nil
}

// UpdateCurrency validates f and overwrites the stored currency.
// It reports false when the id does not exist.
func (s *Service) UpdateCurrency(ctx context.Context, id int64, f domain.Fields) (bool, error) {
	s.log.Info("updating currency", zap.Int64("id", id), zap.String("char_code", f.CharCode))

	c, err := domain.Restore(id, f)
	if err != nil {
		s.log.Warn("validate failed", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return s.repo.UpdateCurrency(ctx, id, c.Fields())
}

// UpdateCurrencyValue replaces the rate of one currency.
// It reports false when the id does not exist.
func (s *Service) UpdateCurrencyValue(ctx context.Context, id int64, value float64) (bool, error) {
	c, err := s.GetCurrency(ctx, id)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}

	if err := c.SetValue(value); err != nil {
		s.log.Warn("rejected currency value", zap.Int64("id", id), zap.Float64("value", value), zap.Error(err))
		return false, err
	}
	return s.repo.UpdateCurrencyValue(ctx, id, c.Value())
}

// DeleteCurrency removes a currency together with its subscriptions.
// It reports false when the id does not exist.
func (s *Service) DeleteCurrency(ctx context.Context, id int64) (bool, error) {
	s.log.Info("deleting currency", zap.Int64("id", id))
	return s.repo.DeleteCurrency(ctx, id)
}

// RefreshRates asks source for every stored char code and writes the returned
// values back. It returns how many currencies changed. An error from the source
// is returned untouched and leaves storage as it was.
func (s *Service) RefreshRates(ctx context.Context, source RateSource) (int, error) {
	currencies, err := s.ListCurrencies(ctx)
	if err != nil {
		return 0, err
	}
	if len(currencies) == 0 {
		return 0, nil
	}

	codes := make([]string, len(currencies))
	for i, c := range currencies {
		codes[i] = c.CharCode()
	}

	rates, err := source.Rates(ctx, codes)
	if err != nil {
		s.log.Warn("rate source failed", zap.Strings("codes", codes), zap.Error(err))
		return 0, err
	}

	updated := 0
	for _, c := range currencies {
		value, ok := rates[c.CharCode()]
		if !ok || value == c.Value() {
			continue
		}
		if err := c.SetValue(value); err != nil {
			s.log.Warn("skipping invalid rate", zap.String("char_code", c.CharCode()), zap.Float64("value", value), zap.Error(err))
			continue
		}
		if _, err := s.repo.UpdateCurrencyValue(ctx, c.ID(), c.Value()); err != nil {
			return updated, err
		}
		updated++
	}

	s.log.Info("rates refreshed", zap.Int("requested", len(codes)), zap.Int("received", len(rates)), zap.Int("updated", updated))
	return updated, nil
}
