package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"currencies-app/internal/domain/currency"
	"currencies-app/internal/domain/subscription"
	domain "currencies-app/internal/domain/user"
	apperrors "currencies-app/pkg/errors"
)

// Repository defines the storage operations the user service relies on.
// It covers users, their subscriptions and the currency lookup needed to link them.
type Repository interface {
	CreateUser(ctx context.Context, name string) (int64, error)
	ListUsers(ctx context.Context) ([]domain.Record, error)
	GetUser(ctx context.Context, id int64) (*domain.Record, error)
	GetCurrency(ctx context.Context, id int64) (*currency.Record, error)
	AddSubscription(ctx context.Context, userID, currencyID int64) (int64, error)
	ListSubscriptions(ctx context.Context, userID int64) ([]subscription.Record, error)
	RemoveSubscription(ctx context.Context, id int64) (bool, error)
}

// Service implements user and subscription management.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// New creates a user Service.
func New(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListUsers returns every user ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	records, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(records))
	for _, r := range records {
		u, err := domain.FromRecord(r)
		if err != nil {
			s.log.Error("stored user is invalid", zap.Int64("id", r.ID), zap.Error(err))
			return nil, apperrors.NewInternalError(fmt.Sprintf("stored user %d is invalid", r.ID), err)
		}
		users = append(users, u)
	}
	return users, nil
}

// GetUser returns the user with the given id or a NotFoundError.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	r, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		s.log.Debug("user not found", zap.Int64("id", id))
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	u, err := domain.FromRecord(*r)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("stored user %d is invalid", r.ID), err)
	}
	return u, nil
}

// CreateUser validates the name and stores a new user.
func (s *Service) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	s.log.Info("creating user", zap.String("name", name))

	if _, err := domain.New(0, name); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	id, err := s.repo.CreateUser(ctx, name)
	if err != nil {
		return nil, err
	}
	return domain.New(id, name)
}

// GetUserSubscriptions returns the currencies the user follows, ordered by char code.
func (s *Service) GetUserSubscriptions(ctx context.Context, userID int64) ([]subscription.Entry, error) {
	records, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]subscription.Entry, 0, len(records))
	for _, r := range records {
		c, err := currency.FromRecord(r.Currency)
		if err != nil {
			s.log.Error("stored currency is invalid", zap.Int64("id", r.Currency.ID), zap.Error(err))
			return nil, apperrors.NewInternalError(fmt.Sprintf("stored currency %d is invalid", r.Currency.ID), err)
		}
		entries = append(entries, subscription.Entry{ID: r.ID, Currency: c})
	}
	return entries, nil
}

// Subscribe links a user to a currency and returns the subscription id.
// Unknown users or currencies yield NotFoundError, a repeated pair AlreadyExistsError.
func (s *Service) Subscribe(ctx context.Context, userID, currencyID int64) (int64, error) {
	s.log.Info("subscribing user", zap.Int64("user_id", userID), zap.Int64("currency_id", currencyID))

	if _, err := subscription.New(userID, currencyID); err != nil {
		return 0, err
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return 0, err
	}
	c, err := s.repo.GetCurrency(ctx, currencyID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, apperrors.NewNotFoundError("currency", "currency not found")
	}

	return s.repo.AddSubscription(ctx, userID, currencyID)
}

// Unsubscribe removes a subscription by id. It reports false when absent.
func (s *Service) Unsubscribe(ctx context.Context, subscriptionID int64) (bool, error) {
	s.log.Info("removing subscription", zap.Int64("id", subscriptionID))
	return s.repo.RemoveSubscription(ctx, subscriptionID)
}
