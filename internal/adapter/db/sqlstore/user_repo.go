package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"currencies-app/internal/domain/user"
)

// CreateUser inserts a new user and returns its identifier.
func (s *Store) CreateUser(ctx context.Context, name string) (int64, error) {
	model := UserSchema{Name: name}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		s.log.Error("failed to create user in db", zap.Error(err), zap.String("name", name))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]user.Record, error) {
	var models []UserSchema
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		s.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	records := make([]user.Record, len(models))
	for i, m := range models {
		records[i] = user.Record{ID: m.ID, Name: m.Name}
	}
	return records, nil
}

// GetUser retrieves a user by id, or nil when absent.
func (s *Store) GetUser(ctx context.Context, id int64) (*user.Record, error) {
	var model UserSchema
	if err := s.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		s.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user.Record{ID: model.ID, Name: model.Name}, nil
}

// UpdateUserName renames a user. It reports false when no row has the given id.
func (s *Store) UpdateUserName(ctx context.Context, id int64, name string) (bool, error) {
	var affected int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&UserSchema{}).Where("id = ?", id).Update("name", name)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info("user updated in db", zap.Int64("id", id), zap.Bool("found", affected > 0))
	return affected > 0, nil
}
