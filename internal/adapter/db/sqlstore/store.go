// Package sqlstore is the single storage component of the application. It owns
// the gorm connection, creates the user/currency/user_currency schema and
// exposes per-entity CRUD. Every mutation runs in its own transaction.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "currencies-app/pkg/errors"
)

// Store implements the currency, user and subscription repositories on top of GORM.
type Store struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// New creates a new Store.
func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// UserSchema represents the database schema for the user table.
type UserSchema struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "user"
}

// CurrencySchema represents the database schema for the currency table.
type CurrencySchema struct {
	ID       int64   `gorm:"primaryKey;autoIncrement"`
	NumCode  string  `gorm:"not null"`
	CharCode string  `gorm:"not null;unique"`
	Name     string  `gorm:"not null"`
	Value    float64
	Nominal  int
}

// TableName specifies the table name for the CurrencySchema model.
func (CurrencySchema) TableName() string {
	return "currency"
}

// UserCurrencySchema represents the user_currency link table.
// Both sides cascade on delete and the pair is unique.
type UserCurrencySchema struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	UserID     int64          `gorm:"not null;uniqueIndex:idx_user_currency"`
	CurrencyID int64          `gorm:"not null;uniqueIndex:idx_user_currency"`
	User       UserSchema     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Currency   CurrencySchema `gorm:"foreignKey:CurrencyID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the UserCurrencySchema model.
func (UserCurrencySchema) TableName() string {
	return "user_currency"
}

// Migrate creates the schema. It is safe to call on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&UserSchema{}, &CurrencySchema{}, &UserCurrencySchema{}); err != nil {
		s.log.Error("failed to migrate schema", zap.Error(err))
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	s.log.Debug("schema ready")
	return nil
}

// Ping checks that the underlying connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// withTx runs fn in a transaction: commit when fn returns nil, rollback otherwise.
func (s *Store) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// translateError maps driver constraint failures onto the application error taxonomy.
func translateError(err error, resource, message string) error {
	if err == nil {
		return nil
	}

	lower := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(lower, "unique constraint"):
		return apperrors.NewAlreadyExistsError(resource, message)
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(lower, "foreign key constraint"):
		return apperrors.NewNotFoundError(resource, fmt.Sprintf("referenced %s does not exist", resource))
	}
	return err
}
