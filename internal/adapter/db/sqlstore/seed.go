package sqlstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedUsers = []string{"Leisan", "Rashit"}

var seedCurrencies = []CurrencySchema{
	{NumCode: "840", CharCode: "USD", Name: "Доллар США", Value: 90.5, Nominal: 1},
	{NumCode: "978", CharCode: "EUR", Name: "Евро", Value: 98.2, Nominal: 1},
	{NumCode: "826", CharCode: "GBP", Name: "Фунт стерлингов", Value: 115.0, Nominal: 1},
	{NumCode: "392", CharCode: "JPY", Name: "Японская иена", Value: 0.61, Nominal: 100},
}

// user name -> char codes
var seedSubscriptions = []struct {
	user     string
	charCode string
}{
	{"Leisan", "USD"},
	{"Leisan", "EUR"},
	{"Rashit", "GBP"},
}

// Seed fills an empty database with demo users, currencies and subscriptions.
// It does nothing when the user table already has rows and reports whether it seeded.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	seeded := false

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&UserSchema{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if count > 0 {
			return nil
		}

		users := make([]UserSchema, len(seedUsers))
		for i, name := range seedUsers {
			users[i] = UserSchema{Name: name}
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("insert users: %w", err)
		}

		currencies := make([]CurrencySchema, len(seedCurrencies))
		copy(currencies, seedCurrencies)
		if err := tx.Create(&currencies).Error; err != nil {
			return fmt.Errorf("insert currencies: %w", err)
		}

		userIDs := make(map[string]int64, len(users))
		for _, u := range users {
			userIDs[u.Name] = u.ID
		}
		currencyIDs := make(map[string]int64, len(currencies))
		for _, c := range currencies {
			currencyIDs[c.CharCode] = c.ID
		}

		links := make([]UserCurrencySchema, len(seedSubscriptions))
		for i, sub := range seedSubscriptions {
			links[i] = UserCurrencySchema{UserID: userIDs[sub.user], CurrencyID: currencyIDs[sub.charCode]}
		}
		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return fmt.Errorf("insert subscriptions: %w", err)
		}

		seeded = true
		return nil
	})
	if err != nil {
		s.log.Error("failed to seed database", zap.Error(err))
		return false, fmt.Errorf("failed to seed database: %w", err)
	}

	if seeded {
		s.log.Info("database seeded",
			zap.Int("users", len(seedUsers)),
			zap.Int("currencies", len(seedCurrencies)),
			zap.Int("subscriptions", len(seedSubscriptions)),
		)
	}
	return seeded, nil
}
