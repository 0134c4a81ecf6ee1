package subscription

import (
	"currencies-app/internal/domain/currency"
	"currencies-app/internal/domain/validation"
)

// Subscription links a user to a currency they track.
type Subscription struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id" validate:"gt=0"`
	CurrencyID int64 `json:"currency_id" validate:"gt=0"`
}

// New validates both sides of the link.
func New(userID, currencyID int64) (*Subscription, error) {
	s := &Subscription{UserID: userID, CurrencyID: currencyID}
	if err := validation.Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Record is a stored subscription row joined with its currency row.
type Record struct {
	ID       int64
	Currency currency.Record
}

// Entry is a subscription joined with the currency it points at.
type Entry struct {
	ID       int64
	Currency *currency.Currency
}
