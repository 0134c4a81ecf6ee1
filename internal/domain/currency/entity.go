package currency

import (
	"encoding/json"
	"fmt"
	"strings"

	"currencies-app/internal/domain/validation"
)

// Fields holds the persisted attributes of a currency without its identifier.
type Fields struct {
	NumCode  string  `json:"num_code" validate:"len=3,number"` // ISO 4217 numeric code, e.g. "840"
	CharCode string  `json:"char_code" validate:"len=3,alpha"` // ISO 4217 letter code, stored uppercased
	Name     string  `json:"name" validate:"min=2"`            // Display name
	Value    float64 `json:"value" validate:"finite,gte=0"`    // Rate for Nominal units
	Nominal  int     `json:"nominal" validate:"gt=0"`          // Units the rate applies to
}

// Currency is a validated currency value object.
// Fields are only reachable through getters and validating setters, so a
// Currency obtained from New or Restore always satisfies its invariants.
type Currency struct {
	id     int64
	fields Fields
}

// New validates f and builds a Currency without an identifier.
// The char code is uppercased before validation.
func New(f Fields) (*Currency, error) {
	return Restore(0, f)
}

// FromRecord validates a stored row and builds a Currency from it.
func FromRecord(r Record) (*Currency, error) {
	return Restore(r.ID, r.Fields)
}

// Restore builds a Currency with a known identifier, validating every field.
func Restore(id int64, f Fields) (*Currency, error) {
	f.CharCode = strings.ToUpper(f.CharCode)
	if err := validation.Struct(f); err != nil {
		return nil, err
	}
	return &Currency{id: id, fields: f}, nil
}

// ID returns the storage identifier, zero when not persisted yet.
func (c *Currency) ID() int64 { return c.id }

// NumCode returns the three-digit numeric code.
func (c *Currency) NumCode() string { return c.fields.NumCode }

// CharCode returns the uppercased three-letter code.
func (c *Currency) CharCode() string { return c.fields.CharCode }

// Name returns the display name.
func (c *Currency) Name() string { return c.fields.Name }

// Value returns the exchange rate for Nominal units.
func (c *Currency) Value() float64 { return c.fields.Value }

// Nominal returns the unit multiplier of the rate.
func (c *Currency) Nominal() int { return c.fields.Nominal }

// Fields returns a copy of the persisted attributes.
func (c *Currency) Fields() Fields { return c.fields }

// SetID assigns the identifier after the row has been stored.
func (c *Currency) SetID(id int64) { c.id = id }

// SetNumCode replaces the numeric code.
func (c *Currency) SetNumCode(v string) error {
	if err := validation.Field("num_code", v, "len=3,number"); err != nil {
		return err
	}
	c.fields.NumCode = v
	return nil
}

// SetCharCode replaces the letter code, uppercasing it.
func (c *Currency) SetCharCode(v string) error {
	v = strings.ToUpper(v)
	if err := validation.Field("char_code", v, "len=3,alpha"); err != nil {
		return err
	}
	c.fields.CharCode = v
	return nil
}

// SetName replaces the display name.
func (c *Currency) SetName(v string) error {
	if err := validation.Field("name", v, "min=2"); err != nil {
		return err
	}
	c.fields.Name = v
	return nil
}

// SetValue replaces the rate.
func (c *Currency) SetValue(v float64) error {
	if err := validation.Field("value", v, "finite,gte=0"); err != nil {
		return err
	}
	c.fields.Value = v
	return nil
}

// SetNominal replaces the unit multiplier.
func (c *Currency) SetNominal(v int) error {
	if err := validation.Field("nominal", v, "gt=0"); err != nil {
		return err
	}
	c.fields.Nominal = v
	return nil
}

func (c *Currency) String() string {
	return fmt.Sprintf("%s (%s): %g per %d", c.fields.CharCode, c.fields.Name, c.fields.Value, c.fields.Nominal)
}

// Record is an unvalidated stored row: identifier plus attributes.
type Record struct {
	ID int64 `json:"id"`
	Fields
}

// MarshalJSON encodes the currency together with its identifier.
func (c *Currency) MarshalJSON() ([]byte, error) {
	return json.Marshal(Record{ID: c.id, Fields: c.fields})
}

// UnmarshalJSON decodes and validates a currency.
func (c *Currency) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := FromRecord(r)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
